package generation

import "errors"

// Common errors returned by the generation collaborators.
var (
	// ErrServiceUnavailable is returned when the backend rejects or cannot
	// serve the request.
	ErrServiceUnavailable = errors.New("generation service unavailable")

	// ErrTimeout is returned when the backend does not respond in time.
	ErrTimeout = errors.New("generation service timed out")

	// ErrContentBlocked is returned when the backend blocks the content
	// via safety filters.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrInvalidConfig is returned when a generator is constructed with
	// unusable configuration.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
