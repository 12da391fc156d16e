// Package generation defines the interfaces to the external text and
// image collaborators. Implementations live under internal/platform; the
// study loop and the background coordinator depend only on these
// interfaces so tests can swap in fakes.
package generation

import "context"

// Translator translates text into a target language.
type Translator interface {
	// Translate returns the text rendered in the target language.
	// Fails with ErrServiceUnavailable when the backend cannot serve the
	// request.
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// ImageGenerator produces an illustration for a text prompt.
type ImageGenerator interface {
	// GenerateImage returns a reference (path or URL) to the generated
	// image. Fails with ErrServiceUnavailable or ErrTimeout.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
