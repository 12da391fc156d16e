package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	// Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrAlreadyGraded is returned when a grade is recorded for a view
	// whose graded flag is already set. The write is a no-op; the first
	// recorded outcome stands.
	ErrAlreadyGraded = errors.New("view already graded")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or an operation inside it fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrCardNotFound indicates that the requested card does not exist or
	// is not owned by the requesting user.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// ErrViewNotFound indicates that the requested view does not exist.
	ErrViewNotFound = fmt.Errorf("%w: view", ErrNotFound)

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrEmailExists indicates that a user with the given email already
	// exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
