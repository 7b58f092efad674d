// Package apperr defines the domain error taxonomy and its HTTP mapping.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput marks missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a reference to an unknown order id.
	ErrNotFound = errors.New("order not found")

	// ErrConflict marks an id collision on insert. With UUIDv4 ids this is
	// an internal invariant violation, not a client error.
	ErrConflict = errors.New("order already exists")

	// ErrGeneration marks a failed generation attempt. The order stays
	// retryable.
	ErrGeneration = errors.New("generation failed")
)

// Kind returns a stable machine-readable classification for an error.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"

	case errors.Is(err, ErrNotFound):
		return "not_found"

	case errors.Is(err, ErrConflict):
		return "conflict"

	case errors.Is(err, ErrGeneration):
		return "generation_failed"

	default:
		return "internal"
	}
}

// HTTPStatus maps an error to the status code surfaced at the boundary.
// Conflicts are server errors: id generation guarantees uniqueness, so a
// collision means the invariant broke, not that the caller misbehaved.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest

	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
