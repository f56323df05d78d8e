package review

import "errors"

var (
	// ErrValidation marks input rejected before any work is done
	ErrValidation = errors.New("invalid review input")
	// ErrStorage marks a persistence failure; the enclosing transaction was rolled back
	ErrStorage = errors.New("storage error")
	// ErrNotFound is returned for unknown session ids
	ErrNotFound = errors.New("session not found")
)
