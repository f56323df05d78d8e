package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable is returned once the gateway has given up on a prompt
	ErrServiceUnavailable = errors.New("ai service unavailable")
	// ErrEmptyCompletion means the model answered without usable text
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrTruncated means the output token budget ran out before any text was produced
	ErrTruncated = errors.New("max output tokens reached with no content")
)

// permanentError marks a failure that retrying cannot fix
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the gateway stops retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// StatusError is a non-2xx answer from an HTTP completion endpoint
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion endpoint returned status %d: %s", e.StatusCode, e.Body)
}
