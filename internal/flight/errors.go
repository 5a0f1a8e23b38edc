package flight

import (
	"context"
	"errors"
	"fmt"
)

// PanicError wraps a value recovered from a panicking computation.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("flight: computation panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsCancellation reports whether err is a context cancellation or deadline.
// Uses errors.Is to handle wrapped errors.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
