package protocol

import (
	"errors"
	"fmt"
)

var ErrUnrecognizedMessage = errors.New("unrecognized message")

// ValidationError reports a parameter vector whose length does not match
// the NP this solver instance was built for. Its Error string is the exact
// diagnostic sent back to the caller.
type ValidationError struct {
	NP  int
	Got int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("wrong param size (np=%d, len(p)=%d)", e.NP, e.Got)
}

// ValidateParameter gates the fixed-size numerical routines: it must pass
// before any buffer of length NP is read downstream.
func ValidateParameter(p []float64, np int) error {
	if len(p) != np {
		return &ValidationError{NP: np, Got: len(p)}
	}
	return nil
}
