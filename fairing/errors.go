package fairing

import (
	"errors"
	"fmt"
)

var (
	ErrTimestep    = errors.New("fairing: timestep must be finite and non-negative")
	ErrCoefficient = errors.New("fairing: enhancement coefficient must be finite and non-negative")
	ErrMismatch    = errors.New("fairing: reference mesh does not match working mesh")
	ErrNoBoundary  = errors.New("fairing: mesh has no boundary to constrain")
)

// SolveError reports a failed linear solve. The mesh positions are left
// as they were before the operation started.
type SolveError struct {
	Op  string
	Err error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("fairing: %s: %v", e.Op, e.Err)
}

func (e *SolveError) Unwrap() error { return e.Err }
