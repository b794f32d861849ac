package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a non-positive tolerance or iteration budget.
	ErrInvalidConfig = errors.New("solver: tolerance and max iterations must be positive")
	// ErrInvalidInterval indicates an interval whose lower bound is not below its upper bound.
	ErrInvalidInterval = errors.New("solver: interval lower bound must be below upper bound")
	// ErrNoBracket indicates a bounded interval whose endpoints do not change sign.
	ErrNoBracket = errors.New("solver: no sign change in supplied interval")
	// ErrBracketExhausted indicates the expanding search ran out of doublings
	// without finding a sign change.
	ErrBracketExhausted = errors.New("solver: bracket expansion exhausted without sign change")
	// ErrNonMonotonic indicates the objective violated the monotonicity
	// precondition during bracket expansion.
	ErrNonMonotonic = errors.New("solver: objective is not monotonic over the searched range")
)

// OracleError wraps a failed objective evaluation together with the
// candidate input that triggered it. The solver does not retry; the
// external process state that caused the failure should not be
// silently repeated.
type OracleError struct {
	Input float64
	Err   error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("solver: objective evaluation failed at %g: %v", e.Input, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}
