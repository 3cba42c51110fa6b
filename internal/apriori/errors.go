package apriori

import (
	"errors"
	"fmt"
)

// ErrInvalidThreshold is returned when a support or confidence fraction is
// outside (0, 1].
var ErrInvalidThreshold = errors.New("threshold must be in (0, 1]")

// ErrZeroDivision is returned when a rule's antecedent has a zero count.
// It means the pruning invariant was broken upstream.
var ErrZeroDivision = errors.New("division by zero count")

// ComputationError reports an arithmetic failure while deriving a rule.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// validateFraction checks that v is in (0, 1].
func validateFraction(name string, v float64) error {
	if !(v > 0 && v <= 1) {
		return fmt.Errorf("%s %v: %w", name, v, ErrInvalidThreshold)
	}
	return nil
}
