package objective

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a point has not been logged.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a lookup miss in a call log.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return "point not logged: " + e.Key
	}
	return "point not logged"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ErrCheckpointDue signals that the evaluation just performed landed on a
// checkpoint boundary. It is control flow, not a fault: the score returned
// alongside it is valid and already logged. Solvers must propagate it to the
// driver unmodified.
var ErrCheckpointDue = errors.New("checkpoint due")

// ErrBudgetExhausted matches any BudgetExhaustedError via errors.Is.
var ErrBudgetExhausted = &BudgetExhaustedError{}

// BudgetExhaustedError signals that the evaluation ceiling has been reached.
// Like ErrCheckpointDue it is control flow: solvers must propagate it so the
// driver can extract the best logged point.
type BudgetExhaustedError struct {
	Ceiling int
}

func (e *BudgetExhaustedError) Error() string {
	return fmt.Sprintf("evaluation budget exhausted (ceiling %d)", e.Ceiling)
}

func (e *BudgetExhaustedError) Is(target error) bool {
	_, ok := target.(*BudgetExhaustedError)
	return ok
}

// IsSignal reports whether err is one of the wrapper's control-flow signals.
func IsSignal(err error) bool {
	return errors.Is(err, ErrCheckpointDue) || errors.Is(err, ErrBudgetExhausted)
}
