package loan

import (
	"errors"
	"fmt"
)

var (
	ErrLoanNotFound       = errors.New("loan not found")
	ErrPolicyNotFound     = errors.New("loan policy not found")
	ErrPolicyInactive     = errors.New("loan policy is not active")
	ErrPolicyViolation    = errors.New("loan policy violation")
	ErrLoanNotPending     = errors.New("loan is not awaiting approval")
	ErrLoanNotActive      = errors.New("loan is not active")
	ErrInvalidSettlement  = errors.New("settlement date precedes the loan start")
	ErrDuplicateRepayment = errors.New("repayment already recorded for this month")
)

// PolicyViolationError names the first policy constraint an application
// failed. It unwraps to ErrPolicyViolation so handlers can match it with
// errors.Is.
type PolicyViolationError struct {
	Constraint string
	Message    string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("loan policy violation (%s): %s", e.Constraint, e.Message)
}

func (e *PolicyViolationError) Unwrap() error {
	return ErrPolicyViolation
}
