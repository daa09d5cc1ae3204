package loan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentpay/payroll-backend-go/internal/domain/employee"
	"github.com/talentpay/payroll-backend-go/internal/domain/loan"
)

// CheckPolicy validates an application against its policy. Constraints are
// checked in a fixed order and the first failure wins, so callers always get
// a deterministic violation for the same input.
func CheckPolicy(policy *loan.Policy, emp *employee.Employee, amount decimal.Decimal, tenureMonths int, activeCount, lifetimeCount int, now time.Time) error {
	if amount.LessThan(policy.MinAmount) || amount.GreaterThan(policy.MaxAmount) {
		return &loan.PolicyViolationError{
			Constraint: "amount",
			Message:    fmt.Sprintf("amount must be between %s and %s", policy.MinAmount, policy.MaxAmount),
		}
	}
	if tenureMonths < policy.MinTenureMonths || tenureMonths > policy.MaxTenureMonths {
		return &loan.PolicyViolationError{
			Constraint: "tenure",
			Message:    fmt.Sprintf("tenure must be between %d and %d months", policy.MinTenureMonths, policy.MaxTenureMonths),
		}
	}
	if emp.MonthsOfService(now) < policy.MinServiceMonths {
		return &loan.PolicyViolationError{
			Constraint: "servicePeriod",
			Message:    fmt.Sprintf("at least %d months of service required", policy.MinServiceMonths),
		}
	}
	if activeCount >= policy.MaxActivePerEmployee {
		return &loan.PolicyViolationError{
			Constraint: "maxActivePerEmployee",
			Message:    fmt.Sprintf("employee already has %d active loans under this policy", activeCount),
		}
	}
	if policy.MaxPerEmployee > 0 && lifetimeCount >= policy.MaxPerEmployee {
		return &loan.PolicyViolationError{
			Constraint: "maxPerEmployee",
			Message:    fmt.Sprintf("employee has reached the lifetime limit of %d loans under this policy", policy.MaxPerEmployee),
		}
	}
	return nil
}
