package attendance

import (
	"context"

	"github.com/talentpay/payroll-backend-go/internal/domain/deduction"
)

// Repository supplies attendance and permission records aggregated to the
// monthly tallies the deduction engine and payroll builder consume.
type Repository interface {
	// GetMonthlyTally aggregates one employee's countable events for a
	// YYYY-MM month.
	GetMonthlyTally(ctx context.Context, employeeID, month string) (*deduction.MonthlyTally, error)

	// ListMonthlyTallies aggregates tallies for every active employee in
	// the department for a YYYY-MM month.
	ListMonthlyTallies(ctx context.Context, departmentID, month string) ([]deduction.MonthlyTally, error)
}
