package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpay/payroll-backend-go/internal/domain/employee"
	"github.com/talentpay/payroll-backend-go/internal/domain/loan"
)

func testPolicy() *loan.Policy {
	return &loan.Policy{
		ID:                   "policy-1",
		LoanType:             loan.TypeLoan,
		MinAmount:            dec("1000"),
		MaxAmount:            dec("50000"),
		MinTenureMonths:      3,
		MaxTenureMonths:      24,
		AnnualRatePercent:    dec("12"),
		MinServiceMonths:     6,
		MaxActivePerEmployee: 1,
		MaxPerEmployee:       3,
		IsActive:             true,
	}
}

func testEmployee(hired time.Time) *employee.Employee {
	return &employee.Employee{
		ID:               "emp-1",
		EmploymentStatus: employee.EmploymentStatusActive,
		HireDate:         hired,
	}
}

func TestCheckPolicy(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	veteran := testEmployee(now.AddDate(-2, 0, 0))

	t.Run("passes a compliant application", func(t *testing.T) {
		err := CheckPolicy(testPolicy(), veteran, dec("10000"), 12, 0, 0, now)
		assert.NoError(t, err)
	})

	tests := []struct {
		name          string
		amount        string
		tenure        int
		activeCount   int
		lifetimeCount int
		emp           *employee.Employee
		constraint    string
	}{
		{
			name:       "amount below the floor",
			amount:     "500",
			tenure:     12,
			emp:        veteran,
			constraint: "amount",
		},
		{
			name:       "amount above the ceiling",
			amount:     "60000",
			tenure:     12,
			emp:        veteran,
			constraint: "amount",
		},
		{
			name:       "tenure out of range",
			amount:     "10000",
			tenure:     36,
			emp:        veteran,
			constraint: "tenure",
		},
		{
			name:       "insufficient service",
			amount:     "10000",
			tenure:     12,
			emp:        testEmployee(now.AddDate(0, -2, 0)),
			constraint: "servicePeriod",
		},
		{
			name:        "active loan limit reached",
			amount:      "10000",
			tenure:      12,
			activeCount: 1,
			emp:         veteran,
			constraint:  "maxActivePerEmployee",
		},
		{
			name:          "lifetime limit reached",
			amount:        "10000",
			tenure:        12,
			lifetimeCount: 3,
			emp:           veteran,
			constraint:    "maxPerEmployee",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPolicy(testPolicy(), tt.emp, dec(tt.amount), tt.tenure, tt.activeCount, tt.lifetimeCount, now)
			require.Error(t, err)
			assert.ErrorIs(t, err, loan.ErrPolicyViolation)

			var violation *loan.PolicyViolationError
			require.ErrorAs(t, err, &violation)
			assert.Equal(t, tt.constraint, violation.Constraint)
		})
	}

	t.Run("first failing constraint wins", func(t *testing.T) {
		// both the amount and the tenure are out of range
		err := CheckPolicy(testPolicy(), veteran, dec("500"), 36, 1, 3, now)

		var violation *loan.PolicyViolationError
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, "amount", violation.Constraint)
	})

	t.Run("zero lifetime cap means unlimited", func(t *testing.T) {
		policy := testPolicy()
		policy.MaxPerEmployee = 0

		err := CheckPolicy(policy, veteran, dec("10000"), 12, 0, 50, now)
		assert.NoError(t, err)
	})
}
