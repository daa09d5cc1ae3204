package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpay/payroll-backend-go/internal/domain/compensation"
	"github.com/talentpay/payroll-backend-go/internal/domain/deduction"
	"github.com/talentpay/payroll-backend-go/internal/domain/employee"
	"github.com/talentpay/payroll-backend-go/internal/domain/loan"
	"github.com/talentpay/payroll-backend-go/internal/domain/payroll"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func basePtr(b compensation.PercentageBase) *compensation.PercentageBase {
	return &b
}

func testEmp() *employee.Employee {
	return &employee.Employee{
		ID:               "emp-1",
		DepartmentID:     "dept-1",
		EmploymentStatus: employee.EmploymentStatusActive,
		BasicSalary:      dec("30000"),
		GrossSalary:      dec("36000"),
	}
}

func fullMonthTally() *deduction.MonthlyTally {
	return &deduction.MonthlyTally{
		EmployeeID:       "emp-1",
		Month:            "2026-03",
		PresentDays:      dec("30"),
		TotalDaysInMonth: 30,
	}
}

func testDefinitions() []compensation.Definition {
	return []compensation.Definition{
		{
			ID:       "def-transport",
			Name:     "Transport Allowance",
			Category: compensation.CategoryAllowance,
			IsActive: true,
			GlobalRule: compensation.Rule{
				Kind:   compensation.RuleKindFixed,
				Amount: decPtr("500"),
			},
		},
		{
			ID:       "def-tax",
			Name:     "Income Tax",
			Category: compensation.CategoryDeduction,
			IsActive: true,
			GlobalRule: compensation.Rule{
				Kind:       compensation.RuleKindPercentage,
				Percentage: decPtr("10"),
				Base:       basePtr(compensation.BaseBasic),
			},
		},
	}
}

func lineByName(lines []payroll.ComponentLine, name string) *payroll.ComponentLine {
	for i := range lines {
		if lines[i].Name == name {
			return &lines[i]
		}
	}
	return nil
}

func TestBuild_FullMonth(t *testing.T) {
	builder := NewRecordBuilder()

	record, err := builder.Build(testEmp(), &BuildInputs{
		Month:       "2026-03",
		Definitions: testDefinitions(),
		Tally:       fullMonthTally(),
	})
	require.NoError(t, err)

	base := lineByName(record.Earnings, "Basic Salary")
	require.NotNil(t, base)
	assert.True(t, base.Amount.Equal(dec("30000")))
	assert.Equal(t, payroll.SourceBaseSalary, base.Source)

	transport := lineByName(record.Earnings, "Transport Allowance")
	require.NotNil(t, transport)
	assert.True(t, transport.Amount.Equal(dec("500")))
	assert.Equal(t, payroll.SourceGlobalRule, transport.Source)

	tax := lineByName(record.Deductions, "Income Tax")
	require.NotNil(t, tax)
	assert.True(t, tax.Amount.Equal(dec("3000")), "tax = %s, want 3000", tax.Amount)

	assert.True(t, record.GrossPay.Equal(dec("30500")))
	assert.True(t, record.TotalDeductions.Equal(dec("3000")))
	assert.True(t, record.NetPay.Equal(dec("27500")))
	assert.True(t, record.RoundOff.IsZero())
}

func TestBuild_ProratesBasePay(t *testing.T) {
	builder := NewRecordBuilder()

	tally := fullMonthTally()
	tally.PresentDays = dec("20")

	record, err := builder.Build(testEmp(), &BuildInputs{
		Month:       "2026-03",
		Definitions: nil,
		Tally:       tally,
	})
	require.NoError(t, err)

	base := lineByName(record.Earnings, "Basic Salary")
	require.NotNil(t, base)
	assert.True(t, base.Amount.Equal(dec("20000")), "base = %s, want 20000", base.Amount)

	t.Run("on-duty days count as worked", func(t *testing.T) {
		tally := fullMonthTally()
		tally.PresentDays = dec("20")
		tally.ODDays = dec("5")

		record, err := builder.Build(testEmp(), &BuildInputs{
			Month: "2026-03",
			Tally: tally,
		})
		require.NoError(t, err)

		base := lineByName(record.Earnings, "Basic Salary")
		require.NotNil(t, base)
		assert.True(t, base.Amount.Equal(dec("25000")), "base = %s, want 25000", base.Amount)
	})
}

func TestBuild_EmployeeOverrideBeatsRules(t *testing.T) {
	builder := NewRecordBuilder()

	endDate := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	record, err := builder.Build(testEmp(), &BuildInputs{
		Month:       "2026-03",
		Definitions: testDefinitions(),
		EmployeeOverrides: []compensation.EmployeeOverride{
			{
				ID:            "ov-1",
				EmployeeID:    "emp-1",
				DefinitionID:  "def-transport",
				Amount:        dec("750"),
				EffectiveDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				EndDate:       &endDate,
			},
		},
		Tally: fullMonthTally(),
	})
	require.NoError(t, err)

	transport := lineByName(record.Earnings, "Transport Allowance")
	require.NotNil(t, transport)
	assert.True(t, transport.Amount.Equal(dec("750")), "transport = %s, want 750", transport.Amount)
	assert.Equal(t, payroll.SourceEmployeeOverride, transport.Source)
}

func TestBuild_AttendanceDeductionPricedPerDay(t *testing.T) {
	builder := NewRecordBuilder()

	tally := fullMonthTally()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		tally.LateIns = append(tally.LateIns, deduction.EventDuration{
			Date:            day.AddDate(0, 0, i),
			DurationMinutes: 20,
		})
	}

	record, err := builder.Build(testEmp(), &BuildInputs{
		Month: "2026-03",
		Tally: tally,
		AttendanceConfig: &deduction.RuleConfig{
			Scope:           deduction.ScopeAttendance,
			CountThreshold:  3,
			DeductionType:   deduction.DeductionHalfDay,
			CalculationMode: deduction.ModeFloor,
		},
	})
	require.NoError(t, err)

	// half a day at 30000/30 per day
	line := lineByName(record.Deductions, "Attendance Deduction")
	require.NotNil(t, line)
	assert.True(t, line.Amount.Equal(dec("500")), "deduction = %s, want 500", line.Amount)
	assert.Equal(t, payroll.SourceAttendance, line.Source)
}

func TestBuild_PricesIncentiveAndArrears(t *testing.T) {
	builder := NewRecordBuilder()

	record, err := builder.Build(testEmp(), &BuildInputs{
		Month:     "2026-03",
		Tally:     fullMonthTally(),
		Incentive: dec("1500"),
		Arrears:   dec("250.50"),
	})
	require.NoError(t, err)

	incentive := lineByName(record.Earnings, "Incentive")
	require.NotNil(t, incentive)
	assert.Equal(t, payroll.SourceIncentive, incentive.Source)
	assert.True(t, incentive.Amount.Equal(dec("1500")))

	arrears := lineByName(record.Earnings, "Arrears")
	require.NotNil(t, arrears)
	assert.Equal(t, payroll.SourceArrears, arrears.Source)
	assert.True(t, record.GrossPay.Equal(dec("31750.50")),
		"gross = %s, want 31750.50", record.GrossPay)
}

func TestBuild_UnpaidLeaveDeductedPerDay(t *testing.T) {
	builder := NewRecordBuilder()

	tally := fullMonthTally()
	tally.LeaveDays = dec("4")
	tally.PaidLeaveDays = dec("1")

	record, err := builder.Build(testEmp(), &BuildInputs{
		Month: "2026-03",
		Tally: tally,
	})
	require.NoError(t, err)

	// 3 unpaid days at 30000/30 per day
	line := lineByName(record.Deductions, "Leave Deduction")
	require.NotNil(t, line)
	assert.True(t, line.Amount.Equal(dec("3000")), "deduction = %s, want 3000", line.Amount)
	assert.Equal(t, payroll.SourceLeave, line.Source)

	t.Run("fully paid leave deducts nothing", func(t *testing.T) {
		tally := fullMonthTally()
		tally.LeaveDays = dec("2")
		tally.PaidLeaveDays = dec("2")

		record, err := builder.Build(testEmp(), &BuildInputs{
			Month: "2026-03",
			Tally: tally,
		})
		require.NoError(t, err)
		assert.Nil(t, lineByName(record.Deductions, "Leave Deduction"))
	})
}

func TestBuild_SeparatesDeductionStreams(t *testing.T) {
	builder := NewRecordBuilder()

	tally := fullMonthTally()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		tally.LateIns = append(tally.LateIns, deduction.EventDuration{
			Date:            day.AddDate(0, 0, i),
			DurationMinutes: 20,
		})
		tally.Permissions = append(tally.Permissions, deduction.EventDuration{
			Date:            day.AddDate(0, 0, i),
			DurationMinutes: 60,
		})
	}

	record, err := builder.Build(testEmp(), &BuildInputs{
		Month: "2026-03",
		Tally: tally,
		AttendanceConfig: &deduction.RuleConfig{
			Scope:           deduction.ScopeAttendance,
			CountThreshold:  3,
			DeductionType:   deduction.DeductionHalfDay,
			CalculationMode: deduction.ModeFloor,
		},
		PermissionConfig: &deduction.RuleConfig{
			Scope:           deduction.ScopePermission,
			CountThreshold:  3,
			DeductionType:   deduction.DeductionHalfDay,
			CalculationMode: deduction.ModeFloor,
		},
	})
	require.NoError(t, err)

	attendance := lineByName(record.Deductions, "Attendance Deduction")
	permission := lineByName(record.Deductions, "Permission Deduction")
	require.NotNil(t, attendance)
	require.NotNil(t, permission)
	assert.Equal(t, payroll.SourceAttendance, attendance.Source)
	assert.Equal(t, payroll.SourcePermission, permission.Source)
	assert.True(t, attendance.Amount.Equal(dec("500")))
	assert.True(t, permission.Amount.Equal(dec("500")))
}

func TestBuild_CollectsLoanInstallments(t *testing.T) {
	builder := NewRecordBuilder()

	record, err := builder.Build(testEmp(), &BuildInputs{
		Month: "2026-03",
		Tally: fullMonthTally(),
		OpenLoans: []loan.Loan{
			{
				ID:                "loan-1",
				LoanType:          loan.TypeLoan,
				Principal:         dec("12000"),
				AnnualRatePercent: dec("12"),
				TenureMonths:      12,
				EMI:               dec("1066.19"),
				Status:            loan.StatusActive,
				StartMonth:        "2026-01",
			},
			{
				ID:           "adv-1",
				LoanType:     loan.TypeAdvance,
				Principal:    dec("3000"),
				TenureMonths: 3,
				EMI:          dec("1000"),
				Status:       loan.StatusActive,
				StartMonth:   "2026-02",
			},
		},
	})
	require.NoError(t, err)

	assert.True(t, record.LoanInstallment.Equal(dec("2066.19")),
		"installments = %s, want 2066.19", record.LoanInstallment)
	require.NotNil(t, lineByName(record.Deductions, "Loan Installment"))
	require.NotNil(t, lineByName(record.Deductions, "Advance Recovery"))
}

func TestBuild_RecoveryCappedAtPayable(t *testing.T) {
	builder := NewRecordBuilder()

	emp := testEmp()
	emp.BasicSalary = dec("900")
	emp.GrossSalary = dec("900")

	record, err := builder.Build(emp, &BuildInputs{
		Month: "2026-03",
		Tally: fullMonthTally(),
		OpenLoans: []loan.Loan{
			{
				ID:           "adv-1",
				LoanType:     loan.TypeAdvance,
				Principal:    dec("3000"),
				TenureMonths: 3,
				EMI:          dec("1000"),
				Status:       loan.StatusActive,
				StartMonth:   "2026-02",
			},
		},
	})
	require.NoError(t, err)

	// Only 900 is payable this month; the remaining 100 stays on the
	// advance balance.
	assert.True(t, record.LoanInstallment.Equal(dec("900")),
		"installments = %s, want 900", record.LoanInstallment)
	assert.True(t, record.NetPayExact.IsZero(),
		"net = %s, want 0", record.NetPayExact)
}

func TestBuild_RoundOffKeepsExactNet(t *testing.T) {
	builder := NewRecordBuilder()

	emp := testEmp()
	emp.BasicSalary = dec("30001")
	tally := fullMonthTally()
	tally.PresentDays = dec("20")

	record, err := builder.Build(emp, &BuildInputs{
		Month: "2026-03",
		Tally: tally,
	})
	require.NoError(t, err)

	// 30001 * 20/30 = 20000.67 exact
	assert.True(t, record.NetPayExact.Equal(dec("20000.67")))
	assert.True(t, record.NetPay.Equal(dec("20001")))
	assert.True(t, record.RoundOff.Equal(dec("0.33")),
		"roundOff = %s, want 0.33", record.RoundOff)
}

func TestBuild_InactiveDefinitionSkipped(t *testing.T) {
	builder := NewRecordBuilder()

	defs := testDefinitions()
	defs[1].IsActive = false

	record, err := builder.Build(testEmp(), &BuildInputs{
		Month:       "2026-03",
		Definitions: defs,
		Tally:       fullMonthTally(),
	})
	require.NoError(t, err)

	assert.Nil(t, lineByName(record.Deductions, "Income Tax"))
	assert.True(t, record.TotalDeductions.IsZero())
}

func TestBuild_RejectsEmptyPeriod(t *testing.T) {
	builder := NewRecordBuilder()

	tally := fullMonthTally()
	tally.TotalDaysInMonth = 0

	_, err := builder.Build(testEmp(), &BuildInputs{Month: "2026-03", Tally: tally})
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}
