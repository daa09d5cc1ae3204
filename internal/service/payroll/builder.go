package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentpay/payroll-backend-go/internal/domain/compensation"
	"github.com/talentpay/payroll-backend-go/internal/domain/deduction"
	"github.com/talentpay/payroll-backend-go/internal/domain/employee"
	"github.com/talentpay/payroll-backend-go/internal/domain/loan"
	"github.com/talentpay/payroll-backend-go/internal/domain/payroll"
	compsvc "github.com/talentpay/payroll-backend-go/internal/service/compensation"
	dedsvc "github.com/talentpay/payroll-backend-go/internal/service/deduction"
	loansvc "github.com/talentpay/payroll-backend-go/internal/service/loan"
)

const hoursPerWorkDay = 8

// BuildInputs carries everything one record computation needs. All of it is
// loaded up front so Build stays pure and safe to run concurrently per
// employee.
type BuildInputs struct {
	Month             string // YYYY-MM
	Definitions       []compensation.Definition
	EmployeeOverrides []compensation.EmployeeOverride
	AttendanceConfig  *deduction.RuleConfig
	PermissionConfig  *deduction.RuleConfig
	EarlyOutSettings  *deduction.EarlyOutSettings
	Tally             *deduction.MonthlyTally
	OpenLoans         []loan.Loan

	// One-off amounts entered for this run.
	Incentive decimal.Decimal
	Arrears   decimal.Decimal
}

// RecordBuilder computes one employee's payroll record from resolved master
// data and attendance tallies.
type RecordBuilder struct {
	resolver   *compsvc.RuleResolver
	calculator *compsvc.ComponentCalculator
	engine     *dedsvc.Engine
}

func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{
		resolver:   compsvc.NewRuleResolver(),
		calculator: compsvc.NewComponentCalculator(),
		engine:     dedsvc.NewEngine(),
	}
}

// Build computes the full record: prorated base pay, resolved compensation
// components, attendance deductions, overtime, and loan installments. The
// net amount is rounded to the whole unit and the difference is kept as
// RoundOff so the exact figure is never lost.
func (b *RecordBuilder) Build(emp *employee.Employee, in *BuildInputs) (*payroll.PayrollRecord, error) {
	if in.Tally == nil || in.Tally.TotalDaysInMonth <= 0 {
		return nil, payroll.ErrInvalidPeriod
	}

	// On-duty days are worked days, just logged outside the office.
	paidDays := in.Tally.PresentDays.Add(in.Tally.ODDays)

	calcCtx := compensation.Context{
		BasicSalary:      emp.BasicSalary,
		GrossSalary:      emp.GrossSalary,
		PresentDays:      paidDays,
		TotalDaysInMonth: in.Tally.TotalDaysInMonth,
	}
	monthDays := decimal.NewFromInt(int64(in.Tally.TotalDaysInMonth))
	perDay := emp.BasicSalary.DivRound(monthDays, 2)

	record := payroll.PayrollRecord{
		EmployeeID:       emp.ID,
		Month:            in.Month,
		BasicSalary:      emp.BasicSalary,
		GrossSalary:      emp.GrossSalary,
		PresentDays:      in.Tally.PresentDays,
		TotalDaysInMonth: in.Tally.TotalDaysInMonth,
	}

	// Base pay, prorated by worked days.
	basePay := emp.BasicSalary.Mul(paidDays).DivRound(monthDays, 2)
	record.Earnings = append(record.Earnings, payroll.ComponentLine{
		Name:     "Basic Salary",
		Category: string(compensation.CategoryAllowance),
		Source:   payroll.SourceBaseSalary,
		Amount:   basePay,
	})

	// Compensation components, employee override first, then the scoped
	// rule hierarchy.
	monthStart, err := time.Parse("2006-01", in.Month)
	if err != nil {
		return nil, payroll.ErrInvalidPeriod
	}
	overridesByDef := make(map[string]*compensation.EmployeeOverride)
	for i := range in.EmployeeOverrides {
		ov := &in.EmployeeOverrides[i]
		if ov.ActiveOn(monthStart) {
			overridesByDef[ov.DefinitionID] = ov
		}
	}

	for i := range in.Definitions {
		def := in.Definitions[i]

		line, ok, err := b.componentLine(&def, emp, overridesByDef[def.ID], calcCtx)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if def.Category == compensation.CategoryDeduction {
			record.Deductions = append(record.Deductions, line)
		} else {
			record.Earnings = append(record.Earnings, line)
		}
	}

	// One-off incentive and arrears amounts entered for this run.
	if in.Incentive.IsPositive() {
		record.Earnings = append(record.Earnings, payroll.ComponentLine{
			Name:     "Incentive",
			Category: string(compensation.CategoryAllowance),
			Source:   payroll.SourceIncentive,
			Amount:   in.Incentive,
		})
	}
	if in.Arrears.IsPositive() {
		record.Earnings = append(record.Earnings, payroll.ComponentLine{
			Name:     "Arrears",
			Category: string(compensation.CategoryAllowance),
			Source:   payroll.SourceArrears,
			Amount:   in.Arrears,
		})
	}

	// Attendance, permission, and early-out deductions, one line per
	// stream so the payslip shows where each amount came from.
	breakdown := b.engine.Evaluate(in.Tally, in.AttendanceConfig, in.PermissionConfig, in.EarlyOutSettings)
	streams := []struct {
		name    string
		source  payroll.ComponentSource
		outcome dedsvc.Outcome
	}{
		{"Attendance Deduction", payroll.SourceAttendance, breakdown.Attendance},
		{"Permission Deduction", payroll.SourcePermission, breakdown.Permission},
		{"Early-Out Deduction", payroll.SourceEarlyOut, breakdown.EarlyOut},
	}
	for _, st := range streams {
		amount := st.outcome.Days.Mul(perDay).Round(2).Add(st.outcome.Money)
		if !amount.IsPositive() {
			continue
		}
		record.Deductions = append(record.Deductions, payroll.ComponentLine{
			Name:     st.name,
			Category: string(compensation.CategoryDeduction),
			Source:   st.source,
			Amount:   amount,
		})
	}

	// Leave beyond the paid quota is unpaid, valued at the daily rate.
	unpaidLeaves := in.Tally.LeaveDays.Sub(in.Tally.PaidLeaveDays)
	if unpaidLeaves.IsPositive() {
		record.Deductions = append(record.Deductions, payroll.ComponentLine{
			Name:     "Leave Deduction",
			Category: string(compensation.CategoryDeduction),
			Source:   payroll.SourceLeave,
			Amount:   unpaidLeaves.Mul(perDay).Round(2),
		})
	}

	// Overtime pays at the hourly slice of the daily rate.
	if in.Tally.OTHours.IsPositive() {
		perHour := perDay.DivRound(decimal.NewFromInt(hoursPerWorkDay), 2)
		record.OvertimeAmount = in.Tally.OTHours.Mul(perHour).Round(2)
		record.Earnings = append(record.Earnings, payroll.ComponentLine{
			Name:     "Overtime",
			Category: string(compensation.CategoryAllowance),
			Source:   payroll.SourceOvertime,
			Amount:   record.OvertimeAmount,
		})
	}

	// Loan and advance installments due this month. Recovery never exceeds
	// what is payable after the other deductions; the shortfall stays on
	// the loan balance and carries into later months.
	payable := decimal.Zero
	for _, line := range record.Earnings {
		payable = payable.Add(line.Amount)
	}
	for _, line := range record.Deductions {
		payable = payable.Sub(line.Amount)
	}
	if payable.IsNegative() {
		payable = decimal.Zero
	}

	dues := make([]decimal.Decimal, len(in.OpenLoans))
	totalDue := decimal.Zero
	for i := range in.OpenLoans {
		dues[i] = loansvc.InstallmentDue(&in.OpenLoans[i], in.Month)
		totalDue = totalDue.Add(dues[i])
	}
	if totalDue.GreaterThan(payable) && totalDue.IsPositive() {
		ratio := payable.Div(totalDue)
		for i := range dues {
			dues[i] = dues[i].Mul(ratio).Round(2)
		}
	}

	for i := range in.OpenLoans {
		l := &in.OpenLoans[i]
		if !dues[i].IsPositive() {
			continue
		}
		record.LoanInstallment = record.LoanInstallment.Add(dues[i])
		name := "Loan Installment"
		if l.LoanType == loan.TypeAdvance {
			name = "Advance Recovery"
		}
		record.Deductions = append(record.Deductions, payroll.ComponentLine{
			Name:     name,
			Category: string(compensation.CategoryDeduction),
			Source:   payroll.SourceLoan,
			Amount:   dues[i],
		})
	}

	for _, line := range record.Earnings {
		record.GrossPay = record.GrossPay.Add(line.Amount)
	}
	for _, line := range record.Deductions {
		record.TotalDeductions = record.TotalDeductions.Add(line.Amount)
	}

	record.NetPayExact = record.GrossPay.Sub(record.TotalDeductions)
	record.NetPay = record.NetPayExact.Round(0)
	record.RoundOff = record.NetPay.Sub(record.NetPayExact)
	return &record, nil
}

func (b *RecordBuilder) componentLine(def *compensation.Definition, emp *employee.Employee, override *compensation.EmployeeOverride, calcCtx compensation.Context) (payroll.ComponentLine, bool, error) {
	if override != nil {
		return payroll.ComponentLine{
			DefinitionID: def.ID,
			Name:         def.Name,
			Category:     string(def.Category),
			Source:       payroll.SourceEmployeeOverride,
			Amount:       override.Amount,
		}, true, nil
	}

	rule, level, err := b.resolver.Resolve(*def, emp.DepartmentID, emp.DivisionID)
	if err != nil {
		return payroll.ComponentLine{}, false, err
	}
	if rule == nil {
		return payroll.ComponentLine{}, false, nil
	}

	amount, err := b.calculator.Compute(*rule, calcCtx)
	if err != nil {
		return payroll.ComponentLine{}, false, err
	}

	return payroll.ComponentLine{
		DefinitionID: def.ID,
		Name:         def.Name,
		Category:     string(def.Category),
		Source:       sourceForLevel(level),
		Amount:       amount,
	}, true, nil
}

func sourceForLevel(level compsvc.ResolveLevel) payroll.ComponentSource {
	switch level {
	case compsvc.LevelDivision:
		return payroll.SourceDivisionRule
	case compsvc.LevelDepartment:
		return payroll.SourceDepartmentRule
	default:
		return payroll.SourceGlobalRule
	}
}
