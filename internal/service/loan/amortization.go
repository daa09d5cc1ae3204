package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentpay/payroll-backend-go/internal/domain/loan"
)

const monthLayout = "2006-01"

var (
	hundred      = decimal.NewFromInt(100)
	twelve       = decimal.NewFromInt(12)
	one          = decimal.NewFromInt(1)
	ratePrec int32 = 12
)

// ComputeEMI returns the fixed monthly installment for a reducing-balance
// loan. A zero rate degenerates to flat principal over tenure, which is how
// salary advances are recovered.
func ComputeEMI(principal, annualRatePercent decimal.Decimal, tenureMonths int) decimal.Decimal {
	if tenureMonths <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}
	months := decimal.NewFromInt(int64(tenureMonths))
	if annualRatePercent.IsZero() {
		return principal.DivRound(months, 2)
	}

	r := monthlyRate(annualRatePercent)
	factor := one.Add(r).Pow(months)
	// P * r * (1+r)^n / ((1+r)^n - 1)
	return principal.Mul(r).Mul(factor).DivRound(factor.Sub(one), 2)
}

func monthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.DivRound(hundred.Mul(twelve), ratePrec)
}

// BuildSchedule expands a loan into its installment rows. The interest
// component of each row is computed on the outstanding balance; the final
// row absorbs rounding drift so the principal components sum exactly to the
// principal.
func BuildSchedule(principal, annualRatePercent decimal.Decimal, tenureMonths int, startMonth string) []loan.ScheduleEntry {
	if tenureMonths <= 0 || !principal.IsPositive() {
		return nil
	}

	emi := ComputeEMI(principal, annualRatePercent, tenureMonths)
	r := decimal.Zero
	if !annualRatePercent.IsZero() {
		r = monthlyRate(annualRatePercent)
	}

	start, err := time.Parse(monthLayout, startMonth)
	if err != nil {
		start = time.Time{}
	}

	schedule := make([]loan.ScheduleEntry, 0, tenureMonths)
	outstanding := principal
	for i := 1; i <= tenureMonths; i++ {
		interest := outstanding.Mul(r).Round(2)
		principalComp := emi.Sub(interest)
		rowEMI := emi
		if i == tenureMonths || principalComp.GreaterThan(outstanding) {
			principalComp = outstanding
			rowEMI = principalComp.Add(interest)
		}
		outstanding = outstanding.Sub(principalComp)

		month := ""
		if !start.IsZero() {
			month = start.AddDate(0, i-1, 0).Format(monthLayout)
		}
		schedule = append(schedule, loan.ScheduleEntry{
			Installment:          i,
			Month:                month,
			EMI:                  rowEMI,
			PrincipalComponent:   principalComp,
			InterestComponent:    interest,
			OutstandingPrincipal: outstanding,
		})
		if outstanding.IsZero() && i < tenureMonths {
			break
		}
	}
	return schedule
}

// SettlementQuote prices an early close-out: the outstanding principal plus
// interest accrued for the elapsed months that repayments have not already
// covered. Accrued interest is simple interest on the original principal for
// the elapsed term.
type SettlementQuote struct {
	OutstandingPrincipal decimal.Decimal
	AccruedInterest      decimal.Decimal
	InterestAlreadyPaid  decimal.Decimal
	SettlementAmount     decimal.Decimal
}

func ComputeSettlement(l *loan.Loan, asOf time.Time) (SettlementQuote, error) {
	start, err := time.Parse(monthLayout, l.StartMonth)
	if err != nil {
		return SettlementQuote{}, err
	}
	if asOf.Before(start) {
		return SettlementQuote{}, loan.ErrInvalidSettlement
	}

	elapsed := monthsBetween(start, asOf)
	if elapsed > l.TenureMonths {
		elapsed = l.TenureMonths
	}

	outstanding := l.OutstandingPrincipal()
	interestPaid := l.InterestPaid()

	// P * rate/100 * months/12
	accrued := l.Principal.
		Mul(l.AnnualRatePercent).Div(hundred).
		Mul(decimal.NewFromInt(int64(elapsed))).DivRound(twelve, 2)

	unpaid := accrued.Sub(interestPaid)
	if unpaid.IsNegative() {
		unpaid = decimal.Zero
	}

	return SettlementQuote{
		OutstandingPrincipal: outstanding,
		AccruedInterest:      accrued,
		InterestAlreadyPaid:  interestPaid,
		SettlementAmount:     outstanding.Add(unpaid),
	}, nil
}

// InstallmentDue returns what the loan collects in the given YYYY-MM month:
// the EMI, clipped so the principal component never overshoots the balance,
// or zero when the month falls outside the schedule or nothing is owed.
func InstallmentDue(l *loan.Loan, month string) decimal.Decimal {
	if !l.IsOpen() {
		return decimal.Zero
	}
	start, err := time.Parse(monthLayout, l.StartMonth)
	if err != nil {
		return decimal.Zero
	}
	due, err := time.Parse(monthLayout, month)
	if err != nil || due.Before(start) {
		return decimal.Zero
	}
	if monthsBetween(start, due) >= l.TenureMonths {
		return decimal.Zero
	}

	outstanding := l.OutstandingPrincipal()
	if !outstanding.IsPositive() {
		return decimal.Zero
	}

	r := decimal.Zero
	if !l.AnnualRatePercent.IsZero() {
		r = monthlyRate(l.AnnualRatePercent)
	}
	interest := outstanding.Mul(r).Round(2)
	if l.EMI.GreaterThan(outstanding.Add(interest)) {
		return outstanding.Add(interest)
	}
	return l.EMI
}

func monthsBetween(start, end time.Time) int {
	months := int(end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if months < 0 {
		return 0
	}
	return months
}
