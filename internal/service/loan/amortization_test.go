package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpay/payroll-backend-go/internal/domain/loan"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeEMI(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		tenure    int
		want      string
	}{
		{
			name:      "reducing balance at twelve percent",
			principal: "12000",
			rate:      "12",
			tenure:    12,
			want:      "1066.19",
		},
		{
			name:      "zero rate degenerates to flat installments",
			principal: "10000",
			rate:      "0",
			tenure:    4,
			want:      "2500",
		},
		{
			name:      "single installment at zero rate repays everything",
			principal: "5000",
			rate:      "0",
			tenure:    1,
			want:      "5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEMI(dec(tt.principal), dec(tt.rate), tt.tenure)
			assert.True(t, got.Equal(dec(tt.want)), "emi = %s, want %s", got, tt.want)
		})
	}

	t.Run("zero tenure yields nothing", func(t *testing.T) {
		assert.True(t, ComputeEMI(dec("1000"), dec("10"), 0).IsZero())
	})
}

func TestBuildSchedule(t *testing.T) {
	t.Run("first row splits interest on the full balance", func(t *testing.T) {
		schedule := BuildSchedule(dec("12000"), dec("12"), 12, "2026-01")
		require.Len(t, schedule, 12)

		first := schedule[0]
		assert.Equal(t, "2026-01", first.Month)
		assert.True(t, first.InterestComponent.Equal(dec("120")),
			"interest = %s, want 120", first.InterestComponent)
		assert.True(t, first.PrincipalComponent.Equal(dec("946.19")),
			"principal = %s, want 946.19", first.PrincipalComponent)
		assert.True(t, first.OutstandingPrincipal.Equal(dec("11053.81")),
			"outstanding = %s, want 11053.81", first.OutstandingPrincipal)
	})

	t.Run("principal components sum exactly to the principal", func(t *testing.T) {
		principal := dec("12000")
		schedule := BuildSchedule(principal, dec("12"), 12, "2026-01")

		total := decimal.Zero
		for _, e := range schedule {
			total = total.Add(e.PrincipalComponent)
		}
		assert.True(t, total.Equal(principal), "sum = %s, want %s", total, principal)
		assert.True(t, schedule[len(schedule)-1].OutstandingPrincipal.IsZero())
	})

	t.Run("months advance from the start month", func(t *testing.T) {
		schedule := BuildSchedule(dec("3000"), dec("0"), 3, "2026-11")
		require.Len(t, schedule, 3)
		assert.Equal(t, "2026-11", schedule[0].Month)
		assert.Equal(t, "2026-12", schedule[1].Month)
		assert.Equal(t, "2027-01", schedule[2].Month)
	})

	t.Run("flat recovery schedule has no interest", func(t *testing.T) {
		schedule := BuildSchedule(dec("9000"), dec("0"), 3, "2026-01")
		require.Len(t, schedule, 3)
		for _, e := range schedule {
			assert.True(t, e.InterestComponent.IsZero())
			assert.True(t, e.PrincipalComponent.Equal(dec("3000")))
		}
	})
}

func settledLoan(principalRepaid, interestPaid string) *loan.Loan {
	return &loan.Loan{
		ID:                "loan-1",
		Principal:         dec("10000"),
		AnnualRatePercent: dec("12"),
		TenureMonths:      12,
		Status:            loan.StatusActive,
		StartMonth:        "2026-01",
		Transactions: []loan.Transaction{
			{Type: loan.TxnDisbursement, Amount: dec("10000")},
			{
				Type:               loan.TxnRepayment,
				PrincipalComponent: dec(principalRepaid),
				InterestComponent:  dec(interestPaid),
			},
		},
	}
}

func TestComputeSettlement(t *testing.T) {
	t.Run("outstanding plus unpaid accrued interest", func(t *testing.T) {
		l := settledLoan("2000", "250")
		asOf := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

		quote, err := ComputeSettlement(l, asOf)
		require.NoError(t, err)

		// 3 months elapsed: accrued = 10000 * 12% * 3/12 = 300
		assert.True(t, quote.AccruedInterest.Equal(dec("300")),
			"accrued = %s, want 300", quote.AccruedInterest)
		assert.True(t, quote.OutstandingPrincipal.Equal(dec("8000")))
		assert.True(t, quote.SettlementAmount.Equal(dec("8050")),
			"settlement = %s, want 8050", quote.SettlementAmount)
	})

	t.Run("overpaid interest never reduces the principal owed", func(t *testing.T) {
		l := settledLoan("2000", "500")
		asOf := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

		quote, err := ComputeSettlement(l, asOf)
		require.NoError(t, err)
		assert.True(t, quote.SettlementAmount.Equal(dec("8000")),
			"settlement = %s, want 8000", quote.SettlementAmount)
	})

	t.Run("elapsed months cap at the tenure", func(t *testing.T) {
		l := settledLoan("2000", "0")
		asOf := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

		quote, err := ComputeSettlement(l, asOf)
		require.NoError(t, err)
		// full-term accrual: 10000 * 12% * 12/12 = 1200
		assert.True(t, quote.AccruedInterest.Equal(dec("1200")),
			"accrued = %s, want 1200", quote.AccruedInterest)
	})

	t.Run("dates before the start month are rejected", func(t *testing.T) {
		l := settledLoan("0", "0")
		asOf := time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)

		_, err := ComputeSettlement(l, asOf)
		assert.ErrorIs(t, err, loan.ErrInvalidSettlement)
	})
}

func TestBuildRepayment(t *testing.T) {
	l := &loan.Loan{
		ID:                "loan-1",
		Principal:         dec("12000"),
		AnnualRatePercent: dec("12"),
		TenureMonths:      12,
		EMI:               dec("1066.19"),
		Status:            loan.StatusActive,
		StartMonth:        "2026-01",
	}

	t.Run("splits the scheduled EMI against the full balance", func(t *testing.T) {
		txn := buildRepayment(l, "2026-01", "")
		assert.True(t, txn.InterestComponent.Equal(dec("120")))
		assert.True(t, txn.PrincipalComponent.Equal(dec("946.19")))
	})

	t.Run("final payment is clipped to the balance", func(t *testing.T) {
		small := &loan.Loan{
			ID:                "loan-2",
			Principal:         dec("1000"),
			AnnualRatePercent: dec("0"),
			TenureMonths:      2,
			EMI:               dec("500"),
			Status:            loan.StatusActive,
			StartMonth:        "2026-01",
			Transactions: []loan.Transaction{
				{Type: loan.TxnRepayment, PrincipalComponent: dec("900")},
			},
		}
		txn := buildRepayment(small, "2026-02", "")
		assert.True(t, txn.PrincipalComponent.Equal(dec("100")),
			"principal = %s, want 100", txn.PrincipalComponent)
		assert.True(t, txn.Amount.Equal(dec("100")))
	})
}
