package compensation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpay/payroll-backend-go/internal/domain/compensation"
)

func calcContext(basic, gross string, presentDays, monthDays int) compensation.Context {
	return compensation.Context{
		BasicSalary:      decimal.RequireFromString(basic),
		GrossSalary:      decimal.RequireFromString(gross),
		PresentDays:      decimal.NewFromInt(int64(presentDays)),
		TotalDaysInMonth: monthDays,
	}
}

func TestComponentCalculator_FixedNoProration(t *testing.T) {
	t.Parallel()
	calc := NewComponentCalculator()

	amount, err := calc.Compute(fixedRule("1500"), calcContext("20000", "30000", 10, 30))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(1500)), "fixed amount ignores attendance unless prorated")
}

func TestComponentCalculator_FixedProrated(t *testing.T) {
	t.Parallel()
	calc := NewComponentCalculator()

	rule := fixedRule("3000")
	rule.BasedOnPresentDays = true

	tests := []struct {
		name        string
		presentDays int
		monthDays   int
		want        string
	}{
		{"full month equals unprorated", 30, 30, "3000"},
		{"two thirds", 20, 30, "2000"},
		{"rounding half up", 31, 31, "3000"},
		{"one day", 1, 30, "100"},
		{"zero present days", 0, 30, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := calc.Compute(rule, calcContext("20000", "30000", tt.presentDays, tt.monthDays))
			require.NoError(t, err)
			assert.True(t, amount.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", amount, tt.want)
		})
	}
}

func TestComponentCalculator_ProrationScalesLinearly(t *testing.T) {
	t.Parallel()
	calc := NewComponentCalculator()

	rule := fixedRule("3100")
	rule.BasedOnPresentDays = true

	ten, err := calc.Compute(rule, calcContext("20000", "30000", 10, 31))
	require.NoError(t, err)
	twenty, err := calc.Compute(rule, calcContext("20000", "30000", 20, 31))
	require.NoError(t, err)

	assert.True(t, twenty.Equal(ten.Mul(decimal.NewFromInt(2))))
}

func TestComponentCalculator_PercentageBases(t *testing.T) {
	t.Parallel()
	calc := NewComponentCalculator()

	basic, err := calc.Compute(percentageRule("12", compensation.BaseBasic), calcContext("20000", "36000", 30, 30))
	require.NoError(t, err)
	assert.True(t, basic.Equal(decimal.NewFromInt(2400)))

	gross, err := calc.Compute(percentageRule("12", compensation.BaseGross), calcContext("20000", "36000", 30, 30))
	require.NoError(t, err)
	assert.True(t, gross.Equal(decimal.NewFromInt(4320)))
}

func TestComponentCalculator_Clamping(t *testing.T) {
	t.Parallel()
	calc := NewComponentCalculator()

	min := decimal.NewFromInt(1000)
	max := decimal.NewFromInt(2000)

	rule := percentageRule("10", compensation.BaseBasic)
	rule.MinAmount = &min
	rule.MaxAmount = &max

	tests := []struct {
		name  string
		basic string
		want  string
	}{
		{"below min clamps up", "5000", "1000"},
		{"inside bounds untouched", "15000", "1500"},
		{"above max clamps down", "900000", "2000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := calc.Compute(rule, calcContext(tt.basic, tt.basic, 30, 30))
			require.NoError(t, err)
			assert.True(t, amount.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", amount, tt.want)
			assert.False(t, amount.LessThan(min))
			assert.False(t, amount.GreaterThan(max))
		})
	}
}

func TestComponentCalculator_IndependentBounds(t *testing.T) {
	t.Parallel()
	calc := NewComponentCalculator()

	max := decimal.NewFromInt(1800)
	rule := percentageRule("10", compensation.BaseBasic)
	rule.MaxAmount = &max // no min: no lower limit

	amount, err := calc.Compute(rule, calcContext("500", "500", 30, 30))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(50)))
}

func TestComponentCalculator_ZeroMonthDays(t *testing.T) {
	t.Parallel()
	calc := NewComponentCalculator()

	_, err := calc.Compute(fixedRule("1500"), calcContext("20000", "30000", 10, 0))
	assert.ErrorIs(t, err, compensation.ErrInvalidPeriod)
}
