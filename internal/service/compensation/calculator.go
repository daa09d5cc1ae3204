package compensation

import (
	"github.com/shopspring/decimal"

	"github.com/talentpay/payroll-backend-go/internal/domain/compensation"
)

var hundred = decimal.NewFromInt(100)

// ComponentCalculator turns a resolved rule into a monetary amount for one
// employee and month. Pure: no I/O, safe to run concurrently per employee.
type ComponentCalculator struct {
}

func NewComponentCalculator() *ComponentCalculator {
	return &ComponentCalculator{}
}

// Compute applies the rule against the salary context.
// Fixed amounts optionally prorate by present days; percentage rules apply
// against basic or gross. Both branches clamp to the rule's optional bounds.
func (c *ComponentCalculator) Compute(rule compensation.Rule, ctx compensation.Context) (decimal.Decimal, error) {
	if ctx.TotalDaysInMonth <= 0 {
		return decimal.Zero, compensation.ErrInvalidPeriod
	}

	var amount decimal.Decimal

	switch rule.Kind {
	case compensation.RuleKindFixed:
		if rule.Amount == nil {
			return decimal.Zero, compensation.ErrRuleNotResolvable
		}
		amount = *rule.Amount
		if rule.BasedOnPresentDays {
			monthDays := decimal.NewFromInt(int64(ctx.TotalDaysInMonth))
			amount = amount.Mul(ctx.PresentDays).Div(monthDays).Round(2)
		}

	case compensation.RuleKindPercentage:
		if rule.Percentage == nil || rule.Base == nil {
			return decimal.Zero, compensation.ErrRuleNotResolvable
		}
		base := ctx.BasicSalary
		if *rule.Base == compensation.BaseGross {
			base = ctx.GrossSalary
		}
		amount = rule.Percentage.Div(hundred).Mul(base).Round(2)

	default:
		return decimal.Zero, compensation.ErrRuleNotResolvable
	}

	// Each bound is independently optional; unset means no limit on that side.
	if rule.MinAmount != nil && amount.LessThan(*rule.MinAmount) {
		amount = *rule.MinAmount
	}
	if rule.MaxAmount != nil && amount.GreaterThan(*rule.MaxAmount) {
		amount = *rule.MaxAmount
	}

	return amount, nil
}
