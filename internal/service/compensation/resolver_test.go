package compensation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpay/payroll-backend-go/internal/domain/compensation"
)

func fixedRule(amount string) compensation.Rule {
	d := decimal.RequireFromString(amount)
	return compensation.Rule{Kind: compensation.RuleKindFixed, Amount: &d}
}

func percentageRule(pct string, base compensation.PercentageBase) compensation.Rule {
	p := decimal.RequireFromString(pct)
	return compensation.Rule{Kind: compensation.RuleKindPercentage, Percentage: &p, Base: &base}
}

func strPtr(s string) *string { return &s }

func TestRuleResolver_DivisionOverrideWins(t *testing.T) {
	t.Parallel()
	resolver := NewRuleResolver()

	divX := "div-x"
	def := compensation.Definition{
		IsActive:   true,
		GlobalRule: percentageRule("10", compensation.BaseGross),
		Overrides: []compensation.OverrideRule{
			{DepartmentID: "dept-a", DivisionID: nil, Rule: fixedRule("500")},
			{DepartmentID: "dept-a", DivisionID: &divX, Rule: fixedRule("750")},
		},
	}

	rule, level, err := resolver.Resolve(def, "dept-a", &divX)
	require.NoError(t, err)
	assert.Equal(t, LevelDivision, level)
	assert.True(t, rule.Amount.Equal(decimal.NewFromInt(750)))
}

func TestRuleResolver_DepartmentOverrideBeatsGlobal(t *testing.T) {
	t.Parallel()
	resolver := NewRuleResolver()

	// Global rule = 10% of gross; department-wide override = fixed 500.
	// An employee in dept-a, division-x with no division-specific override
	// resolves to the fixed 500, not 10% of gross.
	def := compensation.Definition{
		IsActive:   true,
		GlobalRule: percentageRule("10", compensation.BaseGross),
		Overrides: []compensation.OverrideRule{
			{DepartmentID: "dept-a", DivisionID: nil, Rule: fixedRule("500")},
		},
	}

	rule, level, err := resolver.Resolve(def, "dept-a", strPtr("division-x"))
	require.NoError(t, err)
	assert.Equal(t, LevelDepartment, level)
	assert.Equal(t, compensation.RuleKindFixed, rule.Kind)
	assert.True(t, rule.Amount.Equal(decimal.NewFromInt(500)))
}

func TestRuleResolver_GlobalFallback(t *testing.T) {
	t.Parallel()
	resolver := NewRuleResolver()

	def := compensation.Definition{
		IsActive:   true,
		GlobalRule: percentageRule("10", compensation.BaseBasic),
		Overrides: []compensation.OverrideRule{
			{DepartmentID: "dept-b", DivisionID: nil, Rule: fixedRule("500")},
		},
	}

	rule, level, err := resolver.Resolve(def, "dept-a", nil)
	require.NoError(t, err)
	assert.Equal(t, LevelGlobal, level)
	assert.Equal(t, compensation.RuleKindPercentage, rule.Kind)
}

func TestRuleResolver_NoMergingAcrossLevels(t *testing.T) {
	t.Parallel()
	resolver := NewRuleResolver()

	// The global rule carries bounds; the department override does not.
	// The override must be used whole: no bounds leak down from global.
	min := decimal.NewFromInt(100)
	max := decimal.NewFromInt(1000)
	global := percentageRule("10", compensation.BaseGross)
	global.MinAmount = &min
	global.MaxAmount = &max

	def := compensation.Definition{
		IsActive:   true,
		GlobalRule: global,
		Overrides: []compensation.OverrideRule{
			{DepartmentID: "dept-a", DivisionID: nil, Rule: fixedRule("500")},
		},
	}

	rule, _, err := resolver.Resolve(def, "dept-a", nil)
	require.NoError(t, err)
	assert.Nil(t, rule.MinAmount)
	assert.Nil(t, rule.MaxAmount)
}

func TestRuleResolver_InactiveDefinitionContributesNothing(t *testing.T) {
	t.Parallel()
	resolver := NewRuleResolver()

	def := compensation.Definition{
		IsActive:   false,
		GlobalRule: fixedRule("500"),
	}

	rule, level, err := resolver.Resolve(def, "dept-a", nil)
	require.NoError(t, err)
	assert.Nil(t, rule)
	assert.Equal(t, LevelInactive, level)
}

func TestRuleResolver_MalformedGlobalRule(t *testing.T) {
	t.Parallel()
	resolver := NewRuleResolver()

	pct := decimal.NewFromInt(10)
	def := compensation.Definition{
		IsActive: true,
		// percentage without a base: write-time validation should have
		// rejected this, so resolve reports it as unresolvable.
		GlobalRule: compensation.Rule{Kind: compensation.RuleKindPercentage, Percentage: &pct},
	}

	_, _, err := resolver.Resolve(def, "dept-a", nil)
	assert.ErrorIs(t, err, compensation.ErrRuleNotResolvable)
}
