package compensation

import (
	"github.com/talentpay/payroll-backend-go/internal/domain/compensation"
)

// ResolveLevel names the hierarchy level a resolution matched.
type ResolveLevel string

const (
	LevelDivision   ResolveLevel = "division"
	LevelDepartment ResolveLevel = "department"
	LevelGlobal     ResolveLevel = "global"
	LevelInactive   ResolveLevel = "inactive"
)

// RuleResolver resolves the effective rule of a definition for an employee's
// department and division context. Most specific scope wins; the winning
// level's rule is used whole, never merged with lower levels.
type RuleResolver struct {
}

func NewRuleResolver() *RuleResolver {
	return &RuleResolver{}
}

// Resolve returns the effective rule and the level it came from.
// A deactivated definition resolves to (nil, LevelInactive, nil): it simply
// contributes nothing, it does not fall back to the global rule.
func (r *RuleResolver) Resolve(def compensation.Definition, departmentID string, divisionID *string) (*compensation.Rule, ResolveLevel, error) {
	if !def.IsActive {
		return nil, LevelInactive, nil
	}

	// Priority 1: division-department specific override
	if divisionID != nil {
		for i := range def.Overrides {
			ov := def.Overrides[i]
			if ov.DepartmentID == departmentID && ov.DivisionID != nil && *ov.DivisionID == *divisionID {
				rule := ov.Rule
				return &rule, LevelDivision, nil
			}
		}
	}

	// Priority 2: department-wide override
	for i := range def.Overrides {
		ov := def.Overrides[i]
		if ov.DepartmentID == departmentID && ov.DivisionID == nil {
			rule := ov.Rule
			return &rule, LevelDepartment, nil
		}
	}

	// Priority 3: global rule. Malformed global rules must be rejected at
	// write time; reaching one here is corrupted master data.
	if err := checkRuleShape(def.GlobalRule); err != nil {
		return nil, LevelGlobal, err
	}
	rule := def.GlobalRule
	return &rule, LevelGlobal, nil
}

func checkRuleShape(rule compensation.Rule) error {
	switch rule.Kind {
	case compensation.RuleKindFixed:
		if rule.Amount == nil {
			return compensation.ErrRuleNotResolvable
		}
	case compensation.RuleKindPercentage:
		if rule.Percentage == nil || rule.Base == nil {
			return compensation.ErrRuleNotResolvable
		}
	default:
		return compensation.ErrRuleNotResolvable
	}
	return nil
}
