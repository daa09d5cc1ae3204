package compensation

import (
	"github.com/shopspring/decimal"
	"github.com/talentpay/payroll-backend-go/internal/pkg/validator"
)

// ========== RULE DTO ==========

type RuleRequest struct {
	Kind               string           `json:"kind"` // "fixed" or "percentage"
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	BasedOnPresentDays *bool            `json:"based_on_present_days,omitempty"`
	Percentage         *decimal.Decimal `json:"percentage,omitempty"`
	Base               *string          `json:"base,omitempty"` // "basic" or "gross"
	MinAmount          *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount          *decimal.Decimal `json:"max_amount,omitempty"`
}

func (r *RuleRequest) validate(field string, errs validator.ValidationErrors) validator.ValidationErrors {
	switch RuleKind(r.Kind) {
	case RuleKindFixed:
		if r.Amount == nil {
			errs = append(errs, validator.ValidationError{Field: field + ".amount", Message: "is required when kind is fixed"})
		} else if r.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + ".amount", Message: "must be non-negative"})
		}
		if r.Percentage != nil {
			errs = append(errs, validator.ValidationError{Field: field + ".percentage", Message: "must be empty when kind is fixed"})
		}
	case RuleKindPercentage:
		if r.Percentage == nil {
			errs = append(errs, validator.ValidationError{Field: field + ".percentage", Message: "is required when kind is percentage"})
		} else if r.Percentage.IsNegative() || r.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			errs = append(errs, validator.ValidationError{Field: field + ".percentage", Message: "must be between 0 and 100"})
		}
		if r.Base == nil {
			errs = append(errs, validator.ValidationError{Field: field + ".base", Message: "is required when kind is percentage"})
		} else if *r.Base != string(BaseBasic) && *r.Base != string(BaseGross) {
			errs = append(errs, validator.ValidationError{Field: field + ".base", Message: "must be 'basic' or 'gross'"})
		}
		if r.Amount != nil {
			errs = append(errs, validator.ValidationError{Field: field + ".amount", Message: "must be empty when kind is percentage"})
		}
	default:
		errs = append(errs, validator.ValidationError{Field: field + ".kind", Message: "must be 'fixed' or 'percentage'"})
	}

	if r.MinAmount != nil && r.MaxAmount != nil && r.MinAmount.GreaterThan(*r.MaxAmount) {
		errs = append(errs, validator.ValidationError{Field: field + ".min_amount", Message: "cannot be greater than max_amount"})
	}

	return errs
}

// ToRule converts a validated request into the domain rule.
func (r *RuleRequest) ToRule() Rule {
	rule := Rule{
		Kind:       RuleKind(r.Kind),
		Amount:     r.Amount,
		Percentage: r.Percentage,
		MinAmount:  r.MinAmount,
		MaxAmount:  r.MaxAmount,
	}
	if r.BasedOnPresentDays != nil {
		rule.BasedOnPresentDays = *r.BasedOnPresentDays
	}
	if r.Base != nil {
		base := PercentageBase(*r.Base)
		rule.Base = &base
	}
	return rule
}

// ========== DEFINITION DTOs ==========

type CreateDefinitionRequest struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"` // "allowance" or "deduction"
	Description *string     `json:"description,omitempty"`
	GlobalRule  RuleRequest `json:"global_rule"`
}

func (r *CreateDefinitionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.Category != string(CategoryAllowance) && r.Category != string(CategoryDeduction) {
		errs = append(errs, validator.ValidationError{Field: "category", Message: "must be 'allowance' or 'deduction'"})
	}
	errs = r.GlobalRule.validate("global_rule", errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateDefinitionRequest struct {
	ID          string
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	IsActive    *bool        `json:"is_active,omitempty"`
	GlobalRule  *RuleRequest `json:"global_rule,omitempty"`
}

func (r *UpdateDefinitionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "cannot be empty"})
	}
	if r.GlobalRule != nil {
		errs = r.GlobalRule.validate("global_rule", errs)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpsertOverrideRequest creates or replaces the override for one
// (department, division) scope. A second write to the same scope is an
// update, never a duplicate.
type UpsertOverrideRequest struct {
	DefinitionID string      `json:"-"`
	DepartmentID string      `json:"department_id"`
	DivisionID   *string     `json:"division_id,omitempty"`
	Rule         RuleRequest `json:"rule"`
}

func (r *UpsertOverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DepartmentID) {
		errs = append(errs, validator.ValidationError{Field: "department_id", Message: "is required"})
	}
	errs = r.Rule.validate("rule", errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignEmployeeOverrideRequest struct {
	EmployeeID    string          `json:"-"`
	DefinitionID  string          `json:"definition_id"`
	Amount        decimal.Decimal `json:"amount"`
	EffectiveDate *string         `json:"effective_date,omitempty"`
	EndDate       *string         `json:"end_date,omitempty"`
}

func (r *AssignEmployeeOverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DefinitionID) {
		errs = append(errs, validator.ValidationError{Field: "definition_id", Message: "is required"})
	}
	if r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be non-negative"})
	}
	if r.EffectiveDate != nil {
		if _, ok := validator.IsValidDate(*r.EffectiveDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSES ==========

type RuleResponse struct {
	Kind               string           `json:"kind"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	BasedOnPresentDays bool             `json:"based_on_present_days"`
	Percentage         *decimal.Decimal `json:"percentage,omitempty"`
	Base               *string          `json:"base,omitempty"`
	MinAmount          *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount          *decimal.Decimal `json:"max_amount,omitempty"`
}

type OverrideResponse struct {
	ID           string       `json:"id"`
	DepartmentID string       `json:"department_id"`
	DivisionID   *string      `json:"division_id,omitempty"`
	Rule         RuleResponse `json:"rule"`
}

type DefinitionResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Description *string            `json:"description,omitempty"`
	IsActive    bool               `json:"is_active"`
	GlobalRule  RuleResponse       `json:"global_rule"`
	Overrides   []OverrideResponse `json:"overrides,omitempty"`
}

type EmployeeOverrideResponse struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employee_id"`
	DefinitionID   string          `json:"definition_id"`
	DefinitionName string          `json:"definition_name,omitempty"`
	Category       string          `json:"category,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	EffectiveDate  string          `json:"effective_date"`
	EndDate        *string         `json:"end_date,omitempty"`
}

// ResolvePreviewResponse is the read-only resolve endpoint's payload.
type ResolvePreviewResponse struct {
	DefinitionID string       `json:"definition_id"`
	DepartmentID string       `json:"department_id"`
	DivisionID   *string      `json:"division_id,omitempty"`
	Level        string       `json:"level"` // "division", "department", "global", "inactive"
	Rule         *RuleResponse `json:"rule,omitempty"`
}
