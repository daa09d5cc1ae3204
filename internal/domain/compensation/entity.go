package compensation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category enum
type Category string

const (
	CategoryAllowance Category = "allowance"
	CategoryDeduction Category = "deduction"
)

// RuleKind enum
type RuleKind string

const (
	RuleKindFixed      RuleKind = "fixed"
	RuleKindPercentage RuleKind = "percentage"
)

// PercentageBase enum
type PercentageBase string

const (
	BaseBasic PercentageBase = "basic"
	BaseGross PercentageBase = "gross"
)

// Rule is a single compensation rule, embedded both as a definition's global
// default and inside each override.
type Rule struct {
	Kind               RuleKind         `json:"kind"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`             // fixed
	BasedOnPresentDays bool             `json:"basedOnPresentDays,omitempty"` // fixed only: prorate by present days
	Percentage         *decimal.Decimal `json:"percentage,omitempty"`         // percentage
	Base               *PercentageBase  `json:"base,omitempty"`               // percentage only
	MinAmount          *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount          *decimal.Decimal `json:"maxAmount,omitempty"`
}

// OverrideRule replaces the global rule for a department, or for one
// division-department combination when DivisionID is set.
type OverrideRule struct {
	ID           string
	DefinitionID string
	DepartmentID string
	DivisionID   *string
	Rule         Rule
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Definition - master allowance/deduction definition with a global default
// rule and an ordered set of scoped overrides.
type Definition struct {
	ID          string
	Name        string
	Category    Category
	Description *string
	IsActive    bool
	GlobalRule  Rule
	Overrides   []OverrideRule
	CreatedBy   *string
	UpdatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EmployeeOverride pins a definition to a fixed amount for one employee,
// replacing whatever the department/division hierarchy resolves to.
type EmployeeOverride struct {
	ID            string
	EmployeeID    string
	DefinitionID  string
	Amount        decimal.Decimal
	EffectiveDate time.Time
	EndDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined fields
	DefinitionName *string
	Category       *Category
}

// ActiveOn reports whether the override applies for the given date.
func (o EmployeeOverride) ActiveOn(date time.Time) bool {
	if date.Before(o.EffectiveDate) {
		return false
	}
	if o.EndDate != nil && date.After(*o.EndDate) {
		return false
	}
	return true
}

// Context supplies the salary and attendance figures Compute needs.
type Context struct {
	BasicSalary      decimal.Decimal
	GrossSalary      decimal.Decimal
	PresentDays      decimal.Decimal
	TotalDaysInMonth int
}
