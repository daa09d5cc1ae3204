package deduction

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeductionType enum
type DeductionType string

const (
	DeductionHalfDay      DeductionType = "half_day"
	DeductionFullDay      DeductionType = "full_day"
	DeductionCustomAmount DeductionType = "custom_amount"
)

// CalculationMode enum
type CalculationMode string

const (
	// ModeFloor triggers only on full multiples of the threshold; the
	// remainder is ignored.
	ModeFloor CalculationMode = "floor"
	// ModeProportional converts the raw event/threshold ratio without
	// rounding.
	ModeProportional CalculationMode = "proportional"
)

// RuleScope identifies which event stream a threshold config governs.
type RuleScope string

const (
	ScopeAttendance RuleScope = "attendance" // combined late-in + early-out
	ScopePermission RuleScope = "permission"
)

// RuleConfig converts event counts into deduction units.
type RuleConfig struct {
	ID                     string
	Scope                  RuleScope
	DepartmentID           *string // nil = global row
	DivisionID             *string
	CountThreshold         int
	DeductionType          DeductionType
	CustomAmount           *decimal.Decimal // required iff DeductionType == custom_amount
	MinimumDurationMinutes int
	CalculationMode        CalculationMode
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// EarlyOutRange is a half-open [MinMinutes, MaxMinutes) deduction tier.
type EarlyOutRange struct {
	MinMinutes    int              `json:"minMinutes"`
	MaxMinutes    int              `json:"maxMinutes"`
	DeductionType DeductionType    `json:"deductionType"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Description   string           `json:"description,omitempty"`
}

// Contains reports whether the duration falls inside the half-open interval.
func (r EarlyOutRange) Contains(durationMinutes int) bool {
	return durationMinutes >= r.MinMinutes && durationMinutes < r.MaxMinutes
}

// EarlyOutSettings enables the independent early-out tier model for a scope.
// While enabled, early-out events leave the combined late-in/early-out tally
// and are deducted via range lookup instead.
type EarlyOutSettings struct {
	ID                     string
	DepartmentID           *string
	DivisionID             *string
	Enabled                bool
	AllowedDurationMinutes int
	MinimumDurationMinutes int
	Ranges                 []EarlyOutRange
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// EventDuration is one late-in, early-out, or permission occurrence.
type EventDuration struct {
	Date            time.Time
	DurationMinutes int
}

// MonthlyTally aggregates one employee's countable events for one month.
// Supplied by the attendance/permission collaborators; never written here.
type MonthlyTally struct {
	EmployeeID       string
	Month            string // YYYY-MM
	PresentDays      decimal.Decimal
	TotalDaysInMonth int
	LeaveDays        decimal.Decimal
	PaidLeaveDays    decimal.Decimal
	ODDays           decimal.Decimal
	OTHours          decimal.Decimal
	LateIns          []EventDuration
	EarlyOuts        []EventDuration
	Permissions      []EventDuration
}
