package deduction

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/talentpay/payroll-backend-go/internal/pkg/validator"
)

// ========== REQUEST DTO ==========

type UpsertRuleConfigRequest struct {
	Scope                  string  `json:"scope"`
	DepartmentID           *string `json:"departmentId,omitempty"`
	DivisionID             *string `json:"divisionId,omitempty"`
	CountThreshold         int     `json:"countThreshold"`
	DeductionType          string  `json:"deductionType"`
	CustomAmount           *string `json:"customAmount,omitempty"`
	MinimumDurationMinutes int     `json:"minimumDurationMinutes"`
	CalculationMode        string  `json:"calculationMode"`
}

func (r *UpsertRuleConfigRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Scope, []string{string(ScopeAttendance), string(ScopePermission)}) {
		errs = append(errs, validator.ValidationError{Field: "scope", Message: "Scope must be attendance or permission"})
	}
	if r.DivisionID != nil && r.DepartmentID == nil {
		errs = append(errs, validator.ValidationError{Field: "divisionId", Message: "Division scope requires a department"})
	}
	if r.CountThreshold < 1 {
		errs = append(errs, validator.ValidationError{Field: "countThreshold", Message: "Count threshold must be at least 1"})
	}
	if !validator.IsInSlice(r.DeductionType, []string{string(DeductionHalfDay), string(DeductionFullDay), string(DeductionCustomAmount)}) {
		errs = append(errs, validator.ValidationError{Field: "deductionType", Message: "Deduction type must be half_day, full_day, or custom_amount"})
	}
	if r.DeductionType == string(DeductionCustomAmount) {
		if r.CustomAmount == nil {
			errs = append(errs, validator.ValidationError{Field: "customAmount", Message: "Custom amount is required for custom_amount type"})
		} else if amt, err := decimal.NewFromString(*r.CustomAmount); err != nil || amt.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "customAmount", Message: "Custom amount must be a non-negative number"})
		}
	} else if r.CustomAmount != nil {
		errs = append(errs, validator.ValidationError{Field: "customAmount", Message: "Custom amount is only allowed for custom_amount type"})
	}
	if r.MinimumDurationMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "minimumDurationMinutes", Message: "Minimum duration cannot be negative"})
	}
	if !validator.IsInSlice(r.CalculationMode, []string{string(ModeFloor), string(ModeProportional)}) {
		errs = append(errs, validator.ValidationError{Field: "calculationMode", Message: "Calculation mode must be floor or proportional"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *UpsertRuleConfigRequest) ToConfig() RuleConfig {
	cfg := RuleConfig{
		Scope:                  RuleScope(r.Scope),
		DepartmentID:           r.DepartmentID,
		DivisionID:             r.DivisionID,
		CountThreshold:         r.CountThreshold,
		DeductionType:          DeductionType(r.DeductionType),
		MinimumDurationMinutes: r.MinimumDurationMinutes,
		CalculationMode:        CalculationMode(r.CalculationMode),
	}
	if r.CustomAmount != nil {
		amt, _ := decimal.NewFromString(*r.CustomAmount)
		cfg.CustomAmount = &amt
	}
	return cfg
}

type EarlyOutRangeRequest struct {
	MinMinutes    int     `json:"minMinutes"`
	MaxMinutes    int     `json:"maxMinutes"`
	DeductionType string  `json:"deductionType"`
	Amount        *string `json:"amount,omitempty"`
	Description   string  `json:"description,omitempty"`
}

type UpsertEarlyOutSettingsRequest struct {
	DepartmentID           *string                `json:"departmentId,omitempty"`
	DivisionID             *string                `json:"divisionId,omitempty"`
	Enabled                bool                   `json:"enabled"`
	AllowedDurationMinutes int                    `json:"allowedDurationMinutes"`
	MinimumDurationMinutes int                    `json:"minimumDurationMinutes"`
	Ranges                 []EarlyOutRangeRequest `json:"ranges"`
}

func (r *UpsertEarlyOutSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DivisionID != nil && r.DepartmentID == nil {
		errs = append(errs, validator.ValidationError{Field: "divisionId", Message: "Division scope requires a department"})
	}
	if r.AllowedDurationMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "allowedDurationMinutes", Message: "Allowed duration cannot be negative"})
	}
	if r.MinimumDurationMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "minimumDurationMinutes", Message: "Minimum duration cannot be negative"})
	}
	for i, rg := range r.Ranges {
		field := fmt.Sprintf("ranges[%d]", i)
		if rg.MinMinutes < 0 {
			errs = append(errs, validator.ValidationError{Field: field + ".minMinutes", Message: "Range minimum cannot be negative"})
		}
		if rg.MaxMinutes <= rg.MinMinutes {
			errs = append(errs, validator.ValidationError{Field: field + ".maxMinutes", Message: "Range maximum must be greater than minimum"})
		}
		if !validator.IsInSlice(rg.DeductionType, []string{string(DeductionHalfDay), string(DeductionFullDay), string(DeductionCustomAmount)}) {
			errs = append(errs, validator.ValidationError{Field: field + ".deductionType", Message: "Deduction type must be half_day, full_day, or custom_amount"})
		}
		if rg.DeductionType == string(DeductionCustomAmount) {
			if rg.Amount == nil {
				errs = append(errs, validator.ValidationError{Field: field + ".amount", Message: "Amount is required for custom_amount ranges"})
			} else if amt, err := decimal.NewFromString(*rg.Amount); err != nil || amt.IsNegative() {
				errs = append(errs, validator.ValidationError{Field: field + ".amount", Message: "Amount must be a non-negative number"})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *UpsertEarlyOutSettingsRequest) ToSettings() EarlyOutSettings {
	s := EarlyOutSettings{
		DepartmentID:           r.DepartmentID,
		DivisionID:             r.DivisionID,
		Enabled:                r.Enabled,
		AllowedDurationMinutes: r.AllowedDurationMinutes,
		MinimumDurationMinutes: r.MinimumDurationMinutes,
		Ranges:                 make([]EarlyOutRange, 0, len(r.Ranges)),
	}
	for _, rg := range r.Ranges {
		er := EarlyOutRange{
			MinMinutes:    rg.MinMinutes,
			MaxMinutes:    rg.MaxMinutes,
			DeductionType: DeductionType(rg.DeductionType),
			Description:   rg.Description,
		}
		if rg.Amount != nil {
			amt, _ := decimal.NewFromString(*rg.Amount)
			er.Amount = &amt
		}
		s.Ranges = append(s.Ranges, er)
	}
	return s
}

type PreviewDeductionRequest struct {
	EmployeeID string `json:"employeeId"`
	Month      string `json:"month"`
}

func (r *PreviewDeductionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs = append(errs, validator.ValidationError{Field: "employeeId", Message: "Employee ID is required"})
	}
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "Month must be in YYYY-MM format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSE DTO ==========

type RuleConfigResponse struct {
	ID                     string  `json:"id"`
	Scope                  string  `json:"scope"`
	DepartmentID           *string `json:"departmentId,omitempty"`
	DivisionID             *string `json:"divisionId,omitempty"`
	CountThreshold         int     `json:"countThreshold"`
	DeductionType          string  `json:"deductionType"`
	CustomAmount           *string `json:"customAmount,omitempty"`
	MinimumDurationMinutes int     `json:"minimumDurationMinutes"`
	CalculationMode        string  `json:"calculationMode"`
	CreatedAt              string  `json:"createdAt"`
	UpdatedAt              string  `json:"updatedAt"`
}

type EarlyOutRangeResponse struct {
	MinMinutes    int     `json:"minMinutes"`
	MaxMinutes    int     `json:"maxMinutes"`
	DeductionType string  `json:"deductionType"`
	Amount        *string `json:"amount,omitempty"`
	Description   string  `json:"description,omitempty"`
}

type EarlyOutSettingsResponse struct {
	ID                     string                  `json:"id"`
	DepartmentID           *string                 `json:"departmentId,omitempty"`
	DivisionID             *string                 `json:"divisionId,omitempty"`
	Enabled                bool                    `json:"enabled"`
	AllowedDurationMinutes int                     `json:"allowedDurationMinutes"`
	MinimumDurationMinutes int                     `json:"minimumDurationMinutes"`
	Ranges                 []EarlyOutRangeResponse `json:"ranges"`
	CreatedAt              string                  `json:"createdAt"`
	UpdatedAt              string                  `json:"updatedAt"`
}

type DeductionPreviewResponse struct {
	EmployeeID          string `json:"employeeId"`
	Month               string `json:"month"`
	AttendanceDays      string `json:"attendanceDays"`
	PermissionDays      string `json:"permissionDays"`
	EarlyOutDays        string `json:"earlyOutDays"`
	TotalDays           string `json:"totalDays"`
	CustomAmount        string `json:"customAmount"`
	EligibleLateIns     int    `json:"eligibleLateIns"`
	EligibleEarlyOuts   int    `json:"eligibleEarlyOuts"`
	EligiblePermissions int    `json:"eligiblePermissions"`
	EarlyOutMode        string `json:"earlyOutMode"`
}
