package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/talentpay/payroll-backend-go/internal/pkg/validator"
)

// ========== REQUEST DTO ==========

// RecordAdjustment carries one-off amounts entered for an employee before a
// batch run: incentives and arrears from earlier periods.
type RecordAdjustment struct {
	EmployeeID string          `json:"employeeId"`
	Incentive  decimal.Decimal `json:"incentive"`
	Arrears    decimal.Decimal `json:"arrears"`
}

func validateAdjustments(adjustments []RecordAdjustment, errs validator.ValidationErrors) validator.ValidationErrors {
	for i, adj := range adjustments {
		if validator.IsEmpty(adj.EmployeeID) {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("adjustments[%d].employeeId", i), Message: "Employee ID is required"})
		}
		if adj.Incentive.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("adjustments[%d].incentive", i), Message: "Incentive cannot be negative"})
		}
		if adj.Arrears.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("adjustments[%d].arrears", i), Message: "Arrears cannot be negative"})
		}
	}
	return errs
}

type CreateBatchRequest struct {
	DepartmentID string             `json:"departmentId"`
	Month        string             `json:"month"`
	Adjustments  []RecordAdjustment `json:"adjustments,omitempty"`
}

func (r *CreateBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DepartmentID) {
		errs = append(errs, validator.ValidationError{Field: "departmentId", Message: "Department ID is required"})
	}
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "Month must be in YYYY-MM format"})
	}
	errs = validateAdjustments(r.Adjustments, errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TransitionBatchRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

func (r *TransitionBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	valid := []string{
		string(BatchStatusPending),
		string(BatchStatusApproved),
		string(BatchStatusFreeze),
		string(BatchStatusComplete),
	}
	if !validator.IsInSlice(r.Status, valid) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "Status must be pending, approved, freeze, or complete"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestRecalculationRequest struct {
	Reason string `json:"reason"`
}

func (r *RequestRecalculationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "Reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecalculateBatchRequest struct {
	Reason      string             `json:"reason"`
	Adjustments []RecordAdjustment `json:"adjustments,omitempty"`
}

func (r *RecalculateBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "Reason is required"})
	}
	errs = validateAdjustments(r.Adjustments, errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSE DTO ==========

type ComponentLineResponse struct {
	DefinitionID string `json:"definitionId,omitempty"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Source       string `json:"source"`
	Amount       string `json:"amount"`
}

type RecordResponse struct {
	ID               string                  `json:"id"`
	BatchID          string                  `json:"batchId"`
	EmployeeID       string                  `json:"employeeId"`
	EmployeeName     *string                 `json:"employeeName,omitempty"`
	EmployeeCode     *string                 `json:"employeeCode,omitempty"`
	Month            string                  `json:"month"`
	BasicSalary      string                  `json:"basicSalary"`
	GrossSalary      string                  `json:"grossSalary"`
	PresentDays      string                  `json:"presentDays"`
	TotalDaysInMonth int                     `json:"totalDaysInMonth"`
	Earnings         []ComponentLineResponse `json:"earnings"`
	Deductions       []ComponentLineResponse `json:"deductions"`
	OvertimeAmount   string                  `json:"overtimeAmount"`
	LoanInstallment  string                  `json:"loanInstallment"`
	GrossPay         string                  `json:"grossPay"`
	TotalDeductions  string                  `json:"totalDeductions"`
	NetPay           string                  `json:"netPay"`
	RoundOff         string                  `json:"roundOff"`
}

type TotalsResponse struct {
	GrossPay        string `json:"grossPay"`
	TotalDeductions string `json:"totalDeductions"`
	NetPay          string `json:"netPay"`
	RoundOff        string `json:"roundOff"`
}

type StatusChangeResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	ChangedBy string `json:"changedBy"`
	ChangedAt string `json:"changedAt"`
	Note      string `json:"note,omitempty"`
}

type RecalculationPermissionResponse struct {
	Granted     bool    `json:"granted"`
	RequestedBy string  `json:"requestedBy"`
	RequestedAt string  `json:"requestedAt"`
	Reason      string  `json:"reason"`
	GrantedBy   *string `json:"grantedBy,omitempty"`
	GrantedAt   *string `json:"grantedAt,omitempty"`
	ExpiresAt   *string `json:"expiresAt,omitempty"`
}

type FieldChangeResponse struct {
	EmployeeID string `json:"employeeId"`
	Field      string `json:"field"`
	OldValue   string `json:"oldValue"`
	NewValue   string `json:"newValue"`
}

type RecalculationEntryResponse struct {
	RecalculatedBy string                `json:"recalculatedBy"`
	RecalculatedAt string                `json:"recalculatedAt"`
	Reason         string                `json:"reason"`
	Changes        []FieldChangeResponse `json:"changes"`
}

type ValidationStatusResponse struct {
	AllEmployeesCalculated bool     `json:"allEmployeesCalculated"`
	MissingEmployees       []string `json:"missingEmployees,omitempty"`
}

type BatchResponse struct {
	ID                      string                           `json:"id"`
	BatchNumber             string                           `json:"batchNumber"`
	DepartmentID            string                           `json:"departmentId"`
	DepartmentName          *string                          `json:"departmentName,omitempty"`
	Month                   string                           `json:"month"`
	Status                  string                           `json:"status"`
	TotalEmployees          int                              `json:"totalEmployees"`
	Totals                  TotalsResponse                   `json:"totals"`
	ValidationStatus        ValidationStatusResponse         `json:"validationStatus"`
	StatusHistory           []StatusChangeResponse           `json:"statusHistory,omitempty"`
	RecalculationPermission *RecalculationPermissionResponse `json:"recalculationPermission,omitempty"`
	RecalculationHistory    []RecalculationEntryResponse     `json:"recalculationHistory,omitempty"`
	CreatedBy               string                           `json:"createdBy"`
	CreatedAt               string                           `json:"createdAt"`
}
