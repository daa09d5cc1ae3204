package response

import (
	"errors"
	"net/http"

	"github.com/talentpay/payroll-backend-go/internal/domain/attendance"
	"github.com/talentpay/payroll-backend-go/internal/domain/compensation"
	"github.com/talentpay/payroll-backend-go/internal/domain/deduction"
	"github.com/talentpay/payroll-backend-go/internal/domain/employee"
	"github.com/talentpay/payroll-backend-go/internal/domain/loan"
	"github.com/talentpay/payroll-backend-go/internal/domain/master/department"
	"github.com/talentpay/payroll-backend-go/internal/domain/master/division"
	"github.com/talentpay/payroll-backend-go/internal/domain/payroll"
	"github.com/talentpay/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Policy violations carry the failing constraint as a detail.
	var policyErr *loan.PolicyViolationError
	if errors.As(err, &policyErr) {
		writeJSON(w, http.StatusUnprocessableEntity, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "POLICY_VIOLATION",
				Message: policyErr.Message,
				Details: map[string]string{"constraint": policyErr.Constraint},
			},
		})
		return
	}

	switch {
	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, department.ErrDepartmentNotFound):
		NotFound(w, "Department not found")
	case errors.Is(err, division.ErrDivisionNotFound):
		NotFound(w, "Division not found")
	case errors.Is(err, compensation.ErrDefinitionNotFound):
		NotFound(w, "Compensation definition not found")
	case errors.Is(err, compensation.ErrOverrideNotFound):
		NotFound(w, "Override rule not found")
	case errors.Is(err, compensation.ErrEmployeeOverrideNotFound):
		NotFound(w, "Employee override not found")
	case errors.Is(err, deduction.ErrConfigNotFound):
		NotFound(w, "Deduction rule config not found")
	case errors.Is(err, deduction.ErrEarlyOutSettingNotFound):
		NotFound(w, "Early-out settings not found")
	case errors.Is(err, loan.ErrLoanNotFound):
		NotFound(w, "Loan not found")
	case errors.Is(err, loan.ErrPolicyNotFound):
		NotFound(w, "Loan policy not found")
	case errors.Is(err, payroll.ErrBatchNotFound):
		NotFound(w, "Payroll batch not found")
	case errors.Is(err, payroll.ErrRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, attendance.ErrTallyNotFound):
		NotFound(w, "No attendance recorded for the month")

	// Conflicts
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, department.ErrDepartmentCodeExists):
		Conflict(w, "Department code already exists")
	case errors.Is(err, division.ErrDivisionNameExists):
		Conflict(w, "Division name already exists in this department")
	case errors.Is(err, compensation.ErrDefinitionNameExists):
		Conflict(w, "Compensation definition name already exists")
	case errors.Is(err, payroll.ErrBatchAlreadyExists):
		Conflict(w, "Payroll batch already exists for this department and month")
	case errors.Is(err, payroll.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrIncompleteBatch):
		Conflict(w, "Batch cannot complete while employees are missing")
	case errors.Is(err, payroll.ErrConcurrentModification):
		Conflict(w, "Batch was modified by someone else, reload and retry")
	case errors.Is(err, loan.ErrDuplicateRepayment):
		Conflict(w, "Repayment already recorded for this month")
	case errors.Is(err, loan.ErrLoanNotPending):
		Conflict(w, "Loan is no longer pending")
	case errors.Is(err, loan.ErrLoanNotActive):
		Conflict(w, "Loan is not active")

	// Authorization
	case errors.Is(err, payroll.ErrRecalculationNotAuthorized):
		Forbidden(w, "Recalculation is not authorized")

	// Bad requests
	case errors.Is(err, payroll.ErrInvalidPeriod), errors.Is(err, compensation.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrNoRecalculationRequest):
		BadRequest(w, "No recalculation request to grant", nil)
	case errors.Is(err, loan.ErrPolicyInactive):
		BadRequest(w, "Loan policy is inactive", nil)
	case errors.Is(err, loan.ErrInvalidSettlement):
		BadRequest(w, "Settlement date is before the loan start", nil)
	case errors.Is(err, deduction.ErrInvalidRange), errors.Is(err, deduction.ErrOverlappingRanges):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, employee.ErrEmployeeInactive):
		BadRequest(w, "Employee is not active", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
