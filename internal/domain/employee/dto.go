package employee

import (
	"github.com/shopspring/decimal"

	"github.com/talentpay/payroll-backend-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	EmployeeCode      string          `json:"employeeCode" validate:"required,max=20"`
	FullName          string          `json:"fullName" validate:"required,max=100"`
	DepartmentID      string          `json:"departmentId" validate:"required"`
	DivisionID        *string         `json:"divisionId,omitempty"`
	HireDate          string          `json:"hireDate" validate:"required"` // YYYY-MM-DD
	BasicSalary       decimal.Decimal `json:"basicSalary" validate:"required"`
	GrossSalary       decimal.Decimal `json:"grossSalary" validate:"required"`
	BankName          *string         `json:"bankName,omitempty"`
	BankAccountNumber *string         `json:"bankAccountNumber,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeCode",
			Message: "employeeCode is required",
		})
	}
	if len(r.EmployeeCode) > 20 {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeCode",
			Message: "employeeCode must not exceed 20 characters",
		})
	}

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "fullName",
			Message: "fullName is required",
		})
	}

	if validator.IsEmpty(r.DepartmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "departmentId",
			Message: "departmentId is required",
		})
	}

	if _, ok := validator.IsValidDate(r.HireDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "hireDate",
			Message: "hireDate must be a valid date in YYYY-MM-DD format",
		})
	}

	if !r.BasicSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "basicSalary",
			Message: "basicSalary must be positive",
		})
	}
	if r.GrossSalary.LessThan(r.BasicSalary) {
		errs = append(errs, validator.ValidationError{
			Field:   "grossSalary",
			Message: "grossSalary must not be less than basicSalary",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateEmployeeRequest struct {
	ID                string           `json:"id" validate:"required"`
	FullName          string           `json:"fullName" validate:"required,max=100"`
	DepartmentID      string           `json:"departmentId" validate:"required"`
	DivisionID        *string          `json:"divisionId,omitempty"`
	EmploymentStatus  EmploymentStatus `json:"employmentStatus" validate:"required"`
	ResignationDate   *string          `json:"resignationDate,omitempty"` // YYYY-MM-DD
	BasicSalary       decimal.Decimal  `json:"basicSalary" validate:"required"`
	GrossSalary       decimal.Decimal  `json:"grossSalary" validate:"required"`
	BankName          *string          `json:"bankName,omitempty"`
	BankAccountNumber *string          `json:"bankAccountNumber,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "fullName",
			Message: "fullName is required",
		})
	}

	if validator.IsEmpty(r.DepartmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "departmentId",
			Message: "departmentId is required",
		})
	}

	validStatuses := []string{
		string(EmploymentStatusActive),
		string(EmploymentStatusResigned),
		string(EmploymentStatusTerminated),
	}
	if !validator.IsInSlice(string(r.EmploymentStatus), validStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "employmentStatus",
			Message: "employmentStatus must be one of: active, resigned, terminated",
		})
	}

	if r.ResignationDate != nil {
		if _, ok := validator.IsValidDate(*r.ResignationDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "resignationDate",
				Message: "resignationDate must be a valid date in YYYY-MM-DD format",
			})
		}
	}

	if !r.BasicSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "basicSalary",
			Message: "basicSalary must be positive",
		})
	}
	if r.GrossSalary.LessThan(r.BasicSalary) {
		errs = append(errs, validator.ValidationError{
			Field:   "grossSalary",
			Message: "grossSalary must not be less than basicSalary",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EmployeeResponse struct {
	ID                string          `json:"id"`
	EmployeeCode      string          `json:"employeeCode"`
	FullName          string          `json:"fullName"`
	DepartmentID      string          `json:"departmentId"`
	DepartmentName    *string         `json:"departmentName,omitempty"`
	DivisionID        *string         `json:"divisionId,omitempty"`
	DivisionName      *string         `json:"divisionName,omitempty"`
	EmploymentStatus  string          `json:"employmentStatus"`
	HireDate          string          `json:"hireDate"`
	ResignationDate   *string         `json:"resignationDate,omitempty"`
	BasicSalary       decimal.Decimal `json:"basicSalary"`
	GrossSalary       decimal.Decimal `json:"grossSalary"`
	BankName          *string         `json:"bankName,omitempty"`
	BankAccountNumber *string         `json:"bankAccountNumber,omitempty"`
}
