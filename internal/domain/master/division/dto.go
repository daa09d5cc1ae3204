package division

import "github.com/talentpay/payroll-backend-go/internal/pkg/validator"

type CreateDivisionRequest struct {
	DepartmentID string `json:"departmentId" validate:"required"`
	Name         string `json:"name" validate:"required,max=100"`
}

func (r *CreateDivisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DepartmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "departmentId",
			Message: "departmentId is required",
		})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateDivisionRequest struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	IsActive bool   `json:"isActive"`
}

func (r *UpdateDivisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DivisionResponse struct {
	ID           string `json:"id"`
	DepartmentID string `json:"departmentId"`
	Name         string `json:"name"`
	IsActive     bool   `json:"isActive"`
}
