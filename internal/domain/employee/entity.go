package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                string
	EmployeeCode      string
	FullName          string
	DepartmentID      string
	DivisionID        *string
	EmploymentStatus  EmploymentStatus
	HireDate          time.Time
	ResignationDate   *time.Time
	BasicSalary       decimal.Decimal
	GrossSalary       decimal.Decimal
	BankName          *string
	BankAccountNumber *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time

	// DTO
	DepartmentName *string
	DivisionName   *string
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// IsActive reports whether the employee should be included in payroll runs.
func (e *Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive && e.DeletedAt == nil
}

// MonthsOfService returns whole months between the hire date and asOf.
func (e *Employee) MonthsOfService(asOf time.Time) int {
	if asOf.Before(e.HireDate) {
		return 0
	}
	months := int(asOf.Year()-e.HireDate.Year())*12 + int(asOf.Month()) - int(e.HireDate.Month())
	if asOf.Day() < e.HireDate.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
