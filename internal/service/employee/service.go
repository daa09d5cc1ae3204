package employee

import (
	"context"
	"time"

	"github.com/talentpay/payroll-backend-go/internal/domain/employee"
	"github.com/talentpay/payroll-backend-go/internal/domain/master/department"
	"github.com/talentpay/payroll-backend-go/internal/domain/master/division"
	"github.com/talentpay/payroll-backend-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	repo           employee.Repository
	departmentRepo department.Repository
	divisionRepo   division.Repository
}

func NewEmployeeService(
	repo employee.Repository,
	departmentRepo department.Repository,
	divisionRepo division.Repository,
) employee.Service {
	return &EmployeeServiceImpl{
		repo:           repo,
		departmentRepo: departmentRepo,
		divisionRepo:   divisionRepo,
	}
}

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req *employee.CreateEmployeeRequest) (*employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		return nil, err
	}
	if req.DivisionID != nil {
		if _, err := s.divisionRepo.GetByID(ctx, *req.DivisionID); err != nil {
			return nil, err
		}
	}

	if _, err := s.repo.GetByEmployeeCode(ctx, req.EmployeeCode); err == nil {
		return nil, employee.ErrEmployeeCodeExists
	} else if err != employee.ErrEmployeeNotFound {
		return nil, err
	}

	hireDate, _ := validator.IsValidDate(req.HireDate)

	emp := &employee.Employee{
		EmployeeCode:      req.EmployeeCode,
		FullName:          req.FullName,
		DepartmentID:      req.DepartmentID,
		DivisionID:        req.DivisionID,
		EmploymentStatus:  employee.EmploymentStatusActive,
		HireDate:          hireDate,
		BasicSalary:       req.BasicSalary,
		GrossSalary:       req.GrossSalary,
		BankName:          req.BankName,
		BankAccountNumber: req.BankAccountNumber,
	}

	if err := s.repo.Create(ctx, emp); err != nil {
		return nil, err
	}

	return mapToEmployeeResponse(emp), nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (*employee.EmployeeResponse, error) {
	emp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapToEmployeeResponse(emp), nil
}

func (s *EmployeeServiceImpl) ListActiveByDepartment(ctx context.Context, departmentID string) ([]employee.EmployeeResponse, error) {
	employees, err := s.repo.ListActiveByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for i := range employees {
		responses = append(responses, *mapToEmployeeResponse(&employees[i]))
	}
	return responses, nil
}

func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req *employee.UpdateEmployeeRequest) (*employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.DepartmentID != emp.DepartmentID {
		if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
			return nil, err
		}
	}
	if req.DivisionID != nil {
		if _, err := s.divisionRepo.GetByID(ctx, *req.DivisionID); err != nil {
			return nil, err
		}
	}

	emp.FullName = req.FullName
	emp.DepartmentID = req.DepartmentID
	emp.DivisionID = req.DivisionID
	emp.EmploymentStatus = req.EmploymentStatus
	emp.BasicSalary = req.BasicSalary
	emp.GrossSalary = req.GrossSalary
	emp.BankName = req.BankName
	emp.BankAccountNumber = req.BankAccountNumber

	if req.ResignationDate != nil {
		resignationDate, _ := validator.IsValidDate(*req.ResignationDate)
		emp.ResignationDate = &resignationDate
	} else {
		emp.ResignationDate = nil
	}

	if err := s.repo.Update(ctx, emp); err != nil {
		return nil, err
	}

	return mapToEmployeeResponse(emp), nil
}

func mapToEmployeeResponse(emp *employee.Employee) *employee.EmployeeResponse {
	resp := &employee.EmployeeResponse{
		ID:                emp.ID,
		EmployeeCode:      emp.EmployeeCode,
		FullName:          emp.FullName,
		DepartmentID:      emp.DepartmentID,
		DepartmentName:    emp.DepartmentName,
		DivisionID:        emp.DivisionID,
		DivisionName:      emp.DivisionName,
		EmploymentStatus:  string(emp.EmploymentStatus),
		HireDate:          emp.HireDate.Format(time.DateOnly),
		BasicSalary:       emp.BasicSalary,
		GrossSalary:       emp.GrossSalary,
		BankName:          emp.BankName,
		BankAccountNumber: emp.BankAccountNumber,
	}
	if emp.ResignationDate != nil {
		formatted := emp.ResignationDate.Format(time.DateOnly)
		resp.ResignationDate = &formatted
	}
	return resp
}
