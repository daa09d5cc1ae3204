package master

import (
	"context"
	"fmt"

	"github.com/talentpay/payroll-backend-go/internal/domain/master/department"
	"github.com/talentpay/payroll-backend-go/internal/domain/master/division"
)

type MasterService interface {
	// Department operations
	CreateDepartment(ctx context.Context, req department.CreateDepartmentRequest) (department.DepartmentResponse, error)
	GetDepartment(ctx context.Context, id string) (department.DepartmentResponse, error)
	ListDepartments(ctx context.Context) ([]department.DepartmentResponse, error)
	UpdateDepartment(ctx context.Context, req department.UpdateDepartmentRequest) error

	// Division operations
	CreateDivision(ctx context.Context, req division.CreateDivisionRequest) (division.DivisionResponse, error)
	ListDivisions(ctx context.Context, departmentID string) ([]division.DivisionResponse, error)
	UpdateDivision(ctx context.Context, req division.UpdateDivisionRequest) error
}

type masterServiceImpl struct {
	departmentRepo department.Repository
	divisionRepo   division.Repository
}

func NewMasterService(
	departmentRepo department.Repository,
	divisionRepo division.Repository,
) MasterService {
	return &masterServiceImpl{
		departmentRepo: departmentRepo,
		divisionRepo:   divisionRepo,
	}
}

// ==================== DEPARTMENT OPERATIONS ====================

func (s *masterServiceImpl) CreateDepartment(ctx context.Context, req department.CreateDepartmentRequest) (department.DepartmentResponse, error) {
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	entity := department.Department{
		Code:     req.Code,
		Name:     req.Name,
		IsActive: true,
	}

	created, err := s.departmentRepo.Create(ctx, entity)
	if err != nil {
		return department.DepartmentResponse{}, err
	}

	return mapToDepartmentResponse(created), nil
}

func (s *masterServiceImpl) GetDepartment(ctx context.Context, id string) (department.DepartmentResponse, error) {
	dept, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return department.DepartmentResponse{}, err
	}

	return mapToDepartmentResponse(dept), nil
}

func (s *masterServiceImpl) ListDepartments(ctx context.Context) ([]department.DepartmentResponse, error) {
	departments, err := s.departmentRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]department.DepartmentResponse, 0, len(departments))
	for _, dept := range departments {
		responses = append(responses, mapToDepartmentResponse(dept))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateDepartment(ctx context.Context, req department.UpdateDepartmentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	dept, err := s.departmentRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	dept.Name = req.Name
	dept.IsActive = req.IsActive

	if err := s.departmentRepo.Update(ctx, dept); err != nil {
		return fmt.Errorf("failed to update department: %w", err)
	}

	return nil
}

// ==================== DIVISION OPERATIONS ====================

func (s *masterServiceImpl) CreateDivision(ctx context.Context, req division.CreateDivisionRequest) (division.DivisionResponse, error) {
	if err := req.Validate(); err != nil {
		return division.DivisionResponse{}, err
	}

	// Division must hang off an existing department.
	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		return division.DivisionResponse{}, err
	}

	entity := division.Division{
		DepartmentID: req.DepartmentID,
		Name:         req.Name,
		IsActive:     true,
	}

	created, err := s.divisionRepo.Create(ctx, entity)
	if err != nil {
		return division.DivisionResponse{}, err
	}

	return mapToDivisionResponse(created), nil
}

func (s *masterServiceImpl) ListDivisions(ctx context.Context, departmentID string) ([]division.DivisionResponse, error) {
	divisions, err := s.divisionRepo.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	responses := make([]division.DivisionResponse, 0, len(divisions))
	for _, div := range divisions {
		responses = append(responses, mapToDivisionResponse(div))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateDivision(ctx context.Context, req division.UpdateDivisionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	div, err := s.divisionRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	div.Name = req.Name
	div.IsActive = req.IsActive

	if err := s.divisionRepo.Update(ctx, div); err != nil {
		return fmt.Errorf("failed to update division: %w", err)
	}

	return nil
}

// ==================== MAPPERS ====================

func mapToDepartmentResponse(dept department.Department) department.DepartmentResponse {
	return department.DepartmentResponse{
		ID:       dept.ID,
		Code:     dept.Code,
		Name:     dept.Name,
		IsActive: dept.IsActive,
	}
}

func mapToDivisionResponse(div division.Division) division.DivisionResponse {
	return division.DivisionResponse{
		ID:           div.ID,
		DepartmentID: div.DepartmentID,
		Name:         div.Name,
		IsActive:     div.IsActive,
	}
}
