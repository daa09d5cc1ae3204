package employee

import "context"

type Service interface {
	CreateEmployee(ctx context.Context, req *CreateEmployeeRequest) (*EmployeeResponse, error)
	GetEmployee(ctx context.Context, id string) (*EmployeeResponse, error)
	ListActiveByDepartment(ctx context.Context, departmentID string) ([]EmployeeResponse, error)
	UpdateEmployee(ctx context.Context, req *UpdateEmployeeRequest) (*EmployeeResponse, error)
}
