package employee

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (*Employee, error)
	GetByEmployeeCode(ctx context.Context, code string) (*Employee, error)
	ListActiveByDepartment(ctx context.Context, departmentID string) ([]Employee, error)
	Create(ctx context.Context, emp *Employee) error
	Update(ctx context.Context, emp *Employee) error
}
