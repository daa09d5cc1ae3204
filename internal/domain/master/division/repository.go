package division

import "context"

type Repository interface {
	Create(ctx context.Context, div Division) (Division, error)
	GetByID(ctx context.Context, id string) (Division, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]Division, error)
	Update(ctx context.Context, div Division) error
}
