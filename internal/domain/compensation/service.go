package compensation

import (
	"context"
	"time"
)

type Service interface {
	// Definitions
	CreateDefinition(ctx context.Context, req CreateDefinitionRequest) (DefinitionResponse, error)
	GetDefinition(ctx context.Context, id string) (DefinitionResponse, error)
	ListDefinitions(ctx context.Context, category *Category, activeOnly bool) ([]DefinitionResponse, error)
	UpdateDefinition(ctx context.Context, req UpdateDefinitionRequest) error
	DeactivateDefinition(ctx context.Context, id string) error

	// Overrides
	UpsertOverride(ctx context.Context, req UpsertOverrideRequest) (OverrideResponse, error)
	DeleteOverride(ctx context.Context, definitionID, departmentID string, divisionID *string) error

	// Employee overrides
	AssignEmployeeOverride(ctx context.Context, req AssignEmployeeOverrideRequest) (EmployeeOverrideResponse, error)
	GetEmployeeOverrides(ctx context.Context, employeeID string, asOf time.Time) ([]EmployeeOverrideResponse, error)
	RemoveEmployeeOverride(ctx context.Context, id string) error

	// Resolution preview for admin screens
	ResolvePreview(ctx context.Context, definitionID, departmentID string, divisionID *string) (ResolvePreviewResponse, error)
}
