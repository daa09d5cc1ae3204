package compensation

import (
	"context"
	"time"
)

// Repository defines data access for compensation masters.
type Repository interface {
	// Definitions
	CreateDefinition(ctx context.Context, def Definition) (Definition, error)
	GetDefinitionByID(ctx context.Context, id string) (Definition, error)
	ListDefinitions(ctx context.Context, category *Category, activeOnly bool) ([]Definition, error)
	UpdateDefinition(ctx context.Context, req UpdateDefinitionRequest) error
	DeactivateDefinition(ctx context.Context, id string) error

	// Override rules, keyed on (definition, department, division|null)
	UpsertOverride(ctx context.Context, ov OverrideRule) (OverrideRule, error)
	DeleteOverride(ctx context.Context, definitionID, departmentID string, divisionID *string) error

	// Employee overrides
	AssignEmployeeOverride(ctx context.Context, ov EmployeeOverride) (EmployeeOverride, error)
	GetEmployeeOverrides(ctx context.Context, employeeID string, asOf time.Time) ([]EmployeeOverride, error)
	RemoveEmployeeOverride(ctx context.Context, id string) error
}
