package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/talentpay/payroll-backend-go/internal/domain/compensation"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
)

type compensationRepository struct {
	db *database.DB
}

func NewCompensationRepository(db *database.DB) compensation.Repository {
	return &compensationRepository{db: db}
}

// ========== DEFINITIONS ==========

func (r *compensationRepository) CreateDefinition(ctx context.Context, def compensation.Definition) (compensation.Definition, error) {
	q := GetQuerier(ctx, r.db)

	ruleJSON, err := json.Marshal(def.GlobalRule)
	if err != nil {
		return compensation.Definition{}, fmt.Errorf("failed to encode global rule: %w", err)
	}

	query := `
		INSERT INTO compensation_definitions (name, category, description, is_active, global_rule, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		def.Name, def.Category, def.Description, def.IsActive, ruleJSON, def.CreatedBy,
	).Scan(&def.ID, &def.CreatedAt, &def.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_compensation_definition_name") {
			return compensation.Definition{}, compensation.ErrDefinitionNameExists
		}
		return compensation.Definition{}, fmt.Errorf("failed to create compensation definition: %w", err)
	}

	return def, nil
}

func (r *compensationRepository) GetDefinitionByID(ctx context.Context, id string) (compensation.Definition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, category, description, is_active, global_rule, created_by, updated_by, created_at, updated_at
		FROM compensation_definitions
		WHERE id = $1
	`

	var def compensation.Definition
	var ruleJSON []byte
	err := q.QueryRow(ctx, query, id).Scan(
		&def.ID, &def.Name, &def.Category, &def.Description, &def.IsActive,
		&ruleJSON, &def.CreatedBy, &def.UpdatedBy, &def.CreatedAt, &def.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return compensation.Definition{}, compensation.ErrDefinitionNotFound
		}
		return compensation.Definition{}, fmt.Errorf("failed to get compensation definition: %w", err)
	}
	if err := json.Unmarshal(ruleJSON, &def.GlobalRule); err != nil {
		return compensation.Definition{}, fmt.Errorf("failed to decode global rule: %w", err)
	}

	overrides, err := r.listOverrides(ctx, def.ID)
	if err != nil {
		return compensation.Definition{}, err
	}
	def.Overrides = overrides

	return def, nil
}

func (r *compensationRepository) ListDefinitions(ctx context.Context, category *compensation.Category, activeOnly bool) ([]compensation.Definition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, category, description, is_active, global_rule, created_by, updated_by, created_at, updated_at
		FROM compensation_definitions
		WHERE ($1::text IS NULL OR category = $1)
		  AND (NOT $2 OR is_active)
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, category, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensation definitions: %w", err)
	}
	defer rows.Close()

	var defs []compensation.Definition
	for rows.Next() {
		var def compensation.Definition
		var ruleJSON []byte
		if err := rows.Scan(
			&def.ID, &def.Name, &def.Category, &def.Description, &def.IsActive,
			&ruleJSON, &def.CreatedBy, &def.UpdatedBy, &def.CreatedAt, &def.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan compensation definition: %w", err)
		}
		if err := json.Unmarshal(ruleJSON, &def.GlobalRule); err != nil {
			return nil, fmt.Errorf("failed to decode global rule: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range defs {
		overrides, err := r.listOverrides(ctx, defs[i].ID)
		if err != nil {
			return nil, err
		}
		defs[i].Overrides = overrides
	}

	return defs, nil
}

func (r *compensationRepository) UpdateDefinition(ctx context.Context, req compensation.UpdateDefinitionRequest) error {
	q := GetQuerier(ctx, r.db)

	var ruleJSON []byte
	if req.GlobalRule != nil {
		rule := req.GlobalRule.ToRule()
		encoded, err := json.Marshal(rule)
		if err != nil {
			return fmt.Errorf("failed to encode global rule: %w", err)
		}
		ruleJSON = encoded
	}

	query := `
		UPDATE compensation_definitions
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			is_active = COALESCE($4, is_active),
			global_rule = COALESCE($5, global_rule),
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, req.ID, req.Name, req.Description, req.IsActive, ruleJSON)
	if err != nil {
		if strings.Contains(err.Error(), "uk_compensation_definition_name") {
			return compensation.ErrDefinitionNameExists
		}
		return fmt.Errorf("failed to update compensation definition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return compensation.ErrDefinitionNotFound
	}

	return nil
}

func (r *compensationRepository) DeactivateDefinition(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE compensation_definitions SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate compensation definition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return compensation.ErrDefinitionNotFound
	}

	return nil
}

// ========== SCOPED OVERRIDES ==========

func (r *compensationRepository) listOverrides(ctx context.Context, definitionID string) ([]compensation.OverrideRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, definition_id, department_id, division_id, rule, created_at, updated_at
		FROM compensation_overrides
		WHERE definition_id = $1
		ORDER BY department_id, division_id NULLS LAST
	`

	rows, err := q.Query(ctx, query, definitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensation overrides: %w", err)
	}
	defer rows.Close()

	var overrides []compensation.OverrideRule
	for rows.Next() {
		var ov compensation.OverrideRule
		var ruleJSON []byte
		if err := rows.Scan(&ov.ID, &ov.DefinitionID, &ov.DepartmentID, &ov.DivisionID, &ruleJSON, &ov.CreatedAt, &ov.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan compensation override: %w", err)
		}
		if err := json.Unmarshal(ruleJSON, &ov.Rule); err != nil {
			return nil, fmt.Errorf("failed to decode override rule: %w", err)
		}
		overrides = append(overrides, ov)
	}
	return overrides, rows.Err()
}

func (r *compensationRepository) UpsertOverride(ctx context.Context, ov compensation.OverrideRule) (compensation.OverrideRule, error) {
	q := GetQuerier(ctx, r.db)

	ruleJSON, err := json.Marshal(ov.Rule)
	if err != nil {
		return compensation.OverrideRule{}, fmt.Errorf("failed to encode override rule: %w", err)
	}

	// COALESCE folds the nullable division into the uniqueness key.
	query := `
		INSERT INTO compensation_overrides (definition_id, department_id, division_id, rule)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (definition_id, department_id, COALESCE(division_id, '')) DO UPDATE SET
			rule = EXCLUDED.rule,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query, ov.DefinitionID, ov.DepartmentID, ov.DivisionID, ruleJSON).
		Scan(&ov.ID, &ov.CreatedAt, &ov.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "fk_compensation_override_definition") {
			return compensation.OverrideRule{}, compensation.ErrDefinitionNotFound
		}
		return compensation.OverrideRule{}, fmt.Errorf("failed to upsert compensation override: %w", err)
	}

	return ov, nil
}

func (r *compensationRepository) DeleteOverride(ctx context.Context, definitionID, departmentID string, divisionID *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM compensation_overrides
		WHERE definition_id = $1 AND department_id = $2
		  AND ((division_id IS NULL AND $3::text IS NULL) OR division_id = $3)
	`

	tag, err := q.Exec(ctx, query, definitionID, departmentID, divisionID)
	if err != nil {
		return fmt.Errorf("failed to delete compensation override: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return compensation.ErrOverrideNotFound
	}

	return nil
}

// ========== EMPLOYEE OVERRIDES ==========

func (r *compensationRepository) AssignEmployeeOverride(ctx context.Context, ov compensation.EmployeeOverride) (compensation.EmployeeOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_compensation_overrides (employee_id, definition_id, amount, effective_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, definition_id, effective_date) DO UPDATE SET
			amount = EXCLUDED.amount,
			end_date = EXCLUDED.end_date,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, ov.EmployeeID, ov.DefinitionID, ov.Amount, ov.EffectiveDate, ov.EndDate).
		Scan(&ov.ID, &ov.CreatedAt, &ov.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "fk_employee_compensation_definition") {
			return compensation.EmployeeOverride{}, compensation.ErrDefinitionNotFound
		}
		return compensation.EmployeeOverride{}, fmt.Errorf("failed to assign employee override: %w", err)
	}

	return ov, nil
}

func (r *compensationRepository) GetEmployeeOverrides(ctx context.Context, employeeID string, asOf time.Time) ([]compensation.EmployeeOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT o.id, o.employee_id, o.definition_id, o.amount, o.effective_date, o.end_date,
			   o.created_at, o.updated_at, d.name, d.category
		FROM employee_compensation_overrides o
		JOIN compensation_definitions d ON d.id = o.definition_id
		WHERE o.employee_id = $1
		  AND o.effective_date <= $2
		  AND (o.end_date IS NULL OR o.end_date >= $2)
		ORDER BY o.effective_date DESC
	`

	rows, err := q.Query(ctx, query, employeeID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee overrides: %w", err)
	}
	defer rows.Close()

	var overrides []compensation.EmployeeOverride
	for rows.Next() {
		var ov compensation.EmployeeOverride
		if err := rows.Scan(
			&ov.ID, &ov.EmployeeID, &ov.DefinitionID, &ov.Amount, &ov.EffectiveDate, &ov.EndDate,
			&ov.CreatedAt, &ov.UpdatedAt, &ov.DefinitionName, &ov.Category,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee override: %w", err)
		}
		overrides = append(overrides, ov)
	}
	return overrides, rows.Err()
}

func (r *compensationRepository) RemoveEmployeeOverride(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employee_compensation_overrides WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove employee override: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return compensation.ErrEmployeeOverrideNotFound
	}

	return nil
}
