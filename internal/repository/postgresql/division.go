package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/talentpay/payroll-backend-go/internal/domain/master/division"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
)

type divisionRepository struct {
	db *database.DB
}

func NewDivisionRepository(db *database.DB) division.Repository {
	return &divisionRepository{db: db}
}

func (r *divisionRepository) Create(ctx context.Context, div division.Division) (division.Division, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO divisions (department_id, name, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, div.DepartmentID, div.Name, div.IsActive).
		Scan(&div.ID, &div.CreatedAt, &div.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_division_department_name") {
			return division.Division{}, division.ErrDivisionNameExists
		}
		return division.Division{}, fmt.Errorf("failed to create division: %w", err)
	}

	return div, nil
}

func (r *divisionRepository) GetByID(ctx context.Context, id string) (division.Division, error) {
	q := GetQuerier(ctx, r.db)

	var div division.Division
	err := q.QueryRow(ctx,
		`SELECT id, department_id, name, is_active, created_at, updated_at FROM divisions WHERE id = $1`, id,
	).Scan(&div.ID, &div.DepartmentID, &div.Name, &div.IsActive, &div.CreatedAt, &div.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return division.Division{}, division.ErrDivisionNotFound
		}
		return division.Division{}, fmt.Errorf("failed to get division: %w", err)
	}

	return div, nil
}

func (r *divisionRepository) ListByDepartment(ctx context.Context, departmentID string) ([]division.Division, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT id, department_id, name, is_active, created_at, updated_at FROM divisions WHERE department_id = $1 ORDER BY name`,
		departmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list divisions: %w", err)
	}
	defer rows.Close()

	var divisions []division.Division
	for rows.Next() {
		var div division.Division
		if err := rows.Scan(&div.ID, &div.DepartmentID, &div.Name, &div.IsActive, &div.CreatedAt, &div.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan division: %w", err)
		}
		divisions = append(divisions, div)
	}
	return divisions, rows.Err()
}

func (r *divisionRepository) Update(ctx context.Context, div division.Division) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE divisions SET name = $2, is_active = $3, updated_at = NOW() WHERE id = $1`,
		div.ID, div.Name, div.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update division: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return division.ErrDivisionNotFound
	}

	return nil
}
