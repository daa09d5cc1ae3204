package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/talentpay/payroll-backend-go/internal/domain/master/department"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
)

type departmentRepository struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.Repository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO departments (code, name, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, dept.Code, dept.Name, dept.IsActive).
		Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_department_code") {
			return department.Department{}, department.ErrDepartmentCodeExists
		}
		return department.Department{}, fmt.Errorf("failed to create department: %w", err)
	}

	return dept, nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	var dept department.Department
	err := q.QueryRow(ctx,
		`SELECT id, code, name, is_active, created_at, updated_at FROM departments WHERE id = $1`, id,
	).Scan(&dept.ID, &dept.Code, &dept.Name, &dept.IsActive, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, fmt.Errorf("failed to get department: %w", err)
	}

	return dept, nil
}

func (r *departmentRepository) GetByCode(ctx context.Context, code string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	var dept department.Department
	err := q.QueryRow(ctx,
		`SELECT id, code, name, is_active, created_at, updated_at FROM departments WHERE code = $1`, code,
	).Scan(&dept.ID, &dept.Code, &dept.Name, &dept.IsActive, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, fmt.Errorf("failed to get department by code: %w", err)
	}

	return dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT id, code, name, is_active, created_at, updated_at FROM departments ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []department.Department
	for rows.Next() {
		var dept department.Department
		if err := rows.Scan(&dept.ID, &dept.Code, &dept.Name, &dept.IsActive, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, dept)
	}
	return departments, rows.Err()
}

func (r *departmentRepository) Update(ctx context.Context, dept department.Department) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE departments SET name = $2, is_active = $3, updated_at = NOW() WHERE id = $1`,
		dept.ID, dept.Name, dept.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}

	return nil
}
