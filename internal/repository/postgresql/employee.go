package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/talentpay/payroll-backend-go/internal/domain/employee"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.Repository {
	return &employeeRepository{db: db}
}

const employeeColumns = `e.id, e.employee_code, e.full_name, e.department_id, e.division_id,
	e.employment_status, e.hire_date, e.resignation_date, e.basic_salary, e.gross_salary,
	e.bank_name, e.bank_account_number, e.created_at, e.updated_at, e.deleted_at,
	d.name, v.name`

const employeeJoins = `
	FROM employees e
	JOIN departments d ON d.id = e.department_id
	LEFT JOIN divisions v ON v.id = e.division_id
`

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.DepartmentID, &emp.DivisionID,
		&emp.EmploymentStatus, &emp.HireDate, &emp.ResignationDate, &emp.BasicSalary, &emp.GrossSalary,
		&emp.BankName, &emp.BankAccountNumber, &emp.CreatedAt, &emp.UpdatedAt, &emp.DeletedAt,
		&emp.DepartmentName, &emp.DivisionName,
	)
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + employeeJoins + `WHERE e.id = $1 AND e.deleted_at IS NULL`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return emp, nil
}

func (r *employeeRepository) GetByEmployeeCode(ctx context.Context, code string) (*employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + employeeJoins + `WHERE e.employee_code = $1 AND e.deleted_at IS NULL`

	emp, err := scanEmployee(q.QueryRow(ctx, query, code))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee by code: %w", err)
	}

	return emp, nil
}

func (r *employeeRepository) ListActiveByDepartment(ctx context.Context, departmentID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + employeeJoins + `
		WHERE e.department_id = $1
		  AND e.employment_status = 'active'
		  AND e.deleted_at IS NULL
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

func (r *employeeRepository) Create(ctx context.Context, emp *employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees
			(employee_code, full_name, department_id, division_id, employment_status, hire_date,
			 basic_salary, gross_salary, bank_name, bank_account_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		emp.EmployeeCode, emp.FullName, emp.DepartmentID, emp.DivisionID,
		emp.EmploymentStatus, emp.HireDate, emp.BasicSalary, emp.GrossSalary,
		emp.BankName, emp.BankAccountNumber,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_employee_code") {
			return employee.ErrEmployeeCodeExists
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

func (r *employeeRepository) Update(ctx context.Context, emp *employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET full_name = $2, department_id = $3, division_id = $4, employment_status = $5,
			resignation_date = $6, basic_salary = $7, gross_salary = $8,
			bank_name = $9, bank_account_number = $10, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := q.Exec(ctx, query,
		emp.ID, emp.FullName, emp.DepartmentID, emp.DivisionID, emp.EmploymentStatus,
		emp.ResignationDate, emp.BasicSalary, emp.GrossSalary, emp.BankName, emp.BankAccountNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	return nil
}
