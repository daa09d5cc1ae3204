package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/talentpay/payroll-backend-go/internal/domain/payroll"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.Repository {
	return &payrollRepository{db: db}
}

// ========== BATCHES ==========

func (r *payrollRepository) CreateBatch(ctx context.Context, batch *payroll.PayrollBatch) error {
	q := GetQuerier(ctx, r.db)

	encoded, err := encodeBatchJSON(batch)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO payroll_batches
			(batch_number, department_id, month, status, total_employees, totals,
			 validation_status, status_history, recalculation_permission, recalculation_history, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		batch.BatchNumber, batch.DepartmentID, batch.Month, batch.Status, batch.TotalEmployees,
		encoded.totals, encoded.validation, encoded.statusHistory, encoded.permission, encoded.recalcHistory,
		batch.CreatedBy,
	).Scan(&batch.ID, &batch.CreatedAt, &batch.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_batch_department_month") {
			return payroll.ErrBatchAlreadyExists
		}
		return fmt.Errorf("failed to create payroll batch: %w", err)
	}

	return nil
}

const batchColumns = `b.id, b.batch_number, b.department_id, b.month, b.status, b.total_employees,
	b.totals, b.validation_status, b.status_history, b.recalculation_permission,
	b.recalculation_history, b.created_by, b.created_at, b.updated_at, d.name`

func scanBatch(row pgx.Row) (*payroll.PayrollBatch, error) {
	var b payroll.PayrollBatch
	var totalsJSON, validationJSON, historyJSON, recalcJSON []byte
	var permissionJSON []byte

	err := row.Scan(
		&b.ID, &b.BatchNumber, &b.DepartmentID, &b.Month, &b.Status, &b.TotalEmployees,
		&totalsJSON, &validationJSON, &historyJSON, &permissionJSON,
		&recalcJSON, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt, &b.DepartmentName,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(totalsJSON, &b.Totals); err != nil {
		return nil, fmt.Errorf("failed to decode batch totals: %w", err)
	}
	if err := json.Unmarshal(validationJSON, &b.ValidationStatus); err != nil {
		return nil, fmt.Errorf("failed to decode validation status: %w", err)
	}
	if err := json.Unmarshal(historyJSON, &b.StatusHistory); err != nil {
		return nil, fmt.Errorf("failed to decode status history: %w", err)
	}
	if err := json.Unmarshal(recalcJSON, &b.RecalculationHistory); err != nil {
		return nil, fmt.Errorf("failed to decode recalculation history: %w", err)
	}
	if len(permissionJSON) > 0 {
		var perm payroll.RecalculationPermission
		if err := json.Unmarshal(permissionJSON, &perm); err != nil {
			return nil, fmt.Errorf("failed to decode recalculation permission: %w", err)
		}
		b.RecalculationPermission = &perm
	}

	return &b, nil
}

func (r *payrollRepository) GetBatchByID(ctx context.Context, id string) (*payroll.PayrollBatch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + batchColumns + `
		FROM payroll_batches b
		JOIN departments d ON d.id = b.department_id
		WHERE b.id = $1
	`

	batch, err := scanBatch(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payroll.ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to get payroll batch: %w", err)
	}

	return batch, nil
}

func (r *payrollRepository) GetBatchByDepartmentMonth(ctx context.Context, departmentID, month string) (*payroll.PayrollBatch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + batchColumns + `
		FROM payroll_batches b
		JOIN departments d ON d.id = b.department_id
		WHERE b.department_id = $1 AND b.month = $2
	`

	batch, err := scanBatch(q.QueryRow(ctx, query, departmentID, month))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payroll.ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to get payroll batch: %w", err)
	}

	return batch, nil
}

func (r *payrollRepository) ListBatches(ctx context.Context, filter payroll.BatchFilter) ([]payroll.PayrollBatch, int64, error) {
	q := GetQuerier(ctx, r.db)

	countQuery := `
		SELECT COUNT(*)
		FROM payroll_batches b
		WHERE ($1::text IS NULL OR b.department_id = $1)
		  AND ($2::text IS NULL OR b.month = $2)
		  AND ($3::text IS NULL OR b.status = $3)
	`

	var total int64
	if err := q.QueryRow(ctx, countQuery, filter.DepartmentID, filter.Month, filter.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll batches: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit

	query := `
		SELECT ` + batchColumns + `
		FROM payroll_batches b
		JOIN departments d ON d.id = b.department_id
		WHERE ($1::text IS NULL OR b.department_id = $1)
		  AND ($2::text IS NULL OR b.month = $2)
		  AND ($3::text IS NULL OR b.status = $3)
		ORDER BY b.month DESC, b.batch_number
		LIMIT $4 OFFSET $5
	`

	rows, err := q.Query(ctx, query, filter.DepartmentID, filter.Month, filter.Status, filter.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll batches: %w", err)
	}
	defer rows.Close()

	var batches []payroll.PayrollBatch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll batch: %w", err)
		}
		batches = append(batches, *batch)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}

func (r *payrollRepository) NextBatchSequence(ctx context.Context, departmentID, month string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_batch_sequences (department_id, month, last_sequence)
		VALUES ($1, $2, 1)
		ON CONFLICT (department_id, month) DO UPDATE SET
			last_sequence = payroll_batch_sequences.last_sequence + 1
		RETURNING last_sequence
	`

	var seq int
	if err := q.QueryRow(ctx, query, departmentID, month).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to reserve batch sequence: %w", err)
	}

	return seq, nil
}

// UpdateBatchCAS is the concurrency gate for the batch lifecycle: the status
// predicate makes the write a compare-and-swap, so two actors racing on the
// same batch cannot both win.
func (r *payrollRepository) UpdateBatchCAS(ctx context.Context, batch *payroll.PayrollBatch, expectedStatus payroll.BatchStatus) error {
	q := GetQuerier(ctx, r.db)

	encoded, err := encodeBatchJSON(batch)
	if err != nil {
		return err
	}

	query := `
		UPDATE payroll_batches
		SET status = $3, total_employees = $4, totals = $5, validation_status = $6,
			status_history = $7, recalculation_permission = $8, recalculation_history = $9,
			updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query,
		batch.ID, expectedStatus, batch.Status, batch.TotalEmployees,
		encoded.totals, encoded.validation, encoded.statusHistory, encoded.permission, encoded.recalcHistory,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or someone else moved the status first.
		if _, getErr := r.GetBatchByID(ctx, batch.ID); getErr != nil {
			return getErr
		}
		return payroll.ErrConcurrentModification
	}

	return nil
}

type encodedBatch struct {
	totals        []byte
	validation    []byte
	statusHistory []byte
	permission    []byte // nil when no permission is set
	recalcHistory []byte
}

func encodeBatchJSON(batch *payroll.PayrollBatch) (encodedBatch, error) {
	var enc encodedBatch
	var err error

	if enc.totals, err = json.Marshal(batch.Totals); err != nil {
		return enc, fmt.Errorf("failed to encode batch totals: %w", err)
	}
	if enc.validation, err = json.Marshal(batch.ValidationStatus); err != nil {
		return enc, fmt.Errorf("failed to encode validation status: %w", err)
	}
	history := batch.StatusHistory
	if history == nil {
		history = []payroll.StatusChange{}
	}
	if enc.statusHistory, err = json.Marshal(history); err != nil {
		return enc, fmt.Errorf("failed to encode status history: %w", err)
	}
	recalc := batch.RecalculationHistory
	if recalc == nil {
		recalc = []payroll.RecalculationEntry{}
	}
	if enc.recalcHistory, err = json.Marshal(recalc); err != nil {
		return enc, fmt.Errorf("failed to encode recalculation history: %w", err)
	}
	if batch.RecalculationPermission != nil {
		if enc.permission, err = json.Marshal(batch.RecalculationPermission); err != nil {
			return enc, fmt.Errorf("failed to encode recalculation permission: %w", err)
		}
	}

	return enc, nil
}

// ========== RECORDS ==========

func (r *payrollRepository) CreateRecords(ctx context.Context, records []payroll.PayrollRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_records
			(batch_id, employee_id, month, basic_salary, gross_salary, present_days, total_days_in_month,
			 earnings, deductions, overtime_amount, loan_installment, gross_pay, total_deductions,
			 net_pay_exact, net_pay, round_off)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`

	for i := range records {
		rec := &records[i]

		earningsJSON, err := json.Marshal(rec.Earnings)
		if err != nil {
			return fmt.Errorf("failed to encode earnings: %w", err)
		}
		deductionsJSON, err := json.Marshal(rec.Deductions)
		if err != nil {
			return fmt.Errorf("failed to encode deductions: %w", err)
		}

		err = q.QueryRow(ctx, query,
			rec.BatchID, rec.EmployeeID, rec.Month, rec.BasicSalary, rec.GrossSalary,
			rec.PresentDays, rec.TotalDaysInMonth, earningsJSON, deductionsJSON,
			rec.OvertimeAmount, rec.LoanInstallment, rec.GrossPay, rec.TotalDeductions,
			rec.NetPayExact, rec.NetPay, rec.RoundOff,
		).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create payroll record: %w", err)
		}
	}

	return nil
}

const recordColumns = `r.id, r.batch_id, r.employee_id, r.month, r.basic_salary, r.gross_salary,
	r.present_days, r.total_days_in_month, r.earnings, r.deductions, r.overtime_amount,
	r.loan_installment, r.gross_pay, r.total_deductions, r.net_pay_exact, r.net_pay, r.round_off,
	r.created_at, r.updated_at, e.full_name, e.employee_code`

func scanRecord(row pgx.Row) (*payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var earningsJSON, deductionsJSON []byte

	err := row.Scan(
		&rec.ID, &rec.BatchID, &rec.EmployeeID, &rec.Month, &rec.BasicSalary, &rec.GrossSalary,
		&rec.PresentDays, &rec.TotalDaysInMonth, &earningsJSON, &deductionsJSON, &rec.OvertimeAmount,
		&rec.LoanInstallment, &rec.GrossPay, &rec.TotalDeductions, &rec.NetPayExact, &rec.NetPay, &rec.RoundOff,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.EmployeeName, &rec.EmployeeCode,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(earningsJSON, &rec.Earnings); err != nil {
		return nil, fmt.Errorf("failed to decode earnings: %w", err)
	}
	if err := json.Unmarshal(deductionsJSON, &rec.Deductions); err != nil {
		return nil, fmt.Errorf("failed to decode deductions: %w", err)
	}

	return &rec, nil
}

func (r *payrollRepository) ListRecordsByBatch(ctx context.Context, batchID string) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM payroll_records r
		JOIN employees e ON e.id = r.employee_id
		WHERE r.batch_id = $1
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (r *payrollRepository) GetRecordByID(ctx context.Context, id string) (*payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM payroll_records r
		JOIN employees e ON e.id = r.employee_id
		WHERE r.id = $1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payroll.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRepository) DeleteRecordsByBatch(ctx context.Context, batchID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_records WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("failed to delete payroll records: %w", err)
	}

	return nil
}
