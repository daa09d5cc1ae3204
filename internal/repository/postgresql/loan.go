package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/talentpay/payroll-backend-go/internal/domain/loan"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
)

type loanRepository struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.Repository {
	return &loanRepository{db: db}
}

// ========== POLICIES ==========

func (r *loanRepository) CreatePolicy(ctx context.Context, policy *loan.Policy) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO loan_policies
			(name, loan_type, min_amount, max_amount, min_tenure_months, max_tenure_months,
			 annual_rate_percent, min_service_months, max_active_per_employee, max_per_employee,
			 is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		policy.Name, policy.LoanType, policy.MinAmount, policy.MaxAmount,
		policy.MinTenureMonths, policy.MaxTenureMonths, policy.AnnualRatePercent,
		policy.MinServiceMonths, policy.MaxActivePerEmployee, policy.MaxPerEmployee,
		policy.IsActive, policy.CreatedBy,
	).Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_loan_policy_name") {
			return fmt.Errorf("loan policy name already exists: %w", err)
		}
		return fmt.Errorf("failed to create loan policy: %w", err)
	}

	return nil
}

func (r *loanRepository) GetPolicyByID(ctx context.Context, id string) (*loan.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, loan_type, min_amount, max_amount, min_tenure_months, max_tenure_months,
			   annual_rate_percent, min_service_months, max_active_per_employee, max_per_employee,
			   is_active, created_by, created_at, updated_at
		FROM loan_policies
		WHERE id = $1
	`

	var policy loan.Policy
	err := q.QueryRow(ctx, query, id).Scan(
		&policy.ID, &policy.Name, &policy.LoanType, &policy.MinAmount, &policy.MaxAmount,
		&policy.MinTenureMonths, &policy.MaxTenureMonths, &policy.AnnualRatePercent,
		&policy.MinServiceMonths, &policy.MaxActivePerEmployee, &policy.MaxPerEmployee,
		&policy.IsActive, &policy.CreatedBy, &policy.CreatedAt, &policy.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, loan.ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to get loan policy: %w", err)
	}

	return &policy, nil
}

func (r *loanRepository) ListPolicies(ctx context.Context, activeOnly bool) ([]loan.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, loan_type, min_amount, max_amount, min_tenure_months, max_tenure_months,
			   annual_rate_percent, min_service_months, max_active_per_employee, max_per_employee,
			   is_active, created_by, created_at, updated_at
		FROM loan_policies
		WHERE NOT $1 OR is_active
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan policies: %w", err)
	}
	defer rows.Close()

	var policies []loan.Policy
	for rows.Next() {
		var policy loan.Policy
		if err := rows.Scan(
			&policy.ID, &policy.Name, &policy.LoanType, &policy.MinAmount, &policy.MaxAmount,
			&policy.MinTenureMonths, &policy.MaxTenureMonths, &policy.AnnualRatePercent,
			&policy.MinServiceMonths, &policy.MaxActivePerEmployee, &policy.MaxPerEmployee,
			&policy.IsActive, &policy.CreatedBy, &policy.CreatedAt, &policy.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan loan policy: %w", err)
		}
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}

func (r *loanRepository) UpdatePolicy(ctx context.Context, policy *loan.Policy) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loan_policies
		SET name = $2, min_amount = $3, max_amount = $4, min_tenure_months = $5,
			max_tenure_months = $6, annual_rate_percent = $7, min_service_months = $8,
			max_active_per_employee = $9, max_per_employee = $10, is_active = $11,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		policy.ID, policy.Name, policy.MinAmount, policy.MaxAmount,
		policy.MinTenureMonths, policy.MaxTenureMonths, policy.AnnualRatePercent,
		policy.MinServiceMonths, policy.MaxActivePerEmployee, policy.MaxPerEmployee,
		policy.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan policy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return loan.ErrPolicyNotFound
	}

	return nil
}

// ========== LOANS ==========

const loanColumns = `id, employee_id, policy_id, loan_type, principal, annual_rate_percent,
	tenure_months, emi, status, reason, start_month, approved_by, approved_at,
	disbursed_at, closed_at, created_at, updated_at`

func scanLoan(row pgx.Row, l *loan.Loan) error {
	return row.Scan(
		&l.ID, &l.EmployeeID, &l.PolicyID, &l.LoanType, &l.Principal, &l.AnnualRatePercent,
		&l.TenureMonths, &l.EMI, &l.Status, &l.Reason, &l.StartMonth, &l.ApprovedBy, &l.ApprovedAt,
		&l.DisbursedAt, &l.ClosedAt, &l.CreatedAt, &l.UpdatedAt,
	)
}

func (r *loanRepository) CreateLoan(ctx context.Context, l *loan.Loan) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO loans
			(employee_id, policy_id, loan_type, principal, annual_rate_percent, tenure_months,
			 emi, status, reason, start_month)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		l.EmployeeID, l.PolicyID, l.LoanType, l.Principal, l.AnnualRatePercent,
		l.TenureMonths, l.EMI, l.Status, l.Reason, l.StartMonth,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

func (r *loanRepository) GetLoanByID(ctx context.Context, id string) (*loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT l.id, l.employee_id, l.policy_id, l.loan_type, l.principal, l.annual_rate_percent,
			   l.tenure_months, l.emi, l.status, l.reason, l.start_month, l.approved_by, l.approved_at,
			   l.disbursed_at, l.closed_at, l.created_at, l.updated_at, e.full_name, p.name
		FROM loans l
		JOIN employees e ON e.id = l.employee_id
		JOIN loan_policies p ON p.id = l.policy_id
		WHERE l.id = $1
	`

	var l loan.Loan
	err := q.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.EmployeeID, &l.PolicyID, &l.LoanType, &l.Principal, &l.AnnualRatePercent,
		&l.TenureMonths, &l.EMI, &l.Status, &l.Reason, &l.StartMonth, &l.ApprovedBy, &l.ApprovedAt,
		&l.DisbursedAt, &l.ClosedAt, &l.CreatedAt, &l.UpdatedAt, &l.EmployeeName, &l.PolicyName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, loan.ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	transactions, err := r.ListTransactions(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	l.Transactions = transactions

	return &l, nil
}

func (r *loanRepository) ListLoans(ctx context.Context, status *loan.LoanStatus) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		var l loan.Loan
		if err := scanLoan(rows, &l); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func (r *loanRepository) ListLoansByEmployee(ctx context.Context, employeeID string) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE employee_id = $1
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		var l loan.Loan
		if err := scanLoan(rows, &l); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func (r *loanRepository) ListOpenLoansByEmployee(ctx context.Context, employeeID string) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE employee_id = $1 AND status = $2
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, employeeID, loan.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list open loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		var l loan.Loan
		if err := scanLoan(rows, &l); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range loans {
		transactions, err := r.ListTransactions(ctx, loans[i].ID)
		if err != nil {
			return nil, err
		}
		loans[i].Transactions = transactions
	}

	return loans, nil
}

func (r *loanRepository) CountLoansByEmployee(ctx context.Context, employeeID, policyID string, statuses []loan.LoanStatus) (int, error) {
	q := GetQuerier(ctx, r.db)

	// Empty status filter means count across all statuses.
	query := `
		SELECT COUNT(*)
		FROM loans
		WHERE employee_id = $1 AND policy_id = $2
		  AND (cardinality($3::text[]) = 0 OR status = ANY($3))
	`

	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}

	var count int
	if err := q.QueryRow(ctx, query, employeeID, policyID, statusStrs).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count loans: %w", err)
	}

	return count, nil
}

func (r *loanRepository) UpdateLoanStatus(ctx context.Context, id string, status loan.LoanStatus, actor string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
		SET status = $2,
			approved_by = CASE WHEN $2 IN ('active', 'rejected') THEN NULLIF($3, '') ELSE approved_by END,
			approved_at = CASE WHEN $2 IN ('active', 'rejected') THEN NOW() ELSE approved_at END,
			disbursed_at = CASE WHEN $2 = 'active' THEN NOW() ELSE disbursed_at END,
			closed_at = CASE WHEN $2 IN ('completed', 'settled') THEN NOW() ELSE closed_at END,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, status, actor)
	if err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return loan.ErrLoanNotFound
	}

	return nil
}

// ========== TRANSACTIONS ==========

func (r *loanRepository) AppendTransaction(ctx context.Context, txn *loan.Transaction) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO loan_transactions
			(loan_id, type, amount, principal_component, interest_component, month, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		txn.LoanID, txn.Type, txn.Amount, txn.PrincipalComponent, txn.InterestComponent,
		txn.Month, txn.Note, txn.CreatedBy,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_loan_transaction_repayment_month") {
			return loan.ErrDuplicateRepayment
		}
		return fmt.Errorf("failed to append loan transaction: %w", err)
	}

	return nil
}

func (r *loanRepository) ListTransactions(ctx context.Context, loanID string) ([]loan.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, loan_id, type, amount, principal_component, interest_component, month, note, created_by, created_at
		FROM loan_transactions
		WHERE loan_id = $1
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan transactions: %w", err)
	}
	defer rows.Close()

	var transactions []loan.Transaction
	for rows.Next() {
		var txn loan.Transaction
		if err := rows.Scan(
			&txn.ID, &txn.LoanID, &txn.Type, &txn.Amount, &txn.PrincipalComponent,
			&txn.InterestComponent, &txn.Month, &txn.Note, &txn.CreatedBy, &txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan loan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}
