package loan

import "context"

type Repository interface {
	CreatePolicy(ctx context.Context, policy *Policy) error
	GetPolicyByID(ctx context.Context, id string) (*Policy, error)
	ListPolicies(ctx context.Context, activeOnly bool) ([]Policy, error)
	UpdatePolicy(ctx context.Context, policy *Policy) error

	CreateLoan(ctx context.Context, loan *Loan) error
	GetLoanByID(ctx context.Context, id string) (*Loan, error)
	ListLoans(ctx context.Context, status *LoanStatus) ([]Loan, error)
	ListLoansByEmployee(ctx context.Context, employeeID string) ([]Loan, error)
	// ListOpenLoansByEmployee returns active loans with their transactions
	// loaded, for installment collection during payroll runs.
	ListOpenLoansByEmployee(ctx context.Context, employeeID string) ([]Loan, error)
	CountLoansByEmployee(ctx context.Context, employeeID, policyID string, statuses []LoanStatus) (int, error)
	UpdateLoanStatus(ctx context.Context, id string, status LoanStatus, actor string) error

	// AppendTransaction inserts a ledger row. Existing rows are never
	// touched.
	AppendTransaction(ctx context.Context, txn *Transaction) error
	ListTransactions(ctx context.Context, loanID string) ([]Transaction, error)
}
