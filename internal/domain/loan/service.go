package loan

import "context"

type Service interface {
	CreatePolicy(ctx context.Context, req *CreatePolicyRequest, createdBy string) (*PolicyResponse, error)
	ListPolicies(ctx context.Context, activeOnly bool) ([]PolicyResponse, error)
	DeactivatePolicy(ctx context.Context, id string) error

	ApplyLoan(ctx context.Context, req *ApplyLoanRequest) (*LoanResponse, error)
	DecideLoan(ctx context.Context, loanID string, req *DecideLoanRequest, decidedBy string) (*LoanResponse, error)
	GetLoan(ctx context.Context, loanID string) (*LoanResponse, error)
	ListLoans(ctx context.Context, status *LoanStatus) ([]LoanResponse, error)
	ListLoansByEmployee(ctx context.Context, employeeID string) ([]LoanResponse, error)
	GetSchedule(ctx context.Context, loanID string) ([]ScheduleEntryResponse, error)

	RecordRepayment(ctx context.Context, loanID string, req *RecordRepaymentRequest, recordedBy string) (*TransactionResponse, error)
	PreviewSettlement(ctx context.Context, loanID string, asOf string) (*SettlementPreviewResponse, error)
	SettleLoan(ctx context.Context, loanID string, req *SettleLoanRequest, settledBy string) (*LoanResponse, error)
}
