package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/talentpay/payroll-backend-go/internal/domain/employee"
	"github.com/talentpay/payroll-backend-go/internal/domain/loan"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
	"github.com/talentpay/payroll-backend-go/internal/repository/postgresql"
)

type LoanServiceImpl struct {
	db           *database.DB
	repo         loan.Repository
	employeeRepo employee.Repository
}

func NewLoanService(db *database.DB, repo loan.Repository, employeeRepo employee.Repository) loan.Service {
	return &LoanServiceImpl{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
	}
}

// ========== POLICIES ==========

func (s *LoanServiceImpl) CreatePolicy(ctx context.Context, req *loan.CreatePolicyRequest, createdBy string) (*loan.PolicyResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	policy := req.ToPolicy()
	policy.CreatedBy = createdBy
	if err := s.repo.CreatePolicy(ctx, &policy); err != nil {
		return nil, err
	}

	resp := mapToPolicyResponse(&policy)
	return &resp, nil
}

func (s *LoanServiceImpl) ListPolicies(ctx context.Context, activeOnly bool) ([]loan.PolicyResponse, error) {
	policies, err := s.repo.ListPolicies(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]loan.PolicyResponse, 0, len(policies))
	for i := range policies {
		responses = append(responses, mapToPolicyResponse(&policies[i]))
	}
	return responses, nil
}

func (s *LoanServiceImpl) DeactivatePolicy(ctx context.Context, id string) error {
	policy, err := s.repo.GetPolicyByID(ctx, id)
	if err != nil {
		return err
	}
	policy.IsActive = false
	return s.repo.UpdatePolicy(ctx, policy)
}

// ========== APPLICATIONS ==========

func (s *LoanServiceImpl) ApplyLoan(ctx context.Context, req *loan.ApplyLoanRequest) (*loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	policy, err := s.repo.GetPolicyByID(ctx, req.PolicyID)
	if err != nil {
		return nil, err
	}
	if !policy.IsActive {
		return nil, loan.ErrPolicyInactive
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !emp.IsActive() {
		return nil, employee.ErrEmployeeInactive
	}

	activeCount, err := s.repo.CountLoansByEmployee(ctx, emp.ID, policy.ID, []loan.LoanStatus{loan.StatusPending, loan.StatusActive})
	if err != nil {
		return nil, err
	}
	lifetimeCount, err := s.repo.CountLoansByEmployee(ctx, emp.ID, policy.ID, nil)
	if err != nil {
		return nil, err
	}

	amount, _ := decimal.NewFromString(req.Amount)
	if err := CheckPolicy(policy, emp, amount, req.TenureMonths, activeCount, lifetimeCount, time.Now()); err != nil {
		return nil, err
	}

	l := loan.Loan{
		EmployeeID:        emp.ID,
		PolicyID:          policy.ID,
		LoanType:          policy.LoanType,
		Principal:         amount,
		AnnualRatePercent: policy.AnnualRatePercent,
		TenureMonths:      req.TenureMonths,
		EMI:               ComputeEMI(amount, policy.AnnualRatePercent, req.TenureMonths),
		Status:            loan.StatusPending,
		Reason:            req.Reason,
		StartMonth:        req.StartMonth,
	}
	if err := s.repo.CreateLoan(ctx, &l); err != nil {
		return nil, err
	}

	resp := mapToLoanResponse(&l, false)
	return &resp, nil
}

func (s *LoanServiceImpl) DecideLoan(ctx context.Context, loanID string, req *loan.DecideLoanRequest, decidedBy string) (*loan.LoanResponse, error) {
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != loan.StatusPending {
		return nil, loan.ErrLoanNotPending
	}

	if !req.Approve {
		if err := s.repo.UpdateLoanStatus(ctx, l.ID, loan.StatusRejected, decidedBy); err != nil {
			return nil, err
		}
		l.Status = loan.StatusRejected
		resp := mapToLoanResponse(l, false)
		return &resp, nil
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.repo.UpdateLoanStatus(txCtx, l.ID, loan.StatusActive, decidedBy); err != nil {
			return fmt.Errorf("failed to activate loan: %w", err)
		}
		disbursement := loan.Transaction{
			LoanID:    l.ID,
			Type:      loan.TxnDisbursement,
			Amount:    l.Principal,
			Month:     l.StartMonth,
			Note:      req.Note,
			CreatedBy: decidedBy,
		}
		if err := s.repo.AppendTransaction(txCtx, &disbursement); err != nil {
			return fmt.Errorf("failed to record disbursement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetLoan(ctx, l.ID)
}

func (s *LoanServiceImpl) GetLoan(ctx context.Context, loanID string) (*loan.LoanResponse, error) {
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	resp := mapToLoanResponse(l, true)
	return &resp, nil
}

func (s *LoanServiceImpl) ListLoans(ctx context.Context, status *loan.LoanStatus) ([]loan.LoanResponse, error) {
	loans, err := s.repo.ListLoans(ctx, status)
	if err != nil {
		return nil, err
	}

	responses := make([]loan.LoanResponse, 0, len(loans))
	for i := range loans {
		responses = append(responses, mapToLoanResponse(&loans[i], false))
	}
	return responses, nil
}

func (s *LoanServiceImpl) ListLoansByEmployee(ctx context.Context, employeeID string) ([]loan.LoanResponse, error) {
	loans, err := s.repo.ListLoansByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]loan.LoanResponse, 0, len(loans))
	for i := range loans {
		responses = append(responses, mapToLoanResponse(&loans[i], false))
	}
	return responses, nil
}

func (s *LoanServiceImpl) GetSchedule(ctx context.Context, loanID string) ([]loan.ScheduleEntryResponse, error) {
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	schedule := BuildSchedule(l.Principal, l.AnnualRatePercent, l.TenureMonths, l.StartMonth)
	responses := make([]loan.ScheduleEntryResponse, 0, len(schedule))
	for _, e := range schedule {
		responses = append(responses, loan.ScheduleEntryResponse{
			Installment:          e.Installment,
			Month:                e.Month,
			EMI:                  e.EMI.String(),
			PrincipalComponent:   e.PrincipalComponent.String(),
			InterestComponent:    e.InterestComponent.String(),
			OutstandingPrincipal: e.OutstandingPrincipal.String(),
		})
	}
	return responses, nil
}

// ========== REPAYMENTS & SETTLEMENT ==========

func (s *LoanServiceImpl) RecordRepayment(ctx context.Context, loanID string, req *loan.RecordRepaymentRequest, recordedBy string) (*loan.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !l.IsOpen() {
		return nil, loan.ErrLoanNotActive
	}
	for _, t := range l.Transactions {
		if t.Type == loan.TxnRepayment && t.Month == req.Month {
			return nil, loan.ErrDuplicateRepayment
		}
	}

	txn := buildRepayment(l, req.Month, req.Amount)
	txn.Note = req.Note
	txn.CreatedBy = recordedBy

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.repo.AppendTransaction(txCtx, &txn); err != nil {
			return fmt.Errorf("failed to record repayment: %w", err)
		}
		remaining := l.OutstandingPrincipal().Sub(txn.PrincipalComponent)
		if !remaining.IsPositive() {
			if err := s.repo.UpdateLoanStatus(txCtx, l.ID, loan.StatusCompleted, ""); err != nil {
				return fmt.Errorf("failed to close loan: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := mapToTransactionResponse(&txn)
	return &resp, nil
}

// buildRepayment splits a payment into principal and interest on the
// outstanding balance. An explicit amount overrides the scheduled EMI; the
// principal component never exceeds what is still owed.
func buildRepayment(l *loan.Loan, month, amountOverride string) loan.Transaction {
	outstanding := l.OutstandingPrincipal()

	r := decimal.Zero
	if !l.AnnualRatePercent.IsZero() {
		r = monthlyRate(l.AnnualRatePercent)
	}
	interest := outstanding.Mul(r).Round(2)

	amount := l.EMI
	if amountOverride != "" {
		amount, _ = decimal.NewFromString(amountOverride)
	}

	principalComp := amount.Sub(interest)
	if principalComp.GreaterThan(outstanding) {
		principalComp = outstanding
		amount = principalComp.Add(interest)
	}
	if principalComp.IsNegative() {
		principalComp = decimal.Zero
		interest = amount
	}

	return loan.Transaction{
		LoanID:             l.ID,
		Type:               loan.TxnRepayment,
		Amount:             amount,
		PrincipalComponent: principalComp,
		InterestComponent:  interest,
		Month:              month,
	}
}

func (s *LoanServiceImpl) PreviewSettlement(ctx context.Context, loanID string, asOf string) (*loan.SettlementPreviewResponse, error) {
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !l.IsOpen() {
		return nil, loan.ErrLoanNotActive
	}

	asOfDate, err := time.Parse("2006-01-02", asOf)
	if err != nil {
		return nil, fmt.Errorf("invalid as-of date: %w", err)
	}

	quote, err := ComputeSettlement(l, asOfDate)
	if err != nil {
		return nil, err
	}

	return &loan.SettlementPreviewResponse{
		LoanID:               l.ID,
		AsOf:                 asOf,
		OutstandingPrincipal: quote.OutstandingPrincipal.String(),
		AccruedInterest:      quote.AccruedInterest.String(),
		InterestAlreadyPaid:  quote.InterestAlreadyPaid.String(),
		SettlementAmount:     quote.SettlementAmount.String(),
	}, nil
}

func (s *LoanServiceImpl) SettleLoan(ctx context.Context, loanID string, req *loan.SettleLoanRequest, settledBy string) (*loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !l.IsOpen() {
		return nil, loan.ErrLoanNotActive
	}

	asOfDate, _ := time.Parse("2006-01-02", req.AsOf)
	quote, err := ComputeSettlement(l, asOfDate)
	if err != nil {
		return nil, err
	}

	unpaidInterest := quote.SettlementAmount.Sub(quote.OutstandingPrincipal)
	settlement := loan.Transaction{
		LoanID:             l.ID,
		Type:               loan.TxnSettlement,
		Amount:             quote.SettlementAmount,
		PrincipalComponent: quote.OutstandingPrincipal,
		InterestComponent:  unpaidInterest,
		Month:              asOfDate.Format(monthLayout),
		Note:               req.Note,
		CreatedBy:          settledBy,
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.repo.AppendTransaction(txCtx, &settlement); err != nil {
			return fmt.Errorf("failed to record settlement: %w", err)
		}
		if err := s.repo.UpdateLoanStatus(txCtx, l.ID, loan.StatusSettled, settledBy); err != nil {
			return fmt.Errorf("failed to mark loan settled: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetLoan(ctx, l.ID)
}

// ========== MAPPERS ==========

func mapToPolicyResponse(p *loan.Policy) loan.PolicyResponse {
	return loan.PolicyResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		LoanType:             string(p.LoanType),
		MinAmount:            p.MinAmount.String(),
		MaxAmount:            p.MaxAmount.String(),
		MinTenureMonths:      p.MinTenureMonths,
		MaxTenureMonths:      p.MaxTenureMonths,
		AnnualRatePercent:    p.AnnualRatePercent.String(),
		MinServiceMonths:     p.MinServiceMonths,
		MaxActivePerEmployee: p.MaxActivePerEmployee,
		MaxPerEmployee:       p.MaxPerEmployee,
		IsActive:             p.IsActive,
		CreatedAt:            p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func mapToLoanResponse(l *loan.Loan, includeTransactions bool) loan.LoanResponse {
	resp := loan.LoanResponse{
		ID:                   l.ID,
		EmployeeID:           l.EmployeeID,
		EmployeeName:         l.EmployeeName,
		PolicyID:             l.PolicyID,
		PolicyName:           l.PolicyName,
		LoanType:             string(l.LoanType),
		Principal:            l.Principal.String(),
		AnnualRatePercent:    l.AnnualRatePercent.String(),
		TenureMonths:         l.TenureMonths,
		EMI:                  l.EMI.String(),
		Status:               string(l.Status),
		Reason:               l.Reason,
		StartMonth:           l.StartMonth,
		OutstandingPrincipal: l.OutstandingPrincipal().String(),
		CreatedAt:            l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if includeTransactions {
		resp.Transactions = make([]loan.TransactionResponse, 0, len(l.Transactions))
		for i := range l.Transactions {
			resp.Transactions = append(resp.Transactions, mapToTransactionResponse(&l.Transactions[i]))
		}
	}
	return resp
}

func mapToTransactionResponse(t *loan.Transaction) loan.TransactionResponse {
	return loan.TransactionResponse{
		ID:                 t.ID,
		Type:               string(t.Type),
		Amount:             t.Amount.String(),
		PrincipalComponent: t.PrincipalComponent.String(),
		InterestComponent:  t.InterestComponent.String(),
		Month:              t.Month,
		Note:               t.Note,
		CreatedBy:          t.CreatedBy,
		CreatedAt:          t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
