package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanType enum
type LoanType string

const (
	// TypeLoan is an interest-bearing loan repaid via EMI.
	TypeLoan LoanType = "loan"
	// TypeAdvance is an interest-free salary advance recovered in equal
	// installments.
	TypeAdvance LoanType = "advance"
)

// LoanStatus enum
type LoanStatus string

const (
	StatusPending   LoanStatus = "pending"
	StatusActive    LoanStatus = "active"
	StatusRejected  LoanStatus = "rejected"
	StatusCompleted LoanStatus = "completed"
	StatusSettled   LoanStatus = "settled"
)

// TransactionType enum
type TransactionType string

const (
	TxnDisbursement TransactionType = "disbursement"
	TxnRepayment    TransactionType = "repayment"
	TxnSettlement   TransactionType = "settlement"
	TxnAdjustment   TransactionType = "adjustment"
)

// Policy constrains what loans employees may take.
type Policy struct {
	ID                   string
	Name                 string
	LoanType             LoanType
	MinAmount            decimal.Decimal
	MaxAmount            decimal.Decimal
	MinTenureMonths      int
	MaxTenureMonths      int
	AnnualRatePercent    decimal.Decimal
	MinServiceMonths     int
	MaxActivePerEmployee int
	MaxPerEmployee       int // lifetime cap, 0 = unlimited
	IsActive             bool
	CreatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Loan is one employee's loan or advance.
type Loan struct {
	ID                string
	EmployeeID        string
	PolicyID          string
	LoanType          LoanType
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TenureMonths      int
	EMI               decimal.Decimal
	Status            LoanStatus
	Reason            string
	StartMonth        string // YYYY-MM of the first installment
	ApprovedBy        *string
	ApprovedAt        *time.Time
	DisbursedAt       *time.Time
	ClosedAt          *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO
	EmployeeName *string
	PolicyName   *string
	Transactions []Transaction
}

// Transaction is one append-only ledger row against a loan. Rows are never
// updated or deleted; corrections are new adjustment rows.
type Transaction struct {
	ID                 string
	LoanID             string
	Type               TransactionType
	Amount             decimal.Decimal
	PrincipalComponent decimal.Decimal
	InterestComponent  decimal.Decimal
	Month              string // YYYY-MM the row applies to
	Note               string
	CreatedBy          string
	CreatedAt          time.Time
}

// ScheduleEntry is one row of an amortization schedule.
type ScheduleEntry struct {
	Installment          int
	Month                string
	EMI                  decimal.Decimal
	PrincipalComponent   decimal.Decimal
	InterestComponent    decimal.Decimal
	OutstandingPrincipal decimal.Decimal
}

// PrincipalRepaid sums the principal components of repayment and settlement
// rows.
func (l *Loan) PrincipalRepaid() decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.Transactions {
		if t.Type == TxnRepayment || t.Type == TxnSettlement || t.Type == TxnAdjustment {
			total = total.Add(t.PrincipalComponent)
		}
	}
	return total
}

// InterestPaid sums the interest components of repayment and settlement rows.
func (l *Loan) InterestPaid() decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.Transactions {
		if t.Type == TxnRepayment || t.Type == TxnSettlement || t.Type == TxnAdjustment {
			total = total.Add(t.InterestComponent)
		}
	}
	return total
}

// OutstandingPrincipal is the principal still owed.
func (l *Loan) OutstandingPrincipal() decimal.Decimal {
	out := l.Principal.Sub(l.PrincipalRepaid())
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// IsOpen reports whether the loan still collects installments.
func (l *Loan) IsOpen() bool {
	return l.Status == StatusActive
}
