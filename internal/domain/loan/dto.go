package loan

import (
	"github.com/shopspring/decimal"

	"github.com/talentpay/payroll-backend-go/internal/pkg/validator"
)

// ========== REQUEST DTO ==========

type CreatePolicyRequest struct {
	Name                 string `json:"name"`
	LoanType             string `json:"loanType"`
	MinAmount            string `json:"minAmount"`
	MaxAmount            string `json:"maxAmount"`
	MinTenureMonths      int    `json:"minTenureMonths"`
	MaxTenureMonths      int    `json:"maxTenureMonths"`
	AnnualRatePercent    string `json:"annualRatePercent"`
	MinServiceMonths     int    `json:"minServiceMonths"`
	MaxActivePerEmployee int    `json:"maxActivePerEmployee"`
	MaxPerEmployee       int    `json:"maxPerEmployee"`
}

func (r *CreatePolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name == "" {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "Name is required"})
	}
	if !validator.IsInSlice(r.LoanType, []string{string(TypeLoan), string(TypeAdvance)}) {
		errs = append(errs, validator.ValidationError{Field: "loanType", Message: "Loan type must be loan or advance"})
	}

	minAmt, errMin := decimal.NewFromString(r.MinAmount)
	maxAmt, errMax := decimal.NewFromString(r.MaxAmount)
	if errMin != nil || minAmt.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "minAmount", Message: "Minimum amount must be a non-negative number"})
	}
	if errMax != nil || !maxAmt.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "maxAmount", Message: "Maximum amount must be a positive number"})
	}
	if errMin == nil && errMax == nil && maxAmt.LessThan(minAmt) {
		errs = append(errs, validator.ValidationError{Field: "maxAmount", Message: "Maximum amount cannot be below minimum amount"})
	}

	if r.MinTenureMonths < 1 {
		errs = append(errs, validator.ValidationError{Field: "minTenureMonths", Message: "Minimum tenure must be at least 1 month"})
	}
	if r.MaxTenureMonths < r.MinTenureMonths {
		errs = append(errs, validator.ValidationError{Field: "maxTenureMonths", Message: "Maximum tenure cannot be below minimum tenure"})
	}
	if rate, err := decimal.NewFromString(r.AnnualRatePercent); err != nil || rate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "annualRatePercent", Message: "Annual rate must be a non-negative percentage"})
	}
	if r.LoanType == string(TypeAdvance) {
		if rate, err := decimal.NewFromString(r.AnnualRatePercent); err == nil && !rate.IsZero() {
			errs = append(errs, validator.ValidationError{Field: "annualRatePercent", Message: "Advances cannot carry interest"})
		}
	}
	if r.MinServiceMonths < 0 {
		errs = append(errs, validator.ValidationError{Field: "minServiceMonths", Message: "Minimum service months cannot be negative"})
	}
	if r.MaxActivePerEmployee < 1 {
		errs = append(errs, validator.ValidationError{Field: "maxActivePerEmployee", Message: "Max active loans per employee must be at least 1"})
	}
	if r.MaxPerEmployee < 0 {
		errs = append(errs, validator.ValidationError{Field: "maxPerEmployee", Message: "Max loans per employee cannot be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CreatePolicyRequest) ToPolicy() Policy {
	minAmt, _ := decimal.NewFromString(r.MinAmount)
	maxAmt, _ := decimal.NewFromString(r.MaxAmount)
	rate, _ := decimal.NewFromString(r.AnnualRatePercent)
	return Policy{
		Name:                 r.Name,
		LoanType:             LoanType(r.LoanType),
		MinAmount:            minAmt,
		MaxAmount:            maxAmt,
		MinTenureMonths:      r.MinTenureMonths,
		MaxTenureMonths:      r.MaxTenureMonths,
		AnnualRatePercent:    rate,
		MinServiceMonths:     r.MinServiceMonths,
		MaxActivePerEmployee: r.MaxActivePerEmployee,
		MaxPerEmployee:       r.MaxPerEmployee,
		IsActive:             true,
	}
}

type ApplyLoanRequest struct {
	EmployeeID   string `json:"employeeId"`
	PolicyID     string `json:"policyId"`
	Amount       string `json:"amount"`
	TenureMonths int    `json:"tenureMonths"`
	StartMonth   string `json:"startMonth"`
	Reason       string `json:"reason,omitempty"`
}

func (r *ApplyLoanRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs = append(errs, validator.ValidationError{Field: "employeeId", Message: "Employee ID is required"})
	}
	if r.PolicyID == "" {
		errs = append(errs, validator.ValidationError{Field: "policyId", Message: "Policy ID is required"})
	}
	if amt, err := decimal.NewFromString(r.Amount); err != nil || !amt.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "Amount must be a positive number"})
	}
	if r.TenureMonths < 1 {
		errs = append(errs, validator.ValidationError{Field: "tenureMonths", Message: "Tenure must be at least 1 month"})
	}
	if !validator.IsValidMonth(r.StartMonth) {
		errs = append(errs, validator.ValidationError{Field: "startMonth", Message: "Start month must be in YYYY-MM format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DecideLoanRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty"`
}

type RecordRepaymentRequest struct {
	Month  string `json:"month"`
	Amount string `json:"amount,omitempty"` // empty = scheduled EMI
	Note   string `json:"note,omitempty"`
}

func (r *RecordRepaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "Month must be in YYYY-MM format"})
	}
	if r.Amount != "" {
		if amt, err := decimal.NewFromString(r.Amount); err != nil || !amt.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: "amount", Message: "Amount must be a positive number"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SettleLoanRequest struct {
	AsOf string `json:"asOf"` // YYYY-MM-DD
	Note string `json:"note,omitempty"`
}

func (r *SettleLoanRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.AsOf); !ok {
		errs = append(errs, validator.ValidationError{Field: "asOf", Message: "As-of date must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSE DTO ==========

type PolicyResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	LoanType             string `json:"loanType"`
	MinAmount            string `json:"minAmount"`
	MaxAmount            string `json:"maxAmount"`
	MinTenureMonths      int    `json:"minTenureMonths"`
	MaxTenureMonths      int    `json:"maxTenureMonths"`
	AnnualRatePercent    string `json:"annualRatePercent"`
	MinServiceMonths     int    `json:"minServiceMonths"`
	MaxActivePerEmployee int    `json:"maxActivePerEmployee"`
	MaxPerEmployee       int    `json:"maxPerEmployee"`
	IsActive             bool   `json:"isActive"`
	CreatedAt            string `json:"createdAt"`
}

type TransactionResponse struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Amount             string `json:"amount"`
	PrincipalComponent string `json:"principalComponent"`
	InterestComponent  string `json:"interestComponent"`
	Month              string `json:"month"`
	Note               string `json:"note,omitempty"`
	CreatedBy          string `json:"createdBy"`
	CreatedAt          string `json:"createdAt"`
}

type LoanResponse struct {
	ID                   string                `json:"id"`
	EmployeeID           string                `json:"employeeId"`
	EmployeeName         *string               `json:"employeeName,omitempty"`
	PolicyID             string                `json:"policyId"`
	PolicyName           *string               `json:"policyName,omitempty"`
	LoanType             string                `json:"loanType"`
	Principal            string                `json:"principal"`
	AnnualRatePercent    string                `json:"annualRatePercent"`
	TenureMonths         int                   `json:"tenureMonths"`
	EMI                  string                `json:"emi"`
	Status               string                `json:"status"`
	Reason               string                `json:"reason,omitempty"`
	StartMonth           string                `json:"startMonth"`
	OutstandingPrincipal string                `json:"outstandingPrincipal"`
	Transactions         []TransactionResponse `json:"transactions,omitempty"`
	CreatedAt            string                `json:"createdAt"`
}

type ScheduleEntryResponse struct {
	Installment          int    `json:"installment"`
	Month                string `json:"month"`
	EMI                  string `json:"emi"`
	PrincipalComponent   string `json:"principalComponent"`
	InterestComponent    string `json:"interestComponent"`
	OutstandingPrincipal string `json:"outstandingPrincipal"`
}

type SettlementPreviewResponse struct {
	LoanID               string `json:"loanId"`
	AsOf                 string `json:"asOf"`
	OutstandingPrincipal string `json:"outstandingPrincipal"`
	AccruedInterest      string `json:"accruedInterest"`
	InterestAlreadyPaid  string `json:"interestAlreadyPaid"`
	SettlementAmount     string `json:"settlementAmount"`
}
