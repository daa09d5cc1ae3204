package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentpay/payroll-backend-go/internal/domain/loan"
	"github.com/talentpay/payroll-backend-go/internal/handler/http/response"
)

type LoanHandler interface {
	// Policies
	CreatePolicy(w http.ResponseWriter, r *http.Request)
	ListPolicies(w http.ResponseWriter, r *http.Request)
	DeactivatePolicy(w http.ResponseWriter, r *http.Request)

	// Loans
	ApplyLoan(w http.ResponseWriter, r *http.Request)
	DecideLoan(w http.ResponseWriter, r *http.Request)
	GetLoan(w http.ResponseWriter, r *http.Request)
	ListLoans(w http.ResponseWriter, r *http.Request)
	ListLoansByEmployee(w http.ResponseWriter, r *http.Request)
	GetSchedule(w http.ResponseWriter, r *http.Request)

	// Ledger
	RecordRepayment(w http.ResponseWriter, r *http.Request)
	PreviewSettlement(w http.ResponseWriter, r *http.Request)
	SettleLoan(w http.ResponseWriter, r *http.Request)
}

type loanHandlerImpl struct {
	loanService loan.Service
}

func NewLoanHandler(loanService loan.Service) LoanHandler {
	return &loanHandlerImpl{loanService: loanService}
}

// ========== POLICIES ==========

func (h *loanHandlerImpl) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req loan.CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.loanService.CreatePolicy(r.Context(), &req, actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Loan policy created", result)
}

func (h *loanHandlerImpl) ListPolicies(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	result, err := h.loanService.ListPolicies(r.Context(), activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *loanHandlerImpl) DeactivatePolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Policy ID is required", nil)
		return
	}

	if err := h.loanService.DeactivatePolicy(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Loan policy deactivated", nil)
}

// ========== LOANS ==========

func (h *loanHandlerImpl) ApplyLoan(w http.ResponseWriter, r *http.Request) {
	var req loan.ApplyLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.loanService.ApplyLoan(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Loan application submitted", result)
}

func (h *loanHandlerImpl) DecideLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")
	if loanID == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	var req loan.DecideLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.loanService.DecideLoan(r.Context(), loanID, &req, actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *loanHandlerImpl) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")
	if loanID == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	result, err := h.loanService.GetLoan(r.Context(), loanID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *loanHandlerImpl) ListLoans(w http.ResponseWriter, r *http.Request) {
	var status *loan.LoanStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := loan.LoanStatus(s)
		status = &st
	}

	result, err := h.loanService.ListLoans(r.Context(), status)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *loanHandlerImpl) ListLoansByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.loanService.ListLoansByEmployee(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *loanHandlerImpl) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")
	if loanID == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	result, err := h.loanService.GetSchedule(r.Context(), loanID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== LEDGER ==========

func (h *loanHandlerImpl) RecordRepayment(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")
	if loanID == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	var req loan.RecordRepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.loanService.RecordRepayment(r.Context(), loanID, &req, actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Repayment recorded", result)
}

func (h *loanHandlerImpl) PreviewSettlement(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")
	asOf := r.URL.Query().Get("as_of")
	if loanID == "" || asOf == "" {
		response.BadRequest(w, "Loan ID and as_of are required", nil)
		return
	}

	result, err := h.loanService.PreviewSettlement(r.Context(), loanID, asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *loanHandlerImpl) SettleLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")
	if loanID == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	var req loan.SettleLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.loanService.SettleLoan(r.Context(), loanID, &req, actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
