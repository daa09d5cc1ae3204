package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentpay/payroll-backend-go/internal/domain/deduction"
	"github.com/talentpay/payroll-backend-go/internal/handler/http/response"
)

type DeductionHandler interface {
	UpsertRuleConfig(w http.ResponseWriter, r *http.Request)
	ListRuleConfigs(w http.ResponseWriter, r *http.Request)
	DeleteRuleConfig(w http.ResponseWriter, r *http.Request)

	UpsertEarlyOutSettings(w http.ResponseWriter, r *http.Request)
	ListEarlyOutSettings(w http.ResponseWriter, r *http.Request)

	PreviewDeduction(w http.ResponseWriter, r *http.Request)
}

type deductionHandlerImpl struct {
	deductionService deduction.Service
}

func NewDeductionHandler(deductionService deduction.Service) DeductionHandler {
	return &deductionHandlerImpl{deductionService: deductionService}
}

// ========== RULE CONFIGS ==========

func (h *deductionHandlerImpl) UpsertRuleConfig(w http.ResponseWriter, r *http.Request) {
	var req deduction.UpsertRuleConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.deductionService.UpsertRuleConfig(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *deductionHandlerImpl) ListRuleConfigs(w http.ResponseWriter, r *http.Request) {
	var scope *string
	if s := r.URL.Query().Get("scope"); s != "" {
		scope = &s
	}

	result, err := h.deductionService.ListRuleConfigs(r.Context(), scope)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *deductionHandlerImpl) DeleteRuleConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Rule config ID is required", nil)
		return
	}

	if err := h.deductionService.DeleteRuleConfig(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Deduction rule config removed", nil)
}

// ========== EARLY-OUT SETTINGS ==========

func (h *deductionHandlerImpl) UpsertEarlyOutSettings(w http.ResponseWriter, r *http.Request) {
	var req deduction.UpsertEarlyOutSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.deductionService.UpsertEarlyOutSettings(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *deductionHandlerImpl) ListEarlyOutSettings(w http.ResponseWriter, r *http.Request) {
	result, err := h.deductionService.ListEarlyOutSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== PREVIEW ==========

func (h *deductionHandlerImpl) PreviewDeduction(w http.ResponseWriter, r *http.Request) {
	var req deduction.PreviewDeductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.deductionService.PreviewDeduction(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
