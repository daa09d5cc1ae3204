package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talentpay/payroll-backend-go/internal/domain/compensation"
	"github.com/talentpay/payroll-backend-go/internal/handler/http/response"
)

type CompensationHandler interface {
	// Definitions
	CreateDefinition(w http.ResponseWriter, r *http.Request)
	GetDefinition(w http.ResponseWriter, r *http.Request)
	ListDefinitions(w http.ResponseWriter, r *http.Request)
	UpdateDefinition(w http.ResponseWriter, r *http.Request)
	DeactivateDefinition(w http.ResponseWriter, r *http.Request)

	// Scoped overrides
	UpsertOverride(w http.ResponseWriter, r *http.Request)
	DeleteOverride(w http.ResponseWriter, r *http.Request)
	ResolvePreview(w http.ResponseWriter, r *http.Request)

	// Employee overrides
	AssignEmployeeOverride(w http.ResponseWriter, r *http.Request)
	GetEmployeeOverrides(w http.ResponseWriter, r *http.Request)
	RemoveEmployeeOverride(w http.ResponseWriter, r *http.Request)
}

type compensationHandlerImpl struct {
	compensationService compensation.Service
}

func NewCompensationHandler(compensationService compensation.Service) CompensationHandler {
	return &compensationHandlerImpl{compensationService: compensationService}
}

// ========== DEFINITIONS ==========

func (h *compensationHandlerImpl) CreateDefinition(w http.ResponseWriter, r *http.Request) {
	var req compensation.CreateDefinitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.compensationService.CreateDefinition(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Compensation definition created", result)
}

func (h *compensationHandlerImpl) GetDefinition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Definition ID is required", nil)
		return
	}

	result, err := h.compensationService.GetDefinition(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	var category *compensation.Category
	if c := r.URL.Query().Get("category"); c != "" {
		cat := compensation.Category(c)
		category = &cat
	}
	activeOnly := r.URL.Query().Get("active_only") == "true"

	result, err := h.compensationService.ListDefinitions(r.Context(), category, activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) UpdateDefinition(w http.ResponseWriter, r *http.Request) {
	var req compensation.UpdateDefinitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := h.compensationService.UpdateDefinition(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Compensation definition updated", nil)
}

func (h *compensationHandlerImpl) DeactivateDefinition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Definition ID is required", nil)
		return
	}

	if err := h.compensationService.DeactivateDefinition(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Compensation definition deactivated", nil)
}

// ========== SCOPED OVERRIDES ==========

func (h *compensationHandlerImpl) UpsertOverride(w http.ResponseWriter, r *http.Request) {
	var req compensation.UpsertOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.DefinitionID = chi.URLParam(r, "id")

	result, err := h.compensationService.UpsertOverride(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	definitionID := chi.URLParam(r, "id")
	departmentID := r.URL.Query().Get("department_id")
	if definitionID == "" || departmentID == "" {
		response.BadRequest(w, "Definition ID and department_id are required", nil)
		return
	}

	var divisionID *string
	if d := r.URL.Query().Get("division_id"); d != "" {
		divisionID = &d
	}

	if err := h.compensationService.DeleteOverride(r.Context(), definitionID, departmentID, divisionID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Override rule removed", nil)
}

func (h *compensationHandlerImpl) ResolvePreview(w http.ResponseWriter, r *http.Request) {
	definitionID := chi.URLParam(r, "id")
	departmentID := r.URL.Query().Get("department_id")
	if definitionID == "" || departmentID == "" {
		response.BadRequest(w, "Definition ID and department_id are required", nil)
		return
	}

	var divisionID *string
	if d := r.URL.Query().Get("division_id"); d != "" {
		divisionID = &d
	}

	result, err := h.compensationService.ResolvePreview(r.Context(), definitionID, departmentID, divisionID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== EMPLOYEE OVERRIDES ==========

func (h *compensationHandlerImpl) AssignEmployeeOverride(w http.ResponseWriter, r *http.Request) {
	var req compensation.AssignEmployeeOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeId")

	result, err := h.compensationService.AssignEmployeeOverride(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Employee override assigned", result)
}

func (h *compensationHandlerImpl) GetEmployeeOverrides(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			response.BadRequest(w, "as_of must be a valid date in YYYY-MM-DD format", nil)
			return
		}
		asOf = parsed
	}

	result, err := h.compensationService.GetEmployeeOverrides(r.Context(), employeeID, asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) RemoveEmployeeOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Override ID is required", nil)
		return
	}

	if err := h.compensationService.RemoveEmployeeOverride(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee override removed", nil)
}
