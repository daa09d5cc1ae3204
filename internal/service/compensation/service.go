package compensation

import (
	"context"
	"time"

	"github.com/talentpay/payroll-backend-go/internal/domain/compensation"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
)

type CompensationServiceImpl struct {
	db       *database.DB
	repo     compensation.Repository
	resolver *RuleResolver
}

func NewCompensationService(db *database.DB, repo compensation.Repository) compensation.Service {
	return &CompensationServiceImpl{
		db:       db,
		repo:     repo,
		resolver: NewRuleResolver(),
	}
}

// ========== DEFINITIONS ==========

func (s *CompensationServiceImpl) CreateDefinition(ctx context.Context, req compensation.CreateDefinitionRequest) (compensation.DefinitionResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.DefinitionResponse{}, err
	}

	def := compensation.Definition{
		Name:        req.Name,
		Category:    compensation.Category(req.Category),
		Description: req.Description,
		IsActive:    true,
		GlobalRule:  req.GlobalRule.ToRule(),
	}

	created, err := s.repo.CreateDefinition(ctx, def)
	if err != nil {
		return compensation.DefinitionResponse{}, err
	}

	return mapToDefinitionResponse(created), nil
}

func (s *CompensationServiceImpl) GetDefinition(ctx context.Context, id string) (compensation.DefinitionResponse, error) {
	def, err := s.repo.GetDefinitionByID(ctx, id)
	if err != nil {
		return compensation.DefinitionResponse{}, err
	}
	return mapToDefinitionResponse(def), nil
}

func (s *CompensationServiceImpl) ListDefinitions(ctx context.Context, category *compensation.Category, activeOnly bool) ([]compensation.DefinitionResponse, error) {
	defs, err := s.repo.ListDefinitions(ctx, category, activeOnly)
	if err != nil {
		return nil, err
	}

	var result []compensation.DefinitionResponse
	for _, d := range defs {
		result = append(result, mapToDefinitionResponse(d))
	}
	return result, nil
}

func (s *CompensationServiceImpl) UpdateDefinition(ctx context.Context, req compensation.UpdateDefinitionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.UpdateDefinition(ctx, req)
}

// DeactivateDefinition soft-deactivates. Definitions referenced by historical
// payroll are never physically removed.
func (s *CompensationServiceImpl) DeactivateDefinition(ctx context.Context, id string) error {
	return s.repo.DeactivateDefinition(ctx, id)
}

// ========== OVERRIDES ==========

func (s *CompensationServiceImpl) UpsertOverride(ctx context.Context, req compensation.UpsertOverrideRequest) (compensation.OverrideResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.OverrideResponse{}, err
	}

	if _, err := s.repo.GetDefinitionByID(ctx, req.DefinitionID); err != nil {
		return compensation.OverrideResponse{}, err
	}

	ov := compensation.OverrideRule{
		DefinitionID: req.DefinitionID,
		DepartmentID: req.DepartmentID,
		DivisionID:   req.DivisionID,
		Rule:         req.Rule.ToRule(),
	}

	saved, err := s.repo.UpsertOverride(ctx, ov)
	if err != nil {
		return compensation.OverrideResponse{}, err
	}

	return mapToOverrideResponse(saved), nil
}

func (s *CompensationServiceImpl) DeleteOverride(ctx context.Context, definitionID, departmentID string, divisionID *string) error {
	return s.repo.DeleteOverride(ctx, definitionID, departmentID, divisionID)
}

// ========== EMPLOYEE OVERRIDES ==========

func (s *CompensationServiceImpl) AssignEmployeeOverride(ctx context.Context, req compensation.AssignEmployeeOverrideRequest) (compensation.EmployeeOverrideResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.EmployeeOverrideResponse{}, err
	}

	effectiveDate := time.Now()
	if req.EffectiveDate != nil {
		if parsed, ok := validatorDate(*req.EffectiveDate); ok {
			effectiveDate = parsed
		}
	}

	var endDate *time.Time
	if req.EndDate != nil {
		if parsed, ok := validatorDate(*req.EndDate); ok {
			endDate = &parsed
		}
	}

	ov := compensation.EmployeeOverride{
		EmployeeID:    req.EmployeeID,
		DefinitionID:  req.DefinitionID,
		Amount:        req.Amount,
		EffectiveDate: effectiveDate,
		EndDate:       endDate,
	}

	created, err := s.repo.AssignEmployeeOverride(ctx, ov)
	if err != nil {
		return compensation.EmployeeOverrideResponse{}, err
	}

	return mapToEmployeeOverrideResponse(created), nil
}

func (s *CompensationServiceImpl) GetEmployeeOverrides(ctx context.Context, employeeID string, asOf time.Time) ([]compensation.EmployeeOverrideResponse, error) {
	overrides, err := s.repo.GetEmployeeOverrides(ctx, employeeID, asOf)
	if err != nil {
		return nil, err
	}

	var result []compensation.EmployeeOverrideResponse
	for _, o := range overrides {
		result = append(result, mapToEmployeeOverrideResponse(o))
	}
	return result, nil
}

func (s *CompensationServiceImpl) RemoveEmployeeOverride(ctx context.Context, id string) error {
	return s.repo.RemoveEmployeeOverride(ctx, id)
}

// ========== RESOLUTION PREVIEW ==========

func (s *CompensationServiceImpl) ResolvePreview(ctx context.Context, definitionID, departmentID string, divisionID *string) (compensation.ResolvePreviewResponse, error) {
	def, err := s.repo.GetDefinitionByID(ctx, definitionID)
	if err != nil {
		return compensation.ResolvePreviewResponse{}, err
	}

	rule, level, err := s.resolver.Resolve(def, departmentID, divisionID)
	if err != nil {
		return compensation.ResolvePreviewResponse{}, err
	}

	resp := compensation.ResolvePreviewResponse{
		DefinitionID: definitionID,
		DepartmentID: departmentID,
		DivisionID:   divisionID,
		Level:        string(level),
	}
	if rule != nil {
		r := mapToRuleResponse(*rule)
		resp.Rule = &r
	}
	return resp, nil
}

// ========== HELPERS ==========

func validatorDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

func mapToRuleResponse(r compensation.Rule) compensation.RuleResponse {
	resp := compensation.RuleResponse{
		Kind:               string(r.Kind),
		Amount:             r.Amount,
		BasedOnPresentDays: r.BasedOnPresentDays,
		Percentage:         r.Percentage,
		MinAmount:          r.MinAmount,
		MaxAmount:          r.MaxAmount,
	}
	if r.Base != nil {
		base := string(*r.Base)
		resp.Base = &base
	}
	return resp
}

func mapToOverrideResponse(ov compensation.OverrideRule) compensation.OverrideResponse {
	return compensation.OverrideResponse{
		ID:           ov.ID,
		DepartmentID: ov.DepartmentID,
		DivisionID:   ov.DivisionID,
		Rule:         mapToRuleResponse(ov.Rule),
	}
}

func mapToDefinitionResponse(d compensation.Definition) compensation.DefinitionResponse {
	resp := compensation.DefinitionResponse{
		ID:          d.ID,
		Name:        d.Name,
		Category:    string(d.Category),
		Description: d.Description,
		IsActive:    d.IsActive,
		GlobalRule:  mapToRuleResponse(d.GlobalRule),
	}
	for _, ov := range d.Overrides {
		resp.Overrides = append(resp.Overrides, mapToOverrideResponse(ov))
	}
	return resp
}

func mapToEmployeeOverrideResponse(o compensation.EmployeeOverride) compensation.EmployeeOverrideResponse {
	var endDateStr *string
	if o.EndDate != nil {
		str := o.EndDate.Format("2006-01-02")
		endDateStr = &str
	}

	definitionName := ""
	category := ""
	if o.DefinitionName != nil {
		definitionName = *o.DefinitionName
	}
	if o.Category != nil {
		category = string(*o.Category)
	}

	return compensation.EmployeeOverrideResponse{
		ID:             o.ID,
		EmployeeID:     o.EmployeeID,
		DefinitionID:   o.DefinitionID,
		DefinitionName: definitionName,
		Category:       category,
		Amount:         o.Amount,
		EffectiveDate:  o.EffectiveDate.Format("2006-01-02"),
		EndDate:        endDateStr,
	}
}
