package deduction

import (
	"context"
	"errors"

	"github.com/talentpay/payroll-backend-go/internal/domain/attendance"
	"github.com/talentpay/payroll-backend-go/internal/domain/deduction"
	"github.com/talentpay/payroll-backend-go/internal/domain/employee"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
)

type DeductionServiceImpl struct {
	db             *database.DB
	repo           deduction.Repository
	employeeRepo   employee.Repository
	attendanceRepo attendance.Repository
	engine         *Engine
}

func NewDeductionService(
	db *database.DB,
	repo deduction.Repository,
	employeeRepo employee.Repository,
	attendanceRepo attendance.Repository,
) deduction.Service {
	return &DeductionServiceImpl{
		db:             db,
		repo:           repo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		engine:         NewEngine(),
	}
}

// ========== RULE CONFIGS ==========

func (s *DeductionServiceImpl) UpsertRuleConfig(ctx context.Context, req *deduction.UpsertRuleConfigRequest) (*deduction.RuleConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg := req.ToConfig()
	if err := s.repo.UpsertRuleConfig(ctx, &cfg); err != nil {
		return nil, err
	}

	resp := mapToRuleConfigResponse(&cfg)
	return &resp, nil
}

func (s *DeductionServiceImpl) ListRuleConfigs(ctx context.Context, scope *string) ([]deduction.RuleConfigResponse, error) {
	var scopeFilter *deduction.RuleScope
	if scope != nil {
		v := deduction.RuleScope(*scope)
		scopeFilter = &v
	}

	configs, err := s.repo.ListRuleConfigs(ctx, scopeFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]deduction.RuleConfigResponse, 0, len(configs))
	for i := range configs {
		responses = append(responses, mapToRuleConfigResponse(&configs[i]))
	}
	return responses, nil
}

func (s *DeductionServiceImpl) DeleteRuleConfig(ctx context.Context, id string) error {
	return s.repo.DeleteRuleConfig(ctx, id)
}

// ========== EARLY-OUT SETTINGS ==========

func (s *DeductionServiceImpl) UpsertEarlyOutSettings(ctx context.Context, req *deduction.UpsertEarlyOutSettingsRequest) (*deduction.EarlyOutSettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	settings := req.ToSettings()
	ranges, err := NormalizeRanges(settings.Ranges)
	if err != nil {
		return nil, err
	}
	settings.Ranges = ranges

	if err := s.repo.UpsertEarlyOutSettings(ctx, &settings); err != nil {
		return nil, err
	}

	resp := mapToEarlyOutSettingsResponse(&settings)
	return &resp, nil
}

func (s *DeductionServiceImpl) ListEarlyOutSettings(ctx context.Context) ([]deduction.EarlyOutSettingsResponse, error) {
	settings, err := s.repo.ListEarlyOutSettings(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]deduction.EarlyOutSettingsResponse, 0, len(settings))
	for i := range settings {
		responses = append(responses, mapToEarlyOutSettingsResponse(&settings[i]))
	}
	return responses, nil
}

// ========== PREVIEW ==========

func (s *DeductionServiceImpl) PreviewDeduction(ctx context.Context, req *deduction.PreviewDeductionRequest) (*deduction.DeductionPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	tally, err := s.attendanceRepo.GetMonthlyTally(ctx, emp.ID, req.Month)
	if err != nil {
		return nil, err
	}

	attendanceCfg, permissionCfg, earlyOut, err := s.resolveConfigs(ctx, emp.DepartmentID, emp.DivisionID)
	if err != nil {
		return nil, err
	}

	breakdown := s.engine.Evaluate(tally, attendanceCfg, permissionCfg, earlyOut)
	total := breakdown.Total()

	mode := "combined"
	if breakdown.EarlyOutTiered {
		mode = "tiered"
	}

	return &deduction.DeductionPreviewResponse{
		EmployeeID:          emp.ID,
		Month:               req.Month,
		AttendanceDays:      breakdown.Attendance.Days.String(),
		PermissionDays:      breakdown.Permission.Days.String(),
		EarlyOutDays:        breakdown.EarlyOut.Days.String(),
		TotalDays:           total.Days.String(),
		CustomAmount:        total.Money.String(),
		EligibleLateIns:     breakdown.EligibleLateIns,
		EligibleEarlyOuts:   breakdown.EligibleEarlyOuts,
		EligiblePermissions: breakdown.EligiblePermissions,
		EarlyOutMode:        mode,
	}, nil
}

// resolveConfigs loads the scoped configs for an employee. A missing config
// simply means no deduction for that stream.
func (s *DeductionServiceImpl) resolveConfigs(ctx context.Context, departmentID string, divisionID *string) (*deduction.RuleConfig, *deduction.RuleConfig, *deduction.EarlyOutSettings, error) {
	attendanceCfg, err := s.repo.GetRuleConfig(ctx, deduction.ScopeAttendance, &departmentID, divisionID)
	if err != nil && !errors.Is(err, deduction.ErrConfigNotFound) {
		return nil, nil, nil, err
	}

	permissionCfg, err := s.repo.GetRuleConfig(ctx, deduction.ScopePermission, &departmentID, divisionID)
	if err != nil && !errors.Is(err, deduction.ErrConfigNotFound) {
		return nil, nil, nil, err
	}

	earlyOut, err := s.repo.GetEarlyOutSettings(ctx, &departmentID, divisionID)
	if err != nil && !errors.Is(err, deduction.ErrEarlyOutSettingNotFound) {
		return nil, nil, nil, err
	}

	return attendanceCfg, permissionCfg, earlyOut, nil
}

// ========== MAPPERS ==========

func mapToRuleConfigResponse(cfg *deduction.RuleConfig) deduction.RuleConfigResponse {
	resp := deduction.RuleConfigResponse{
		ID:                     cfg.ID,
		Scope:                  string(cfg.Scope),
		DepartmentID:           cfg.DepartmentID,
		DivisionID:             cfg.DivisionID,
		CountThreshold:         cfg.CountThreshold,
		DeductionType:          string(cfg.DeductionType),
		MinimumDurationMinutes: cfg.MinimumDurationMinutes,
		CalculationMode:        string(cfg.CalculationMode),
		CreatedAt:              cfg.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:              cfg.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if cfg.CustomAmount != nil {
		v := cfg.CustomAmount.String()
		resp.CustomAmount = &v
	}
	return resp
}

func mapToEarlyOutSettingsResponse(settings *deduction.EarlyOutSettings) deduction.EarlyOutSettingsResponse {
	ranges := make([]deduction.EarlyOutRangeResponse, 0, len(settings.Ranges))
	for _, r := range settings.Ranges {
		rr := deduction.EarlyOutRangeResponse{
			MinMinutes:    r.MinMinutes,
			MaxMinutes:    r.MaxMinutes,
			DeductionType: string(r.DeductionType),
			Description:   r.Description,
		}
		if r.Amount != nil {
			v := r.Amount.String()
			rr.Amount = &v
		}
		ranges = append(ranges, rr)
	}
	return deduction.EarlyOutSettingsResponse{
		ID:                     settings.ID,
		DepartmentID:           settings.DepartmentID,
		DivisionID:             settings.DivisionID,
		Enabled:                settings.Enabled,
		AllowedDurationMinutes: settings.AllowedDurationMinutes,
		MinimumDurationMinutes: settings.MinimumDurationMinutes,
		Ranges:                 ranges,
		CreatedAt:              settings.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:              settings.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
