package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talentpay/payroll-backend-go/internal/domain/deduction"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
)

type deductionRepository struct {
	db *database.DB
}

func NewDeductionRepository(db *database.DB) deduction.Repository {
	return &deductionRepository{db: db}
}

// ========== RULE CONFIGS ==========

func (r *deductionRepository) UpsertRuleConfig(ctx context.Context, cfg *deduction.RuleConfig) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO deduction_rule_configs
			(scope, department_id, division_id, count_threshold, deduction_type, custom_amount, minimum_duration_minutes, calculation_mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (scope, COALESCE(department_id, ''), COALESCE(division_id, '')) DO UPDATE SET
			count_threshold = EXCLUDED.count_threshold,
			deduction_type = EXCLUDED.deduction_type,
			custom_amount = EXCLUDED.custom_amount,
			minimum_duration_minutes = EXCLUDED.minimum_duration_minutes,
			calculation_mode = EXCLUDED.calculation_mode,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		cfg.Scope, cfg.DepartmentID, cfg.DivisionID, cfg.CountThreshold,
		cfg.DeductionType, cfg.CustomAmount, cfg.MinimumDurationMinutes, cfg.CalculationMode,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert deduction rule config: %w", err)
	}

	return nil
}

// GetRuleConfig picks the most specific matching row in one query: division
// match ranks first, then department, then the global row.
func (r *deductionRepository) GetRuleConfig(ctx context.Context, scope deduction.RuleScope, departmentID, divisionID *string) (*deduction.RuleConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, scope, department_id, division_id, count_threshold, deduction_type, custom_amount,
			   minimum_duration_minutes, calculation_mode, created_at, updated_at
		FROM deduction_rule_configs
		WHERE scope = $1
		  AND (
			(department_id = $2 AND division_id = $3)
			OR (department_id = $2 AND division_id IS NULL)
			OR (department_id IS NULL AND division_id IS NULL)
		  )
		ORDER BY division_id IS NULL, department_id IS NULL
		LIMIT 1
	`

	var cfg deduction.RuleConfig
	err := q.QueryRow(ctx, query, scope, departmentID, divisionID).Scan(
		&cfg.ID, &cfg.Scope, &cfg.DepartmentID, &cfg.DivisionID, &cfg.CountThreshold,
		&cfg.DeductionType, &cfg.CustomAmount, &cfg.MinimumDurationMinutes, &cfg.CalculationMode,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, deduction.ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get deduction rule config: %w", err)
	}

	return &cfg, nil
}

func (r *deductionRepository) ListRuleConfigs(ctx context.Context, scope *deduction.RuleScope) ([]deduction.RuleConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, scope, department_id, division_id, count_threshold, deduction_type, custom_amount,
			   minimum_duration_minutes, calculation_mode, created_at, updated_at
		FROM deduction_rule_configs
		WHERE ($1::text IS NULL OR scope = $1)
		ORDER BY scope, department_id NULLS FIRST, division_id NULLS FIRST
	`

	rows, err := q.Query(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list deduction rule configs: %w", err)
	}
	defer rows.Close()

	var configs []deduction.RuleConfig
	for rows.Next() {
		var cfg deduction.RuleConfig
		if err := rows.Scan(
			&cfg.ID, &cfg.Scope, &cfg.DepartmentID, &cfg.DivisionID, &cfg.CountThreshold,
			&cfg.DeductionType, &cfg.CustomAmount, &cfg.MinimumDurationMinutes, &cfg.CalculationMode,
			&cfg.CreatedAt, &cfg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deduction rule config: %w", err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

func (r *deductionRepository) DeleteRuleConfig(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM deduction_rule_configs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deduction rule config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return deduction.ErrConfigNotFound
	}

	return nil
}

// ========== EARLY-OUT SETTINGS ==========

func (r *deductionRepository) UpsertEarlyOutSettings(ctx context.Context, settings *deduction.EarlyOutSettings) error {
	q := GetQuerier(ctx, r.db)

	rangesJSON, err := json.Marshal(settings.Ranges)
	if err != nil {
		return fmt.Errorf("failed to encode early-out ranges: %w", err)
	}

	query := `
		INSERT INTO early_out_settings
			(department_id, division_id, enabled, allowed_duration_minutes, minimum_duration_minutes, ranges)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (COALESCE(department_id, ''), COALESCE(division_id, '')) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			allowed_duration_minutes = EXCLUDED.allowed_duration_minutes,
			minimum_duration_minutes = EXCLUDED.minimum_duration_minutes,
			ranges = EXCLUDED.ranges,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		settings.DepartmentID, settings.DivisionID, settings.Enabled,
		settings.AllowedDurationMinutes, settings.MinimumDurationMinutes, rangesJSON,
	).Scan(&settings.ID, &settings.CreatedAt, &settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert early-out settings: %w", err)
	}

	return nil
}

func (r *deductionRepository) GetEarlyOutSettings(ctx context.Context, departmentID, divisionID *string) (*deduction.EarlyOutSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, department_id, division_id, enabled, allowed_duration_minutes, minimum_duration_minutes,
			   ranges, created_at, updated_at
		FROM early_out_settings
		WHERE (
			(department_id = $1 AND division_id = $2)
			OR (department_id = $1 AND division_id IS NULL)
			OR (department_id IS NULL AND division_id IS NULL)
		)
		ORDER BY division_id IS NULL, department_id IS NULL
		LIMIT 1
	`

	var settings deduction.EarlyOutSettings
	var rangesJSON []byte
	err := q.QueryRow(ctx, query, departmentID, divisionID).Scan(
		&settings.ID, &settings.DepartmentID, &settings.DivisionID, &settings.Enabled,
		&settings.AllowedDurationMinutes, &settings.MinimumDurationMinutes,
		&rangesJSON, &settings.CreatedAt, &settings.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, deduction.ErrEarlyOutSettingNotFound
		}
		return nil, fmt.Errorf("failed to get early-out settings: %w", err)
	}
	if err := json.Unmarshal(rangesJSON, &settings.Ranges); err != nil {
		return nil, fmt.Errorf("failed to decode early-out ranges: %w", err)
	}

	return &settings, nil
}

func (r *deductionRepository) ListEarlyOutSettings(ctx context.Context) ([]deduction.EarlyOutSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, department_id, division_id, enabled, allowed_duration_minutes, minimum_duration_minutes,
			   ranges, created_at, updated_at
		FROM early_out_settings
		ORDER BY department_id NULLS FIRST, division_id NULLS FIRST
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list early-out settings: %w", err)
	}
	defer rows.Close()

	var all []deduction.EarlyOutSettings
	for rows.Next() {
		var settings deduction.EarlyOutSettings
		var rangesJSON []byte
		if err := rows.Scan(
			&settings.ID, &settings.DepartmentID, &settings.DivisionID, &settings.Enabled,
			&settings.AllowedDurationMinutes, &settings.MinimumDurationMinutes,
			&rangesJSON, &settings.CreatedAt, &settings.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan early-out settings: %w", err)
		}
		if err := json.Unmarshal(rangesJSON, &settings.Ranges); err != nil {
			return nil, fmt.Errorf("failed to decode early-out ranges: %w", err)
		}
		all = append(all, settings)
	}
	return all, rows.Err()
}
