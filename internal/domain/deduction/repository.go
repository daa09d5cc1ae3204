package deduction

import "context"

type Repository interface {
	UpsertRuleConfig(ctx context.Context, cfg *RuleConfig) error
	// GetRuleConfig resolves the most specific config for the scope:
	// division row first, then department, then global.
	GetRuleConfig(ctx context.Context, scope RuleScope, departmentID, divisionID *string) (*RuleConfig, error)
	ListRuleConfigs(ctx context.Context, scope *RuleScope) ([]RuleConfig, error)
	DeleteRuleConfig(ctx context.Context, id string) error

	UpsertEarlyOutSettings(ctx context.Context, settings *EarlyOutSettings) error
	GetEarlyOutSettings(ctx context.Context, departmentID, divisionID *string) (*EarlyOutSettings, error)
	ListEarlyOutSettings(ctx context.Context) ([]EarlyOutSettings, error)
}
