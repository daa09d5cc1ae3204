package deduction

import "context"

type Service interface {
	UpsertRuleConfig(ctx context.Context, req *UpsertRuleConfigRequest) (*RuleConfigResponse, error)
	ListRuleConfigs(ctx context.Context, scope *string) ([]RuleConfigResponse, error)
	DeleteRuleConfig(ctx context.Context, id string) error

	UpsertEarlyOutSettings(ctx context.Context, req *UpsertEarlyOutSettingsRequest) (*EarlyOutSettingsResponse, error)
	ListEarlyOutSettings(ctx context.Context) ([]EarlyOutSettingsResponse, error)

	PreviewDeduction(ctx context.Context, req *PreviewDeductionRequest) (*DeductionPreviewResponse, error)
}
