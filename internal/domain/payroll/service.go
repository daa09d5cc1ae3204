package payroll

import "context"

type Service interface {
	CreateBatch(ctx context.Context, req *CreateBatchRequest, createdBy string) (*BatchResponse, error)
	GetBatch(ctx context.Context, batchID string) (*BatchResponse, error)
	ListBatches(ctx context.Context, filter BatchFilter) ([]BatchResponse, int64, error)
	ListRecords(ctx context.Context, batchID string) ([]RecordResponse, error)
	GetRecord(ctx context.Context, recordID string) (*RecordResponse, error)

	TransitionBatch(ctx context.Context, batchID string, req *TransitionBatchRequest, actor string) (*BatchResponse, error)
	RequestRecalculation(ctx context.Context, batchID string, req *RequestRecalculationRequest, requestedBy string) (*BatchResponse, error)
	GrantRecalculation(ctx context.Context, batchID string, grantedBy string) (*BatchResponse, error)
	RecalculateBatch(ctx context.Context, batchID string, req *RecalculateBatchRequest, recalculatedBy string) (*BatchResponse, error)
}
