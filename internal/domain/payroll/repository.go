package payroll

import "context"

type Repository interface {
	CreateBatch(ctx context.Context, batch *PayrollBatch) error
	GetBatchByID(ctx context.Context, id string) (*PayrollBatch, error)
	GetBatchByDepartmentMonth(ctx context.Context, departmentID, month string) (*PayrollBatch, error)
	ListBatches(ctx context.Context, filter BatchFilter) ([]PayrollBatch, int64, error)
	// NextBatchSequence reserves the next sequence number for a
	// department-month pair.
	NextBatchSequence(ctx context.Context, departmentID, month string) (int, error)

	// UpdateBatchCAS persists the batch only if its stored status still
	// equals expectedStatus, returning ErrConcurrentModification
	// otherwise. Status history, permission, and recalculation history
	// are written as part of the same row.
	UpdateBatchCAS(ctx context.Context, batch *PayrollBatch, expectedStatus BatchStatus) error

	CreateRecords(ctx context.Context, records []PayrollRecord) error
	ListRecordsByBatch(ctx context.Context, batchID string) ([]PayrollRecord, error)
	GetRecordByID(ctx context.Context, id string) (*PayrollRecord, error)
	DeleteRecordsByBatch(ctx context.Context, batchID string) error
}

type BatchFilter struct {
	DepartmentID *string
	Month        *string
	Status       *BatchStatus
	Page         int
	Limit        int
}
