package payroll

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpay/payroll-backend-go/internal/domain/payroll"
)

// fakeBatchRepo stubs just the batch lookup and CAS write; everything else
// panics through the embedded nil interface if touched.
type fakeBatchRepo struct {
	payroll.Repository
	batch  *payroll.PayrollBatch
	casErr error

	casCalls int
}

func (f *fakeBatchRepo) GetBatchByID(ctx context.Context, id string) (*payroll.PayrollBatch, error) {
	if f.batch == nil || f.batch.ID != id {
		return nil, payroll.ErrBatchNotFound
	}
	copied := *f.batch
	return &copied, nil
}

func (f *fakeBatchRepo) UpdateBatchCAS(ctx context.Context, batch *payroll.PayrollBatch, expected payroll.BatchStatus) error {
	f.casCalls++
	if f.casErr != nil {
		return f.casErr
	}
	f.batch = batch
	return nil
}

func completeValidatedBatch(status payroll.BatchStatus) *payroll.PayrollBatch {
	return &payroll.PayrollBatch{
		ID:               "batch-1",
		Status:           status,
		ValidationStatus: payroll.ValidationStatus{AllEmployeesCalculated: true},
	}
}

func TestTransitionBatch_SurfacesRacedUpdate(t *testing.T) {
	repo := &fakeBatchRepo{
		batch:  completeValidatedBatch(payroll.BatchStatusPending),
		casErr: payroll.ErrConcurrentModification,
	}
	svc := &PayrollServiceImpl{payrollRepo: repo}

	_, err := svc.TransitionBatch(context.Background(), "batch-1",
		&payroll.TransitionBatchRequest{Status: string(payroll.BatchStatusApproved)}, "manager")

	assert.ErrorIs(t, err, payroll.ErrConcurrentModification)
	assert.Equal(t, 1, repo.casCalls, "the stale write must reach the repository exactly once")
}

func TestTransitionBatch_ForwardEdgeWritesWithExpectedStatus(t *testing.T) {
	repo := &fakeBatchRepo{batch: completeValidatedBatch(payroll.BatchStatusPending)}
	svc := &PayrollServiceImpl{payrollRepo: repo}

	resp, err := svc.TransitionBatch(context.Background(), "batch-1",
		&payroll.TransitionBatchRequest{Status: string(payroll.BatchStatusApproved)}, "manager")
	require.NoError(t, err)

	assert.Equal(t, string(payroll.BatchStatusApproved), resp.Status)
	require.Len(t, repo.batch.StatusHistory, 1)
	assert.Equal(t, "manager", repo.batch.StatusHistory[0].ChangedBy)
}

func TestTransitionBatch_RejectsIncompleteApproval(t *testing.T) {
	batch := completeValidatedBatch(payroll.BatchStatusPending)
	batch.ValidationStatus = payroll.ValidationStatus{
		AllEmployeesCalculated: false,
		MissingEmployees:       []string{"emp-7"},
	}
	repo := &fakeBatchRepo{batch: batch}
	svc := &PayrollServiceImpl{payrollRepo: repo}

	_, err := svc.TransitionBatch(context.Background(), "batch-1",
		&payroll.TransitionBatchRequest{Status: string(payroll.BatchStatusApproved)}, "manager")

	assert.ErrorIs(t, err, payroll.ErrIncompleteBatch)
	assert.Zero(t, repo.casCalls, "nothing may be written for an incomplete batch")
}
