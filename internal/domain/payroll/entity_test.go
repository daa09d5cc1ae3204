package payroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frozenBatch() *PayrollBatch {
	return &PayrollBatch{
		ID:               "batch-1",
		Status:           BatchStatusFreeze,
		ValidationStatus: ValidationStatus{AllEmployeesCalculated: true},
	}
}

func TestTransition_ForwardPath(t *testing.T) {
	b := &PayrollBatch{
		ID:               "batch-1",
		Status:           BatchStatusPending,
		ValidationStatus: ValidationStatus{AllEmployeesCalculated: true},
	}
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, b.Transition(BatchStatusApproved, "manager", now, ""))
	require.NoError(t, b.Transition(BatchStatusFreeze, "manager", now.Add(time.Hour), ""))
	require.NoError(t, b.Transition(BatchStatusComplete, "finance", now.Add(2*time.Hour), "paid out"))

	assert.Equal(t, BatchStatusComplete, b.Status)
	require.Len(t, b.StatusHistory, 3)
	assert.Equal(t, BatchStatusPending, b.StatusHistory[0].From)
	assert.Equal(t, BatchStatusApproved, b.StatusHistory[0].To)
	assert.Equal(t, "finance", b.StatusHistory[2].ChangedBy)
	assert.Equal(t, "paid out", b.StatusHistory[2].Note)
}

func TestTransition_BlocksApprovalOfIncompleteBatch(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	b := &PayrollBatch{
		ID:     "batch-1",
		Status: BatchStatusPending,
		ValidationStatus: ValidationStatus{
			AllEmployeesCalculated: false,
			MissingEmployees:       []string{"emp-7"},
		},
	}

	err := b.Transition(BatchStatusApproved, "manager", now, "")
	assert.ErrorIs(t, err, ErrIncompleteBatch)
	assert.Equal(t, BatchStatusPending, b.Status)
	assert.Empty(t, b.StatusHistory)

	// a successful recalculation clears the block
	b.ValidationStatus = ValidationStatus{AllEmployeesCalculated: true}
	require.NoError(t, b.Transition(BatchStatusApproved, "manager", now, ""))
}

func TestTransition_RejectsSkippedStates(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		from BatchStatus
		to   BatchStatus
	}{
		{"pending cannot jump to freeze", BatchStatusPending, BatchStatusFreeze},
		{"pending cannot jump to complete", BatchStatusPending, BatchStatusComplete},
		{"approved cannot jump to complete", BatchStatusApproved, BatchStatusComplete},
		{"approved cannot go back to pending", BatchStatusApproved, BatchStatusPending},
		{"complete is terminal", BatchStatusComplete, BatchStatusFreeze},
		{"complete cannot reopen", BatchStatusComplete, BatchStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &PayrollBatch{ID: "batch-1", Status: tt.from}
			err := b.Transition(tt.to, "someone", now, "")
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.from, b.Status, "status must not move on a rejected transition")
			assert.Empty(t, b.StatusHistory)
		})
	}
}

func TestTransition_FreezeToPendingRequiresGrant(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("no permission at all", func(t *testing.T) {
		b := frozenBatch()
		err := b.Transition(BatchStatusPending, "clerk", now, "")
		assert.ErrorIs(t, err, ErrRecalculationNotAuthorized)
	})

	t.Run("requested but not granted", func(t *testing.T) {
		b := frozenBatch()
		require.NoError(t, b.RequestRecalculation("clerk", "missed overtime", now))
		err := b.Transition(BatchStatusPending, "clerk", now, "")
		assert.ErrorIs(t, err, ErrRecalculationNotAuthorized)
	})

	t.Run("valid grant unlocks the backward edge and is consumed", func(t *testing.T) {
		b := frozenBatch()
		require.NoError(t, b.RequestRecalculation("clerk", "missed overtime", now))
		require.NoError(t, b.GrantRecalculation("manager", now, 24*time.Hour))

		require.NoError(t, b.Transition(BatchStatusPending, "clerk", now.Add(time.Hour), ""))
		assert.Equal(t, BatchStatusPending, b.Status)
		assert.False(t, b.RecalculationPermission.Granted, "grant must be single-use")

		// moving forward and back again needs a fresh grant
		require.NoError(t, b.Transition(BatchStatusApproved, "manager", now, ""))
		require.NoError(t, b.Transition(BatchStatusFreeze, "manager", now, ""))
		err := b.Transition(BatchStatusPending, "clerk", now, "")
		assert.ErrorIs(t, err, ErrRecalculationNotAuthorized)
	})

	t.Run("expired grant stops validating", func(t *testing.T) {
		b := frozenBatch()
		require.NoError(t, b.RequestRecalculation("clerk", "missed overtime", now))
		require.NoError(t, b.GrantRecalculation("manager", now, time.Hour))

		err := b.Transition(BatchStatusPending, "clerk", now.Add(2*time.Hour), "")
		assert.ErrorIs(t, err, ErrRecalculationNotAuthorized)
	})

	t.Run("grantor cannot consume their own grant", func(t *testing.T) {
		b := frozenBatch()
		require.NoError(t, b.RequestRecalculation("clerk", "missed overtime", now))
		require.NoError(t, b.GrantRecalculation("manager", now, 24*time.Hour))

		err := b.Transition(BatchStatusPending, "manager", now, "")
		assert.ErrorIs(t, err, ErrRecalculationNotAuthorized)
	})
}

func TestGrantRecalculation(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("requires an existing request", func(t *testing.T) {
		b := frozenBatch()
		err := b.GrantRecalculation("manager", now, time.Hour)
		assert.ErrorIs(t, err, ErrNoRecalculationRequest)
	})

	t.Run("requester cannot approve themselves", func(t *testing.T) {
		b := frozenBatch()
		require.NoError(t, b.RequestRecalculation("clerk", "missed overtime", now))
		err := b.GrantRecalculation("clerk", now, time.Hour)
		assert.ErrorIs(t, err, ErrRecalculationNotAuthorized)
	})

	t.Run("sets grant metadata and expiry", func(t *testing.T) {
		b := frozenBatch()
		require.NoError(t, b.RequestRecalculation("clerk", "missed overtime", now))
		require.NoError(t, b.GrantRecalculation("manager", now, 24*time.Hour))

		p := b.RecalculationPermission
		assert.True(t, p.Granted)
		assert.Equal(t, "manager", *p.GrantedBy)
		assert.Equal(t, now.Add(24*time.Hour), *p.ExpiresAt)
		assert.True(t, p.Valid(now.Add(23*time.Hour)))
		assert.False(t, p.Valid(now.Add(24*time.Hour)))
	})
}

func TestRequestRecalculation_OnlyOnFrozenBatches(t *testing.T) {
	for _, status := range []BatchStatus{BatchStatusPending, BatchStatusApproved, BatchStatusComplete} {
		b := &PayrollBatch{ID: "batch-1", Status: status}
		err := b.RequestRecalculation("clerk", "reason", time.Now())
		assert.ErrorIs(t, err, ErrInvalidTransition, "status %s", status)
	}
}

func TestFormatBatchNumber(t *testing.T) {
	assert.Equal(t, "PB-ENG-2026-03-001", FormatBatchNumber("ENG", "2026-03", 1))
	assert.Equal(t, "PB-FIN-2025-12-042", FormatBatchNumber("FIN", "2025-12", 42))
}
