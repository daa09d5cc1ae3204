package deduction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpay/payroll-backend-go/internal/domain/deduction"
)

func events(durations ...int) []deduction.EventDuration {
	out := make([]deduction.EventDuration, 0, len(durations))
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, d := range durations {
		out = append(out, deduction.EventDuration{
			Date:            day.AddDate(0, 0, i),
			DurationMinutes: d,
		})
	}
	return out
}

func amountPtr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func thresholdConfig(threshold int, dt deduction.DeductionType, mode deduction.CalculationMode) *deduction.RuleConfig {
	return &deduction.RuleConfig{
		Scope:           deduction.ScopeAttendance,
		CountThreshold:  threshold,
		DeductionType:   dt,
		CalculationMode: mode,
	}
}

func TestComputeThreshold_FloorMode(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name     string
		count    int
		cfg      *deduction.RuleConfig
		wantDays string
	}{
		{
			name:     "seven events against threshold three yields two half days",
			count:    7,
			cfg:      thresholdConfig(3, deduction.DeductionHalfDay, deduction.ModeFloor),
			wantDays: "1",
		},
		{
			name:     "remainder below threshold deducts nothing",
			count:    2,
			cfg:      thresholdConfig(3, deduction.DeductionFullDay, deduction.ModeFloor),
			wantDays: "0",
		},
		{
			name:     "exact multiple counts fully",
			count:    6,
			cfg:      thresholdConfig(3, deduction.DeductionFullDay, deduction.ModeFloor),
			wantDays: "2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ComputeThreshold(tt.cfg, tt.count)
			assert.True(t, got.Days.Equal(decimal.RequireFromString(tt.wantDays)),
				"days = %s, want %s", got.Days, tt.wantDays)
			assert.True(t, got.Money.IsZero())
		})
	}
}

func TestComputeThreshold_ProportionalMode(t *testing.T) {
	engine := NewEngine()

	cfg := thresholdConfig(2, deduction.DeductionHalfDay, deduction.ModeProportional)
	got := engine.ComputeThreshold(cfg, 3)

	// 3/2 = 1.5 units of half a day each
	assert.True(t, got.Days.Equal(decimal.RequireFromString("0.75")),
		"days = %s, want 0.75", got.Days)
}

func TestComputeThreshold_CustomAmount(t *testing.T) {
	engine := NewEngine()

	t.Run("floor mode multiplies whole units by the amount", func(t *testing.T) {
		cfg := thresholdConfig(2, deduction.DeductionCustomAmount, deduction.ModeFloor)
		cfg.CustomAmount = amountPtr("100")

		got := engine.ComputeThreshold(cfg, 5)

		assert.True(t, got.Days.IsZero(), "custom amounts never produce day units")
		assert.True(t, got.Money.Equal(decimal.RequireFromString("200")),
			"money = %s, want 200", got.Money)
	})

	t.Run("proportional mode keeps the fractional unit", func(t *testing.T) {
		cfg := thresholdConfig(2, deduction.DeductionCustomAmount, deduction.ModeProportional)
		cfg.CustomAmount = amountPtr("100")

		got := engine.ComputeThreshold(cfg, 5)

		assert.True(t, got.Money.Equal(decimal.RequireFromString("250")),
			"money = %s, want 250", got.Money)
	})
}

func TestComputeThreshold_ZeroCount(t *testing.T) {
	engine := NewEngine()
	cfg := thresholdConfig(3, deduction.DeductionFullDay, deduction.ModeProportional)

	got := engine.ComputeThreshold(cfg, 0)

	assert.True(t, got.Days.IsZero())
	assert.True(t, got.Money.IsZero())
}

func TestCountEligible_MinimumDurationFilter(t *testing.T) {
	evts := events(5, 10, 15, 30)

	assert.Equal(t, 4, CountEligible(evts, 0))
	assert.Equal(t, 3, CountEligible(evts, 10))
	assert.Equal(t, 1, CountEligible(evts, 16))
}

func TestLookupRange_HalfOpenIntervals(t *testing.T) {
	ranges := []deduction.EarlyOutRange{
		{MinMinutes: 15, MaxMinutes: 30, DeductionType: deduction.DeductionHalfDay},
		{MinMinutes: 30, MaxMinutes: 60, DeductionType: deduction.DeductionFullDay},
	}

	t.Run("lower bound is inclusive", func(t *testing.T) {
		got := LookupRange(ranges, 15)
		require.NotNil(t, got)
		assert.Equal(t, deduction.DeductionHalfDay, got.DeductionType)
	})

	t.Run("upper bound belongs to the next tier", func(t *testing.T) {
		got := LookupRange(ranges, 30)
		require.NotNil(t, got)
		assert.Equal(t, deduction.DeductionFullDay, got.DeductionType)
	})

	t.Run("below the first tier matches nothing", func(t *testing.T) {
		assert.Nil(t, LookupRange(ranges, 14))
	})

	t.Run("beyond the last tier matches nothing", func(t *testing.T) {
		assert.Nil(t, LookupRange(ranges, 60))
		assert.Nil(t, LookupRange(ranges, 500))
	})
}

func TestComputeEarlyOut(t *testing.T) {
	engine := NewEngine()

	settings := &deduction.EarlyOutSettings{
		Enabled:                true,
		AllowedDurationMinutes: 10,
		MinimumDurationMinutes: 15,
		Ranges: []deduction.EarlyOutRange{
			{MinMinutes: 15, MaxMinutes: 30, DeductionType: deduction.DeductionHalfDay},
			{MinMinutes: 30, MaxMinutes: 60, DeductionType: deduction.DeductionCustomAmount, Amount: amountPtr("50")},
		},
	}

	t.Run("grace and minimum filter events silently", func(t *testing.T) {
		out, eligible := engine.ComputeEarlyOut(settings, events(5, 10, 12))
		assert.Equal(t, 0, eligible)
		assert.True(t, out.Days.IsZero())
		assert.True(t, out.Money.IsZero())
	})

	t.Run("tiers accumulate days and money independently", func(t *testing.T) {
		out, eligible := engine.ComputeEarlyOut(settings, events(20, 25, 45))
		assert.Equal(t, 3, eligible)
		assert.True(t, out.Days.Equal(decimal.RequireFromString("1")),
			"days = %s, want 1", out.Days)
		assert.True(t, out.Money.Equal(decimal.RequireFromString("50")),
			"money = %s, want 50", out.Money)
	})

	t.Run("duration past the last tier deducts nothing", func(t *testing.T) {
		out, eligible := engine.ComputeEarlyOut(settings, events(90))
		assert.Equal(t, 1, eligible)
		assert.True(t, out.Days.IsZero())
		assert.True(t, out.Money.IsZero())
	})

	t.Run("disabled settings short-circuit", func(t *testing.T) {
		disabled := *settings
		disabled.Enabled = false
		out, eligible := engine.ComputeEarlyOut(&disabled, events(20))
		assert.Equal(t, 0, eligible)
		assert.True(t, out.Days.IsZero())
	})
}

func TestEvaluate_MutualExclusion(t *testing.T) {
	engine := NewEngine()

	tally := &deduction.MonthlyTally{
		EmployeeID: "emp-1",
		Month:      "2026-03",
		LateIns:    events(20, 20, 20),
		EarlyOuts:  events(20, 20, 20),
	}
	cfg := thresholdConfig(3, deduction.DeductionHalfDay, deduction.ModeFloor)

	t.Run("tiers disabled folds early-outs into the combined count", func(t *testing.T) {
		b := engine.Evaluate(tally, cfg, nil, nil)

		assert.False(t, b.EarlyOutTiered)
		assert.Equal(t, 3, b.EligibleLateIns)
		assert.Equal(t, 3, b.EligibleEarlyOuts)
		// 6 combined events / 3 = 2 half-day units
		assert.True(t, b.Attendance.Days.Equal(decimal.RequireFromString("1")),
			"days = %s, want 1", b.Attendance.Days)
		assert.True(t, b.EarlyOut.Days.IsZero())
	})

	t.Run("tiers enabled price early-outs separately", func(t *testing.T) {
		settings := &deduction.EarlyOutSettings{
			Enabled:                true,
			AllowedDurationMinutes: 0,
			MinimumDurationMinutes: 0,
			Ranges: []deduction.EarlyOutRange{
				{MinMinutes: 0, MaxMinutes: 60, DeductionType: deduction.DeductionHalfDay},
			},
		}

		b := engine.Evaluate(tally, cfg, nil, settings)

		assert.True(t, b.EarlyOutTiered)
		// only the 3 late-ins feed the threshold: exactly one unit
		assert.True(t, b.Attendance.Days.Equal(decimal.RequireFromString("0.5")),
			"attendance days = %s, want 0.5", b.Attendance.Days)
		assert.True(t, b.EarlyOut.Days.Equal(decimal.RequireFromString("1.5")),
			"early-out days = %s, want 1.5", b.EarlyOut.Days)
	})
}

func TestEvaluate_PermissionStream(t *testing.T) {
	engine := NewEngine()

	tally := &deduction.MonthlyTally{
		EmployeeID:  "emp-1",
		Month:       "2026-03",
		Permissions: events(30, 30, 30, 30),
	}
	permCfg := &deduction.RuleConfig{
		Scope:           deduction.ScopePermission,
		CountThreshold:  2,
		DeductionType:   deduction.DeductionFullDay,
		CalculationMode: deduction.ModeFloor,
	}

	b := engine.Evaluate(tally, nil, permCfg, nil)

	assert.Equal(t, 4, b.EligiblePermissions)
	assert.True(t, b.Permission.Days.Equal(decimal.RequireFromString("2")),
		"days = %s, want 2", b.Permission.Days)
	assert.True(t, b.Attendance.Days.IsZero())
}

func TestNormalizeRanges(t *testing.T) {
	t.Run("sorts by lower bound", func(t *testing.T) {
		got, err := NormalizeRanges([]deduction.EarlyOutRange{
			{MinMinutes: 30, MaxMinutes: 60, DeductionType: deduction.DeductionFullDay},
			{MinMinutes: 15, MaxMinutes: 30, DeductionType: deduction.DeductionHalfDay},
		})
		require.NoError(t, err)
		assert.Equal(t, 15, got[0].MinMinutes)
		assert.Equal(t, 30, got[1].MinMinutes)
	})

	t.Run("rejects inverted bounds", func(t *testing.T) {
		_, err := NormalizeRanges([]deduction.EarlyOutRange{
			{MinMinutes: 30, MaxMinutes: 30, DeductionType: deduction.DeductionHalfDay},
		})
		assert.ErrorIs(t, err, deduction.ErrInvalidRange)
	})

	t.Run("rejects overlapping tiers", func(t *testing.T) {
		_, err := NormalizeRanges([]deduction.EarlyOutRange{
			{MinMinutes: 15, MaxMinutes: 31, DeductionType: deduction.DeductionHalfDay},
			{MinMinutes: 30, MaxMinutes: 60, DeductionType: deduction.DeductionFullDay},
		})
		assert.ErrorIs(t, err, deduction.ErrOverlappingRanges)
	})

	t.Run("adjacent tiers are allowed", func(t *testing.T) {
		_, err := NormalizeRanges([]deduction.EarlyOutRange{
			{MinMinutes: 15, MaxMinutes: 30, DeductionType: deduction.DeductionHalfDay},
			{MinMinutes: 30, MaxMinutes: 60, DeductionType: deduction.DeductionFullDay},
		})
		assert.NoError(t, err)
	})
}
