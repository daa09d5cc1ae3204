package deduction

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/talentpay/payroll-backend-go/internal/domain/deduction"
)

var (
	halfDay = decimal.NewFromFloat(0.5)
	fullDay = decimal.NewFromInt(1)
)

// Outcome is the result of one deduction stream. Days holds day-equivalents
// to be priced by the payroll builder; Money holds amounts that bypass the
// per-day conversion entirely.
type Outcome struct {
	Days  decimal.Decimal
	Money decimal.Decimal
}

func (o Outcome) Add(other Outcome) Outcome {
	return Outcome{
		Days:  o.Days.Add(other.Days),
		Money: o.Money.Add(other.Money),
	}
}

// Breakdown reports each stream separately so callers can surface where a
// deduction came from.
type Breakdown struct {
	Attendance          Outcome
	Permission          Outcome
	EarlyOut            Outcome
	EligibleLateIns     int
	EligibleEarlyOuts   int
	EligiblePermissions int
	EarlyOutTiered      bool
}

// Total collapses the breakdown into a single outcome.
func (b Breakdown) Total() Outcome {
	return b.Attendance.Add(b.Permission).Add(b.EarlyOut)
}

// Engine holds no state; it converts monthly event tallies into deduction
// outcomes using the resolved configs.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// CountEligible counts events whose duration meets the configured minimum.
func CountEligible(events []deduction.EventDuration, minimumMinutes int) int {
	count := 0
	for _, e := range events {
		if e.DurationMinutes >= minimumMinutes {
			count++
		}
	}
	return count
}

// ComputeThreshold converts an eligible event count into deduction units.
//
// In floor mode only complete multiples of the threshold count; the
// remainder carries no deduction. In proportional mode the raw ratio is
// converted without truncation, so 3 events against a threshold of 2 yield
// 1.5 units.
func (e *Engine) ComputeThreshold(cfg *deduction.RuleConfig, eligibleCount int) Outcome {
	if cfg == nil || cfg.CountThreshold < 1 || eligibleCount <= 0 {
		return Outcome{}
	}

	count := decimal.NewFromInt(int64(eligibleCount))
	threshold := decimal.NewFromInt(int64(cfg.CountThreshold))

	var units decimal.Decimal
	switch cfg.CalculationMode {
	case deduction.ModeProportional:
		units = count.DivRound(threshold, 8)
	default:
		units = count.Div(threshold).Floor()
	}

	switch cfg.DeductionType {
	case deduction.DeductionHalfDay:
		return Outcome{Days: units.Mul(halfDay)}
	case deduction.DeductionFullDay:
		return Outcome{Days: units.Mul(fullDay)}
	case deduction.DeductionCustomAmount:
		if cfg.CustomAmount == nil {
			return Outcome{}
		}
		return Outcome{Money: units.Mul(*cfg.CustomAmount).Round(2)}
	}
	return Outcome{}
}

// LookupRange returns the tier whose half-open [min, max) interval contains
// the duration, or nil when the duration falls outside every range. Durations
// beyond the last range's maximum deliberately match nothing.
func LookupRange(ranges []deduction.EarlyOutRange, durationMinutes int) *deduction.EarlyOutRange {
	for i := range ranges {
		if ranges[i].Contains(durationMinutes) {
			return &ranges[i]
		}
	}
	return nil
}

// ComputeEarlyOut prices early-out events against the tier table. Events at
// or under the allowed grace, or under the settings-level minimum, are free.
func (e *Engine) ComputeEarlyOut(settings *deduction.EarlyOutSettings, events []deduction.EventDuration) (Outcome, int) {
	if settings == nil || !settings.Enabled {
		return Outcome{}, 0
	}

	var out Outcome
	eligible := 0
	for _, ev := range events {
		if ev.DurationMinutes <= settings.AllowedDurationMinutes {
			continue
		}
		if ev.DurationMinutes < settings.MinimumDurationMinutes {
			continue
		}
		eligible++
		tier := LookupRange(settings.Ranges, ev.DurationMinutes)
		if tier == nil {
			continue
		}
		switch tier.DeductionType {
		case deduction.DeductionHalfDay:
			out.Days = out.Days.Add(halfDay)
		case deduction.DeductionFullDay:
			out.Days = out.Days.Add(fullDay)
		case deduction.DeductionCustomAmount:
			if tier.Amount != nil {
				out.Money = out.Money.Add(*tier.Amount)
			}
		}
	}
	out.Money = out.Money.Round(2)
	return out, eligible
}

// Evaluate runs the full engine for one employee month. When the early-out
// tier model is enabled, early-out events are excluded from the combined
// attendance tally and priced per tier instead; the two models never apply
// to the same event.
func (e *Engine) Evaluate(tally *deduction.MonthlyTally, attendanceCfg, permissionCfg *deduction.RuleConfig, earlyOut *deduction.EarlyOutSettings) Breakdown {
	var b Breakdown
	b.EarlyOutTiered = earlyOut != nil && earlyOut.Enabled

	if attendanceCfg != nil {
		lateIns := CountEligible(tally.LateIns, attendanceCfg.MinimumDurationMinutes)
		b.EligibleLateIns = lateIns
		combined := lateIns
		if !b.EarlyOutTiered {
			earlyOuts := CountEligible(tally.EarlyOuts, attendanceCfg.MinimumDurationMinutes)
			b.EligibleEarlyOuts = earlyOuts
			combined += earlyOuts
		}
		b.Attendance = e.ComputeThreshold(attendanceCfg, combined)
	}

	if permissionCfg != nil {
		perms := CountEligible(tally.Permissions, permissionCfg.MinimumDurationMinutes)
		b.EligiblePermissions = perms
		b.Permission = e.ComputeThreshold(permissionCfg, perms)
	}

	if b.EarlyOutTiered {
		b.EarlyOut, b.EligibleEarlyOuts = e.ComputeEarlyOut(earlyOut, tally.EarlyOuts)
	}

	return b
}

// NormalizeRanges sorts tiers by lower bound and rejects malformed or
// overlapping entries.
func NormalizeRanges(ranges []deduction.EarlyOutRange) ([]deduction.EarlyOutRange, error) {
	normalized := make([]deduction.EarlyOutRange, len(ranges))
	copy(normalized, ranges)
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].MinMinutes < normalized[j].MinMinutes
	})
	for i, r := range normalized {
		if r.MinMinutes < 0 || r.MaxMinutes <= r.MinMinutes {
			return nil, deduction.ErrInvalidRange
		}
		if i > 0 && r.MinMinutes < normalized[i-1].MaxMinutes {
			return nil, deduction.ErrOverlappingRanges
		}
	}
	return normalized, nil
}
