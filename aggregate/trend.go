package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/compliance"
)

// =============================================================================
// TREND - direction of the per-period owed series
// =============================================================================

// Direction classifies how the owed-per-period series is moving.
type Direction string

const (
	TrendIncreasing Direction = "increasing"
	TrendDecreasing Direction = "decreasing"
	TrendStable     Direction = "stable"
)

// TrendOptions tunes the sliding-window heuristic. The defaults are a
// starting point, not a contract; the direction call is triage, not evidence.
type TrendOptions struct {
	// Window is how many of the most recent periods the direction call looks
	// at. Values below 2 fall back to the default.
	Window int
	// Threshold is the relative change (against the window's first period)
	// under which the series counts as stable.
	Threshold decimal.Decimal
}

func DefaultTrendOptions() TrendOptions {
	return TrendOptions{
		Window:    3,
		Threshold: decimal.RequireFromString("0.05"),
	}
}

// PeriodTotal is one point of the per-period series.
type PeriodTotal struct {
	Period  string
	Owed    decimal.Decimal
	Records int
}

// Trend is the per-period owed series in chronological order plus the
// direction read off its tail window.
type Trend struct {
	Direction Direction
	Periods   []PeriodTotal
}

// ComputeTrend groups owed amounts by period, orders the series
// chronologically, and classifies the tail window as increasing, decreasing
// or stable. Fewer than two periods is always stable.
func ComputeTrend(analyses []compliance.RecordAnalysis, opts TrendOptions) Trend {
	if opts.Window < 2 {
		opts.Window = DefaultTrendOptions().Window
	}
	if opts.Threshold.IsZero() {
		opts.Threshold = DefaultTrendOptions().Threshold
	}

	totals := make(map[string]*PeriodTotal)
	for _, an := range analyses {
		period := an.Record.PeriodKey()
		pt, ok := totals[period]
		if !ok {
			pt = &PeriodTotal{Period: period, Owed: decimal.Zero}
			totals[period] = pt
		}
		pt.Owed = pt.Owed.Add(an.TotalOwed)
		pt.Records++
	}

	series := make([]PeriodTotal, 0, len(totals))
	for _, pt := range totals {
		series = append(series, *pt)
	}
	// "YYYY-MM" keys sort lexicographically in chronological order.
	sort.Slice(series, func(i, j int) bool { return series[i].Period < series[j].Period })

	return Trend{
		Direction: classify(series, opts),
		Periods:   series,
	}
}

func classify(series []PeriodTotal, opts TrendOptions) Direction {
	if len(series) < 2 {
		return TrendStable
	}

	window := series
	if len(series) > opts.Window {
		window = series[len(series)-opts.Window:]
	}

	first := window[0].Owed
	last := window[len(window)-1].Owed
	delta := last.Sub(first)

	if first.IsZero() {
		if last.IsPositive() {
			return TrendIncreasing
		}
		return TrendStable
	}
	if delta.Abs().Div(first).LessThanOrEqual(opts.Threshold) {
		return TrendStable
	}
	if delta.IsPositive() {
		return TrendIncreasing
	}
	return TrendDecreasing
}
