// Package report assembles finished analyses into a flat, renderable
// structure. Reporters consume engine output as plain data; nothing here
// reaches back into engine internals or mutates what it is given.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/aggregate"
	"github.com/warp/compliance-engine/compliance"
)

// Meta identifies the run that produced a report.
type Meta struct {
	GeneratedAt time.Time
	Tool        string
	Version     string
}

// Report is the flattened, serialization-ready view of one analysis run.
// Decimal fields marshal as quoted strings, keeping cent precision across
// the wire.
type Report struct {
	GeneratedAt string `json:"generated_at"`
	Tool        string `json:"tool,omitempty"`
	Version     string `json:"version,omitempty"`

	RecordCount    int             `json:"record_count"`
	CompliantCount int             `json:"compliant_count"`
	FailureCount   int             `json:"failure_count"`
	TotalOwed      decimal.Decimal `json:"total_owed"`
	ComplianceRate decimal.Decimal `json:"compliance_rate"`
	RiskLevel      string          `json:"risk_level"`

	PeriodsWithViolations []string    `json:"periods_with_violations,omitempty"`
	ViolationsByKind      []KindBlock `json:"violations_by_kind,omitempty"`

	Stats *StatsBlock `json:"stats,omitempty"`
	Trend *TrendBlock `json:"trend,omitempty"`

	Records  []RecordBlock  `json:"records"`
	Failures []FailureBlock `json:"failures,omitempty"`
}

// KindBlock is one row of the per-kind breakdown, ordered by kind name so
// output is deterministic.
type KindBlock struct {
	Kind      string          `json:"kind"`
	Count     int             `json:"count"`
	TotalOwed decimal.Decimal `json:"total_owed"`
}

// RecordBlock is one statement's outcome.
type RecordBlock struct {
	WorkerID   string           `json:"worker_id,omitempty"`
	Period     string           `json:"period"`
	Compliant  bool             `json:"compliant"`
	TotalOwed  decimal.Decimal  `json:"total_owed"`
	Violations []ViolationBlock `json:"violations,omitempty"`
	Notes      []string         `json:"notes,omitempty"`
}

// ViolationBlock is one finding.
type ViolationBlock struct {
	Kind           string          `json:"kind"`
	Severity       string          `json:"severity"`
	Rule           string          `json:"rule"`
	Expected       decimal.Decimal `json:"expected"`
	Actual         decimal.Decimal `json:"actual"`
	AmountOwed     decimal.Decimal `json:"amount_owed"`
	Description    string          `json:"description"`
	Locale         string          `json:"locale"`
	LegalReference string          `json:"legal_reference,omitempty"`
}

// FailureBlock is one record the engine could not analyze.
type FailureBlock struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// StatsBlock mirrors aggregate.Stats.
type StatsBlock struct {
	ViolationCount             int             `json:"violation_count"`
	ViolatingRecords           int             `json:"violating_records"`
	MinOwed                    decimal.Decimal `json:"min_owed"`
	MaxOwed                    decimal.Decimal `json:"max_owed"`
	AverageOwed                decimal.Decimal `json:"average_owed"`
	AverageViolationsPerRecord decimal.Decimal `json:"average_violations_per_record"`
	CountBySeverity            map[string]int  `json:"count_by_severity,omitempty"`
}

// TrendBlock mirrors aggregate.Trend.
type TrendBlock struct {
	Direction string        `json:"direction"`
	Periods   []PeriodBlock `json:"periods"`
}

type PeriodBlock struct {
	Period  string          `json:"period"`
	Owed    decimal.Decimal `json:"owed"`
	Records int             `json:"records"`
}

// Build flattens one run's outputs into a Report.
func Build(
	analyses []compliance.RecordAnalysis,
	failures []compliance.BatchFailure,
	summary aggregate.Summary,
	stats aggregate.Stats,
	trend aggregate.Trend,
	meta Meta,
) Report {
	r := Report{
		GeneratedAt:           meta.GeneratedAt.UTC().Format(time.RFC3339),
		Tool:                  meta.Tool,
		Version:               meta.Version,
		RecordCount:           summary.RecordCount,
		CompliantCount:        summary.CompliantCount,
		FailureCount:          summary.FailureCount,
		TotalOwed:             summary.TotalOwed,
		ComplianceRate:        summary.ComplianceRate,
		RiskLevel:             string(summary.RiskLevel),
		PeriodsWithViolations: summary.PeriodsWithViolations,
		ViolationsByKind:      kindBlocks(summary),
		Stats:                 statsBlock(stats),
		Trend:                 trendBlock(trend),
		Records:               recordBlocks(analyses),
		Failures:              failureBlocks(failures),
	}
	return r
}

func kindBlocks(summary aggregate.Summary) []KindBlock {
	blocks := make([]KindBlock, 0, len(summary.ViolationCountsByKind))
	for kind, count := range summary.ViolationCountsByKind {
		blocks = append(blocks, KindBlock{
			Kind:      string(kind),
			Count:     count,
			TotalOwed: summary.ViolationTotalsByKind[kind],
		})
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Kind < blocks[j].Kind })
	return blocks
}

func recordBlocks(analyses []compliance.RecordAnalysis) []RecordBlock {
	blocks := make([]RecordBlock, 0, len(analyses))
	for _, an := range analyses {
		block := RecordBlock{
			WorkerID:  an.Record.WorkerID,
			Period:    an.Record.PeriodKey(),
			Compliant: an.Compliant,
			TotalOwed: an.TotalOwed,
		}
		for _, v := range an.Violations {
			block.Violations = append(block.Violations, ViolationBlock{
				Kind:           string(v.Kind),
				Severity:       string(v.Severity),
				Rule:           v.Rule,
				Expected:       v.Expected,
				Actual:         v.Actual,
				AmountOwed:     v.AmountOwed,
				Description:    v.Description,
				Locale:         v.Locale,
				LegalReference: v.LegalReference,
			})
		}
		for _, note := range an.Notes {
			block.Notes = append(block.Notes, note.Rule+": "+note.Reason)
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func failureBlocks(failures []compliance.BatchFailure) []FailureBlock {
	blocks := make([]FailureBlock, 0, len(failures))
	for _, f := range failures {
		blocks = append(blocks, FailureBlock{Index: f.Index, Error: f.Err.Error()})
	}
	return blocks
}

func statsBlock(stats aggregate.Stats) *StatsBlock {
	block := &StatsBlock{
		ViolationCount:             stats.ViolationCount,
		ViolatingRecords:           stats.ViolatingRecords,
		MinOwed:                    stats.MinOwed,
		MaxOwed:                    stats.MaxOwed,
		AverageOwed:                stats.AverageOwed,
		AverageViolationsPerRecord: stats.AverageViolationsPerRecord,
	}
	if len(stats.CountBySeverity) > 0 {
		block.CountBySeverity = make(map[string]int, len(stats.CountBySeverity))
		for sev, n := range stats.CountBySeverity {
			block.CountBySeverity[string(sev)] = n
		}
	}
	return block
}

func trendBlock(trend aggregate.Trend) *TrendBlock {
	block := &TrendBlock{Direction: string(trend.Direction)}
	for _, pt := range trend.Periods {
		block.Periods = append(block.Periods, PeriodBlock{
			Period:  pt.Period,
			Owed:    pt.Owed,
			Records: pt.Records,
		})
	}
	return block
}
