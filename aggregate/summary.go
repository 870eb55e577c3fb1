/*
Package aggregate folds per-record compliance analyses into cross-record
summaries with risk and trend metrics.

PURPOSE:
  One RecordAnalysis answers "is this payslip compliant". This package
  answers the questions an auditor asks across a stack of them: how much is
  owed in total, which months are affected, which violation kinds dominate,
  and how exposed the employer is overall.

KEY CONCEPTS IN THIS FILE (summary.go):
  - Summary: The cross-record rollup (totals, breakdowns, compliance rate)
  - RiskLevel: Coarse exposure classification derived from the compliance rate
  - RiskThresholds: The configurable rate cutoffs behind the classification
  - Aggregator: Stateless folder; Compute builds a Summary, Merge combines two

DESIGN PRINCIPLES:
  1. Determinism: Folding is input-order dependent only where the contract
     says so (first-seen period order); everything else is order-free sums
  2. Associativity: Compute(all) equals Merge(Compute(half1), Compute(half2)),
     so callers can aggregate shards and combine
  3. Failures stay out: only successful analyses enter the fold; failure
     counts ride along separately so the compliance rate is never skewed
  4. Exact arithmetic: decimal sums throughout, no floating point

USAGE:
  agg := aggregate.New(aggregate.DefaultRiskThresholds())
  summary := agg.ComputeWithFailures(analyses, failures)
  fmt.Println(summary.TotalOwed, summary.RiskLevel)

SEE ALSO:
  - stats.go: Descriptive statistics over the violating subset
  - trend.go: Per-period owed series and its direction
*/
package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/compliance"
)

// =============================================================================
// RISK CLASSIFICATION
// =============================================================================

// RiskLevel is the coarse exposure classification of an aggregated batch.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskThresholds maps a compliance rate to a RiskLevel. The cutoffs are
// policy, not law; the defaults are a starting point for audit triage and
// callers are expected to tune them.
type RiskThresholds struct {
	// Low is the compliance rate at or above which exposure is low.
	Low decimal.Decimal
	// Medium is the rate at or above which exposure is medium.
	Medium decimal.Decimal
	// High is the rate at or above which exposure is high. Below it,
	// exposure is critical.
	High decimal.Decimal
}

func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{
		Low:    decimal.RequireFromString("0.90"),
		Medium: decimal.RequireFromString("0.70"),
		High:   decimal.RequireFromString("0.50"),
	}
}

// Classify maps a compliance rate (fraction in [0,1]) to a risk level.
func (t RiskThresholds) Classify(rate decimal.Decimal) RiskLevel {
	switch {
	case rate.GreaterThanOrEqual(t.Low):
		return RiskLow
	case rate.GreaterThanOrEqual(t.Medium):
		return RiskMedium
	case rate.GreaterThanOrEqual(t.High):
		return RiskHigh
	default:
		return RiskCritical
	}
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the cross-record aggregation result. Built once per Compute or
// Merge call and never mutated afterward; re-aggregating means a fresh call.
type Summary struct {
	// RecordCount is the number of successfully analyzed records.
	RecordCount int
	// CompliantCount is how many of those had no violations.
	CompliantCount int
	// FailureCount is the number of record-scoped failures excluded from the
	// fold. Reported separately so ComplianceRate reflects analyzed records
	// only.
	FailureCount int

	// TotalOwed is the sum of owed amounts across all analyses.
	TotalOwed decimal.Decimal
	// ViolationTotalsByKind sums owed amounts per violation kind.
	ViolationTotalsByKind map[compliance.Kind]decimal.Decimal
	// ViolationCountsByKind counts violations per kind.
	ViolationCountsByKind map[compliance.Kind]int

	// PeriodsWithViolations lists the affected periods ("YYYY-MM") in
	// first-seen order.
	PeriodsWithViolations []string

	// ComplianceRate is CompliantCount / RecordCount rounded to four places,
	// zero when no records were analyzed.
	ComplianceRate decimal.Decimal
	// RiskLevel classifies ComplianceRate through the aggregator thresholds.
	RiskLevel RiskLevel
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator folds analyses into Summaries. Stateless apart from the risk
// thresholds, so one instance is safely shared.
type Aggregator struct {
	thresholds RiskThresholds
}

func New(thresholds RiskThresholds) *Aggregator {
	return &Aggregator{thresholds: thresholds}
}

// Compute folds analyses in input order into a Summary.
func (a *Aggregator) Compute(analyses []compliance.RecordAnalysis) Summary {
	return a.ComputeWithFailures(analyses, nil)
}

// ComputeWithFailures folds the successful analyses and carries the failure
// count alongside. Failures contribute nothing to totals or the compliance
// rate.
func (a *Aggregator) ComputeWithFailures(analyses []compliance.RecordAnalysis, failures []compliance.BatchFailure) Summary {
	s := Summary{
		FailureCount:          len(failures),
		TotalOwed:             decimal.Zero,
		ViolationTotalsByKind: make(map[compliance.Kind]decimal.Decimal),
		ViolationCountsByKind: make(map[compliance.Kind]int),
	}

	seen := make(map[string]bool)
	for _, an := range analyses {
		s.RecordCount++
		if an.Compliant {
			s.CompliantCount++
			continue
		}

		s.TotalOwed = s.TotalOwed.Add(an.TotalOwed)
		for _, v := range an.Violations {
			s.ViolationTotalsByKind[v.Kind] = s.ViolationTotalsByKind[v.Kind].Add(v.AmountOwed)
			s.ViolationCountsByKind[v.Kind]++
		}

		if period := an.Record.PeriodKey(); !seen[period] {
			seen[period] = true
			s.PeriodsWithViolations = append(s.PeriodsWithViolations, period)
		}
	}

	a.finalize(&s)
	return s
}

// Merge combines two Summaries into one. Counts and totals sum, kind maps
// union, period lists concatenate with duplicates dropped (x's order wins),
// and the rate and risk level are re-derived from the merged counts. Merging
// the halves of a batch equals computing the whole.
func (a *Aggregator) Merge(x, y Summary) Summary {
	out := Summary{
		RecordCount:           x.RecordCount + y.RecordCount,
		CompliantCount:        x.CompliantCount + y.CompliantCount,
		FailureCount:          x.FailureCount + y.FailureCount,
		TotalOwed:             x.TotalOwed.Add(y.TotalOwed),
		ViolationTotalsByKind: make(map[compliance.Kind]decimal.Decimal, len(x.ViolationTotalsByKind)+len(y.ViolationTotalsByKind)),
		ViolationCountsByKind: make(map[compliance.Kind]int, len(x.ViolationCountsByKind)+len(y.ViolationCountsByKind)),
	}

	for kind, owed := range x.ViolationTotalsByKind {
		out.ViolationTotalsByKind[kind] = owed
	}
	for kind, owed := range y.ViolationTotalsByKind {
		out.ViolationTotalsByKind[kind] = out.ViolationTotalsByKind[kind].Add(owed)
	}
	for kind, n := range x.ViolationCountsByKind {
		out.ViolationCountsByKind[kind] = n
	}
	for kind, n := range y.ViolationCountsByKind {
		out.ViolationCountsByKind[kind] += n
	}

	seen := make(map[string]bool, len(x.PeriodsWithViolations))
	for _, period := range x.PeriodsWithViolations {
		seen[period] = true
		out.PeriodsWithViolations = append(out.PeriodsWithViolations, period)
	}
	for _, period := range y.PeriodsWithViolations {
		if !seen[period] {
			seen[period] = true
			out.PeriodsWithViolations = append(out.PeriodsWithViolations, period)
		}
	}

	a.finalize(&out)
	return out
}

// finalize derives the rate and risk from the accumulated counts.
func (a *Aggregator) finalize(s *Summary) {
	if s.RecordCount == 0 {
		s.ComplianceRate = decimal.Zero
	} else {
		s.ComplianceRate = decimal.NewFromInt(int64(s.CompliantCount)).
			Div(decimal.NewFromInt(int64(s.RecordCount))).Round(4)
	}
	s.RiskLevel = a.thresholds.Classify(s.ComplianceRate)
}
