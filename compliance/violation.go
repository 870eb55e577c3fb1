package compliance

import (
	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// VIOLATION KINDS - closed tagged-variant set
// =============================================================================

type Kind string

const (
	KindBelowMinimumWage          Kind = "below-minimum-wage"
	KindBelowMonthlyMinimum       Kind = "below-monthly-minimum"
	KindHoursRateMismatch         Kind = "hours-rate-mismatch"
	KindMissingOrUnderpaidPension Kind = "missing-or-underpaid-pension"
	KindUnderpaidEmployerPension  Kind = "underpaid-employer-pension"
	KindUnderpaidOvertime         Kind = "underpaid-overtime"
	KindSocialInsuranceMismatch   Kind = "social-insurance-mismatch"
	KindHealthTaxMismatch         Kind = "health-tax-mismatch"
	KindMissingSeveranceFund      Kind = "missing-severance-fund"
	KindDataQuality               Kind = "data-quality"
)

// =============================================================================
// SEVERITY - ordered: low < medium < high < critical
// =============================================================================

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordering position; unknown severities rank below low.
func (s Severity) Rank() int { return severityRank[s] }

// AtLeast reports whether s is as severe as o or more.
func (s Severity) AtLeast(o Severity) bool { return s.Rank() >= o.Rank() }

// =============================================================================
// VIOLATION - output of one rule firing
// =============================================================================

// Violation is created by a rule and never mutated afterward. Expected and
// Actual give the comparison context; AmountOwed is the shortfall payable to
// the worker (zero for informational findings such as overpayment reports).
type Violation struct {
	Kind           Kind
	Severity       Severity
	Rule           string
	Expected       decimal.Decimal
	Actual         decimal.Decimal
	AmountOwed     decimal.Decimal
	Description    string
	Locale         string
	LegalReference string
}

// EvaluationNote records why a rule contributed nothing for a record, e.g. it
// could not compute from the data present. Non-fatal.
type EvaluationNote struct {
	Rule   string
	Reason string
}

// =============================================================================
// RECORD ANALYSIS - one record's outcome
// =============================================================================

// RecordAnalysis is produced by the Evaluator and never mutated. Violations
// keep rule evaluation order, so repeated evaluation of the same record with
// the same registry yields an identical analysis.
type RecordAnalysis struct {
	Record     WageRecord
	Minimum    law.Minimum
	Violations []Violation
	Notes      []EvaluationNote
	TotalOwed  decimal.Decimal
	Compliant  bool
}

// WorstSeverity returns the highest severity among the violations, or the
// empty severity when the record is compliant.
func (a RecordAnalysis) WorstSeverity() Severity {
	var worst Severity
	for _, v := range a.Violations {
		if v.Severity.Rank() > worst.Rank() {
			worst = v.Severity
		}
	}
	return worst
}

// HasKind reports whether any violation of the given kind is present.
func (a RecordAnalysis) HasKind(kind Kind) bool {
	for _, v := range a.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}
