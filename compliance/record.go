/*
Package compliance provides the core wage-compliance evaluation engine.

PURPOSE:
  This package contains the domain types and algorithms for auditing one pay
  period against the legal minimums in effect on its start date: the wage
  record model, the violation model, the rule contract, the ordered rule
  registry, and the evaluator that ties them together with partial-failure
  batch semantics.

KEY CONCEPTS IN THIS FILE (record.go):
  - WageRecord: one worker's one-period pay data, immutable for the duration
    of an evaluation
  - DeductionKind: typed keys for the deductions mapping
  - Validate: the record-fatal checks (missing mandatory fields, negative
    amounts) applied before any rule runs

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every monetary amount and hour count;
     binary floating point never touches owed-amount arithmetic
  2. Immutability: records, violations and analyses are never mutated after
     creation, so they can be shared without synchronization
  3. Isolation: one record's failure never aborts a batch; failures are
     collected alongside successes

USAGE:
  rec := compliance.WageRecord{
      PeriodStart: law.Date(2024, time.June, 1),
      GrossPay:    decimal.NewFromInt(6000),
      NetPay:      decimal.NewFromInt(5100),
      HoursWorked: decimal.NewFromInt(182),
  }
  analysis, err := evaluator.Evaluate(ctx, rec)

SEE ALSO:
  - violation.go: Violation, RecordAnalysis, severity ordering
  - rule.go: the Rule contract and the Registry
  - evaluator.go: single-record and batch evaluation
  - errors.go: the error taxonomy
*/
package compliance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DEDUCTIONS
// =============================================================================

// DeductionKind identifies one entry in a record's deductions mapping.
// Employer-side contributions (employer pension, severance fund) appear here
// too when the statement shows them, even though they are not withheld from
// the worker's pay.
type DeductionKind string

const (
	DeductionIncomeTax       DeductionKind = "income-tax"
	DeductionEmployeePension DeductionKind = "employee-pension"
	DeductionEmployerPension DeductionKind = "employer-pension"
	DeductionSocialInsurance DeductionKind = "social-insurance"
	DeductionHealthTax       DeductionKind = "health-tax"
	DeductionSeveranceFund   DeductionKind = "severance-fund"
)

// =============================================================================
// WAGE RECORD - One pay period for one worker
// =============================================================================

type WageRecord struct {
	// WorkerID is an opaque caller reference carried through to reports.
	WorkerID string

	// PeriodStart is the first day of the pay period (UTC midnight).
	PeriodStart time.Time

	BasePay       decimal.Decimal
	HoursWorked   decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimePay   decimal.Decimal

	// HourlyRate may be zero; rules derive it from BasePay/HoursWorked.
	HourlyRate decimal.Decimal

	GrossPay decimal.Decimal
	NetPay   decimal.Decimal

	Deductions map[DeductionKind]decimal.Decimal
}

// Deduction returns the amount recorded for a kind, zero when absent.
func (r WageRecord) Deduction(kind DeductionKind) decimal.Decimal {
	return r.Deductions[kind]
}

// HasDeduction reports whether a positive amount is recorded for a kind.
func (r WageRecord) HasDeduction(kind DeductionKind) bool {
	return r.Deductions[kind].IsPositive()
}

// TotalDeductions sums every recorded deduction amount.
func (r WageRecord) TotalDeductions() decimal.Decimal {
	total := decimal.Zero
	for _, v := range r.Deductions {
		total = total.Add(v)
	}
	return total
}

// EffectiveHourlyRate returns the stated hourly rate, or derives it from
// BasePay/HoursWorked. Fails with ErrInsufficientData when no rate is stated
// and hours are zero.
func (r WageRecord) EffectiveHourlyRate() (decimal.Decimal, error) {
	if r.HourlyRate.IsPositive() {
		return r.HourlyRate, nil
	}
	if r.HoursWorked.IsZero() {
		return decimal.Zero, &RuleDataError{
			Field:  "hours_worked",
			Reason: "cannot derive hourly rate with zero hours",
		}
	}
	return r.BasePay.Div(r.HoursWorked), nil
}

// PeriodKey returns the period identifier used in summaries, "YYYY-MM".
func (r WageRecord) PeriodKey() string {
	return r.PeriodStart.Format("2006-01")
}

// Validate applies the record-fatal checks. Mandatory fields missing yield
// ErrIncompleteRecord; negative amounts yield ErrInvariantViolation.
// NetPay exceeding GrossPay is NOT fatal here: the data-quality rule reports
// it as a violation so it is never silently dropped.
func (r WageRecord) Validate() error {
	if r.PeriodStart.IsZero() {
		return &InvalidRecordError{Field: "period_start", Err: ErrIncompleteRecord}
	}
	if r.GrossPay.IsZero() {
		return &InvalidRecordError{Field: "gross_pay", Err: ErrIncompleteRecord}
	}
	if r.NetPay.IsZero() {
		return &InvalidRecordError{Field: "net_pay", Err: ErrIncompleteRecord}
	}
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"base_pay", r.BasePay},
		{"hours_worked", r.HoursWorked},
		{"overtime_hours", r.OvertimeHours},
		{"overtime_pay", r.OvertimePay},
		{"hourly_rate", r.HourlyRate},
		{"gross_pay", r.GrossPay},
		{"net_pay", r.NetPay},
	} {
		if f.value.IsNegative() {
			return &InvalidRecordError{Field: f.name, Err: ErrInvariantViolation}
		}
	}
	for kind, v := range r.Deductions {
		if v.IsNegative() {
			return &InvalidRecordError{Field: "deductions." + string(kind), Err: ErrInvariantViolation}
		}
	}
	return nil
}
