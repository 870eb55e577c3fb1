/*
Package parse turns raw payslip text into candidate wage records.

PURPOSE:
  The evaluation engine wants a structured WageRecord; real statements are
  labeled lines in mixed Hebrew and English with inconsistent number and date
  formats. This package does the line-oriented extraction, then infers the
  derivable fields (standard hours, rate from base over hours, gross from
  components, net from gross minus deductions) before handing the record to
  compliance.Validate.

KEY CONCEPTS IN THIS FILE (parser.go):
  - labelRules: Field synonyms matched longest-first inside each line
  - Text: The one entry point; scan lines, infer, validate
  - ErrNotPayslip: The text has no salary field at all

DESIGN PRINCIPLES:
  1. Pure: No I/O, no clock, no logger; same text in, same record out
  2. Tolerant reading, strict output: sloppy input formats are fine, but a
     record missing its period or pay amounts fails as IncompleteRecord
  3. Deductions are stored unsigned regardless of how the statement signs them

SEE ALSO:
  - numbers.go: Amount/hours/percent token extraction
  - dates.go: Period date strategies
  - extract: Upstream text acquisition boundary
*/
package parse

import (
	"bufio"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
)

// ErrNotPayslip is returned when the text carries no salary field at all and
// is therefore some other kind of document.
var ErrNotPayslip = errors.New("text does not look like a wage statement")

// =============================================================================
// FIELD LABELS
// =============================================================================

type fieldKind int

const (
	fieldBase fieldKind = iota
	fieldHours
	fieldRate
	fieldOvertimeHours
	fieldOvertimePay
	fieldGross
	fieldNet
	fieldIncomeTax
	fieldSocialInsurance
	fieldHealthTax
	fieldEmployeePension
	fieldEmployerPension
	fieldSeverance
)

// hourKinds take clock-notation values (8:30) rather than amounts.
var hourKinds = map[fieldKind]bool{fieldHours: true, fieldOvertimeHours: true}

var deductionKinds = map[fieldKind]compliance.DeductionKind{
	fieldIncomeTax:       compliance.DeductionIncomeTax,
	fieldSocialInsurance: compliance.DeductionSocialInsurance,
	fieldHealthTax:       compliance.DeductionHealthTax,
	fieldEmployeePension: compliance.DeductionEmployeePension,
	fieldEmployerPension: compliance.DeductionEmployerPension,
	fieldSeverance:       compliance.DeductionSeveranceFund,
}

type labelRule struct {
	label string
	kind  fieldKind
}

// labelRules holds every recognized label, longest first so that
// "overtime pay" wins over "overtime" and the employer pension labels win
// over the bare pension ones. English labels are stored lowercase and
// matched against the lowered line.
var labelRules = buildLabelRules()

func buildLabelRules() []labelRule {
	byKind := map[fieldKind][]string{
		fieldBase:  {"שכר בסיס", "שכר יסוד", "משכורת בסיס", "שכר חודשי", "base salary", "base pay", "basic salary", "monthly salary"},
		fieldHours: {"שעות עבודה", "שעות רגילות", "סה\"כ שעות", "hours worked", "regular hours", "total hours"},
		fieldRate:  {"שכר שעתי", "תעריף שעתי", "hourly rate", "rate per hour"},

		fieldOvertimeHours: {"שעות נוספות", "overtime hours"},
		fieldOvertimePay:   {"תוספת שעות נוספות", "גמול שעות נוספות", "overtime pay"},

		fieldGross: {"שכר ברוטו", "סה\"כ ברוטו", "סך הכל ברוטו", "gross salary", "gross pay", "total gross"},
		fieldNet:   {"שכר נטו", "סה\"כ נטו", "סך הכל נטו", "נטו לתשלום", "לתשלום", "net salary", "net pay"},

		fieldIncomeTax:       {"מס הכנסה", "income tax"},
		fieldSocialInsurance: {"ביטוח לאומי", "national insurance", "social insurance"},
		fieldHealthTax:       {"דמי בריאות", "ביטוח בריאות", "health tax", "health insurance"},
		fieldEmployeePension: {"הפרשת עובד לפנסיה", "פנסיה עובד", "employee pension", "pension"},
		fieldEmployerPension: {"הפרשת מעביד לפנסיה", "פנסיה מעביד", "employer pension"},
		fieldSeverance:       {"קרן פיצויים", "פיצויים", "severance fund", "severance"},
	}

	var rules []labelRule
	for kind, labels := range byKind {
		for _, label := range labels {
			rules = append(rules, labelRule{label: label, kind: kind})
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].label) != len(rules[j].label) {
			return len(rules[i].label) > len(rules[j].label)
		}
		return rules[i].label < rules[j].label
	})
	return rules
}

// =============================================================================
// PARSER
// =============================================================================

// Text parses one statement's text into a wage record. The returned record
// has passed compliance validation; WorkerID is left for the caller, who
// knows where the text came from.
func Text(text string) (compliance.WageRecord, error) {
	fields := scanFields(text)
	if len(fields) == 0 || !hasSalaryField(fields) {
		return compliance.WageRecord{}, ErrNotPayslip
	}

	period, ok := PeriodDate(text)
	if !ok {
		return compliance.WageRecord{}, &compliance.InvalidRecordError{
			Field: "period_start", Err: compliance.ErrIncompleteRecord,
		}
	}

	rec := buildRecord(fields, period)
	if err := rec.Validate(); err != nil {
		return compliance.WageRecord{}, err
	}
	return rec, nil
}

// scanFields walks the text line by line, keeping the first value seen for
// each recognized label.
func scanFields(text string) map[fieldKind]decimal.Decimal {
	fields := make(map[fieldKind]decimal.Decimal)

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		kind, rest, ok := matchLabel(line)
		if !ok {
			continue
		}
		if _, seen := fields[kind]; seen {
			continue
		}

		value, ok := lineValue(kind, rest, line)
		if !ok {
			continue
		}
		if _, isDeduction := deductionKinds[kind]; isDeduction {
			// Statements sign deduction lines either way.
			value = value.Abs()
		}
		fields[kind] = value
	}
	return fields
}

// matchLabel finds the first (longest) label contained in the line and
// returns the text after it, which usually holds the value column.
func matchLabel(line string) (fieldKind, string, bool) {
	lower := strings.ToLower(line)
	for _, rule := range labelRules {
		if idx := strings.Index(lower, rule.label); idx >= 0 {
			return rule.kind, lower[idx+len(rule.label):], true
		}
	}
	return 0, "", false
}

func lineValue(kind fieldKind, rest, whole string) (decimal.Decimal, bool) {
	if hourKinds[kind] {
		if v, ok := Hours(rest); ok {
			return v, true
		}
		return Hours(whole)
	}
	if v, ok := FirstAmount(rest); ok {
		return v, true
	}
	// Label at the end of the line; the value sits before it.
	return LastAmount(whole)
}

func hasSalaryField(fields map[fieldKind]decimal.Decimal) bool {
	_, base := fields[fieldBase]
	_, gross := fields[fieldGross]
	_, net := fields[fieldNet]
	return base || gross || net
}

// buildRecord applies the inference chain and assembles the record.
func buildRecord(fields map[fieldKind]decimal.Decimal, period time.Time) compliance.WageRecord {
	base := fields[fieldBase]
	hours := fields[fieldHours]
	rate := fields[fieldRate]
	gross := fields[fieldGross]
	net := fields[fieldNet]

	// Monthly statements often omit hours; the statutory standard month
	// applies.
	if hours.IsZero() && (base.IsPositive() || gross.IsPositive()) {
		hours = law.StandardMonthlyHours
	}
	if rate.IsZero() && base.IsPositive() && hours.IsPositive() {
		rate = base.Div(hours)
	}
	if base.IsZero() && rate.IsPositive() && hours.IsPositive() {
		base = rate.Mul(hours)
	}

	deductions := make(map[compliance.DeductionKind]decimal.Decimal)
	total := decimal.Zero
	for kind, deduction := range deductionKinds {
		if v, ok := fields[kind]; ok && v.IsPositive() {
			deductions[deduction] = v
			total = total.Add(v)
		}
	}

	if gross.IsZero() && base.IsPositive() {
		gross = base.Add(fields[fieldOvertimePay])
	}
	if net.IsZero() && gross.IsPositive() {
		net = gross.Sub(total)
	}

	return compliance.WageRecord{
		PeriodStart:   period,
		BasePay:       base,
		HoursWorked:   hours,
		OvertimeHours: fields[fieldOvertimeHours],
		OvertimePay:   fields[fieldOvertimePay],
		HourlyRate:    rate,
		GrossPay:      gross,
		NetPay:        net,
		Deductions:    deductions,
	}
}
