package rules_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
	"github.com/warp/compliance-engine/rules"
)

func TestDefaultRegistry_ShipsAllChecksInFixedOrder(t *testing.T) {
	// The evaluation order is part of the engine's contract; violation
	// sequences must be stable across runs and releases.
	reg := rules.DefaultRegistry(rules.DefaultConfig())

	var names []string
	for _, r := range reg.Rules() {
		names = append(names, r.Meta().Name)
	}

	assert.Equal(t, []string{
		"minimum-wage",
		"monthly-minimum-wage",
		"hours-rate-match",
		"overtime",
		"pension-contribution",
		"employer-pension",
		"social-insurance",
		"health-tax",
		"severance-fund",
		"data-quality",
	}, names)
}

func TestDefaultRegistry_EndToEnd_UnderpaidMonth(t *testing.T) {
	// GIVEN: A June 2024 statement at 29.50/hour for 168 hours with no
	//        pension deduction, evaluated with the production table and rules
	// WHEN: Running the full evaluator
	// THEN: Exactly the hourly, monthly, and pension findings fire, and the
	//       totals stack: 472.08 + 471.71 + 297.36 = 1241.15

	table := law.DefaultTable()
	eval := compliance.NewEvaluator(table, rules.DefaultRegistry(rules.DefaultConfig()))

	rec := compliance.WageRecord{
		WorkerID:    "w-9",
		PeriodStart: law.Date(2024, time.June, 1),
		BasePay:     d("4956"),
		HoursWorked: d("168"),
		HourlyRate:  d("29.5"),
		GrossPay:    d("4956"),
		NetPay:      d("4100"),
	}

	analysis, err := eval.Evaluate(context.Background(), rec)
	require.NoError(t, err)

	require.Len(t, analysis.Violations, 3)
	assert.Empty(t, analysis.Notes)
	assert.False(t, analysis.Compliant)
	assert.Equal(t, compliance.SeverityCritical, analysis.WorstSeverity())

	assert.Equal(t, compliance.KindBelowMinimumWage, analysis.Violations[0].Kind)
	assert.True(t, analysis.Violations[0].AmountOwed.Equal(d("472.08")),
		"hourly shortfall %v", analysis.Violations[0].AmountOwed)

	assert.Equal(t, compliance.KindBelowMonthlyMinimum, analysis.Violations[1].Kind)
	assert.True(t, analysis.Violations[1].AmountOwed.Equal(d("471.71")),
		"monthly shortfall %v", analysis.Violations[1].AmountOwed)

	assert.Equal(t, compliance.KindMissingOrUnderpaidPension, analysis.Violations[2].Kind)
	assert.True(t, analysis.Violations[2].AmountOwed.Equal(d("297.36")),
		"pension shortfall %v", analysis.Violations[2].AmountOwed)

	assert.True(t, analysis.TotalOwed.Equal(d("1241.15")), "total %v", analysis.TotalOwed)
}

func TestDefaultRegistry_EndToEnd_CompliantMonth(t *testing.T) {
	// GIVEN: A clean statement above every floor with a correct pension line
	// WHEN: Running the full evaluator
	// THEN: Compliant, nothing owed

	table := law.DefaultTable()
	eval := compliance.NewEvaluator(table, rules.DefaultRegistry(rules.DefaultConfig()))

	rec := compliance.WageRecord{
		WorkerID:    "w-10",
		PeriodStart: law.Date(2024, time.June, 1),
		BasePay:     d("7280"),
		HoursWorked: d("182"),
		HourlyRate:  d("40"),
		GrossPay:    d("7280"),
		NetPay:      d("6000"),
		Deductions: map[compliance.DeductionKind]decimal.Decimal{
			compliance.DeductionEmployeePension: d("436.80"),
			compliance.DeductionIncomeTax:       d("500"),
		},
	}

	analysis, err := eval.Evaluate(context.Background(), rec)
	require.NoError(t, err)

	assert.True(t, analysis.Compliant)
	assert.Empty(t, analysis.Violations)
	assert.True(t, analysis.TotalOwed.IsZero())
}
