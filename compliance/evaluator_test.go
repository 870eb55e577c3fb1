package compliance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// Note: stubRule and these fixtures are shared by registry_test.go and
// record_test.go.

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// testTable covers 2020-01-01 onward.
func testTable(t *testing.T) *law.Table {
	t.Helper()
	table, err := law.NewTable([]law.Minimum{{
		EffectiveFrom:       law.Date(2020, time.January, 1),
		MonthlyMinimum:      d("5300.00"),
		HourlyMinimum:       d("29.12"),
		DailyMinimum:        d("244.58"),
		EmployeePensionRate: d("0.06"),
		EmployerPensionRate: d("0.065"),
		SeveranceFundRate:   d("0.0833"),
	}})
	if err != nil {
		t.Fatalf("building test table: %v", err)
	}
	return table
}

func validRecord() compliance.WageRecord {
	return compliance.WageRecord{
		WorkerID:    "w-1",
		PeriodStart: law.Date(2024, time.March, 1),
		BasePay:     d("6000"),
		HoursWorked: d("182"),
		GrossPay:    d("6000"),
		NetPay:      d("5000"),
		Deductions: map[compliance.DeductionKind]decimal.Decimal{
			compliance.DeductionEmployeePension: d("360"),
		},
	}
}

// stubRule emits fixed violations or a fixed error.
type stubRule struct {
	meta       compliance.RuleMeta
	applicable bool
	violations []compliance.Violation
	err        error
}

func (s stubRule) Meta() compliance.RuleMeta                  { return s.meta }
func (s stubRule) Applicable(compliance.WageRecord) bool      { return s.applicable }
func (s stubRule) Evaluate(compliance.WageRecord, law.Minimum) ([]compliance.Violation, error) {
	return s.violations, s.err
}

func owingRule(name string, owed string) stubRule {
	meta := compliance.RuleMeta{
		Name:     name,
		Kind:     compliance.KindBelowMinimumWage,
		Severity: compliance.SeverityCritical,
	}
	return stubRule{
		meta:       meta,
		applicable: true,
		violations: []compliance.Violation{
			meta.Violation(d("100"), d("50"), d(owed), "test shortfall"),
		},
	}
}

// =============================================================================
// SINGLE-RECORD EVALUATION
// =============================================================================

func TestEvaluate_SumsOwedAndSetsCompliance(t *testing.T) {
	// GIVEN: Two rules owing 100.50 and 49.50
	// WHEN: Evaluating a valid record
	// THEN: TotalOwed is 150, the record is non-compliant, order is preserved

	registry := compliance.NewRegistry(owingRule("a", "100.50"), owingRule("b", "49.50"))
	ev := compliance.NewEvaluator(testTable(t), registry)

	analysis, err := ev.Evaluate(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analysis.Compliant {
		t.Error("expected a non-compliant analysis")
	}
	if !analysis.TotalOwed.Equal(d("150")) {
		t.Errorf("expected total owed 150, got %v", analysis.TotalOwed)
	}
	if len(analysis.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(analysis.Violations))
	}
	if analysis.Violations[0].Rule != "a" || analysis.Violations[1].Rule != "b" {
		t.Errorf("violations out of registration order: %s, %s",
			analysis.Violations[0].Rule, analysis.Violations[1].Rule)
	}
}

func TestEvaluate_CompliantRecordHasNoViolations(t *testing.T) {
	// GIVEN: A registry whose only rule is not applicable
	// WHEN: Evaluating
	// THEN: The analysis is compliant with zero owed

	registry := compliance.NewRegistry(stubRule{
		meta:       compliance.RuleMeta{Name: "skip"},
		applicable: false,
	})
	ev := compliance.NewEvaluator(testTable(t), registry)

	analysis, err := ev.Evaluate(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !analysis.Compliant || !analysis.TotalOwed.IsZero() {
		t.Errorf("expected a compliant zero-owed analysis, got compliant=%v owed=%v",
			analysis.Compliant, analysis.TotalOwed)
	}
}

func TestEvaluate_PeriodBeforeTableIsRecordFatal(t *testing.T) {
	// GIVEN: A record dated before the table's earliest entry
	// WHEN: Evaluating
	// THEN: The error is ErrNoApplicableRule and record-fatal

	ev := compliance.NewEvaluator(testTable(t), compliance.NewRegistry())
	rec := validRecord()
	rec.PeriodStart = law.Date(2019, time.June, 1)

	_, err := ev.Evaluate(context.Background(), rec)
	if !errors.Is(err, compliance.ErrNoApplicableRule) {
		t.Fatalf("expected ErrNoApplicableRule, got %v", err)
	}
	if !compliance.IsRecordFatal(err) {
		t.Error("expected the error to be record-fatal")
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	// GIVEN: The same record evaluated twice
	// WHEN: Comparing the two analyses
	// THEN: Violations, totals and compliance flags match exactly

	registry := compliance.NewRegistry(owingRule("a", "77.25"))
	ev := compliance.NewEvaluator(testTable(t), registry)
	rec := validRecord()

	first, err := ev.Evaluate(context.Background(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ev.Evaluate(context.Background(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Compliant != second.Compliant {
		t.Error("compliance flag differs between runs")
	}
	if !first.TotalOwed.Equal(second.TotalOwed) {
		t.Errorf("total owed differs: %v vs %v", first.TotalOwed, second.TotalOwed)
	}
	if len(first.Violations) != len(second.Violations) {
		t.Fatalf("violation count differs: %d vs %d", len(first.Violations), len(second.Violations))
	}
	for i := range first.Violations {
		if first.Violations[i].Kind != second.Violations[i].Kind ||
			!first.Violations[i].AmountOwed.Equal(second.Violations[i].AmountOwed) {
			t.Errorf("violation %d differs between runs", i)
		}
	}
}

// =============================================================================
// BATCH EVALUATION - partial-failure semantics
// =============================================================================

func TestEvaluateBatch_IsolatesFailingRecord(t *testing.T) {
	// GIVEN: Three records where index 2 predates the table
	// WHEN: Evaluating the batch
	// THEN: Two analyses and exactly one failure referencing index 2

	ev := compliance.NewEvaluator(testTable(t), compliance.NewRegistry())
	records := []compliance.WageRecord{validRecord(), validRecord(), validRecord()}
	records[2].PeriodStart = law.Date(2015, time.January, 1)

	analyses, failures := ev.EvaluateBatch(context.Background(), records)

	if len(analyses) != 2 {
		t.Errorf("expected 2 analyses, got %d", len(analyses))
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].Index != 2 {
		t.Errorf("expected the failure to reference index 2, got %d", failures[0].Index)
	}
	if !errors.Is(failures[0].Err, compliance.ErrNoApplicableRule) {
		t.Errorf("expected ErrNoApplicableRule, got %v", failures[0].Err)
	}
}

func TestEvaluateBatch_IncompleteRecordFailsOnlyItself(t *testing.T) {
	// GIVEN: A batch with one record missing gross pay
	// WHEN: Evaluating
	// THEN: The incomplete record is an indexed failure, the other succeeds

	ev := compliance.NewEvaluator(testTable(t), compliance.NewRegistry())
	bad := validRecord()
	bad.GrossPay = decimal.Zero

	analyses, failures := ev.EvaluateBatch(context.Background(), []compliance.WageRecord{bad, validRecord()})

	if len(analyses) != 1 || len(failures) != 1 {
		t.Fatalf("expected 1 analysis and 1 failure, got %d and %d", len(analyses), len(failures))
	}
	if failures[0].Index != 0 {
		t.Errorf("expected failure index 0, got %d", failures[0].Index)
	}
	if !errors.Is(failures[0].Err, compliance.ErrIncompleteRecord) {
		t.Errorf("expected ErrIncompleteRecord, got %v", failures[0].Err)
	}
}

func TestEvaluateBatchConcurrent_MatchesSequential(t *testing.T) {
	// GIVEN: A batch with a mix of good and bad records
	// WHEN: Evaluating sequentially and concurrently
	// THEN: Results and ordering are identical

	registry := compliance.NewRegistry(owingRule("a", "10"))
	ev := compliance.NewEvaluator(testTable(t), registry)

	records := make([]compliance.WageRecord, 0, 12)
	for i := 0; i < 12; i++ {
		rec := validRecord()
		if i%5 == 3 {
			rec.PeriodStart = law.Date(2010, time.January, 1)
		}
		records = append(records, rec)
	}

	seqAnalyses, seqFailures := ev.EvaluateBatch(context.Background(), records)
	conAnalyses, conFailures := ev.EvaluateBatchConcurrent(context.Background(), records, 3)

	if len(seqAnalyses) != len(conAnalyses) {
		t.Fatalf("analysis counts differ: %d vs %d", len(seqAnalyses), len(conAnalyses))
	}
	for i := range seqAnalyses {
		if !seqAnalyses[i].Record.PeriodStart.Equal(conAnalyses[i].Record.PeriodStart) {
			t.Errorf("analysis %d out of order", i)
		}
		if !seqAnalyses[i].TotalOwed.Equal(conAnalyses[i].TotalOwed) {
			t.Errorf("analysis %d owed differs", i)
		}
	}
	if len(seqFailures) != len(conFailures) {
		t.Fatalf("failure counts differ: %d vs %d", len(seqFailures), len(conFailures))
	}
	for i := range seqFailures {
		if seqFailures[i].Index != conFailures[i].Index {
			t.Errorf("failure %d index differs: %d vs %d",
				i, seqFailures[i].Index, conFailures[i].Index)
		}
	}
}

func TestEvaluateBatch_CanceledContextFailsRemaining(t *testing.T) {
	// GIVEN: An already-canceled context
	// WHEN: Evaluating a batch
	// THEN: Every record becomes an indexed failure, none are dropped

	ev := compliance.NewEvaluator(testTable(t), compliance.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analyses, failures := ev.EvaluateBatch(ctx, []compliance.WageRecord{validRecord(), validRecord()})

	if len(analyses) != 0 {
		t.Errorf("expected no analyses, got %d", len(analyses))
	}
	if len(failures) != 2 {
		t.Errorf("expected 2 failures, got %d", len(failures))
	}
}
