package report_test

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/aggregate"
	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/report"
)

// === TEST HELPERS ===

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func violatingAnalysis() compliance.RecordAnalysis {
	return compliance.RecordAnalysis{
		Record: compliance.WageRecord{
			WorkerID:    "w-9",
			PeriodStart: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		},
		Violations: []compliance.Violation{
			{
				Kind:           compliance.KindBelowMinimumWage,
				Severity:       compliance.SeverityCritical,
				Rule:           "minimum-wage",
				Expected:       d("32.31"),
				Actual:         d("29.50"),
				AmountOwed:     d("472.08"),
				Description:    "hourly rate 29.50 is below the legal minimum 32.31",
				LegalReference: "Minimum Wage Law",
			},
		},
		Notes: []compliance.EvaluationNote{
			{Rule: "overtime", Reason: "no overtime hours reported"},
		},
		TotalOwed: d("472.08"),
	}
}

func compliantAnalysis() compliance.RecordAnalysis {
	return compliance.RecordAnalysis{
		Record: compliance.WageRecord{
			WorkerID:    "w-2",
			PeriodStart: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		},
		Compliant: true,
	}
}

func buildFixture(t *testing.T) report.Report {
	t.Helper()

	analyses := []compliance.RecordAnalysis{violatingAnalysis(), compliantAnalysis()}
	failures := []compliance.BatchFailure{
		{Index: 2, Err: compliance.ErrIncompleteRecord},
	}

	agg := aggregate.New(aggregate.DefaultRiskThresholds())
	summary := agg.ComputeWithFailures(analyses, failures)
	stats := aggregate.ComputeStats(analyses)
	trend := aggregate.ComputeTrend(analyses, aggregate.DefaultTrendOptions())

	return report.Build(analyses, failures, summary, stats, trend, report.Meta{
		GeneratedAt: time.Date(2024, time.July, 2, 9, 30, 0, 0, time.UTC),
		Tool:        "compliance-engine",
		Version:     "1.0.0",
	})
}

// === TESTS ===

func TestBuild_FlattensRunOutputs(t *testing.T) {
	r := buildFixture(t)

	assert.Equal(t, "2024-07-02T09:30:00Z", r.GeneratedAt)
	assert.Equal(t, "compliance-engine", r.Tool)
	assert.Equal(t, 2, r.RecordCount)
	assert.Equal(t, 1, r.CompliantCount)
	assert.Equal(t, 1, r.FailureCount)
	assert.True(t, r.TotalOwed.Equal(d("472.08")))
	assert.Equal(t, "high", r.RiskLevel)
	assert.Equal(t, []string{"2024-06"}, r.PeriodsWithViolations)

	require.Len(t, r.ViolationsByKind, 1)
	assert.Equal(t, "below-minimum-wage", r.ViolationsByKind[0].Kind)
	assert.Equal(t, 1, r.ViolationsByKind[0].Count)
	assert.True(t, r.ViolationsByKind[0].TotalOwed.Equal(d("472.08")))

	require.Len(t, r.Records, 2)
	assert.Equal(t, "w-9", r.Records[0].WorkerID)
	assert.Equal(t, "2024-06", r.Records[0].Period)
	assert.False(t, r.Records[0].Compliant)
	require.Len(t, r.Records[0].Violations, 1)
	assert.Equal(t, "critical", r.Records[0].Violations[0].Severity)
	assert.Equal(t, []string{"overtime: no overtime hours reported"}, r.Records[0].Notes)
	assert.True(t, r.Records[1].Compliant)

	require.Len(t, r.Failures, 1)
	assert.Equal(t, 2, r.Failures[0].Index)
	assert.Contains(t, r.Failures[0].Error, "incomplete")

	require.NotNil(t, r.Stats)
	assert.Equal(t, 1, r.Stats.ViolatingRecords)
	assert.Equal(t, 1, r.Stats.CountBySeverity["critical"])

	require.NotNil(t, r.Trend)
	assert.Equal(t, "stable", r.Trend.Direction)
}

func TestBuild_SortsBreakdownByKind(t *testing.T) {
	an := violatingAnalysis()
	an.Violations = append(an.Violations, compliance.Violation{
		Kind:       compliance.KindMissingOrUnderpaidPension,
		Severity:   compliance.SeverityHigh,
		Rule:       "pension-contribution",
		AmountOwed: d("297.36"),
	})
	an.TotalOwed = d("769.44")

	agg := aggregate.New(aggregate.DefaultRiskThresholds())
	analyses := []compliance.RecordAnalysis{an}
	r := report.Build(analyses, nil,
		agg.Compute(analyses),
		aggregate.ComputeStats(analyses),
		aggregate.ComputeTrend(analyses, aggregate.DefaultTrendOptions()),
		report.Meta{GeneratedAt: time.Now()})

	require.Len(t, r.ViolationsByKind, 2)
	assert.Equal(t, "below-minimum-wage", r.ViolationsByKind[0].Kind)
	assert.Equal(t, "missing-or-underpaid-pension", r.ViolationsByKind[1].Kind)
}

func TestJSON_DecimalsStayExact(t *testing.T) {
	r := buildFixture(t)

	out, err := report.JSON(r, true)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))

	assert.Equal(t, "472.08", decoded["total_owed"])
	assert.Equal(t, "0.5", decoded["compliance_rate"])
	assert.Equal(t, "high", decoded["risk_level"])
	assert.Contains(t, string(out), "\n  \"generated_at\"")
}

func TestJSON_CompactWithoutIndent(t *testing.T) {
	r := buildFixture(t)

	out, err := report.JSON(r, false)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "\n")
}

func TestText_SectionsAndSeverityMarkers(t *testing.T) {
	r := buildFixture(t)

	out := report.Text(r)

	assert.Contains(t, out, strings.Repeat("=", 70))
	assert.Contains(t, out, "WAGE COMPLIANCE ANALYSIS REPORT")
	assert.Contains(t, out, "SUMMARY")
	assert.Contains(t, out, "Compliance rate:         50.00%")
	assert.Contains(t, out, "Risk level:              HIGH")
	assert.Contains(t, out, "VIOLATION BREAKDOWN")
	assert.Contains(t, out, "STATEMENT DETAILS")
	assert.Contains(t, out, "!! below-minimum-wage:")
	assert.Contains(t, out, "expected 32.31  actual 29.50  owed 472.08")
	assert.Contains(t, out, "ref: Minimum Wage Law")
	assert.Contains(t, out, "• 2024-06")
	assert.Contains(t, out, "PROCESSING FAILURES")
	assert.Contains(t, out, "record 2:")
	assert.Contains(t, out, "Generated 2024-07-02T09:30:00Z by compliance-engine v1.0.0")
}

func TestText_CompliantRecordIsOneLine(t *testing.T) {
	analyses := []compliance.RecordAnalysis{compliantAnalysis()}
	agg := aggregate.New(aggregate.DefaultRiskThresholds())

	r := report.Build(analyses, nil,
		agg.Compute(analyses),
		aggregate.ComputeStats(analyses),
		aggregate.ComputeTrend(analyses, aggregate.DefaultTrendOptions()),
		report.Meta{GeneratedAt: time.Now().UTC()})

	out := report.Text(r)

	assert.Contains(t, out, "w-2  2024-06  compliant")
	assert.NotContains(t, out, "expected")
	assert.NotContains(t, out, "VIOLATION BREAKDOWN")
	assert.NotContains(t, out, "PROCESSING FAILURES")
}
