package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/metrics"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_CountersShowUpInScrape(t *testing.T) {
	m := metrics.New()

	m.IncrementEvaluations(3)
	m.IncrementViolation("below-minimum-wage")
	m.IncrementViolation("below-minimum-wage")
	m.IncrementBatchFailures(1)
	m.ObserveBatchSize(4)
	m.IncrementRatesRefresh("ok")
	m.SetComplianceRate(0.75)
	m.SetRulesRegistered(10)

	body := scrape(t, m)

	assert.Contains(t, body, "compliance_evaluations_total 3")
	assert.Contains(t, body, `compliance_violations_total{kind="below-minimum-wage"} 2`)
	assert.Contains(t, body, "compliance_batch_failures_total 1")
	assert.Contains(t, body, "compliance_batch_size_count 1")
	assert.Contains(t, body, `compliance_rates_refresh_total{outcome="ok"} 1`)
	assert.Contains(t, body, "compliance_last_run_rate 0.75")
	assert.Contains(t, body, "compliance_rules_registered 10")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := metrics.New()
	b := metrics.New()

	a.IncrementEvaluations(5)

	assert.Contains(t, scrape(t, a), "compliance_evaluations_total 5")
	assert.Contains(t, scrape(t, b), "compliance_evaluations_total 0")
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *metrics.Metrics

	m.IncrementEvaluations(1)
	m.IncrementViolation("overtime")
	m.IncrementBatchFailures(2)
	m.ObserveBatchSize(3)
	m.IncrementRatesRefresh("error")
	m.SetComplianceRate(1)
	m.SetRulesRegistered(4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
