/*
handlers.go - HTTP API handlers for the wage-compliance engine

PURPOSE:
  Exposes the compliance engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the evaluation packages.

ENDPOINTS:
  Service:
    GET  /health               Liveness
    GET  /api/info             Service, rules, table coverage
    POST /api/auth/token       Client-credential token exchange (auth.go)
    GET  /metrics              Prometheus scrape

  Evaluation:
    POST /api/evaluate         One wage record -> analysis
    POST /api/evaluate/batch   Records -> analyses + failures + summary
    POST /api/analyze/text     Raw payslip text -> parsed record + analysis

  Lookups:
    GET  /api/rules            Registered compliance checks
    GET  /api/minimums?date=   Legal minimums in effect on a date
    GET  /api/runs?limit=      Recent evaluation runs

ARCHITECTURE:
  Handler holds all dependencies. The evaluator is built per request from
  the rates source's current table snapshot, so a scheduled refresh never
  changes the floors under an in-flight evaluation.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, bad query parameter
  - 401: Missing/invalid bearer token (auth.go)
  - 404: Unknown route, date before the table
  - 422: Record-fatal input on the single-record endpoints
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Token issuance and the auth middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/compliance-engine/aggregate"
	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/extract"
	"github.com/warp/compliance-engine/metrics"
	"github.com/warp/compliance-engine/parse"
	"github.com/warp/compliance-engine/rates"
	"github.com/warp/compliance-engine/rules"
	"github.com/warp/compliance-engine/store/sqlite"
)

const serviceName = "compliance-engine"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Rates      *rates.Source
	Metrics    *metrics.Metrics
	Registry   *compliance.Registry
	Aggregator *aggregate.Aggregator
	Auth       AuthConfig
	Log        zerolog.Logger

	// Version is reported by /api/info.
	Version string
	// Workers bounds batch evaluation fan-out when the request does not
	// name its own.
	Workers int
}

// NewHandler wires a handler with the production rule set and default risk
// thresholds. Store may be nil; runs are then not persisted.
func NewHandler(store *sqlite.Store, source *rates.Source, m *metrics.Metrics, log zerolog.Logger) *Handler {
	h := &Handler{
		Store:      store,
		Rates:      source,
		Metrics:    m,
		Registry:   rules.DefaultRegistry(rules.DefaultConfig()),
		Aggregator: aggregate.New(aggregate.DefaultRiskThresholds()),
		Log:        log,
		Version:    "1.0.0",
		Workers:    4,
	}
	h.Metrics.SetRulesRegistered(h.Registry.Len())
	return h
}

// evaluator pins the current table snapshot for one request.
func (h *Handler) evaluator() *compliance.Evaluator {
	return compliance.NewEvaluator(h.Rates.Table(), h.Registry)
}

// =============================================================================
// SERVICE HANDLERS
// =============================================================================

// Health is the liveness endpoint.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Info describes the running service: rule count and table coverage.
// GET /api/info
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	table := h.Rates.Table()

	info := InfoDTO{
		Service:   serviceName,
		Version:   h.Version,
		RuleCount: h.Registry.Len(),
		Minimums: MinimumsInfoDTO{
			Entries:           table.Len(),
			EarliestEffective: table.Earliest().EffectiveFrom.Format("2006-01-02"),
			LatestEffective:   table.Latest().EffectiveFrom.Format("2006-01-02"),
		},
	}
	if fetched := h.Rates.FetchedAt(); !fetched.IsZero() {
		info.Minimums.FetchedAt = fetched.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, info)
}

// =============================================================================
// EVALUATION HANDLERS
// =============================================================================

// Evaluate audits a single wage record.
// POST /api/evaluate
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req WageRecordDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := req.toRecord()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid wage record", err)
		return
	}

	analysis, err := h.evaluator().Evaluate(r.Context(), record)
	if err != nil {
		h.writeEvaluationError(w, err)
		return
	}

	h.Metrics.IncrementEvaluations(1)
	h.countViolations(analysis)

	writeJSON(w, http.StatusOK, toAnalysisDTO(analysis))
}

// EvaluateBatch audits several records in one run: partial-failure
// evaluation, aggregation, and a run-log entry.
// POST /api/evaluate/batch
func (h *Handler) EvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "At least one record is required", nil)
		return
	}

	records := make([]compliance.WageRecord, len(req.Records))
	for i, dto := range req.Records {
		record, err := dto.toRecord()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid wage record in batch", &compliance.BatchFailure{Index: i, Err: err})
			return
		}
		records[i] = record
	}

	workers := req.Workers
	if workers <= 0 {
		workers = h.Workers
	}

	started := time.Now().UTC()
	analyses, failures := h.evaluator().EvaluateBatchConcurrent(r.Context(), records, workers)
	finished := time.Now().UTC()

	summary := h.Aggregator.ComputeWithFailures(analyses, failures)
	stats := aggregate.ComputeStats(analyses)
	trend := aggregate.ComputeTrend(analyses, aggregate.DefaultTrendOptions())

	runID := uuid.NewString()
	h.recordRun(r, runID, started, finished, summary, stats)
	h.observeBatch(len(records), analyses, failures, summary)

	writeJSON(w, http.StatusOK, BatchResponse{
		RunID:    runID,
		Analyses: toAnalysisDTOs(analyses),
		Failures: toFailureDTOs(failures),
		Summary:  toSummaryDTO(summary),
		Stats:    toStatsDTO(stats),
		Trend:    toTrendDTO(trend),
	})
}

// AnalyzeText parses raw payslip text into a record and audits it.
// POST /api/analyze/text
func (h *Handler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	extraction, err := extract.PlainText{}.Extract(r.Context(), strings.NewReader(req.Text))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read payslip text", err)
		return
	}
	if extraction.Empty() {
		writeError(w, http.StatusBadRequest, "Text is required", nil)
		return
	}

	record, err := parse.Text(extraction.Text)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Text is not a recognizable wage statement", err)
		return
	}

	analysis, err := h.evaluator().Evaluate(r.Context(), record)
	if err != nil {
		h.writeEvaluationError(w, err)
		return
	}

	h.Metrics.IncrementEvaluations(1)
	h.countViolations(analysis)

	writeJSON(w, http.StatusOK, AnalyzeTextResponse{
		Record:   toRecordDTO(record),
		Analysis: toAnalysisDTO(analysis),
	})
}

// =============================================================================
// LOOKUP HANDLERS
// =============================================================================

// ListRules returns the registered compliance checks in evaluation order.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	registered := h.Registry.Rules()

	dtos := make([]RuleDTO, len(registered))
	for i, rule := range registered {
		meta := rule.Meta()
		dtos[i] = RuleDTO{
			Name:           meta.Name,
			Description:    meta.Description,
			Kind:           string(meta.Kind),
			Severity:       string(meta.Severity),
			LegalReference: meta.LegalReference,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"rules": dtos, "count": len(dtos)})
}

// GetMinimums returns the legal minimums in effect on a date (today when
// the date parameter is absent).
// GET /api/minimums?date=YYYY-MM-DD
func (h *Handler) GetMinimums(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if param := r.URL.Query().Get("date"); param != "" {
		parsed, err := time.Parse("2006-01-02", param)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		date = parsed
	}

	minimum, err := h.Rates.Table().Lookup(date)
	if err != nil {
		writeError(w, http.StatusNotFound, "No legal minimum covers this date", err)
		return
	}

	writeJSON(w, http.StatusOK, toMinimumDTO(minimum))
}

// ListRuns returns the most recent evaluation runs from the run log.
// GET /api/runs?limit=N
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if param := r.URL.Query().Get("limit"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	if h.Store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"runs": []RunDTO{}})
		return
	}

	runs, err := h.Store.RecentRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": toRunDTOs(runs)})
}

// =============================================================================
// HELPERS
// =============================================================================

// writeEvaluationError maps an engine error to a status: record-fatal input
// is the client's problem (422), anything else is ours (500).
func (h *Handler) writeEvaluationError(w http.ResponseWriter, err error) {
	if compliance.IsClientError(err) {
		writeError(w, http.StatusUnprocessableEntity, "Record cannot be evaluated", err)
		return
	}
	h.Log.Error().Err(err).Msg("evaluation failed")
	writeError(w, http.StatusInternalServerError, "Evaluation failed", err)
}

// recordRun persists one batch run to the run log. Persistence failures are
// logged, not surfaced; the caller already has the full result in hand.
func (h *Handler) recordRun(r *http.Request, runID string, started, finished time.Time, summary aggregate.Summary, stats aggregate.Stats) {
	if h.Store == nil {
		return
	}

	run := sqlite.RunRecord{
		ID:             runID,
		StartedAt:      started,
		FinishedAt:     finished,
		Source:         "api",
		RecordCount:    summary.RecordCount,
		CompliantCount: summary.CompliantCount,
		FailureCount:   summary.FailureCount,
		ViolationCount: stats.ViolationCount,
		TotalOwed:      summary.TotalOwed,
		ComplianceRate: summary.ComplianceRate,
		RiskLevel:      string(summary.RiskLevel),
	}
	if err := h.Store.RecordRun(r.Context(), run); err != nil {
		h.Log.Warn().Err(err).Str("run_id", runID).Msg("failed to record evaluation run")
	}
}

func (h *Handler) countViolations(analysis compliance.RecordAnalysis) {
	for _, v := range analysis.Violations {
		h.Metrics.IncrementViolation(string(v.Kind))
	}
}

func (h *Handler) observeBatch(size int, analyses []compliance.RecordAnalysis, failures []compliance.BatchFailure, summary aggregate.Summary) {
	h.Metrics.IncrementEvaluations(size)
	h.Metrics.ObserveBatchSize(size)
	h.Metrics.IncrementBatchFailures(len(failures))
	for _, a := range analyses {
		h.countViolations(a)
	}
	rate, _ := summary.ComplianceRate.Float64()
	h.Metrics.SetComplianceRate(rate)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
