package compliance

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// EVALUATOR - Runs the registry against records
// =============================================================================

// Evaluator runs the rule registry against wage records. The legal-minimums
// table is injected at construction and read-only, so a single Evaluator is
// safe for concurrent use as long as the registry is not mutated.
type Evaluator struct {
	table    *law.Table
	registry *Registry
}

func NewEvaluator(table *law.Table, registry *Registry) *Evaluator {
	return &Evaluator{table: table, registry: registry}
}

// Registry returns the registry this evaluator dispatches through.
func (e *Evaluator) Registry() *Registry { return e.registry }

// Evaluate audits one record: validate, resolve the applicable minimum, run
// every rule, sum the owed amounts. The returned error is record-scoped
// (IsRecordFatal) and leaves the analysis empty.
func (e *Evaluator) Evaluate(ctx context.Context, record WageRecord) (RecordAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return RecordAnalysis{}, err
	}
	if err := record.Validate(); err != nil {
		return RecordAnalysis{}, err
	}
	minimum, err := e.table.Lookup(record.PeriodStart)
	if err != nil {
		return RecordAnalysis{}, err
	}

	violations, notes := e.registry.ApplyAll(record, minimum)

	totalOwed := decimal.Zero
	for _, v := range violations {
		totalOwed = totalOwed.Add(v.AmountOwed)
	}

	return RecordAnalysis{
		Record:     record,
		Minimum:    minimum,
		Violations: violations,
		Notes:      notes,
		TotalOwed:  totalOwed,
		Compliant:  len(violations) == 0,
	}, nil
}

// EvaluateBatch audits records independently with partial-failure semantics:
// malformed records become indexed failures, the rest are analyzed. The
// analyses keep input order. Cancellation fails the remaining records with
// the context error rather than dropping them silently.
func (e *Evaluator) EvaluateBatch(ctx context.Context, records []WageRecord) ([]RecordAnalysis, []BatchFailure) {
	analyses := make([]RecordAnalysis, 0, len(records))
	var failures []BatchFailure
	for i, record := range records {
		analysis, err := e.Evaluate(ctx, record)
		if err != nil {
			failures = append(failures, BatchFailure{Index: i, Err: err})
			continue
		}
		analyses = append(analyses, analysis)
	}
	return analyses, failures
}

// EvaluateBatchConcurrent is EvaluateBatch fanned out across a bounded worker
// group. Records share no mutable state, so the only coordination needed is
// one result slot per index; output order matches EvaluateBatch exactly.
// workers <= 0 falls back to 4.
func (e *Evaluator) EvaluateBatchConcurrent(ctx context.Context, records []WageRecord, workers int) ([]RecordAnalysis, []BatchFailure) {
	if workers <= 0 {
		workers = 4
	}

	type slot struct {
		analysis RecordAnalysis
		err      error
	}
	slots := make([]slot, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		i := i // per-iteration copy: required while go.mod targets a pre-1.22 language version
		g.Go(func() error {
			analysis, err := e.Evaluate(ctx, records[i])
			slots[i] = slot{analysis: analysis, err: err}
			// Record-scoped failures stay in their slot; returning them here
			// would cancel the group and abort the batch.
			return nil
		})
	}
	// No goroutine returns an error, so Wait only synchronizes.
	_ = g.Wait()

	analyses := make([]RecordAnalysis, 0, len(records))
	var failures []BatchFailure
	for i, s := range slots {
		if s.err != nil {
			failures = append(failures, BatchFailure{Index: i, Err: s.err})
			continue
		}
		analyses = append(analyses, s.analysis)
	}
	return analyses, failures
}
