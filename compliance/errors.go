/*
errors.go - The error taxonomy of the evaluation engine

PURPOSE:
  All failure conditions in one place. The split that matters is record-fatal
  versus rule-scoped: record-fatal errors fail one record inside a batch
  (never the batch itself), rule-scoped errors downgrade to evaluation notes
  and the record continues through the remaining rules.

ERROR CATEGORIES:
  1. Record-fatal - ErrNoApplicableRule, ErrIncompleteRecord,
     ErrInvariantViolation
  2. Rule-scoped  - ErrInsufficientData (note, not failure)

USAGE:
  if errors.Is(err, compliance.ErrNoApplicableRule) {
      // the period predates the legal-minimums table
  }

SEE ALSO:
  - law/table.go: origin of ErrNoApplicableRule
  - evaluator.go: where failures are collected per record
*/
package compliance

import (
	"errors"
	"fmt"

	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoApplicableRule is the law package's lookup failure, re-exported so
	// callers can match the whole taxonomy from one package. Record-fatal.
	ErrNoApplicableRule = law.ErrNoApplicableRule

	// ErrInsufficientData is returned by a rule that cannot compute from the
	// fields present (e.g. zero hours when a rate must be derived). The rule
	// contributes no violation; the record continues.
	ErrInsufficientData = errors.New("insufficient data to evaluate rule")

	// ErrIncompleteRecord is returned when a mandatory field (period start,
	// gross pay, net pay) is absent. Record-fatal.
	ErrIncompleteRecord = errors.New("mandatory record field missing")

	// ErrInvariantViolation is returned for field combinations that cannot
	// occur in valid data, such as negative amounts. Record-fatal.
	ErrInvariantViolation = errors.New("record field violates invariant")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRecordError names the field that made a record unevaluable.
type InvalidRecordError struct {
	Field string
	Err   error
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid record: field %s: %v", e.Field, e.Err)
}

func (e *InvalidRecordError) Unwrap() error { return e.Err }

// RuleDataError explains which field kept a rule from computing. Unwraps to
// ErrInsufficientData so the registry can downgrade it to a note.
type RuleDataError struct {
	Field  string
	Reason string
}

func (e *RuleDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s: %s", e.Field, e.Reason)
}

func (e *RuleDataError) Unwrap() error { return ErrInsufficientData }

// BatchFailure pairs a failed record's position in the input with its error.
type BatchFailure struct {
	Index int
	Err   error
}

func (f BatchFailure) Error() string {
	return fmt.Sprintf("record %d: %v", f.Index, f.Err)
}

func (f BatchFailure) Unwrap() error { return f.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRecordFatal returns true when the error fails the record (as opposed to
// a single rule skipping itself).
func IsRecordFatal(err error) bool {
	return errors.Is(err, ErrNoApplicableRule) ||
		errors.Is(err, ErrIncompleteRecord) ||
		errors.Is(err, ErrInvariantViolation)
}

// IsClientError returns true when the failure is due to the submitted data
// rather than the engine, which maps to a 4xx at the API boundary.
func IsClientError(err error) bool {
	return IsRecordFatal(err) || errors.Is(err, ErrInsufficientData)
}
