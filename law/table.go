/*
Package law provides the statutory wage floors and contribution rates used by
the compliance engine.

PURPOSE:
  This package is the single source of dated labor-law reference data: the
  minimum-wage table (monthly, hourly, daily), mandated pension contribution
  rates, social-insurance and health-tax bracket schedules, and the statutory
  constants (standard hours, overtime multipliers, severance fund rate).
  It knows nothing about wage records or rules; it answers one question:
  "what did the law require on this date?"

KEY CONCEPTS IN THIS FILE (table.go):
  - Minimum: one dated entry of the minimum-wage table
  - Table: sorted, immutable collection of entries with floor lookup
  - ErrNoApplicableRule: returned when a date precedes every entry

DESIGN PRINCIPLES:
  1. Immutability: a Table is normalized once at construction and never
     mutated, so it is safe to share by reference across goroutines
  2. Precision: all amounts and rates are decimal.Decimal, never float64
  3. Explicitness: tables are constructed and injected, never implicit
     package-level state; DefaultTable() builds a fresh value each call

USAGE:
  table, err := law.NewTable(entries)
  min, err := table.Lookup(law.Date(2024, time.June, 1))
  // min.HourlyMinimum is the floor in effect on that date

SEE ALSO:
  - data.go: the built-in historical dataset and statutory constants
  - contributions.go: social-insurance and health-tax bracket schedules
*/
package law

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoApplicableRule is returned when a lookup date precedes the earliest
	// table entry. The caller must treat this as fatal for the record being
	// evaluated, never as a reason to fall back to an arbitrary entry.
	ErrNoApplicableRule = errors.New("no applicable legal minimum for date")

	// ErrEmptyTable is returned when a table is constructed with no entries.
	ErrEmptyTable = errors.New("legal minimums table has no entries")
)

// NoMinimumError reports which date failed lookup and where coverage begins.
type NoMinimumError struct {
	Date     time.Time
	Earliest time.Time
}

func (e *NoMinimumError) Error() string {
	return fmt.Sprintf("no legal minimum in effect on %s (table coverage begins %s)",
		e.Date.Format("2006-01-02"), e.Earliest.Format("2006-01-02"))
}

func (e *NoMinimumError) Unwrap() error {
	return ErrNoApplicableRule
}

// =============================================================================
// MINIMUM - One dated entry of the legal-minimums table
// =============================================================================

// Minimum is the statutory floor in effect from EffectiveFrom until the next
// entry. Rates are fractions (0.06 means 6%).
type Minimum struct {
	EffectiveFrom       time.Time
	MonthlyMinimum      decimal.Decimal
	HourlyMinimum       decimal.Decimal
	DailyMinimum        decimal.Decimal
	EmployeePensionRate decimal.Decimal
	EmployerPensionRate decimal.Decimal
	SeveranceFundRate   decimal.Decimal
}

func (m Minimum) validate() error {
	if m.EffectiveFrom.IsZero() {
		return fmt.Errorf("minimum entry missing effective_from")
	}
	if !m.MonthlyMinimum.IsPositive() {
		return fmt.Errorf("minimum entry %s: monthly minimum must be positive, got %s",
			m.EffectiveFrom.Format("2006-01-02"), m.MonthlyMinimum)
	}
	if !m.HourlyMinimum.IsPositive() {
		return fmt.Errorf("minimum entry %s: hourly minimum must be positive, got %s",
			m.EffectiveFrom.Format("2006-01-02"), m.HourlyMinimum)
	}
	for _, r := range []struct {
		name string
		rate decimal.Decimal
	}{
		{"employee pension rate", m.EmployeePensionRate},
		{"employer pension rate", m.EmployerPensionRate},
		{"severance fund rate", m.SeveranceFundRate},
	} {
		if r.rate.IsNegative() || r.rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("minimum entry %s: %s must be in [0, 1), got %s",
				m.EffectiveFrom.Format("2006-01-02"), r.name, r.rate)
		}
	}
	return nil
}

// =============================================================================
// TABLE - Sorted, immutable, floor-lookup by date
// =============================================================================

// Table holds minimum-wage entries sorted ascending by EffectiveFrom.
// Construct with NewTable; the entries are copied and normalized once, so a
// Table is read-only afterward and safe for concurrent use.
type Table struct {
	entries []Minimum
}

// NewTable builds a table from entries in arbitrary order. It rejects empty
// input, invalid entries, and duplicate EffectiveFrom dates.
func NewTable(entries []Minimum) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTable
	}
	sorted := make([]Minimum, len(entries))
	copy(sorted, entries)
	for _, m := range sorted {
		if err := m.validate(); err != nil {
			return nil, err
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].EffectiveFrom.Equal(sorted[i-1].EffectiveFrom) {
			return nil, fmt.Errorf("duplicate effective_from %s",
				sorted[i].EffectiveFrom.Format("2006-01-02"))
		}
	}
	return &Table{entries: sorted}, nil
}

// Lookup returns the entry with the greatest EffectiveFrom not exceeding the
// given date. Binary search over the sorted entries, O(log n).
func (t *Table) Lookup(date time.Time) (Minimum, error) {
	// First index whose entry takes effect strictly after the date; the
	// applicable entry is the one just before it.
	idx := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].EffectiveFrom.After(date)
	})
	if idx == 0 {
		return Minimum{}, &NoMinimumError{Date: date, Earliest: t.entries[0].EffectiveFrom}
	}
	return t.entries[idx-1], nil
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns a copy of the entries in ascending EffectiveFrom order.
func (t *Table) Entries() []Minimum {
	out := make([]Minimum, len(t.entries))
	copy(out, t.entries)
	return out
}

// Earliest returns the first entry (coverage start).
func (t *Table) Earliest() Minimum { return t.entries[0] }

// Latest returns the last entry (currently in effect for any later date).
func (t *Table) Latest() Minimum { return t.entries[len(t.entries)-1] }

// =============================================================================
// HELPERS
// =============================================================================

// Date builds a UTC midnight time for the given calendar day. All table dates
// and record period starts should be constructed this way so comparisons are
// not skewed by time-of-day or zone components.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
