/*
Package sqlite provides SQLite-backed persistence for the compliance engine.

PURPOSE:
  Two durable concerns live here: the cached statutory minimums fetched from
  the external rates feed, and the audit trail of evaluation runs. The engine
  itself stays pure; this package is the only place that touches disk.

KEY TABLES:
  legal_minimums:   Snapshot of the statutory minimums table, one row per
                    effective date. Replaced wholesale on each feed refresh.
  evaluation_runs:  Append-mostly log of batch evaluations with their
                    aggregate outcome, for the /api/runs audit endpoint.

AMOUNTS:
  Monetary amounts and rates are stored as TEXT in decimal string form and
  parsed back with shopspring/decimal. REAL columns would reintroduce the
  float drift the engine avoids everywhere else.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers do not block each other.

USAGE:
  store, err := sqlite.New("./data/compliance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  entries, fetchedAt, err := store.LoadMinimums(ctx)
  if errors.Is(err, sqlite.ErrCacheEmpty) {
      // fall back to the built-in table
  }

SEE ALSO:
  - law/table.go: the Minimum entries cached here
  - rates/source.go: feed refresh that writes the cache
  - api/handlers.go: run recording and the runs endpoint
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/law"
)

// ErrCacheEmpty is returned by LoadMinimums when no feed snapshot has been
// stored yet.
var ErrCacheEmpty = errors.New("legal minimums cache is empty")

// Store implements persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Cached statutory minimums (replaced wholesale on feed refresh)
	CREATE TABLE IF NOT EXISTS legal_minimums (
		effective_from TEXT PRIMARY KEY,
		monthly_minimum TEXT NOT NULL,
		hourly_minimum TEXT NOT NULL,
		daily_minimum TEXT NOT NULL,
		employee_pension_rate TEXT NOT NULL,
		employer_pension_rate TEXT NOT NULL,
		severance_fund_rate TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		fetched_at TEXT NOT NULL
	);

	-- Evaluation runs (audit trail)
	CREATE TABLE IF NOT EXISTS evaluation_runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		record_count INTEGER NOT NULL,
		compliant_count INTEGER NOT NULL,
		failure_count INTEGER NOT NULL,
		violation_count INTEGER NOT NULL,
		total_owed TEXT NOT NULL,
		compliance_rate TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_evaluation_runs_started
		ON evaluation_runs(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEGAL MINIMUMS CACHE
// =============================================================================

// SaveMinimums replaces the cached minimums with a fresh feed snapshot.
// The swap is atomic: readers see either the old snapshot or the new one.
func (s *Store) SaveMinimums(ctx context.Context, entries []law.Minimum, source string, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(entries) == 0 {
		return errors.New("refusing to cache an empty minimums snapshot")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM legal_minimums"); err != nil {
		return fmt.Errorf("failed to clear minimums cache: %w", err)
	}

	query := `
		INSERT INTO legal_minimums
		(effective_from, monthly_minimum, hourly_minimum, daily_minimum,
		 employee_pension_rate, employer_pension_rate, severance_fund_rate,
		 source, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, m := range entries {
		_, err := tx.ExecContext(ctx, query,
			m.EffectiveFrom.UTC().Format(time.RFC3339),
			m.MonthlyMinimum.String(),
			m.HourlyMinimum.String(),
			m.DailyMinimum.String(),
			m.EmployeePensionRate.String(),
			m.EmployerPensionRate.String(),
			m.SeveranceFundRate.String(),
			source,
			fetchedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert minimum entry: %w", err)
		}
	}

	return tx.Commit()
}

// LoadMinimums returns the cached minimums and the time they were fetched.
// Returns ErrCacheEmpty when no snapshot has been stored.
func (s *Store) LoadMinimums(ctx context.Context) ([]law.Minimum, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT effective_from, monthly_minimum, hourly_minimum, daily_minimum,
		       employee_pension_rate, employer_pension_rate, severance_fund_rate,
		       fetched_at
		FROM legal_minimums
		ORDER BY effective_from ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query minimums cache: %w", err)
	}
	defer rows.Close()

	var (
		entries   []law.Minimum
		fetchedAt time.Time
	)
	for rows.Next() {
		m, fetched, err := scanMinimum(rows)
		if err != nil {
			return nil, time.Time{}, err
		}
		entries = append(entries, m)
		if fetched.After(fetchedAt) {
			fetchedAt = fetched
		}
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}
	if len(entries) == 0 {
		return nil, time.Time{}, ErrCacheEmpty
	}

	return entries, fetchedAt, nil
}

func scanMinimum(rows *sql.Rows) (law.Minimum, time.Time, error) {
	var (
		m             law.Minimum
		effectiveFrom string
		fetchedAt     string
		monthly       string
		hourly        string
		daily         string
		employeeRate  string
		employerRate  string
		severanceRate string
	)

	err := rows.Scan(&effectiveFrom, &monthly, &hourly, &daily,
		&employeeRate, &employerRate, &severanceRate, &fetchedAt)
	if err != nil {
		return m, time.Time{}, fmt.Errorf("failed to scan minimum entry: %w", err)
	}

	if m.EffectiveFrom, err = time.Parse(time.RFC3339, effectiveFrom); err != nil {
		return m, time.Time{}, fmt.Errorf("failed to parse effective_from: %w", err)
	}
	fetched, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return m, time.Time{}, fmt.Errorf("failed to parse fetched_at: %w", err)
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&m.MonthlyMinimum, monthly},
		{&m.HourlyMinimum, hourly},
		{&m.DailyMinimum, daily},
		{&m.EmployeePensionRate, employeeRate},
		{&m.EmployerPensionRate, employerRate},
		{&m.SeveranceFundRate, severanceRate},
	}
	for _, f := range fields {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return m, time.Time{}, fmt.Errorf("failed to parse cached amount %q: %w", f.src, err)
		}
	}

	return m, fetched, nil
}

// =============================================================================
// EVALUATION RUNS
// =============================================================================

// RunRecord is one stored evaluation run with its aggregate outcome.
type RunRecord struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Source         string
	RecordCount    int
	CompliantCount int
	FailureCount   int
	ViolationCount int
	TotalOwed      decimal.Decimal
	ComplianceRate decimal.Decimal
	RiskLevel      string
	CreatedAt      time.Time
}

// RecordRun saves an evaluation run. Saving the same ID again overwrites the
// previous outcome.
func (s *Store) RecordRun(ctx context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO evaluation_runs
		(id, started_at, finished_at, source, record_count, compliant_count,
		 failure_count, violation_count, total_owed, compliance_rate, risk_level,
		 created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			source = excluded.source,
			record_count = excluded.record_count,
			compliant_count = excluded.compliant_count,
			failure_count = excluded.failure_count,
			violation_count = excluded.violation_count,
			total_owed = excluded.total_owed,
			compliance_rate = excluded.compliance_rate,
			risk_level = excluded.risk_level
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Source,
		run.RecordCount,
		run.CompliantCount,
		run.FailureCount,
		run.ViolationCount,
		run.TotalOwed.String(),
		run.ComplianceRate.String(),
		run.RiskLevel,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, most recently started first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, started_at, finished_at, source, record_count, compliant_count,
		       failure_count, violation_count, total_owed, compliance_rate,
		       risk_level, created_at
		FROM evaluation_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(rows *sql.Rows) (RunRecord, error) {
	var (
		run            RunRecord
		startedAt      string
		finishedAt     string
		createdAt      string
		totalOwed      string
		complianceRate string
	)

	err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Source,
		&run.RecordCount, &run.CompliantCount, &run.FailureCount,
		&run.ViolationCount, &totalOwed, &complianceRate, &run.RiskLevel,
		&createdAt)
	if err != nil {
		return run, fmt.Errorf("failed to scan run: %w", err)
	}

	if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return run, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
		return run, fmt.Errorf("failed to parse finished_at: %w", err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return run, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if run.TotalOwed, err = decimal.NewFromString(totalOwed); err != nil {
		return run, fmt.Errorf("failed to parse total_owed %q: %w", totalOwed, err)
	}
	if run.ComplianceRate, err = decimal.NewFromString(complianceRate); err != nil {
		return run, fmt.Errorf("failed to parse compliance_rate %q: %w", complianceRate, err)
	}

	return run, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"legal_minimums", "evaluation_runs"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
