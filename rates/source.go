/*
source.go - Cached minimums table with scheduled refresh

PURPOSE:
  Owns the law.Table the engine evaluates against. Starts from the SQLite
  cache when fresh, else the built-in history; swaps in feed snapshots on
  refresh. Tables are immutable, so in-flight evaluations keep the snapshot
  they started with while later requests see the new one.

REFRESH:
  Manual via Refresh(), or scheduled with a cron spec (default deployment
  uses "0 3 * * *", daily at 03:00). Successful refreshes persist the
  snapshot so the next process start does not need the feed.

SEE ALSO:
  - client.go: feed fetch and parsing
  - store/sqlite/sqlite.go: the cache implementation
*/
package rates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/warp/compliance-engine/law"
	"github.com/warp/compliance-engine/store/sqlite"
)

// CacheStore persists feed snapshots between process runs.
// *sqlite.Store satisfies this.
type CacheStore interface {
	SaveMinimums(ctx context.Context, entries []law.Minimum, source string, fetchedAt time.Time) error
	LoadMinimums(ctx context.Context) ([]law.Minimum, time.Time, error)
}

// Source holds the current statutory minimums table.
type Source struct {
	client *Client
	cache  CacheStore
	ttl    time.Duration
	log    zerolog.Logger

	// Now supplies the current time. Overridable in tests.
	Now func() time.Time

	// OnRefresh observes refresh outcomes ("ok" or "error") when set.
	OnRefresh func(outcome string)

	mu        sync.RWMutex
	table     *law.Table
	fetchedAt time.Time

	cron *cron.Cron
}

// NewSource creates a source seeded with the built-in table. Client may be
// nil when no feed is configured; cache may be nil to skip persistence.
func NewSource(client *Client, cache CacheStore, ttl time.Duration, log zerolog.Logger) *Source {
	return &Source{
		client: client,
		cache:  cache,
		ttl:    ttl,
		log:    log,
		Now:    time.Now,
		table:  law.DefaultTable(),
	}
}

// Table returns the current minimums table. The returned table is immutable;
// callers evaluate whole batches against the snapshot they received.
func (s *Source) Table() *law.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// FetchedAt returns when the current table was fetched from the feed or
// cache. Zero while the built-in table is active.
func (s *Source) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

// Bootstrap loads the cached snapshot when it is fresher than the TTL.
// An empty cache is normal on first run and leaves the built-in table
// active; a corrupt cache surfaces as an error for the caller to log.
func (s *Source) Bootstrap(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	entries, fetchedAt, err := s.cache.LoadMinimums(ctx)
	if err != nil {
		if errors.Is(err, sqlite.ErrCacheEmpty) {
			s.log.Debug().Msg("minimums cache empty, using built-in table")
			return nil
		}
		return fmt.Errorf("failed to read minimums cache: %w", err)
	}

	age := s.Now().Sub(fetchedAt)
	if age > s.ttl {
		s.log.Info().Dur("age", age).Msg("minimums cache stale, using built-in table")
		return nil
	}

	table, err := law.NewTable(entries)
	if err != nil {
		return fmt.Errorf("cached minimums are invalid: %w", err)
	}

	s.swap(table, fetchedAt)
	s.log.Info().Int("entries", table.Len()).Time("fetched_at", fetchedAt).
		Msg("statutory minimums loaded from cache")
	return nil
}

// Refresh fetches the feed, swaps in the new table, and persists the
// snapshot. The old table stays active when the fetch fails.
func (s *Source) Refresh(ctx context.Context) error {
	if s.client == nil {
		return errors.New("no rates feed configured")
	}

	table, entries, err := s.client.FetchTable(ctx)
	if err != nil {
		s.observe("error")
		return err
	}

	now := s.Now()
	s.swap(table, now)

	if s.cache != nil {
		if err := s.cache.SaveMinimums(ctx, entries, s.client.url, now); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist minimums cache")
		}
	}

	s.observe("ok")
	s.log.Info().Int("entries", table.Len()).Msg("statutory minimums refreshed")
	return nil
}

// StartSchedule begins refreshing on the given cron spec.
func (s *Source) StartSchedule(spec string) error {
	if s.client == nil {
		return errors.New("no rates feed configured")
	}

	c := cron.New(cron.WithLogger(cronLogger{log: s.log}))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			s.log.Error().Err(err).Msg("scheduled rates refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh spec %q: %w", spec, err)
	}

	c.Start()

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	s.log.Info().Str("spec", spec).Msg("rates refresh scheduled")
	return nil
}

// StopSchedule stops the refresh schedule and waits for a running job to
// finish. Safe to call when no schedule was started.
func (s *Source) StopSchedule() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
		s.log.Info().Msg("rates refresh schedule stopped")
	}
}

func (s *Source) swap(table *law.Table, fetchedAt time.Time) {
	s.mu.Lock()
	s.table = table
	s.fetchedAt = fetchedAt
	s.mu.Unlock()
}

func (s *Source) observe(outcome string) {
	if s.OnRefresh != nil {
		s.OnRefresh(outcome)
	}
}

// cronLogger adapts zerolog to the cron logging interface. Cron chatter is
// demoted to debug; real errors keep their level.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
