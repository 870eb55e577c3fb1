package rates_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/law"
	"github.com/warp/compliance-engine/logging"
	"github.com/warp/compliance-engine/rates"
	"github.com/warp/compliance-engine/store/sqlite"
)

// === TEST HELPERS ===

type fakeCache struct {
	entries   []law.Minimum
	source    string
	fetchedAt time.Time
	saveErr   error
	loadErr   error
}

func (f *fakeCache) SaveMinimums(_ context.Context, entries []law.Minimum, source string, fetchedAt time.Time) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.entries = entries
	f.source = source
	f.fetchedAt = fetchedAt
	return nil
}

func (f *fakeCache) LoadMinimums(context.Context) ([]law.Minimum, time.Time, error) {
	if f.loadErr != nil {
		return nil, time.Time{}, f.loadErr
	}
	if len(f.entries) == 0 {
		return nil, time.Time{}, sqlite.ErrCacheEmpty
	}
	return f.entries, f.fetchedAt, nil
}

func cachedEntry() law.Minimum {
	return law.Minimum{
		EffectiveFrom:       law.Date(2024, time.April, 1),
		MonthlyMinimum:      d("5880.02"),
		HourlyMinimum:       d("32.31"),
		DailyMinimum:        d("271.34"),
		EmployeePensionRate: d("0.06"),
		EmployerPensionRate: d("0.065"),
		SeveranceFundRate:   d("0.0833"),
	}
}

func fixedNow() time.Time {
	return time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)
}

// === TESTS ===

func TestNewSource_StartsWithBuiltInTable(t *testing.T) {
	src := rates.NewSource(nil, nil, 24*time.Hour, logging.Nop())

	require.NotNil(t, src.Table())
	assert.Greater(t, src.Table().Len(), 10)
	assert.True(t, src.FetchedAt().IsZero())
}

func TestBootstrap_EmptyCacheKeepsBuiltIn(t *testing.T) {
	cache := &fakeCache{}
	src := rates.NewSource(nil, cache, 24*time.Hour, logging.Nop())

	require.NoError(t, src.Bootstrap(context.Background()))
	assert.True(t, src.FetchedAt().IsZero())
}

func TestBootstrap_FreshCacheWins(t *testing.T) {
	fetched := fixedNow().Add(-time.Hour)
	cache := &fakeCache{entries: []law.Minimum{cachedEntry()}, fetchedAt: fetched}
	src := rates.NewSource(nil, cache, 24*time.Hour, logging.Nop())
	src.Now = fixedNow

	require.NoError(t, src.Bootstrap(context.Background()))

	assert.Equal(t, 1, src.Table().Len())
	assert.True(t, src.FetchedAt().Equal(fetched))
}

func TestBootstrap_StaleCacheIgnored(t *testing.T) {
	cache := &fakeCache{
		entries:   []law.Minimum{cachedEntry()},
		fetchedAt: fixedNow().Add(-25 * time.Hour),
	}
	src := rates.NewSource(nil, cache, 24*time.Hour, logging.Nop())
	src.Now = fixedNow

	require.NoError(t, src.Bootstrap(context.Background()))

	assert.Greater(t, src.Table().Len(), 10)
	assert.True(t, src.FetchedAt().IsZero())
}

func TestBootstrap_CorruptCacheSurfaces(t *testing.T) {
	cache := &fakeCache{loadErr: errors.New("disk sector gone")}
	src := rates.NewSource(nil, cache, 24*time.Hour, logging.Nop())

	err := src.Bootstrap(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minimums cache")
}

func TestRefresh_SwapsPersistsAndReportsOutcome(t *testing.T) {
	srv := feedServer(t, http.StatusOK, sampleFeed)
	cache := &fakeCache{}
	src := rates.NewSource(rates.NewClient(srv.URL, logging.Nop()), cache, 24*time.Hour, logging.Nop())
	src.Now = fixedNow

	var outcomes []string
	src.OnRefresh = func(outcome string) { outcomes = append(outcomes, outcome) }

	require.NoError(t, src.Refresh(context.Background()))

	assert.Equal(t, 2, src.Table().Len())
	assert.True(t, src.FetchedAt().Equal(fixedNow()))
	assert.Len(t, cache.entries, 2)
	assert.Equal(t, srv.URL, cache.source)
	assert.Equal(t, []string{"ok"}, outcomes)
}

func TestRefresh_FetchFailureKeepsOldTable(t *testing.T) {
	srv := feedServer(t, http.StatusBadGateway, "down")
	src := rates.NewSource(rates.NewClient(srv.URL, logging.Nop()), nil, 24*time.Hour, logging.Nop())

	var outcomes []string
	src.OnRefresh = func(outcome string) { outcomes = append(outcomes, outcome) }

	before := src.Table()
	require.Error(t, src.Refresh(context.Background()))

	assert.Same(t, before, src.Table())
	assert.Equal(t, []string{"error"}, outcomes)
}

func TestRefresh_PersistFailureStillSwaps(t *testing.T) {
	srv := feedServer(t, http.StatusOK, sampleFeed)
	cache := &fakeCache{saveErr: errors.New("read-only filesystem")}
	src := rates.NewSource(rates.NewClient(srv.URL, logging.Nop()), cache, 24*time.Hour, logging.Nop())

	require.NoError(t, src.Refresh(context.Background()))
	assert.Equal(t, 2, src.Table().Len())
}

func TestRefresh_NoFeedConfigured(t *testing.T) {
	src := rates.NewSource(nil, nil, 24*time.Hour, logging.Nop())

	err := src.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rates feed")
}

func TestStartSchedule_RejectsBadSpec(t *testing.T) {
	srv := feedServer(t, http.StatusOK, sampleFeed)
	src := rates.NewSource(rates.NewClient(srv.URL, logging.Nop()), nil, 24*time.Hour, logging.Nop())

	err := src.StartSchedule("every day at dawn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid refresh spec")
}

func TestStartSchedule_RequiresFeed(t *testing.T) {
	src := rates.NewSource(nil, nil, 24*time.Hour, logging.Nop())

	assert.Error(t, src.StartSchedule("0 3 * * *"))
}

func TestSchedule_StartAndStop(t *testing.T) {
	srv := feedServer(t, http.StatusOK, sampleFeed)
	src := rates.NewSource(rates.NewClient(srv.URL, logging.Nop()), nil, 24*time.Hour, logging.Nop())

	require.NoError(t, src.StartSchedule("0 3 * * *"))
	src.StopSchedule()
	// Stopping twice is safe.
	src.StopSchedule()
}
