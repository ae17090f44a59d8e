package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memorySnapshotStore is an in-memory SnapshotStore.
type memorySnapshotStore struct {
	mu        sync.Mutex
	snapshots map[int64]*Snapshot
	saveErr   error
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{snapshots: make(map[int64]*Snapshot)}
}

func (s *memorySnapshotStore) Load(ctx context.Context, clientID int64) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[clientID], nil
}

func (s *memorySnapshotStore) Save(ctx context.Context, clientID int64, snap *Snapshot) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[clientID] = snap
	return nil
}

// fakeReports serves a fixed latest report per client.
type fakeReports struct {
	latest map[int64]*models.ConsolidatedReport
	err    error
}

func (f *fakeReports) Latest(ctx context.Context, clientID int64) (*models.ConsolidatedReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.latest[clientID], nil
}

// fakeRows serves fixed dimension data and counts fetches. A non-zero
// delay holds each fetch open so callers can overlap it.
type fakeRows struct {
	mu      sync.Mutex
	data    *models.DimensionData
	err     error
	delay   time.Duration
	fetches int
}

func (f *fakeRows) Fetch(ctx context.Context, clientID int64, period models.Period) (*models.DimensionData, error) {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func cacheFixture(ttl time.Duration) (*Cache, *memorySnapshotStore, *fakeRows) {
	snapshots := newMemorySnapshotStore()
	reports := &fakeReports{latest: map[int64]*models.ConsolidatedReport{
		1: {ClientID: 1, MonthYear: "2025-07"},
	}}
	rows := &fakeRows{data: &models.DimensionData{
		Campaigns: []models.CampaignRow{
			{ClientID: 1, MonthYear: "2025-07", CampaignID: "c1", Spend: f64(100)},
		},
	}}
	cache := NewCache(snapshots, reports, rows, testEngine(), ttl, zap.NewNop(), nil)
	return cache, snapshots, rows
}

func TestGetRefreshesOnMiss(t *testing.T) {
	require := require.New(t)
	cache, snapshots, rows := cacheFixture(time.Hour)

	result, err := cache.Get(context.Background(), 1)
	require.NoError(err)
	require.Equal(SourceRefresh, result.Source)
	require.False(result.Stale)
	require.Equal(models.Period("2025-07"), result.Snapshot.MonthYear)
	require.Equal(100.0, result.Snapshot.Overview.TotalSpend)
	require.Equal(1, rows.fetches)

	// The computed snapshot was saved for subsequent gets.
	require.NotNil(snapshots.snapshots[1])
}

func TestGetServesFreshFromCache(t *testing.T) {
	require := require.New(t)
	cache, _, rows := cacheFixture(time.Hour)

	_, err := cache.Get(context.Background(), 1)
	require.NoError(err)

	result, err := cache.Get(context.Background(), 1)
	require.NoError(err)
	require.Equal(SourceCache, result.Source)
	require.False(result.Stale)
	require.Equal(1, rows.fetches)
}

func TestGetRecomputesWhenStale(t *testing.T) {
	require := require.New(t)
	cache, snapshots, rows := cacheFixture(time.Hour)

	snapshots.snapshots[1] = &Snapshot{
		ClientID:    1,
		LastUpdated: time.Now().Add(-2 * time.Hour),
	}

	result, err := cache.Get(context.Background(), 1)
	require.NoError(err)
	require.Equal(SourceRefresh, result.Source)
	require.Equal(1, rows.fetches)
}

func TestGetServesStaleWhenRefreshFails(t *testing.T) {
	require := require.New(t)
	cache, snapshots, rows := cacheFixture(time.Hour)

	stale := &Snapshot{
		ClientID:    1,
		MonthYear:   "2025-06",
		LastUpdated: time.Now().Add(-2 * time.Hour),
	}
	snapshots.snapshots[1] = stale
	rows.err = errors.New("connection refused")

	result, err := cache.Get(context.Background(), 1)
	require.NoError(err)
	require.Equal(SourceCache, result.Source)
	require.True(result.Stale)
	require.NotEmpty(result.Warning)
	require.Equal(models.Period("2025-06"), result.Snapshot.MonthYear)
}

func TestGetNoDataAnywhere(t *testing.T) {
	require := require.New(t)
	cache, _, _ := cacheFixture(time.Hour)

	_, err := cache.Get(context.Background(), 42)
	require.Error(err)
	require.ErrorIs(err, ErrNoData)
}

func TestConcurrentGetsShareOneRefresh(t *testing.T) {
	require := require.New(t)
	cache, _, rows := cacheFixture(time.Hour)
	rows.delay = 100 * time.Millisecond

	const callers = 8
	results := make([]*SnapshotResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Get(context.Background(), 1)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(errs[i])
		require.Equal(SourceRefresh, results[i].Source)
		require.Equal(models.Period("2025-07"), results[i].Snapshot.MonthYear)
	}

	// All callers shared a single recomputation.
	require.Equal(1, rows.fetches)
}

func TestRefreshBypassesTTL(t *testing.T) {
	require := require.New(t)
	cache, _, rows := cacheFixture(time.Hour)

	_, err := cache.Get(context.Background(), 1)
	require.NoError(err)
	require.Equal(1, rows.fetches)

	result, err := cache.Refresh(context.Background(), 1)
	require.NoError(err)
	require.Equal(SourceRefresh, result.Source)
	require.Equal(2, rows.fetches)
}

func TestRefreshSurvivesSaveFailure(t *testing.T) {
	require := require.New(t)
	cache, snapshots, _ := cacheFixture(time.Hour)
	snapshots.saveErr = errors.New("redis down")

	result, err := cache.Refresh(context.Background(), 1)
	require.NoError(err)
	require.Equal(100.0, result.Snapshot.Overview.TotalSpend)
}
