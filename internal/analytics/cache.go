package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/radiusdt/ads-insights/internal/metrics"
	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoData is returned when neither a cached snapshot nor stored rows
// exist for the client.
var ErrNoData = errors.New("no data available")

// SnapshotSource answers "what is the newest period with stored data".
type SnapshotSource interface {
	Latest(ctx context.Context, clientID int64) (*models.ConsolidatedReport, error)
}

// RowSource loads the normalized dimension rows for one (client, period).
type RowSource interface {
	Fetch(ctx context.Context, clientID int64, period models.Period) (*models.DimensionData, error)
}

// SnapshotStore persists computed snapshots. Load returns (nil, nil) when
// no snapshot exists for the client.
type SnapshotStore interface {
	Load(ctx context.Context, clientID int64) (*Snapshot, error)
	Save(ctx context.Context, clientID int64, snap *Snapshot) error
}

// SnapshotResult is a snapshot plus how it was obtained. Stale snapshots
// carry a warning and must be flagged to the caller.
type SnapshotResult struct {
	Snapshot *Snapshot `json:"snapshot"`
	Source   string    `json:"source"`
	Stale    bool      `json:"stale,omitempty"`
	Warning  string    `json:"warning,omitempty"`
}

const (
	SourceCache   = "cache"
	SourceRefresh = "refresh"
)

// Cache serves analytics snapshots, recomputing from stored rows when the
// saved copy is missing or older than the TTL. Snapshots are kept without
// a store-side expiry so a stale copy survives refresh failures and can
// still be served, flagged, as a fallback.
type Cache struct {
	snapshots SnapshotStore
	reports   SnapshotSource
	rows      RowSource
	engine    *Engine
	ttl       time.Duration
	group     singleflight.Group
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewCache creates a snapshot cache over the given backing store.
func NewCache(snapshots SnapshotStore, reports SnapshotSource, rows RowSource, engine *Engine, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Cache {
	return &Cache{
		snapshots: snapshots,
		reports:   reports,
		rows:      rows,
		engine:    engine,
		ttl:       ttl,
		logger:    logger,
		metrics:   m,
	}
}

// Get returns the client's snapshot, fresh from cache when within the TTL
// and recomputed otherwise. When a recompute fails but a stale snapshot
// exists, the stale copy is served with a warning rather than an error.
func (c *Cache) Get(ctx context.Context, clientID int64) (*SnapshotResult, error) {
	cached, err := c.snapshots.Load(ctx, clientID)
	if err != nil {
		c.logger.Warn("failed to read cached snapshot",
			zap.Int64("client_id", clientID),
			zap.Error(err),
		)
	}

	if cached != nil && time.Since(cached.LastUpdated) < c.ttl {
		c.metrics.RecordCacheHit()
		return &SnapshotResult{Snapshot: cached, Source: SourceCache}, nil
	}
	c.metrics.RecordCacheMiss()

	snap, refreshErr := c.refresh(ctx, clientID)
	if refreshErr == nil {
		return &SnapshotResult{Snapshot: snap, Source: SourceRefresh}, nil
	}

	if cached != nil {
		c.metrics.RecordStaleServe()
		c.logger.Warn("serving stale snapshot after failed refresh",
			zap.Int64("client_id", clientID),
			zap.Time("last_updated", cached.LastUpdated),
			zap.Error(refreshErr),
		)
		return &SnapshotResult{
			Snapshot: cached,
			Source:   SourceCache,
			Stale:    true,
			Warning:  fmt.Sprintf("refresh failed, serving snapshot from %s", cached.LastUpdated.Format(time.RFC3339)),
		}, nil
	}

	return nil, refreshErr
}

// Refresh recomputes and stores the client's snapshot regardless of the
// cached copy's age.
func (c *Cache) Refresh(ctx context.Context, clientID int64) (*SnapshotResult, error) {
	snap, err := c.refresh(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &SnapshotResult{Snapshot: snap, Source: SourceRefresh}, nil
}

// refresh recomputes the snapshot from stored rows. Concurrent refreshes
// for the same client collapse into one computation.
func (c *Cache) refresh(ctx context.Context, clientID int64) (*Snapshot, error) {
	v, err, _ := c.group.Do(strconv.FormatInt(clientID, 10), func() (interface{}, error) {
		return c.recompute(ctx, clientID)
	})
	if err != nil {
		c.metrics.RecordCacheRefresh("error")
		return nil, err
	}
	c.metrics.RecordCacheRefresh("ok")
	return v.(*Snapshot), nil
}

func (c *Cache) recompute(ctx context.Context, clientID int64) (*Snapshot, error) {
	report, err := c.reports.Latest(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest report: %w", err)
	}
	if report == nil {
		return nil, fmt.Errorf("client %d: %w", clientID, ErrNoData)
	}

	data, err := c.rows.Fetch(ctx, clientID, report.MonthYear)
	if err != nil {
		return nil, fmt.Errorf("failed to load dimension rows: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("client %d period %s: %w", clientID, report.MonthYear, ErrNoData)
	}

	snap := c.engine.GenerateFullAnalytics(data)
	snap.ClientID = clientID
	snap.MonthYear = report.MonthYear
	snap.LastUpdated = time.Now().UTC()

	if err := c.snapshots.Save(ctx, clientID, snap); err != nil {
		// Still return the computed snapshot; only caching failed.
		c.logger.Warn("failed to cache snapshot",
			zap.Int64("client_id", clientID),
			zap.Error(err),
		)
	} else {
		c.logger.Info("snapshot refreshed",
			zap.Int64("client_id", clientID),
			zap.String("month_year", snap.MonthYear.String()),
		)
	}

	return snap, nil
}

// RedisSnapshotStore keeps snapshots in Redis as JSON, one key per client.
type RedisSnapshotStore struct {
	rdb *redis.Client
}

// NewRedisSnapshotStore creates a Redis-backed snapshot store.
func NewRedisSnapshotStore(rdb *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{rdb: rdb}
}

func snapshotKey(clientID int64) string {
	return fmt.Sprintf("analytics:snapshot:%d", clientID)
}

// Load reads the client's snapshot, (nil, nil) when none exists.
func (s *RedisSnapshotStore) Load(ctx context.Context, clientID int64) (*Snapshot, error) {
	raw, err := s.rdb.Get(ctx, snapshotKey(clientID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("corrupt cached snapshot: %w", err)
	}
	return &snap, nil
}

// Save overwrites the client's snapshot. No Redis expiry is set; staleness
// is judged against LastUpdated so an old snapshot stays available as a
// fallback when refresh fails.
func (s *RedisSnapshotStore) Save(ctx context.Context, clientID int64, snap *Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, snapshotKey(clientID), raw, 0).Err()
}
