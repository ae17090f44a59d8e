package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the insights pipeline.
type Metrics struct {
	// Collection metrics
	CollectionRuns     *prometheus.CounterVec
	CollectionDuration *prometheus.HistogramVec
	DimensionFailures  *prometheus.CounterVec
	RecordsCollected   *prometheus.CounterVec
	APIRetries         *prometheus.CounterVec

	// Storage metrics
	RecordsUpserted *prometheus.CounterVec
	StorageFailures *prometheus.CounterVec

	// Cache metrics
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	StaleServes    prometheus.Counter
	CacheRefreshes *prometheus.CounterVec

	// Batch metrics
	BatchRuns     *prometheus.CounterVec
	BatchDuration prometheus.Histogram
	ClientRuns    *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		CollectionRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collection_runs_total",
				Help:      "Total number of collection runs",
			},
			[]string{"status"},
		),
		CollectionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "collection_duration_seconds",
				Help:      "Collection run duration in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"status"},
		),
		DimensionFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dimension_failures_total",
				Help:      "Failed dimension endpoint fetches",
			},
			[]string{"dimension"},
		),
		RecordsCollected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_collected_total",
				Help:      "Raw records collected from the ads platform",
			},
			[]string{"dimension"},
		),
		APIRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_retries_total",
				Help:      "Retried ads platform API requests",
			},
			[]string{"reason"},
		),
		RecordsUpserted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_upserted_total",
				Help:      "Rows upserted into dimension tables",
			},
			[]string{"dimension"},
		),
		StorageFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_failures_total",
				Help:      "Failed dimension upserts",
			},
			[]string{"dimension"},
		),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Analytics cache hits within TTL",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Analytics cache misses requiring refresh",
		}),
		StaleServes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_stale_serves_total",
			Help:      "Stale snapshots served after refresh failure",
		}),
		CacheRefreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_refreshes_total",
				Help:      "Analytics cache refresh attempts",
			},
			[]string{"status"},
		),
		BatchRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_runs_total",
				Help:      "Batch collection runs",
			},
			[]string{"status"},
		),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Batch run duration in seconds",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 1800},
		}),
		ClientRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_runs_total",
				Help:      "Per-client pipeline runs within batches",
			},
			[]string{"status"},
		),
	}
}

// RecordCollection records the outcome and duration of a collection run.
func (m *Metrics) RecordCollection(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.CollectionRuns.WithLabelValues(status).Inc()
	m.CollectionDuration.WithLabelValues(status).Observe(d.Seconds())
}

// RecordDimensionFailure records a failed dimension endpoint fetch.
func (m *Metrics) RecordDimensionFailure(dimension string) {
	if m == nil {
		return
	}
	m.DimensionFailures.WithLabelValues(dimension).Inc()
}

// RecordRecordsCollected records raw records fetched for a dimension.
func (m *Metrics) RecordRecordsCollected(dimension string, n int) {
	if m == nil {
		return
	}
	m.RecordsCollected.WithLabelValues(dimension).Add(float64(n))
}

// RecordAPIRetry records a retried platform request.
func (m *Metrics) RecordAPIRetry(reason string) {
	if m == nil {
		return
	}
	m.APIRetries.WithLabelValues(reason).Inc()
}

// RecordUpsert records rows written to a dimension table.
func (m *Metrics) RecordUpsert(dimension string, rows int64) {
	if m == nil {
		return
	}
	m.RecordsUpserted.WithLabelValues(dimension).Add(float64(rows))
}

// RecordStorageFailure records a failed dimension upsert.
func (m *Metrics) RecordStorageFailure(dimension string) {
	if m == nil {
		return
	}
	m.StorageFailures.WithLabelValues(dimension).Inc()
}

// RecordCacheHit records a snapshot served fresh from cache.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// RecordCacheMiss records a get that required a refresh.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

// RecordStaleServe records a stale snapshot served after a failed refresh.
func (m *Metrics) RecordStaleServe() {
	if m == nil {
		return
	}
	m.StaleServes.Inc()
}

// RecordCacheRefresh records a refresh attempt outcome.
func (m *Metrics) RecordCacheRefresh(status string) {
	if m == nil {
		return
	}
	m.CacheRefreshes.WithLabelValues(status).Inc()
}

// RecordBatch records the outcome and duration of a batch run.
func (m *Metrics) RecordBatch(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.BatchRuns.WithLabelValues(status).Inc()
	m.BatchDuration.Observe(d.Seconds())
}

// RecordClientRun records one per-client outcome within a batch.
func (m *Metrics) RecordClientRun(status string) {
	if m == nil {
		return
	}
	m.ClientRuns.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
