package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/radiusdt/ads-insights/internal/insightsapi"
	"github.com/radiusdt/ads-insights/internal/metrics"
	"github.com/radiusdt/ads-insights/internal/models"
	"go.uber.org/zap"
)

// InsightsFetcher is the slice of the platform API client the collector
// needs. The concrete implementation lives in internal/insightsapi.
type InsightsFetcher interface {
	VerifyAccount(ctx context.Context, accountID string) error
	FetchInsights(ctx context.Context, accountID string, dim models.Dimension, since, until string) ([]models.RawInsight, error)
}

// Collector fetches raw performance records across all breakdown
// dimensions for one account and date range.
type Collector struct {
	api     InsightsFetcher
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewCollector creates a collector backed by the given API client.
func NewCollector(api InsightsFetcher, logger *zap.Logger, m *metrics.Metrics) *Collector {
	return &Collector{
		api:     api,
		logger:  logger,
		metrics: m,
	}
}

// Collect fetches every dimension for the account over [since, until]
// (both "YYYY-MM-DD"). Dimension fetches run concurrently; a failure on one
// dimension is recorded in the summary and never aborts the others. Only
// account-level auth failures abort the whole run.
func (c *Collector) Collect(ctx context.Context, accountID, since, until string) (*models.CollectionResult, error) {
	start := time.Now()

	if accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}
	monthYear, err := monthOf(since)
	if err != nil {
		return nil, err
	}

	if err := c.api.VerifyAccount(ctx, accountID); err != nil {
		c.metrics.RecordCollection("unauthorized", time.Since(start))
		return nil, fmt.Errorf("account %s rejected by platform: %w", accountID, err)
	}

	type dimResult struct {
		records []models.RawInsight
		err     error
	}

	dims := models.AllDimensions()
	results := make([]dimResult, len(dims))

	var wg sync.WaitGroup
	for i, dim := range dims {
		wg.Add(1)
		go func(i int, dim models.Dimension) {
			defer wg.Done()
			records, err := c.api.FetchInsights(ctx, accountID, dim, since, until)
			results[i] = dimResult{records: records, err: err}
		}(i, dim)
	}
	wg.Wait()

	result := &models.CollectionResult{
		RunID:      uuid.NewString(),
		AccountID:  accountID,
		MonthYear:  monthYear,
		Dimensions: make(map[models.Dimension][]models.RawInsight, len(dims)),
	}

	for i, dim := range dims {
		r := results[i]
		if r.err != nil {
			// A token that went bad mid-run invalidates the whole collection.
			if errors.Is(r.err, insightsapi.ErrUnauthorized) {
				c.metrics.RecordCollection("unauthorized", time.Since(start))
				return nil, fmt.Errorf("authorization lost during collection: %w", r.err)
			}
			c.logger.Error("dimension fetch failed",
				zap.String("account_id", accountID),
				zap.String("dimension", string(dim)),
				zap.Error(r.err),
			)
			c.metrics.RecordDimensionFailure(string(dim))
			result.Dimensions[dim] = []models.RawInsight{}
			result.Summary.FailedEndpoints = append(result.Summary.FailedEndpoints, string(dim))
			continue
		}

		if r.records == nil {
			r.records = []models.RawInsight{}
		}
		result.Dimensions[dim] = r.records
		result.Summary.TotalRecords += len(r.records)
		result.Summary.SuccessfulEndpoints++
		c.metrics.RecordRecordsCollected(string(dim), len(r.records))

		if len(r.records) == 0 {
			result.Summary.Warnings = append(result.Summary.Warnings,
				fmt.Sprintf("dimension %s returned no records for %s", dim, monthYear))
		}
	}
	sort.Strings(result.Summary.FailedEndpoints)

	status := "ok"
	if len(result.Summary.FailedEndpoints) > 0 {
		status = "partial"
	}
	c.metrics.RecordCollection(status, time.Since(start))

	c.logger.Info("collection finished",
		zap.String("account_id", accountID),
		zap.String("month_year", monthYear.String()),
		zap.Int("total_records", result.Summary.TotalRecords),
		zap.Int("successful_endpoints", result.Summary.SuccessfulEndpoints),
		zap.Strings("failed_endpoints", result.Summary.FailedEndpoints),
	)

	return result, nil
}

// monthOf derives the period identifier from the range start date.
func monthOf(since string) (models.Period, error) {
	t, err := time.Parse("2006-01-02", since)
	if err != nil {
		return "", fmt.Errorf("invalid since date %q: %w", since, err)
	}
	return models.PeriodOf(t), nil
}
