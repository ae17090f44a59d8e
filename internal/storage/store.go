package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/radiusdt/ads-insights/internal/metrics"
	"github.com/radiusdt/ads-insights/internal/models"
	"go.uber.org/zap"
)

// dimensionTables maps each dimension to its table name.
var dimensionTables = map[models.Dimension]string{
	models.DimensionCampaign:    "campaign_insights",
	models.DimensionDemographic: "demographic_insights",
	models.DimensionRegional:    "regional_insights",
	models.DimensionDevice:      "device_insights",
	models.DimensionPlatform:    "platform_insights",
	models.DimensionAd:          "ad_insights",
}

// StoreResult reports the outcome of one normalized-store write.
type StoreResult struct {
	Success         bool     `json:"success"`
	RecordsInserted int64    `json:"records_inserted"`
	TablesUpdated   []string `json:"tables_updated"`
	Errors          []string `json:"errors"`
}

// NormalizedStore maps transformed insights into per-dimension tables.
// Each dimension's upsert is independent: one failure is recorded without
// blocking the other five, and Success is true only when all succeeded.
type NormalizedStore struct {
	dims    DimensionStore
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewNormalizedStore creates a store over the given dimension backend.
func NewNormalizedStore(dims DimensionStore, logger *zap.Logger, m *metrics.Metrics) *NormalizedStore {
	return &NormalizedStore{
		dims:    dims,
		logger:  logger,
		metrics: m,
	}
}

// Store upserts all dimension records for (client, period). Re-running with
// identical input overwrites the same rows; rows are replaced wholesale,
// never merged field-by-field.
func (s *NormalizedStore) Store(ctx context.Context, clientID int64, period models.Period, dims map[models.Dimension][]models.Insight) *StoreResult {
	type dimOutcome struct {
		dimension models.Dimension
		inserted  int64
		skipped   int
		err       error
	}

	jobs := []struct {
		dimension models.Dimension
		run       func(insights []models.Insight) (int64, int, error)
	}{
		{models.DimensionCampaign, func(ins []models.Insight) (int64, int, error) {
			rows, skipped := mapCampaignRows(clientID, period, ins)
			n, err := s.dims.UpsertCampaigns(ctx, rows)
			return n, skipped, err
		}},
		{models.DimensionDemographic, func(ins []models.Insight) (int64, int, error) {
			rows, skipped := mapDemographicRows(clientID, period, ins)
			n, err := s.dims.UpsertDemographics(ctx, rows)
			return n, skipped, err
		}},
		{models.DimensionRegional, func(ins []models.Insight) (int64, int, error) {
			rows, skipped := mapRegionalRows(clientID, period, ins)
			n, err := s.dims.UpsertRegions(ctx, rows)
			return n, skipped, err
		}},
		{models.DimensionDevice, func(ins []models.Insight) (int64, int, error) {
			rows, skipped := mapDeviceRows(clientID, period, ins)
			n, err := s.dims.UpsertDevices(ctx, rows)
			return n, skipped, err
		}},
		{models.DimensionPlatform, func(ins []models.Insight) (int64, int, error) {
			rows, skipped := mapPlatformRows(clientID, period, ins)
			n, err := s.dims.UpsertPlatforms(ctx, rows)
			return n, skipped, err
		}},
		{models.DimensionAd, func(ins []models.Insight) (int64, int, error) {
			rows, skipped := mapAdRows(clientID, period, ins)
			n, err := s.dims.UpsertAds(ctx, rows)
			return n, skipped, err
		}},
	}

	outcomes := make([]dimOutcome, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		insights, ok := dims[job.dimension]
		if !ok {
			outcomes[i] = dimOutcome{dimension: job.dimension}
			continue
		}
		wg.Add(1)
		go func(i int, dim models.Dimension, run func([]models.Insight) (int64, int, error), ins []models.Insight) {
			defer wg.Done()
			n, skipped, err := run(ins)
			outcomes[i] = dimOutcome{dimension: dim, inserted: n, skipped: skipped, err: err}
		}(i, job.dimension, job.run, insights)
	}
	wg.Wait()

	result := &StoreResult{Success: true}
	for _, o := range outcomes {
		if o.err != nil {
			result.Success = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %v", o.dimension, o.err))
			s.metrics.RecordStorageFailure(string(o.dimension))
			s.logger.Error("dimension upsert failed",
				zap.Int64("client_id", clientID),
				zap.String("month_year", period.String()),
				zap.String("dimension", string(o.dimension)),
				zap.Error(o.err),
			)
			continue
		}
		if o.skipped > 0 {
			s.logger.Warn("records skipped for missing dimension key",
				zap.Int64("client_id", clientID),
				zap.String("dimension", string(o.dimension)),
				zap.Int("skipped", o.skipped),
			)
		}
		if o.inserted > 0 {
			result.RecordsInserted += o.inserted
			result.TablesUpdated = append(result.TablesUpdated, dimensionTables[o.dimension])
			s.metrics.RecordUpsert(string(o.dimension), o.inserted)
		}
	}
	sort.Strings(result.TablesUpdated)

	return result
}

// Fetch returns the stored dimension rows for (client, period), or nil when
// every dimension is empty. Absence of data is not an error.
func (s *NormalizedStore) Fetch(ctx context.Context, clientID int64, period models.Period) (*models.DimensionData, error) {
	var data models.DimensionData
	var err error

	if data.Campaigns, err = s.dims.FetchCampaigns(ctx, clientID, period); err != nil {
		return nil, err
	}
	if data.Demographics, err = s.dims.FetchDemographics(ctx, clientID, period); err != nil {
		return nil, err
	}
	if data.Regions, err = s.dims.FetchRegions(ctx, clientID, period); err != nil {
		return nil, err
	}
	if data.Devices, err = s.dims.FetchDevices(ctx, clientID, period); err != nil {
		return nil, err
	}
	if data.Platforms, err = s.dims.FetchPlatforms(ctx, clientID, period); err != nil {
		return nil, err
	}
	if data.Ads, err = s.dims.FetchAds(ctx, clientID, period); err != nil {
		return nil, err
	}

	if data.IsEmpty() {
		return nil, nil
	}
	return &data, nil
}
