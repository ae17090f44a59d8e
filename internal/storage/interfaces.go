package storage

import (
	"context"

	"github.com/radiusdt/ads-insights/internal/models"
)

// =============================================
// DIMENSION STORE
// =============================================

// DimensionStore persists normalized per-dimension rows. Every upsert is
// keyed by the dimension's natural key plus (client, period) and returns
// the exact number of rows written.
type DimensionStore interface {
	UpsertCampaigns(ctx context.Context, rows []models.CampaignRow) (int64, error)
	UpsertDemographics(ctx context.Context, rows []models.DemographicRow) (int64, error)
	UpsertRegions(ctx context.Context, rows []models.RegionalRow) (int64, error)
	UpsertDevices(ctx context.Context, rows []models.DeviceRow) (int64, error)
	UpsertPlatforms(ctx context.Context, rows []models.PlatformRow) (int64, error)
	UpsertAds(ctx context.Context, rows []models.AdRow) (int64, error)

	FetchCampaigns(ctx context.Context, clientID int64, period models.Period) ([]models.CampaignRow, error)
	FetchDemographics(ctx context.Context, clientID int64, period models.Period) ([]models.DemographicRow, error)
	FetchRegions(ctx context.Context, clientID int64, period models.Period) ([]models.RegionalRow, error)
	FetchDevices(ctx context.Context, clientID int64, period models.Period) ([]models.DeviceRow, error)
	FetchPlatforms(ctx context.Context, clientID int64, period models.Period) ([]models.PlatformRow, error)
	FetchAds(ctx context.Context, clientID int64, period models.Period) ([]models.AdRow, error)
}

// =============================================
// CLIENT REPOSITORY
// =============================================

// ClientRepo reads advertiser accounts. Administrative CRUD lives outside
// the pipeline; the orchestrator only needs to select eligible clients.
type ClientRepo interface {
	ListActive(ctx context.Context) ([]*models.Client, error)
	GetByID(ctx context.Context, id int64) (*models.Client, error)
	GetBySlug(ctx context.Context, slug string) (*models.Client, error)
}

// =============================================
// REPORT REPOSITORY
// =============================================

// ReportRepo persists consolidated reports, the raw six-array payload kept
// per (client, period) for reconciliation and cache refresh.
type ReportRepo interface {
	Save(ctx context.Context, report *models.ConsolidatedReport) error
	Get(ctx context.Context, clientID int64, period models.Period) (*models.ConsolidatedReport, error)
	Latest(ctx context.Context, clientID int64) (*models.ConsolidatedReport, error)
	ListAll(ctx context.Context) ([]*models.ConsolidatedReport, error)
}
