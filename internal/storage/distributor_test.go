package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryReportRepo serves canned consolidated reports.
type memoryReportRepo struct {
	reports map[string]*models.ConsolidatedReport
	listErr error
}

func reportKey(clientID int64, period models.Period) string {
	return fmt.Sprintf("%d/%s", clientID, period)
}

func newMemoryReportRepo(reports ...*models.ConsolidatedReport) *memoryReportRepo {
	repo := &memoryReportRepo{reports: make(map[string]*models.ConsolidatedReport)}
	for _, r := range reports {
		repo.reports[reportKey(r.ClientID, r.MonthYear)] = r
	}
	return repo
}

func (m *memoryReportRepo) Save(ctx context.Context, report *models.ConsolidatedReport) error {
	m.reports[reportKey(report.ClientID, report.MonthYear)] = report
	return nil
}

func (m *memoryReportRepo) Get(ctx context.Context, clientID int64, period models.Period) (*models.ConsolidatedReport, error) {
	return m.reports[reportKey(clientID, period)], nil
}

func (m *memoryReportRepo) Latest(ctx context.Context, clientID int64) (*models.ConsolidatedReport, error) {
	var latest *models.ConsolidatedReport
	for _, r := range m.reports {
		if r.ClientID != clientID {
			continue
		}
		if latest == nil || r.MonthYear > latest.MonthYear {
			latest = r
		}
	}
	return latest, nil
}

func (m *memoryReportRepo) ListAll(ctx context.Context) ([]*models.ConsolidatedReport, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*models.ConsolidatedReport, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, r)
	}
	return out, nil
}

func fullReport(clientID int64, period models.Period) *models.ConsolidatedReport {
	dims := make(map[models.Dimension][]models.Insight)
	for _, dim := range models.AllDimensions() {
		dims[dim] = []models.Insight{}
	}
	dims[models.DimensionCampaign] = []models.Insight{
		{CampaignID: "c1", Spend: f64(25)},
	}
	dims[models.DimensionRegional] = []models.Insight{
		{Region: "Hesse", Clicks: i64(5)},
	}
	return &models.ConsolidatedReport{
		ClientID:    clientID,
		MonthYear:   period,
		Dimensions:  dims,
		CollectedAt: time.Now().UTC(),
	}
}

func TestDistributeOne(t *testing.T) {
	require := require.New(t)

	backend := newMemoryDimensionStore()
	store := NewNormalizedStore(backend, zap.NewNop(), nil)
	d := NewDistributor(newMemoryReportRepo(fullReport(1, "2025-07")), store, zap.NewNop())

	result := d.DistributeOne(context.Background(), 1, "2025-07")
	require.True(result.Success)
	require.Equal(int64(2), result.RecordsDistributed)
	require.Equal([]string{"campaign_insights", "regional_insights"}, result.TablesUpdated)
	require.Len(backend.campaigns, 1)
	require.Len(backend.regions, 1)
}

func TestDistributeOneMissingReport(t *testing.T) {
	require := require.New(t)

	store := NewNormalizedStore(newMemoryDimensionStore(), zap.NewNop(), nil)
	d := NewDistributor(newMemoryReportRepo(), store, zap.NewNop())

	result := d.DistributeOne(context.Background(), 9, "2025-07")
	require.False(result.Success)
	require.Len(result.Errors, 1)
	require.Contains(result.Errors[0], "no consolidated report")
}

func TestDistributeSkipsMissingDimension(t *testing.T) {
	require := require.New(t)

	report := fullReport(1, "2025-07")
	delete(report.Dimensions, models.DimensionDevice)

	backend := newMemoryDimensionStore()
	store := NewNormalizedStore(backend, zap.NewNop(), nil)
	d := NewDistributor(newMemoryReportRepo(report), store, zap.NewNop())

	result := d.DistributeOne(context.Background(), 1, "2025-07")
	// The present dimensions still distribute; the hole is reported.
	require.Equal(int64(2), result.RecordsDistributed)
	require.Len(result.Errors, 1)
	require.Contains(result.Errors[0], "device")
	require.Len(backend.campaigns, 1)
}

func TestDistributeAll(t *testing.T) {
	require := require.New(t)

	broken := fullReport(2, "2025-07")
	broken.Dimensions = map[models.Dimension][]models.Insight{}

	backend := newMemoryDimensionStore()
	store := NewNormalizedStore(backend, zap.NewNop(), nil)
	d := NewDistributor(newMemoryReportRepo(
		fullReport(1, "2025-06"),
		fullReport(1, "2025-07"),
		broken,
	), store, zap.NewNop())

	result := d.DistributeAll(context.Background())
	// The broken report contributes errors but never aborts the rest.
	require.Equal(int64(4), result.RecordsDistributed)
	require.Len(result.Errors, 6)
	require.Len(backend.campaigns, 2)
	require.Len(backend.regions, 2)
}

func TestDistributeAllListFailure(t *testing.T) {
	require := require.New(t)

	repo := newMemoryReportRepo()
	repo.listErr = errors.New("connection refused")
	store := NewNormalizedStore(newMemoryDimensionStore(), zap.NewNop(), nil)
	d := NewDistributor(repo, store, zap.NewNop())

	result := d.DistributeAll(context.Background())
	require.False(result.Success)
	require.Len(result.Errors, 1)
}
