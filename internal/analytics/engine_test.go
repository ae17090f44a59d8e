package analytics

import (
	"encoding/json"
	"testing"

	"github.com/radiusdt/ads-insights/internal/config"
	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func testEngine() *Engine {
	return NewEngine(config.ROIConfig{
		ProfitableROAS: 2.0,
		BreakEvenROAS:  1.0,
	}, zap.NewNop())
}

func TestOverviewAndEngagement(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{
		Campaigns: []models.CampaignRow{
			{ClientID: 1, MonthYear: "2025-07", CampaignID: "c1", Spend: f64(100.50), Clicks: i64(40), Impressions: i64(2000)},
		},
	})

	require.Equal(int64(1), snap.ClientID)
	require.Equal(models.Period("2025-07"), snap.MonthYear)

	require.Equal(100.5, snap.Overview.TotalSpend)
	require.Equal(1, snap.Overview.TotalCampaigns)
	require.Equal(1, snap.Overview.ActiveCampaigns)
	require.Equal(int64(2000), snap.Overview.TotalImpressions)

	require.Equal(int64(40), snap.Engagement.TotalClicks)
	require.Equal(2.0, snap.Engagement.CTR)
	// 100.50 / 40 rounded to cents.
	require.Equal(2.51, snap.Engagement.AverageCPC)
}

func TestEmptyDataNeverDividesByZero(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{})
	require.Zero(snap.Engagement.CTR)
	require.Zero(snap.Engagement.AverageCPC)
	require.Zero(snap.Overview.TotalSpend)

	require.False(snap.Demographics.Available)
	require.False(snap.Regional.Available)
	require.False(snap.Devices.Available)
	require.False(snap.ROI.Available)
	require.False(snap.Availability.Campaigns)

	// Nil input behaves the same as empty input.
	require.NotNil(testEngine().GenerateFullAnalytics(nil))
}

func TestSpendIsSummedExactly(t *testing.T) {
	require := require.New(t)

	// Values chosen to drift under naive float accumulation.
	campaigns := make([]models.CampaignRow, 10)
	for i := range campaigns {
		campaigns[i] = models.CampaignRow{CampaignID: "c", Spend: f64(0.1)}
	}
	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{Campaigns: campaigns})
	require.Equal(1.0, snap.Overview.TotalSpend)
}

func TestImpressionsPreferMostGranularDimension(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{
		Campaigns: []models.CampaignRow{
			{CampaignID: "c1", Impressions: i64(2000)},
		},
		Ads: []models.AdRow{
			{AdID: "a1", Impressions: i64(900)},
			{AdID: "a2", Impressions: i64(950)},
		},
	})
	require.Equal(int64(1850), snap.Overview.TotalImpressions)
}

func TestCampaignTypeRollups(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{
		Campaigns: []models.CampaignRow{
			{CampaignID: "c1", Objective: "CONVERSIONS", Status: "ACTIVE", Spend: f64(60)},
			{CampaignID: "c2", Objective: "CONVERSIONS", Status: "PAUSED", Spend: f64(20)},
			{CampaignID: "c3", Objective: "AWARENESS", Status: "ACTIVE", Spend: f64(20)},
			{CampaignID: "c4", Spend: f64(0)},
		},
	})

	require.Len(snap.CampaignTypes, 3)

	// Sorted by total spend descending.
	conversions := snap.CampaignTypes[0]
	require.Equal("CONVERSIONS", conversions.Objective)
	require.Equal(80.0, conversions.TotalSpend)
	require.Equal(2, conversions.Count)
	require.Equal(40.0, conversions.AverageSpend)
	require.Equal(80.0, conversions.SpendShare)
	require.Equal(GroupStatusMixed, conversions.Status)

	awareness := snap.CampaignTypes[1]
	require.Equal("AWARENESS", awareness.Objective)
	require.Equal(GroupStatusActive, awareness.Status)

	unknown := snap.CampaignTypes[2]
	require.Equal("UNKNOWN", unknown.Objective)
	require.Equal(GroupStatusInactive, unknown.Status)
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{
		Campaigns: []models.CampaignRow{
			{ClientID: 7, MonthYear: "2025-07", CampaignID: "c1", Spend: f64(10), Conversions: f64(2), ConvValue: f64(30)},
		},
	})

	raw, err := json.Marshal(snap)
	require.NoError(err)

	var decoded Snapshot
	require.NoError(json.Unmarshal(raw, &decoded))
	require.Equal(snap.Overview, decoded.Overview)
	require.Equal(snap.ROI.Available, decoded.ROI.Available)
}
