package analytics

import (
	"testing"

	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/stretchr/testify/require"
)

func TestDemographicsAggregation(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{
		Demographics: []models.DemographicRow{
			{Age: "25-34", Gender: "female", Spend: f64(60), Reach: i64(3000)},
			{Age: "25-34", Gender: "male", Spend: f64(20), Reach: i64(1000)},
			{Age: "35-44", Gender: "female", Spend: f64(20), Reach: i64(1000)},
		},
	})

	d := snap.Demographics
	require.True(d.Available)

	require.Len(d.AgeGroups, 2)
	require.Equal("25-34", d.AgeGroups[0].Age)
	require.Equal(80.0, d.AgeGroups[0].Spend)
	require.Equal(int64(4000), d.AgeGroups[0].Reach)
	require.Equal(80.0, d.AgeGroups[0].Share)

	require.Len(d.Genders, 2)
	require.Equal("female", d.Genders[0].Gender)
	require.Equal(80.0, d.Genders[0].Spend)

	// Reach-weighted midpoints: (29.5*4000 + 39.5*1000) / 5000.
	require.InDelta(31.5, d.AverageAge, 0.001)
}

func TestDemographicsUnavailableWhenEmpty(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{
		Campaigns: []models.CampaignRow{{CampaignID: "c1"}},
	})
	require.False(snap.Demographics.Available)
	require.Empty(snap.Demographics.AgeGroups)
	require.Zero(snap.Demographics.AverageAge)
}

func TestAverageAgeSkipsUnparseableBuckets(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{
		Demographics: []models.DemographicRow{
			{Age: "65+", Gender: "male", Reach: i64(1000)},
			{Age: "unknown", Gender: "male", Reach: i64(9000)},
		},
	})
	// "65+" maps to 70; the unparseable bucket carries no weight.
	require.InDelta(70.0, snap.Demographics.AverageAge, 0.001)
}

func TestAverageAgeZeroReach(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{
		Demographics: []models.DemographicRow{
			{Age: "25-34", Gender: "female", Spend: f64(10)},
		},
	})
	require.Zero(snap.Demographics.AverageAge)
}

func TestRegionalRanking(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{
		Regions: []models.RegionalRow{
			{Region: "Bavaria", Spend: f64(50), Clicks: i64(10), Impressions: i64(1000)},
			{Region: "Berlin", Spend: f64(30), Clicks: i64(30), Impressions: i64(1000)},
			{Region: "Hamburg", Spend: f64(20), Clicks: i64(10), Impressions: i64(1000)},
		},
	})

	r := snap.Regional
	require.True(r.Available)
	require.Len(r.Regions, 3)

	// Listed by spend rank.
	require.Equal("Bavaria", r.Regions[0].Region)
	require.Equal(1, r.Regions[0].SpendRank)
	require.Equal("Berlin", r.Regions[1].Region)
	require.Equal(2, r.Regions[1].SpendRank)
	require.Equal(3, r.Regions[2].SpendRank)

	// CTR ranks independently: Berlin leads at 3%.
	require.Equal(1, r.Regions[1].CTRRank)
	require.Equal(3.0, r.Regions[1].CTR)
	// Bavaria and Hamburg tie at 1%; the tie breaks alphabetically.
	require.Equal(2, r.Regions[0].CTRRank)
	require.Equal(3, r.Regions[2].CTRRank)

	require.Equal(50.0, r.Regions[0].Share)
}

func TestDevicesAndPlacements(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{
		Devices: []models.DeviceRow{
			{DevicePlatform: "mobile", Spend: f64(70), Clicks: i64(20)},
			{DevicePlatform: "desktop", Spend: f64(30), Clicks: i64(5)},
		},
		Platforms: []models.PlatformRow{
			{PublisherPlatform: "facebook", PlatformPosition: "feed", Spend: f64(60)},
			{PublisherPlatform: "facebook", PlatformPosition: "story", Spend: f64(25)},
			{PublisherPlatform: "instagram", PlatformPosition: "feed", Spend: f64(15)},
		},
	})

	d := snap.Devices
	require.True(d.Available)
	require.Len(d.Devices, 2)
	require.Equal("desktop", d.Devices[0].DevicePlatform)
	require.Equal("mobile", d.Devices[1].DevicePlatform)
	require.Equal(70.0, d.Devices[1].Spend)

	require.Len(d.Placements, 3)
	require.Equal("facebook", d.Placements[0].PublisherPlatform)
	require.Equal("feed", d.Placements[0].Position)
	require.Equal("story", d.Placements[1].Position)
	require.Equal("instagram", d.Placements[2].PublisherPlatform)
}

func TestDevicesAvailableWithOnlyPlacements(t *testing.T) {
	require := require.New(t)

	snap := testEngine().GenerateFullAnalytics(&models.DimensionData{
		Platforms: []models.PlatformRow{
			{PublisherPlatform: "facebook", PlatformPosition: "feed", Spend: f64(10)},
		},
	})
	require.True(snap.Devices.Available)
	require.Empty(snap.Devices.Devices)
	require.Len(snap.Devices.Placements, 1)
}
