package pipeline

import (
	"testing"

	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func transformOne(t *testing.T, dim models.Dimension, rec models.RawInsight) (*models.TransformResult, models.Insight) {
	t.Helper()
	tr := NewTransformer(zap.NewNop())
	out := tr.Transform(&models.CollectionResult{
		AccountID: "123",
		MonthYear: "2025-07",
		Dimensions: map[models.Dimension][]models.RawInsight{
			dim: {rec},
		},
	})
	require.Len(t, out.Dimensions[dim], 1)
	return out, out.Dimensions[dim][0]
}

func TestTransformTypedMetrics(t *testing.T) {
	require := require.New(t)

	_, ins := transformOne(t, models.DimensionCampaign, models.RawInsight{
		CampaignID:  "c1",
		Impressions: "2000",
		Clicks:      "40",
		Spend:       "100.50",
		CTR:         "2.0",
	})

	require.NotNil(ins.Impressions)
	require.Equal(int64(2000), *ins.Impressions)
	require.NotNil(ins.Clicks)
	require.Equal(int64(40), *ins.Clicks)
	require.NotNil(ins.Spend)
	require.Equal(100.50, *ins.Spend)
	require.NotNil(ins.CTR)
	require.Equal(2.0, *ins.CTR)

	// Absent metrics stay nil, not zero.
	require.Nil(ins.Reach)
	require.Nil(ins.Frequency)
	require.Nil(ins.CPC)
}

func TestTransformCountWithDecimalTail(t *testing.T) {
	require := require.New(t)

	out, ins := transformOne(t, models.DimensionCampaign, models.RawInsight{
		CampaignID:  "c1",
		Impressions: "2000.0",
	})

	require.NotNil(ins.Impressions)
	require.Equal(int64(2000), *ins.Impressions)

	// The coercion is recorded as a transformation.
	require.Len(out.Transformations, 1)
	require.Equal("impressions", out.Transformations[0].Field)
	require.Equal("2000.0", out.Transformations[0].Before)
	require.Equal("2000", out.Transformations[0].After)
}

func TestTransformUnparseableBecomesNilWithWarning(t *testing.T) {
	require := require.New(t)

	out, ins := transformOne(t, models.DimensionCampaign, models.RawInsight{
		CampaignID:  "c1",
		Impressions: "many",
		Spend:       "free",
	})

	require.Nil(ins.Impressions)
	require.Nil(ins.Spend)
	require.Len(out.Warnings, 2)
	// The row itself is never dropped.
	require.Equal("c1", ins.CampaignID)
}

func TestTransformDateNormalization(t *testing.T) {
	require := require.New(t)

	out, ins := transformOne(t, models.DimensionCampaign, models.RawInsight{
		CampaignID: "c1",
		DateStart:  "2025/07/01",
		DateStop:   "2025-07-31",
	})

	require.Equal("2025-07-01", ins.DateStart)
	require.Equal("2025-07-31", ins.DateStop)

	// Only the reformatted date is recorded as a change.
	require.Len(out.Transformations, 1)
	require.Equal("date_start", out.Transformations[0].Field)
}

func TestTransformUnrecognizedDateLeftAsIs(t *testing.T) {
	require := require.New(t)

	out, ins := transformOne(t, models.DimensionCampaign, models.RawInsight{
		CampaignID: "c1",
		DateStart:  "first of july",
	})

	require.Equal("first of july", ins.DateStart)
	require.Len(out.Warnings, 1)
	require.Contains(out.Warnings[0], "unrecognized date")
}

func TestTransformFlattensPurchaseActions(t *testing.T) {
	require := require.New(t)

	_, ins := transformOne(t, models.DimensionCampaign, models.RawInsight{
		CampaignID: "c1",
		Actions: []models.ActionEntry{
			{ActionType: "purchase", Value: "3"},
			{ActionType: "omni_purchase", Value: "2"},
			{ActionType: "link_click", Value: "50"},
		},
		ActionValues: []models.ActionEntry{
			{ActionType: "purchase", Value: "150.25"},
		},
		PurchaseROAS: []models.ActionEntry{
			{ActionType: "omni_purchase", Value: "1.5"},
		},
	})

	require.NotNil(ins.Conversions)
	require.Equal(5.0, *ins.Conversions)
	require.NotNil(ins.ConversionValue)
	require.Equal(150.25, *ins.ConversionValue)
	require.NotNil(ins.ROAS)
	require.Equal(1.5, *ins.ROAS)
}

func TestTransformNoPurchaseActionsStaysNil(t *testing.T) {
	require := require.New(t)

	_, ins := transformOne(t, models.DimensionCampaign, models.RawInsight{
		CampaignID: "c1",
		Actions: []models.ActionEntry{
			{ActionType: "link_click", Value: "50"},
		},
	})

	require.Nil(ins.Conversions)
	require.Nil(ins.ConversionValue)
	require.Nil(ins.ROAS)
}

func TestTransformCarriesBreakdownKeys(t *testing.T) {
	require := require.New(t)

	_, ins := transformOne(t, models.DimensionDemographic, models.RawInsight{
		Age:    "25-34",
		Gender: "female",
		Reach:  "1200",
	})

	require.Equal("25-34", ins.Age)
	require.Equal("female", ins.Gender)
	require.NotNil(ins.Reach)
	require.Equal(int64(1200), *ins.Reach)
}
