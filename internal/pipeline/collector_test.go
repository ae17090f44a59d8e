package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/radiusdt/ads-insights/internal/insightsapi"
	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeFetcher serves canned per-dimension responses.
type fakeFetcher struct {
	verifyErr error
	records   map[models.Dimension][]models.RawInsight
	errs      map[models.Dimension]error
}

func (f *fakeFetcher) VerifyAccount(ctx context.Context, accountID string) error {
	return f.verifyErr
}

func (f *fakeFetcher) FetchInsights(ctx context.Context, accountID string, dim models.Dimension, since, until string) ([]models.RawInsight, error) {
	if err, ok := f.errs[dim]; ok {
		return nil, err
	}
	return f.records[dim], nil
}

func allDimensionRecords(n int) map[models.Dimension][]models.RawInsight {
	out := make(map[models.Dimension][]models.RawInsight)
	for _, dim := range models.AllDimensions() {
		records := make([]models.RawInsight, n)
		for i := range records {
			records[i] = models.RawInsight{CampaignID: fmt.Sprintf("c%d", i)}
		}
		out[dim] = records
	}
	return out
}

func TestCollectAllDimensions(t *testing.T) {
	require := require.New(t)

	c := NewCollector(&fakeFetcher{records: allDimensionRecords(2)}, zap.NewNop(), nil)
	result, err := c.Collect(context.Background(), "123", "2025-07-01", "2025-07-31")
	require.NoError(err)

	require.Equal("123", result.AccountID)
	require.Equal(models.Period("2025-07"), result.MonthYear)
	require.NotEmpty(result.RunID)
	require.Len(result.Dimensions, 6)
	require.Equal(12, result.Summary.TotalRecords)
	require.Equal(6, result.Summary.SuccessfulEndpoints)
	require.Empty(result.Summary.FailedEndpoints)
}

func TestCollectPartialFailure(t *testing.T) {
	require := require.New(t)

	f := &fakeFetcher{
		records: allDimensionRecords(1),
		errs: map[models.Dimension]error{
			models.DimensionRegional: errors.New("boom"),
			models.DimensionDevice:   errors.New("boom"),
		},
	}
	c := NewCollector(f, zap.NewNop(), nil)
	result, err := c.Collect(context.Background(), "123", "2025-07-01", "2025-07-31")
	require.NoError(err)

	require.Equal([]string{"device", "regional"}, result.Summary.FailedEndpoints)
	require.Equal(4, result.Summary.SuccessfulEndpoints)
	// Failed dimensions still get an empty array, never a nil hole.
	require.NotNil(result.Dimensions[models.DimensionRegional])
	require.Empty(result.Dimensions[models.DimensionRegional])
}

func TestCollectVerifyFailureIsFatal(t *testing.T) {
	require := require.New(t)

	f := &fakeFetcher{verifyErr: fmt.Errorf("%w: bad token", insightsapi.ErrUnauthorized)}
	c := NewCollector(f, zap.NewNop(), nil)

	_, err := c.Collect(context.Background(), "123", "2025-07-01", "2025-07-31")
	require.Error(err)
	require.ErrorIs(err, insightsapi.ErrUnauthorized)
}

func TestCollectAuthLossMidRunIsFatal(t *testing.T) {
	require := require.New(t)

	f := &fakeFetcher{
		records: allDimensionRecords(1),
		errs: map[models.Dimension]error{
			models.DimensionAd: fmt.Errorf("%w: token expired", insightsapi.ErrUnauthorized),
		},
	}
	c := NewCollector(f, zap.NewNop(), nil)

	_, err := c.Collect(context.Background(), "123", "2025-07-01", "2025-07-31")
	require.Error(err)
	require.ErrorIs(err, insightsapi.ErrUnauthorized)
}

func TestCollectEmptyDimensionWarns(t *testing.T) {
	require := require.New(t)

	records := allDimensionRecords(1)
	records[models.DimensionPlatform] = nil

	c := NewCollector(&fakeFetcher{records: records}, zap.NewNop(), nil)
	result, err := c.Collect(context.Background(), "123", "2025-07-01", "2025-07-31")
	require.NoError(err)

	require.Len(result.Summary.Warnings, 1)
	require.Contains(result.Summary.Warnings[0], "platform")
}

func TestCollectRequiresAccountAndDate(t *testing.T) {
	require := require.New(t)
	c := NewCollector(&fakeFetcher{}, zap.NewNop(), nil)

	_, err := c.Collect(context.Background(), "", "2025-07-01", "2025-07-31")
	require.Error(err)

	_, err = c.Collect(context.Background(), "123", "july", "2025-07-31")
	require.Error(err)
}
