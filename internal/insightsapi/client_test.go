package insightsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/radiusdt/ads-insights/internal/config"
	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(baseURL string) *Client {
	return NewClient(config.PlatformConfig{
		BaseURL:     baseURL,
		APIVersion:  "v19.0",
		AccessToken: "test-token",
		Timeout:     2 * time.Second,
		MaxPages:    10,
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
	}, zap.NewNop(), nil)
}

func writePage(w http.ResponseWriter, next string, records ...models.RawInsight) {
	page := map[string]any{
		"data": records,
		"paging": map[string]string{
			"next": next,
		},
	}
	_ = json.NewEncoder(w).Encode(page)
}

func TestFetchInsightsFollowsPagination(t *testing.T) {
	require := require.New(t)

	var firstQuery url.Values
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			writePage(w, "", models.RawInsight{CampaignID: "c3"})
			return
		}
		firstQuery = r.URL.Query()
		writePage(w, srv.URL+"/page?page=2&access_token=test-token",
			models.RawInsight{CampaignID: "c1"},
			models.RawInsight{CampaignID: "c2"},
		)
	}))
	defer srv.Close()

	records, err := testClient(srv.URL).FetchInsights(context.Background(), "123", models.DimensionCampaign, "2025-07-01", "2025-07-31")
	require.NoError(err)
	require.Len(records, 3)
	require.Equal("c1", records[0].CampaignID)
	require.Equal("c3", records[2].CampaignID)

	require.Equal("test-token", firstQuery.Get("access_token"))
	require.Equal("2025-07-01", firstQuery.Get("since"))
	require.Equal("2025-07-31", firstQuery.Get("until"))
	require.Equal("campaign", firstQuery.Get("level"))
	require.Contains(firstQuery.Get("fields"), "campaign_id")
	require.Contains(firstQuery.Get("fields"), "spend")
}

func TestFetchInsightsStopsAtPageCap(t *testing.T) {
	require := require.New(t)

	var pages atomic.Int64
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := pages.Add(1)
		writePage(w, fmt.Sprintf("%s/page?page=%d", srv.URL, n+1), models.RawInsight{CampaignID: fmt.Sprintf("c%d", n)})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.maxPages = 3

	records, err := c.FetchInsights(context.Background(), "123", models.DimensionCampaign, "2025-07-01", "2025-07-31")
	require.NoError(err)
	require.Len(records, 3)
	require.Equal(int64(3), pages.Load())
}

func TestFetchInsightsRetriesServerErrors(t *testing.T) {
	require := require.New(t)

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writePage(w, "", models.RawInsight{CampaignID: "c1"})
	}))
	defer srv.Close()

	records, err := testClient(srv.URL).FetchInsights(context.Background(), "123", models.DimensionRegional, "2025-07-01", "2025-07-31")
	require.NoError(err)
	require.Len(records, 1)
	require.Equal(int64(3), calls.Load())
}

func TestFetchInsightsDoesNotRetryClientErrors(t *testing.T) {
	require := require.New(t)

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorEnvelope{Error: APIError{
			Message: "unsupported breakdown",
			Type:    "GraphMethodException",
			Code:    100,
		}})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchInsights(context.Background(), "123", models.DimensionDevice, "2025-07-01", "2025-07-31")
	require.Error(err)
	require.Equal(int64(1), calls.Load())

	var apiErr *APIError
	require.ErrorAs(err, &apiErr)
	require.Equal(400, apiErr.HTTPStatus)
	require.Equal("unsupported breakdown", apiErr.Message)
}

func TestFetchInsightsAuthErrorIsUnauthorized(t *testing.T) {
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(errorEnvelope{Error: APIError{
			Message: "Error validating access token",
			Type:    "OAuthException",
			Code:    190,
		}})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchInsights(context.Background(), "123", models.DimensionCampaign, "2025-07-01", "2025-07-31")
	require.Error(err)
	require.ErrorIs(err, ErrUnauthorized)
}

func TestVerifyAccount(t *testing.T) {
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v19.0/act_123" {
			_, _ = w.Write([]byte(`{"id":"act_123"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(errorEnvelope{Error: APIError{
			Message: "Unknown account",
			Code:    803,
		}})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	require.NoError(c.VerifyAccount(context.Background(), "123"))
	require.Error(c.VerifyAccount(context.Background(), "999"))
	require.Error(c.VerifyAccount(context.Background(), ""))
}

func TestAPIErrorClassification(t *testing.T) {
	require := require.New(t)

	require.True((&APIError{HTTPStatus: 500}).Transient())
	require.True((&APIError{HTTPStatus: 503}).Transient())
	require.False((&APIError{HTTPStatus: 400}).Transient())

	require.True((&APIError{HTTPStatus: 401}).IsAuthError())
	require.True((&APIError{HTTPStatus: 403}).IsAuthError())
	require.True((&APIError{Code: 190}).IsAuthError())
	require.True((&APIError{Type: "OAuthException"}).IsAuthError())
	require.False((&APIError{HTTPStatus: 400, Code: 100}).IsAuthError())
}
