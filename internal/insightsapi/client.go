package insightsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/radiusdt/ads-insights/internal/config"
	"github.com/radiusdt/ads-insights/internal/metrics"
	"github.com/radiusdt/ads-insights/internal/models"
	"go.uber.org/zap"
)

// baseFields are requested on every dimension.
var baseFields = []string{
	"impressions", "reach", "frequency", "clicks", "spend", "cpc", "ctr",
	"actions", "action_values", "purchase_roas", "date_start", "date_stop",
}

// dimensionQuery holds the per-dimension request parameters.
type dimensionQuery struct {
	level      string
	breakdowns string
	fields     []string
}

var dimensionQueries = map[models.Dimension]dimensionQuery{
	models.DimensionCampaign: {
		level:  "campaign",
		fields: []string{"campaign_id", "campaign_name", "objective", "effective_status"},
	},
	models.DimensionDemographic: {
		breakdowns: "age,gender",
	},
	models.DimensionRegional: {
		breakdowns: "region",
	},
	models.DimensionDevice: {
		breakdowns: "device_platform",
	},
	models.DimensionPlatform: {
		breakdowns: "publisher_platform,platform_position",
	},
	models.DimensionAd: {
		level:  "ad",
		fields: []string{"ad_id", "ad_name", "campaign_id", "campaign_name"},
	},
}

// Client talks to the ads platform's insights endpoints.
type Client struct {
	baseURL    string
	version    string
	token      string
	maxPages   int
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewClient creates an insights API client from platform configuration.
func NewClient(cfg config.PlatformConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		version:    cfg.APIVersion,
		token:      cfg.AccessToken,
		maxPages:   cfg.MaxPages,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:  logger,
		metrics: m,
	}
}

// insightsPage is one page of the paginated insights response.
type insightsPage struct {
	Data   []models.RawInsight `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

// VerifyAccount checks that the account exists and the token may read it.
// Called before any dimension fetch so invalid accounts fail fast.
func (c *Client) VerifyAccount(ctx context.Context, accountID string) error {
	if accountID == "" {
		return fmt.Errorf("account id is required")
	}

	u := fmt.Sprintf("%s/%s/act_%s?fields=id&access_token=%s",
		c.baseURL, c.version, url.PathEscape(accountID), url.QueryEscape(c.token))

	var page json.RawMessage
	if err := c.getJSON(ctx, u, &page); err != nil {
		return fmt.Errorf("account verification failed: %w", err)
	}
	return nil
}

// FetchInsights fetches all records for one breakdown dimension over the
// given date range, following pagination until exhaustion or the page cap.
func (c *Client) FetchInsights(ctx context.Context, accountID string, dim models.Dimension, since, until string) ([]models.RawInsight, error) {
	q, ok := dimensionQueries[dim]
	if !ok {
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}

	fields := append(append([]string{}, q.fields...), baseFields...)

	params := url.Values{}
	params.Set("access_token", c.token)
	params.Set("since", since)
	params.Set("until", until)
	params.Set("fields", strings.Join(fields, ","))
	if q.level != "" {
		params.Set("level", q.level)
	}
	if q.breakdowns != "" {
		params.Set("breakdowns", q.breakdowns)
	}

	next := fmt.Sprintf("%s/%s/act_%s/insights?%s",
		c.baseURL, c.version, url.PathEscape(accountID), params.Encode())

	var records []models.RawInsight
	for page := 0; next != "" && page < c.maxPages; page++ {
		var p insightsPage
		if err := c.getJSON(ctx, next, &p); err != nil {
			return nil, fmt.Errorf("fetch %s insights: %w", dim, err)
		}
		records = append(records, p.Data...)
		next = p.Paging.Next
	}

	if next != "" {
		c.logger.Warn("insights pagination truncated at page cap",
			zap.String("dimension", string(dim)),
			zap.Int("max_pages", c.maxPages),
		)
	}

	return records, nil
}

// getJSON performs a GET with bounded retry for transient failures.
// 5xx responses and timeouts are retried with exponential backoff; 4xx
// responses are permanent and returned immediately.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	var lastErr error

	delay := c.retryDelay
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		err := c.doGet(ctx, rawURL, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransient(err) {
			return err
		}
		c.metrics.RecordAPIRetry(retryReason(err))
		c.logger.Warn("retrying platform request",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return lastErr
}

func (c *Client) doGet(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var env errorEnvelope
		if jsonErr := json.Unmarshal(body, &env); jsonErr == nil && env.Error.Message != "" {
			env.Error.HTTPStatus = resp.StatusCode
			if env.Error.IsAuthError() {
				return fmt.Errorf("%w: %s", ErrUnauthorized, env.Error.Message)
			}
			return &env.Error
		}
		apiErr := &APIError{
			Message:    http.StatusText(resp.StatusCode),
			HTTPStatus: resp.StatusCode,
		}
		if apiErr.IsAuthError() {
			return fmt.Errorf("%w: http %d", ErrUnauthorized, resp.StatusCode)
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// isTransient reports whether an error should be retried.
func isTransient(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	// Network errors and timeouts surface as wrapped url.Error values.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func retryReason(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return "server_error"
	}
	return "network"
}
