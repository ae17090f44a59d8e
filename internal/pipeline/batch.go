package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/radiusdt/ads-insights/internal/config"
	"github.com/radiusdt/ads-insights/internal/metrics"
	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/radiusdt/ads-insights/internal/storage"
	"go.uber.org/zap"
)

// RecordStore is the slice of the normalized store the orchestrator needs.
type RecordStore interface {
	Store(ctx context.Context, clientID int64, period models.Period, dims map[models.Dimension][]models.Insight) *storage.StoreResult
}

// ReportSaver persists the consolidated report after a successful run.
type ReportSaver interface {
	Save(ctx context.Context, report *models.ConsolidatedReport) error
}

// BatchOptions control a multi-client run.
type BatchOptions struct {
	// ContinueOnError keeps the batch going past per-client failures.
	ContinueOnError bool
	// DelayBetweenClients is the pause after each client, a rate-limiting
	// measure against the platform's per-app quotas.
	DelayBetweenClients time.Duration
}

// OptionsFromConfig builds batch options from configuration defaults.
func OptionsFromConfig(cfg config.BatchConfig) BatchOptions {
	return BatchOptions{
		ContinueOnError:     cfg.ContinueOnError,
		DelayBetweenClients: cfg.DelayBetweenClients,
	}
}

// ClientResult is one client's entry in a batch result.
type ClientResult struct {
	ClientID         int64         `json:"client_id"`
	Slug             string        `json:"slug"`
	AccountID        string        `json:"account_id"`
	Success          bool          `json:"success"`
	Error            string        `json:"error,omitempty"`
	RecordsCollected int           `json:"records_collected"`
	RecordsStored    int64         `json:"records_stored"`
	FailedEndpoints  []string      `json:"failed_endpoints,omitempty"`
	Warnings         []string      `json:"warnings,omitempty"`
	Quality          QualityReport `json:"quality"`
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	TotalClients  int           `json:"total_clients"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	RecordsStored int64         `json:"records_stored"`
	Duration      time.Duration `json:"duration"`
	Aborted       bool          `json:"aborted,omitempty"`
}

// BatchResult is the outcome of one multi-client run. Success is true only
// if every client's run succeeded.
type BatchResult struct {
	Success bool           `json:"success"`
	Summary BatchSummary   `json:"summary"`
	Results []ClientResult `json:"results"`
}

// BatchOrchestrator drives collect, validate, transform and store across
// many clients, one at a time.
type BatchOrchestrator struct {
	collector   *Collector
	validator   *Validator
	transformer *Transformer
	store       RecordStore
	reports     ReportSaver
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// NewBatchOrchestrator wires the pipeline stages together.
func NewBatchOrchestrator(
	collector *Collector,
	validator *Validator,
	transformer *Transformer,
	store RecordStore,
	reports ReportSaver,
	logger *zap.Logger,
	m *metrics.Metrics,
) *BatchOrchestrator {
	return &BatchOrchestrator{
		collector:   collector,
		validator:   validator,
		transformer: transformer,
		store:       store,
		reports:     reports,
		logger:      logger,
		metrics:     m,
	}
}

// BatchCollectAndStore runs the full pipeline for every client, strictly
// sequentially with a delay between clients. The batch can be aborted
// between clients via ctx; results already produced are retained.
func (b *BatchOrchestrator) BatchCollectAndStore(ctx context.Context, clients []*models.Client, period models.Period, opts BatchOptions) *BatchResult {
	start := time.Now()
	result := &BatchResult{Success: true}

	b.logger.Info("batch run starting",
		zap.Int("clients", len(clients)),
		zap.String("period", period.String()),
		zap.Bool("continue_on_error", opts.ContinueOnError),
	)

	for i, client := range clients {
		if ctx.Err() != nil {
			result.Summary.Aborted = true
			b.logger.Warn("batch aborted between clients",
				zap.Int("completed", i),
				zap.Int("remaining", len(clients)-i),
			)
			break
		}

		cr := b.runClient(ctx, client, period)
		result.Results = append(result.Results, cr)
		result.Summary.RecordsStored += cr.RecordsStored

		if cr.Success {
			result.Summary.Succeeded++
			b.metrics.RecordClientRun("ok")
		} else {
			result.Summary.Failed++
			result.Success = false
			b.metrics.RecordClientRun("failed")
			if !opts.ContinueOnError {
				b.logger.Warn("batch halted at first failure",
					zap.Int64("client_id", client.ID),
					zap.String("error", cr.Error),
				)
				break
			}
		}

		if i < len(clients)-1 && opts.DelayBetweenClients > 0 {
			select {
			case <-time.After(opts.DelayBetweenClients):
			case <-ctx.Done():
			}
		}
	}

	result.Summary.TotalClients = len(result.Results)
	result.Summary.Duration = time.Since(start)

	status := "ok"
	if !result.Success {
		status = "failed"
	}
	b.metrics.RecordBatch(status, result.Summary.Duration)

	b.logger.Info("batch run finished",
		zap.Int("total", result.Summary.TotalClients),
		zap.Int("succeeded", result.Summary.Succeeded),
		zap.Int("failed", result.Summary.Failed),
		zap.Int64("records_stored", result.Summary.RecordsStored),
		zap.Duration("duration", result.Summary.Duration),
	)

	return result
}

// runClient executes one client's pipeline. Failures are captured in the
// result entry, never propagated to sibling clients.
func (b *BatchOrchestrator) runClient(ctx context.Context, client *models.Client, period models.Period) ClientResult {
	cr := ClientResult{
		ClientID:  client.ID,
		Slug:      client.Slug,
		AccountID: client.AccountID,
	}

	since, until, err := period.DateRange()
	if err != nil {
		cr.Error = err.Error()
		return cr
	}

	collected, err := b.collector.Collect(ctx, client.AccountID, since, until)
	if err != nil {
		cr.Error = fmt.Sprintf("collection failed: %v", err)
		return cr
	}
	cr.RecordsCollected = collected.Summary.TotalRecords
	cr.FailedEndpoints = collected.Summary.FailedEndpoints

	validation := b.validator.Validate(collected)
	if !validation.IsValid {
		cr.Error = fmt.Sprintf("validation failed: %s", strings.Join(validation.Errors, "; "))
		cr.Quality = BuildQualityReport(collected.Summary, validation, nil)
		return cr
	}
	cr.Warnings = append(cr.Warnings, validation.Warnings...)

	transformed := b.transformer.Transform(collected)
	cr.Warnings = append(cr.Warnings, transformed.Warnings...)
	cr.Quality = BuildQualityReport(collected.Summary, validation, transformed)

	stored := b.store.Store(ctx, client.ID, period, transformed.Dimensions)
	cr.RecordsStored = stored.RecordsInserted
	if !stored.Success {
		cr.Error = fmt.Sprintf("storage failed: %s", strings.Join(stored.Errors, "; "))
		return cr
	}

	report := &models.ConsolidatedReport{
		ClientID:    client.ID,
		MonthYear:   period,
		Dimensions:  transformed.Dimensions,
		Summary:     transformed.Summary,
		CollectedAt: time.Now().UTC(),
	}
	if err := b.reports.Save(ctx, report); err != nil {
		cr.Error = fmt.Sprintf("failed to save consolidated report: %v", err)
		return cr
	}

	cr.Success = true
	b.logger.Info("client pipeline finished",
		zap.Int64("client_id", client.ID),
		zap.String("slug", client.Slug),
		zap.Int("records_collected", cr.RecordsCollected),
		zap.Int64("records_stored", cr.RecordsStored),
		zap.Int("quality_score", cr.Quality.Score),
	)
	return cr
}
