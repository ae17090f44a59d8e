package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/radiusdt/ads-insights/internal/models"
	"go.uber.org/zap"
)

// DistributeResult reports the outcome of re-projecting consolidated
// reports into the dimension tables.
type DistributeResult struct {
	Success            bool     `json:"success"`
	RecordsDistributed int64    `json:"records_distributed"`
	TablesUpdated      []string `json:"tables_updated"`
	Errors             []string `json:"errors"`
}

// Distributor backfills per-dimension tables from previously stored
// consolidated reports, the alternate ingestion path used for legacy and
// bulk reconciliation.
type Distributor struct {
	reports ReportRepo
	store   *NormalizedStore
	logger  *zap.Logger
}

// NewDistributor creates a distributor.
func NewDistributor(reports ReportRepo, store *NormalizedStore, logger *zap.Logger) *Distributor {
	return &Distributor{
		reports: reports,
		store:   store,
		logger:  logger,
	}
}

// DistributeOne re-projects the stored report for (client, period) through
// the same mapping the normalized store uses. A report missing a dimension
// array loses only that dimension, with a logged error; the rest proceed.
func (d *Distributor) DistributeOne(ctx context.Context, clientID int64, period models.Period) *DistributeResult {
	report, err := d.reports.Get(ctx, clientID, period)
	if err != nil {
		return &DistributeResult{
			Errors: []string{fmt.Sprintf("failed to load report: %v", err)},
		}
	}
	if report == nil {
		return &DistributeResult{
			Errors: []string{fmt.Sprintf("no consolidated report for client %d period %s", clientID, period)},
		}
	}
	return d.distributeReport(ctx, report)
}

// DistributeAll re-projects every stored consolidated report, aggregating
// the per-report outcomes. A corrupt report never aborts the rest.
func (d *Distributor) DistributeAll(ctx context.Context) *DistributeResult {
	reports, err := d.reports.ListAll(ctx)
	if err != nil {
		return &DistributeResult{
			Errors: []string{fmt.Sprintf("failed to list reports: %v", err)},
		}
	}

	agg := &DistributeResult{Success: true}
	tables := make(map[string]bool)
	for _, report := range reports {
		r := d.distributeReport(ctx, report)
		agg.RecordsDistributed += r.RecordsDistributed
		agg.Errors = append(agg.Errors, r.Errors...)
		if !r.Success {
			agg.Success = false
		}
		for _, t := range r.TablesUpdated {
			tables[t] = true
		}
	}
	for t := range tables {
		agg.TablesUpdated = append(agg.TablesUpdated, t)
	}
	sort.Strings(agg.TablesUpdated)

	d.logger.Info("distribution finished",
		zap.Int("reports", len(reports)),
		zap.Int64("records_distributed", agg.RecordsDistributed),
		zap.Int("errors", len(agg.Errors)),
		zap.Bool("success", agg.Success),
	)

	return agg
}

func (d *Distributor) distributeReport(ctx context.Context, report *models.ConsolidatedReport) *DistributeResult {
	result := &DistributeResult{Success: true}

	present := make(map[models.Dimension][]models.Insight, len(report.Dimensions))
	for _, dim := range models.AllDimensions() {
		insights, ok := report.Dimensions[dim]
		if !ok || insights == nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("client %d period %s: dimension %s missing from report, skipped",
					report.ClientID, report.MonthYear, dim))
			d.logger.Error("report dimension missing, skipping",
				zap.Int64("client_id", report.ClientID),
				zap.String("month_year", report.MonthYear.String()),
				zap.String("dimension", string(dim)),
			)
			continue
		}
		present[dim] = insights
	}

	stored := d.store.Store(ctx, report.ClientID, report.MonthYear, present)
	result.RecordsDistributed = stored.RecordsInserted
	result.TablesUpdated = stored.TablesUpdated
	result.Errors = append(result.Errors, stored.Errors...)
	if !stored.Success {
		result.Success = false
	}

	return result
}
