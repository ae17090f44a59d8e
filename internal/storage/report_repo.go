package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/radiusdt/ads-insights/internal/models"
)

// reportPayload is the JSONB body of a consolidated report row.
type reportPayload struct {
	Dimensions map[models.Dimension][]models.Insight `json:"dimensions"`
	Summary    models.CollectionSummary              `json:"summary"`
}

// PostgresReportRepo implements ReportRepo using PostgreSQL.
type PostgresReportRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresReportRepo(pool *pgxpool.Pool) *PostgresReportRepo {
	return &PostgresReportRepo{pool: pool}
}

func (r *PostgresReportRepo) Save(ctx context.Context, report *models.ConsolidatedReport) error {
	payload, err := json.Marshal(reportPayload{
		Dimensions: report.Dimensions,
		Summary:    report.Summary,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal report payload: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO consolidated_reports (client_id, month_year, payload, collected_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (client_id, month_year) DO UPDATE SET
			payload = EXCLUDED.payload,
			collected_at = EXCLUDED.collected_at
	`, report.ClientID, report.MonthYear, payload, report.CollectedAt)
	if err != nil {
		return fmt.Errorf("failed to save consolidated report: %w", err)
	}
	return nil
}

func (r *PostgresReportRepo) Get(ctx context.Context, clientID int64, period models.Period) (*models.ConsolidatedReport, error) {
	report := models.ConsolidatedReport{ClientID: clientID, MonthYear: period}
	var payload []byte

	err := r.pool.QueryRow(ctx, `
		SELECT payload, collected_at
		FROM consolidated_reports WHERE client_id = $1 AND month_year = $2
	`, clientID, period).Scan(&payload, &report.CollectedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consolidated report: %w", err)
	}

	if err := unmarshalPayload(payload, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *PostgresReportRepo) Latest(ctx context.Context, clientID int64) (*models.ConsolidatedReport, error) {
	report := models.ConsolidatedReport{ClientID: clientID}
	var payload []byte

	err := r.pool.QueryRow(ctx, `
		SELECT month_year, payload, collected_at
		FROM consolidated_reports WHERE client_id = $1
		ORDER BY month_year DESC LIMIT 1
	`, clientID).Scan(&report.MonthYear, &payload, &report.CollectedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	if err := unmarshalPayload(payload, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *PostgresReportRepo) ListAll(ctx context.Context) ([]*models.ConsolidatedReport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT client_id, month_year, payload, collected_at
		FROM consolidated_reports ORDER BY client_id, month_year
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list consolidated reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.ConsolidatedReport
	for rows.Next() {
		var report models.ConsolidatedReport
		var payload []byte
		if err := rows.Scan(&report.ClientID, &report.MonthYear, &payload, &report.CollectedAt); err != nil {
			return nil, err
		}
		if err := unmarshalPayload(payload, &report); err != nil {
			return nil, err
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}

func unmarshalPayload(payload []byte, report *models.ConsolidatedReport) error {
	var p reportPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("corrupt report payload for client %d period %s: %w", report.ClientID, report.MonthYear, err)
	}
	report.Dimensions = p.Dimensions
	report.Summary = p.Summary
	return nil
}
