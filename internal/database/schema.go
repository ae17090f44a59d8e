package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// schemaStatements creates the pipeline tables. Unique indexes match the
// conflict targets used by the dimension upserts.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		account_id TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS campaign_insights (
		client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		month_year TEXT NOT NULL,
		campaign_id TEXT NOT NULL,
		campaign_name TEXT,
		objective TEXT,
		status TEXT,
		impressions BIGINT,
		reach BIGINT,
		frequency DOUBLE PRECISION,
		clicks BIGINT,
		spend DOUBLE PRECISION,
		cpc DOUBLE PRECISION,
		ctr DOUBLE PRECISION,
		conversions DOUBLE PRECISION,
		conversion_value DOUBLE PRECISION,
		roas DOUBLE PRECISION,
		date_start TEXT,
		date_stop TEXT,
		PRIMARY KEY (client_id, month_year, campaign_id)
	)`,
	`CREATE TABLE IF NOT EXISTS demographic_insights (
		client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		month_year TEXT NOT NULL,
		age TEXT NOT NULL,
		gender TEXT NOT NULL,
		impressions BIGINT,
		reach BIGINT,
		clicks BIGINT,
		spend DOUBLE PRECISION,
		cpc DOUBLE PRECISION,
		ctr DOUBLE PRECISION,
		conversions DOUBLE PRECISION,
		conversion_value DOUBLE PRECISION,
		date_start TEXT,
		date_stop TEXT,
		PRIMARY KEY (client_id, month_year, age, gender)
	)`,
	`CREATE TABLE IF NOT EXISTS regional_insights (
		client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		month_year TEXT NOT NULL,
		region TEXT NOT NULL,
		impressions BIGINT,
		reach BIGINT,
		clicks BIGINT,
		spend DOUBLE PRECISION,
		cpc DOUBLE PRECISION,
		ctr DOUBLE PRECISION,
		conversions DOUBLE PRECISION,
		conversion_value DOUBLE PRECISION,
		date_start TEXT,
		date_stop TEXT,
		PRIMARY KEY (client_id, month_year, region)
	)`,
	`CREATE TABLE IF NOT EXISTS device_insights (
		client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		month_year TEXT NOT NULL,
		device_platform TEXT NOT NULL,
		impressions BIGINT,
		clicks BIGINT,
		spend DOUBLE PRECISION,
		cpc DOUBLE PRECISION,
		ctr DOUBLE PRECISION,
		date_start TEXT,
		date_stop TEXT,
		PRIMARY KEY (client_id, month_year, device_platform)
	)`,
	`CREATE TABLE IF NOT EXISTS platform_insights (
		client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		month_year TEXT NOT NULL,
		publisher_platform TEXT NOT NULL,
		platform_position TEXT NOT NULL,
		impressions BIGINT,
		clicks BIGINT,
		spend DOUBLE PRECISION,
		cpc DOUBLE PRECISION,
		ctr DOUBLE PRECISION,
		date_start TEXT,
		date_stop TEXT,
		PRIMARY KEY (client_id, month_year, publisher_platform, platform_position)
	)`,
	`CREATE TABLE IF NOT EXISTS ad_insights (
		client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		month_year TEXT NOT NULL,
		ad_id TEXT NOT NULL,
		ad_name TEXT,
		campaign_id TEXT,
		campaign_name TEXT,
		impressions BIGINT,
		reach BIGINT,
		clicks BIGINT,
		spend DOUBLE PRECISION,
		cpc DOUBLE PRECISION,
		ctr DOUBLE PRECISION,
		conversions DOUBLE PRECISION,
		conversion_value DOUBLE PRECISION,
		date_start TEXT,
		date_stop TEXT,
		PRIMARY KEY (client_id, month_year, ad_id)
	)`,
	`CREATE TABLE IF NOT EXISTS consolidated_reports (
		client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		month_year TEXT NOT NULL,
		payload JSONB NOT NULL,
		collected_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (client_id, month_year)
	)`,
}

// Migrate creates the pipeline tables if they do not exist.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	db.logger.Info("database schema up to date", zap.Int("statements", len(schemaStatements)))
	return nil
}
