package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/radiusdt/ads-insights/internal/models"
)

// PostgresDimensionStore implements DimensionStore using PostgreSQL.
// Conflict targets match the primary keys created by database.Migrate, and
// row counts come straight from pgx command tags, so RecordsInserted is
// exact without a second query.
type PostgresDimensionStore struct {
	pool *pgxpool.Pool
}

func NewPostgresDimensionStore(pool *pgxpool.Pool) *PostgresDimensionStore {
	return &PostgresDimensionStore{pool: pool}
}

func (s *PostgresDimensionStore) UpsertCampaigns(ctx context.Context, rows []models.CampaignRow) (int64, error) {
	var total int64
	for _, r := range rows {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO campaign_insights (
				client_id, month_year, campaign_id, campaign_name, objective, status,
				impressions, reach, frequency, clicks, spend, cpc, ctr,
				conversions, conversion_value, roas, date_start, date_stop
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (client_id, month_year, campaign_id) DO UPDATE SET
				campaign_name = EXCLUDED.campaign_name,
				objective = EXCLUDED.objective,
				status = EXCLUDED.status,
				impressions = EXCLUDED.impressions,
				reach = EXCLUDED.reach,
				frequency = EXCLUDED.frequency,
				clicks = EXCLUDED.clicks,
				spend = EXCLUDED.spend,
				cpc = EXCLUDED.cpc,
				ctr = EXCLUDED.ctr,
				conversions = EXCLUDED.conversions,
				conversion_value = EXCLUDED.conversion_value,
				roas = EXCLUDED.roas,
				date_start = EXCLUDED.date_start,
				date_stop = EXCLUDED.date_stop
		`,
			r.ClientID, r.MonthYear, r.CampaignID, r.CampaignName, r.Objective, r.Status,
			r.Impressions, r.Reach, r.Frequency, r.Clicks, r.Spend, r.CPC, r.CTR,
			r.Conversions, r.ConvValue, r.ROAS, r.DateStart, r.DateStop,
		)
		if err != nil {
			return total, fmt.Errorf("failed to upsert campaign row %s: %w", r.CampaignID, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

func (s *PostgresDimensionStore) UpsertDemographics(ctx context.Context, rows []models.DemographicRow) (int64, error) {
	var total int64
	for _, r := range rows {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO demographic_insights (
				client_id, month_year, age, gender,
				impressions, reach, clicks, spend, cpc, ctr,
				conversions, conversion_value, date_start, date_stop
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (client_id, month_year, age, gender) DO UPDATE SET
				impressions = EXCLUDED.impressions,
				reach = EXCLUDED.reach,
				clicks = EXCLUDED.clicks,
				spend = EXCLUDED.spend,
				cpc = EXCLUDED.cpc,
				ctr = EXCLUDED.ctr,
				conversions = EXCLUDED.conversions,
				conversion_value = EXCLUDED.conversion_value,
				date_start = EXCLUDED.date_start,
				date_stop = EXCLUDED.date_stop
		`,
			r.ClientID, r.MonthYear, r.Age, r.Gender,
			r.Impressions, r.Reach, r.Clicks, r.Spend, r.CPC, r.CTR,
			r.Conversions, r.ConvValue, r.DateStart, r.DateStop,
		)
		if err != nil {
			return total, fmt.Errorf("failed to upsert demographic row %s/%s: %w", r.Age, r.Gender, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

func (s *PostgresDimensionStore) UpsertRegions(ctx context.Context, rows []models.RegionalRow) (int64, error) {
	var total int64
	for _, r := range rows {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO regional_insights (
				client_id, month_year, region,
				impressions, reach, clicks, spend, cpc, ctr,
				conversions, conversion_value, date_start, date_stop
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (client_id, month_year, region) DO UPDATE SET
				impressions = EXCLUDED.impressions,
				reach = EXCLUDED.reach,
				clicks = EXCLUDED.clicks,
				spend = EXCLUDED.spend,
				cpc = EXCLUDED.cpc,
				ctr = EXCLUDED.ctr,
				conversions = EXCLUDED.conversions,
				conversion_value = EXCLUDED.conversion_value,
				date_start = EXCLUDED.date_start,
				date_stop = EXCLUDED.date_stop
		`,
			r.ClientID, r.MonthYear, r.Region,
			r.Impressions, r.Reach, r.Clicks, r.Spend, r.CPC, r.CTR,
			r.Conversions, r.ConvValue, r.DateStart, r.DateStop,
		)
		if err != nil {
			return total, fmt.Errorf("failed to upsert regional row %s: %w", r.Region, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

func (s *PostgresDimensionStore) UpsertDevices(ctx context.Context, rows []models.DeviceRow) (int64, error) {
	var total int64
	for _, r := range rows {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO device_insights (
				client_id, month_year, device_platform,
				impressions, clicks, spend, cpc, ctr, date_start, date_stop
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (client_id, month_year, device_platform) DO UPDATE SET
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				spend = EXCLUDED.spend,
				cpc = EXCLUDED.cpc,
				ctr = EXCLUDED.ctr,
				date_start = EXCLUDED.date_start,
				date_stop = EXCLUDED.date_stop
		`,
			r.ClientID, r.MonthYear, r.DevicePlatform,
			r.Impressions, r.Clicks, r.Spend, r.CPC, r.CTR, r.DateStart, r.DateStop,
		)
		if err != nil {
			return total, fmt.Errorf("failed to upsert device row %s: %w", r.DevicePlatform, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

func (s *PostgresDimensionStore) UpsertPlatforms(ctx context.Context, rows []models.PlatformRow) (int64, error) {
	var total int64
	for _, r := range rows {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO platform_insights (
				client_id, month_year, publisher_platform, platform_position,
				impressions, clicks, spend, cpc, ctr, date_start, date_stop
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (client_id, month_year, publisher_platform, platform_position) DO UPDATE SET
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				spend = EXCLUDED.spend,
				cpc = EXCLUDED.cpc,
				ctr = EXCLUDED.ctr,
				date_start = EXCLUDED.date_start,
				date_stop = EXCLUDED.date_stop
		`,
			r.ClientID, r.MonthYear, r.PublisherPlatform, r.PlatformPosition,
			r.Impressions, r.Clicks, r.Spend, r.CPC, r.CTR, r.DateStart, r.DateStop,
		)
		if err != nil {
			return total, fmt.Errorf("failed to upsert platform row %s/%s: %w", r.PublisherPlatform, r.PlatformPosition, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

func (s *PostgresDimensionStore) UpsertAds(ctx context.Context, rows []models.AdRow) (int64, error) {
	var total int64
	for _, r := range rows {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO ad_insights (
				client_id, month_year, ad_id, ad_name, campaign_id, campaign_name,
				impressions, reach, clicks, spend, cpc, ctr,
				conversions, conversion_value, date_start, date_stop
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (client_id, month_year, ad_id) DO UPDATE SET
				ad_name = EXCLUDED.ad_name,
				campaign_id = EXCLUDED.campaign_id,
				campaign_name = EXCLUDED.campaign_name,
				impressions = EXCLUDED.impressions,
				reach = EXCLUDED.reach,
				clicks = EXCLUDED.clicks,
				spend = EXCLUDED.spend,
				cpc = EXCLUDED.cpc,
				ctr = EXCLUDED.ctr,
				conversions = EXCLUDED.conversions,
				conversion_value = EXCLUDED.conversion_value,
				date_start = EXCLUDED.date_start,
				date_stop = EXCLUDED.date_stop
		`,
			r.ClientID, r.MonthYear, r.AdID, r.AdName, r.CampaignID, r.CampaignName,
			r.Impressions, r.Reach, r.Clicks, r.Spend, r.CPC, r.CTR,
			r.Conversions, r.ConvValue, r.DateStart, r.DateStop,
		)
		if err != nil {
			return total, fmt.Errorf("failed to upsert ad row %s: %w", r.AdID, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

func (s *PostgresDimensionStore) FetchCampaigns(ctx context.Context, clientID int64, period models.Period) ([]models.CampaignRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT client_id, month_year, campaign_id, campaign_name, objective, status,
			   impressions, reach, frequency, clicks, spend, cpc, ctr,
			   conversions, conversion_value, roas, date_start, date_stop
		FROM campaign_insights
		WHERE client_id = $1 AND month_year = $2
		ORDER BY campaign_id
	`, clientID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaign insights: %w", err)
	}
	defer rows.Close()

	var out []models.CampaignRow
	for rows.Next() {
		var r models.CampaignRow
		var dateStart, dateStop *string
		if err := rows.Scan(
			&r.ClientID, &r.MonthYear, &r.CampaignID, &r.CampaignName, &r.Objective, &r.Status,
			&r.Impressions, &r.Reach, &r.Frequency, &r.Clicks, &r.Spend, &r.CPC, &r.CTR,
			&r.Conversions, &r.ConvValue, &r.ROAS, &dateStart, &dateStop,
		); err != nil {
			return nil, err
		}
		r.DateStart = deref(dateStart)
		r.DateStop = deref(dateStop)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresDimensionStore) FetchDemographics(ctx context.Context, clientID int64, period models.Period) ([]models.DemographicRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT client_id, month_year, age, gender,
			   impressions, reach, clicks, spend, cpc, ctr,
			   conversions, conversion_value, date_start, date_stop
		FROM demographic_insights
		WHERE client_id = $1 AND month_year = $2
		ORDER BY age, gender
	`, clientID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch demographic insights: %w", err)
	}
	defer rows.Close()

	var out []models.DemographicRow
	for rows.Next() {
		var r models.DemographicRow
		var dateStart, dateStop *string
		if err := rows.Scan(
			&r.ClientID, &r.MonthYear, &r.Age, &r.Gender,
			&r.Impressions, &r.Reach, &r.Clicks, &r.Spend, &r.CPC, &r.CTR,
			&r.Conversions, &r.ConvValue, &dateStart, &dateStop,
		); err != nil {
			return nil, err
		}
		r.DateStart = deref(dateStart)
		r.DateStop = deref(dateStop)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresDimensionStore) FetchRegions(ctx context.Context, clientID int64, period models.Period) ([]models.RegionalRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT client_id, month_year, region,
			   impressions, reach, clicks, spend, cpc, ctr,
			   conversions, conversion_value, date_start, date_stop
		FROM regional_insights
		WHERE client_id = $1 AND month_year = $2
		ORDER BY region
	`, clientID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch regional insights: %w", err)
	}
	defer rows.Close()

	var out []models.RegionalRow
	for rows.Next() {
		var r models.RegionalRow
		var dateStart, dateStop *string
		if err := rows.Scan(
			&r.ClientID, &r.MonthYear, &r.Region,
			&r.Impressions, &r.Reach, &r.Clicks, &r.Spend, &r.CPC, &r.CTR,
			&r.Conversions, &r.ConvValue, &dateStart, &dateStop,
		); err != nil {
			return nil, err
		}
		r.DateStart = deref(dateStart)
		r.DateStop = deref(dateStop)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresDimensionStore) FetchDevices(ctx context.Context, clientID int64, period models.Period) ([]models.DeviceRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT client_id, month_year, device_platform,
			   impressions, clicks, spend, cpc, ctr, date_start, date_stop
		FROM device_insights
		WHERE client_id = $1 AND month_year = $2
		ORDER BY device_platform
	`, clientID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device insights: %w", err)
	}
	defer rows.Close()

	var out []models.DeviceRow
	for rows.Next() {
		var r models.DeviceRow
		var dateStart, dateStop *string
		if err := rows.Scan(
			&r.ClientID, &r.MonthYear, &r.DevicePlatform,
			&r.Impressions, &r.Clicks, &r.Spend, &r.CPC, &r.CTR, &dateStart, &dateStop,
		); err != nil {
			return nil, err
		}
		r.DateStart = deref(dateStart)
		r.DateStop = deref(dateStop)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresDimensionStore) FetchPlatforms(ctx context.Context, clientID int64, period models.Period) ([]models.PlatformRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT client_id, month_year, publisher_platform, platform_position,
			   impressions, clicks, spend, cpc, ctr, date_start, date_stop
		FROM platform_insights
		WHERE client_id = $1 AND month_year = $2
		ORDER BY publisher_platform, platform_position
	`, clientID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch platform insights: %w", err)
	}
	defer rows.Close()

	var out []models.PlatformRow
	for rows.Next() {
		var r models.PlatformRow
		var dateStart, dateStop *string
		if err := rows.Scan(
			&r.ClientID, &r.MonthYear, &r.PublisherPlatform, &r.PlatformPosition,
			&r.Impressions, &r.Clicks, &r.Spend, &r.CPC, &r.CTR, &dateStart, &dateStop,
		); err != nil {
			return nil, err
		}
		r.DateStart = deref(dateStart)
		r.DateStop = deref(dateStop)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresDimensionStore) FetchAds(ctx context.Context, clientID int64, period models.Period) ([]models.AdRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT client_id, month_year, ad_id, ad_name, campaign_id, campaign_name,
			   impressions, reach, clicks, spend, cpc, ctr,
			   conversions, conversion_value, date_start, date_stop
		FROM ad_insights
		WHERE client_id = $1 AND month_year = $2
		ORDER BY ad_id
	`, clientID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ad insights: %w", err)
	}
	defer rows.Close()

	var out []models.AdRow
	for rows.Next() {
		var r models.AdRow
		var dateStart, dateStop *string
		if err := rows.Scan(
			&r.ClientID, &r.MonthYear, &r.AdID, &r.AdName, &r.CampaignID, &r.CampaignName,
			&r.Impressions, &r.Reach, &r.Clicks, &r.Spend, &r.CPC, &r.CTR,
			&r.Conversions, &r.ConvValue, &dateStart, &dateStop,
		); err != nil {
			return nil, err
		}
		r.DateStart = deref(dateStart)
		r.DateStop = deref(dateStop)
		out = append(out, r)
	}
	return out, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
