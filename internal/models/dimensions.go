package models

import "time"

// CampaignRow is one stored campaign-dimension record. Unique per
// (client_id, month_year, campaign_id).
type CampaignRow struct {
	ClientID     int64    `json:"client_id"`
	MonthYear    Period   `json:"month_year"`
	CampaignID   string   `json:"campaign_id"`
	CampaignName string   `json:"campaign_name"`
	Objective    string   `json:"objective"`
	Status       string   `json:"status"`
	Impressions  *int64   `json:"impressions"`
	Reach        *int64   `json:"reach"`
	Frequency    *float64 `json:"frequency"`
	Clicks       *int64   `json:"clicks"`
	Spend        *float64 `json:"spend"`
	CPC          *float64 `json:"cpc"`
	CTR          *float64 `json:"ctr"`
	Conversions  *float64 `json:"conversions"`
	ConvValue    *float64 `json:"conversion_value"`
	ROAS         *float64 `json:"roas"`
	DateStart    string   `json:"date_start"`
	DateStop     string   `json:"date_stop"`
}

// DemographicRow is unique per (client_id, month_year, age, gender).
type DemographicRow struct {
	ClientID    int64    `json:"client_id"`
	MonthYear   Period   `json:"month_year"`
	Age         string   `json:"age"`
	Gender      string   `json:"gender"`
	Impressions *int64   `json:"impressions"`
	Reach       *int64   `json:"reach"`
	Clicks      *int64   `json:"clicks"`
	Spend       *float64 `json:"spend"`
	CPC         *float64 `json:"cpc"`
	CTR         *float64 `json:"ctr"`
	Conversions *float64 `json:"conversions"`
	ConvValue   *float64 `json:"conversion_value"`
	DateStart   string   `json:"date_start"`
	DateStop    string   `json:"date_stop"`
}

// RegionalRow is unique per (client_id, month_year, region).
type RegionalRow struct {
	ClientID    int64    `json:"client_id"`
	MonthYear   Period   `json:"month_year"`
	Region      string   `json:"region"`
	Impressions *int64   `json:"impressions"`
	Reach       *int64   `json:"reach"`
	Clicks      *int64   `json:"clicks"`
	Spend       *float64 `json:"spend"`
	CPC         *float64 `json:"cpc"`
	CTR         *float64 `json:"ctr"`
	Conversions *float64 `json:"conversions"`
	ConvValue   *float64 `json:"conversion_value"`
	DateStart   string   `json:"date_start"`
	DateStop    string   `json:"date_stop"`
}

// DeviceRow is unique per (client_id, month_year, device_platform).
type DeviceRow struct {
	ClientID       int64    `json:"client_id"`
	MonthYear      Period   `json:"month_year"`
	DevicePlatform string   `json:"device_platform"`
	Impressions    *int64   `json:"impressions"`
	Clicks         *int64   `json:"clicks"`
	Spend          *float64 `json:"spend"`
	CPC            *float64 `json:"cpc"`
	CTR            *float64 `json:"ctr"`
	DateStart      string   `json:"date_start"`
	DateStop       string   `json:"date_stop"`
}

// PlatformRow is unique per (client_id, month_year, publisher_platform,
// platform_position).
type PlatformRow struct {
	ClientID          int64    `json:"client_id"`
	MonthYear         Period   `json:"month_year"`
	PublisherPlatform string   `json:"publisher_platform"`
	PlatformPosition  string   `json:"platform_position"`
	Impressions       *int64   `json:"impressions"`
	Clicks            *int64   `json:"clicks"`
	Spend             *float64 `json:"spend"`
	CPC               *float64 `json:"cpc"`
	CTR               *float64 `json:"ctr"`
	DateStart         string   `json:"date_start"`
	DateStop          string   `json:"date_stop"`
}

// AdRow is one ad-level record, unique per (client_id, month_year, ad_id).
type AdRow struct {
	ClientID     int64    `json:"client_id"`
	MonthYear    Period   `json:"month_year"`
	AdID         string   `json:"ad_id"`
	AdName       string   `json:"ad_name"`
	CampaignID   string   `json:"campaign_id"`
	CampaignName string   `json:"campaign_name"`
	Impressions  *int64   `json:"impressions"`
	Reach        *int64   `json:"reach"`
	Clicks       *int64   `json:"clicks"`
	Spend        *float64 `json:"spend"`
	CPC          *float64 `json:"cpc"`
	CTR          *float64 `json:"ctr"`
	Conversions  *float64 `json:"conversions"`
	ConvValue    *float64 `json:"conversion_value"`
	DateStart    string   `json:"date_start"`
	DateStop     string   `json:"date_stop"`
}

// DimensionData bundles the stored rows of all six dimensions for one
// (client, period). It is what the store fetches and what the aggregation
// engine consumes.
type DimensionData struct {
	Campaigns    []CampaignRow    `json:"campaigns"`
	Demographics []DemographicRow `json:"demographics"`
	Regions      []RegionalRow    `json:"regions"`
	Devices      []DeviceRow      `json:"devices"`
	Platforms    []PlatformRow    `json:"platforms"`
	Ads          []AdRow          `json:"ads"`
}

// IsEmpty reports whether every dimension is empty. An empty result means
// absence of data, not an error.
func (d *DimensionData) IsEmpty() bool {
	if d == nil {
		return true
	}
	return len(d.Campaigns) == 0 && len(d.Demographics) == 0 &&
		len(d.Regions) == 0 && len(d.Devices) == 0 &&
		len(d.Platforms) == 0 && len(d.Ads) == 0
}

// ConsolidatedReport is the raw six-array payload persisted after every
// successful ingestion. The distributor re-projects it into the dimension
// tables; the cache refresh path reads it when recomputing analytics.
type ConsolidatedReport struct {
	ClientID    int64                   `json:"client_id"`
	MonthYear   Period                  `json:"month_year"`
	Dimensions  map[Dimension][]Insight `json:"dimensions"`
	Summary     CollectionSummary       `json:"summary"`
	CollectedAt time.Time               `json:"collected_at"`
}
