package analytics

import (
	"time"

	"github.com/radiusdt/ads-insights/internal/models"
)

// Overview holds the top-line account metrics for one period.
type Overview struct {
	TotalSpend       float64 `json:"total_spend"`
	ActiveCampaigns  int     `json:"active_campaigns"`
	TotalCampaigns   int     `json:"total_campaigns"`
	TotalAds         int     `json:"total_ads"`
	TotalImpressions int64   `json:"total_impressions"`
	TotalReach       int64   `json:"total_reach"`
}

// Engagement holds click/impression aggregates. Zero denominators yield 0,
// never NaN.
type Engagement struct {
	TotalClicks      int64   `json:"total_clicks"`
	TotalImpressions int64   `json:"total_impressions"`
	CTR              float64 `json:"ctr"`
	AverageCPC       float64 `json:"average_cpc"`
}

// CampaignEntry is one campaign's line in the snapshot.
type CampaignEntry struct {
	CampaignID  string  `json:"campaign_id"`
	Name        string  `json:"name"`
	Objective   string  `json:"objective"`
	Status      string  `json:"status"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
}

// Campaign-type status labels.
const (
	GroupStatusActive   = "Active"
	GroupStatusMixed    = "Mixed"
	GroupStatusInactive = "Inactive"
)

// CampaignTypeRollup groups campaigns by objective.
type CampaignTypeRollup struct {
	Objective    string  `json:"objective"`
	TotalSpend   float64 `json:"total_spend"`
	Count        int     `json:"count"`
	AverageSpend float64 `json:"average_spend"`
	SpendShare   float64 `json:"spend_share"`
	Status       string  `json:"status"`
}

// AgeGroupStat is one age bucket's aggregate.
type AgeGroupStat struct {
	Age   string  `json:"age"`
	Spend float64 `json:"spend"`
	Reach int64   `json:"reach"`
	Share float64 `json:"share"`
}

// GenderStat is one gender's aggregate.
type GenderStat struct {
	Gender string  `json:"gender"`
	Spend  float64 `json:"spend"`
	Reach  int64   `json:"reach"`
	Share  float64 `json:"share"`
}

// Demographics holds audience aggregates. Available=false means no
// demographic rows exist; consumers must treat that as "no data", not zero.
type Demographics struct {
	Available  bool           `json:"available"`
	AgeGroups  []AgeGroupStat `json:"age_groups"`
	Genders    []GenderStat   `json:"genders"`
	AverageAge float64        `json:"average_age"`
}

// RegionStat is one region's aggregate with its independent rankings.
type RegionStat struct {
	Region    string  `json:"region"`
	Spend     float64 `json:"spend"`
	Clicks    int64   `json:"clicks"`
	CTR       float64 `json:"ctr"`
	Share     float64 `json:"share"`
	SpendRank int     `json:"spend_rank"`
	CTRRank   int     `json:"ctr_rank"`
}

// Regional holds per-region aggregates ranked by spend and by CTR.
type Regional struct {
	Available bool         `json:"available"`
	Regions   []RegionStat `json:"regions"`
}

// DeviceStat is one device platform's aggregate.
type DeviceStat struct {
	DevicePlatform string  `json:"device_platform"`
	Spend          float64 `json:"spend"`
	Clicks         int64   `json:"clicks"`
	Impressions    int64   `json:"impressions"`
}

// PlacementStat is one publisher-platform+position aggregate.
type PlacementStat struct {
	PublisherPlatform string  `json:"publisher_platform"`
	Position          string  `json:"position"`
	Spend             float64 `json:"spend"`
	Clicks            int64   `json:"clicks"`
	Impressions       int64   `json:"impressions"`
}

// Devices holds device and placement rollups.
type Devices struct {
	Available  bool            `json:"available"`
	Devices    []DeviceStat    `json:"devices"`
	Placements []PlacementStat `json:"placements"`
}

// ROI status labels.
const (
	ROIStatusProfitable = "Profitable"
	ROIStatusBreakEven  = "Break-even"
	ROIStatusLoss       = "Loss"
	ROIStatusUnknown    = "Unknown"
)

// ROICampaign is one campaign's return metrics. ROAS is nil when spend is
// zero (undefined, not zero).
type ROICampaign struct {
	CampaignID        string   `json:"campaign_id"`
	Name              string   `json:"name"`
	Spend             float64  `json:"spend"`
	Conversions       float64  `json:"conversions"`
	ConversionValue   float64  `json:"conversion_value"`
	ROAS              *float64 `json:"roas,omitempty"`
	CostPerConversion float64  `json:"cost_per_conversion"`
	Status            string   `json:"status"`
}

// ROIRollup aggregates return metrics over one grouping key.
type ROIRollup struct {
	Key             string   `json:"key"`
	Spend           float64  `json:"spend"`
	Conversions     float64  `json:"conversions"`
	ConversionValue float64  `json:"conversion_value"`
	ROAS            *float64 `json:"roas,omitempty"`
	Status          string   `json:"status"`
}

// ROI holds return-on-ad-spend analytics. Available=false with empty
// arrays means no conversion data exists anywhere in the period, which is
// distinct from zero-value ROI.
type ROI struct {
	Available   bool          `json:"available"`
	Campaigns   []ROICampaign `json:"campaigns"`
	ByObjective []ROIRollup   `json:"by_objective"`
	BySegment   []ROIRollup   `json:"by_segment"`
}

// Availability flags which dimensions had data in this period.
type Availability struct {
	Campaigns    bool `json:"campaigns"`
	Demographics bool `json:"demographics"`
	Regions      bool `json:"regions"`
	Devices      bool `json:"devices"`
	Platforms    bool `json:"platforms"`
	Ads          bool `json:"ads"`
}

// Snapshot is the aggregation engine's full output for one client and
// period. One snapshot per client, overwritten wholesale on each refresh.
type Snapshot struct {
	ClientID      int64                `json:"client_id"`
	MonthYear     models.Period        `json:"month_year"`
	Overview      Overview             `json:"overview"`
	Engagement    Engagement           `json:"engagement"`
	Campaigns     []CampaignEntry      `json:"campaigns"`
	CampaignTypes []CampaignTypeRollup `json:"campaign_types"`
	Demographics  Demographics         `json:"demographics"`
	Regional      Regional             `json:"regional"`
	Devices       Devices              `json:"devices"`
	ROI           ROI                  `json:"roi"`
	Availability  Availability         `json:"availability"`
	LastUpdated   time.Time            `json:"last_updated"`
}
