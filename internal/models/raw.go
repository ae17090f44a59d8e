package models

// Dimension is one breakdown axis of ad performance data.
type Dimension string

const (
	DimensionCampaign    Dimension = "campaign"
	DimensionDemographic Dimension = "demographic"
	DimensionRegional    Dimension = "regional"
	DimensionDevice      Dimension = "device"
	DimensionPlatform    Dimension = "platform"
	DimensionAd          Dimension = "ad"
)

// AllDimensions lists every breakdown the collector fetches, in a stable order.
func AllDimensions() []Dimension {
	return []Dimension{
		DimensionCampaign,
		DimensionDemographic,
		DimensionRegional,
		DimensionDevice,
		DimensionPlatform,
		DimensionAd,
	}
}

// ActionEntry is one entry of the platform's actions / action_values /
// purchase_roas arrays. Values arrive string-encoded.
type ActionEntry struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// RawInsight is a single row as returned by the ads platform, untouched.
// Every dimension shares this shape; which breakdown keys are populated
// depends on the dimension the row was fetched under. Numeric fields stay
// string-encoded until the transformer converts them.
type RawInsight struct {
	// Campaign / ad identity
	CampaignID   string `json:"campaign_id,omitempty"`
	CampaignName string `json:"campaign_name,omitempty"`
	Objective    string `json:"objective,omitempty"`
	Status       string `json:"effective_status,omitempty"`
	AdID         string `json:"ad_id,omitempty"`
	AdName       string `json:"ad_name,omitempty"`

	// Breakdown keys
	Age               string `json:"age,omitempty"`
	Gender            string `json:"gender,omitempty"`
	Region            string `json:"region,omitempty"`
	DevicePlatform    string `json:"device_platform,omitempty"`
	PublisherPlatform string `json:"publisher_platform,omitempty"`
	PlatformPosition  string `json:"platform_position,omitempty"`

	// Metrics, string-encoded by the platform
	Impressions string `json:"impressions,omitempty"`
	Reach       string `json:"reach,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	Clicks      string `json:"clicks,omitempty"`
	Spend       string `json:"spend,omitempty"`
	CPC         string `json:"cpc,omitempty"`
	CTR         string `json:"ctr,omitempty"`

	// Structured conversion fields, passed through unconverted
	Actions      []ActionEntry `json:"actions,omitempty"`
	ActionValues []ActionEntry `json:"action_values,omitempty"`
	PurchaseROAS []ActionEntry `json:"purchase_roas,omitempty"`

	DateStart string `json:"date_start,omitempty"`
	DateStop  string `json:"date_stop,omitempty"`
}

// CollectionSummary is the metadata attached to one collection run.
type CollectionSummary struct {
	TotalRecords        int      `json:"total_records"`
	SuccessfulEndpoints int      `json:"successful_endpoints"`
	FailedEndpoints     []string `json:"failed_endpoints"`
	Warnings            []string `json:"warnings"`
}

// CollectionResult is the full output of one collection run: one raw array
// per dimension plus the run summary.
type CollectionResult struct {
	RunID      string                    `json:"run_id"`
	AccountID  string                    `json:"account_id"`
	MonthYear  Period                    `json:"month_year"`
	Dimensions map[Dimension][]RawInsight `json:"dimensions"`
	Summary    CollectionSummary         `json:"summary"`
}
