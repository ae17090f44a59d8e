package models

// Insight is a normalized performance record produced by the transformer.
// Metric fields are pointers so that "no data" survives as nil instead of
// collapsing into zero; the store persists nil as NULL.
type Insight struct {
	CampaignID   string
	CampaignName string
	Objective    string
	Status       string
	AdID         string
	AdName       string

	Age               string
	Gender            string
	Region            string
	DevicePlatform    string
	PublisherPlatform string
	PlatformPosition  string

	Impressions *int64
	Reach       *int64
	Frequency   *float64
	Clicks      *int64
	Spend       *float64
	CPC         *float64
	CTR         *float64

	// Flattened from the platform's actions / action_values / purchase_roas
	Conversions     *float64
	ConversionValue *float64
	ROAS            *float64

	DateStart string
	DateStop  string
}

// FieldChange records one normalization applied by the transformer.
type FieldChange struct {
	Dimension Dimension `json:"dimension"`
	Field     string    `json:"field"`
	Before    string    `json:"before"`
	After     string    `json:"after"`
}

// TransformResult is the output of the transformer: typed records per
// dimension plus an audit trail of every correction made.
type TransformResult struct {
	AccountID       string                  `json:"account_id"`
	MonthYear       Period                  `json:"month_year"`
	Dimensions      map[Dimension][]Insight `json:"dimensions"`
	Transformations []FieldChange           `json:"transformations"`
	Warnings        []string                `json:"warnings"`
	Summary         CollectionSummary       `json:"summary"`
}

// ValidationResult is the verdict of the structural validator.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
