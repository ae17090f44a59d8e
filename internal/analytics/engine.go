package analytics

import (
	"sort"
	"strings"

	"github.com/radiusdt/ads-insights/internal/config"
	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine computes derived analytics from one period's dimension rows.
// Money is aggregated at full precision and rounded only at presentation.
type Engine struct {
	roi    config.ROIConfig
	logger *zap.Logger
}

// NewEngine creates an aggregation engine with the given ROI thresholds.
func NewEngine(roiCfg config.ROIConfig, logger *zap.Logger) *Engine {
	return &Engine{
		roi:    roiCfg,
		logger: logger,
	}
}

// GenerateFullAnalytics is a pure function of the six dimension arrays for
// one period. It never divides by zero and never fabricates zero-value
// entries for dimensions that have no data.
func (e *Engine) GenerateFullAnalytics(data *models.DimensionData) *Snapshot {
	if data == nil {
		data = &models.DimensionData{}
	}

	snap := &Snapshot{
		Availability: Availability{
			Campaigns:    len(data.Campaigns) > 0,
			Demographics: len(data.Demographics) > 0,
			Regions:      len(data.Regions) > 0,
			Devices:      len(data.Devices) > 0,
			Platforms:    len(data.Platforms) > 0,
			Ads:          len(data.Ads) > 0,
		},
	}
	if len(data.Campaigns) > 0 {
		snap.ClientID = data.Campaigns[0].ClientID
		snap.MonthYear = data.Campaigns[0].MonthYear
	}

	snap.Overview = e.buildOverview(data)
	snap.Engagement = e.buildEngagement(data)
	snap.Campaigns = e.buildCampaigns(data.Campaigns)
	snap.CampaignTypes = e.buildCampaignTypes(data.Campaigns)
	snap.Demographics = e.buildDemographics(data.Demographics)
	snap.Regional = e.buildRegional(data.Regions)
	snap.Devices = e.buildDevices(data.Devices, data.Platforms)
	snap.ROI = e.buildROI(data)

	return snap
}

func (e *Engine) buildOverview(data *models.DimensionData) Overview {
	o := Overview{
		TotalCampaigns: len(data.Campaigns),
		TotalAds:       len(data.Ads),
	}

	spend := decimal.Zero
	for _, c := range data.Campaigns {
		if c.Spend != nil {
			spend = spend.Add(decimal.NewFromFloat(*c.Spend))
			if *c.Spend > 0 {
				o.ActiveCampaigns++
			}
		}
	}
	o.TotalSpend = money(spend)

	o.TotalImpressions = pickImpressions(data)
	o.TotalReach = pickReach(data)

	return o
}

// pickImpressions sums impressions from the most granular dimension that
// carries them: ad-level first, then campaign, then demographic.
func pickImpressions(data *models.DimensionData) int64 {
	if n, ok := sumAdImpressions(data.Ads); ok {
		return n
	}
	var total int64
	found := false
	for _, c := range data.Campaigns {
		if c.Impressions != nil {
			total += *c.Impressions
			found = true
		}
	}
	if found {
		return total
	}
	for _, d := range data.Demographics {
		if d.Impressions != nil {
			total += *d.Impressions
		}
	}
	return total
}

func sumAdImpressions(ads []models.AdRow) (int64, bool) {
	var total int64
	found := false
	for _, a := range ads {
		if a.Impressions != nil {
			total += *a.Impressions
			found = true
		}
	}
	return total, found
}

func pickReach(data *models.DimensionData) int64 {
	var total int64
	found := false
	for _, a := range data.Ads {
		if a.Reach != nil {
			total += *a.Reach
			found = true
		}
	}
	if found {
		return total
	}
	for _, c := range data.Campaigns {
		if c.Reach != nil {
			total += *c.Reach
			found = true
		}
	}
	if found {
		return total
	}
	for _, d := range data.Demographics {
		if d.Reach != nil {
			total += *d.Reach
		}
	}
	return total
}

func (e *Engine) buildEngagement(data *models.DimensionData) Engagement {
	eng := Engagement{}

	spend := decimal.Zero
	for _, c := range data.Campaigns {
		if c.Clicks != nil {
			eng.TotalClicks += *c.Clicks
		}
		if c.Impressions != nil {
			eng.TotalImpressions += *c.Impressions
		}
		if c.Spend != nil {
			spend = spend.Add(decimal.NewFromFloat(*c.Spend))
		}
	}

	eng.CTR = safeRate(eng.TotalClicks, eng.TotalImpressions) * 100
	if eng.TotalClicks > 0 {
		eng.AverageCPC = money(spend.Div(decimal.NewFromInt(eng.TotalClicks)))
	}

	return eng
}

func (e *Engine) buildCampaigns(rows []models.CampaignRow) []CampaignEntry {
	entries := make([]CampaignEntry, 0, len(rows))
	for _, c := range rows {
		entry := CampaignEntry{
			CampaignID:  c.CampaignID,
			Name:        c.CampaignName,
			Objective:   c.Objective,
			Status:      c.Status,
			Spend:       money(decimalOf(c.Spend)),
			Impressions: valueOf(c.Impressions),
			Clicks:      valueOf(c.Clicks),
		}
		entry.CTR = safeRate(entry.Clicks, entry.Impressions) * 100
		if entry.Clicks > 0 {
			entry.CPC = money(decimalOf(c.Spend).Div(decimal.NewFromInt(entry.Clicks)))
		}
		entries = append(entries, entry)
	}
	return entries
}

func (e *Engine) buildCampaignTypes(rows []models.CampaignRow) []CampaignTypeRollup {
	type group struct {
		spend    decimal.Decimal
		count    int
		active   int
		inactive int
	}

	groups := make(map[string]*group)
	totalSpend := decimal.Zero
	for _, c := range rows {
		objective := c.Objective
		if objective == "" {
			objective = "UNKNOWN"
		}
		g, ok := groups[objective]
		if !ok {
			g = &group{spend: decimal.Zero}
			groups[objective] = g
		}
		g.count++
		if isActiveStatus(c.Status) {
			g.active++
		} else {
			g.inactive++
		}
		if c.Spend != nil {
			d := decimal.NewFromFloat(*c.Spend)
			g.spend = g.spend.Add(d)
			totalSpend = totalSpend.Add(d)
		}
	}

	rollups := make([]CampaignTypeRollup, 0, len(groups))
	for objective, g := range groups {
		r := CampaignTypeRollup{
			Objective:  objective,
			TotalSpend: money(g.spend),
			Count:      g.count,
		}
		if g.count > 0 {
			r.AverageSpend = money(g.spend.Div(decimal.NewFromInt(int64(g.count))))
		}
		if totalSpend.IsPositive() {
			r.SpendShare = money(g.spend.Div(totalSpend).Mul(decimal.NewFromInt(100)))
		}
		switch {
		case g.active == g.count && g.count > 0:
			r.Status = GroupStatusActive
		case g.active > 0:
			r.Status = GroupStatusMixed
		default:
			r.Status = GroupStatusInactive
		}
		rollups = append(rollups, r)
	}

	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].TotalSpend != rollups[j].TotalSpend {
			return rollups[i].TotalSpend > rollups[j].TotalSpend
		}
		return rollups[i].Objective < rollups[j].Objective
	})

	return rollups
}

func isActiveStatus(status string) bool {
	return strings.EqualFold(status, "ACTIVE")
}

// safeRate divides a by b, returning 0 for a zero denominator.
func safeRate(a, b int64) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// money rounds a full-precision decimal to two places for presentation.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func decimalOf(f *float64) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*f)
}

func valueOf[T int64 | float64](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
