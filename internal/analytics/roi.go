package analytics

import (
	"fmt"
	"sort"

	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/shopspring/decimal"
)

// buildROI computes return-on-ad-spend analytics. It only runs when
// conversion fields are present and non-zero somewhere in the period;
// otherwise Available=false with empty arrays, which is distinct from
// zero-value ROI.
func (e *Engine) buildROI(data *models.DimensionData) ROI {
	if !hasConversionData(data) {
		return ROI{}
	}

	roi := ROI{Available: true}

	type rollup struct {
		spend       decimal.Decimal
		conversions float64
		value       decimal.Decimal
	}
	byObjective := make(map[string]*rollup)

	for _, c := range data.Campaigns {
		if c.Conversions == nil && c.ConvValue == nil {
			continue
		}

		spend := decimalOf(c.Spend)
		entry := ROICampaign{
			CampaignID:      c.CampaignID,
			Name:            c.CampaignName,
			Spend:           money(spend),
			Conversions:     valueOf(c.Conversions),
			ConversionValue: money(decimalOf(c.ConvValue)),
		}
		entry.ROAS = e.roas(spend, decimalOf(c.ConvValue))
		if entry.Conversions > 0 {
			entry.CostPerConversion = money(spend.Div(decimal.NewFromFloat(entry.Conversions)))
		}
		entry.Status = e.roiStatus(entry.ROAS, entry.Conversions)
		roi.Campaigns = append(roi.Campaigns, entry)

		objective := c.Objective
		if objective == "" {
			objective = "UNKNOWN"
		}
		r, ok := byObjective[objective]
		if !ok {
			r = &rollup{spend: decimal.Zero, value: decimal.Zero}
			byObjective[objective] = r
		}
		r.spend = r.spend.Add(spend)
		r.conversions += valueOf(c.Conversions)
		r.value = r.value.Add(decimalOf(c.ConvValue))
	}

	for key, r := range byObjective {
		roi.ByObjective = append(roi.ByObjective, e.rollupEntry(key, r.spend, r.conversions, r.value))
	}
	sort.Slice(roi.ByObjective, func(i, j int) bool {
		return roi.ByObjective[i].Key < roi.ByObjective[j].Key
	})

	bySegment := make(map[string]*rollup)
	for _, d := range data.Demographics {
		if d.Conversions == nil && d.ConvValue == nil {
			continue
		}
		key := segmentKey(d.Age, d.Gender)
		r, ok := bySegment[key]
		if !ok {
			r = &rollup{spend: decimal.Zero, value: decimal.Zero}
			bySegment[key] = r
		}
		r.spend = r.spend.Add(decimalOf(d.Spend))
		r.conversions += valueOf(d.Conversions)
		r.value = r.value.Add(decimalOf(d.ConvValue))
	}
	for key, r := range bySegment {
		roi.BySegment = append(roi.BySegment, e.rollupEntry(key, r.spend, r.conversions, r.value))
	}
	sort.Slice(roi.BySegment, func(i, j int) bool {
		return roi.BySegment[i].Key < roi.BySegment[j].Key
	})

	return roi
}

func (e *Engine) rollupEntry(key string, spend decimal.Decimal, conversions float64, value decimal.Decimal) ROIRollup {
	r := ROIRollup{
		Key:             key,
		Spend:           money(spend),
		Conversions:     conversions,
		ConversionValue: money(value),
	}
	r.ROAS = e.roas(spend, value)
	r.Status = e.roiStatus(r.ROAS, conversions)
	return r
}

// roas is conversion value over spend, undefined (nil) when spend is zero.
func (e *Engine) roas(spend, value decimal.Decimal) *float64 {
	if !spend.IsPositive() {
		return nil
	}
	roas := value.Div(spend).InexactFloat64()
	return &roas
}

// roiStatus labels an entry against the configured thresholds.
func (e *Engine) roiStatus(roas *float64, conversions float64) string {
	if conversions == 0 || roas == nil {
		return ROIStatusUnknown
	}
	switch {
	case *roas > e.roi.ProfitableROAS:
		return ROIStatusProfitable
	case *roas >= e.roi.BreakEvenROAS:
		return ROIStatusBreakEven
	default:
		return ROIStatusLoss
	}
}

// hasConversionData reports whether any record in the period carries a
// non-zero conversion field.
func hasConversionData(data *models.DimensionData) bool {
	for _, c := range data.Campaigns {
		if nonZero(c.Conversions) || nonZero(c.ConvValue) || nonZero(c.ROAS) {
			return true
		}
	}
	for _, d := range data.Demographics {
		if nonZero(d.Conversions) || nonZero(d.ConvValue) {
			return true
		}
	}
	for _, a := range data.Ads {
		if nonZero(a.Conversions) || nonZero(a.ConvValue) {
			return true
		}
	}
	return false
}

func nonZero(f *float64) bool {
	return f != nil && *f != 0
}

func segmentKey(age, gender string) string {
	switch {
	case age == "":
		return gender
	case gender == "":
		return age
	default:
		return fmt.Sprintf("%s %s", age, gender)
	}
}
