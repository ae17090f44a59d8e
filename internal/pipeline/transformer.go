package pipeline

import (
	"fmt"
	"strconv"
	"time"

	"github.com/radiusdt/ads-insights/internal/models"
	"go.uber.org/zap"
)

// dateLayouts are the formats the platform has been seen emitting, tried in
// order. The first is already canonical.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05-0700",
	"2006/01/02",
	"01/02/2006",
}

// purchaseActionTypes are the action_type values that count as conversions.
var purchaseActionTypes = map[string]bool{
	"purchase":                             true,
	"omni_purchase":                        true,
	"offsite_conversion.fb_pixel_purchase": true,
}

// Transformer normalizes validated data into typed records. It is pure and
// total: it never fails for data that passed validation; anything it cannot
// safely normalize becomes a nil field plus a warning, never a dropped row.
type Transformer struct {
	logger *zap.Logger
}

// NewTransformer creates a transformer.
func NewTransformer(logger *zap.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform converts every raw record into a typed Insight, recording each
// correction it makes in the Transformations list.
func (t *Transformer) Transform(result *models.CollectionResult) *models.TransformResult {
	out := &models.TransformResult{
		AccountID:  result.AccountID,
		MonthYear:  result.MonthYear,
		Dimensions: make(map[models.Dimension][]models.Insight, len(result.Dimensions)),
		Summary:    result.Summary,
	}

	for dim, records := range result.Dimensions {
		insights := make([]models.Insight, 0, len(records))
		for i, rec := range records {
			insights = append(insights, t.transformRecord(out, dim, i, rec))
		}
		out.Dimensions[dim] = insights
	}

	if len(out.Transformations) > 0 {
		t.logger.Debug("transformations applied",
			zap.String("account_id", result.AccountID),
			zap.Int("count", len(out.Transformations)),
		)
	}

	return out
}

func (t *Transformer) transformRecord(out *models.TransformResult, dim models.Dimension, idx int, rec models.RawInsight) models.Insight {
	ins := models.Insight{
		CampaignID:        rec.CampaignID,
		CampaignName:      rec.CampaignName,
		Objective:         rec.Objective,
		Status:            rec.Status,
		AdID:              rec.AdID,
		AdName:            rec.AdName,
		Age:               rec.Age,
		Gender:            rec.Gender,
		Region:            rec.Region,
		DevicePlatform:    rec.DevicePlatform,
		PublisherPlatform: rec.PublisherPlatform,
		PlatformPosition:  rec.PlatformPosition,
	}

	ins.Impressions = t.toCount(out, dim, idx, "impressions", rec.Impressions)
	ins.Reach = t.toCount(out, dim, idx, "reach", rec.Reach)
	ins.Clicks = t.toCount(out, dim, idx, "clicks", rec.Clicks)
	ins.Frequency = t.toAmount(out, dim, idx, "frequency", rec.Frequency)
	ins.Spend = t.toAmount(out, dim, idx, "spend", rec.Spend)
	ins.CPC = t.toAmount(out, dim, idx, "cpc", rec.CPC)
	ins.CTR = t.toAmount(out, dim, idx, "ctr", rec.CTR)

	ins.DateStart = t.toDate(out, dim, idx, "date_start", rec.DateStart)
	ins.DateStop = t.toDate(out, dim, idx, "date_stop", rec.DateStop)

	ins.Conversions = t.sumActions(out, dim, idx, "actions", rec.Actions)
	ins.ConversionValue = t.sumActions(out, dim, idx, "action_values", rec.ActionValues)
	ins.ROAS = t.firstAction(out, dim, idx, "purchase_roas", rec.PurchaseROAS)

	return ins
}

// toCount parses an integer count. Absent stays nil; unparseable stays nil
// with a warning so "no data" is never conflated with zero.
func (t *Transformer) toCount(out *models.TransformResult, dim models.Dimension, idx int, field, value string) *int64 {
	if value == "" {
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Some endpoints return counts with a decimal tail.
		if f, ferr := strconv.ParseFloat(value, 64); ferr == nil {
			n = int64(f)
			out.Transformations = append(out.Transformations, models.FieldChange{
				Dimension: dim,
				Field:     field,
				Before:    value,
				After:     strconv.FormatInt(n, 10),
			})
			return &n
		}
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("%s[%d].%s: cannot normalize %q, left unset", dim, idx, field, value))
		return nil
	}
	return &n
}

// toAmount parses a monetary or ratio field.
func (t *Transformer) toAmount(out *models.TransformResult, dim models.Dimension, idx int, field, value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("%s[%d].%s: cannot normalize %q, left unset", dim, idx, field, value))
		return nil
	}
	return &f
}

// toDate normalizes mixed date formats to ISO "YYYY-MM-DD", recording the
// correction when the representation changed.
func (t *Transformer) toDate(out *models.TransformResult, dim models.Dimension, idx int, field, value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		normalized := parsed.Format("2006-01-02")
		if normalized != value {
			out.Transformations = append(out.Transformations, models.FieldChange{
				Dimension: dim,
				Field:     field,
				Before:    value,
				After:     normalized,
			})
		}
		return normalized
	}
	out.Warnings = append(out.Warnings,
		fmt.Sprintf("%s[%d].%s: unrecognized date %q, left as-is", dim, idx, field, value))
	return value
}

// sumActions flattens purchase-type entries of an action array into a single
// value. Nil when no purchase entries exist.
func (t *Transformer) sumActions(out *models.TransformResult, dim models.Dimension, idx int, field string, entries []models.ActionEntry) *float64 {
	var sum float64
	found := false
	for _, e := range entries {
		if !purchaseActionTypes[e.ActionType] {
			continue
		}
		v, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("%s[%d].%s: unparseable %s value %q, skipped", dim, idx, field, e.ActionType, e.Value))
			continue
		}
		sum += v
		found = true
	}
	if !found {
		return nil
	}
	return &sum
}

// firstAction takes the first parseable entry of an action array, used for
// purchase_roas where the platform reports one ratio per attribution.
func (t *Transformer) firstAction(out *models.TransformResult, dim models.Dimension, idx int, field string, entries []models.ActionEntry) *float64 {
	for _, e := range entries {
		v, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("%s[%d].%s: unparseable value %q, skipped", dim, idx, field, e.Value))
			continue
		}
		return &v
	}
	return nil
}
