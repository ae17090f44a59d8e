package pipeline

import (
	"fmt"
	"strconv"

	"github.com/radiusdt/ads-insights/internal/models"
	"go.uber.org/zap"
)

// Validator asserts structural invariants on collected data before it is
// allowed anywhere near storage.
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a validator.
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate checks a collection result for structural integrity. A failing
// verdict halts the pipeline; data is never silently coerced into storage.
func (v *Validator) Validate(result *models.CollectionResult) models.ValidationResult {
	vr := models.ValidationResult{IsValid: true}

	if result == nil {
		vr.IsValid = false
		vr.Errors = append(vr.Errors, "collection result is nil")
		return vr
	}

	if result.AccountID == "" {
		vr.IsValid = false
		vr.Errors = append(vr.Errors, "account id is empty")
	}
	if result.MonthYear == "" {
		vr.IsValid = false
		vr.Errors = append(vr.Errors, "month identifier is empty")
	}

	var totalSpend float64
	var totalImpressions int64

	for _, dim := range models.AllDimensions() {
		records, ok := result.Dimensions[dim]
		if !ok || records == nil {
			vr.IsValid = false
			vr.Errors = append(vr.Errors, fmt.Sprintf("dimension %s array is missing", dim))
			continue
		}

		for i, rec := range records {
			for field, value := range countFields(rec) {
				n, err := parseCount(value)
				if err != nil {
					vr.IsValid = false
					vr.Errors = append(vr.Errors,
						fmt.Sprintf("%s[%d].%s: unparseable count %q", dim, i, field, value))
					continue
				}
				if field == "impressions" {
					totalImpressions += n
				}
			}
			for field, value := range amountFields(rec) {
				f, err := parseAmount(value)
				if err != nil {
					vr.IsValid = false
					vr.Errors = append(vr.Errors,
						fmt.Sprintf("%s[%d].%s: unparseable amount %q", dim, i, field, value))
					continue
				}
				if field == "spend" && dim == models.DimensionCampaign {
					totalSpend += f
				}
			}
		}
	}

	// Zero spend with delivery usually means a broken spend field upstream.
	if totalSpend == 0 && totalImpressions > 0 {
		vr.Warnings = append(vr.Warnings,
			fmt.Sprintf("zero spend across all records for %s despite %d impressions", result.MonthYear, totalImpressions))
	}

	if !vr.IsValid {
		v.logger.Warn("validation failed",
			zap.String("account_id", result.AccountID),
			zap.String("month_year", result.MonthYear.String()),
			zap.Int("errors", len(vr.Errors)),
		)
	}

	return vr
}

// countFields returns the integer-count fields of a record that are present.
func countFields(rec models.RawInsight) map[string]string {
	out := make(map[string]string, 3)
	if rec.Impressions != "" {
		out["impressions"] = rec.Impressions
	}
	if rec.Reach != "" {
		out["reach"] = rec.Reach
	}
	if rec.Clicks != "" {
		out["clicks"] = rec.Clicks
	}
	return out
}

// amountFields returns the monetary/ratio fields of a record that are present.
func amountFields(rec models.RawInsight) map[string]string {
	out := make(map[string]string, 4)
	if rec.Spend != "" {
		out["spend"] = rec.Spend
	}
	if rec.CPC != "" {
		out["cpc"] = rec.CPC
	}
	if rec.CTR != "" {
		out["ctr"] = rec.CTR
	}
	if rec.Frequency != "" {
		out["frequency"] = rec.Frequency
	}
	return out
}

func parseCount(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
