package pipeline

import "github.com/radiusdt/ads-insights/internal/models"

// Quality classifications.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityPoor      = "poor"
)

// Penalty weights per defect class.
const (
	penaltyValidationError   = 25
	penaltyFailedEndpoint    = 10
	penaltyValidationWarning = 5
	penaltyTransformWarning  = 2
	penaltyEmptyCollection   = 30
)

// QualityReport scores one ingestion run. Derived, regenerated each run,
// never persisted on its own.
type QualityReport struct {
	Score          int    `json:"score"`
	Classification string `json:"classification"`
	TotalRecords   int    `json:"total_records"`
	Errors         int    `json:"errors"`
	Warnings       int    `json:"warnings"`
}

// BuildQualityReport derives a 0-100 score from the outcomes of one run.
func BuildQualityReport(summary models.CollectionSummary, validation models.ValidationResult, transform *models.TransformResult) QualityReport {
	score := 100
	warnings := len(validation.Warnings) + len(summary.Warnings)

	score -= penaltyValidationError * len(validation.Errors)
	score -= penaltyFailedEndpoint * len(summary.FailedEndpoints)
	score -= penaltyValidationWarning * warnings
	if transform != nil {
		score -= penaltyTransformWarning * len(transform.Warnings)
		warnings += len(transform.Warnings)
	}
	if summary.TotalRecords == 0 {
		score -= penaltyEmptyCollection
	}
	if score < 0 {
		score = 0
	}

	return QualityReport{
		Score:          score,
		Classification: classify(score),
		TotalRecords:   summary.TotalRecords,
		Errors:         len(validation.Errors),
		Warnings:       warnings,
	}
}

func classify(score int) string {
	switch {
	case score >= 90:
		return QualityExcellent
	case score >= 70:
		return QualityGood
	case score >= 50:
		return QualityFair
	default:
		return QualityPoor
	}
}
