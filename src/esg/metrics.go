package esg

import (
	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

// NewDeepAnalytics builds the persisted record for a generated analytics
// document, lifting the numeric headline metrics out of it.
func NewDeepAnalytics(userID, reportID string, report map[string]any) *models.DeepAnalytics {
	return &models.DeepAnalytics{
		UserID:              userID,
		ReportID:            reportID,
		DeepReport:          report,
		Scope1Emissions:     lookupNumber(report, "emissions", "scope1"),
		Scope2Emissions:     lookupNumber(report, "emissions", "scope2"),
		Scope3Emissions:     lookupNumber(report, "emissions", "scope3"),
		IntensityPerUnit:    lookupNumber(report, "intensity", "perUnit"),
		IntensityPerRevenue: lookupNumber(report, "intensity", "perRevenue"),
		RenewablesShare:     lookupNumber(report, "energy", "renewablesShare"),
		CircularityScore:    lookupNumber(report, "circularity", "score"),
		EngagementIndex:     lookupNumber(report, "people", "engagementIndex"),
	}
}

func lookupNumber(doc map[string]any, section, field string) *float64 {
	nested, ok := doc[section].(map[string]any)
	if !ok {
		return nil
	}

	switch v := nested[field].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}
