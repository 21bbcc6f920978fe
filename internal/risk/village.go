package risk

import (
	"math"
	"strings"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
)

// caseSaturation is the case count at which the case score reaches 100.
const caseSaturation = 20

// VillageInputs are the merged per-village counts the scorer consumes.
type VillageInputs struct {
	SeverityCounts map[models.Severity]int
	TotalCases     int
	WaterRisk      bool   // any in-window survey reported no clean drinking water
	LatestAlert    string // latest rule-alert text for the village, "" if none
}

// ScoreVillage converts merged counts into a 0-100 risk percentage (one
// decimal) and its level. Weights: 60% severity mix, 30% case volume, plus
// flat penalties for water risk (20) and untreated cases mentioned in the
// latest alert (15); the sum is capped at 100.
func ScoreVillage(in VillageInputs) (float64, models.RiskLevel) {
	severe := in.SeverityCounts[models.SeveritySevere]
	moderate := in.SeverityCounts[models.SeverityModerate]
	mild := in.SeverityCounts[models.SeverityMild]

	// Denominator floors at 1 so a village with no severity data scores 0.
	denom := 3 * (severe + moderate + mild)
	if denom < 1 {
		denom = 1
	}
	severityScore := math.Min(100, float64(3*severe+2*moderate+mild)/float64(denom)*100)

	caseScore := math.Min(100, float64(in.TotalCases)/caseSaturation*100)

	waterPenalty := 0.0
	if in.WaterRisk {
		waterPenalty = 20
	}

	untreatedPenalty := 0.0
	alert := strings.ToLower(in.LatestAlert)
	if strings.Contains(alert, "no treatment") || strings.Contains(alert, "untreated") {
		untreatedPenalty = 15
	}

	pct := math.Min(100.0, 0.6*severityScore+0.3*caseScore+waterPenalty+untreatedPenalty)
	pct = math.Round(pct*10) / 10
	return pct, VillageLevel(pct)
}

// VillageLevel bands a village risk percentage. Boundaries fall into the
// lower band: exactly 60.0 is Moderate, not High.
func VillageLevel(pct float64) models.RiskLevel {
	switch {
	case pct > 90:
		return models.RiskVeryHigh
	case pct > 60:
		return models.RiskHigh
	case pct > 40:
		return models.RiskModerate
	case pct > 20:
		return models.RiskLow
	default:
		return models.RiskVeryLow
	}
}
