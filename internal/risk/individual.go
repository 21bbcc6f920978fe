package risk

import "github.com/swasthya/go-outbreak-alerts/internal/models"

// maxCaseScore is the defined per-case ceiling used to normalize the
// average. It is a fixed constant, not recomputed from the data.
const maxCaseScore = 39

// highRiskSymptoms are the extracted symptom tags that each add 3 to a
// case's score.
var highRiskSymptoms = map[string]bool{
	"Vomiting": true,
	"Diarrhea": true,
	"Fever":    true,
}

// CaseScore returns the additive risk contribution of one extracted case.
func CaseScore(c models.IndividualCase) int {
	score := 0

	switch c.Severity {
	case models.SeveritySevere:
		score += 10
	case models.SeverityModerate:
		score += 5
	case models.SeverityMild:
		score++
	}

	if c.Age < 10 || c.Age > 60 {
		score += 5
	}

	for _, s := range c.Symptoms {
		if highRiskSymptoms[s] {
			score += 3
		}
	}

	if c.WaterQuality == "Poor" {
		score += 5
	}
	if c.TreatmentGiven == "None" {
		score += 10
	}

	return score
}

// ScoreCases averages per-case scores, normalizes against maxCaseScore and
// bands the result. An empty case list scores (0, Very Low) without error.
// Note the banding cut points differ from the village-level table; the two
// scales are independent.
func ScoreCases(cases []models.IndividualCase) (float64, models.RiskLevel) {
	if len(cases) == 0 {
		return 0.0, models.RiskVeryLow
	}

	total := 0
	for _, c := range cases {
		total += CaseScore(c)
	}
	avg := float64(total) / float64(len(cases))
	pct := avg / maxCaseScore * 100

	return pct, IndividualLevel(pct)
}

// IndividualLevel bands an outbreak-risk percentage for extracted case
// lists. Boundaries fall into the lower band.
func IndividualLevel(pct float64) models.RiskLevel {
	switch {
	case pct > 80:
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
