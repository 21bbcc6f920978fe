package rules

import (
	"fmt"
	"strings"
)

// NoAlertText is returned when no rule fires over a batch.
const NoAlertText = "No outbreak alerts. Situation normal."

// Record is one row of the tabular batch the engine scans. Symptoms,
// Severity, WaterQuality and TreatmentGiven are matched by case-insensitive
// substring, mirroring how the field data actually arrives (free text, not
// clean enums).
type Record struct {
	Age            int
	Symptoms       string
	Severity       string
	WaterSource    string
	TreatmentGiven string
	WaterQuality   string
}

// Thresholds holds the trigger points of the seven outbreak rules. Share
// fields are fractions of the full batch size.
type Thresholds struct {
	WaterborneShare   float64 // rule 1: Diarrhea/Vomiting cases
	FluShare          float64 // rule 2: fever count + cough count (overlap allowed)
	SevereShare       float64 // rule 3: severe cases
	SourceSevereCount int     // rule 4: severe cases per water source
	PoorWaterShare    float64 // rule 5: rows marked poor water quality
	NoTreatmentShare  float64 // rule 6: rows with no treatment
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		WaterborneShare:   0.10,
		FluShare:          0.15,
		SevereShare:       0.05,
		SourceSevereCount: 3,
		PoorWaterShare:    0.20,
		NoTreatmentShare:  0.10,
	}
}

// Engine evaluates the threshold rules over a record batch. Thresholds are
// fixed at construction.
type Engine struct {
	t Thresholds
}

func NewEngine(t Thresholds) *Engine {
	return &Engine{t: t}
}

// Generate runs all seven rules against the batch and returns the
// newline-joined alert lines, or NoAlertText when nothing fired. Rules are
// independent: every percentage threshold uses the original batch size as
// denominator, and an empty batch triggers nothing.
func (e *Engine) Generate(records []Record) string {
	var alerts []string
	n := len(records)

	// Rule 1: Diarrhea/Vomiting cluster, possible waterborne outbreak.
	waterborne := countMatching(records, func(r Record) bool {
		return containsFold(r.Symptoms, "Diarrhea") || containsFold(r.Symptoms, "Vomiting")
	})
	if n > 0 && float64(waterborne) >= e.t.WaterborneShare*float64(n) {
		alerts = append(alerts, fmt.Sprintf("Possible Waterborne Outbreak: %d cases of Diarrhea/Vomiting detected", waterborne))
	}

	// Rule 2: fever + cough counts may overlap on the same row. Intentional,
	// the two subsets are not deduplicated.
	fever := countMatching(records, func(r Record) bool { return containsFold(r.Symptoms, "Fever") })
	cough := countMatching(records, func(r Record) bool { return containsFold(r.Symptoms, "Cough") })
	if n > 0 && float64(fever+cough) >= e.t.FluShare*float64(n) {
		alerts = append(alerts, fmt.Sprintf("Possible Flu/Viral Outbreak: %d fever + %d cough cases", fever, cough))
	}

	// Rule 3: severe-case share.
	severe := countMatching(records, func(r Record) bool { return containsFold(r.Severity, "Severe") })
	if n > 0 && float64(severe) >= e.t.SevereShare*float64(n) {
		alerts = append(alerts, fmt.Sprintf("High Severity Alert: %d severe cases found", severe))
	}

	// Rule 4: per-water-source severe clusters, one line per source. Sources
	// are visited in first-appearance order so output stays deterministic.
	// Severity here is an exact match, not a substring.
	severeBySource := make(map[string]int)
	var sources []string
	for _, r := range records {
		if _, seen := severeBySource[r.WaterSource]; !seen {
			severeBySource[r.WaterSource] = 0
			sources = append(sources, r.WaterSource)
		}
		if r.Severity == "Severe" {
			severeBySource[r.WaterSource]++
		}
	}
	for _, source := range sources {
		if severeBySource[source] >= e.t.SourceSevereCount {
			alerts = append(alerts, fmt.Sprintf("Outbreak Alert in %s: %d severe cases", source, severeBySource[source]))
		}
	}

	// Rule 5: poor water quality share.
	poorWater := countMatching(records, func(r Record) bool { return containsFold(r.WaterQuality, "Poor") })
	if n > 0 && float64(poorWater) >= e.t.PoorWaterShare*float64(n) {
		alerts = append(alerts, fmt.Sprintf("Poor Water Quality Alert: %d entries marked poor", poorWater))
	}

	// Rule 6: treatment gap.
	noTreatment := countMatching(records, func(r Record) bool { return containsFold(r.TreatmentGiven, "No Treatment") })
	if n > 0 && float64(noTreatment) >= e.t.NoTreatmentShare*float64(n) {
		alerts = append(alerts, fmt.Sprintf("Health Risk: %d people received no treatment", noTreatment))
	}

	// Rule 7: severe cases in children under 10. Exact severity match.
	childrenSevere := countMatching(records, func(r Record) bool { return r.Age < 10 && r.Severity == "Severe" })
	if childrenSevere > 0 {
		alerts = append(alerts, fmt.Sprintf("Child Health Risk: %d severe cases in children (<10 yrs)", childrenSevere))
	}

	if len(alerts) == 0 {
		return NoAlertText
	}
	return strings.Join(alerts, "\n")
}

func countMatching(records []Record, match func(Record) bool) int {
	count := 0
	for _, r := range records {
		if match(r) {
			count++
		}
	}
	return count
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
