package models

// IndividualCase is one structured case record extracted from an alert's
// text by the LLM collaborator. Transient: scored, never persisted on its
// own.
type IndividualCase struct {
	Severity       Severity `json:"severity"`
	Age            int      `json:"age"`
	Symptoms       []string `json:"symptoms"`
	WaterQuality   string   `json:"water_quality"`   // "Poor" or "Good"
	TreatmentGiven string   `json:"treatment_given"` // "Yes" or "None"
}
