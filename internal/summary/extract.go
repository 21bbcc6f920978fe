package summary

import (
	"encoding/json"
	"fmt"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
)

// extractedData is the envelope the extraction call must return: a list of
// individual case records mentioned in the alert.
type extractedData struct {
	Individuals []models.IndividualCase `json:"individuals"`
}

// caseListSchema describes extractedData as a JSON schema. It is embedded
// verbatim in the extraction prompt so the model knows the exact shape and
// the allowed enum values.
var caseListSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"individuals": map[string]any{
			"type":        "array",
			"description": "A list of all individuals mentioned in the report.",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"severity": map[string]any{
						"type":        "string",
						"enum":        []string{"Mild", "Moderate", "Severe"},
						"description": "The severity of the case for one individual.",
					},
					"age": map[string]any{
						"type":        "integer",
						"description": "The age of the individual.",
					},
					"symptoms": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string", "enum": []string{"Vomiting", "Cough", "Diarrhea", "Fever"}},
						"description": "A list of high-risk symptoms observed. Can be empty.",
					},
					"water_quality": map[string]any{
						"type":        "string",
						"enum":        []string{"Poor", "Good"},
						"description": "The quality of the water source for the individual.",
					},
					"treatment_given": map[string]any{
						"type":        "string",
						"enum":        []string{"Yes", "None"},
						"description": "Whether treatment has been administered to the individual.",
					},
				},
				"required": []string{"severity", "age", "symptoms", "water_quality"},
			},
		},
	},
	"required": []string{"individuals"},
}

var validSymptomTags = map[string]bool{
	"Vomiting": true,
	"Cough":    true,
	"Diarrhea": true,
	"Fever":    true,
}

// parseExtraction decodes and validates the model's JSON output against the
// schema's enums. Violations are fatal for the alert being processed; they
// are never silently coerced.
func parseExtraction(raw []byte) ([]models.IndividualCase, error) {
	var data extractedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("malformed extraction output: %w", err)
	}

	for i, c := range data.Individuals {
		switch c.Severity {
		case models.SeverityMild, models.SeverityModerate, models.SeveritySevere:
		default:
			return nil, fmt.Errorf("individual %d: invalid severity %q", i, c.Severity)
		}
		for _, s := range c.Symptoms {
			if !validSymptomTags[s] {
				return nil, fmt.Errorf("individual %d: invalid symptom tag %q", i, s)
			}
		}
		if c.WaterQuality != "Poor" && c.WaterQuality != "Good" {
			return nil, fmt.Errorf("individual %d: invalid water quality %q", i, c.WaterQuality)
		}
		// treatment_given is optional in the schema; empty means unreported.
		if c.TreatmentGiven != "" && c.TreatmentGiven != "Yes" && c.TreatmentGiven != "None" {
			return nil, fmt.Errorf("individual %d: invalid treatment flag %q", i, c.TreatmentGiven)
		}
	}

	return data.Individuals, nil
}
