package summary

import (
	"encoding/json"
	"fmt"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
)

func extractionPrompt(alertText string) string {
	schema, _ := json.MarshalIndent(caseListSchema, "", "  ")
	return fmt.Sprintf(`Analyze the following rule-based alert and extract structured JSON data
according to this schema: %s

Alert:
%s

Output only the JSON, no extra text.
`, schema, alertText)
}

func narrativePrompt(alertText string, level models.RiskLevel, pct float64, cases []models.IndividualCase) string {
	structured, _ := json.MarshalIndent(extractedData{Individuals: cases}, "", "  ")
	return fmt.Sprintf(`You are a senior public health analyst for the Indian Ministry of the North Eastern Region, tasked with writing an urgent field directive. Your writing style must be official, clear, and direct. Avoid jargon and AI-like conversational phrases. The output must be a pure, clean HTML snippet.

**Context for Directive:**
- **Raw Field Alert Data:** %s
- **Calculated Outbreak Risk:** %s (%.1f%%)
- **Structured Case Data:** %s

**Your Task:**
Generate an HTML summary based *only* on the provided context. Adhere strictly to the following rules and HTML structure.

**CRITICAL RULES:**
1.  **HTML Only:** Your entire output must be valid HTML. Do not include any text or characters outside of the HTML structure provided.
2.  **No Markdown:** Do NOT use any markdown syntax (e.g., `+"`**`, `*`, `#`"+`). All formatting must be done with HTML tags.
3.  **Strict Bolding:** Use `+"`<strong>`"+` tags ONLY for the main numbered headings (e.g., `+"`<strong>1. Risk Overview</strong>`"+`) and the specific subheadings within the "Immediate Actions Required" list (e.g., `+"`<strong>For ASHA Workers:</strong>`"+`). No other text should be bold.
4.  **Human Tone:** Write as a human expert. Be authoritative and concise. Do not use filler words or phrases that sound like a language model (e.g., "Based on the data...", "It is important to...").
5.  **Fill Placeholders:** Replace the bracketed `+"`[...]`"+` content in the template with specific, data-driven findings from the context.

**Mandatory HTML Structure:**

<strong>1. Risk Overview</strong>
<p>Risk Level: %s (%.1f%%). [Directly state the primary reason for this risk level based on key factors like severity, age, and treatment gaps.]</p>

<strong>2. Key Findings</strong>
<ul>
  <li>[Identify the most vulnerable groups based on age and severity from the structured data.]</li>
  <li>[List the most prevalent symptoms observed in the cases.]</li>
  <li>[Specify environmental factors mentioned, such as water quality.]</li>
  <li>[State the number or proportion of individuals who have not received treatment.]</li>
</ul>

<strong>3. Immediate Actions Required</strong>
<ol>
  <li><strong>For ASHA Workers:</strong> [Provide a clear, actionable instruction, e.g., "Immediately begin screening all households in the affected area, focusing on children under 10..."]</li>
  <li><strong>For NGOs:</strong> [Provide a clear, actionable instruction, e.g., "Coordinate with local health centers to distribute ORS and water purification tablets..."]</li>
  <li><strong>Escalation Protocol:</strong> [Define the trigger for escalation, e.g., "If more than 5 new severe cases are reported in a 24-hour period, immediately escalate to the District Surveillance Officer."].</li>
</ol>

<strong>4. Monitoring Guidance</strong>
<ul>
  <li>[Specify key metrics to monitor, e.g., "Track the number of new cases and their severity daily."].</li>
  <li>[List specific warning signs of a worsening outbreak, e.g., "An increase in the proportion of severe cases or spread to new geographical clusters."].</li>
</ul>
`, alertText, level, pct, structured, level, pct)
}
