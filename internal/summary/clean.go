package summary

import "strings"

// boldHeadings is the fixed allow-list of heading strings that may carry
// bold markup in a cleaned narrative. Everything else is stripped.
var boldHeadings = []string{
	"1. Risk Overview",
	"2. Key Findings",
	"3. Immediate Actions Required",
	"4. Monitoring Guidance",
	"For ASHA Workers:",
	"For NGOs:",
	"Escalation Protocol:",
}

// CleanNarrative normalizes raw model output into the strict format the
// dashboard renders: code fences gone, every bold marker removed, then
// <strong> re-applied only to the allow-listed headings wherever they
// occur.
func CleanNarrative(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```html") {
		text = strings.TrimSpace(strings.TrimPrefix(text, "```html"))
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSpace(strings.TrimSuffix(text, "```"))
	}

	text = strings.ReplaceAll(text, "<strong>", "")
	text = strings.ReplaceAll(text, "</strong>", "")
	text = strings.ReplaceAll(text, "**", "")

	for _, heading := range boldHeadings {
		text = strings.ReplaceAll(text, heading, "<strong>"+heading+"</strong>")
	}

	return text
}
