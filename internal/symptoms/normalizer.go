package symptoms

import "strings"

// Normalizer canonicalizes free-text symptom tokens against a fixed synonym
// table. Unknown tokens pass through case-folded rather than being rejected,
// so foreign or misspelled entries still show up in distributions.
type Normalizer struct {
	synonyms map[string]string
}

// DefaultSynonyms returns the built-in symptom synonym table.
func DefaultSynonyms() map[string]string {
	return map[string]string{
		"vomiting":  "vomiting",
		"diarrhea":  "diarrhea",
		"diarrhoea": "diarrhea",
		"fever":     "fever",
		"cough":     "cough",
		"typhoid":   "typhoid",
		"cholera":   "cholera",
		"headache":  "headache",
	}
}

// NewNormalizer builds a Normalizer over the given synonym table. A nil
// table falls back to DefaultSynonyms. The table is copied so callers cannot
// mutate it afterwards.
func NewNormalizer(synonyms map[string]string) *Normalizer {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	table := make(map[string]string, len(synonyms))
	for k, v := range synonyms {
		table[strings.ToLower(k)] = v
	}
	return &Normalizer{synonyms: table}
}

// Normalize lower-cases and trims token, then applies the synonym table.
func (n *Normalizer) Normalize(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if canonical, ok := n.synonyms[token]; ok {
		return canonical
	}
	return token
}

// Parse splits free text on comma, semicolon, newline and the literal
// " and ", then normalizes each surviving fragment. Empty input yields an
// empty slice; there is no failure mode.
func (n *Normalizer) Parse(text string) []string {
	if text == "" {
		return nil
	}
	for _, sep := range []string{";", "\n", " and "} {
		text = strings.ReplaceAll(text, sep, ",")
	}
	var tokens []string
	for _, part := range strings.Split(text, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		tokens = append(tokens, n.Normalize(part))
	}
	return tokens
}
