package llm

import (
	"strings"
)

// BuildSystemPrompt embeds the serialized standards table and pins the
// response to numbered, bracketed lines.
func BuildSystemPrompt(standardsJSON string) string {
	parts := []string{
		"You review architectural plans and building-permit documents for building-code compliance.",
		"Analyze the document excerpt against these standards:",
		standardsJSON,
		"Respond ONLY with compliance issues, one per line, in exactly this format:",
		"N. [Standard]: description",
		"where N is the issue number starting at 1 and Standard is the standards category the issue violates.",
		"Quote measured values and the limit they break in the description.",
		"If you find no issues, respond with an empty message.",
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt sends at most MaxExcerptRunes characters of text.
func BuildUserPrompt(text string) string {
	return "DOCUMENT EXCERPT:\n" + truncateRunes(text, MaxExcerptRunes)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
