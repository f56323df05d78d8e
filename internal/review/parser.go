package review

import (
	"regexp"
	"strings"

	"code-review-assistant/backend/internal/models"
)

// NoSuggestionsText is returned as the only suggestion when nothing usable was parsed
const NoSuggestionsText = "No specific suggestions found. Your code looks good!"

var (
	separatorPattern = regexp.MustCompile(`(?i)-{3,}\s*SUGGESTION\s*\d+\s*-{3,}`)
	severityPattern  = regexp.MustCompile(`(?i)\*{0,2}severity\*{0,2}\s*:\s*\*{0,2}\s*(high|medium|low)\b`)
)

// ParsedSuggestion is one block of model output
type ParsedSuggestion struct {
	Index    int
	Text     string
	Severity models.Severity
}

// Parse splits raw model output on "--- SUGGESTION n ---" markers. Blocks
// whose trimmed text equals a rejected text are dropped and the rest are
// numbered from 1. Missing or unreadable severity defaults to Medium.
// The result is never empty.
func Parse(raw string, rejected []string) []ParsedSuggestion {
	skip := make(map[string]struct{}, len(rejected))
	for _, r := range rejected {
		skip[strings.TrimSpace(r)] = struct{}{}
	}

	var out []ParsedSuggestion
	for _, block := range separatorPattern.Split(strings.TrimSpace(raw), -1) {
		text := strings.TrimSpace(block)
		if text == "" {
			continue
		}
		if _, ok := skip[text]; ok {
			continue
		}
		out = append(out, ParsedSuggestion{
			Index:    len(out) + 1,
			Text:     text,
			Severity: parseSeverity(text),
		})
	}

	if len(out) == 0 {
		return []ParsedSuggestion{{Index: 1, Text: NoSuggestionsText, Severity: models.SeverityLow}}
	}
	return out
}

func parseSeverity(block string) models.Severity {
	m := severityPattern.FindStringSubmatch(block)
	if m == nil {
		return models.SeverityMedium
	}
	switch strings.ToLower(m[1]) {
	case "high":
		return models.SeverityHigh
	case "low":
		return models.SeverityLow
	default:
		return models.SeverityMedium
	}
}
