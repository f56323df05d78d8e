package review

import (
	"fmt"
	"strings"

	"code-review-assistant/backend/internal/models"
)

const (
	NoFeedbackSummary = "No prior feedback available."
	NoPatternSummary  = "User has provided feedback but no clear pattern yet."

	snippetLen         = 100
	modifiedSnippetLen = 80
	maxAccepted        = 3
	maxRejected        = 3
	maxModified        = 2
	defaultRejectText  = "No reason given"
)

// Summarize turns a newest-first pattern history into the short paragraph
// injected into review prompts. Output depends only on the input order.
func Summarize(patterns []models.UserPattern) string {
	if len(patterns) == 0 {
		return NoFeedbackSummary
	}

	var accepted, rejected, modified []string
	for _, p := range patterns {
		data := p.PatternData
		switch p.PatternType {
		case models.PatternAccepted:
			if len(accepted) < maxAccepted {
				accepted = append(accepted, truncate(data.SuggestionText, snippetLen))
			}
		case models.PatternRejected:
			if len(rejected) < maxRejected {
				reason := data.RejectReason
				if strings.TrimSpace(reason) == "" {
					reason = defaultRejectText
				}
				rejected = append(rejected, fmt.Sprintf("%s (Reason: %s)", truncate(data.SuggestionText, snippetLen), reason))
			}
		case models.PatternModified:
			if len(modified) < maxModified {
				modified = append(modified, fmt.Sprintf("Original: '%s' → Modified: '%s'",
					truncate(data.OriginalText, modifiedSnippetLen),
					truncate(data.ModifiedText, modifiedSnippetLen)))
			}
		}
	}

	var sentences []string
	if len(accepted) > 0 {
		sentences = append(sentences, "User has accepted suggestions like: "+strings.Join(accepted, "; ")+".")
	}
	if len(rejected) > 0 {
		sentences = append(sentences, "User has rejected suggestions such as: "+strings.Join(rejected, "; ")+".")
	}
	if len(modified) > 0 {
		sentences = append(sentences, "User tends to modify suggestions, e.g.: "+strings.Join(modified, "; ")+".")
	}

	if len(sentences) == 0 {
		return NoPatternSummary
	}
	return strings.Join(sentences, " ")
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
