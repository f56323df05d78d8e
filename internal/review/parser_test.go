package review

import (
	"strings"
	"testing"

	"code-review-assistant/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `--- SUGGESTION 1 ---
- **Line(s):** 1
- **Severity:** High
- **Issue:** Use math.pi instead of 3.14
--- SUGGESTION 2 ---
- **Line(s):** General
- **Severity:** low
- **Issue:** Add a docstring
--- SUGGESTION 3 ---
- **Line(s):** 1
- **Issue:** Name the function descriptively`

func TestParseSplitsAndExtractsSeverity(t *testing.T) {
	got := Parse(sampleOutput, nil)

	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, models.SeverityHigh, got[0].Severity)
	assert.True(t, strings.HasPrefix(got[0].Text, "- **Line(s):** 1"))
	assert.Equal(t, models.SeverityLow, got[1].Severity)
	assert.Equal(t, models.SeverityMedium, got[2].Severity)
	assert.Equal(t, 3, got[2].Index)
}

func TestParseSeverityVariants(t *testing.T) {
	tests := map[string]models.Severity{
		"**Severity:** High":   models.SeverityHigh,
		"**Severity**: medium": models.SeverityMedium,
		"Severity: LOW":        models.SeverityLow,
		"severity:high":        models.SeverityHigh,
		"Severity: Critical":   models.SeverityMedium,
	}
	for block, want := range tests {
		assert.Equal(t, want, parseSeverity(block), block)
	}

	// the template placeholder is not a severity
	assert.Equal(t, models.SeverityMedium, parseSeverity("**Severity:** {High, Medium, or Low}"))
}

func TestParseWithoutSeverityMarkersIsAllMedium(t *testing.T) {
	raw := "--- SUGGESTION 1 ---\nRename x\n--- SUGGESTION 2 ---\nRemove dead code\n--- SUGGESTION 3 ---\nAdd tests"

	got := Parse(raw, nil)

	require.Len(t, got, 3)
	for _, s := range got {
		assert.Equal(t, models.SeverityMedium, s.Severity)
	}
}

func TestParseEmptyYieldsCannedSuggestion(t *testing.T) {
	for _, raw := range []string{"", "   \n\t  ", "--- SUGGESTION 1 ---\n\n--- SUGGESTION 2 ---"} {
		got := Parse(raw, nil)
		require.Len(t, got, 1, "raw=%q", raw)
		assert.Equal(t, NoSuggestionsText, got[0].Text)
		assert.Equal(t, models.SeverityLow, got[0].Severity)
		assert.Equal(t, 1, got[0].Index)
	}
}

func TestParseDropsRejectedText(t *testing.T) {
	first := Parse(sampleOutput, nil)
	rejected := []string{"  " + first[0].Text + "\n"}

	for i := 0; i < 5; i++ {
		got := Parse(sampleOutput, rejected)
		require.Len(t, got, 2)
		for _, s := range got {
			assert.NotEqual(t, first[0].Text, s.Text)
		}
		assert.Equal(t, 1, got[0].Index)
		assert.Equal(t, 2, got[1].Index)
	}
}

func TestParseAllRejectedYieldsCannedSuggestion(t *testing.T) {
	raw := "--- SUGGESTION 1 ---\nUse math.pi instead of 3.14"

	got := Parse(raw, []string{"Use math.pi instead of 3.14"})

	require.Len(t, got, 1)
	assert.Equal(t, NoSuggestionsText, got[0].Text)
}

func TestParseToleratesSeparatorSpacing(t *testing.T) {
	raw := "---SUGGESTION 1---\nA\n----  suggestion 2  ----\nB"

	got := Parse(raw, nil)

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Text)
	assert.Equal(t, "B", got[1].Text)
}
