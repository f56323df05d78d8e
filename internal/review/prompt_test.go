package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewPromptEmbedsContext(t *testing.T) {
	p := reviewPrompt("def f(): return 3.14", "python", "User has accepted suggestions like: x.", []string{"Use math.pi", "Use math.pi", " "})

	assert.Contains(t, p, "expert python code reviewer")
	assert.Contains(t, p, "User has accepted suggestions like: x.")
	assert.Equal(t, 1, strings.Count(p, "- Use math.pi"))
	assert.Contains(t, p, "def f(): return 3.14")
	assert.Contains(t, p, "--- SUGGESTION {n} ---")
}

func TestReviewPromptWithoutRejections(t *testing.T) {
	p := reviewPrompt("x = 1", "python", NoFeedbackSummary, nil)
	assert.Contains(t, p, "No previously rejected suggestions.")
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, "import math\n    return math.pi", stripCodeFences("```python\nimport math\n    return math.pi\n```"))
	assert.Equal(t, "x = 1", stripCodeFences("```\nx = 1\n```\n"))
	assert.Equal(t, "plain code", stripCodeFences("  plain code  "))
	assert.Equal(t, "", stripCodeFences("```"))
}
