package review

import (
	"context"
	"testing"

	"code-review-assistant/backend/internal/ai"
	"code-review-assistant/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptReturnsOriginalCodeWhenPatchFails(t *testing.T) {
	env := newTestEnv(t, unavailable)
	ctx := context.Background()

	got, err := env.svc.Accept(ctx, AcceptInput{
		SessionID:      "s1",
		SuggestionID:   1,
		SuggestionText: "use math.pi instead of 3.14",
		OriginalCode:   "def f(): return 3.14",
		Language:       "python",
	})

	require.NoError(t, err)
	assert.Equal(t, "def f(): return 3.14", got)

	var stored models.AcceptedFeedback
	require.NoError(t, env.db.First(&stored).Error)
	assert.Equal(t, "s1", stored.SessionID)
	assert.Equal(t, "use math.pi instead of 3.14", stored.SuggestionText)
	assert.Equal(t, "def f(): return 3.14", stored.OriginalCode)
	assert.Equal(t, int64(1), count(t, env.db, &models.UserPattern{}))
}

func TestAcceptAppliesPatch(t *testing.T) {
	env := newTestEnv(t, reply("```python\nimport math\ndef f(): return math.pi\n```"))
	ctx := context.Background()
	userID := uint(3)

	got, err := env.svc.Accept(ctx, AcceptInput{
		SessionID:      "s1",
		SuggestionID:   1,
		SuggestionText: "use math.pi instead of 3.14",
		OriginalCode:   "def f(): return 3.14",
		Language:       "python",
		UserID:         &userID,
	})

	require.NoError(t, err)
	assert.Equal(t, "import math\ndef f(): return math.pi", got)
	assert.Contains(t, env.gen.lastPrompt(), "SPECIFIC SUGGESTION TO APPLY:\nuse math.pi instead of 3.14")

	var p models.UserPattern
	require.NoError(t, env.db.First(&p).Error)
	assert.Equal(t, models.PatternAccepted, p.PatternType)
	assert.Equal(t, "use math.pi instead of 3.14", p.PatternData.SuggestionText)
	require.NotNil(t, p.UserID)
	assert.Equal(t, userID, *p.UserID)
}

func TestAcceptWithoutCodeSkipsPatch(t *testing.T) {
	env := newTestEnv(t, reply("should not be used"))

	got, err := env.svc.Accept(context.Background(), AcceptInput{SessionID: "s1", SuggestionID: 4, SuggestionText: "x"})

	require.NoError(t, err)
	assert.Equal(t, "", got)
	assert.Equal(t, 0, env.gen.calls())
}

func TestRejectInvalidatesSummaryCache(t *testing.T) {
	env := newTestEnv(t, reply(sampleOutput))
	ctx := context.Background()

	_, err := env.svc.Review(ctx, ReviewInput{Code: "x = 1", Language: "python", SessionID: "s1"})
	require.NoError(t, err)

	cached, ok, _ := env.cache.Get(ctx, summaryKey("s1"))
	require.True(t, ok)
	assert.Equal(t, NoFeedbackSummary, cached)

	require.NoError(t, env.svc.Reject(ctx, RejectInput{SessionID: "s1", SuggestionID: 1, SuggestionText: "noise", RejectReason: "irrelevant"}))

	_, ok, _ = env.cache.Get(ctx, summaryKey("s1"))
	assert.False(t, ok)

	summary, err := env.svc.patternSummary(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "User has rejected suggestions such as: noise (Reason: irrelevant).", summary)
	assert.Equal(t, 1, env.gen.calls())
}

func TestModify(t *testing.T) {
	env := newTestEnv(t, reply("  Prefer math.pi for precision.  "))
	ctx := context.Background()

	got, err := env.svc.Modify(ctx, ModifyInput{
		SessionID:    "s1",
		SuggestionID: 2,
		OriginalText: "use 3.14159",
		ModifiedText: "use math.pi",
		Language:     "python",
	})
	require.NoError(t, err)
	assert.Equal(t, "Prefer math.pi for precision.", got)

	var fb models.ModifiedFeedback
	require.NoError(t, env.db.First(&fb).Error)
	assert.Equal(t, "use 3.14159", fb.OriginalText)
	assert.Equal(t, "use math.pi", fb.ModifiedText)
}

func TestModifyFallsBackToDeveloperText(t *testing.T) {
	env := newTestEnv(t, func(string) (ai.Completion, error) { return unavailable("") })

	got, err := env.svc.Modify(context.Background(), ModifyInput{
		SessionID:    "s1",
		SuggestionID: 2,
		OriginalText: "use 3.14159",
		ModifiedText: "use math.pi",
	})

	require.NoError(t, err)
	assert.Equal(t, "use math.pi", got)
	assert.Equal(t, int64(1), count(t, env.db, &models.ModifiedFeedback{}))
}

func TestFeedbackValidation(t *testing.T) {
	env := newTestEnv(t, reply(""))
	ctx := context.Background()

	_, err := env.svc.Accept(ctx, AcceptInput{SessionID: "", SuggestionID: 1, SuggestionText: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	err = env.svc.Reject(ctx, RejectInput{SessionID: "s1", SuggestionID: 0, SuggestionText: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.Modify(ctx, ModifyInput{SessionID: "s1", SuggestionID: 1, OriginalText: "x", ModifiedText: " "})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, int64(0), count(t, env.db, &models.UserPattern{}))
}
