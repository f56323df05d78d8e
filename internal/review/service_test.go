package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"code-review-assistant/backend/internal/ai"
	"code-review-assistant/backend/internal/models"
	"code-review-assistant/backend/internal/repository"
	"code-review-assistant/backend/internal/testutil"
	"code-review-assistant/backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	fn      func(prompt string) (ai.Completion, error)
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ int) (ai.Completion, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	fn := f.fn
	f.mu.Unlock()
	return fn(prompt)
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[len(f.prompts)-1]
}

func reply(text string) func(string) (ai.Completion, error) {
	return func(string) (ai.Completion, error) {
		return ai.Completion{Text: text, LatencyMS: 42, Attempts: 1}, nil
	}
}

func unavailable(string) (ai.Completion, error) {
	return ai.Completion{}, fmt.Errorf("%w after 3 attempt(s): timeout", ai.ErrServiceUnavailable)
}

type testEnv struct {
	svc   *Service
	db    *gorm.DB
	gen   *fakeGenerator
	cache *cache.Memory
}

func newTestEnv(t *testing.T, fn func(string) (ai.Completion, error)) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	gen := &fakeGenerator{fn: fn}
	store := cache.NewMemory(100, 0)
	t.Cleanup(func() { store.Close() })

	svc := NewService(
		repository.NewGormSessionRepository(db),
		repository.NewGormFeedbackRepository(db),
		gen,
		store,
		nil,
		nil,
		Options{PatternHistory: 10},
	)
	return &testEnv{svc: svc, db: db, gen: gen, cache: store}
}

func texts(suggestions []models.Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Text
	}
	return out
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestReviewReplacesPriorSuggestions(t *testing.T) {
	outputs := []string{
		"--- SUGGESTION 1 ---\nfirst-a\n--- SUGGESTION 2 ---\nfirst-b\n--- SUGGESTION 3 ---\nfirst-c",
		"--- SUGGESTION 1 ---\n**Severity:** High\nsecond-a\n--- SUGGESTION 2 ---\nsecond-b",
	}
	call := 0
	env := newTestEnv(t, func(string) (ai.Completion, error) {
		out := outputs[call]
		call++
		return ai.Completion{Text: out, LatencyMS: 10, Attempts: 1}, nil
	})
	ctx := context.Background()

	first, err := env.svc.Review(ctx, ReviewInput{Code: "x = 1", Language: "python", SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := env.svc.Review(ctx, ReviewInput{Code: "x = 2", Language: "python", SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, models.SeverityHigh, second[0].Severity)

	session, stored, err := env.svc.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "x = 2", session.Code)
	assert.Equal(t, models.SessionSuggested, session.State)
	assert.Equal(t, texts(second), texts(stored))
	for _, s := range stored {
		assert.False(t, strings.HasPrefix(s.Text, "first-"), s.Text)
	}

	assert.Equal(t, int64(1), count(t, env.db, &models.CodeSession{}))
	assert.Equal(t, int64(2), count(t, env.db, &models.SuggestionLatency{}))
}

func TestReviewNeverRepeatsRejectedText(t *testing.T) {
	env := newTestEnv(t, reply(sampleOutput))
	ctx := context.Background()

	first, err := env.svc.Review(ctx, ReviewInput{Code: "def f(): return 3.14", Language: "python", SessionID: "s1"})
	require.NoError(t, err)
	rejected := first[0].Text

	require.NoError(t, env.svc.Reject(ctx, RejectInput{
		SessionID:      "s1",
		SuggestionID:   first[0].SuggestionID,
		SuggestionText: rejected,
		RejectReason:   "style only",
	}))

	for i := 0; i < 3; i++ {
		got, err := env.svc.Review(ctx, ReviewInput{Code: "def f(): return 3.14", Language: "python", SessionID: "s1"})
		require.NoError(t, err)
		assert.NotContains(t, texts(got), rejected)
		assert.Equal(t, 1, got[0].SuggestionID)
	}

	prompt := env.gen.lastPrompt()
	assert.Contains(t, prompt, "- "+rejected)
	assert.Contains(t, prompt, "User has rejected suggestions such as:")
	assert.Contains(t, prompt, "(Reason: style only)")
}

func TestReviewGatewayFailureKeepsPreviousState(t *testing.T) {
	env := newTestEnv(t, reply(sampleOutput))
	ctx := context.Background()

	before, err := env.svc.Review(ctx, ReviewInput{Code: "x = 1", Language: "python", SessionID: "s1"})
	require.NoError(t, err)

	env.gen.fn = unavailable
	_, err = env.svc.Review(ctx, ReviewInput{Code: "x = 2", Language: "python", SessionID: "s1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrServiceUnavailable)
	assert.NotErrorIs(t, err, ErrStorage)

	session, stored, err := env.svc.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "x = 1", session.Code)
	assert.Equal(t, texts(before), texts(stored))
	assert.Equal(t, int64(1), count(t, env.db, &models.SuggestionLatency{}))
}

func TestReviewStorageFailureRollsBack(t *testing.T) {
	env := newTestEnv(t, reply(sampleOutput))
	ctx := context.Background()

	before, err := env.svc.Review(ctx, ReviewInput{Code: "x = 1", Language: "python", SessionID: "s1"})
	require.NoError(t, err)

	require.NoError(t, env.db.Callback().Create().Before("gorm:create").Register("test:fail_suggestions", func(tx *gorm.DB) {
		if tx.Statement.Table == "ai_suggestions" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	_, err = env.svc.Review(ctx, ReviewInput{Code: "x = 2", Language: "python", SessionID: "s1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)

	session, stored, err := env.svc.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "x = 1", session.Code)
	assert.Equal(t, texts(before), texts(stored))
	assert.Equal(t, int64(1), count(t, env.db, &models.SuggestionLatency{}))
}

func TestReviewValidation(t *testing.T) {
	env := newTestEnv(t, reply(sampleOutput))
	ctx := context.Background()

	inputs := []ReviewInput{
		{Code: "  ", Language: "python", SessionID: "s1"},
		{Code: "x = 1", Language: "python", SessionID: ""},
		{Code: "x = 1", Language: "", SessionID: "s1"},
	}
	for _, in := range inputs {
		_, err := env.svc.Review(ctx, in)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Equal(t, 0, env.gen.calls())
}

func TestReviewPersistsCannedSuggestion(t *testing.T) {
	env := newTestEnv(t, reply("   "))
	ctx := context.Background()

	got, err := env.svc.Review(ctx, ReviewInput{Code: "x = 1", Language: "brainfuck", SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, NoSuggestionsText, got[0].Text)
	assert.Equal(t, models.SeverityLow, got[0].Severity)

	_, stored, err := env.svc.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, texts(got), texts(stored))
}

func TestReviewStoresFilePathAndOwner(t *testing.T) {
	env := newTestEnv(t, reply(sampleOutput))
	ctx := context.Background()
	path := "pkg/main.go"
	userID := uint(7)

	_, err := env.svc.Review(ctx, ReviewInput{Code: "package main", Language: "go", SessionID: "s1", FilePath: &path, UserID: &userID})
	require.NoError(t, err)

	session, stored, err := env.svc.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, session.UserID)
	assert.Equal(t, userID, *session.UserID)
	for _, s := range stored {
		require.NotNil(t, s.FilePath)
		assert.Equal(t, path, *s.FilePath)
	}
}

func TestConcurrentReviewsLastWriterWins(t *testing.T) {
	env := newTestEnv(t, func(prompt string) (ai.Completion, error) {
		tag := "A"
		if strings.Contains(prompt, "code-B") {
			tag = "B"
		}
		return ai.Completion{Text: fmt.Sprintf("--- SUGGESTION 1 ---\nfix-%s-1\n--- SUGGESTION 2 ---\nfix-%s-2", tag, tag)}, nil
	})
	ctx := context.Background()

	results := make([][]models.Suggestion, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, code := range []string{"code-A", "code-B"} {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()
			results[i], errs[i] = env.svc.Review(ctx, ReviewInput{Code: code, Language: "python", SessionID: "shared"})
		}(i, code)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	session, stored, err := env.svc.GetSession(ctx, "shared")
	require.NoError(t, err)

	winner, loser := results[0], results[1]
	if session.Code == "code-B" {
		winner, loser = results[1], results[0]
	}
	assert.Equal(t, texts(winner), texts(stored))
	for _, s := range loser {
		assert.NotContains(t, texts(stored), s.Text)
	}
	assert.Equal(t, int64(1), count(t, env.db, &models.CodeSession{}))
}

func TestFeedbackSurvivesReReview(t *testing.T) {
	env := newTestEnv(t, reply(sampleOutput))
	ctx := context.Background()

	_, err := env.svc.Review(ctx, ReviewInput{Code: "x = 1", Language: "python", SessionID: "s1"})
	require.NoError(t, err)
	require.NoError(t, env.svc.Reject(ctx, RejectInput{SessionID: "s1", SuggestionID: 2, SuggestionText: "noise"}))

	_, err = env.svc.Review(ctx, ReviewInput{Code: "x = 2", Language: "python", SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), count(t, env.db, &models.RejectedFeedback{}))
	assert.Equal(t, int64(1), count(t, env.db, &models.UserPattern{}))
}

func TestPurgeSession(t *testing.T) {
	env := newTestEnv(t, reply(sampleOutput))
	ctx := context.Background()

	_, err := env.svc.Review(ctx, ReviewInput{Code: "x = 1", Language: "python", SessionID: "s1"})
	require.NoError(t, err)
	require.NoError(t, env.svc.Reject(ctx, RejectInput{SessionID: "s1", SuggestionID: 1, SuggestionText: "noise"}))

	require.NoError(t, env.svc.PurgeSession(ctx, "s1"))

	_, _, err = env.svc.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
	for _, model := range repository.Models() {
		if _, isUser := model.(*models.User); isUser {
			continue
		}
		assert.Equal(t, int64(0), count(t, env.db, model))
	}

	assert.ErrorIs(t, env.svc.PurgeSession(ctx, "s1"), ErrNotFound)
}

// countingStore records how often the summary cache answers
type countingStore struct {
	cache.Store
	mu     sync.Mutex
	hits   int
	misses int
}

func (c *countingStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := c.Store.Get(ctx, key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok, err
}

func TestReviewReusesCachedSummary(t *testing.T) {
	db := testutil.NewDB(t)
	mem := cache.NewMemory(100, 0)
	t.Cleanup(func() { mem.Close() })
	store := &countingStore{Store: mem}

	svc := NewService(
		repository.NewGormSessionRepository(db),
		repository.NewGormFeedbackRepository(db),
		&fakeGenerator{fn: reply(sampleOutput)},
		store,
		nil,
		nil,
		Options{PatternHistory: 10, SummaryTTL: time.Hour},
	)
	ctx := context.Background()
	in := ReviewInput{Code: "x = 1", Language: "python", SessionID: "s1"}

	for i := 0; i < 3; i++ {
		_, err := svc.Review(ctx, in)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.misses)
	assert.Equal(t, 2, store.hits)

	require.NoError(t, svc.Reject(ctx, RejectInput{SessionID: "s1", SuggestionID: 1, SuggestionText: "noise", RejectReason: "irrelevant"}))
	_, err := svc.Review(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 2, store.misses)
}
