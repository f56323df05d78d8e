package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"code-review-assistant/backend/internal/ai"
	"code-review-assistant/backend/internal/models"
	"code-review-assistant/backend/internal/repository"
	"code-review-assistant/backend/pkg/cache"
	"code-review-assistant/backend/pkg/logger"
	"code-review-assistant/backend/pkg/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("code-review-assistant/backend/internal/review")

// Generator is the model call the pipeline depends on
type Generator interface {
	Generate(ctx context.Context, prompt string, maxRetries int) (ai.Completion, error)
}

// Options tunes the pipeline
type Options struct {
	// PatternHistory bounds how many feedback patterns feed the summary
	PatternHistory int
	SummaryTTL     time.Duration
	// MaxRetries is passed to the generator; zero uses its default
	MaxRetries int
}

// Service runs the review pipeline and records feedback on its output
type Service struct {
	sessions repository.SessionRepository
	feedback repository.FeedbackRepository
	ai       Generator
	cache    cache.Store
	metrics  *observability.Metrics
	log      *logger.Logger
	opts     Options
}

// NewService wires the pipeline
func NewService(
	sessions repository.SessionRepository,
	feedback repository.FeedbackRepository,
	gen Generator,
	store cache.Store,
	metrics *observability.Metrics,
	log *logger.Logger,
	opts Options,
) *Service {
	if opts.PatternHistory <= 0 {
		opts.PatternHistory = 10
	}
	if store == nil {
		store = cache.Noop{}
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		sessions: sessions,
		feedback: feedback,
		ai:       gen,
		cache:    store,
		metrics:  metrics,
		log:      log,
		opts:     opts,
	}
}

// ReviewInput is one code submission
type ReviewInput struct {
	Code      string
	Language  string
	SessionID string
	FilePath  *string
	UserID    *uint
}

var knownLanguages = map[string]struct{}{
	"python": {}, "javascript": {}, "typescript": {}, "go": {}, "java": {},
	"c": {}, "cpp": {}, "c++": {}, "csharp": {}, "c#": {}, "ruby": {},
	"php": {}, "rust": {}, "kotlin": {}, "swift": {}, "scala": {},
	"sql": {}, "shell": {}, "bash": {}, "html": {}, "css": {},
}

func validateReview(in ReviewInput) error {
	switch {
	case strings.TrimSpace(in.Code) == "":
		return fmt.Errorf("%w: code must not be empty", ErrValidation)
	case strings.TrimSpace(in.SessionID) == "":
		return fmt.Errorf("%w: session_id must not be empty", ErrValidation)
	case strings.TrimSpace(in.Language) == "":
		return fmt.Errorf("%w: language must not be empty", ErrValidation)
	}
	return nil
}

// Review builds a prompt from the code, the session's feedback history and
// its rejected suggestions, asks the model, and stores the parsed result in
// place of any earlier review of the same session.
//
// Reads and the model call run before the single write transaction, so a
// failure at any step leaves the previous state untouched. Two concurrent
// reviews of one session race: the later commit wins and the other caller
// holds suggestions that no longer exist.
func (s *Service) Review(ctx context.Context, in ReviewInput) ([]models.Suggestion, error) {
	if err := validateReview(in); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "review.Review", trace.WithAttributes(
		attribute.String("review.session_id", in.SessionID),
		attribute.String("review.language", in.Language),
	))
	defer span.End()

	log := s.log.WithSession(in.SessionID)
	if _, ok := knownLanguages[strings.ToLower(in.Language)]; !ok {
		log.Info("Reviewing code in unrecognised language", "language", in.Language)
	}

	summary, err := s.patternSummary(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading feedback patterns: %w", ErrStorage, err)
	}

	rejected, err := s.feedback.RejectedTexts(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading rejected suggestions: %w", ErrStorage, err)
	}

	completion, err := s.ai.Generate(ctx, reviewPrompt(in.Code, in.Language, summary, rejected), s.opts.MaxRetries)
	if err != nil {
		log.LogError(err, "AI review failed")
		return nil, err
	}

	parsed := Parse(completion.Text, rejected)
	suggestions := make([]models.Suggestion, len(parsed))
	for i, p := range parsed {
		suggestions[i] = models.Suggestion{
			SessionID:    in.SessionID,
			SuggestionID: p.Index,
			Text:         p.Text,
			Severity:     p.Severity,
			Language:     in.Language,
			FilePath:     in.FilePath,
		}
	}

	session := &models.CodeSession{
		SessionID: in.SessionID,
		Code:      in.Code,
		Language:  in.Language,
		UserID:    in.UserID,
	}
	latency := &models.SuggestionLatency{LatencyMS: completion.LatencyMS}

	if err := s.sessions.ReplaceSession(ctx, session, latency, suggestions); err != nil {
		log.LogError(err, "Failed to store review")
		return nil, fmt.Errorf("%w: storing review: %w", ErrStorage, err)
	}

	s.metrics.RecordReview(ctx, in.Language, len(suggestions))
	log.Info("Review completed",
		"suggestions", len(suggestions),
		"rejected_filtered", len(rejected),
		"latency_ms", completion.LatencyMS,
		"attempts", completion.Attempts,
	)

	return suggestions, nil
}

// GetSession returns the stored session and its suggestions
func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.CodeSession, []models.Suggestion, error) {
	session, suggestions, err := s.sessions.GetSession(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: loading session: %w", ErrStorage, err)
	}
	return session, suggestions, nil
}

// PurgeSession deletes the session together with its feedback history
func (s *Service) PurgeSession(ctx context.Context, sessionID string) error {
	err := s.sessions.PurgeSession(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return fmt.Errorf("%w: purging session: %w", ErrStorage, err)
	}
	s.invalidateSummary(ctx, sessionID)
	s.log.WithSession(sessionID).Info("Session purged")
	return nil
}

func summaryKey(sessionID string) string {
	return "summary:" + sessionID
}

// patternSummary returns the cached summary or rebuilds it from the last patterns
func (s *Service) patternSummary(ctx context.Context, sessionID string) (string, error) {
	key := summaryKey(sessionID)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("Summary cache read failed", "session_id", sessionID, "error", err.Error())
	}
	s.metrics.RecordCacheLookup(ctx, ok)
	if ok {
		return cached, nil
	}

	patterns, err := s.feedback.RecentPatterns(ctx, sessionID, s.opts.PatternHistory)
	if err != nil {
		return "", err
	}
	summary := Summarize(patterns)

	if err := s.cache.Set(ctx, key, summary, s.opts.SummaryTTL); err != nil {
		s.log.Warn("Summary cache write failed", "session_id", sessionID, "error", err.Error())
	}
	return summary, nil
}

func (s *Service) invalidateSummary(ctx context.Context, sessionID string) {
	if err := s.cache.Delete(ctx, summaryKey(sessionID)); err != nil {
		s.log.Warn("Summary cache invalidation failed", "session_id", sessionID, "error", err.Error())
	}
}
