package review

import (
	"context"
	"fmt"
	"strings"

	"code-review-assistant/backend/internal/models"
)

// AcceptInput records that a suggestion was applied. SuggestionID is
// trusted as given and never looked up.
type AcceptInput struct {
	SessionID      string
	SuggestionID   int
	SuggestionText string
	ModifiedText   string
	OriginalCode   string
	Language       string
	FilePath       *string
	UserID         *uint
}

// RejectInput records that a suggestion was dismissed
type RejectInput struct {
	SessionID      string
	SuggestionID   int
	SuggestionText string
	RejectReason   string
	Language       string
	FilePath       *string
	UserID         *uint
}

// ModifyInput records a developer's rewrite of a suggestion
type ModifyInput struct {
	SessionID    string
	SuggestionID int
	OriginalText string
	ModifiedText string
	Language     string
	FilePath     *string
	UserID       *uint
}

func validateFeedback(sessionID string, suggestionID int, text string) error {
	switch {
	case strings.TrimSpace(sessionID) == "":
		return fmt.Errorf("%w: session_id must not be empty", ErrValidation)
	case suggestionID < 1:
		return fmt.Errorf("%w: suggestion_id must be positive", ErrValidation)
	case strings.TrimSpace(text) == "":
		return fmt.Errorf("%w: suggestion text must not be empty", ErrValidation)
	}
	return nil
}

// Accept stores the acceptance and its pattern, then asks the model to
// apply only that suggestion to the code. The acceptance stands even when
// patching fails; the original code is returned in that case.
func (s *Service) Accept(ctx context.Context, in AcceptInput) (string, error) {
	if err := validateFeedback(in.SessionID, in.SuggestionID, in.SuggestionText); err != nil {
		return "", err
	}

	fb := &models.AcceptedFeedback{
		SessionID:      in.SessionID,
		SuggestionID:   in.SuggestionID,
		SuggestionText: in.SuggestionText,
		ModifiedText:   in.ModifiedText,
		OriginalCode:   in.OriginalCode,
		Language:       in.Language,
		FilePath:       in.FilePath,
	}
	pattern := &models.UserPattern{
		UserID:      in.UserID,
		SessionID:   in.SessionID,
		PatternType: models.PatternAccepted,
		PatternData: models.PatternData{
			SuggestionText: in.SuggestionText,
			ModifiedText:   in.ModifiedText,
			Language:       in.Language,
			FilePath:       in.FilePath,
		},
	}
	if err := s.feedback.RecordAccepted(ctx, fb, pattern); err != nil {
		return "", fmt.Errorf("%w: storing accepted suggestion: %w", ErrStorage, err)
	}
	s.afterFeedback(ctx, in.SessionID, models.PatternAccepted)

	if strings.TrimSpace(in.OriginalCode) == "" {
		return in.OriginalCode, nil
	}

	log := s.log.WithSession(in.SessionID)
	completion, err := s.ai.Generate(ctx, acceptPrompt(in.Language, in.OriginalCode, in.SuggestionText), s.opts.MaxRetries)
	if err != nil {
		log.Warn("Patch generation failed, returning original code", "suggestion_id", in.SuggestionID, "error", err.Error())
		return in.OriginalCode, nil
	}

	patched := stripCodeFences(completion.Text)
	if strings.TrimSpace(patched) == "" {
		log.Warn("Patch generation returned no code, returning original code", "suggestion_id", in.SuggestionID)
		return in.OriginalCode, nil
	}
	return patched, nil
}

// Reject stores the rejection and its pattern. Later reviews of the session
// drop model output that matches the rejected text.
func (s *Service) Reject(ctx context.Context, in RejectInput) error {
	if err := validateFeedback(in.SessionID, in.SuggestionID, in.SuggestionText); err != nil {
		return err
	}

	fb := &models.RejectedFeedback{
		SessionID:      in.SessionID,
		SuggestionID:   in.SuggestionID,
		SuggestionText: in.SuggestionText,
		RejectReason:   in.RejectReason,
		Language:       in.Language,
		FilePath:       in.FilePath,
	}
	pattern := &models.UserPattern{
		UserID:      in.UserID,
		SessionID:   in.SessionID,
		PatternType: models.PatternRejected,
		PatternData: models.PatternData{
			SuggestionText: in.SuggestionText,
			RejectReason:   in.RejectReason,
			Language:       in.Language,
			FilePath:       in.FilePath,
		},
	}
	if err := s.feedback.RecordRejected(ctx, fb, pattern); err != nil {
		return fmt.Errorf("%w: storing rejected suggestion: %w", ErrStorage, err)
	}
	s.afterFeedback(ctx, in.SessionID, models.PatternRejected)
	return nil
}

// Modify stores the rewrite and its pattern, then asks the model to restate
// the rewritten suggestion for display. The developer's text is returned if
// that call fails.
func (s *Service) Modify(ctx context.Context, in ModifyInput) (string, error) {
	if err := validateFeedback(in.SessionID, in.SuggestionID, in.OriginalText); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.ModifiedText) == "" {
		return "", fmt.Errorf("%w: modified_text must not be empty", ErrValidation)
	}

	fb := &models.ModifiedFeedback{
		SessionID:    in.SessionID,
		SuggestionID: in.SuggestionID,
		OriginalText: in.OriginalText,
		ModifiedText: in.ModifiedText,
		Language:     in.Language,
		FilePath:     in.FilePath,
	}
	pattern := &models.UserPattern{
		UserID:      in.UserID,
		SessionID:   in.SessionID,
		PatternType: models.PatternModified,
		PatternData: models.PatternData{
			OriginalText: in.OriginalText,
			ModifiedText: in.ModifiedText,
			Language:     in.Language,
			FilePath:     in.FilePath,
		},
	}
	if err := s.feedback.RecordModified(ctx, fb, pattern); err != nil {
		return "", fmt.Errorf("%w: storing modified suggestion: %w", ErrStorage, err)
	}
	s.afterFeedback(ctx, in.SessionID, models.PatternModified)

	completion, err := s.ai.Generate(ctx, modifyPrompt(in.Language, in.OriginalText, in.ModifiedText), s.opts.MaxRetries)
	if err != nil || strings.TrimSpace(completion.Text) == "" {
		if err != nil {
			s.log.WithSession(in.SessionID).Warn("Restatement failed, returning developer text", "error", err.Error())
		}
		return in.ModifiedText, nil
	}
	return strings.TrimSpace(completion.Text), nil
}

func (s *Service) afterFeedback(ctx context.Context, sessionID string, kind models.PatternType) {
	s.invalidateSummary(ctx, sessionID)
	s.metrics.RecordFeedback(ctx, string(kind))
	s.log.WithSession(sessionID).Info("Feedback recorded", "type", string(kind))
}
