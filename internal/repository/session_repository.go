package repository

import (
	"context"

	"code-review-assistant/backend/internal/models"

	"gorm.io/gorm"
)

// SessionRepository stores code sessions together with their suggestions
type SessionRepository interface {
	ReplaceSession(ctx context.Context, session *models.CodeSession, latency *models.SuggestionLatency, suggestions []models.Suggestion) error
	GetSession(ctx context.Context, sessionID string) (*models.CodeSession, []models.Suggestion, error)
	PurgeSession(ctx context.Context, sessionID string) error
}

type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// ReplaceSession supersedes any previous session with the same id in one
// transaction: the old session row and its suggestions are deleted, the new
// row is stored, the latency sample and suggestions are inserted and the
// session is marked suggested. Feedback and patterns are left in place
// because later reviews filter out previously rejected text using them.
func (r *GormSessionRepository) ReplaceSession(ctx context.Context, session *models.CodeSession, latency *models.SuggestionLatency, suggestions []models.Suggestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", session.SessionID).Delete(&models.Suggestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", session.SessionID).Delete(&models.CodeSession{}).Error; err != nil {
			return err
		}

		session.ID = 0
		session.State = models.SessionStored
		if err := tx.Create(session).Error; err != nil {
			return err
		}

		if latency != nil {
			latency.SessionID = session.SessionID
			if err := tx.Create(latency).Error; err != nil {
				return err
			}
		}

		if len(suggestions) > 0 {
			for i := range suggestions {
				suggestions[i].SessionID = session.SessionID
			}
			if err := tx.Create(&suggestions).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(session).Update("state", models.SessionSuggested).Error; err != nil {
			return err
		}
		session.State = models.SessionSuggested
		return nil
	})
}

// GetSession returns the session and its suggestions ordered by suggestion id
func (r *GormSessionRepository) GetSession(ctx context.Context, sessionID string) (*models.CodeSession, []models.Suggestion, error) {
	db := r.db.WithContext(ctx)

	var session models.CodeSession
	if err := db.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		return nil, nil, notFound(err)
	}

	var suggestions []models.Suggestion
	if err := db.Where("session_id = ?", sessionID).Order("suggestion_id ASC").Find(&suggestions).Error; err != nil {
		return nil, nil, err
	}

	return &session, suggestions, nil
}

// PurgeSession deletes every row keyed by the session id, feedback history included
func (r *GormSessionRepository) PurgeSession(ctx context.Context, sessionID string) error {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.Suggestion{},
			&models.SuggestionLatency{},
			&models.AcceptedFeedback{},
			&models.RejectedFeedback{},
			&models.ModifiedFeedback{},
			&models.UserPattern{},
			&models.CodeSession{},
		} {
			res := tx.Where("session_id = ?", sessionID).Delete(model)
			if res.Error != nil {
				return res.Error
			}
			deleted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}
