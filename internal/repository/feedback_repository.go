package repository

import (
	"context"

	"code-review-assistant/backend/internal/models"

	"gorm.io/gorm"
)

// FeedbackRepository stores feedback events and the pattern history derived from them
type FeedbackRepository interface {
	RecordAccepted(ctx context.Context, fb *models.AcceptedFeedback, pattern *models.UserPattern) error
	RecordRejected(ctx context.Context, fb *models.RejectedFeedback, pattern *models.UserPattern) error
	RecordModified(ctx context.Context, fb *models.ModifiedFeedback, pattern *models.UserPattern) error
	RecentPatterns(ctx context.Context, sessionID string, limit int) ([]models.UserPattern, error)
	RejectedTexts(ctx context.Context, sessionID string) ([]string, error)
}

type GormFeedbackRepository struct {
	db *gorm.DB
}

func NewGormFeedbackRepository(db *gorm.DB) *GormFeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

func (r *GormFeedbackRepository) RecordAccepted(ctx context.Context, fb *models.AcceptedFeedback, pattern *models.UserPattern) error {
	return r.record(ctx, fb, pattern)
}

func (r *GormFeedbackRepository) RecordRejected(ctx context.Context, fb *models.RejectedFeedback, pattern *models.UserPattern) error {
	return r.record(ctx, fb, pattern)
}

func (r *GormFeedbackRepository) RecordModified(ctx context.Context, fb *models.ModifiedFeedback, pattern *models.UserPattern) error {
	return r.record(ctx, fb, pattern)
}

// record writes a feedback row and its pattern atomically
func (r *GormFeedbackRepository) record(ctx context.Context, fb any, pattern *models.UserPattern) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(fb).Error; err != nil {
			return err
		}
		return tx.Create(pattern).Error
	})
}

// RecentPatterns returns up to limit patterns of the session, newest first
func (r *GormFeedbackRepository) RecentPatterns(ctx context.Context, sessionID string, limit int) ([]models.UserPattern, error) {
	var patterns []models.UserPattern
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&patterns).Error
	if err != nil {
		return nil, err
	}
	return patterns, nil
}

// RejectedTexts returns every suggestion text rejected within the session
func (r *GormFeedbackRepository) RejectedTexts(ctx context.Context, sessionID string) ([]string, error) {
	var texts []string
	err := r.db.WithContext(ctx).
		Model(&models.RejectedFeedback{}).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Pluck("suggestion_text", &texts).Error
	if err != nil {
		return nil, err
	}
	return texts, nil
}
