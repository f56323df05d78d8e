package repository

import (
	"context"
	"time"

	"code-review-assistant/backend/internal/models"

	"gorm.io/gorm"
)

// Filter narrows analytics queries. To is exclusive. Language is ignored
// for tables that carry no language column.
type Filter struct {
	Language string
	From     *time.Time
	To       *time.Time
}

// Timestamped is one row reduced to its creation time and a value
type Timestamped struct {
	CreatedAt time.Time
	Value     float64
}

// AnalyticsRepository runs the read-only queries behind the admin dashboards
type AnalyticsRepository interface {
	CountSuggestions(ctx context.Context, f Filter) (int64, error)
	CountFeedback(ctx context.Context, kind models.PatternType, f Filter) (int64, error)
	FeedbackTimes(ctx context.Context, kind models.PatternType, f Filter) ([]time.Time, error)
	LatencySamples(ctx context.Context, f Filter) ([]Timestamped, error)
}

type GormAnalyticsRepository struct {
	db *gorm.DB
}

func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

func feedbackModel(kind models.PatternType) any {
	switch kind {
	case models.PatternAccepted:
		return &models.AcceptedFeedback{}
	case models.PatternRejected:
		return &models.RejectedFeedback{}
	default:
		return &models.ModifiedFeedback{}
	}
}

func (r *GormAnalyticsRepository) scoped(ctx context.Context, model any, f Filter, withLanguage bool) *gorm.DB {
	q := r.db.WithContext(ctx).Model(model)
	if withLanguage && f.Language != "" {
		q = q.Where("language = ?", f.Language)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	return q
}

func (r *GormAnalyticsRepository) CountSuggestions(ctx context.Context, f Filter) (int64, error) {
	var n int64
	err := r.scoped(ctx, &models.Suggestion{}, f, true).Count(&n).Error
	return n, err
}

func (r *GormAnalyticsRepository) CountFeedback(ctx context.Context, kind models.PatternType, f Filter) (int64, error) {
	var n int64
	err := r.scoped(ctx, feedbackModel(kind), f, true).Count(&n).Error
	return n, err
}

// FeedbackTimes returns the creation time of every matching feedback row
func (r *GormAnalyticsRepository) FeedbackTimes(ctx context.Context, kind models.PatternType, f Filter) ([]time.Time, error) {
	var times []time.Time
	err := r.scoped(ctx, feedbackModel(kind), f, true).
		Order("created_at ASC").
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

// LatencySamples returns the matching latency samples oldest first
func (r *GormAnalyticsRepository) LatencySamples(ctx context.Context, f Filter) ([]Timestamped, error) {
	var rows []Timestamped
	err := r.scoped(ctx, &models.SuggestionLatency{}, f, false).
		Select("created_at, latency_ms AS value").
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
