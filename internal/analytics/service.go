// Package analytics computes the admin dashboard figures from feedback and latency rows.
package analytics

import (
	"context"
	"fmt"
	"time"

	"code-review-assistant/backend/internal/models"
	"code-review-assistant/backend/internal/repository"
	"code-review-assistant/backend/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

// Percentages splits feedback events by type
type Percentages struct {
	Accepted float64 `json:"accepted"`
	Rejected float64 `json:"rejected"`
	Modified float64 `json:"modified"`
}

// Summary aggregates feedback counts. Accuracy is the share of generated
// suggestions that were accepted or modified.
type Summary struct {
	Accepted    int64       `json:"accepted"`
	Rejected    int64       `json:"rejected"`
	Modified    int64       `json:"modified"`
	Suggestions int64       `json:"suggestions"`
	Percentages Percentages `json:"percentages"`
	Accuracy    float64     `json:"accuracy"`
}

// DailyLatency is the mean gateway latency of one UTC day
type DailyLatency struct {
	Date      string  `json:"date"`
	LatencyMS float64 `json:"latency"`
	Samples   int     `json:"samples"`
}

// DailyCount is the number of events of one UTC day
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Trends holds per-day feedback counts by type
type Trends struct {
	Accepted []DailyCount `json:"accepted"`
	Rejected []DailyCount `json:"rejected"`
	Modified []DailyCount `json:"modified"`
}

type Service struct {
	repo repository.AnalyticsRepository
	log  *logger.Logger
}

func NewService(repo repository.AnalyticsRepository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{repo: repo, log: log}
}

// ParseFilter converts request dates into a query range. Unparseable
// dates are ignored and the end date is inclusive.
func ParseFilter(f models.AnalyticsFilter) repository.Filter {
	out := repository.Filter{Language: f.Language}
	if f.StartDate != "" {
		if t, err := time.Parse(dateLayout, f.StartDate); err == nil {
			out.From = &t
		}
	}
	if f.EndDate != "" {
		if t, err := time.Parse(dateLayout, f.EndDate); err == nil {
			end := t.AddDate(0, 0, 1)
			out.To = &end
		}
	}
	return out
}

// Summary counts feedback and suggestions concurrently
func (s *Service) Summary(ctx context.Context, f models.AnalyticsFilter) (*Summary, error) {
	filter := ParseFilter(f)
	var out Summary

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Accepted, err = s.repo.CountFeedback(ctx, models.PatternAccepted, filter)
		return err
	})
	g.Go(func() (err error) {
		out.Rejected, err = s.repo.CountFeedback(ctx, models.PatternRejected, filter)
		return err
	})
	g.Go(func() (err error) {
		out.Modified, err = s.repo.CountFeedback(ctx, models.PatternModified, filter)
		return err
	})
	g.Go(func() (err error) {
		out.Suggestions, err = s.repo.CountSuggestions(ctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("counting feedback: %w", err)
	}

	if total := out.Accepted + out.Rejected + out.Modified; total > 0 {
		out.Percentages = Percentages{
			Accepted: percent(out.Accepted, total),
			Rejected: percent(out.Rejected, total),
			Modified: percent(out.Modified, total),
		}
	}
	if out.Suggestions > 0 {
		out.Accuracy = percent(out.Accepted+out.Modified, out.Suggestions)
	}
	return &out, nil
}

// LatencyByDay averages gateway latency per UTC day, oldest first
func (s *Service) LatencyByDay(ctx context.Context, f models.AnalyticsFilter) ([]DailyLatency, error) {
	samples, err := s.repo.LatencySamples(ctx, ParseFilter(f))
	if err != nil {
		return nil, fmt.Errorf("loading latency samples: %w", err)
	}

	out := []DailyLatency{}
	var sum float64
	for _, sample := range samples {
		day := sample.CreatedAt.UTC().Format(dateLayout)
		if len(out) == 0 || out[len(out)-1].Date != day {
			out = append(out, DailyLatency{Date: day})
			sum = 0
		}
		last := &out[len(out)-1]
		sum += sample.Value
		last.Samples++
		last.LatencyMS = sum / float64(last.Samples)
	}
	return out, nil
}

// Trends counts feedback events per UTC day for each type
func (s *Service) Trends(ctx context.Context, f models.AnalyticsFilter) (*Trends, error) {
	filter := ParseFilter(f)
	var out Trends

	g, ctx := errgroup.WithContext(ctx)
	for kind, dst := range map[models.PatternType]*[]DailyCount{
		models.PatternAccepted: &out.Accepted,
		models.PatternRejected: &out.Rejected,
		models.PatternModified: &out.Modified,
	} {
		g.Go(func() error {
			times, err := s.repo.FeedbackTimes(ctx, kind, filter)
			if err != nil {
				return err
			}
			*dst = countByDay(times)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading feedback trends: %w", err)
	}
	return &out, nil
}

// countByDay expects times in ascending order
func countByDay(times []time.Time) []DailyCount {
	out := []DailyCount{}
	for _, t := range times {
		day := t.UTC().Format(dateLayout)
		if len(out) == 0 || out[len(out)-1].Date != day {
			out = append(out, DailyCount{Date: day})
		}
		out[len(out)-1].Count++
	}
	return out
}

func percent(part, total int64) float64 {
	return float64(part) / float64(total) * 100
}
