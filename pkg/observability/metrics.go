package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "code-review-assistant/backend"

// Metrics holds the instruments recorded by the review pipeline
type Metrics struct {
	aiCalls      metric.Int64Counter
	aiAttempts   metric.Int64Counter
	aiLatency    metric.Float64Histogram
	reviews      metric.Int64Counter
	suggestions  metric.Int64Counter
	feedback     metric.Int64Counter
	cacheLookups metric.Int64Counter
}

// NewMetrics creates the pipeline instruments on the given provider
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)
	m := &Metrics{}
	var err error

	if m.aiCalls, err = meter.Int64Counter("ai_gateway_calls_total",
		metric.WithDescription("Gateway calls by outcome")); err != nil {
		return nil, err
	}
	if m.aiAttempts, err = meter.Int64Counter("ai_gateway_attempts_total",
		metric.WithDescription("Individual provider attempts, retries included")); err != nil {
		return nil, err
	}
	if m.aiLatency, err = meter.Float64Histogram("ai_gateway_latency_ms",
		metric.WithDescription("Latency of the successful attempt in milliseconds")); err != nil {
		return nil, err
	}
	if m.reviews, err = meter.Int64Counter("reviews_total",
		metric.WithDescription("Completed code reviews")); err != nil {
		return nil, err
	}
	if m.suggestions, err = meter.Int64Counter("suggestions_total",
		metric.WithDescription("Suggestions returned to callers")); err != nil {
		return nil, err
	}
	if m.feedback, err = meter.Int64Counter("feedback_total",
		metric.WithDescription("Recorded feedback events by type")); err != nil {
		return nil, err
	}
	if m.cacheLookups, err = meter.Int64Counter("summary_cache_lookups_total",
		metric.WithDescription("Pattern summary cache lookups by result")); err != nil {
		return nil, err
	}

	return m, nil
}

// NopMetrics returns instruments that record nothing
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// RecordAICall records one gateway call
func (m *Metrics) RecordAICall(ctx context.Context, provider string, attempts int, latencyMS float64, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	m.aiCalls.Add(ctx, 1, attrs)
	m.aiAttempts.Add(ctx, int64(attempts), metric.WithAttributes(attribute.String("provider", provider)))
	if err == nil {
		m.aiLatency.Record(ctx, latencyMS, metric.WithAttributes(attribute.String("provider", provider)))
	}
}

// RecordReview records a finished review and the number of suggestions it produced
func (m *Metrics) RecordReview(ctx context.Context, language string, suggestions int) {
	attrs := metric.WithAttributes(attribute.String("language", language))
	m.reviews.Add(ctx, 1, attrs)
	m.suggestions.Add(ctx, int64(suggestions), attrs)
}

// RecordFeedback records one feedback event
func (m *Metrics) RecordFeedback(ctx context.Context, kind string) {
	m.feedback.Add(ctx, 1, metric.WithAttributes(attribute.String("type", kind)))
}

// RecordCacheLookup records a summary cache hit or miss
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
