package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code-review-assistant/backend/pkg/logger"
	"code-review-assistant/backend/pkg/observability"
	"code-review-assistant/backend/pkg/resilience"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("code-review-assistant/backend/internal/ai")

// Options tunes the gateway
type Options struct {
	// MaxRetries is the total number of attempts when a caller passes zero
	MaxRetries  int
	BaseDelay   time.Duration
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Completion is the result of a successful Generate call
type Completion struct {
	Text string
	// LatencyMS is the wall clock of the attempt that succeeded
	LatencyMS float64
	Attempts  int
}

// Gateway wraps a Provider with bounded retries, exponential backoff,
// a per-attempt timeout and a circuit breaker.
type Gateway struct {
	provider Provider
	opts     Options
	breaker  *resilience.CircuitBreaker
	metrics  *observability.Metrics
	log      *logger.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGateway creates a gateway around provider
func NewGateway(provider Provider, opts Options, breaker *resilience.CircuitBreaker, metrics *observability.Metrics, log *logger.Logger) *Gateway {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.DefaultConfig("ai-gateway"), log)
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Gateway{
		provider: provider,
		opts:     opts,
		breaker:  breaker,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Breaker exposes the gateway's circuit breaker for health reporting
func (g *Gateway) Breaker() *resilience.CircuitBreaker {
	return g.breaker
}

// Generate sends prompt to the model. maxRetries is the total number of
// attempts; zero or less selects the configured default. Sustained
// failure returns an error wrapping ErrServiceUnavailable.
func (g *Gateway) Generate(ctx context.Context, prompt string, maxRetries int) (Completion, error) {
	if maxRetries <= 0 {
		maxRetries = g.opts.MaxRetries
	}

	ctx, span := tracer.Start(ctx, "ai.Generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("ai.provider", g.provider.Name()),
			attribute.Int("ai.max_retries", maxRetries),
		),
	)
	defer span.End()

	var out Completion
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.retry(ctx, prompt, maxRetries)
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		err = fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	g.metrics.RecordAICall(ctx, g.provider.Name(), out.Attempts, out.LatencyMS, err)
	span.SetAttributes(attribute.Int("ai.attempts", out.Attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "generation failed")
		return Completion{Attempts: out.Attempts}, err
	}
	span.SetAttributes(attribute.Float64("ai.latency_ms", out.LatencyMS))
	return out, nil
}

func (g *Gateway) retry(ctx context.Context, prompt string, maxRetries int) (Completion, error) {
	req := Request{
		Prompt:      prompt,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
		TopP:        g.opts.TopP,
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := g.opts.BaseDelay << min(attempt-1, 16)
			if err := g.sleep(ctx, backoff); err != nil {
				return Completion{Attempts: attempts}, err
			}
		}

		attempts++
		start := g.now()
		text, err := g.call(ctx, req)
		latency := g.now().Sub(start)

		if err == nil {
			return Completion{
				Text:      text,
				LatencyMS: float64(latency.Microseconds()) / 1000,
				Attempts:  attempts,
			}, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return Completion{Attempts: attempts}, ctx.Err()
		}

		g.log.Warn("AI attempt failed",
			"provider", g.provider.Name(),
			"attempt", attempts,
			"max_attempts", maxRetries,
			"permanent", IsPermanent(err),
			"error", err.Error(),
		)
		if IsPermanent(err) {
			break
		}
	}

	return Completion{Attempts: attempts}, fmt.Errorf("%w after %d attempt(s): %w", ErrServiceUnavailable, attempts, lastErr)
}

// call runs one attempt under the per-attempt timeout
func (g *Gateway) call(ctx context.Context, req Request) (string, error) {
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}
	return g.provider.Complete(ctx, req)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
