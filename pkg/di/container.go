package di

import (
	"context"
	"errors"
	"fmt"
	"io"

	"code-review-assistant/backend/internal/ai"
	"code-review-assistant/backend/internal/analytics"
	"code-review-assistant/backend/internal/repository"
	"code-review-assistant/backend/internal/review"
	"code-review-assistant/backend/internal/service"
	"code-review-assistant/backend/pkg/cache"
	"code-review-assistant/backend/pkg/config"
	"code-review-assistant/backend/pkg/health"
	"code-review-assistant/backend/pkg/jwt"
	"code-review-assistant/backend/pkg/logger"
	"code-review-assistant/backend/pkg/observability"
	"code-review-assistant/backend/pkg/resilience"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *logger.Logger
	Telemetry *observability.Telemetry
	Metrics   *observability.Metrics
	Cache     cache.Store
	Provider  ai.Provider
	Gateway   *ai.Gateway
	Health    *health.Checker

	JWTService       *jwt.Service
	UserService      *service.UserService
	ReviewService    *review.Service
	AnalyticsService *analytics.Service
}

type options struct {
	provider ai.Provider
	store    cache.Store
}

// Option overrides a dependency the container would otherwise build from config
type Option func(*options)

// WithProvider uses p instead of the configured model backend
func WithProvider(p ai.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithCache uses store instead of the configured cache backend
func WithCache(store cache.Store) Option {
	return func(o *options) { o.store = store }
}

// New creates a new dependency injection container. db must already be migrated.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logger.Logger, opts ...Option) (*Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{Config: cfg, DB: db, Logger: log}

	telemetry, err := observability.Setup(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Server.Version,
		MetricsEnabled: cfg.Observability.MetricsEnabled,
		TracingEnabled: cfg.Observability.TracingEnabled,
	})
	if err != nil {
		return nil, err
	}
	c.Telemetry = telemetry

	metrics, err := observability.NewMetrics(telemetry.MeterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	c.Metrics = metrics

	c.Cache = o.store
	if c.Cache == nil {
		if c.Cache, err = cache.New(cfg); err != nil {
			return nil, err
		}
	}

	c.Provider = o.provider
	if c.Provider == nil {
		if c.Provider, err = ai.NewProvider(ctx, cfg); err != nil {
			return nil, fmt.Errorf("failed to create AI provider: %w", err)
		}
	}

	breakerCfg := resilience.DefaultConfig("ai-gateway")
	breakerCfg.FailureThreshold = cfg.AI.BreakerFailures
	breakerCfg.Cooldown = cfg.AI.BreakerCooldown
	breaker := resilience.NewCircuitBreaker(breakerCfg, log)

	c.Gateway = ai.NewGateway(c.Provider, ai.Options{
		MaxRetries:  cfg.AI.MaxRetries,
		BaseDelay:   cfg.AI.BaseDelay,
		Timeout:     cfg.AI.Timeout,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		TopP:        cfg.AI.TopP,
	}, breaker, metrics, log)

	c.JWTService = jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)
	c.UserService = service.NewUserService(repository.NewGormUserRepository(db), c.JWTService)

	c.ReviewService = review.NewService(
		repository.NewGormSessionRepository(db),
		repository.NewGormFeedbackRepository(db),
		c.Gateway,
		c.Cache,
		metrics,
		log,
		review.Options{
			PatternHistory: cfg.Review.PatternHistory,
			SummaryTTL:     cfg.Review.SummaryTTL,
			MaxRetries:     cfg.AI.MaxRetries,
		},
	)
	c.AnalyticsService = analytics.NewService(repository.NewGormAnalyticsRepository(db), log)

	c.Health = health.NewChecker(log, cfg.Database.Timeout)
	c.Health.RegisterCheck("database", true, health.DatabaseCheck(db))
	c.Health.RegisterCheck("ai_gateway", false, health.BreakerCheck(breaker))
	if pinger, ok := c.Cache.(interface{ Ping(context.Context) error }); ok {
		c.Health.RegisterCheck("cache", false, health.PingCheck(pinger.Ping))
	}

	return c, nil
}

// Close releases the resources owned by the container. The database is
// left to its opener.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if closer, ok := c.Provider.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if c.Telemetry != nil {
		errs = append(errs, c.Telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
