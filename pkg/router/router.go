package router

import (
	"code-review-assistant/backend/internal/api"
	"code-review-assistant/backend/pkg/di"
	"code-review-assistant/backend/pkg/errors"
	"code-review-assistant/backend/pkg/jwt"
	"code-review-assistant/backend/pkg/logger"
	"code-review-assistant/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine      *gin.Engine
	Container   *di.Container
	Logger      *logger.Logger
	rateLimiter *middleware.RateLimiter
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	cfg := container.Config

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(middleware.CORS(cfg.Security.AllowedOrigins))
	engine.Use(middleware.BodyLimit(cfg.Security.MaxBodySize))

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		rateLimiter: middleware.NewRateLimiter(container.Logger, middleware.RateLimiterOptions{
			Limit: rate.Limit(cfg.Security.RateLimit),
			Burst: cfg.Security.RateLimitBurst,
		}),
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	tokens := r.Container.JWTService

	reviewHandler := api.NewReviewHandler(r.Container.ReviewService, r.Logger)
	authHandler := api.NewAuthHandler(r.Container.UserService, r.Logger)
	analyticsHandler := api.NewAnalyticsHandler(r.Container.AnalyticsService, r.Logger)

	r.setupHealthRoutes()
	r.setupDocsRoutes()

	// the rate limiter keys on the user id, so identity is resolved first
	v1 := r.Engine.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(tokens), r.rateLimiter.Middleware())
	if v := r.openAPIValidator(); v != nil {
		v1.Use(v.Middleware())
	}

	v1.POST("/review", reviewHandler.Review)

	suggestions := v1.Group("/suggestions")
	{
		suggestions.POST("/accept", reviewHandler.Accept)
		suggestions.POST("/reject", reviewHandler.Reject)
		suggestions.POST("/modify", reviewHandler.Modify)
	}

	sessions := v1.Group("/sessions")
	{
		sessions.GET("/:sessionId", reviewHandler.GetSession)
		sessions.DELETE("/:sessionId", reviewHandler.PurgeSession)
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.RequireAuth(tokens), authHandler.Me)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAuth(tokens), middleware.RequireRole(jwt.RoleAdmin))
	{
		admin.POST("/analytics/summary", analyticsHandler.Summary)
		admin.POST("/analytics/latency", analyticsHandler.Latency)
		admin.POST("/analytics/trends", analyticsHandler.Trends)
	}
}

// Close stops background work started by the router
func (r *Router) Close() {
	r.rateLimiter.Close()
}
