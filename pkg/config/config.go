package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is built once at startup by
// Load and handed to every component that needs it.
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
		Version string
	}

	// Database configuration
	Database struct {
		Driver   string // postgres or sqlite
		URL      string // full DSN; takes precedence over the discrete fields
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		Path     string // sqlite file path
		MaxConns int
		Retries  int
		Timeout  time.Duration
	}

	// AI gateway configuration
	AI struct {
		Provider    string // openai or gemini
		BaseURL     string
		APIKey      string
		Model       string
		MaxTokens   int
		Temperature float64
		TopP        float64
		MaxRetries  int
		BaseDelay   time.Duration
		Timeout     time.Duration

		// Circuit breaker around the gateway
		BreakerFailures uint
		BreakerCooldown time.Duration
	}

	// Review pipeline settings
	Review struct {
		PatternHistory int
		SummaryTTL     time.Duration
	}

	// JWT configuration
	JWT struct {
		Secret string
		Expiry time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
		MaxBodySize    int64
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Cache settings
	Cache struct {
		Backend       string // redis, memory or none
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		MaxSize       int
		PurgeWindow   time.Duration
	}

	// Vault settings
	Vault struct {
		Enabled     bool
		Address     string
		Token       string
		Namespace   string
		SecretsPath string
	}

	// Observability settings
	Observability struct {
		ServiceName    string
		MetricsEnabled bool
		TracingEnabled bool
	}

	// GRPC health endpoint
	GRPC struct {
		Enabled bool
		Port    string
	}

	// OpenAPI request validation
	OpenAPI struct {
		SchemaPath string
	}
}

// Load reads a .env file when present and builds a Config from the environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	// Server config
	cfg.Server.Port = getEnvString("PORT", "8000")
	cfg.Server.Env = getEnvString("APP_ENV", "development")
	cfg.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 120*time.Second)
	cfg.Server.Version = getEnvString("APP_VERSION", "dev")

	// Database config
	cfg.Database.Driver = getEnvString("DB_DRIVER", "postgres")
	cfg.Database.URL = getEnvString("DATABASE_URL", "")
	cfg.Database.Host = getEnvString("DB_HOST", "localhost")
	cfg.Database.Port = getEnvString("DB_PORT", "5432")
	cfg.Database.User = getEnvString("DB_USER", "postgres")
	cfg.Database.Password = getEnvString("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnvString("DB_NAME", "code_review")
	cfg.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
	cfg.Database.Path = getEnvString("DB_PATH", "code_review.db")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 15)
	cfg.Database.Retries = getEnvInt("DB_CONNECT_RETRIES", 5)
	cfg.Database.Timeout = getEnvDuration("DB_TIMEOUT", 5*time.Second)

	// AI config
	cfg.AI.Provider = getEnvString("AI_PROVIDER", "openai")
	cfg.AI.BaseURL = getEnvString("AI_BASE_URL", "https://api.openai.com/v1/chat/completions")
	cfg.AI.APIKey = getEnvString("AI_API_KEY", "")
	cfg.AI.Model = getEnvString("AI_MODEL", "gpt-4o-mini")
	cfg.AI.MaxTokens = getEnvInt("AI_MAX_TOKENS", 8000)
	cfg.AI.Temperature = getEnvFloat("AI_TEMPERATURE", 0.3)
	cfg.AI.TopP = getEnvFloat("AI_TOP_P", 0.95)
	cfg.AI.MaxRetries = getEnvInt("AI_MAX_RETRIES", 3)
	cfg.AI.BaseDelay = getEnvDuration("AI_RETRY_BASE_DELAY", time.Second)
	cfg.AI.Timeout = getEnvDuration("AI_TIMEOUT", 60*time.Second)
	cfg.AI.BreakerFailures = uint(getEnvInt("AI_BREAKER_FAILURES", 5))
	cfg.AI.BreakerCooldown = getEnvDuration("AI_BREAKER_COOLDOWN", 30*time.Second)

	// Review config
	cfg.Review.PatternHistory = getEnvInt("REVIEW_PATTERN_HISTORY", 10)
	cfg.Review.SummaryTTL = getEnvDuration("REVIEW_SUMMARY_TTL", 10*time.Minute)

	// JWT config
	cfg.JWT.Secret = getEnvString("JWT_SECRET", "")
	cfg.JWT.Expiry = getEnvDuration("JWT_EXPIRY", 24*time.Hour)

	// Security config
	cfg.Security.RateLimit = getEnvFloat("RATE_LIMIT", 5)
	cfg.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
	cfg.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})
	cfg.Security.MaxBodySize = getEnvInt64("MAX_BODY_SIZE", 2<<20) // 2MB

	// Logging config
	cfg.Logging.Level = getEnvString("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvString("LOG_FORMAT", "json")

	// Cache config
	cfg.Cache.Backend = getEnvString("CACHE_BACKEND", "memory")
	cfg.Cache.RedisAddr = getEnvString("REDIS_URL", "localhost:6379")
	cfg.Cache.RedisPassword = getEnvString("REDIS_PASSWORD", "")
	cfg.Cache.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.Cache.MaxSize = getEnvInt("CACHE_MAX_SIZE", 1000)
	cfg.Cache.PurgeWindow = getEnvDuration("CACHE_PURGE_WINDOW", 10*time.Minute)

	// Vault config
	cfg.Vault.Enabled = getEnvBool("VAULT_ENABLED", false)
	cfg.Vault.Address = getEnvString("VAULT_ADDR", "")
	cfg.Vault.Token = getEnvString("VAULT_TOKEN", "")
	cfg.Vault.Namespace = getEnvString("VAULT_NAMESPACE", "")
	cfg.Vault.SecretsPath = getEnvString("VAULT_SECRETS_PATH", "code-review")

	// Observability config
	cfg.Observability.ServiceName = getEnvString("SERVICE_NAME", "code-review-backend")
	cfg.Observability.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)
	cfg.Observability.TracingEnabled = getEnvBool("TRACING_ENABLED", false)

	// GRPC config
	cfg.GRPC.Enabled = getEnvBool("GRPC_ENABLED", false)
	cfg.GRPC.Port = getEnvString("GRPC_PORT", "9090")

	cfg.OpenAPI.SchemaPath = getEnvString("OPENAPI_SCHEMA_PATH", "")

	return cfg
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
