package secrets

import (
	"context"
	"errors"

	"code-review-assistant/backend/pkg/config"
	"code-review-assistant/backend/pkg/logger"
)

// Manager provides access to secrets
type Manager interface {
	// GetSecret retrieves a secret by key
	GetSecret(ctx context.Context, key string) (string, error)
}

// Keys looked up by Apply
const (
	KeyAIAPIKey      = "ai_api_key"
	KeyJWTSecret     = "jwt_secret"
	KeyDBPassword    = "db_password"
	KeyRedisPassword = "redis_password"
)

// Apply overlays the secrets found in m onto cfg. Keys missing from the
// store keep their environment value.
func Apply(ctx context.Context, m Manager, cfg *config.Config, log *logger.Logger) error {
	targets := []struct {
		key string
		dst *string
	}{
		{KeyAIAPIKey, &cfg.AI.APIKey},
		{KeyJWTSecret, &cfg.JWT.Secret},
		{KeyDBPassword, &cfg.Database.Password},
		{KeyRedisPassword, &cfg.Cache.RedisPassword},
	}

	for _, t := range targets {
		value, err := m.GetSecret(ctx, t.key)
		if errors.Is(err, ErrSecretNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		*t.dst = value
		log.Info("Loaded secret from vault", "key", t.key)
	}
	return nil
}
