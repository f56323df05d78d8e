package cache

import (
	"context"
	"fmt"
	"time"

	"code-review-assistant/backend/pkg/config"
)

// Store is a string key/value cache with per-entry expiry.
// A miss is reported with ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New builds the store selected by CACHE_BACKEND
func New(cfg *config.Config) (Store, error) {
	switch cfg.Cache.Backend {
	case "memory", "":
		return NewMemory(cfg.Cache.MaxSize, cfg.Cache.PurgeWindow), nil
	case "redis":
		return NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, "review:"), nil
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}

// Noop never stores anything
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error)       { return "", false, nil }
func (Noop) Set(context.Context, string, string, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) error                     { return nil }
func (Noop) Close() error                                             { return nil }
