package secrets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"code-review-assistant/backend/pkg/config"
	"code-review-assistant/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapManager map[string]string

func (m mapManager) GetSecret(_ context.Context, key string) (string, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return "", ErrSecretNotFound
}

type failingManager struct{}

func (failingManager) GetSecret(context.Context, string) (string, error) {
	return "", errors.New("vault sealed")
}

func TestApplyOverlaysFoundKeys(t *testing.T) {
	cfg := &config.Config{}
	cfg.AI.APIKey = "env-key"
	cfg.JWT.Secret = "env-secret"

	err := Apply(context.Background(), mapManager{KeyJWTSecret: "vault-secret"}, cfg, logger.Discard())
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.AI.APIKey)
	assert.Equal(t, "vault-secret", cfg.JWT.Secret)
}

func TestApplyPropagatesStoreErrors(t *testing.T) {
	err := Apply(context.Background(), failingManager{}, &config.Config{}, logger.Discard())
	assert.EqualError(t, err, "vault sealed")
}

const kvResponse = `{
  "request_id": "1",
  "lease_id": "",
  "renewable": false,
  "lease_duration": 0,
  "data": {
    "data": {"jwt_secret": "from-vault", "ai_api_key": "sk-vault"},
    "metadata": {"created_time": "2024-01-01T00:00:00Z", "deletion_time": "", "destroyed": false, "version": 1}
  }
}`

func TestVaultManagerReadsAndCachesEntry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v1/secret/data/code-review", r.URL.Path)
		assert.Equal(t, "root-token", r.Header.Get("X-Vault-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(kvResponse))
	}))
	defer srv.Close()

	m, err := NewVaultManager(VaultConfig{Address: srv.URL, Token: "root-token", MaxRetries: 1}, nil)
	require.NoError(t, err)

	v, err := m.GetSecret(context.Background(), KeyJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "from-vault", v)

	v, err = m.GetSecret(context.Background(), KeyAIAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-vault", v)

	_, err = m.GetSecret(context.Background(), KeyDBPassword)
	assert.ErrorIs(t, err, ErrSecretNotFound)

	assert.Equal(t, int32(1), hits.Load())
}

func TestVaultManagerMissingEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[]}`))
	}))
	defer srv.Close()

	m, err := NewVaultManager(VaultConfig{Address: srv.URL, Token: "t", MaxRetries: 1}, nil)
	require.NoError(t, err)

	_, err = m.GetSecret(context.Background(), KeyJWTSecret)
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestNewVaultManagerRequiresAddressAndToken(t *testing.T) {
	_, err := NewVaultManager(VaultConfig{Token: "t"}, nil)
	assert.ErrorIs(t, err, ErrNoVaultAddress)

	_, err = NewVaultManager(VaultConfig{Address: "http://127.0.0.1:8200"}, nil)
	assert.ErrorIs(t, err, ErrNoVaultToken)
}
