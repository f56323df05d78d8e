package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// newGeminiStub serves every generateContent call with status and body
func newGeminiStub(t *testing.T, status int, body string) (*GeminiProvider, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), "test-key", "gemini-test",
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p, calls
}

func TestGeminiProviderJoinsTextParts(t *testing.T) {
	p, _ := newGeminiStub(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"--- SUGGESTION 1 ---\n"},{"text":"Use math.pi"}]},"finishReason":"STOP"}]}`)

	text, err := p.Complete(context.Background(), Request{Prompt: "review", MaxTokens: 100, Temperature: 0.3, TopP: 0.95})
	require.NoError(t, err)
	assert.Equal(t, "--- SUGGESTION 1 ---\nUse math.pi", text)
}

func TestGeminiProviderEmptyAndTruncated(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		target error
	}{
		{name: "no candidates", body: `{"candidates":[]}`, target: ErrEmptyCompletion},
		{name: "blank text", body: `{"candidates":[{"content":{"role":"model","parts":[{"text":"  "}]},"finishReason":"STOP"}]}`, target: ErrEmptyCompletion},
		{name: "max tokens without parts", body: `{"candidates":[{"finishReason":"MAX_TOKENS"}]}`, target: ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newGeminiStub(t, http.StatusOK, tt.body)
			_, err := p.Complete(context.Background(), Request{Prompt: "review"})
			assert.ErrorIs(t, err, tt.target)
			assert.False(t, IsPermanent(err))
		})
	}
}

func TestGeminiProviderErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		reason    string
		permanent bool
	}{
		{name: "bad key", status: http.StatusUnauthorized, reason: "UNAUTHENTICATED", permanent: true},
		{name: "bad request", status: http.StatusBadRequest, reason: "INVALID_ARGUMENT", permanent: true},
		{name: "overloaded", status: http.StatusServiceUnavailable, reason: "UNAVAILABLE"},
		{name: "quota", status: http.StatusTooManyRequests, reason: "RESOURCE_EXHAUSTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := fmt.Sprintf(`{"error":{"code":%d,"message":"rejected","status":%q}}`, tt.status, tt.reason)
			p, _ := newGeminiStub(t, tt.status, body)

			_, err := p.Complete(context.Background(), Request{Prompt: "review"})
			require.Error(t, err)
			assert.Equal(t, tt.permanent, IsPermanent(err))
		})
	}
}

func TestGatewayRetriesGeminiTruncation(t *testing.T) {
	p, calls := newGeminiStub(t, http.StatusOK, `{"candidates":[{"finishReason":"MAX_TOKENS"}]}`)
	g := NewGateway(p, Options{MaxRetries: 3}, nil, nil, nil)
	g.sleep = func(context.Context, time.Duration) error { return nil }

	_, err := g.Generate(context.Background(), "review", 3)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGatewayStopsOnGeminiAuthFailure(t *testing.T) {
	p, calls := newGeminiStub(t, http.StatusUnauthorized, `{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`)
	g := NewGateway(p, Options{MaxRetries: 3}, nil, nil, nil)
	g.sleep = func(context.Context, time.Duration) error { return nil }

	_, err := g.Generate(context.Background(), "review", 3)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}
