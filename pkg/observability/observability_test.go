package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabledUsesNoop(t *testing.T) {
	tel, err := Setup(Options{ServiceName: "test"})
	require.NoError(t, err)
	assert.Nil(t, tel.Handler)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestMetricsExposedOnHandler(t *testing.T) {
	tel, err := Setup(Options{ServiceName: "test", MetricsEnabled: true})
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	m, err := NewMetrics(tel.MeterProvider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordAICall(ctx, "openai", 2, 120, nil)
	m.RecordAICall(ctx, "openai", 3, 0, errors.New("down"))
	m.RecordFeedback(ctx, "accepted")
	m.RecordReview(ctx, "python", 4)
	m.RecordCacheLookup(ctx, true)

	rec := httptest.NewRecorder()
	tel.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ai_gateway_calls_total")
	assert.Contains(t, string(body), "feedback_total")
	assert.Contains(t, string(body), "reviews_total")
}

func TestNopMetrics(t *testing.T) {
	m := NopMetrics()
	assert.NotPanics(t, func() {
		m.RecordAICall(context.Background(), "gemini", 1, 10, nil)
		m.RecordCacheLookup(context.Background(), false)
	})
}

func TestSetupEverySignalCombination(t *testing.T) {
	for _, opts := range []Options{
		{ServiceName: "svc"},
		{ServiceName: "svc", ServiceVersion: "1.2.3", MetricsEnabled: true, TracingEnabled: true},
	} {
		tel, err := Setup(opts)
		require.NoError(t, err)
		require.NoError(t, tel.Shutdown(context.Background()))
	}
}
