package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"shoptogether/pkg/metrics"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetrics_ExposesRequests(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	m.ObserveRequest(context.Background(), http.MethodGet, "/api/health", http.StatusOK, 5*time.Millisecond)
	m.OrderConfirmed(context.Background())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "http_server_requests")
	require.Contains(t, string(body), `route="/api/health"`)
	require.Contains(t, string(body), "shop_orders_confirmed")
	require.Contains(t, string(body), "go_goroutines")
}
