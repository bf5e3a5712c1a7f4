package controller_test

import (
	"net/http"
	"net/http/httptest"
	"shoptogether/pkg/controller"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCORS_AllowedOrigins(t *testing.T) {
	stage := controller.CORS(controller.DefaultAllowedOrigins)

	for _, origin := range []string{"http://localhost:3000", "http://localhost:5173"} {
		t.Run(origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			req.Header.Set("Origin", origin)
			rec := httptest.NewRecorder()

			_, verdict, err := stage.Process(rec, req)
			require.NoError(t, err)
			require.Equal(t, controller.Next, verdict)

			res := rec.Result()
			require.Equal(t, origin, res.Header.Get("Access-Control-Allow-Origin"))
			require.Equal(t, "true", res.Header.Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORS_OtherOriginGetsNoHeaders(t *testing.T) {
	stage := controller.CORS(controller.DefaultAllowedOrigins)

	for _, origin := range []string{"http://evil.example", "http://localhost:3001", ""} {
		t.Run(origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			if origin != "" {
				req.Header.Set("Origin", origin)
			}
			rec := httptest.NewRecorder()

			_, verdict, err := stage.Process(rec, req)
			require.NoError(t, err)
			require.Equal(t, controller.Next, verdict, "other origins are not rejected")

			res := rec.Result()
			require.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
			require.Empty(t, res.Header.Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	stage := controller.CORS(controller.DefaultAllowedOrigins)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
	rec := httptest.NewRecorder()

	_, verdict, err := stage.Process(rec, req)
	require.NoError(t, err)
	require.Equal(t, controller.Responded, verdict)

	res := rec.Result()
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	require.Equal(t, "http://localhost:5173", res.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", res.Header.Get("Access-Control-Allow-Credentials"))
	require.Contains(t, res.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORS_PlainOptionsPassesThrough(t *testing.T) {
	stage := controller.CORS(controller.DefaultAllowedOrigins)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	rec := httptest.NewRecorder()

	_, verdict, err := stage.Process(rec, req)
	require.NoError(t, err)
	require.Equal(t, controller.Next, verdict)
}
