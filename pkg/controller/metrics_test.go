package controller_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"shoptogether/pkg/controller"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type observed struct {
	method, route string
	status        int
}

type fakeObserver struct {
	got []observed
}

func (f *fakeObserver) ObserveRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	f.got = append(f.got, observed{method, route, status})
}

func TestRouteLabel(t *testing.T) {
	routes := []string{"/api", "/api/products", "/api/orders", "/metrics", "/docs/"}

	for path, want := range map[string]string{
		"/api":                     "/api",
		"/api/unknown/thing":       "/api",
		"/api/products":            "/api/products",
		"/api/products/":           "/api/products",
		"/api/products/42/reviews": "/api/products",
		"/api/productsx":           "/api",
		"/metrics":                 "/metrics",
		"/docs":                    "/docs/",
		"/docs/index.html":         "/docs/",
		"/":                        controller.OtherLabel,
		"/x123/y":                  controller.OtherLabel,
		"/a1/b1":                   controller.OtherLabel,
	} {
		require.Equal(t, want, controller.RouteLabel(path, routes), path)
	}
}

func TestMethodLabel(t *testing.T) {
	require.Equal(t, http.MethodGet, controller.MethodLabel(http.MethodGet))
	require.Equal(t, http.MethodOptions, controller.MethodLabel(http.MethodOptions))
	require.Equal(t, controller.OtherLabel, controller.MethodLabel("FOO123"))
	require.Equal(t, controller.OtherLabel, controller.MethodLabel("get"))
}

func TestWithMetrics(t *testing.T) {
	obs := &fakeObserver{}
	routes := []string{"/api", "/api/orders"}
	h := controller.WithMetrics(obs, routes, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/1", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	for i := range 20 {
		h.ServeHTTP(httptest.NewRecorder(),
			httptest.NewRequest(fmt.Sprintf("M%d", i), fmt.Sprintf("/a%d/b%d", i, i), nil))
	}

	require.Equal(t, observed{http.MethodGet, "/api/orders", http.StatusTeapot}, obs.got[0])
	series := map[observed]bool{}
	for _, o := range obs.got[1:] {
		series[o] = true
	}
	require.Equal(t, map[observed]bool{{controller.OtherLabel, controller.OtherLabel, http.StatusTeapot}: true}, series)
}
