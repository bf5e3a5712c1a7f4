package controller

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RequestObserver records one finished request.
type RequestObserver interface {
	ObserveRequest(ctx context.Context, method, route string, status int, elapsed time.Duration)
}

// OtherLabel stands for any route or method outside the known set.
const OtherLabel = "other"

// RouteLabel returns the longest of routes owning path, OtherLabel when none
// does. A route owns itself and everything below it, so "/api/products" covers
// "/api/products/42". Client paths never become labels.
func RouteLabel(path string, routes []string) string {
	best := ""
	for _, route := range routes {
		base := strings.TrimSuffix(route, "/")
		if path != base && path != base+"/" && !strings.HasPrefix(path, base+"/") {
			continue
		}
		if len(route) > len(best) {
			best = route
		}
	}
	if best == "" {
		return OtherLabel
	}

	return best
}

// MethodLabel returns method when it is a standard HTTP method, OtherLabel
// otherwise.
func MethodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return method
	default:
		return OtherLabel
	}
}

// WithMetrics opens a server span per request and reports the outcome to obs.
// Routes are labelled by the known prefixes in routes, see RouteLabel.
func WithMetrics(obs RequestObserver, routes []string, next http.Handler) http.Handler {
	tracer := otel.Tracer("shoptogether/http")
	routes = append([]string(nil), routes...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := RouteLabel(r.URL.Path, routes)
		method := MethodLabel(r.Method)
		ctx, span := tracer.Start(r.Context(), method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			),
		)
		defer span.End()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
		obs.ObserveRequest(ctx, method, route, rec.status, time.Since(start))
	})
}
