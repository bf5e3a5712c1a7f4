// Package api configures and exposes the HTTP server: the request pipeline with
// its /api route groups, plus metrics, docs and profiling.
package api

import (
	_ "embed"
	"fmt"
	"net/http"
	"shoptogether/internal/api/handler"
	"shoptogether/internal/config"
	"shoptogether/pkg/controller"
	"shoptogether/pkg/logger"
	"strings"
	"time"

	"github.com/swaggest/swgui/v5emb"
)

const (
	apiPrefix = "/api"
	specPath  = "/specs/openapi.yaml"
	docsPath  = "/docs/"
)

// openAPISpec is the embedded OpenAPI document of the /api routes.
//
//go:embed specs/openapi.yaml
var openAPISpec []byte

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// All durations are used to configure server timeouts, and zero values
// should be considered as using the defaults provided by net/http where applicable.
type Options struct {
	// Port is the TCP port the server listens on.
	Port int
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int

	// AllowedOrigins receive CORS headers; other origins are served without them.
	AllowedOrigins []string
	// BodyLimit caps decoded request bodies, in bytes.
	BodyLimit int64
	// ExposeStack adds the error stack to 500 responses.
	ExposeStack bool

	// AuthRateLimit and AuthRateBurst throttle register and login per client IP.
	// A zero AuthRateLimit disables throttling.
	AuthRateLimit float64
	AuthRateBurst int

	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// DocsEnabled serves the OpenAPI document and the Swagger UI.
	DocsEnabled bool
	// PprofEnabled mounts the runtime profiler under /debug/pprof/.
	PprofEnabled bool
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,

		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		BodyLimit:      cfg.HTTP.BodyLimit,
		ExposeStack:    logger.IsDevelopment(cfg.Environment),

		AuthRateLimit: cfg.Auth.RateLimit,
		AuthRateBurst: cfg.Auth.RateBurst,

		MetricsPath:  cfg.HTTP.MetricsPath,
		DocsEnabled:  cfg.HTTP.DocsEnabled,
		PprofEnabled: cfg.HTTP.PprofEnabled,
	}
}

// Metrics serves the Prometheus endpoint and observes every request.
type Metrics interface {
	controller.RequestObserver
	Handler() http.Handler
}

type Deps struct {
	handler.Deps
	// Metrics is optional.
	Metrics Metrics
	// Groups are dispatched after the built-in /api groups. Tests use it to
	// mount extra routes.
	Groups []controller.Group
}

// NewPipeline builds the request pipeline:
// CORS, body decoding, access log, the /api dispatch table and the 404 stage.
// Errors that no stage answered end in the terminal error handler.
func NewPipeline(deps Deps, opts Options) *controller.Pipeline {
	return newPipeline(deps, opts, groups(deps, opts))
}

func groups(deps Deps, opts Options) []controller.Group {
	if deps.AuthLimiter == nil && opts.AuthRateLimit > 0 {
		deps.AuthLimiter = controller.NewRateLimiter(opts.AuthRateLimit, opts.AuthRateBurst)
	}

	return append(handler.Groups(deps.Deps), deps.Groups...)
}

func newPipeline(deps Deps, opts Options, groups []controller.Group) *controller.Pipeline {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = controller.DefaultAllowedOrigins
	}

	return controller.NewPipeline(controller.ErrorResponder(opts.ExposeStack),
		controller.CORS(origins),
		controller.DecodeBody(opts.BodyLimit),
		controller.AccessLog(),
		controller.Dispatch(groups...),
		notFound(fallbackMux(deps, opts)),
	)
}

// fallbackMux serves everything outside /api.
func fallbackMux(deps Deps, opts Options) *http.ServeMux {
	mux := http.NewServeMux()

	if deps.Metrics != nil && opts.MetricsPath != "" {
		mux.Handle(opts.MetricsPath, deps.Metrics.Handler())
	}

	if opts.DocsEnabled {
		mux.HandleFunc(specPath, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(openAPISpec)
		})
		mux.Handle(docsPath, v5emb.New("ShopTogether API", specPath, docsPath))
	}

	if opts.PprofEnabled {
		mux.Handle(controller.PprofPath, controller.PprofMux())
	}

	return mux
}

// notFound answers what the dispatch table left: the JSON 404 under /api,
// the fallback mux (with its plain 404) elsewhere.
func notFound(fallback http.Handler) controller.Stage {
	return controller.StageFunc(func(w http.ResponseWriter, r *http.Request) (*http.Request, controller.Verdict, error) {
		if r.URL.Path == apiPrefix || strings.HasPrefix(r.URL.Path, apiPrefix+"/") {
			controller.NotFoundJSON(w, r)
		} else {
			fallback.ServeHTTP(w, r)
		}

		return r, controller.Responded, nil
	})
}

// metricRoutes lists the route labels: every group prefix, the /api catch-all
// and the paths of the fallback mux.
func metricRoutes(groups []controller.Group, opts Options) []string {
	routes := []string{apiPrefix}
	for _, g := range groups {
		routes = append(routes, g.Prefix())
	}
	if opts.MetricsPath != "" {
		routes = append(routes, opts.MetricsPath)
	}
	if opts.DocsEnabled {
		routes = append(routes, specPath, docsPath)
	}
	if opts.PprofEnabled {
		routes = append(routes, controller.PprofPath)
	}

	return routes
}

// NewHandler wraps the pipeline with request metrics, the request logger and
// the request timeout. Profiles run for as long as they are asked to, so the
// profiler is served without the request timeout; the server's WriteTimeout
// still bounds it.
func NewHandler(deps Deps, opts Options) http.Handler {
	gs := groups(deps, opts)

	var h http.Handler = newPipeline(deps, opts, gs)
	if deps.Metrics != nil {
		h = controller.WithMetrics(deps.Metrics, metricRoutes(gs, opts), h)
	}
	h = controller.WithLogger(h)

	if opts.RequestTimeout <= 0 {
		return h
	}

	timed := http.TimeoutHandler(h, opts.RequestTimeout, `{"error":"request timed out"}`)
	if !opts.PprofEnabled {
		return timed
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, controller.PprofPath) {
			h.ServeHTTP(w, r)

			return
		}
		timed.ServeHTTP(w, r)
	})
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
func NewServer(deps Deps, opts Options) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           NewHandler(deps, opts),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}
}
