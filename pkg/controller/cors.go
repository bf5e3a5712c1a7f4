package controller

import (
	"net/http"

	"github.com/rs/cors"
)

// DefaultAllowedOrigins are the local front-end dev servers.
var DefaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"} //nolint: gochecknoglobals

// CORS returns the cross-origin stage. Allowed origins get the origin echoed back
// with credentials enabled; other origins are served without CORS headers and
// left to the browser to block. Preflight requests are answered here.
func CORS(allowedOrigins []string) Stage {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	})

	return StageFunc(func(w http.ResponseWriter, r *http.Request) (*http.Request, Verdict, error) {
		// HandlerFunc answers preflights itself and only decorates other requests
		c.HandlerFunc(w, r)
		if isPreflight(r) {
			return r, Responded, nil
		}

		return r, Next, nil
	})
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}
