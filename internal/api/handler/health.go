package handler

import (
	"net/http"
	"shoptogether/pkg/controller"
	"time"
)

const (
	HealthPrefix = "/api/health"
	// Version is reported by the health route.
	Version = "1.0.0"
)

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// NewHealth returns the liveness group. It answers GET and HEAD and depends on
// nothing but the clock.
func NewHealth(now func() time.Time) *controller.MuxGroup {
	g := controller.NewMuxGroup(HealthPrefix)
	h := func(w http.ResponseWriter, _ *http.Request) error {
		return controller.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:    "OK",
			Message:   "ShopTogether API is running",
			Timestamp: now().UTC().Format(controller.ISOTime),
			Version:   Version,
		})
	}
	g.Route(http.MethodGet, "/", h)
	g.Route(http.MethodHead, "/", h)

	return g
}
