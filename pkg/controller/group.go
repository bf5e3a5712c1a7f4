package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// HandlerFunc is a route handler that reports failures instead of writing them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Group is a route group: it handles every request under one path prefix, or
// passes it through when none of its routes match.
type Group interface {
	Prefix() string
	Handle(w http.ResponseWriter, r *http.Request) (Verdict, error)
}

// outcome is how a mux route reports back to Group.Handle.
type outcome struct {
	handled bool
	err     error
}

type outcomeKey struct{}

// MuxGroup is a Group routed by gorilla/mux. Paths are registered relative to
// the prefix; a trailing slash on the request path is ignored.
type MuxGroup struct {
	prefix string
	router *mux.Router
}

var _ Group = (*MuxGroup)(nil)

// NewMuxGroup creates an empty group for prefix.
func NewMuxGroup(prefix string) *MuxGroup {
	router := mux.NewRouter().SkipClean(true)
	passThrough := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	router.NotFoundHandler = passThrough
	router.MethodNotAllowedHandler = passThrough

	return &MuxGroup{
		prefix: strings.TrimSuffix(prefix, "/"),
		router: router,
	}
}

func (g *MuxGroup) Prefix() string {
	return g.prefix
}

// Route registers h for method and path ("/" is the group root). Paths may use
// mux variables such as "/{id}".
func (g *MuxGroup) Route(method, path string, h HandlerFunc) {
	full := g.prefix + strings.TrimSuffix(path, "/")
	if full == "" {
		full = "/"
	}

	g.router.Handle(full, g.wrap(h)).Methods(method)
}

func (g *MuxGroup) wrap(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, _ := r.Context().Value(outcomeKey{}).(*outcome)
		if out == nil {
			out = &outcome{}
		}
		out.handled = true

		if err := h(w, r); err != nil {
			if Written(w) || !WriteClientError(w, err) {
				out.err = withStack(err)
			}
		}
	})
}

// Handle routes r through the group. It returns Next when no route matched.
func (g *MuxGroup) Handle(w http.ResponseWriter, r *http.Request) (Verdict, error) {
	out := &outcome{}
	req := r.WithContext(context.WithValue(r.Context(), outcomeKey{}, out))
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		u := *req.URL
		u.Path = strings.TrimSuffix(p, "/")
		u.RawPath = ""
		req.URL = &u
	}

	g.router.ServeHTTP(w, req)

	switch {
	case out.err != nil:
		return Next, out.err
	case out.handled:
		return Responded, nil
	default:
		return Next, nil
	}
}

// Vars returns the route variables of the current request.
func Vars(r *http.Request) map[string]string {
	return mux.Vars(r)
}

// Dispatch returns the stage that hands requests to the group owning their
// prefix. A request matches a prefix when its path equals it or continues
// with "/". Prefixes are expected to be disjoint.
func Dispatch(groups ...Group) *Dispatcher {
	return &Dispatcher{groups: groups}
}

// Dispatcher is the dispatch table stage.
type Dispatcher struct {
	groups []Group
}

var _ Stage = (*Dispatcher)(nil)

func (d *Dispatcher) Process(w http.ResponseWriter, r *http.Request) (*http.Request, Verdict, error) {
	for _, g := range d.groups {
		if !matchPrefix(r.URL.Path, g.Prefix()) {
			continue
		}

		verdict, err := g.Handle(w, r)

		return r, verdict, err
	}

	return r, Next, nil
}

func matchPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}

	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
