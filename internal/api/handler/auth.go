package handler

import (
	"net/http"
	"shoptogether/internal/shop"
	"shoptogether/pkg/controller"
	"shoptogether/pkg/domain"
	"time"

	"github.com/go-faster/errors"
)

const AuthPrefix = "/api/auth"

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authHandler struct {
	accounts shop.Accounts
	tokens   Tokens
}

// NewAuth returns the /api/auth group.
func NewAuth(deps Deps) *controller.MuxGroup {
	h := &authHandler{accounts: deps.Accounts, tokens: deps.Tokens}

	limit := func(next controller.HandlerFunc) controller.HandlerFunc { return next }
	if deps.AuthLimiter != nil {
		limit = deps.AuthLimiter.Limit
	}

	g := controller.NewMuxGroup(AuthPrefix)
	g.Route(http.MethodPost, "/register", limit(h.register))
	g.Route(http.MethodPost, "/login", limit(h.login))
	g.Route(http.MethodGet, "/me", controller.RequireBearer(deps.Tokens, h.me))

	return g
}

func (h *authHandler) respond(w http.ResponseWriter, status int, u *domain.User) error {
	token, expiresAt, err := h.tokens.Issue(u.ID.String(), 0)
	if err != nil {
		return errors.Wrap(err, "issue token")
	}

	return controller.WriteJSON(w, status, AuthResponse{Token: token, ExpiresAt: expiresAt, User: u})
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) error {
	var in shop.RegisterInput
	if err := controller.Bind(r, &in); err != nil {
		return err
	}

	u, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		return err
	}

	return h.respond(w, http.StatusCreated, u)
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) error {
	var in loginInput
	if err := controller.Bind(r, &in); err != nil {
		return err
	}

	u, err := h.accounts.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		return err
	}

	return h.respond(w, http.StatusOK, u)
}

func (h *authHandler) me(w http.ResponseWriter, r *http.Request) error {
	id, err := actor(r)
	if err != nil {
		return err
	}

	u, err := h.accounts.GetUser(r.Context(), id)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, u)
}
