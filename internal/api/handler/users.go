package handler

import (
	"net/http"
	"shoptogether/internal/shop"
	"shoptogether/pkg/controller"
	"shoptogether/pkg/domain"
)

const UsersPrefix = "/api/users"

type usersHandler struct {
	accounts shop.Accounts
}

// NewUsers returns the /api/users group. Every route needs a bearer token and
// accounts can only be changed by their owner.
func NewUsers(deps Deps) *controller.MuxGroup {
	h := &usersHandler{accounts: deps.Accounts}
	auth := func(next controller.HandlerFunc) controller.HandlerFunc {
		return controller.RequireBearer(deps.Tokens, next)
	}

	g := controller.NewMuxGroup(UsersPrefix)
	g.Route(http.MethodGet, "/", auth(h.list))
	g.Route(http.MethodGet, "/{id}", auth(h.get))
	g.Route(http.MethodPut, "/{id}", auth(h.update))
	g.Route(http.MethodDelete, "/{id}", auth(h.remove))

	return g
}

func (h *usersHandler) list(w http.ResponseWriter, r *http.Request) error {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, orEmpty(users))
}

func (h *usersHandler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, domain.ParseUserID, "user")
	if err != nil {
		return err
	}

	u, err := h.accounts.GetUser(r.Context(), id)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, u)
}

func (h *usersHandler) update(w http.ResponseWriter, r *http.Request) error {
	me, err := actor(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, domain.ParseUserID, "user")
	if err != nil {
		return err
	}
	var patch shop.UserPatch
	if err := controller.Bind(r, &patch); err != nil {
		return err
	}

	u, err := h.accounts.UpdateUser(r.Context(), me, id, patch)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, u)
}

func (h *usersHandler) remove(w http.ResponseWriter, r *http.Request) error {
	me, err := actor(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, domain.ParseUserID, "user")
	if err != nil {
		return err
	}

	if err := h.accounts.DeleteUser(r.Context(), me, id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)

	return nil
}
