package handler

import (
	"net/http"
	"shoptogether/internal/shop"
	"shoptogether/pkg/controller"
	"shoptogether/pkg/domain"
)

const FamiliesPrefix = "/api/families"

type createFamilyInput struct {
	Name string `json:"name"`
}

type familiesHandler struct {
	families shop.Families
}

// NewFamilies returns the /api/families group.
func NewFamilies(deps Deps) *controller.MuxGroup {
	h := &familiesHandler{families: deps.Families}
	auth := func(next controller.HandlerFunc) controller.HandlerFunc {
		return controller.RequireBearer(deps.Tokens, next)
	}

	g := controller.NewMuxGroup(FamiliesPrefix)
	g.Route(http.MethodPost, "/", auth(h.create))
	// registered before /{id} routes so "leave" is never taken for an id
	g.Route(http.MethodPost, "/leave", auth(h.leave))
	g.Route(http.MethodGet, "/{id}", auth(h.get))
	g.Route(http.MethodPost, "/{id}/join", auth(h.join))
	g.Route(http.MethodGet, "/{id}/orders", auth(h.orders))

	return g
}

func (h *familiesHandler) create(w http.ResponseWriter, r *http.Request) error {
	me, err := actor(r)
	if err != nil {
		return err
	}
	var in createFamilyInput
	if err := controller.Bind(r, &in); err != nil {
		return err
	}

	f, err := h.families.CreateFamily(r.Context(), me, in.Name)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusCreated, f)
}

func (h *familiesHandler) get(w http.ResponseWriter, r *http.Request) error {
	me, err := actor(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, domain.ParseFamilyID, "family")
	if err != nil {
		return err
	}

	f, err := h.families.GetFamily(r.Context(), me, id)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, f)
}

func (h *familiesHandler) join(w http.ResponseWriter, r *http.Request) error {
	me, err := actor(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, domain.ParseFamilyID, "family")
	if err != nil {
		return err
	}

	f, err := h.families.JoinFamily(r.Context(), me, id)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, f)
}

func (h *familiesHandler) leave(w http.ResponseWriter, r *http.Request) error {
	me, err := actor(r)
	if err != nil {
		return err
	}

	if err := h.families.LeaveFamily(r.Context(), me); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)

	return nil
}

func (h *familiesHandler) orders(w http.ResponseWriter, r *http.Request) error {
	me, err := actor(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, domain.ParseFamilyID, "family")
	if err != nil {
		return err
	}

	orders, err := h.families.FamilyOrders(r.Context(), me, id)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, orEmpty(orders))
}
