package handler

import (
	"net/http"
	"shoptogether/internal/shop"
	"shoptogether/pkg/controller"
	"shoptogether/pkg/domain"
)

const OrdersPrefix = "/api/orders"

type ordersHandler struct {
	orders shop.Orders
}

// NewOrders returns the /api/orders group. Shoppers only ever see their own
// orders.
func NewOrders(deps Deps) *controller.MuxGroup {
	h := &ordersHandler{orders: deps.Orders}
	auth := func(next controller.HandlerFunc) controller.HandlerFunc {
		return controller.RequireBearer(deps.Tokens, next)
	}

	g := controller.NewMuxGroup(OrdersPrefix)
	g.Route(http.MethodGet, "/", auth(h.list))
	g.Route(http.MethodPost, "/", auth(h.place))
	g.Route(http.MethodGet, "/{id}", auth(h.get))
	g.Route(http.MethodPost, "/{id}/cancel", auth(h.cancel))

	return g
}

func (h *ordersHandler) list(w http.ResponseWriter, r *http.Request) error {
	me, err := actor(r)
	if err != nil {
		return err
	}

	orders, err := h.orders.ListOrders(r.Context(), me)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, orEmpty(orders))
}

func (h *ordersHandler) place(w http.ResponseWriter, r *http.Request) error {
	me, err := actor(r)
	if err != nil {
		return err
	}
	var in shop.PlaceOrderInput
	if err := controller.Bind(r, &in); err != nil {
		return err
	}

	o, err := h.orders.PlaceOrder(r.Context(), me, in)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusCreated, o)
}

func (h *ordersHandler) get(w http.ResponseWriter, r *http.Request) error {
	me, err := actor(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, domain.ParseOrderID, "order")
	if err != nil {
		return err
	}

	o, err := h.orders.GetOrder(r.Context(), me, id)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, o)
}

func (h *ordersHandler) cancel(w http.ResponseWriter, r *http.Request) error {
	me, err := actor(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, domain.ParseOrderID, "order")
	if err != nil {
		return err
	}

	o, err := h.orders.CancelOrder(r.Context(), me, id)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, o)
}
