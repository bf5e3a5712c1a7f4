package handler

import (
	"net/http"
	"shoptogether/internal/shop"
	"shoptogether/pkg/controller"
	"shoptogether/pkg/domain"
)

const ProductsPrefix = "/api/products"

type productsHandler struct {
	catalog shop.Catalog
}

// NewProducts returns the /api/products group. Reads are public, changes need a
// bearer token.
func NewProducts(deps Deps) *controller.MuxGroup {
	h := &productsHandler{catalog: deps.Catalog}

	g := controller.NewMuxGroup(ProductsPrefix)
	g.Route(http.MethodGet, "/", h.list)
	g.Route(http.MethodGet, "/{id}", h.get)
	g.Route(http.MethodPost, "/", controller.RequireBearer(deps.Tokens, h.create))
	g.Route(http.MethodPut, "/{id}", controller.RequireBearer(deps.Tokens, h.update))
	g.Route(http.MethodDelete, "/{id}", controller.RequireBearer(deps.Tokens, h.remove))

	return g
}

func (h *productsHandler) list(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	products, err := h.catalog.ListProducts(r.Context(), domain.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, orEmpty(products))
}

func (h *productsHandler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, domain.ParseProductID, "product")
	if err != nil {
		return err
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, p)
}

func (h *productsHandler) create(w http.ResponseWriter, r *http.Request) error {
	var in shop.ProductInput
	if err := controller.Bind(r, &in); err != nil {
		return err
	}

	p, err := h.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusCreated, p)
}

func (h *productsHandler) update(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, domain.ParseProductID, "product")
	if err != nil {
		return err
	}
	var patch shop.ProductPatch
	if err := controller.Bind(r, &patch); err != nil {
		return err
	}

	p, err := h.catalog.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		return err
	}

	return controller.WriteJSON(w, http.StatusOK, p)
}

func (h *productsHandler) remove(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, domain.ParseProductID, "product")
	if err != nil {
		return err
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)

	return nil
}
