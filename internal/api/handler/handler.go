// Package handler implements the /api route groups on top of the shop services.
package handler

import (
	"net/http"
	"shoptogether/internal/shop"
	"shoptogether/pkg/controller"
	"shoptogether/pkg/domain"
	"shoptogether/pkg/serrors"
	"time"
)

// Tokens issues and verifies bearer tokens.
type Tokens interface {
	controller.Verifier
	Issue(subject string, ttl time.Duration) (string, time.Time, error)
}

// Deps are the services the route groups delegate to.
type Deps struct {
	Catalog  shop.Catalog
	Accounts shop.Accounts
	Families shop.Families
	Orders   shop.Orders
	Tokens   Tokens
	// AuthLimiter throttles register and login. Nil disables throttling.
	AuthLimiter *controller.RateLimiter
}

// Groups returns every /api route group in dispatch order.
func Groups(deps Deps) []controller.Group {
	return []controller.Group{
		NewAuth(deps),
		NewProducts(deps),
		NewUsers(deps),
		NewOrders(deps),
		NewFamilies(deps),
		NewHealth(time.Now),
	}
}

// actor returns the authenticated user of a request that went through
// controller.RequireBearer.
func actor(r *http.Request) (domain.UserID, error) {
	id, err := domain.ParseUserID(controller.Subject(r.Context()))
	if err != nil {
		return domain.UserID{}, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token subject")
	}

	return id, nil
}

func pathID[T any](r *http.Request, parse func(string) (T, error), what string) (T, error) {
	raw := controller.Vars(r)["id"]
	id, err := parse(raw)
	if err != nil {
		var zero T

		// an id that cannot exist is reported like a missing record
		return zero, serrors.With(serrors.ErrNotFound, "%s not found", what)
	}

	return id, nil
}

// orEmpty keeps empty results encoding as [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}
