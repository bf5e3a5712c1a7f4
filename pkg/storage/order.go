package storage

import (
	"context"
	"shoptogether/pkg/domain"
)

// OrderStorage persists orders.
type OrderStorage interface {
	// StoreOrder inserts o and returns the stored row including generated fields.
	StoreOrder(ctx context.Context, o domain.Order) (*domain.Order, error)
	// OrderByID returns the order or nil when it does not exist.
	OrderByID(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	// UserOrders lists the orders placed by a user, newest first.
	UserOrders(ctx context.Context, userID domain.UserID) ([]domain.Order, error)
	// FamilyOrders lists the orders placed on behalf of a family, newest first.
	FamilyOrders(ctx context.Context, familyID domain.FamilyID) ([]domain.Order, error)
	// TransitionOrder moves an order from one status to another and returns the
	// updated row. It returns nil when the order does not exist or is not in from.
	TransitionOrder(ctx context.Context, id domain.OrderID, from, to domain.OrderStatus) (*domain.Order, error)
}
