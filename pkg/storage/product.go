package storage

import (
	"context"
	"shoptogether/pkg/domain"
)

// ProductUpdates lists the product fields to change. Nil fields are left untouched.
type ProductUpdates struct {
	Name        *string
	Description *string
	Category    *string
	PriceCents  *int64
	Stock       *int
	ImageURL    *string
}

// ProductStorage persists the catalog.
type ProductStorage interface {
	// StoreProduct inserts p and returns the stored row including generated fields.
	StoreProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	// UpdateProduct applies updates to a product and returns the updated row, or
	// nil when the product does not exist.
	UpdateProduct(ctx context.Context, id domain.ProductID, updates ProductUpdates) (*domain.Product, error)
	// DeleteProduct removes a product. It reports whether a row was deleted.
	DeleteProduct(ctx context.Context, id domain.ProductID) (bool, error)
	// ProductByID returns the product or nil when it does not exist.
	ProductByID(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	// ProductsByIDs returns the existing products among ids, in no particular order.
	ProductsByIDs(ctx context.Context, ids []domain.ProductID) ([]domain.Product, error)
	// Products lists the catalog ordered by name, narrowed by filter.
	Products(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	// AdjustStock adds delta (possibly negative) to the product stock. It reports
	// false without changing anything when the product is missing or the stock
	// would drop below zero.
	AdjustStock(ctx context.Context, id domain.ProductID, delta int) (bool, error)
}
