package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductID uniquely identifies a catalog product.
type ProductID uuid.UUID

func (id ProductID) String() string { return uuid.UUID(id).String() }

func (id ProductID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() } //nolint: wrapcheck

func (id *ProductID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) } //nolint: wrapcheck

// ParseProductID parses the textual form of a ProductID.
func ParseProductID(s string) (ProductID, error) {
	id, err := uuid.Parse(s)

	return ProductID(id), err //nolint: wrapcheck
}

// Product is an item of the catalog. Prices are kept in cents.
type Product struct {
	ID          ProductID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"priceCents"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"imageUrl,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductFilter narrows a catalog listing. Empty fields do not filter.
type ProductFilter struct {
	// Category matches the product category exactly.
	Category string
	// Search matches a case-insensitive substring of the product name.
	Search string
}
