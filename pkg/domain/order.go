package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderID uniquely identifies an order.
type OrderID uuid.UUID

func (id OrderID) String() string { return uuid.UUID(id).String() }

func (id OrderID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() } //nolint: wrapcheck

func (id *OrderID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) } //nolint: wrapcheck

// ParseOrderID parses the textual form of an OrderID.
func ParseOrderID(s string) (OrderID, error) {
	id, err := uuid.Parse(s)

	return OrderID(id), err //nolint: wrapcheck
}

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was placed and awaits confirmation.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusConfirmed indicates the background confirmation ran.
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	// OrderStatusCancelled indicates the shopper cancelled the order; its stock was restored.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderItem is a single line of an order. Name and UnitPriceCents are copied from
// the product when the order is placed so later catalog edits do not change it.
type OrderItem struct {
	ProductID      ProductID `json:"productId"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
}

// Order is a purchase placed by a user, optionally on behalf of their family.
type Order struct {
	ID OrderID `json:"id"`
	// Number is a human-friendly, time-ordered order number. Snowflake values
	// exceed 2^53, so JSON carries it as a string.
	Number   int64       `json:"number,string"`
	UserID   UserID      `json:"userId"`
	FamilyID *FamilyID   `json:"familyId,omitempty"`
	Items    []OrderItem `json:"items"`
	// TotalCents is the sum of quantity * unit price over all items.
	TotalCents int64       `json:"totalCents"`
	Status     OrderStatus `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Total computes the order total from its items.
func Total(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += int64(it.Quantity) * it.UnitPriceCents
	}

	return total
}
