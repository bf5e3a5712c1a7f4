package shop

import (
	"context"
	"shoptogether/pkg/domain"
)

// Catalog manages products.
type Catalog interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id domain.ProductID, patch ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id domain.ProductID) error
}

// Accounts manages users and their credentials.
type Accounts interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, id domain.UserID) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, actor, id domain.UserID, patch UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, actor, id domain.UserID) error
}

// Families manages shared shopping groups.
type Families interface {
	CreateFamily(ctx context.Context, owner domain.UserID, name string) (*domain.Family, error)
	GetFamily(ctx context.Context, actor domain.UserID, id domain.FamilyID) (*domain.Family, error)
	JoinFamily(ctx context.Context, actor domain.UserID, id domain.FamilyID) (*domain.Family, error)
	LeaveFamily(ctx context.Context, actor domain.UserID) error
	FamilyOrders(ctx context.Context, actor domain.UserID, id domain.FamilyID) ([]domain.Order, error)
}

// Orders places and tracks orders.
type Orders interface {
	PlaceOrder(ctx context.Context, userID domain.UserID, in PlaceOrderInput) (*domain.Order, error)
	ListOrders(ctx context.Context, userID domain.UserID) ([]domain.Order, error)
	GetOrder(ctx context.Context, userID domain.UserID, id domain.OrderID) (*domain.Order, error)
	CancelOrder(ctx context.Context, userID domain.UserID, id domain.OrderID) (*domain.Order, error)
	// ConfirmOrder moves a pending order to CONFIRMED. It returns nil when the
	// order is gone or no longer pending.
	ConfirmOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error)
}
