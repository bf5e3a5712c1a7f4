package storage

import (
	"context"
	"shoptogether/pkg/domain"
)

// UserUpdates lists the user fields to change. Nil fields are left untouched.
type UserUpdates struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// UserStorage persists user accounts.
type UserStorage interface {
	// StoreUser inserts u. It returns ErrDuplicate when the email is taken.
	StoreUser(ctx context.Context, u domain.User) (*domain.User, error)
	// UpdateUser applies updates and returns the updated user, or nil when the user
	// does not exist. It returns ErrDuplicate when the new email is taken.
	UpdateUser(ctx context.Context, id domain.UserID, updates UserUpdates) (*domain.User, error)
	// DeleteUser removes a user. It reports whether a row was deleted.
	DeleteUser(ctx context.Context, id domain.UserID) (bool, error)
	// UserByID returns the user or nil when it does not exist.
	UserByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	// UserByEmail returns the user with the given (normalized) email or nil.
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	// Users lists all users ordered by creation time.
	Users(ctx context.Context) ([]domain.User, error)
}
