package storage

import (
	"context"
	"shoptogether/pkg/domain"
)

// FamilyStorage persists families. Membership is a property of the user: a user
// belongs to at most one family.
type FamilyStorage interface {
	// StoreFamily inserts f and returns the stored row. Members are not stored
	// here; use SetUserFamily.
	StoreFamily(ctx context.Context, f domain.Family) (*domain.Family, error)
	// FamilyByID returns the family with its members in joining order, or nil.
	FamilyByID(ctx context.Context, id domain.FamilyID) (*domain.Family, error)
	// DeleteFamily removes a family. It reports whether a row was deleted.
	DeleteFamily(ctx context.Context, id domain.FamilyID) (bool, error)
	// SetFamilyOwner transfers ownership of the family.
	SetFamilyOwner(ctx context.Context, id domain.FamilyID, owner domain.UserID) error
	// SetUserFamily moves a user into familyID, or out of any family when nil.
	SetUserFamily(ctx context.Context, userID domain.UserID, familyID *domain.FamilyID) error
}
