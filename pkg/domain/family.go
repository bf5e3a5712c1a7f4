package domain

import (
	"time"

	"github.com/google/uuid"
)

// FamilyID uniquely identifies a family.
type FamilyID uuid.UUID

func (id FamilyID) String() string { return uuid.UUID(id).String() }

func (id FamilyID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() } //nolint: wrapcheck

func (id *FamilyID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) } //nolint: wrapcheck

// ParseFamilyID parses the textual form of a FamilyID.
func ParseFamilyID(s string) (FamilyID, error) {
	id, err := uuid.Parse(s)

	return FamilyID(id), err //nolint: wrapcheck
}

// Family is a group of users who shop together and can see each other's orders.
type Family struct {
	ID      FamilyID `json:"id"`
	Name    string   `json:"name"`
	OwnerID UserID   `json:"ownerId"`
	// Members lists every member including the owner, in joining order.
	Members []UserID `json:"members"`

	CreatedAt time.Time `json:"createdAt"`
}

// HasMember reports whether userID belongs to the family.
func (f *Family) HasMember(userID UserID) bool {
	for _, m := range f.Members {
		if m == userID {
			return true
		}
	}

	return false
}
