package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID uniquely identifies a user within the system.
type UserID uuid.UUID

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() } //nolint: wrapcheck

func (id *UserID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) } //nolint: wrapcheck

// IsZero reports whether id is the zero UUID.
func (id UserID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ParseUserID parses the textual form of a UserID.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)

	return UserID(id), err //nolint: wrapcheck
}

// User is a registered shopper.
type User struct {
	ID    UserID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the user's password. It never leaves the server.
	PasswordHash string `json:"-"`
	// FamilyID is the family the user belongs to, if any.
	FamilyID *FamilyID `json:"familyId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
