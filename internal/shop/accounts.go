package shop

import (
	"context"
	"net/mail"
	"shoptogether/pkg/domain"
	"shoptogether/pkg/serrors"
	"shoptogether/pkg/storage"
	"strings"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// ErrInvalidCredentials is returned by Login for any unknown email or wrong
// password, so callers cannot tell the two apart.
var ErrInvalidCredentials = serrors.With(serrors.ErrUnauthorized, "invalid email or password")

// RegisterInput is the payload to create an account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserPatch lists the account fields to change; nil fields stay as they are.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// NormalizeEmail lowercases and trims an address and checks its syntax.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", serrors.With(serrors.ErrBadRequest, "a valid email is required")
	}

	return email, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", serrors.With(serrors.ErrBadRequest, "password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.options.BcryptCost)
	if err != nil {
		// bcrypt rejects passwords longer than 72 bytes
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "password is not acceptable")
	}

	return string(hash), nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "name is required")
	}
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.storage.StoreUser(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, serrors.Wrap(serrors.ErrConflict, err, "email already registered")
	}
	if err != nil {
		return nil, errors.Wrap(err, "register user")
	}

	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "login")
	}
	if u == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))

		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	u, err := s.storage.UserByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	if u == nil {
		return nil, serrors.With(serrors.ErrNotFound, "user not found")
	}

	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.storage.Users(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}

	return users, nil
}

func (s *Service) UpdateUser(ctx context.Context,
	actor, id domain.UserID,
	patch UserPatch) (*domain.User, error) {
	if actor != id {
		return nil, serrors.With(serrors.ErrForbidden, "you can only update your own account")
	}

	var updates storage.UserUpdates
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, serrors.With(serrors.ErrBadRequest, "name is required")
		}
		updates.Name = &name
	}
	if patch.Email != nil {
		email, err := NormalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		updates.Email = &email
	}
	if patch.Password != nil {
		hash, err := s.hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		updates.PasswordHash = &hash
	}

	u, err := s.storage.UpdateUser(ctx, id, updates)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, serrors.Wrap(serrors.ErrConflict, err, "email already registered")
	}
	if err != nil {
		return nil, errors.Wrap(err, "update user")
	}
	if u == nil {
		return nil, serrors.With(serrors.ErrNotFound, "user not found")
	}

	return u, nil
}

// DeleteUser removes the actor's own account. A family owner hands the family
// over to the next member, or the family is dissolved when it was the last one.
func (s *Service) DeleteUser(ctx context.Context, actor, id domain.UserID) error {
	if actor != id {
		return serrors.With(serrors.ErrForbidden, "you can only delete your own account")
	}

	return s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		u, err := tx.UserByID(ctx, id)
		if err != nil {
			return errors.Wrap(err, "get user")
		}
		if u == nil {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}

		if u.FamilyID != nil {
			if err := leaveFamily(ctx, tx, u, true); err != nil {
				return err
			}
		}

		if _, err := tx.DeleteUser(ctx, id); err != nil {
			return errors.Wrap(err, "delete user")
		}

		return nil
	})
}
