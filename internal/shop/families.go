package shop

import (
	"context"
	"shoptogether/pkg/domain"
	"shoptogether/pkg/serrors"
	"shoptogether/pkg/storage"
	"strings"

	"github.com/go-faster/errors"
)

func (s *Service) CreateFamily(ctx context.Context, owner domain.UserID, name string) (*domain.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "family name is required")
	}

	var family *domain.Family
	err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		u, err := tx.UserByID(ctx, owner)
		if err != nil {
			return errors.Wrap(err, "get user")
		}
		if u == nil {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}
		if u.FamilyID != nil {
			return serrors.With(serrors.ErrConflict, "you already belong to a family")
		}

		stored, err := tx.StoreFamily(ctx, domain.Family{Name: name, OwnerID: owner})
		if err != nil {
			return errors.Wrap(err, "store family")
		}
		if err := tx.SetUserFamily(ctx, owner, &stored.ID); err != nil {
			return errors.Wrap(err, "join own family")
		}

		if family, err = tx.FamilyByID(ctx, stored.ID); err != nil {
			return errors.Wrap(err, "get family")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return family, nil
}

// memberFamily loads a family the actor belongs to.
func memberFamily(ctx context.Context,
	st storage.AllStorage,
	actor domain.UserID,
	id domain.FamilyID) (*domain.Family, error) {
	f, err := st.FamilyByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get family")
	}
	if f == nil {
		return nil, serrors.With(serrors.ErrNotFound, "family not found")
	}
	if !f.HasMember(actor) {
		return nil, serrors.With(serrors.ErrForbidden, "you are not a member of this family")
	}

	return f, nil
}

func (s *Service) GetFamily(ctx context.Context, actor domain.UserID, id domain.FamilyID) (*domain.Family, error) {
	return memberFamily(ctx, s.storage, actor, id)
}

func (s *Service) JoinFamily(ctx context.Context, actor domain.UserID, id domain.FamilyID) (*domain.Family, error) {
	var family *domain.Family
	err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		f, err := tx.FamilyByID(ctx, id)
		if err != nil {
			return errors.Wrap(err, "get family")
		}
		if f == nil {
			return serrors.With(serrors.ErrNotFound, "family not found")
		}

		u, err := tx.UserByID(ctx, actor)
		if err != nil {
			return errors.Wrap(err, "get user")
		}
		if u == nil {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}
		if u.FamilyID != nil {
			if *u.FamilyID == id {
				return serrors.With(serrors.ErrConflict, "you are already a member of this family")
			}

			return serrors.With(serrors.ErrConflict, "leave your current family first")
		}

		if err := tx.SetUserFamily(ctx, actor, &id); err != nil {
			return errors.Wrap(err, "join family")
		}

		if family, err = tx.FamilyByID(ctx, id); err != nil {
			return errors.Wrap(err, "get family")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return family, nil
}

// LeaveFamily removes the actor from their family. The owner may only leave a
// family that has no other members, which dissolves it.
func (s *Service) LeaveFamily(ctx context.Context, actor domain.UserID) error {
	return s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		u, err := tx.UserByID(ctx, actor)
		if err != nil {
			return errors.Wrap(err, "get user")
		}
		if u == nil {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}
		if u.FamilyID == nil {
			return serrors.With(serrors.ErrBadRequest, "you do not belong to a family")
		}

		return leaveFamily(ctx, tx, u, false)
	})
}

// leaveFamily detaches u from its family. With handOver set an owner passes
// ownership to the longest standing member instead of being refused.
func leaveFamily(ctx context.Context, tx storage.AllStorage, u *domain.User, handOver bool) error {
	f, err := tx.FamilyByID(ctx, *u.FamilyID)
	if err != nil {
		return errors.Wrap(err, "get family")
	}

	if f != nil && f.OwnerID == u.ID {
		var successor *domain.UserID
		for _, m := range f.Members {
			if m != u.ID {
				successor = &m

				break
			}
		}

		switch {
		case successor == nil:
			if err := tx.SetUserFamily(ctx, u.ID, nil); err != nil {
				return errors.Wrap(err, "leave family")
			}
			if _, err := tx.DeleteFamily(ctx, f.ID); err != nil {
				return errors.Wrap(err, "delete family")
			}

			return nil
		case !handOver:
			return serrors.With(serrors.ErrConflict, "the owner cannot leave while other members remain")
		default:
			if err := tx.SetFamilyOwner(ctx, f.ID, *successor); err != nil {
				return errors.Wrap(err, "transfer family ownership")
			}
		}
	}

	if err := tx.SetUserFamily(ctx, u.ID, nil); err != nil {
		return errors.Wrap(err, "leave family")
	}

	return nil
}

func (s *Service) FamilyOrders(ctx context.Context, actor domain.UserID, id domain.FamilyID) ([]domain.Order, error) {
	if _, err := memberFamily(ctx, s.storage, actor, id); err != nil {
		return nil, err
	}

	orders, err := s.storage.FamilyOrders(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "list family orders")
	}

	return orders, nil
}
