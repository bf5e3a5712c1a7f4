package postgres

import (
	"context"
	"fmt"
	"shoptogether/pkg/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

func (p *PgSQL) StoreFamily(ctx context.Context, family domain.Family) (*domain.Family, error) {
	row := PgFamily{
		Name:    family.Name,
		OwnerID: uuid.UUID(family.OwnerID),
	}

	var stored PgFamily
	if _, err := p.Builder.Insert(familiesTable).
		Rows(row).
		Returning(&PgFamily{}).
		Executor().ScanStructContext(ctx, &stored); err != nil {
		return nil, fmt.Errorf("could not store family into pg: %w", err)
	}

	out := stored.ToDomain(nil)

	return &out, nil
}

// FamilyByID loads the family and its members ordered by joining time.
func (p *PgSQL) FamilyByID(ctx context.Context, id domain.FamilyID) (*domain.Family, error) {
	var row PgFamily
	found, err := p.Builder.From(familiesTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch family by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	var members []uuid.UUID
	if err := p.Builder.From(usersTable).
		Select("id").
		Where(goqu.I("family_id").Eq(uuid.UUID(id))).
		Order(goqu.I("family_joined_at").Asc(), goqu.I("id").Asc()).
		Executor().ScanValsContext(ctx, &members); err != nil {
		return nil, fmt.Errorf("could not fetch family members: %w", err)
	}

	out := row.ToDomain(members)

	return &out, nil
}

func (p *PgSQL) DeleteFamily(ctx context.Context, id domain.FamilyID) (bool, error) {
	res, err := p.Builder.Delete(familiesTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete family in pg: %w", err)
	}

	return rowsAffected(res)
}

func (p *PgSQL) SetFamilyOwner(ctx context.Context, id domain.FamilyID, owner domain.UserID) error {
	if _, err := p.Builder.Update(familiesTable).
		Set(goqu.Record{"owner_id": uuid.UUID(owner)}).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not set family owner in pg: %w", err)
	}

	return nil
}

// SetUserFamily uses clock_timestamp so that several joins inside one
// transaction still get distinct, ordered join times.
func (p *PgSQL) SetUserFamily(ctx context.Context, userID domain.UserID, familyID *domain.FamilyID) error {
	rec := goqu.Record{
		"family_id":        nil,
		"family_joined_at": nil,
		"updated_at":       goqu.L("CURRENT_TIMESTAMP"),
	}
	if familyID != nil {
		rec["family_id"] = uuid.UUID(*familyID)
		rec["family_joined_at"] = goqu.L("clock_timestamp()")
	}

	if _, err := p.Builder.Update(usersTable).
		Set(rec).
		Where(goqu.I("id").Eq(uuid.UUID(userID))).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not set user family in pg: %w", err)
	}

	return nil
}
