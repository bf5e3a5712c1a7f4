package postgres

import (
	"context"
	"fmt"
	"shoptogether/pkg/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

func (p *PgSQL) StoreOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	var row PgOrder
	if err := row.FromDomain(order); err != nil {
		return nil, err
	}

	var stored PgOrder
	if _, err := p.Builder.Insert(ordersTable).
		Rows(row).
		Returning(&PgOrder{}).
		Executor().ScanStructContext(ctx, &stored); err != nil {
		return nil, fmt.Errorf("could not store order into pg: %w", err)
	}

	return stored.ToDomain()
}

func (p *PgSQL) OrderByID(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	var row PgOrder
	found, err := p.Builder.From(ordersTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch order by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

func (p *PgSQL) ordersWhere(ctx context.Context, where goqu.Expression) ([]domain.Order, error) {
	var rows []PgOrder
	if err := p.Builder.From(ordersTable).
		Where(where).
		Order(goqu.I("created_at").Desc(), goqu.I("number").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not list orders from pg: %w", err)
	}

	return pgOrdersToDomain(rows)
}

func (p *PgSQL) UserOrders(ctx context.Context, userID domain.UserID) ([]domain.Order, error) {
	return p.ordersWhere(ctx, goqu.I("user_id").Eq(uuid.UUID(userID)))
}

func (p *PgSQL) FamilyOrders(ctx context.Context, familyID domain.FamilyID) ([]domain.Order, error) {
	return p.ordersWhere(ctx, goqu.I("family_id").Eq(uuid.UUID(familyID)))
}

// TransitionOrder is a compare-and-set on the status column.
func (p *PgSQL) TransitionOrder(ctx context.Context,
	id domain.OrderID,
	from, to domain.OrderStatus) (*domain.Order, error) {
	var row PgOrder
	found, err := p.Builder.Update(ordersTable).
		Set(goqu.Record{
			"status":     string(to),
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		}).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.I("status").Eq(string(from)),
		).
		Returning(&PgOrder{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not transition order in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}
