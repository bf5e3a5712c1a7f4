package postgres

import (
	"context"
	"fmt"
	"shoptogether/pkg/domain"
	"shoptogether/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

func (p *PgSQL) StoreProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	var row PgProduct
	row.FromDomain(product)

	var stored PgProduct
	if _, err := p.Builder.Insert(productsTable).
		Rows(row).
		Returning(&PgProduct{}).
		Executor().ScanStructContext(ctx, &stored); err != nil {
		return nil, fmt.Errorf("could not store product into pg: %w", err)
	}

	out := stored.ToDomain()

	return &out, nil
}

// UpdateProduct sets the provided fields and bumps updated_at.
func (p *PgSQL) UpdateProduct(ctx context.Context,
	id domain.ProductID,
	updates storage.ProductUpdates) (*domain.Product, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
	}
	if updates.Name != nil {
		rec["name"] = *updates.Name
	}
	if updates.Description != nil {
		rec["description"] = *updates.Description
	}
	if updates.Category != nil {
		rec["category"] = *updates.Category
	}
	if updates.PriceCents != nil {
		rec["price_cents"] = *updates.PriceCents
	}
	if updates.Stock != nil {
		rec["stock"] = *updates.Stock
	}
	if updates.ImageURL != nil {
		rec["image_url"] = *updates.ImageURL
	}

	var row PgProduct
	found, err := p.Builder.Update(productsTable).
		Set(rec).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Returning(&PgProduct{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update product in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	out := row.ToDomain()

	return &out, nil
}

func (p *PgSQL) DeleteProduct(ctx context.Context, id domain.ProductID) (bool, error) {
	res, err := p.Builder.Delete(productsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete product in pg: %w", err)
	}

	return rowsAffected(res)
}

func (p *PgSQL) ProductByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	var row PgProduct
	found, err := p.Builder.From(productsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch product by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	out := row.ToDomain()

	return &out, nil
}

func (p *PgSQL) ProductsByIDs(ctx context.Context, ids []domain.ProductID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	var rows []PgProduct
	if err := p.Builder.From(productsTable).
		Where(goqu.I("id").In(keys)).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch products by ids: %w", err)
	}

	return pgProductsToDomain(rows), nil
}

// Products lists the catalog ordered by name. Search is a case-insensitive
// substring match on the name.
func (p *PgSQL) Products(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ds := p.Builder.From(productsTable).Order(goqu.I("name").Asc(), goqu.I("id").Asc())
	if filter.Category != "" {
		ds = ds.Where(goqu.I("category").Eq(filter.Category))
	}
	if filter.Search != "" {
		ds = ds.Where(goqu.I("name").ILike("%" + escapeLike(filter.Search) + "%"))
	}

	var rows []PgProduct
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not list products from pg: %w", err)
	}

	return pgProductsToDomain(rows), nil
}

// AdjustStock changes stock atomically; the guard in the WHERE clause keeps
// concurrent orders from overselling.
func (p *PgSQL) AdjustStock(ctx context.Context, id domain.ProductID, delta int) (bool, error) {
	res, err := p.Builder.Update(productsTable).
		Set(goqu.Record{
			"stock":      goqu.L("stock + ?", delta),
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		}).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.L("stock + ? >= 0", delta),
		).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not adjust product stock in pg: %w", err)
	}

	return rowsAffected(res)
}
