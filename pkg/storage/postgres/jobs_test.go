package postgres_test

import (
	"context"
	"database/sql"
	"shoptogether/pkg/domain"
	"shoptogether/pkg/storage"
	"shoptogether/pkg/storage/postgres"
	"testing"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/riverqueue/river/rivertest"
	"github.com/stretchr/testify/require"
)

type restockArgs struct {
	ProductID string `json:"product_id"`
}

func (restockArgs) Kind() string { return "restock" }

func migrateRiver(t *testing.T, pg *postgres.PgSQL) {
	t.Helper()

	migrator, err := rivermigrate.New(riverdatabasesql.New(pg.DB.(*sql.DB)), nil)
	require.NoError(t, err)

	_, err = migrator.Migrate(t.Context(), rivermigrate.DirectionUp, nil)
	require.NoError(t, err)
}

func TestPgSQL_AddJob_JoinsTransaction(t *testing.T) {
	pg := setupTestDB(t)
	migrateRiver(t, pg)
	ctx := context.Background()

	tx, err := pg.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	p, err := tx.StoreProduct(ctx, domain.Product{Name: "Apple"})
	require.NoError(t, err)

	_, err = tx.AddJob(ctx, restockArgs{ProductID: p.ID.String()}, nil)
	require.NoError(t, err)

	rivertest.RequireInsertedTx[*riverdatabasesql.Driver](ctx, t,
		tx.(*postgres.PgSQL).DB.(*sql.Tx),
		&restockArgs{ProductID: p.ID.String()},
		nil,
	)
}

func TestPgSQL_AddJob_RolledBackWithTransaction(t *testing.T) {
	pg := setupTestDB(t)
	migrateRiver(t, pg)
	ctx := context.Background()

	err := pg.WithTx(ctx, func(s storage.AllStorage) error {
		if _, err := s.AddJob(ctx, restockArgs{ProductID: "x"}, nil); err != nil {
			return err //nolint: wrapcheck
		}

		return storage.ErrDuplicate
	})
	require.ErrorIs(t, err, storage.ErrDuplicate)

	var count int
	require.NoError(t, pg.DB.QueryRowContext(ctx, `SELECT count(*) FROM river_job`).Scan(&count))
	require.Zero(t, count)
}

func TestPgSQL_AddJob_OutsideTransaction(t *testing.T) {
	pg := setupTestDB(t)
	migrateRiver(t, pg)
	ctx := context.Background()

	_, err := pg.AddJob(ctx, restockArgs{ProductID: "y"}, &river.InsertOpts{Queue: river.QueueDefault})
	require.NoError(t, err)

	rivertest.RequireInserted[*riverdatabasesql.Driver](ctx, t,
		riverdatabasesql.New(pg.DB.(*sql.DB)),
		&restockArgs{ProductID: "y"},
		nil,
	)
}
