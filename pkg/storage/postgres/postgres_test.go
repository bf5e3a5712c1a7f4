package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"shoptogether"
	"shoptogether/pkg/storage/postgres"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testUser     = "shop"
	testPassword = "shop"
	testDB       = "shoptogether_test"
)

// startPostgres runs a throwaway postgres and returns its host and port.
func startPostgres(ctx context.Context, t *testing.T) (string, int) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       testDB,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "could not start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return host, port.Int()
}

// migrate applies the embedded schema migrations.
func migrate(db *sql.DB) error {
	goose.SetBaseFS(shoptogether.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// setupTestDB returns a migrated store backed by its own container. It is
// skipped in -short mode since it needs docker.
func setupTestDB(t *testing.T) *postgres.PgSQL {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests need docker")
	}
	ctx := context.Background()

	host, port := startPostgres(ctx, t)

	pg, err := postgres.New(ctx, postgres.Options{
		Username:           testUser,
		Password:           testPassword,
		Host:               host,
		Port:               port,
		Database:           testDB,
		SslMode:            "disable",
		ConnMaxLifetime:    time.Minute,
		ConnMaxIdleTime:    time.Minute,
		MaxOpenConnections: 5,
		MaxIdleConnections: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Close() })

	require.NoError(t, migrate(pg.DB.(*sql.DB)))

	return pg
}
