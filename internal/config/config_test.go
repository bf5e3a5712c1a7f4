package config_test

import (
	"os"
	"path/filepath"
	"shoptogether/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, 3001, cfg.HTTP.Port)
	require.Equal(t, int64(100*1024), cfg.HTTP.BodyLimit)
	require.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, config.MemoryStorage, cfg.Storage.Driver)
	require.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	require.Equal(t, time.Minute, cfg.Orders.ConfirmDelay)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("NODE_ENV", "development")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example,https://admin.example")
	t.Setenv("ORDERS_CONFIRM_DELAY", "5s")

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.HTTP.Port)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, 5*time.Second, cfg.Orders.ConfirmDelay)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: development
http:
  port: 4000
storage:
  driver: postgres
database:
  host: db.internal
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, 4000, cfg.HTTP.Port)
	require.Equal(t, config.PostgresStorage, cfg.Storage.Driver)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, 5432, cfg.Database.Port)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := config.Load("")
	require.ErrorContains(t, err, "unknown storage driver")

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
