// Command shoptogether runs the ShopTogether API and its operator tooling.
package main

import (
	"context"
	"fmt"
	"os"
	"shoptogether/internal/config"
	"shoptogether/pkg/logger"
	"shoptogether/pkg/storage/postgres"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const configFlag = "config"

// configPath finds the value of -c/--config in args. Config has to be loaded
// before the subcommands are built, that is before cobra parses anything.
func configPath(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		for _, name := range []string{"-c", "--" + configFlag} {
			if v, ok := strings.CutPrefix(arg, name+"="); ok {
				return v
			}
			if arg == name && i+1 < len(args) {
				return args[i+1]
			}
		}
	}

	return ""
}

func postgresOptions(cfg *config.Config) postgres.Options {
	db := cfg.Database

	return postgres.Options{
		Username:           db.Username,
		Password:           db.Password,
		Host:               db.Host,
		Port:               db.Port,
		Database:           db.DatabaseName,
		SslMode:            db.SslMode,
		ConnMaxLifetime:    db.ConnMaxLifetime,
		ConnMaxIdleTime:    db.ConnMaxIdleTime,
		MaxOpenConnections: db.MaxOpenConnections,
		MaxIdleConnections: db.MaxIdleConnections,
	}
}

// getPostgres opens the pool or exits. The returned func closes it.
func getPostgres(ctx context.Context, cfg *config.Config) (*postgres.PgSQL, func()) {
	pgsql, err := postgres.New(ctx, postgresOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not connect to postgres", zap.Error(err),
			zap.String("host", cfg.Database.Host), zap.Int("port", cfg.Database.Port))
	}

	return pgsql, func() {
		if err := pgsql.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres pool", zap.Error(err))
		}
	}
}

func main() {
	cfg, err := config.Load(configPath(os.Args[1:]))
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err) //nolint: forbidigo
		os.Exit(1)
	}
	logger.Setup(cfg.Environment)

	ctx := context.Background()
	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "panic in command", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	root := &cobra.Command{
		Use:          "shoptogether",
		Short:        "ShopTogether API server",
		SilenceUsage: true,
	}
	// parsed by configPath, declared so cobra accepts it
	root.PersistentFlags().StringP(configFlag, "c", "", "YAML config file (environment only when empty)")
	root.AddCommand(
		serveCommand(cfg),
		migrateCommand(cfg),
		JWTCommand(cfg),
	)

	err = root.Execute()
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
