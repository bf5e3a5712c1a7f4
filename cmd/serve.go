package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"shoptogether/internal/api"
	"shoptogether/internal/api/handler"
	"shoptogether/internal/config"
	"shoptogether/internal/shop"
	"shoptogether/internal/worker"
	"shoptogether/pkg/logger"
	"shoptogether/pkg/metrics"
	"shoptogether/pkg/storage"
	"shoptogether/pkg/storage/memory"
	"shoptogether/pkg/token"
	"shoptogether/pkg/uid"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// setupStorage opens the configured backend. The pool is nil for in-memory
// storage, which has no job queue to consume.
func setupStorage(ctx context.Context, cfg *config.Config) (storage.Storage, *pgxpool.Pool, func()) {
	if cfg.Storage.Driver == config.PostgresStorage {
		pgsql, closeStrg := getPostgres(ctx, cfg)

		return pgsql, pgsql.Pool, closeStrg
	}

	logger.Warn(ctx, "using in-memory storage, data is lost on restart and orders stay pending")

	return memory.New(), nil, func() {}
}

func setupTokens(ctx context.Context, cfg *config.Config) *token.Manager {
	if cfg.JWT.PrivateKey == "" {
		logger.Warn(ctx, "JWT_PRIVATE_KEY is not set, tokens are signed with an ephemeral key")
		tokens, err := token.NewEphemeral(cfg.JWT.TTL)
		if err != nil {
			logger.Fatal(ctx, "could not generate signing key", zap.Error(err))
		}

		return tokens
	}

	tokens, err := token.New(cfg.JWT.PrivateKey, cfg.JWT.PublicKey, cfg.JWT.TTL)
	if err != nil {
		logger.Fatal(ctx, "could not load JWT keys", zap.Error(err))
	}

	return tokens
}

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server := api.NewServer(deps, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func printBanner(port int) {
	base := fmt.Sprintf("http://localhost:%d/api", port)

	fmt.Printf("🚀 ShopTogether API Server running on port %d\n", port) //nolint: forbidigo
	fmt.Println("📊 Health check: " + base + "/health")               //nolint: forbidigo
	fmt.Println("📱 Products API: " + base + "/products")             //nolint: forbidigo
	fmt.Println("👥 Users API: " + base + "/users")                   //nolint: forbidigo
	fmt.Println("📦 Orders API: " + base + "/orders")                 //nolint: forbidigo
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			strg, pool, closeStrg := setupStorage(ctx, cfg)
			defer closeStrg()

			numbers, err := uid.NewSnowflake(-1)
			if err != nil {
				logger.Fatal(ctx, "could not create order number generator", zap.Error(err))
			}

			m, err := metrics.New()
			if err != nil {
				logger.Fatal(ctx, "could not create metrics", zap.Error(err))
			}

			svc := shop.New(strg, numbers, shop.NewOptions(cfg))

			if pool != nil {
				riverClient, err := worker.Start(ctx, pool, svc, m, cfg.Orders.ConfirmWorkers)
				if err != nil {
					logger.Fatal(ctx, "could not start workers", zap.Error(err))
				}
				defer func() {
					stopCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
					defer cancel()
					logger.Info(ctx, "stopping workers...")
					if err := riverClient.Stop(stopCtx); err != nil {
						logger.Error(ctx, "could not stop workers", zap.Error(err))
					}
				}()
			}

			stopWebserver := setupServer(ctx, cfg, api.Deps{
				Deps: handler.Deps{
					Catalog:  svc,
					Accounts: svc,
					Families: svc,
					Orders:   svc,
					Tokens:   setupTokens(ctx, cfg),
				},
				Metrics: m,
			})
			printBanner(cfg.HTTP.Port)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			if err := m.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "could not flush metrics", zap.Error(err))
			}
		},
	}

	return cmd
}
