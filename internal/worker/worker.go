// Package worker runs the background jobs queued by the shop services.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"shoptogether/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

// DefaultWorkers is used when Start is given a non-positive worker count.
const DefaultWorkers = 4

// Start registers the workers and starts a River client on dbPool. The caller
// stops it with Stop on shutdown.
func Start(ctx context.Context,
	dbPool *pgxpool.Pool,
	orders Confirmer,
	counter ConfirmationCounter,
	maxWorkers int) (*river.Client[pgx.Tx], error) {
	if maxWorkers <= 0 {
		maxWorkers = DefaultWorkers
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewOrderConfirmationWorker(orders, counter))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
		Logger:  slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
