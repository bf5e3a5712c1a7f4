package worker

import (
	"context"
	"fmt"
	"shoptogether/internal/shop"
	"shoptogether/pkg/domain"
	"shoptogether/pkg/logger"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// Confirmer confirms pending orders. shop.Orders satisfies it.
type Confirmer interface {
	ConfirmOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error)
}

// ConfirmationCounter counts confirmed orders.
type ConfirmationCounter interface {
	OrderConfirmed(ctx context.Context)
}

// OrderConfirmationWorker moves an order from PENDING to CONFIRMED once its
// cancellation window is over. Orders cancelled in the meantime are skipped.
type OrderConfirmationWorker struct {
	river.WorkerDefaults[shop.ConfirmOrderArgs]

	orders  Confirmer
	counter ConfirmationCounter
}

// NewOrderConfirmationWorker constructs the worker. counter may be nil.
func NewOrderConfirmationWorker(orders Confirmer, counter ConfirmationCounter) *OrderConfirmationWorker {
	return &OrderConfirmationWorker{orders: orders, counter: counter}
}

func (w *OrderConfirmationWorker) Work(ctx context.Context, job *river.Job[shop.ConfirmOrderArgs]) error {
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.String("orderID", job.Args.OrderID))

	id, err := domain.ParseOrderID(job.Args.OrderID)
	if err != nil {
		// retrying cannot fix a malformed id
		return river.JobCancel(fmt.Errorf("invalid order id: %w", err)) //nolint: wrapcheck
	}

	order, err := w.orders.ConfirmOrder(ctx, id)
	if err != nil {
		logger.Error(ctx, "error in confirming order", zap.Error(err))

		return fmt.Errorf("could not confirm order: %w", err)
	}

	if order == nil {
		logger.Info(ctx, "order no longer pending, skipped confirmation")

		return nil
	}

	if w.counter != nil {
		w.counter.OrderConfirmed(ctx)
	}
	logger.Info(ctx, "order confirmed", zap.Int64("number", order.Number))

	return nil
}
