package worker_test

import (
	"context"
	"errors"
	"shoptogether/internal/shop"
	"shoptogether/internal/worker"
	"shoptogether/pkg/domain"
	"shoptogether/pkg/logger"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

type fakeConfirmer struct {
	order *domain.Order
	err   error
	calls []domain.OrderID
}

func (f *fakeConfirmer) ConfirmOrder(_ context.Context, id domain.OrderID) (*domain.Order, error) {
	f.calls = append(f.calls, id)

	return f.order, f.err
}

type countingMetrics struct{ confirmed int }

func (c *countingMetrics) OrderConfirmed(context.Context) { c.confirmed++ }

func makeJob(id int64, orderID string) *river.Job[shop.ConfirmOrderArgs] {
	return &river.Job[shop.ConfirmOrderArgs]{
		JobRow: &rivertype.JobRow{ID: id},
		Args:   shop.ConfirmOrderArgs{OrderID: orderID},
	}
}

func TestOrderConfirmationWorker_Confirms(t *testing.T) {
	orderID := domain.OrderID(uuid.New())
	confirmer := &fakeConfirmer{order: &domain.Order{ID: orderID, Number: 7, Status: domain.OrderStatusConfirmed}}
	counter := &countingMetrics{}
	w := worker.NewOrderConfirmationWorker(confirmer, counter)

	require.NoError(t, w.Work(context.Background(), makeJob(1, orderID.String())))
	require.Equal(t, []domain.OrderID{orderID}, confirmer.calls)
	require.Equal(t, 1, counter.confirmed)
}

func TestOrderConfirmationWorker_SkipsSettledOrders(t *testing.T) {
	counter := &countingMetrics{}
	w := worker.NewOrderConfirmationWorker(&fakeConfirmer{}, counter)

	require.NoError(t, w.Work(context.Background(), makeJob(2, uuid.NewString())))
	require.Zero(t, counter.confirmed)
}

func TestOrderConfirmationWorker_ErrorsRetry(t *testing.T) {
	w := worker.NewOrderConfirmationWorker(&fakeConfirmer{err: errors.New("DB down")}, nil)

	err := w.Work(context.Background(), makeJob(3, uuid.NewString()))
	require.ErrorContains(t, err, "DB down")

	var cancelErr *river.JobCancelError
	require.NotErrorAs(t, err, &cancelErr)
}

func TestOrderConfirmationWorker_InvalidIDCancels(t *testing.T) {
	confirmer := &fakeConfirmer{}
	w := worker.NewOrderConfirmationWorker(confirmer, nil)

	err := w.Work(context.Background(), makeJob(4, "not-a-uuid"))
	var cancelErr *river.JobCancelError
	require.ErrorAs(t, err, &cancelErr)
	require.Empty(t, confirmer.calls)
}
