package shop

import (
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// ConfirmOrderArgs asks the background worker to confirm a pending order.
type ConfirmOrderArgs struct {
	// OrderID is unique so an order is never queued twice.
	OrderID string `json:"order_id" river:"unique"`

	maxAttempts int
	delay       time.Duration
}

// Kind returns the River job kind used to register and dispatch the worker.
func (args ConfirmOrderArgs) Kind() string { return "ConfirmOrderJob" }

// InsertOpts delays the job by the cancellation window and keeps it unique per
// order while it is in flight.
func (args ConfirmOrderArgs) InsertOpts() river.InsertOpts {
	opts := river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
	if args.delay > 0 {
		opts.ScheduledAt = time.Now().Add(args.delay)
	}

	return opts
}
