package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage enqueues background jobs. When the handle is transactional the job
// only becomes visible once the transaction commits, so a job is never run for
// data that was rolled back.
type JobStorage interface {
	// AddJob enqueues a job. The boolean is false when the job was skipped as a
	// duplicate of a unique job already in the queue.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
