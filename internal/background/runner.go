package background

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	merrors "github.com/zhubert/mend/internal/errors"
	"github.com/zhubert/mend/internal/logger"
)

// DefaultLimit bounds concurrently running tasks when NewRunner gets a
// non-positive limit.
const DefaultLimit = 2

// Runner executes tasks in the background. Go never blocks the caller: tasks
// beyond the limit wait for a slot on their own goroutine.
type Runner struct {
	g       errgroup.Group
	slots   *semaphore.Weighted
	tracker *Tracker
	log     *slog.Logger
}

// NewRunner returns a runner that runs at most limit tasks at once. Every
// task is counted on tracker while it is queued or running; tracker may be
// nil.
func NewRunner(limit int, tracker *Tracker) *Runner {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if tracker == nil {
		tracker = NewTracker()
	}
	return &Runner{
		slots:   semaphore.NewWeighted(int64(limit)),
		tracker: tracker,
		log:     logger.ComponentLogger("Runner"),
	}
}

// Tracker returns the tracker the runner counts its tasks on.
func (r *Runner) Tracker() *Tracker {
	return r.tracker
}

// Go schedules fn. The task is counted as outstanding before Go returns. A
// task that is still waiting for a slot when ctx is canceled does not run.
func (r *Runner) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	r.tracker.Add()
	r.log.Debug("task queued", "task", name)

	r.g.Go(func() (err error) {
		defer r.tracker.Done()
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("task %s panicked: %v", name, p)
				r.log.Error("task panicked", "task", name, "panic", p)
			}
		}()

		if err := r.slots.Acquire(ctx, 1); err != nil {
			r.log.Warn("task dropped before start", "task", name, "error", err)
			return merrors.TaskCanceled(name, err)
		}
		defer r.slots.Release(1)

		r.log.Debug("task started", "task", name)
		if err := fn(ctx); err != nil {
			r.log.Warn("task failed", "task", name, "error", err)
			return fmt.Errorf("task %s: %w", name, err)
		}
		r.log.Debug("task finished", "task", name)
		return nil
	})
}

// Wait blocks until every task scheduled so far has finished and returns the
// first task error.
func (r *Runner) Wait() error {
	return r.g.Wait()
}
