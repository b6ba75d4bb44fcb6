package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zhubert/mend/internal/background"
	"github.com/zhubert/mend/internal/logger"
)

// ErrClosed is returned when work is handed to a dispatcher that has stopped.
var ErrClosed = errors.New("ui dispatcher closed")

type task struct {
	name string
	fn   func() error
	// done receives fn's result; nil for posted tasks.
	done chan error
}

// Dispatcher owns the terminal. Anything that draws or reads keys (the merge
// tool, prompts) runs as a task on the single goroutine that calls Serve, one
// task at a time. Other goroutines hand work over with InvokeAndWait or Post.
type Dispatcher struct {
	tasks     chan task
	closed    chan struct{}
	closeOnce sync.Once
	tracker   *background.Tracker
	log       *slog.Logger
}

// NewDispatcher returns a dispatcher whose posted tasks are counted on
// tracker. tracker may be nil.
func NewDispatcher(tracker *background.Tracker) *Dispatcher {
	if tracker == nil {
		tracker = background.NewTracker()
	}
	return &Dispatcher{
		tasks:   make(chan task),
		closed:  make(chan struct{}),
		tracker: tracker,
		log:     logger.ComponentLogger("Dispatcher"),
	}
}

// Serve runs tasks on the calling goroutine until Close is called or ctx is
// done.
func (d *Dispatcher) Serve(ctx context.Context) error {
	d.log.Debug("dispatcher serving")
	for {
		select {
		case t := <-d.tasks:
			d.run(t)
		case <-d.closed:
			d.log.Debug("dispatcher closed")
			return nil
		case <-ctx.Done():
			d.Close()
			return ctx.Err()
		}
	}
}

func (d *Dispatcher) run(t task) {
	d.log.Debug("running ui task", "task", t.name)
	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("ui task %s panicked: %v", t.name, p)
			}
		}()
		return t.fn()
	}()
	if err != nil {
		d.log.Warn("ui task failed", "task", t.name, "error", err)
	}
	if t.done != nil {
		t.done <- err
	}
}

// InvokeAndWait runs fn on the UI goroutine and blocks until it returns. It
// must not be called from a task already running on the dispatcher. Once fn
// has been handed over it always runs to completion, and InvokeAndWait waits
// for it even if ctx is canceled in the meantime; it then returns ctx.Err().
func (d *Dispatcher) InvokeAndWait(ctx context.Context, name string, fn func() error) error {
	t := task{name: name, fn: fn, done: make(chan error, 1)}
	select {
	case d.tasks <- t:
	case <-d.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	err := <-t.done
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Post queues fn to run on the UI goroutine without waiting for it. The task
// counts as outstanding work on the tracker from the moment Post returns.
func (d *Dispatcher) Post(name string, fn func() error) {
	d.tracker.Add()
	wrapped := task{name: name, fn: func() error {
		defer d.tracker.Done()
		return fn()
	}}

	go func() {
		select {
		case d.tasks <- wrapped:
		case <-d.closed:
			d.log.Debug("dropping ui task after close", "task", name)
			d.tracker.Done()
		}
	}()
}

// Tracker returns the tracker posted tasks are counted on.
func (d *Dispatcher) Tracker() *background.Tracker {
	return d.tracker
}

// Close stops Serve. Tasks not yet started are dropped.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.closed) })
}

// Done is closed once the dispatcher has been closed.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.closed
}
