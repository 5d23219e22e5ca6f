// Package scheduler runs a function on a fixed interval until it is stopped,
// its context ends, or the function reports it is finished.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// TickFunc is called on every tick. Returning true ends the task. It must
// not call Stop on its own task.
type TickFunc func(ctx context.Context) (done bool)

type Option func(*options)

type options struct {
	immediate bool
}

// WithImmediate runs the first tick right away instead of after one interval.
func WithImmediate() Option {
	return func(o *options) { o.immediate = true }
}

// Task is a running periodic job.
type Task struct {
	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Every starts fn on its own goroutine, once per interval.
func Every(ctx context.Context, interval time.Duration, fn TickFunc, opts ...Option) *Task {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go t.loop(ctx, interval, fn, o)
	return t
}

func (t *Task) loop(ctx context.Context, interval time.Duration, fn TickFunc, o options) {
	defer close(t.done)
	defer t.cancel()

	if o.immediate && t.tick(ctx, fn) {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.tick(ctx, fn) {
				return
			}
		}
	}
}

// tick runs fn under the task lock so Stop can wait out an in-flight tick.
func (t *Task) tick(ctx context.Context, fn TickFunc) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || ctx.Err() != nil {
		return true
	}
	if fn(ctx) {
		t.stopped = true
		return true
	}
	return false
}

// Stop ends the task. After Stop returns no further tick runs. Calling it
// again, or after the task finished on its own, is a no-op.
func (t *Task) Stop() {
	t.cancel()
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// Done is closed once the task goroutine has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Stopped reports whether the task has ended or been asked to end.
func (t *Task) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
