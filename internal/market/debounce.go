package market

import (
	"context"
	"sync"
	"time"

	"github.com/jensholdgaard/wowtools/internal/metrics"
)

// Debouncer coalesces bursts of calls per key. A call waits for wait; a
// newer call with the same key supersedes it and restarts the wait. The
// newest function runs once the burst goes quiet, or maxWait after the
// first call of the burst, whichever comes first. Every caller of the
// burst receives its result.
type Debouncer[T any] struct {
	wait    time.Duration
	maxWait time.Duration

	mu      sync.Mutex
	pending map[string]*burst[T]
}

type burst[T any] struct {
	deadline time.Time
	timer    *time.Timer
	ctx      context.Context
	fn       func(context.Context) (T, error)

	done chan struct{}
	val  T
	err  error
}

// NewDebouncer creates a Debouncer. maxWait shorter than wait is raised to wait.
func NewDebouncer[T any](wait, maxWait time.Duration) *Debouncer[T] {
	if maxWait < wait {
		maxWait = wait
	}
	return &Debouncer[T]{wait: wait, maxWait: maxWait, pending: make(map[string]*burst[T])}
}

// Do schedules fn under key and blocks until the burst fires or ctx is
// done. fn runs with the newest caller's context values but is not
// cancelled when that caller gives up.
func (d *Debouncer[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	d.mu.Lock()
	now := time.Now()
	b, ok := d.pending[key]
	if !ok {
		b = &burst[T]{deadline: now.Add(d.maxWait), done: make(chan struct{})}
		d.pending[key] = b
	} else {
		metrics.SearchesCoalescedTotal.Inc()
	}
	b.ctx = context.WithoutCancel(ctx)
	b.fn = fn

	delay := d.wait
	if left := b.deadline.Sub(now); left < delay {
		delay = left
	}
	if b.timer == nil {
		b.timer = time.AfterFunc(delay, func() { d.fire(key, b) })
	} else if b.timer.Stop() {
		b.timer.Reset(delay)
	}
	// A timer that could not be stopped is already firing and will pick
	// up fn once it gets the lock.
	d.mu.Unlock()

	select {
	case <-b.done:
		return b.val, b.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (d *Debouncer[T]) fire(key string, b *burst[T]) {
	d.mu.Lock()
	if d.pending[key] == b {
		delete(d.pending, key)
	}
	ctx, fn := b.ctx, b.fn
	d.mu.Unlock()

	b.val, b.err = fn(ctx)
	close(b.done)
}
