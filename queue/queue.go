// Package queue implements the bounded-concurrency task queue spec.md
// §4.1 describes: tasks run up to a configured concurrency (waiting tasks
// are not guaranteed to start in submission order), a rejection inside a
// task only fails that task's own Future,
// and OnIdle resolves exactly when pending and in-flight both reach zero.
// The design is grounded on the teacher's engine.Future (a blocking,
// poll-able result handle) and hooks.Bus's snapshot-before-iterate idiom for
// concurrency-safe fan-out, generalized from a workflow-engine adapter to a
// plain in-process worker pool.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Task is the unit of work submitted to a Queue.
type Task[T any] func(ctx context.Context) (T, error)

// Future is the handle returned by Enqueue. Get blocks until the task
// completes; calling it more than once returns the same result.
type Future[T any] interface {
	// Get blocks until the task completes or ctx is canceled, whichever
	// comes first.
	Get(ctx context.Context) (T, error)
}

// Metrics is a point-in-time snapshot of queue activity, returned by
// Queue.Metrics. Neither the hybrid architect nor the lean LLM resolver
// attaches it to telemetry events.
type Metrics struct {
	Pending        int
	InFlight       int
	Completed      int
	Failed         int
	LastError      string
	LastDurationMs int64
}

// Queue is a bounded-concurrency task queue. Each submitted task waits for
// a worker slot in its own goroutine, so the order in which waiting tasks
// are dispatched is not guaranteed to follow submission order; completion
// order is not guaranteed either.
type Queue[T any] struct {
	concurrency int
	onError     func(err error)
	limiter     *rate.Limiter

	sem chan struct{}

	mu        sync.Mutex
	pending   int
	inFlight  int
	completed int
	failed    int
	lastErr   error
	lastDur   time.Duration
	idleCond  *sync.Cond
}

// Option configures a Queue at construction time.
type Option func(*queueOptions)

type queueOptions struct {
	onError func(err error)
	// minInterval, if set, rate-limits dispatch so consecutive tasks are
	// never started closer together than minInterval — the mechanism the
	// hybrid architect and lean LLM resolver use to implement their
	// cooldown windows without hand-rolled timestamp bookkeeping.
	minInterval time.Duration
}

// WithOnError registers a callback invoked (from the task's own goroutine)
// whenever a dispatched task returns an error, for observability.
func WithOnError(f func(err error)) Option {
	return func(o *queueOptions) { o.onError = f }
}

// WithMinInterval enforces a minimum spacing between dispatched tasks,
// implementing a cooldown window at the queue level.
func WithMinInterval(d time.Duration) Option {
	return func(o *queueOptions) { o.minInterval = d }
}

// New constructs a Queue that runs at most concurrency tasks simultaneously.
// concurrency < 1 is treated as 1.
func New[T any](concurrency int, opts ...Option) *Queue[T] {
	if concurrency < 1 {
		concurrency = 1
	}
	var o queueOptions
	for _, opt := range opts {
		opt(&o)
	}
	q := &Queue[T]{
		concurrency: concurrency,
		onError:     o.onError,
		sem:         make(chan struct{}, concurrency),
	}
	q.idleCond = sync.NewCond(&q.mu)
	if o.minInterval > 0 {
		q.limiter = rate.NewLimiter(rate.Every(o.minInterval), 1)
	}
	return q
}

type future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func (f *future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Enqueue submits task and returns a Future for its result. The task runs in
// its own goroutine once a concurrency slot is free; an error returned by
// task only fails that task's Future and is reported via onError — it never
// halts the queue or other in-flight/pending tasks.
func (q *Queue[T]) Enqueue(ctx context.Context, task Task[T]) Future[T] {
	fut := &future[T]{done: make(chan struct{})}

	q.mu.Lock()
	q.pending++
	q.mu.Unlock()

	go func() {
		q.sem <- struct{}{}
		defer func() { <-q.sem }()

		if q.limiter != nil {
			if err := q.limiter.Wait(ctx); err != nil {
				q.mu.Lock()
				q.pending--
				q.inFlight++
				q.mu.Unlock()
				q.finish(fut, errors.New("queue: cooldown wait canceled: "+err.Error()), 0)
				return
			}
		}

		q.mu.Lock()
		q.pending--
		q.inFlight++
		q.mu.Unlock()

		start := time.Now()
		val, err := task(ctx)
		fut.val = val
		q.finish(fut, err, time.Since(start))
	}()

	return fut
}

func (q *Queue[T]) finish(fut *future[T], err error, dur time.Duration) {
	fut.err = err
	close(fut.done)

	q.mu.Lock()
	q.inFlight--
	q.lastDur = dur
	if err != nil {
		q.failed++
		q.lastErr = err
	} else {
		q.completed++
	}
	idle := q.pending == 0 && q.inFlight == 0
	q.mu.Unlock()

	if err != nil && q.onError != nil {
		q.onError(err)
	}
	if idle {
		q.idleCond.Broadcast()
	}
}

// OnIdle blocks until pending and in-flight both reach zero, or ctx is
// canceled. It is safe to call while more tasks are being enqueued by other
// goroutines; OnIdle only observes the instant pending+inFlight hits zero,
// it does not prevent new work from being submitted afterward.
func (q *Queue[T]) OnIdle(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.mu.Lock()
		for q.pending != 0 || q.inFlight != 0 {
			q.idleCond.Wait()
		}
		q.mu.Unlock()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Size returns the number of tasks currently pending (not yet dispatched).
func (q *Queue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Metrics returns a point-in-time snapshot of queue activity.
func (q *Queue[T]) Metrics() Metrics {
	q.mu.Lock()
	defer q.mu.Unlock()
	m := Metrics{
		Pending:        q.pending,
		InFlight:       q.inFlight,
		Completed:      q.completed,
		Failed:         q.failed,
		LastDurationMs: q.lastDur.Milliseconds(),
	}
	if q.lastErr != nil {
		m.LastError = q.lastErr.Error()
	}
	return m
}
