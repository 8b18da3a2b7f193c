package unit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/kbrw/adap/errors"
	"github.com/kbrw/adap/metric"
)

// Closure is the unit of work a Router hands to a worker. Its return
// value is never surfaced to the cast's caller — deliver is
// non-blocking and fire-and-forget by design (spec §4.4) — so a
// closure that can fail must report that failure itself, through
// logging and metrics.
type Closure func(ctx context.Context, state any) error

type job struct {
	ctx context.Context
	fn  Closure
}

// WorkerUnit is the reference worker: a single-threaded actor holding
// state and processing delivered closures strictly one at a time.
// Deliver never blocks on the closure's execution; it only enqueues.
//
// A closure that panics kills the worker: run exits without draining
// the rest of the mailbox, and done closes. This is deliberate — a
// WorkerCrash means the worker's state is no longer trustworthy, so
// the worker must actually die rather than keep serving requests
// against state that may be half-mutated. Idle-TTL expiry, by
// contrast, is owned by the Router's worker table (see unit.Router);
// Stop is what tears a worker down once it has sat idle past ttl_ms.
type WorkerUnit struct {
	ID    string
	Spec  Spec
	node  string
	state any

	mailbox chan job

	logger  *slog.Logger
	metrics *metric.Metrics

	stopOnce sync.Once
	done     chan struct{}
}

func newWorkerUnit(spec Spec, node string, state any, logger *slog.Logger, metrics *metric.Metrics) *WorkerUnit {
	id := uuid.NewString()
	w := &WorkerUnit{
		ID:      id,
		Spec:    spec,
		node:    node,
		state:   state,
		mailbox: make(chan job, 64),
		logger:  logger.With("unit_kind", spec.Kind, "unit_arg", spec.Arg, "worker_id", id),
		metrics: metrics,
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Deliver enqueues fn for execution against the worker's state. It
// returns as soon as the closure is queued, without waiting for it to
// run; a full mailbox or a worker that has already terminated (by
// Stop or by crashing on a previous closure) is reported as a
// transient WorkerCrash-class error.
func (w *WorkerUnit) Deliver(ctx context.Context, fn Closure) error {
	select {
	case <-w.done:
		return errors.WrapTransient(errors.ErrWorkerCrashed, "WorkerUnit", "Deliver", "worker already terminated")
	default:
	}
	select {
	case w.mailbox <- job{ctx: ctx, fn: fn}:
		return nil
	default:
		return errors.WrapTransient(errors.ErrWorkerCrashed, "WorkerUnit", "Deliver", "mailbox full")
	}
}

// Alive reports whether the worker's run loop is still active. It
// returns false once the worker has stopped, whether by Stop or by a
// closure crash — the two are indistinguishable from the outside, both
// mean the Router must start a fresh worker for the next cast.
func (w *WorkerUnit) Alive() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// Stop terminates the worker and waits for its loop to exit. Queued
// closures that have not yet run are dropped. Safe to call after the
// worker has already crashed: the mailbox close is a no-op in that
// case and done is already closed.
func (w *WorkerUnit) Stop() {
	w.stopOnce.Do(func() {
		close(w.mailbox)
	})
	<-w.done
}

func (w *WorkerUnit) run() {
	defer close(w.done)
	for j := range w.mailbox {
		if !w.process(j) {
			return
		}
	}
}

// process runs one closure against the worker's state. It returns
// false if the closure panicked, telling run to terminate the worker
// instead of picking up the next queued closure.
func (w *WorkerUnit) process(j job) (ok bool) {
	ok = true
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker closure panicked, worker crashing", "panic", r)
			if w.metrics != nil {
				w.metrics.RecordWorkerCrash(w.Spec.Kind, w.node)
			}
			ok = false
		}
	}()
	if err := j.fn(j.ctx, w.state); err != nil {
		w.logger.Warn("delivered closure returned an error", "error", err)
	}
	return
}
