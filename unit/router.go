package unit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kbrw/adap/cluster"
	"github.com/kbrw/adap/errors"
	"github.com/kbrw/adap/metric"
	"github.com/kbrw/adap/pkg/cache"
	"golang.org/x/sync/singleflight"
)

// castEnvelope is what crosses a cluster.Node.Send call for a cast:
// the worker's identity, the named continuation to run, and its
// serialized request. Handler is never a Go closure, only its name,
// because a closure cannot survive a process boundary (spec §9).
type castEnvelope struct {
	Spec    Spec   `json:"spec"`
	Handler string `json:"handler"`
	Payload []byte `json:"payload"`
}

// Router resolves a Spec to its home node and, once there, to a live
// WorkerUnit, lazily starting one if none exists. It does not
// supervise workers across restarts: a worker that crashes or expires
// is simply gone, and the next cast for its Spec starts a fresh one
// (spec §4.4).
type Router struct {
	node    string
	cluster *cluster.Node
	workers cache.Cache[*WorkerUnit]
	starts  singleflight.Group

	logger  *slog.Logger
	metrics *metric.Metrics
}

// NewRouter returns a Router for node, registered as the "unit"
// handler on clusterNode. Idle workers are evicted from the live-
// worker table (and stopped) after ttl of inactivity, refreshed on
// every cast that reaches them.
func NewRouter(ctx context.Context, node string, clusterNode *cluster.Node, ttl time.Duration, metrics *metric.Metrics) (*Router, error) {
	logger := slog.Default().With("component", "unit-router", "node", node)
	r := &Router{
		node:    node,
		cluster: clusterNode,
		logger:  logger,
		metrics: metrics,
	}

	// evict runs both when the TTL cache expires an idle entry on its
	// own and when getOrStart explicitly drops a worker it found
	// already dead (WorkerCrash); Alive distinguishes which happened,
	// since by the time this runs the worker is gone either way.
	evict := func(_ string, w *WorkerUnit) {
		if w.Alive() {
			w.Stop()
			logger.Debug("worker idle ttl expired", "unit_kind", w.Spec.Kind, "unit_arg", w.Spec.Arg)
			if metrics != nil {
				metrics.RecordWorkerIdleTTL(w.Spec.Kind, node)
			}
			return
		}
		logger.Debug("dropping crashed worker from the live table", "unit_kind", w.Spec.Kind, "unit_arg", w.Spec.Arg)
	}

	var workers cache.Cache[*WorkerUnit]
	var err error
	if ttl <= 0 {
		// ttl_ms: 0 disables idle expiry (spec §6) — a TTL cache with
		// ttl=0 would expire every entry immediately, the opposite of
		// disabled, so an idle worker simply stays cached forever.
		workers, err = cache.NewSimple[*WorkerUnit](cache.WithEvictionCallback[*WorkerUnit](evict))
	} else {
		workers, err = cache.NewTTL[*WorkerUnit](ctx, ttl, ttl, cache.WithEvictionCallback[*WorkerUnit](evict))
	}
	if err != nil {
		return nil, errors.WrapFatal(err, "Router", "NewRouter", "worker table")
	}
	r.workers = workers

	clusterNode.RegisterHandler("unit", r.handleCast)
	return r, nil
}

// Cast resolves spec's home node and delivers handler/payload there,
// starting a worker if none is live. It returns once the closure has
// been handed to the worker (or once that hand-off has failed) — it
// never waits for the closure to run, matching deliver's non-blocking
// contract. The failures reported synchronously through this call are
// an unregistered Kind, WorkerStartError, a Deliver failure (a crashed
// worker or a full mailbox), and, for a remote home node, any Send
// failure, which is reported as NodeUnreachable.
func (r *Router) Cast(ctx context.Context, spec Spec, handler string, payload []byte) error {
	kind, ok := LookupKind(spec.Kind)
	if !ok {
		return errors.WrapInvalid(fmt.Errorf("unit: no kind registered for %q", spec.Kind), "Router", "Cast", "resolve kind")
	}
	target := kind.HomeNode(spec.Arg)

	if target == r.node {
		return r.dispatchLocal(ctx, spec, handler, payload)
	}

	body, err := json.Marshal(castEnvelope{Spec: spec, Handler: handler, Payload: payload})
	if err != nil {
		return err
	}
	start := time.Now()
	_, err = r.cluster.Send(ctx, target, "unit", body)
	if r.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		r.metrics.RecordCast(spec.Kind, target, status, time.Since(start))
	}
	if err != nil {
		return errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrNodeUnreachable, err), "Router", "Cast", fmt.Sprintf("forward to %s", target))
	}
	return nil
}

func (r *Router) handleCast(ctx context.Context, body []byte) ([]byte, error) {
	var env castEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return nil, r.dispatchLocal(ctx, env.Spec, env.Handler, env.Payload)
}

func (r *Router) dispatchLocal(ctx context.Context, spec Spec, handler string, payload []byte) error {
	w, err := r.getOrStart(ctx, spec)
	if err != nil {
		return err
	}
	return w.Deliver(ctx, r.buildClosure(handler, payload))
}

// buildClosure resolves handler through the process-wide handler
// registry and wraps it as a Closure a WorkerUnit can run against its
// state. Any failure from the handler is logged here, since nothing
// downstream of Deliver is waiting for it.
func (r *Router) buildClosure(handler string, payload []byte) Closure {
	return func(ctx context.Context, state any) error {
		fn, ok := lookupHandler(handler)
		if !ok {
			err := fmt.Errorf("unit: no handler registered for %q", handler)
			r.logger.Error("cast referenced an unknown handler", "handler", handler)
			return err
		}
		if _, err := fn(ctx, state, payload); err != nil {
			r.logger.Error("remote handler failed", "handler", handler, "error", err)
			return err
		}
		return nil
	}
}

// getOrStart returns the live worker for spec, starting one if needed.
// Concurrent casts for the same not-yet-started spec collapse into a
// single Kind.Start call via singleflight, so a burst of casts for a
// cold worker never launches it twice.
func (r *Router) getOrStart(ctx context.Context, spec Spec) (*WorkerUnit, error) {
	key := spec.Kind + ":" + spec.Arg

	if w, ok := r.workers.Get(key); ok {
		if w.Alive() {
			r.workers.Set(key, w) // refresh idle ttl
			return w, nil
		}
		// The cached worker crashed processing a previous closure
		// (spec §4.5): it is gone even though the table doesn't know
		// it yet. Drop the stale entry so the singleflight start below
		// actually starts a fresh one instead of handing back a
		// corpse.
		r.workers.Delete(key)
	}

	v, err, _ := r.starts.Do(key, func() (any, error) {
		if w, ok := r.workers.Get(key); ok && w.Alive() {
			return w, nil
		}
		kind, ok := LookupKind(spec.Kind)
		if !ok {
			return nil, errors.WrapInvalid(fmt.Errorf("unit: no kind registered for %q", spec.Kind), "Router", "getOrStart", "resolve kind")
		}
		state, startErr := kind.Start(ctx, spec.Arg)
		if startErr != nil {
			if r.metrics != nil {
				r.metrics.RecordWorkerCrash(spec.Kind, r.node)
			}
			return nil, errors.WrapFatal(fmt.Errorf("%w: %v", errors.ErrWorkerStartFailed, startErr), "Router", "getOrStart", "Kind.Start")
		}
		w := newWorkerUnit(spec, r.node, state, r.logger, r.metrics)
		if _, err := r.workers.Set(key, w); err != nil {
			return nil, err
		}
		if r.metrics != nil {
			r.metrics.RecordWorkerStart(spec.Kind, r.node)
		}
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*WorkerUnit), nil
}
