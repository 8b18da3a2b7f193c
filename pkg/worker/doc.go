// Package worker provides a bounded, generic worker pool for dispatching
// concurrent work with backpressure.
//
// # Overview
//
//   - Generic type support for type-safe work items
//   - Bounded queue with non-blocking submit (backpressure via ErrQueueFull)
//   - Context-aware cancellation and graceful shutdown
//   - Always-on atomic statistics, no external metrics dependency
//
// # Usage
//
//	pool := worker.NewPool[Job](
//	    5,   // workers
//	    100, // queue size
//	    func(ctx context.Context, job Job) error {
//	        return processJob(ctx, job)
//	    },
//	)
//	if err := pool.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Stop(5 * time.Second)
//
//	if err := pool.Submit(job); err != nil {
//	    if errors.Is(err, worker.ErrQueueFull) {
//	        // queue saturated, caller decides whether to drop or back off
//	    }
//	}
//
// # Design notes
//
// Submit never blocks: a full queue returns ErrQueueFull immediately
// rather than making the caller wait for space, which keeps call sites
// (e.g. cluster.Node's request dispatch) off the hook for deciding a
// timeout. Worker count is fixed at construction; this package does not
// support dynamic scaling — run multiple pools if you need that.
//
// Stop closes the work channel and waits up to its timeout for workers
// to drain the queue and exit; it returns ErrStopTimeout if they don't.
// Processor errors are tracked in Stats().Failed but not interpreted —
// the pool doesn't classify them as transient or fatal.
package worker
