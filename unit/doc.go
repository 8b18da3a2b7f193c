// Package unit implements the unit router and worker actor at the
// remote side of a rule traversal.
//
// A Spec names a worker by Kind and an opaque Arg; Kind.HomeNode
// resolves which cluster node owns that worker, and Router.Cast
// delivers a named, serializable continuation (a HandlerFunc
// registered under a name, never a raw Go closure) to the live
// WorkerUnit for that Spec, lazily starting one through Kind.Start if
// none exists. Concurrent casts for the same cold Spec collapse into
// one Start call via singleflight; idle workers are evicted from the
// router's worker table, and stopped, after ttl_ms of inactivity.
//
// Router does not supervise workers across restarts (spec §4.4): a
// crashed or expired worker is simply gone, and the next cast for its
// Spec starts a fresh one with no memory of the old state.
package unit
