// Package joiner states the contract a fixed-size sliding-window join
// helper must satisfy to sit downstream of a rule pipeline. The
// windowing implementation itself is an external collaborator and out
// of scope here (spec §1) — this package fixes only the interface a
// worker built around one would expose to the unit router, so a rule
// can Cast into it the same way it would any other unit.Kind.
package joiner

import (
	"context"

	"github.com/kbrw/adap/stream"
)

// Joiner buffers elements in a fixed-size sliding window keyed by
// whatever correlates the two sides of a join, and emits a joined
// element once a match lands inside the window. Push is expected to
// run on a single worker's goroutine, like any other unit.Kind's
// state, so implementations need no internal locking.
type Joiner interface {
	// Push admits elem into the window and returns zero or more
	// elements produced by matches the window now contains. It does
	// not itself call stream.Ref.Emit; the caller (typically a
	// rule.RemoteFunc) forwards the results.
	Push(ctx context.Context, elem stream.Element) ([]stream.Element, error)

	// Evict drops window entries older than the configured size,
	// independent of Push, so a joiner with no recent traffic on one
	// side doesn't hold stale entries indefinitely.
	Evict(ctx context.Context) error
}

// WindowConfig is the configuration a Joiner implementation is
// expected to accept: a fixed element count per key, not a time
// window, per spec §1's "simple fixed-size sliding-window joiner".
type WindowConfig struct {
	KeyField string
	Size     int
}
