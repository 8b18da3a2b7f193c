package rule

import (
	"context"

	"github.com/kbrw/adap/stream"
)

// Element is the data a Pipeline traverses; it is the same type a Sink
// accumulates, so a Pipeline's built EmitFunc can hand elements
// straight to stream.Sink.Done/Emit without conversion.
type Element = stream.Element

// State is a rule's private carry-over value: whatever a Local or
// Remote action returns as State flows into the next rule evaluation
// within the same group, untyped because each group's rules agree on
// its shape among themselves. For a Remote action, State must stay
// encoding/json-serializable, since it travels inside a cast payload.
type State = any

// Matcher decides whether rule applies to elem given the group's
// current state.
type Matcher func(elem Element, state State) bool

// Result is what a rule action produces: the (possibly unchanged)
// element and state to continue the scan with, plus any elements to
// fan out as independent new traversals.
type Result struct {
	Element Element
	State   State
	Emit    []Element
}

// LocalFunc runs entirely on the node driving the scan.
type LocalFunc func(ctx context.Context, elem Element, state State) (Result, error)

// RemoteFunc runs on the worker a Remote action's SpecFn resolves to,
// against that worker's own state — the "worker state" of spec §4.5 —
// not the rule group's State, which still travels alongside it.
type RemoteFunc func(ctx context.Context, workerState any, elem Element, state State) (Result, error)

// Action is what a Rule does once it matches: either Local or Remote.
type Action interface{ isAction() }
