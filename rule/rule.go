package rule

import "github.com/kbrw/adap/unit"

// LocalAction runs Fn on the node currently driving the scan.
type LocalAction struct {
	Fn LocalFunc
}

func (LocalAction) isAction() {}

// Local builds a Rule action that never leaves the current node.
func Local(fn LocalFunc) Action { return LocalAction{Fn: fn} }

// RemoteAction runs Fn on the worker SpecFn resolves to. Subsequent
// rules in the same group, and the rest of the element's traversal,
// continue on whichever node that worker lives on (spec §4.3): this is
// the "hop" the glossary describes.
type RemoteAction struct {
	SpecFn func(elem Element, state State) unit.Spec
	Fn     RemoteFunc
}

func (RemoteAction) isAction() {}

// Remote builds a Rule action that continues on specFn's resolved
// worker.
func Remote(specFn func(Element, State) unit.Spec, fn RemoteFunc) Action {
	return RemoteAction{SpecFn: specFn, Fn: fn}
}

// Rule is one (name, matcher, action) triple within a Group. Name must
// be unique within a Pipeline: it is both the apply-map key and, for a
// Remote action, the suffix of the handler name registered with the
// unit package ("rule:"+pipeline+":"+Name) so a hop can find its way back to this
// rule on the worker's node.
type Rule struct {
	Name   string
	Match  Matcher
	Action Action
}
