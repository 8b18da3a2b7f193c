package unit

import (
	"context"
	"fmt"
	"sync"
)

// Spec identifies a worker: a Kind name plus an opaque argument the
// Kind interprets (a shard key, a file path, an entity id). Spec must
// stay encoding/json-serializable since it crosses the wire as part of
// a cast envelope.
type Spec struct {
	Kind string `json:"kind"`
	Arg  string `json:"arg"`
}

func (s Spec) key() string { return s.Kind + ":" + s.Arg }

// Kind is the capability contract a worker implementation satisfies
// (spec §4.5): Start builds the worker state for one Arg value, and
// HomeNode is a pure, stable function that must return the same node
// for the same Arg on every node in the cluster, so any router can
// resolve ownership without consulting the worker itself.
type Kind interface {
	Start(ctx context.Context, arg string) (any, error)
	HomeNode(arg string) string
}

var (
	kindsMu sync.RWMutex
	kinds   = map[string]Kind{}
)

// RegisterKind makes a Kind implementation resolvable by name on this
// node, so that a Spec arriving over the wire (which only carries the
// Kind's name) can be started and addressed. Every node that can host
// workers of kind name must register the same implementation.
func RegisterKind(name string, k Kind) error {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	if _, exists := kinds[name]; exists {
		return fmt.Errorf("unit: kind %q already registered", name)
	}
	kinds[name] = k
	return nil
}

// LookupKind returns the Kind registered under name, if any.
func LookupKind(name string) (Kind, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	k, ok := kinds[name]
	return k, ok
}
