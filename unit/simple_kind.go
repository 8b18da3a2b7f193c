package unit

import (
	"context"
	"hash/fnv"
)

// SimpleKind is the reference Kind implementation: Start simply calls
// a caller-supplied factory, and HomeNode hashes arg across a fixed
// node list. It exists to exercise the unit package end to end without
// requiring a real worker payload.
type SimpleKind struct {
	nodes   []string
	startFn func(ctx context.Context, arg string) (any, error)
}

// NewSimpleKind returns a Kind whose workers are started by startFn
// and whose home node is a stable hash of arg over nodes.
func NewSimpleKind(nodes []string, startFn func(ctx context.Context, arg string) (any, error)) *SimpleKind {
	return &SimpleKind{nodes: nodes, startFn: startFn}
}

// Start implements Kind.
func (k *SimpleKind) Start(ctx context.Context, arg string) (any, error) {
	return k.startFn(ctx, arg)
}

// HomeNode implements Kind.
func (k *SimpleKind) HomeNode(arg string) string {
	if len(k.nodes) == 0 {
		return ""
	}
	if len(k.nodes) == 1 {
		return k.nodes[0]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(arg))
	return k.nodes[h.Sum32()%uint32(len(k.nodes))]
}
