package cluster

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbrw/adap/errors"
)

// localTransport implements Transport within a single process: each
// logical node is just a name registered against a Handler, and
// Send/Serve exchange payloads over goroutines and channels instead of
// a network. It is the grounding for unit tests and for running a
// whole small cluster in one binary.
type localTransport struct {
	mu    sync.RWMutex
	nodes map[string]Handler
}

// NewLocalTransport returns a Transport that keeps every logical node
// in this process's memory.
func NewLocalTransport() Transport {
	return &localTransport{nodes: map[string]Handler{}}
}

func (t *localTransport) Serve(ctx context.Context, node string, h Handler) error {
	t.mu.Lock()
	t.nodes[node] = h
	t.mu.Unlock()

	<-ctx.Done()

	t.mu.Lock()
	delete(t.nodes, node)
	t.mu.Unlock()
	return ctx.Err()
}

func (t *localTransport) Send(ctx context.Context, node string, payload []byte) ([]byte, error) {
	t.mu.RLock()
	h, ok := t.nodes[node]
	t.mu.RUnlock()
	if !ok {
		return nil, errors.WrapTransient(errors.ErrNodeUnreachable, "localTransport", "Send", fmt.Sprintf("no handler registered for node %q", node))
	}

	type result struct {
		payload []byte
		err     error
	}
	resultC := make(chan result, 1)
	go func() {
		payload, err := h(ctx, payload)
		resultC <- result{payload, err}
	}()

	select {
	case r := <-resultC:
		return r.payload, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
