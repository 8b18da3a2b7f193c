package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kbrw/adap/pkg/worker"
)

// envelope multiplexes the single Transport request/reply channel a
// node exposes across several local handler kinds ("unit" for Router
// casts, "sink" for stream.Ref forwarding).
type envelope struct {
	Kind string `json:"kind"`
	Body []byte `json:"body"`
}

type dispatchJob struct {
	ctx   context.Context
	kind  string
	body  []byte
	reply chan dispatchResult
}

type dispatchResult struct {
	payload []byte
	err     error
}

// Node is the per-process endpoint of a cluster: it owns a Transport,
// demultiplexes inbound requests by kind to whichever local package
// registered a handler, and bounds how many of those requests run
// concurrently with a worker.Pool so a burst of casts cannot spawn an
// unbounded number of goroutines.
type Node struct {
	Name      string
	Transport Transport

	mu       sync.RWMutex
	handlers map[string]Handler

	pool   *worker.Pool[dispatchJob]
	logger *slog.Logger
}

// NewNode returns a Node named name, dispatching inbound requests over
// concurrency worker goroutines.
func NewNode(name string, transport Transport, concurrency int) *Node {
	n := &Node{
		Name:      name,
		Transport: transport,
		handlers:  map[string]Handler{},
		logger:    slog.Default().With("component", "cluster-node", "node", name),
	}
	n.pool = worker.NewPool(concurrency, concurrency*4, n.process)
	return n
}

// RegisterHandler routes inbound requests tagged kind to h.
func (n *Node) RegisterHandler(kind string, h Handler) {
	n.mu.Lock()
	n.handlers[kind] = h
	n.mu.Unlock()
}

// Serve starts the dispatch pool and blocks serving inbound requests
// until ctx is canceled.
func (n *Node) Serve(ctx context.Context) error {
	if err := n.pool.Start(ctx); err != nil {
		return err
	}
	return n.Transport.Serve(ctx, n.Name, n.dispatch)
}

// Send encodes body under kind and delivers it to targetNode.
func (n *Node) Send(ctx context.Context, targetNode, kind string, body []byte) ([]byte, error) {
	data, err := json.Marshal(envelope{Kind: kind, Body: body})
	if err != nil {
		return nil, err
	}
	return n.Transport.Send(ctx, targetNode, data)
}

func (n *Node) dispatch(ctx context.Context, payload []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, err
	}

	reply := make(chan dispatchResult, 1)
	if err := n.pool.Submit(dispatchJob{ctx: ctx, kind: env.Kind, body: env.Body, reply: reply}); err != nil {
		return nil, err
	}

	select {
	case r := <-reply:
		return r.payload, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (n *Node) process(ctx context.Context, job dispatchJob) error {
	n.mu.RLock()
	h, ok := n.handlers[job.kind]
	n.mu.RUnlock()
	if !ok {
		err := fmt.Errorf("cluster: no handler registered for kind %q", job.kind)
		job.reply <- dispatchResult{nil, err}
		return err
	}
	payload, err := h(job.ctx, job.body)
	job.reply <- dispatchResult{payload, err}
	return err
}
