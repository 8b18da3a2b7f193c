package cluster

import "context"

// Handler answers one inbound request for a node with a reply payload
// or an error. It is invoked once per Transport.Send call that another
// node directed at the node it is registered on.
type Handler func(ctx context.Context, payload []byte) ([]byte, error)

// Transport is the cross-node messaging primitive a Router uses to
// resolve casts that target another node, and that a stream.Ref uses
// to reach a sink on another node. Two implementations exist:
// localTransport, for a single process simulating multiple logical
// nodes over goroutines, and natsTransport, for a real multi-process
// cluster over NATS request/reply.
type Transport interface {
	// Send delivers payload to node and blocks for its reply.
	Send(ctx context.Context, node string, payload []byte) ([]byte, error)
	// Serve registers h as the handler for requests addressed to node
	// and blocks until ctx is canceled.
	Serve(ctx context.Context, node string, h Handler) error
}
