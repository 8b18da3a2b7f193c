// Package natsclient provides a NATS client with circuit breaker protection
// and automatic reconnection, used as the transport primitive behind
// cluster.natsTransport for cross-process unit casts.
//
// # Core Features
//
// Circuit Breaker Pattern: Prevents cascading failures by failing fast after
// a threshold of consecutive failures (default: 5). The circuit opens to
// prevent further attempts, then gradually tests the connection with
// exponential backoff.
//
// Connection Lifecycle Management: Handles connection states automatically
// through the lifecycle: Disconnected → Connecting → Connected →
// Reconnecting → Connected, with configurable callbacks for state changes.
//
// Request/Reply: SubscribeReply registers a per-node responder; Request
// performs the blocking call. Together they carry a unit.Router's Cast
// across process boundaries without any durable stream — a cast that times
// out surfaces as errors.ErrNodeUnreachable to the caller.
//
// # Basic Usage
//
//	client, err := natsclient.NewClient("nats://localhost:4222")
//	if err != nil {
//	    return err
//	}
//
//	ctx := context.Background()
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	err = client.SubscribeReply(ctx, "adap.node.worker-1", func(ctx context.Context, req []byte) ([]byte, error) {
//	    return handleCast(ctx, req)
//	})
//
//	reply, err := client.Request(ctx, "adap.node.worker-1", castPayload)
//
// # Circuit Breaker Pattern
//
//	err := client.Connect(ctx)
//	if errors.Is(err, natsclient.ErrCircuitOpen) {
//	    time.Sleep(client.Backoff())
//	}
//
// # Connection Status and Health
//
//	status := client.Status()
//	switch status {
//	case natsclient.StatusConnected:
//	case natsclient.StatusReconnecting:
//	case natsclient.StatusCircuitOpen:
//	case natsclient.StatusDisconnected:
//	}
//
// # Thread Safety
//
// The Client type is thread-safe and can be used concurrently from multiple
// goroutines. Close() can only be called once; subsequent calls are no-ops.
package natsclient
