package cluster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbrw/adap/errors"
	"github.com/kbrw/adap/natsclient"
	"github.com/kbrw/adap/pkg/retry"
	"golang.org/x/time/rate"
)

// subject returns the NATS subject a node's cast requests are served
// on: adap.<node>.cast.
func subject(node string) string { return fmt.Sprintf("adap.%s.cast", node) }

// natsTransport implements Transport over real NATS request/reply,
// for a cluster spread across multiple processes. Outbound requests
// are rate limited per destination node to keep a slow or overloaded
// node from being hammered by a burst of casts, and transient
// connectivity failures are retried with backoff before Send gives up.
type natsTransport struct {
	client *natsclient.Client

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
	limit     rate.Limit
	burst     int
}

// NewNATSTransport wraps an already-connected client. ratePerSecond
// and burst bound outbound requests per destination node; pass 0 for
// ratePerSecond to disable limiting.
func NewNATSTransport(client *natsclient.Client, ratePerSecond float64, burst int) Transport {
	t := &natsTransport{
		client:   client,
		limiters: map[string]*rate.Limiter{},
		limit:    rate.Limit(ratePerSecond),
		burst:    burst,
	}
	return t
}

func (t *natsTransport) limiterFor(node string) *rate.Limiter {
	if t.limit <= 0 {
		return nil
	}
	t.limiterMu.Lock()
	defer t.limiterMu.Unlock()
	l, ok := t.limiters[node]
	if !ok {
		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[node] = l
	}
	return l
}

// Send retries a NodeUnreachable-class failure (dropped connection,
// request timeout) with backoff, per spec §7's transport-layer retry
// policy; a remote handler's own error (errors.IsFatal) is never
// retried since re-sending would just run the continuation again.
func (t *natsTransport) Send(ctx context.Context, node string, payload []byte) ([]byte, error) {
	if l := t.limiterFor(node); l != nil {
		if err := l.Wait(ctx); err != nil {
			return nil, err
		}
	}

	cfg := retry.Config{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond, MaxDelay: 500 * time.Millisecond, Multiplier: 2.0, AddJitter: true}
	return retry.DoWithResult(ctx, cfg, func() ([]byte, error) {
		reply, err := t.client.Request(ctx, subject(node), payload)
		if err != nil && !errors.IsTransient(err) {
			return nil, retry.NonRetryable(err)
		}
		return reply, err
	})
}

func (t *natsTransport) Serve(ctx context.Context, node string, h Handler) error {
	if err := t.client.SubscribeReply(ctx, subject(node), func(ctx context.Context, data []byte) ([]byte, error) {
		return h(ctx, data)
	}); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}
