package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_SendDispatchesToRegisteredHandlerOnTargetNode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := NewLocalTransport()
	a := NewNode("node-a", transport, 2)
	b := NewNode("node-b", transport, 2)

	var received []byte
	b.RegisterHandler("echo", func(ctx context.Context, body []byte) ([]byte, error) {
		received = body
		return []byte("pong"), nil
	})

	go a.Serve(ctx)
	go b.Serve(ctx)
	time.Sleep(20 * time.Millisecond)

	reply, err := a.Send(ctx, "node-b", "echo", []byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), reply)
	assert.Equal(t, []byte("ping"), received)
}

func TestNode_SendToUnknownKindFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := NewLocalTransport()
	a := NewNode("node-a", transport, 2)
	b := NewNode("node-b", transport, 2)

	go a.Serve(ctx)
	go b.Serve(ctx)
	time.Sleep(20 * time.Millisecond)

	_, err := a.Send(ctx, "node-b", "no-such-kind", nil)
	assert.Error(t, err)
}

func TestNode_SendToUnregisteredNodeFails(t *testing.T) {
	ctx := context.Background()
	a := NewNode("node-a", NewLocalTransport(), 2)

	_, err := a.Send(ctx, "node-ghost", "echo", nil)
	assert.Error(t, err)
}
