package cluster

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kbrw/adap/natsclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestIntegration_NATSTransportRoundTrip(t *testing.T) {
	ctx := context.Background()

	natsContainer, natsURL := startNATSContainer(ctx, t)
	defer natsContainer.Terminate(ctx)

	clientA, err := natsclient.NewClient(natsURL)
	require.NoError(t, err)
	require.NoError(t, clientA.Connect(ctx))
	defer clientA.Close(ctx)

	clientB, err := natsclient.NewClient(natsURL)
	require.NoError(t, err)
	require.NoError(t, clientB.Connect(ctx))
	defer clientB.Close(ctx)

	transportA := NewNATSTransport(clientA, 0, 0)
	transportB := NewNATSTransport(clientB, 0, 0)

	nodeA := NewNode("node-a", transportA, 2)
	nodeB := NewNode("node-b", transportB, 2)

	nodeB.RegisterHandler("echo", func(_ context.Context, body []byte) ([]byte, error) {
		return append([]byte("ack:"), body...), nil
	})

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go nodeB.Serve(serveCtx)
	time.Sleep(200 * time.Millisecond)

	reply, err := nodeA.Send(ctx, "node-b", "echo", []byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ack:ping"), reply)
}

func startNATSContainer(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	req := testcontainers.ContainerRequest{
		Image:        "nats:latest",
		ExposedPorts: []string{"4222/tcp", "8222/tcp"},
		WaitingFor:   wait.ForListeningPort("4222/tcp"),
		Cmd:          []string{"-m", "8222"},
	}

	natsContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := natsContainer.Host(ctx)
	require.NoError(t, err)

	port, err := natsContainer.MappedPort(ctx, "4222")
	require.NoError(t, err)

	natsURL := fmt.Sprintf("nats://%s:%s", host, port.Port())
	time.Sleep(100 * time.Millisecond)

	return natsContainer, natsURL
}
