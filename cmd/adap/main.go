// Package main wires together one adap process: it loads config,
// connects to the cluster transport, and serves inbound casts and
// sink callbacks until asked to stop. It registers no rule.Pipeline
// or unit.Kind of its own — concrete pipelines and worker kinds are
// the embedding application's responsibility, the same way a
// protocol-layer binary leaves domain components to a downstream
// module.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/kbrw/adap/cluster"
	"github.com/kbrw/adap/config"
	"github.com/kbrw/adap/metric"
	"github.com/kbrw/adap/natsclient"
	"github.com/kbrw/adap/stream"
	"github.com/kbrw/adap/unit"
)

const appName = "adap"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("adap failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "adap.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("starting adap", "node", cfg.Node, "chunk_size", cfg.ChunkSize)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := metric.NewMetrics()

	transport, closeTransport, err := buildTransport(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build transport: %w", err)
	}
	defer closeTransport()

	node := cluster.NewNode(cfg.Node, transport, runtime.NumCPU())

	stream.SetLocalNode(cfg.Node)
	stream.SetDispatcher(node)
	node.RegisterHandler("sink", stream.HandleRequest)

	router, err := unit.NewRouter(ctx, cfg.Node, node, cfg.WorkerTTL(), metrics)
	if err != nil {
		return fmt.Errorf("start router: %w", err)
	}
	_ = router // wired for RegisterKind/rule.Register calls the embedding application makes before Serve

	serveErrC := make(chan error, 1)
	go func() { serveErrC <- node.Serve(ctx) }()

	slog.Info("adap ready", "node", cfg.Node)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serveErrC:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	return nil
}

func buildTransport(ctx context.Context, cfg config.Config) (cluster.Transport, func(), error) {
	if cfg.Cluster.NATSURL == "" {
		return cluster.NewLocalTransport(), func() {}, nil
	}

	client, err := natsclient.NewClient(cfg.Cluster.NATSURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS client: %w", err)
	}
	if err := client.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	transport := cluster.NewNATSTransport(client, cfg.Cluster.RateLimitPerSecond, cfg.Cluster.RateLimitBurst)
	closeFn := func() {
		if err := client.Close(context.Background()); err != nil {
			slog.Error("closing NATS client", "error", err)
		}
	}
	return transport, closeFn, nil
}
