package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kbrw/adap/errors"
	"github.com/kbrw/adap/stream"
	"gopkg.in/yaml.v3"
)

// ClusterConfig describes how this process reaches the rest of the
// cluster. Nodes lists every node name a unit.Kind.HomeNode or
// cluster.Node.Send call may need to resolve; NATSURL is unused when
// running with a single in-process localTransport.
type ClusterConfig struct {
	NATSURL            string   `yaml:"nats_url" json:"nats_url"`
	Nodes              []string `yaml:"nodes" json:"nodes"`
	RateLimitPerSecond float64  `yaml:"rate_limit_per_second" json:"rate_limit_per_second"`
	RateLimitBurst     int      `yaml:"rate_limit_burst" json:"rate_limit_burst"`
}

// Config is the runtime configuration for one adap process: its own
// node identity, the sink/engine tuning knobs spec §6 names, and how
// it reaches the rest of the cluster.
type Config struct {
	Node          string        `yaml:"node" json:"node"`
	ChunkSize     int           `yaml:"chunk_size" json:"chunk_size"`
	DoneTimeoutMS int           `yaml:"done_timeout_ms" json:"done_timeout_ms"`
	WorkerTTLMS   int           `yaml:"worker_ttl_ms" json:"worker_ttl_ms"`
	Cluster       ClusterConfig `yaml:"cluster" json:"cluster"`
}

// DoneTimeout returns DoneTimeoutMS as a time.Duration.
func (c Config) DoneTimeout() time.Duration { return time.Duration(c.DoneTimeoutMS) * time.Millisecond }

// WorkerTTL returns WorkerTTLMS as a time.Duration.
func (c Config) WorkerTTL() time.Duration { return time.Duration(c.WorkerTTLMS) * time.Millisecond }

// Default returns the configuration spec §6 specifies when nothing
// overrides it.
func Default() Config {
	return Config{
		ChunkSize:     stream.DefaultChunkSize,
		DoneTimeoutMS: int(stream.DefaultDoneTimeout / time.Millisecond),
		WorkerTTLMS:   30_000,
	}
}

// Load reads a YAML configuration file, applies it over Default, and
// validates the result against the embedded JSON schema plus the
// semantic invariants Validate checks.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WrapInvalid(err, "config", "Load", fmt.Sprintf("read %s", path))
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.WrapInvalid(err, "config", "Load", fmt.Sprintf("parse %s", path))
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
