package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 200, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.DoneTimeoutMS)
}

func TestLoad_AppliesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
node: node-a
chunk_size: 50
cluster:
  nodes: [node-a, node-b]
  nats_url: nats://localhost:4222
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "node-a", cfg.Node)
	assert.Equal(t, 50, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.DoneTimeoutMS, "unset fields keep the default")
	assert.Equal(t, []string{"node-a", "node-b"}, cfg.Cluster.Nodes)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_RejectsEmptyNode(t *testing.T) {
	cfg := Default()
	cfg.Node = ""
	assert.Error(t, Validate(cfg))
}

func TestValidate_RejectsNonPositiveChunkSize(t *testing.T) {
	cfg := Default()
	cfg.Node = "node-a"
	cfg.ChunkSize = 0
	assert.Error(t, Validate(cfg))
}

func TestValidate_RequiresNodeInClusterListWhenNATSConfigured(t *testing.T) {
	cfg := Default()
	cfg.Node = "node-a"
	cfg.Cluster.NATSURL = "nats://localhost:4222"
	cfg.Cluster.Nodes = []string{"node-b"}
	assert.Error(t, Validate(cfg))

	cfg.Cluster.Nodes = []string{"node-a", "node-b"}
	assert.NoError(t, Validate(cfg))
}
