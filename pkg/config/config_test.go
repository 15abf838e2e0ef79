package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadShardConfig_FromFile(t *testing.T) {
	path := writeTemp(t, `
shard:
  server_addr: "0.0.0.0:9000"
  shard_address: "10.0.0.5:9000"
kafka:
  brokers: ["broker-1:9092", "broker-2:9092"]
  topic_group: "group-node-msg"
cache:
  node_id: 2
  node_total: 8
`)
	cfg, err := LoadShardConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddr)
	assert.Equal(t, "10.0.0.5:9000", cfg.ShardAddress)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2, cfg.BootstrapNode)
	assert.Equal(t, 8, cfg.BootstrapTotal)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadShardConfig_EnvOverride(t *testing.T) {
	path := writeTemp(t, `
shard:
  server_addr: "0.0.0.0:9000"
cache:
  node_id: 0
  node_total: 1
`)
	t.Setenv("SHARD_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("CACHE_NODE_ID", "3")
	t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")

	cfg, err := LoadShardConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.ServerAddr)
	assert.Equal(t, 3, cfg.BootstrapNode)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.KafkaBrokers)
}

func TestLoadShardConfig_MissingFilePath(t *testing.T) {
	_, err := LoadShardConfig("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadArbiterConfig_Defaults(t *testing.T) {
	cfg, err := LoadArbiterConfig("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7070", cfg.BindAddr)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadArbiterConfig_EnvOverride(t *testing.T) {
	path := writeTemp(t, `
bind_addr: "0.0.0.0:7070"
data_dir: "/var/lib/groupshard"
`)
	t.Setenv("ARBITER_BIND_ADDR", "0.0.0.0:8080")

	cfg, err := LoadArbiterConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	assert.Equal(t, "/var/lib/groupshard", cfg.DataDir)
}
