package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.Inventory.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Inventory.BatchTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 500, cfg.Cache.DefaultCapacity)
	assert.Equal(t, "order.product.sales.updated", cfg.Kafka.Topics.SalesUpdated)
}

func TestLoadFile_FromYAML(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
http:
  addr: ":9090"
cache:
  num_shards: 4
  namespaces:
    productById:
      ttl: 2h
      capacity: 50
`)

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 4, cfg.Cache.NumShards)

	ns, ok := cfg.Cache.Namespace("productById")
	require.True(t, ok)
	assert.Equal(t, 2*time.Hour, ns.TTL)
	assert.Equal(t, 50, ns.Capacity)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("CATALOG_HTTP_ADDR", ":7070")

	cfg, err := LoadFile("")

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoadFile_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, "no_such_key: 1\n")

	_, err := LoadFile(path)

	assert.Error(t, err)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_InvalidValues(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	bad := cfg
	bad.Cache.EvictionPercentage = 101
	var fieldErr *FieldError
	require.ErrorAs(t, bad.Validate(), &fieldErr)
	assert.Equal(t, "cache.eviction_percentage", fieldErr.Field)

	bad = cfg
	bad.LogLevel = "loud"
	require.ErrorAs(t, bad.Validate(), &fieldErr)
	assert.Equal(t, "log_level", fieldErr.Field)
}

func TestConfigFilepath(t *testing.T) {
	assert.Equal(t, "/etc/catalog.yaml", configFilepath([]string{"--config", "/etc/catalog.yaml", "--other"}))

	t.Setenv(configFileEnvName, "/from/env.yaml")
	assert.Equal(t, "/from/env.yaml", configFilepath(nil))
}
