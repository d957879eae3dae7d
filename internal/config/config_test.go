package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2beens/fitportal/internal/storage"
	"github.com/2beens/fitportal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testConfig = `
[development]
data_dir = "/tmp/fitportal-dev"
storage_quota_bytes = 1024
key_namespace = "dev"
password_hash_cost = 4
log_level = "trace"
log_to_stdout = true

[production]
cache_size_bytes = 2097152
sentry_enabled = true
data_dir = "/var/lib/fitportal"
logs_path = "/var/log/fitportal/portal"
log_format_json = true
metrics_textfile = "/var/lib/node_exporter/fitportal.prom"
`

func TestParse_Development(t *testing.T) {
	cfg, err := Parse("dev", testConfig)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "/tmp/fitportal-dev", cfg.DataDir)
	assert.Equal(t, int64(1024), cfg.StorageQuotaBytes)
	assert.Equal(t, storage.CacheSizeFor(1024), cfg.CacheSizeBytes)
	assert.GreaterOrEqual(t, storage.MaxCachedEntryBytes(cfg.CacheSizeBytes), 1024+len("dev_users_v1"))
	assert.Equal(t, "dev", cfg.KeyNamespace)
	assert.Equal(t, 4, cfg.PasswordHashCost)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.False(t, cfg.SentryEnabled)
	assert.Empty(t, cfg.MetricsTextfile)
}

func TestParse_ProductionDefaults(t *testing.T) {
	cfg, err := Parse("production", testConfig)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/fitportal", cfg.DataDir)
	assert.Equal(t, int64(defaultStorageQuotaBytes), cfg.StorageQuotaBytes)
	assert.Equal(t, 2097152, cfg.CacheSizeBytes)
	assert.True(t, cfg.SentryEnabled)
	assert.Equal(t, defaultKeyNamespace, cfg.KeyNamespace)
	assert.Equal(t, pkg.DefaultPasswordHashCost, cfg.PasswordHashCost)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.True(t, cfg.LogFormatJSON)
	assert.Equal(t, "/var/lib/node_exporter/fitportal.prom", cfg.MetricsTextfile)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("staging", testConfig)
	assert.EqualError(t, err, "unknown env: staging")

	_, err = Parse("prod", "[development]\nlog_level = \"debug\"\n")
	assert.EqualError(t, err, "no config section for env: prod")

	_, err = Parse("dev", "[development\n")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0600))

	cfg, err := Load("development", path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fitportal-dev", cfg.DataDir)

	_, err = Load("development", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
