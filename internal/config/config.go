package config

import (
	"fmt"
	"strings"

	"github.com/2beens/fitportal/internal/storage"
	"github.com/2beens/fitportal/pkg"

	"github.com/BurntSushi/toml"
)

const (
	defaultStorageQuotaBytes = 5 * 1024 * 1024
	defaultKeyNamespace      = "fp"
	defaultLogLevel          = "info"
)

type Config struct {
	Environment string `toml:"-"`
	// storage, the cache size defaults to one that fits a full-quota value
	DataDir           string `toml:"data_dir"`
	StorageQuotaBytes int64  `toml:"storage_quota_bytes"`
	CacheSizeBytes    int    `toml:"cache_size_bytes"`
	KeyNamespace      string `toml:"key_namespace"`
	// accounts
	PasswordHashCost int `toml:"password_hash_cost"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// sentry, DSN comes from the SENTRY_DSN env var
	SentryEnabled bool `toml:"sentry_enabled"`
	// metrics
	MetricsTextfile string `toml:"metrics_textfile"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env,
// with defaults applied to unset fields.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return fromToml(&t, env)
}

// Parse is Load for in-memory TOML content.
func Parse(env, content string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(content, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return fromToml(&t, env)
}

func fromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.StorageQuotaBytes <= 0 {
		c.StorageQuotaBytes = defaultStorageQuotaBytes
	}
	if c.CacheSizeBytes <= 0 {
		c.CacheSizeBytes = storage.CacheSizeFor(c.StorageQuotaBytes)
	}
	if c.KeyNamespace == "" {
		c.KeyNamespace = defaultKeyNamespace
	}
	if c.PasswordHashCost == 0 {
		c.PasswordHashCost = pkg.DefaultPasswordHashCost
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}
