package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads a Config from its three layers: embedded defaults, an
// optional config file, and environment variables (env wins).
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader returns a Loader that looks for .codelens/config.yml under
// rootDir.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load reads defaults, then .codelens/config.yml if present, then
// CODELENS_* environment variables, in that priority order.
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".codelens")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("CODELENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVars(v)
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// bindEnvVars declares every field viper should read from CODELENS_* env
// vars even when a config file doesn't mention it.
func bindEnvVars(v *viper.Viper) {
	fields := []string{
		"server.admin_addr", "server.collection_prefix",
		"embedding.provider", "embedding.dimensions", "embedding.sidecar_addr",
		"embedding.sidecar_binary", "embedding.startup_timeout",
		"vector_store.provider", "vector_store.sqlite_path",
		"cache.enabled", "cache.backend", "cache.local_capacity",
		"cache.redis_addr", "cache.redis_password", "cache.redis_db", "cache.search_ttl",
		"metrics.cleanup_interval", "metrics.monitoring_interval", "metrics.max_lock_age",
		"limits.max_file_size_bytes", "limits.default_search_k", "limits.max_search_k",
		"logging.level", "logging.format",
	}
	for _, field := range fields {
		_ = v.BindEnv(field)
	}
}

// setDefaults seeds viper with defaults's values under their mapstructure
// keys, so an unset field falls back to Default() rather than viper's
// own zero value.
func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("server.admin_addr", defaults.Server.AdminAddr)
	v.SetDefault("server.collection_prefix", defaults.Server.CollectionPrefix)

	v.SetDefault("embedding.provider", defaults.Embedding.Provider)
	v.SetDefault("embedding.dimensions", defaults.Embedding.Dimensions)
	v.SetDefault("embedding.sidecar_addr", defaults.Embedding.SidecarAddr)
	v.SetDefault("embedding.sidecar_binary", defaults.Embedding.SidecarBinary)
	v.SetDefault("embedding.startup_timeout", defaults.Embedding.StartupTimeout)

	v.SetDefault("vector_store.provider", defaults.VectorStore.Provider)
	v.SetDefault("vector_store.sqlite_path", defaults.VectorStore.SQLitePath)

	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.backend", defaults.Cache.Backend)
	v.SetDefault("cache.local_capacity", defaults.Cache.LocalCapacity)
	v.SetDefault("cache.redis_addr", defaults.Cache.RedisAddr)
	v.SetDefault("cache.redis_password", defaults.Cache.RedisPassword)
	v.SetDefault("cache.redis_db", defaults.Cache.RedisDB)
	v.SetDefault("cache.search_ttl", defaults.Cache.SearchTTL)

	v.SetDefault("metrics.cleanup_interval", defaults.Metrics.CleanupInterval)
	v.SetDefault("metrics.monitoring_interval", defaults.Metrics.MonitoringInterval)
	v.SetDefault("metrics.max_lock_age", defaults.Metrics.MaxLockAge)

	v.SetDefault("limits.max_file_size_bytes", defaults.Limits.MaxFileSizeBytes)
	v.SetDefault("limits.default_search_k", defaults.Limits.DefaultSearchK)
	v.SetDefault("limits.max_search_k", defaults.Limits.MaxSearchK)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
}

// Load is a convenience wrapper around NewLoader(rootDir).Load().
func Load(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
