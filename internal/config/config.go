// Package config loads codelens's layered configuration: embedded
// defaults, an optional .codelens/config.yml, and CODELENS_* environment
// variables, in that priority order (env wins), mirroring the teacher's
// own viper loader.
package config

import "time"

// Config is the complete codelens configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Embedding   EmbeddingConfig   `yaml:"embedding" mapstructure:"embedding"`
	VectorStore VectorStoreConfig `yaml:"vector_store" mapstructure:"vector_store"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
	Limits      LimitsConfig      `yaml:"limits" mapstructure:"limits"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig controls the MCP/admin transport.
type ServerConfig struct {
	AdminAddr        string `yaml:"admin_addr" mapstructure:"admin_addr"`
	CollectionPrefix string `yaml:"collection_prefix" mapstructure:"collection_prefix"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider       string        `yaml:"provider" mapstructure:"provider"` // "mock" or "sidecar"
	Dimensions     int           `yaml:"dimensions" mapstructure:"dimensions"`
	SidecarAddr    string        `yaml:"sidecar_addr" mapstructure:"sidecar_addr"`
	SidecarBinary  string        `yaml:"sidecar_binary" mapstructure:"sidecar_binary"`
	StartupTimeout time.Duration `yaml:"startup_timeout" mapstructure:"startup_timeout"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // "memory", "sqlite-vec", "chromem-go"
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// CacheConfig selects and configures the cache tier.
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend       string        `yaml:"backend" mapstructure:"backend"` // "local" or "distributed"
	LocalCapacity int           `yaml:"local_capacity" mapstructure:"local_capacity"`
	RedisAddr     string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db"`
	SearchTTL     time.Duration `yaml:"search_ttl" mapstructure:"search_ttl"`
}

// MetricsConfig controls the daemon's periodic monitoring cadence.
type MetricsConfig struct {
	CleanupInterval    time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
	MonitoringInterval time.Duration `yaml:"monitoring_interval" mapstructure:"monitoring_interval"`
	MaxLockAge         time.Duration `yaml:"max_lock_age" mapstructure:"max_lock_age"`
}

// LimitsConfig bounds per-call and per-run resource usage.
type LimitsConfig struct {
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes" mapstructure:"max_file_size_bytes"`
	DefaultSearchK   int   `yaml:"default_search_k" mapstructure:"default_search_k"`
	MaxSearchK       int   `yaml:"max_search_k" mapstructure:"max_search_k"`
}

// LoggingConfig controls log verbosity and format.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" mapstructure:"format"` // "text" or "json"
}

// Default returns the configuration used when no file or env var overrides
// a field.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			AdminAddr:        "127.0.0.1:8090",
			CollectionPrefix: "codelens",
		},
		Embedding: EmbeddingConfig{
			Provider:       "mock",
			Dimensions:     384,
			SidecarAddr:    "127.0.0.1:8089",
			SidecarBinary:  "codelens-embed",
			StartupTimeout: 30 * time.Second,
		},
		VectorStore: VectorStoreConfig{
			Provider:   "memory",
			SQLitePath: ".codelens/vectors.db",
		},
		Cache: CacheConfig{
			Enabled:       false,
			Backend:       "local",
			LocalCapacity: 10_000,
			RedisAddr:     "127.0.0.1:6379",
			RedisDB:       0,
			SearchTTL:     30 * time.Second,
		},
		Metrics: MetricsConfig{
			CleanupInterval:    30 * time.Second,
			MonitoringInterval: 30 * time.Second,
			MaxLockAge:         300 * time.Second,
		},
		Limits: LimitsConfig{
			MaxFileSizeBytes: 1 << 20, // 1 MiB
			DefaultSearchK:   10,
			MaxSearchK:       100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
