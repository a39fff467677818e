package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidEmbeddingProvider = errors.New("invalid embedding provider")
	ErrInvalidDimensions        = errors.New("invalid embedding dimensions")
	ErrInvalidVectorStore       = errors.New("invalid vector store provider")
	ErrInvalidCacheBackend      = errors.New("invalid cache backend")
	ErrInvalidLimits            = errors.New("invalid limits configuration")
	ErrInvalidLogLevel          = errors.New("invalid log level")
)

// Validate checks that cfg is internally consistent, returning every
// violation joined together rather than stopping at the first.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateEmbedding(&cfg.Embedding); err != nil {
		errs = append(errs, err)
	}
	if err := validateVectorStore(&cfg.VectorStore); err != nil {
		errs = append(errs, err)
	}
	if err := validateCache(&cfg.Cache); err != nil {
		errs = append(errs, err)
	}
	if err := validateLimits(&cfg.Limits); err != nil {
		errs = append(errs, err)
	}
	if err := validateLogging(&cfg.Logging); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateEmbedding(cfg *EmbeddingConfig) error {
	provider := strings.ToLower(cfg.Provider)
	if provider != "mock" && provider != "sidecar" {
		return fmt.Errorf("%w: must be 'mock' or 'sidecar', got %q", ErrInvalidEmbeddingProvider, cfg.Provider)
	}
	if cfg.Dimensions <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", ErrInvalidDimensions, cfg.Dimensions)
	}
	return nil
}

func validateVectorStore(cfg *VectorStoreConfig) error {
	switch strings.ToLower(cfg.Provider) {
	case "memory", "sqlite-vec", "chromem-go":
		return nil
	default:
		return fmt.Errorf("%w: must be 'memory', 'sqlite-vec', or 'chromem-go', got %q", ErrInvalidVectorStore, cfg.Provider)
	}
}

func validateCache(cfg *CacheConfig) error {
	if !cfg.Enabled {
		return nil
	}
	switch strings.ToLower(cfg.Backend) {
	case "local", "distributed":
		return nil
	default:
		return fmt.Errorf("%w: must be 'local' or 'distributed', got %q", ErrInvalidCacheBackend, cfg.Backend)
	}
}

func validateLimits(cfg *LimitsConfig) error {
	if cfg.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("%w: max_file_size_bytes must be positive", ErrInvalidLimits)
	}
	if cfg.DefaultSearchK <= 0 || cfg.MaxSearchK <= 0 {
		return fmt.Errorf("%w: search_k bounds must be positive", ErrInvalidLimits)
	}
	if cfg.DefaultSearchK > cfg.MaxSearchK {
		return fmt.Errorf("%w: default_search_k (%d) exceeds max_search_k (%d)", ErrInvalidLimits, cfg.DefaultSearchK, cfg.MaxSearchK)
	}
	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: must be debug/info/warn/error, got %q", ErrInvalidLogLevel, cfg.Level)
	}
	return nil
}
