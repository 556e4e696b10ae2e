package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/tkrejci/dfscore/internal/namingapi"
)

// StorageConfig is a storage node's complete configuration.
type StorageConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`

	// Root is the local filesystem directory this node serves data out of.
	Root string `mapstructure:"root" validate:"required"`

	// Data is the address clients and the naming node's storage references
	// dial for file content operations.
	Data ListenConfig `mapstructure:"data"`

	// Command is the address the naming node dials to create and delete
	// files on this node.
	Command ListenConfig `mapstructure:"command"`

	// Naming configures this node's registration with the naming node.
	Naming NamingClientConfig `mapstructure:"naming"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// NamingClientConfig addresses the naming node this storage node registers
// with at startup.
type NamingClientConfig struct {
	RegistrationAddress string `mapstructure:"registration_address" validate:"required"`
}

// RateLimitConfig bounds the rate at which the data listener accepts new
// connections; the command listener is not rate limited. A zero
// RequestsPerSecond means unlimited.
type RateLimitConfig struct {
	RequestsPerSecond uint `mapstructure:"requests_per_second"`
	Burst             uint `mapstructure:"burst"`
}

// LoadStorage loads a storage node's configuration from configPath (or the
// default search location if empty), environment variables prefixed
// DFS_STORAGE_, and built-in defaults.
func LoadStorage(configPath string) (*StorageConfig, error) {
	v := viper.New()
	setupViper(v, "DFS_STORAGE", "dfscore-storage", configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg StorageConfig
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal storage config: %w", err)
	}

	ApplyStorageDefaults(&cfg)

	if err := ValidateStorage(&cfg); err != nil {
		return nil, fmt.Errorf("storage configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// ApplyStorageDefaults fills in zero-valued fields with sensible defaults.
// Root, Data.Address, and Command.Address have no defaults; they describe
// this specific deployment and must be configured explicitly.
func ApplyStorageDefaults(cfg *StorageConfig) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)

	if cfg.Naming.RegistrationAddress == "" {
		cfg.Naming.RegistrationAddress = namingapi.DefaultRegistrationAddress
	}
	if cfg.RateLimit.RequestsPerSecond > 0 && cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = cfg.RateLimit.RequestsPerSecond
	}
}
