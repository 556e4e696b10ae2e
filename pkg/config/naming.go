package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/tkrejci/dfscore/internal/namingapi"
)

// NamingConfig is the naming node's complete configuration.
type NamingConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`

	// Service is the address clients dial for filesystem operations.
	Service ListenConfig `mapstructure:"service"`

	// Registration is the address storage nodes dial at startup.
	Registration ListenConfig `mapstructure:"registration"`

	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ListenConfig names the address one rmi.Listener binds.
type ListenConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

// LoadNaming loads the naming node's configuration from configPath (or the
// default search location if empty), environment variables prefixed
// DFS_NAMING_, and built-in defaults.
func LoadNaming(configPath string) (*NamingConfig, error) {
	v := viper.New()
	setupViper(v, "DFS_NAMING", "dfscore-naming", configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg NamingConfig
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal naming config: %w", err)
	}

	ApplyNamingDefaults(&cfg)

	if err := ValidateNaming(&cfg); err != nil {
		return nil, fmt.Errorf("naming configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// ApplyNamingDefaults fills in zero-valued fields with the well-known
// defaults from internal/namingapi.
func ApplyNamingDefaults(cfg *NamingConfig) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)

	if cfg.Service.Address == "" {
		cfg.Service.Address = namingapi.DefaultServiceAddress
	}
	if cfg.Registration.Address == "" {
		cfg.Registration.Address = namingapi.DefaultRegistrationAddress
	}
}
