// Package config loads the naming node's and storage node's configuration
// from a YAML/TOML file, environment variables, and built-in defaults,
// using the same viper + mapstructure + go-playground/validator pipeline
// for both.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// LoggingConfig controls logging behavior, shared by both nodes.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// MetricsConfig controls the optional Prometheus HTTP endpoint, shared by
// both nodes.
type MetricsConfig struct {
	// Enabled turns on the Prometheus registry and HTTP server.
	Enabled bool `mapstructure:"enabled"`

	// Port is the metrics HTTP server's listening port.
	Port int `mapstructure:"port" validate:"omitempty,gt=0,lte=65535"`

	// ShutdownTimeout bounds how long the metrics HTTP server waits for
	// in-flight scrapes to finish during a graceful shutdown. Accepts any
	// Go duration string ("5s", "500ms"); decoded via
	// mapstructure.StringToTimeDurationHookFunc.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"omitempty,gt=0"`
}

// decodeHook composes the mapstructure decode hooks viper needs beyond its
// defaults, currently just duration-string parsing for fields like
// MetricsConfig.ShutdownTimeout.
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
}

// setupViper configures v with environment variable support (prefix
// envPrefix, "." mapped to "_") and, if configPath is empty, a default
// search path under the OS config directory for appName.
func setupViper(v *viper.Viper, envPrefix, appName, configPath string) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(configDir(appName))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reads the configuration file if it exists. A missing file
// is not an error; the caller falls back to defaults.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// configDir returns the OS configuration directory for appName, honoring
// XDG_CONFIG_HOME and falling back to the current directory if the home
// directory cannot be determined.
func configDir(appName string) string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", appName)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
}
