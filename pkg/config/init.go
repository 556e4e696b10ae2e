package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GetNamingConfigPath returns the default location a naming node's config
// file is read from and written to.
func GetNamingConfigPath() string {
	return filepath.Join(configDir("dfscore-naming"), "config.yaml")
}

// GetStorageConfigPath returns the default location a storage node's config
// file is read from and written to.
func GetStorageConfigPath() string {
	return filepath.Join(configDir("dfscore-storage"), "config.yaml")
}

// InitNamingConfig writes a default NamingConfig as YAML to its default
// location, creating parent directories as needed. It refuses to overwrite
// an existing file unless force is set.
func InitNamingConfig(force bool) (string, error) {
	path := GetNamingConfigPath()
	if err := writeDefaultConfig(path, GetDefaultNamingConfig(), force); err != nil {
		return "", err
	}
	return path, nil
}

// InitStorageConfig writes a default StorageConfig as YAML to its default
// location, creating parent directories as needed. It refuses to overwrite
// an existing file unless force is set.
func InitStorageConfig(force bool) (string, error) {
	path := GetStorageConfigPath()
	if err := writeDefaultConfig(path, GetDefaultStorageConfig(), force); err != nil {
		return "", err
	}
	return path, nil
}

func writeDefaultConfig(path string, cfg any, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use force to overwrite)", path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
