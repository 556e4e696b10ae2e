package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestInitNamingConfig_Success(t *testing.T) {
	tmpDir := t.TempDir()
	oldHome := os.Getenv("HOME")
	_ = os.Setenv("HOME", tmpDir)
	defer func() { _ = os.Setenv("HOME", oldHome) }()

	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Unsetenv("XDG_CONFIG_HOME")
	defer func() {
		if oldXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", oldXDG)
		}
	}()

	path, err := InitNamingConfig(false)
	if err != nil {
		t.Fatalf("InitNamingConfig failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read generated config: %v", err)
	}

	var cfg NamingConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		t.Fatalf("generated config is not valid YAML: %v", err)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected generated config to default to INFO level, got %q", cfg.Logging.Level)
	}
}

func TestInitNamingConfig_AlreadyExists(t *testing.T) {
	tmpDir := t.TempDir()
	oldHome := os.Getenv("HOME")
	_ = os.Setenv("HOME", tmpDir)
	defer func() { _ = os.Setenv("HOME", oldHome) }()

	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Unsetenv("XDG_CONFIG_HOME")
	defer func() {
		if oldXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", oldXDG)
		}
	}()

	if _, err := InitNamingConfig(false); err != nil {
		t.Fatalf("first InitNamingConfig failed: %v", err)
	}

	_, err := InitNamingConfig(false)
	if err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestInitNamingConfig_ForceOverwrite(t *testing.T) {
	tmpDir := t.TempDir()
	oldHome := os.Getenv("HOME")
	_ = os.Setenv("HOME", tmpDir)
	defer func() { _ = os.Setenv("HOME", oldHome) }()

	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Unsetenv("XDG_CONFIG_HOME")
	defer func() {
		if oldXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", oldXDG)
		}
	}()

	path, err := InitNamingConfig(false)
	if err != nil {
		t.Fatalf("first InitNamingConfig failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("logging:\n  level: mangled\n"), 0644); err != nil {
		t.Fatalf("failed to mangle config: %v", err)
	}

	newPath, err := InitNamingConfig(true)
	if err != nil {
		t.Fatalf("forced InitNamingConfig failed: %v", err)
	}
	if newPath != path {
		t.Errorf("expected same path, got %s vs %s", path, newPath)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	var cfg NamingConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		t.Fatalf("overwritten config is not valid YAML: %v", err)
	}
	if cfg.Logging.Level != "INFO" {
		t.Error("expected force overwrite to replace the mangled config")
	}
}

func TestInitStorageConfig_GeneratesLoadableConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom", "storage.yaml")

	if err := writeDefaultConfig(configPath, GetDefaultStorageConfig(), false); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read generated config: %v", err)
	}

	var cfg StorageConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		t.Fatalf("generated config is not valid YAML: %v", err)
	}
	if cfg.Naming.RegistrationAddress == "" {
		t.Error("expected generated storage config to include a default registration address")
	}
}

func TestWriteDefaultConfig_AlreadyExistsWithoutForce(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("existing"), 0644); err != nil {
		t.Fatalf("failed to create existing file: %v", err)
	}

	err := writeDefaultConfig(configPath, GetDefaultNamingConfig(), false)
	if err == nil {
		t.Fatal("expected error when file already exists")
	}
}
