// Package config handles rvasm's persistent, user-editable settings: the
// assembler-level defaults that a config.toml on disk can override, as
// distinct from the ISA-description documents the loader package ingests.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds rvasm's persistent settings.
type Config struct {
	// Assembler-wide defaults.
	Assembler struct {
		DefaultArch   string `toml:"default_arch"`
		CfgSearchPath string `toml:"cfg_search_path"`
		OutputFormat  string `toml:"output_format"` // only "flat" is currently supported
	} `toml:"assembler"`

	// Diagnostics settings.
	Diagnostics struct {
		Verbose       bool `toml:"verbose"`
		ShowSourceRef bool `toml:"show_source_ref"`
	} `toml:"diagnostics"`
}

// DefaultConfig returns a Config populated with rvasm's built-in defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assembler.DefaultArch = "rv32i"
	cfg.Assembler.CfgSearchPath = "./cfg"
	cfg.Assembler.OutputFormat = "flat"

	cfg.Diagnostics.Verbose = false
	cfg.Diagnostics.ShowSourceRef = true

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "rvasm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "rvasm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file, falling back to
// DefaultConfig if no file exists yet.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to DefaultConfig
// if path doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
