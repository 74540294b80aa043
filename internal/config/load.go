package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the tool cannot act on.
func (c *Config) Validate() error {
	switch c.Scene.Composition {
	case CompositionMatrix, CompositionTRS:
	default:
		return fmt.Errorf("unknown composition %q (want %q or %q)", c.Scene.Composition, CompositionMatrix, CompositionTRS)
	}
	if c.Animation.FPS <= 0 {
		return fmt.Errorf("animation fps must be positive, got %v", c.Animation.FPS)
	}
	if c.Animation.Frames < 0 {
		return fmt.Errorf("animation frames must not be negative, got %d", c.Animation.Frames)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./scenetool.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "scenetool")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "scenetool")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "scenetool")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "scenetool")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
