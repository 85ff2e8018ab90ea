// Package config loads the external {cache_root, mount_point, ttl}
// configuration named in spec §6 "Inputs". It is an external collaborator
// to the FUSE core, included here as the ambient loader every complete
// daemon needs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the externally-sourced configuration the core is constructed
// with.
type Config struct {
	CacheRoot  string        `yaml:"cache_root"`
	MountPoint string        `yaml:"mount_point"`
	TTL        time.Duration `yaml:"-"`
	TTLSeconds uint64        `yaml:"ttl"`

	filePath string
}

func defaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		CacheRoot:  filepath.Join(home, ".local", "share", "remarkable", "xochitl"),
		MountPoint: filepath.Join(home, "remarkable"),
		TTLSeconds: 1,
		TTL:        time.Second,
	}
}

// Load resolves and parses the YAML configuration, falling back to
// defaults when no file is present — mirroring the resolution order used
// by thieso2-cio/internal/config: explicit path, then environment
// variable, then the XDG config directory.
func Load(explicitPath string) (*Config, error) {
	path, err := resolvePath(explicitPath)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	cfg.filePath = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.TTL = time.Duration(cfg.TTLSeconds) * time.Second

	return cfg, nil
}

func resolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv("RMKFS_CONFIG"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rmkfs", "config.yaml"), nil
}

// FilePath returns the path the configuration was loaded from (or would
// be saved to).
func (c *Config) FilePath() string { return c.filePath }
