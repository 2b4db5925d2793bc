// Package config handles global configuration defaults for citemap.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Global represents defaults stored in ~/.config/citemap/config.yml.
// Every field is optional; flag and environment values take precedence
// over it.
type Global struct {
	OutDir    string `yaml:"out_dir,omitempty"`
	OutCSV    string `yaml:"out_csv,omitempty"`
	Delimiter string `yaml:"delimiter,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
	ChunkSize int    `yaml:"chunk_size,omitempty"`
	TxtDir    string `yaml:"txt_dir,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "citemap"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Path returns the path to the global config file. Respects
// XDG_CONFIG_HOME, defaults to ~/.config/citemap/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// Load loads the global configuration file. Returns an empty config
// (not an error) if the file doesn't exist.
func Load() (*Global, error) {
	path := Path()
	if path == "" {
		return &Global{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Global{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg Global
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	return &cfg, nil
}
