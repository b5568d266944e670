package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".auditprint"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .auditprint configuration file.
// Unset fields leave the corresponding Config value untouched.
type File struct {
	// Mode is the default output mode.
	Mode string `yaml:"mode,omitempty"`

	// OutputPath is the default destination file.
	OutputPath string `yaml:"outputPath,omitempty"`

	// StdoutDelay is a Go duration string such as "50ms".
	StdoutDelay string `yaml:"stdoutDelay,omitempty"`

	// Concurrency is the number of parallel deliveries.
	Concurrency int `yaml:"concurrency,omitempty"`

	// History enables the delivery history database.
	History *bool `yaml:"history,omitempty"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"logFormat,omitempty"`

	// DBDir overrides the history database directory.
	DBDir string `yaml:"dbDir,omitempty"`
}

// LoadConfigFile loads the configuration file at path.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// ApplyFile copies every set field of cf into c.
func (c *Config) ApplyFile(cf *File) error {
	if cf == nil {
		return nil
	}

	if cf.Mode != "" {
		c.Mode = cf.Mode
	}
	if cf.OutputPath != "" {
		c.OutputPath = cf.OutputPath
	}
	if cf.StdoutDelay != "" {
		d, err := time.ParseDuration(cf.StdoutDelay)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidStdoutDelay, err)
		}
		c.StdoutDelay = d
	}
	if cf.Concurrency != 0 {
		c.Concurrency = cf.Concurrency
	}
	if cf.History != nil {
		c.SaveHistory = *cf.History
	}
	if cf.LogFormat != "" {
		c.LogFormat = cf.LogFormat
	}
	if cf.DBDir != "" {
		c.DBDir = cf.DBDir
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .auditprint in the current directory
// 3. Look for .auditprint in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
