package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/auditprint/internal/printer"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "auditprint"

	// DefaultMode is the output mode used when none is configured.
	DefaultMode = "html"

	// DefaultStdoutDelay is the pause after an artifact is written to stdout.
	// Consumers piping the output get a chance to drain it before the
	// process continues or exits.
	DefaultStdoutDelay = printer.DefaultStdoutDelay

	// DefaultConcurrency is the number of results delivered at the same time
	// when several inputs are printed in one run.
	DefaultConcurrency = 4

	// DefaultHistoryLimit is the number of records listed by the history command.
	DefaultHistoryLimit = 20
)

// Log formats accepted by Config.LogFormat.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration options for auditprint.
// It is populated from defaults, then the config file, then CLI flags, and
// passed down explicitly rather than kept in global state.
type Config struct {
	// Mode is the output mode name (json, html or domhtml).
	Mode string

	// OutputPath is the destination file for a single result.
	// Empty means stdout.
	OutputPath string

	// OutputDir is an existing directory that receives one artifact per input.
	// Mutually exclusive with OutputPath.
	OutputDir string

	// StdoutDelay is the pause after each stdout write.
	StdoutDelay time.Duration

	// Concurrency bounds parallel deliveries for multi-input runs.
	Concurrency int

	// SaveHistory records every successful delivery in the history database.
	SaveHistory bool

	// LogFormat selects the log handler: "text" or "json".
	LogFormat string

	// Verbose enables debug logging.
	Verbose bool

	// Quiet limits logging to warnings and errors. Verbose takes precedence.
	Quiet bool

	// ConfigFilePath is an explicit path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/auditprint on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Mode:        DefaultMode,
		StdoutDelay: DefaultStdoutDelay,
		Concurrency: DefaultConcurrency,
		LogFormat:   LogFormatText,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for auditprint.
// On Linux: ~/.local/share/auditprint
// On macOS: ~/Library/Application Support/auditprint
// On Windows: %LOCALAPPDATA%\auditprint
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for auditprint.
// On Linux: ~/.config/auditprint
// On macOS: ~/Library/Application Support/auditprint
// On Windows: %APPDATA%\auditprint
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if _, err := printer.ModeFromName(c.Mode); err != nil {
		return err
	}

	if c.StdoutDelay < 0 {
		return ErrInvalidStdoutDelay
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if !slices.Contains([]string{LogFormatText, LogFormatJSON}, c.LogFormat) {
		return ErrInvalidLogFormat
	}

	if c.OutputPath != "" && c.OutputDir != "" {
		return ErrConflictingOutputs
	}

	return nil
}
