package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/auditprint/internal/config"
	"github.com/nao1215/auditprint/internal/log"
)

// loadConfig builds a Config from defaults, the configuration file and the
// global flags, in that order of precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = stringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}

	// An explicit config path must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.ApplyFile(cf); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if f := lookupFlag(cmd, "verbose"); f != nil {
		cfg.Verbose = f.Value.String() == "true"
	}
	if f := lookupFlag(cmd, "quiet"); f != nil {
		cfg.Quiet = f.Value.String() == "true"
	}
	if f := lookupFlag(cmd, "log-format"); f != nil && f.Changed {
		cfg.LogFormat = f.Value.String()
	}

	return cfg, nil
}

// lookupFlag finds a local or inherited flag by name.
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}
	return cmd.InheritedFlags().Lookup(name)
}

// stringFlag returns the value of a local or inherited string flag, or ""
// when the command has no such flag.
func stringFlag(cmd *cobra.Command, name string) (string, error) {
	f := lookupFlag(cmd, name)
	if f == nil {
		return "", nil
	}
	if f.Value.Type() != "string" {
		return "", fmt.Errorf("flag --%s is not a string flag", name)
	}
	return f.Value.String(), nil
}

// setupLogger creates a structured logger that redacts secrets.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := log.LevelFor(cfg.Verbose, cfg.Quiet)
	if cfg.LogFormat == config.LogFormatJSON {
		return log.NewSecureJSONLogger(w, level)
	}
	return log.NewSecureLogger(w, level)
}
