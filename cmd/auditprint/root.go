package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditprint/internal/config"
)

// NewRootCmd creates the root command for auditprint.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auditprint",
		Short: "Render audit results as JSON or HTML reports",
		Long: `auditprint renders structured audit results as pretty-printed JSON or
standalone HTML reports and delivers them to stdout or a file.

When no output path is given the artifact is written to stdout and a
warning is logged to stderr.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Log only warnings and errors")
	cmd.PersistentFlags().String("log-format", config.LogFormatText, "Log format: text or json")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .auditprint in current or home directory)")

	cmd.AddCommand(NewPrintCmd())
	cmd.AddCommand(NewModesCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
