package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditprint/internal/printer"
)

// NewModesCmd creates the modes command.
func NewModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the supported output modes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range printer.ValidModeNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
