package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditprint/internal/config"
	"github.com/nao1215/auditprint/internal/database"
	"github.com/nao1215/auditprint/internal/log"
	"github.com/nao1215/auditprint/internal/printer"
	"github.com/nao1215/auditprint/internal/report"
)

// NewHistoryCmd creates the history command.
// This command lists recorded deliveries and prints stored results again.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded deliveries or print a stored result again",
		Long: `History shows the deliveries recorded with 'auditprint print --save'.

Each record keeps the result itself, so it can be rendered again in any
output mode.

Examples:
  # List the latest deliveries
  auditprint history

  # List every batch run
  auditprint history --runs

  # Render record 12 again as JSON to stdout
  auditprint history --reprint 12 -m json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Number of records to list (0 lists all)")
	cmd.Flags().Bool("runs", false,
		"List batch runs instead of single deliveries")
	cmd.Flags().Int64P("reprint", "r", 0,
		"Render the stored result with this record id")
	cmd.Flags().StringP("output-mode", "m", "",
		"Output mode for --reprint (default: the recorded mode)")
	cmd.Flags().StringP("output-path", "o", "",
		"Output file for --reprint (default: stdout)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	listRuns, err := cmd.Flags().GetBool("runs")
	if err != nil {
		return err
	}
	reprintID, err := cmd.Flags().GetInt64("reprint")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// Reading history never creates the database.
	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		if reprintID != 0 {
			return fmt.Errorf("%w: %d", database.ErrRecordNotFound, reprintID)
		}
		fmt.Fprintln(out, "No delivery history found.")
		fmt.Fprintln(out, "\nUse 'auditprint print --save' to record deliveries.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	switch {
	case reprintID != 0:
		mode, err := cmd.Flags().GetString("output-mode")
		if err != nil {
			return err
		}
		path, err := cmd.Flags().GetString("output-path")
		if err != nil {
			return err
		}
		logger := setupLogger(cmd.ErrOrStderr(), cfg)
		p := printer.New(
			report.NewHTMLGenerator(report.WithVersion(getVersion())),
			printer.WithLogger(log.NewTaggedLogger(logger)),
			printer.WithStdout(out),
			printer.WithStdoutDelay(cfg.StdoutDelay),
		)
		return reprint(ctx, db, p, reprintID, mode, path)
	case listRuns:
		return listHistoryRuns(ctx, db, out)
	default:
		return listHistory(ctx, db, out, limit)
	}
}

// reprint renders a stored result again. An empty mode reuses the recorded one.
func reprint(ctx context.Context, db *database.HistoryDB, p *printer.Printer, id int64, mode, path string) error {
	record, err := db.GetResultByID(ctx, id)
	if err != nil {
		return err
	}
	if mode == "" {
		mode = record.Mode
	}
	_, err = p.Print(record.Result, mode, path)
	return err
}

// listHistory prints the latest deliveries.
func listHistory(ctx context.Context, db *database.HistoryDB, out io.Writer, limit int) error {
	records, err := db.ListHistory(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to get delivery history: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No delivery history found.")
		return nil
	}

	fmt.Fprintf(out, "Delivery history (%d records):\n\n", len(records))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %-12s  %-24s  %s\n", "ID", "Date", "Mode", "Digest", "Source", "Destination")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 96))

	for _, r := range records {
		fmt.Fprintf(out, "  %-6d  %-20s  %-8s  %-12s  %-24s  %s\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Mode,
			shortDigest(r.Digest),
			r.Source,
			r.Destination,
		)
	}

	fmt.Fprintln(out, "\nUse 'auditprint history --reprint <id>' to render a stored result again.")
	return nil
}

// listHistoryRuns prints one line per batch run.
func listHistoryRuns(ctx context.Context, db *database.HistoryDB, out io.Writer) error {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No delivery history found.")
		return nil
	}

	fmt.Fprintf(out, "Runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-20s  %s\n", "Run", "Started", "Deliveries")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
	for _, run := range runs {
		fmt.Fprintf(out, "  %-36s  %-20s  %d\n",
			run.RunID,
			run.Started.Format("2006-01-02 15:04:05"),
			run.Deliveries,
		)
	}
	return nil
}

// shortDigest abbreviates a hex digest for display.
func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
