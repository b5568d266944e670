package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditprint/internal/config"
	"github.com/nao1215/auditprint/internal/database"
	"github.com/nao1215/auditprint/internal/log"
	"github.com/nao1215/auditprint/internal/model"
	"github.com/nao1215/auditprint/internal/pipeline"
	"github.com/nao1215/auditprint/internal/printer"
	"github.com/nao1215/auditprint/internal/report"
)

// NewPrintCmd creates the print command.
func NewPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print [result.json ...]",
		Short: "Render audit results and write them to stdout or files",
		Long: `Print renders each audit result in the selected output mode and delivers it.

Output modes:
  json     pretty-printed JSON (2-space indent)
  html     standalone HTML report
  domhtml  same as html

Without --output-path or --output-dir the artifact is written to stdout.
Reading from stdin: pass "-" or no arguments.

Examples:
  # Print an HTML report to stdout
  auditprint print result.json

  # Write pretty JSON to a file
  auditprint print -m json -o report.json result.json

  # Render many results into an existing directory
  auditprint print --output-dir reports/ a.json b.json c.json

  # Record deliveries in the history database
  auditprint print --save -o report.html result.json`,
		Args: cobra.ArbitraryArgs,
		RunE: runPrintCmd,
	}

	cmd.Flags().StringP("output-mode", "m", config.DefaultMode,
		"Output mode: "+strings.Join(printer.ValidModeNames(), ", "))
	cmd.Flags().StringP("output-path", "o", "",
		"Write the artifact to this file (single input only)")
	cmd.Flags().String("output-dir", "",
		"Write one artifact per input into this existing directory")
	cmd.Flags().Duration("stdout-delay", config.DefaultStdoutDelay,
		"Pause after each stdout write")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of results delivered at once")
	cmd.Flags().Bool("save", false,
		"Record deliveries in the history database")

	_ = cmd.RegisterFlagCompletionFunc("output-mode", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return printer.ValidModeNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runPrintCmd executes the print command.
func runPrintCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildPrintConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runPrint(ctx, cfg, args, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
}

// buildPrintConfig creates a Config from the config file and print flags.
// Flags only override the file when they were set explicitly.
func buildPrintConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output-mode") {
		if cfg.Mode, err = flags.GetString("output-mode"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output-path") {
		if cfg.OutputPath, err = flags.GetString("output-path"); err != nil {
			return nil, err
		}
	}
	if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
		return nil, err
	}
	if flags.Changed("stdout-delay") {
		if cfg.StdoutDelay, err = flags.GetDuration("stdout-delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("save") {
		if cfg.SaveHistory, err = flags.GetBool("save"); err != nil {
			return nil, err
		}
	}

	// A file-configured output path does not apply to directory output.
	if cfg.OutputDir != "" && !flags.Changed("output-path") {
		cfg.OutputPath = ""
	}

	return cfg, nil
}

// runPrint delivers every source and reports the failures.
func runPrint(ctx context.Context, cfg *config.Config, sources []string, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	if len(sources) == 0 {
		sources = []string{pipeline.StdinSource}
	}

	jobs, err := buildJobs(cfg, sources, stdin)
	if err != nil {
		return err
	}

	p := printer.New(
		report.NewHTMLGenerator(report.WithVersion(getVersion())),
		printer.WithLogger(log.NewTaggedLogger(logger)),
		printer.WithStdout(stdout),
		printer.WithStdoutDelay(cfg.StdoutDelay),
	)

	var recorder pipeline.Recorder
	if cfg.SaveHistory {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		recorder = db
		logger.Debug("database opened", "path", db.Path())
	}

	runID := database.NewRunID()
	pl := pipeline.DeliveryPipeline(p, recorder, runID, pipeline.WithLogger(logger))

	// Artifacts sharing stdout are written one at a time so they do not interleave.
	concurrency := cfg.Concurrency
	if cfg.OutputPath == "" && cfg.OutputDir == "" {
		concurrency = 1
	}

	bw := pipeline.NewBatchWriter(pl,
		pipeline.WithConcurrency(concurrency),
		pipeline.WithBatchLogger(logger),
	)
	if _, err := bw.WriteAll(ctx, jobs); err != nil {
		return err
	}

	if cfg.SaveHistory {
		logger.Info("deliveries recorded", "run_id", runID)
	}

	if err := pipeline.Errors(jobs); err != nil {
		if len(jobs) == 1 {
			return err
		}
		failed := 0
		for _, job := range jobs {
			if job.Err != nil {
				failed++
			}
		}
		return fmt.Errorf("failed to print %d of %d results: %w", failed, len(jobs), err)
	}
	return nil
}

// buildJobs turns sources into jobs with their output paths resolved.
// A stdin source is decoded here so that it is read only once.
func buildJobs(cfg *config.Config, sources []string, stdin io.Reader) ([]*pipeline.Job, error) {
	if len(sources) > 1 && cfg.OutputPath != "" {
		return nil, errors.New("--output-path accepts a single input; use --output-dir for several")
	}

	if cfg.OutputDir != "" {
		info, err := os.Stat(cfg.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("output directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("output directory: %s is not a directory", cfg.OutputDir)
		}
	}

	jobs := make([]*pipeline.Job, 0, len(sources))
	seenOutputs := make(map[string]string, len(sources))
	stdinUsed := false

	for _, source := range sources {
		job := &pipeline.Job{
			Source:     source,
			Mode:       cfg.Mode,
			OutputPath: cfg.OutputPath,
		}

		if source == pipeline.StdinSource {
			if stdinUsed {
				return nil, errors.New("stdin can only be read once")
			}
			stdinUsed = true

			result, err := model.DecodeResult(stdin)
			if err != nil {
				return nil, fmt.Errorf("stdin: %w", err)
			}
			job.Result = result
		}

		if cfg.OutputDir != "" {
			job.OutputPath = filepath.Join(cfg.OutputDir, outputFileName(source, cfg.Mode))
			if prev, ok := seenOutputs[job.OutputPath]; ok {
				return nil, fmt.Errorf("%s and %s would both be written to %s", prev, source, job.OutputPath)
			}
			seenOutputs[job.OutputPath] = source
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

// outputFileName returns "<base>.<ext>" for source in mode.
func outputFileName(source, mode string) string {
	base := "stdin"
	if source != pipeline.StdinSource {
		base = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	return base + "." + modeExtension(mode)
}

// modeExtension returns the file extension for artifacts of mode.
func modeExtension(mode string) string {
	if mode == printer.ModeJSON.String() {
		return "json"
	}
	return "html"
}
