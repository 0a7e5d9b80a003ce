package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"alice-hq/hassil-parser/pkg/cli"
	"alice-hq/hassil-parser/pkg/syncer"

	"github.com/spf13/cobra"
)

var syncFlags struct {
	dryRun bool
	format string
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync and print the report",
	Long: `Fetch the intent documents, expand every domain, upsert the patterns and
publish templates_updated, then print the sync report.

With --dry-run the patterns are expanded into an in-memory store and
nothing is published; use it to check a source before pointing the
service at it.

Examples:
  # Sync using the configured source and store
  hassil-parser sync

  # Expand from a local directory without touching the store
  HASSIL_SOURCE_MODE=dir HASSIL_SOURCE_INBOX_PATH=./sentences/de hassil-parser sync --dry-run

  # JSON report for scripts
  hassil-parser sync --format json`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncFlags.dryRun, "dry-run", false, "expand without writing or publishing")
	syncCmd.Flags().StringVar(&syncFlags.format, "format", "text", "output format: text, json, csv")
}

func runSync(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(syncFlags.format)
	if err != nil {
		return cli.NewConfigError("--format", err.Error())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg, true)
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, logger, syncFlags.dryRun)
	if err != nil {
		return cli.NewRuntimeError("sync", err)
	}
	defer p.Close()

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	report, err := p.syncer.Run(ctx)
	if err != nil {
		return cli.NewRuntimeError("sync", err)
	}
	return writeReport(cmd.OutOrStdout(), format, report)
}

// reportTable renders a report as key/value rows.
type reportTable struct {
	*syncer.Report
}

func (r reportTable) Header() []string { return []string{"field", "value"} }

func (r reportTable) Rows() [][]string {
	rows := [][]string{
		{"run_id", r.RunID},
		{"source", r.Source},
		{"language", r.Language},
		{"domains", strconv.Itoa(r.Domains)},
		{"intents", strconv.Itoa(r.Intents)},
		{"templates", strconv.Itoa(r.Templates)},
		{"fallbacks", strconv.Itoa(r.Fallbacks)},
		{"dropped", strconv.Itoa(r.Dropped)},
		{"inserted", strconv.Itoa(r.Inserted)},
		{"updated", strconv.Itoa(r.Updated)},
		{"skipped", strconv.Itoa(r.Skipped)},
		{"published", strconv.FormatBool(r.Published)},
		{"dry_run", strconv.FormatBool(r.DryRun)},
		{"duration_ms", strconv.FormatInt(r.DurationMS, 10)},
	}
	for _, d := range r.FailedDomains {
		rows = append(rows, []string{"failed_domain", d})
	}
	return rows
}

func writeReport(w io.Writer, format cli.OutputFormat, report *syncer.Report) error {
	if report == nil {
		return errors.New("no report")
	}
	var data any = reportTable{report}
	if format == cli.FormatJSON {
		data = report
	}
	if err := cli.NewFormatter(format).FormatTo(w, data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
