package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"alice-hq/hassil-parser/pkg/cli"
	"alice-hq/hassil-parser/pkg/config"
	"alice-hq/hassil-parser/pkg/intents"
	"alice-hq/hassil-parser/pkg/orchestrator"

	"github.com/spf13/cobra"
)

// Engine selections for expand --engine.
const (
	engineAuto     = "auto"     // External engine with per-intent fallback
	engineCustom   = "custom"   // Built-in expander only
	engineExternal = "external" // External engine only, no fallback
)

var expandFlags struct {
	file        string
	domain      string
	common      string
	engine      string
	maxPatterns int
	format      string
}

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Expand the intents of one document",
	Long: `Expand every intent of a single intent document and print the resulting
rows. Nothing is stored or published.

The domain defaults to the file name without extension. Rules and lists of
a _common document can be supplied with --common.

Engines:
  auto      external engine, falling back to the built-in expander per intent
  custom    built-in expander only
  external  external engine only; intents it rejects are reported and dropped

Examples:
  # Expand a domain with the shared rules
  hassil-parser expand --file sentences/de/light.yaml --common sentences/de/_common.yaml

  # Compare engines
  hassil-parser expand --file light.yaml --engine custom --format json

  # Cap patterns per intent
  hassil-parser expand --file light.yaml --max-patterns 5`,
	RunE: expandDocument,
}

func init() {
	rootCmd.AddCommand(expandCmd)

	expandCmd.Flags().StringVarP(&expandFlags.file, "file", "f", "", "intent document to expand")
	expandCmd.Flags().StringVarP(&expandFlags.domain, "domain", "d", "", "domain name (default: file name)")
	expandCmd.Flags().StringVar(&expandFlags.common, "common", "", "_common document with shared rules and lists")
	expandCmd.Flags().StringVar(&expandFlags.engine, "engine", engineAuto, "expansion engine: auto, custom, external")
	expandCmd.Flags().IntVar(&expandFlags.maxPatterns, "max-patterns", 0, "maximum patterns per intent (default: expansion.max_patterns)")
	expandCmd.Flags().StringVar(&expandFlags.format, "format", "text", "output format: text, json, csv")
}

func expandDocument(cmd *cobra.Command, args []string) error {
	if expandFlags.file == "" {
		return cli.NewConfigError("--file", "an intent document must be specified")
	}
	format, err := cli.ParseFormat(expandFlags.format)
	if err != nil {
		return cli.NewConfigError("--format", err.Error())
	}
	switch expandFlags.engine {
	case engineAuto, engineCustom, engineExternal:
	default:
		return cli.NewConfigError("--engine", fmt.Sprintf("unknown engine %q (want auto, custom or external)", expandFlags.engine))
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if expandFlags.maxPatterns > 0 {
		cfg.Expansion.MaxPatterns = expandFlags.maxPatterns
	}
	logger, err := setupLogger(cfg, true)
	if err != nil {
		return err
	}

	doc, err := readDocument(expandFlags.file)
	if err != nil {
		return cli.NewValidationError(1, 1)
	}
	domain := expandFlags.domain
	if domain == "" {
		domain = documentDomain(expandFlags.file)
	}

	batch := intents.NewBatch(cfg.Expansion.Language)
	batch.Add(domain, doc)
	if expandFlags.common != "" {
		common, err := readDocument(expandFlags.common)
		if err != nil {
			return cli.NewValidationError(1, 1)
		}
		batch.Add(intents.CommonDocument, common)
	}

	rows, err := expandBatch(cmd.Context(), cfg, batch, domain, expandFlags.engine, logger)
	if err != nil {
		return cli.NewRuntimeError("expand", err)
	}

	var data any = patternTable(rows)
	if format == cli.FormatJSON {
		data = rows
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}

// expandBatch expands the domain document of batch with the selected
// engine. Rows are returned in document intent order.
func expandBatch(ctx context.Context, cfg *config.Config, batch *intents.Batch, domain, engine string, logger *slog.Logger) ([]intents.Row, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	doc := batch.Documents[domain]
	shared := batch.MergeCommon()

	opts := orchestratorOptions(&cfg.Expansion, logger, nil)
	switch engine {
	case engineCustom:
		opts.External = false
	case engineExternal:
		opts.ExternalOnly = true
	}

	extractor := intents.NewExtractor(orchestrator.New(opts),
		intents.WithLanguage(batch.Language),
		intents.WithLogger(logger),
	)
	rows, stats, err := extractor.Extract(ctx, domain, doc, shared)
	if err != nil {
		return nil, err
	}
	logger.Info("document expanded",
		"domain", domain,
		"intents", stats.Intents,
		"templates", stats.Templates,
		"fallbacks", stats.Fallbacks,
		"dropped", stats.Dropped)
	return rows, nil
}

// patternTable prints one line per pattern.
type patternTable []intents.Row

func (t patternTable) Header() []string {
	return []string{"domain", "intent", "service", "pattern"}
}

func (t patternTable) Rows() [][]string {
	var out [][]string
	for _, row := range t {
		for _, p := range row.Patterns {
			out = append(out, []string{row.Domain, row.Intent, row.Service, p})
		}
	}
	return out
}

// readDocument parses an intent document. Errors are printed to stderr.
func readDocument(path string) (*intents.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Error: %v\n", err)
		return nil, err
	}
	doc, err := intents.Parse(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Error: %s: %v\n", path, err)
		return nil, err
	}
	return doc, nil
}

func documentDomain(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
