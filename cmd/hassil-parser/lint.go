package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"alice-hq/hassil-parser/pkg/cli"
	"alice-hq/hassil-parser/pkg/grammar"
	"alice-hq/hassil-parser/pkg/intents"
	"alice-hq/hassil-parser/pkg/sampler"
	tmplErrors "alice-hq/hassil-parser/pkg/template/errors"
	"alice-hq/hassil-parser/pkg/template/parser"

	"github.com/spf13/cobra"
)

var lintFlags struct {
	file   string
	dir    string
	common string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate intent documents",
	Long: `Validate intent documents for template and rule errors.

The lint command parses every sentence and expansion rule strictly:
  - YAML syntax and document structure
  - Unbalanced (), [] and <> delimiters
  - Rule cycles such as <a> -> <b> -> <a>
  - Rules and lists with no usable values (warning)
  - References to unknown rules (warning; error with --strict)
  - Intents without sentences (warning)

References to rules of the _common document resolve when it is passed with
--common or found in the linted directory.

Examples:
  # Lint single file
  hassil-parser lint --file light.yaml --common _common.yaml

  # Lint a language directory
  hassil-parser lint --dir sentences/de

  # Strict mode (warnings as errors)
  hassil-parser lint --dir sentences/de --strict

  # JSON output for CI/CD
  hassil-parser lint --dir sentences/de --format json`,
	RunE: lintDocuments,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "intent document to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of intent documents")
	lintCmd.Flags().StringVar(&lintFlags.common, "common", "", "_common document with shared rules and lists")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

func lintDocuments(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return cli.NewConfigError("--file", "either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	commonPath := lintFlags.common
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list intent documents: %w", err)
			}
			files = append(files, matches...)
		}
		if commonPath == "" {
			candidate := filepath.Join(lintFlags.dir, intents.CommonDocument+".yaml")
			if _, err := os.Stat(candidate); err == nil {
				commonPath = candidate
			}
		}
	}
	if len(files) == 0 {
		return cli.NewConfigError("--dir", "no intent documents found")
	}
	slices.Sort(files)

	shared := grammar.Rules{}
	if commonPath != "" {
		data, err := os.ReadFile(commonPath)
		if err != nil {
			return cli.NewConfigError("--common", err.Error())
		}
		common, err := intents.Parse(data)
		if err != nil {
			return cli.NewConfigError("--common", err.Error())
		}
		batch := intents.NewBatch("")
		batch.Add(intents.CommonDocument, common)
		shared = batch.MergeCommon()
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintFile(file, shared, lintFlags.strict))
	}

	out := cmd.OutOrStdout()
	if lintFlags.format == "json" {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(out, results); err != nil {
			return err
		}
	} else {
		outputLintText(out, results, lintFlags.strict)
	}

	errCount := 0
	for _, r := range results {
		errCount += len(r.Errors)
	}
	if errCount > 0 {
		return cli.NewValidationError(len(files), errCount)
	}
	return nil
}

// LintResult is the validation result for a single intent document.
type LintResult struct {
	File     string      `json:"file"`
	Valid    bool        `json:"valid"`
	Errors   []LintIssue `json:"errors,omitempty"`
	Warnings []LintIssue `json:"warnings,omitempty"`
}

// LintIssue is a single error or warning.
type LintIssue struct {
	Intent     string `json:"intent,omitempty"`
	Rule       string `json:"rule,omitempty"`
	Template   string `json:"template,omitempty"`
	Offset     int    `json:"offset,omitempty"`
	Type       string `json:"type,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// linter collects the issues of one document.
type linter struct {
	result *LintResult
	strict bool
}

func (l *linter) errorf(issue LintIssue) {
	l.result.Errors = append(l.result.Errors, issue)
}

func (l *linter) warn(issue LintIssue) {
	if l.strict {
		l.errorf(issue)
		return
	}
	l.result.Warnings = append(l.result.Warnings, issue)
}

// add records err, flattening error lists. Unknown references are
// warnings unless strict.
func (l *linter) add(base LintIssue, err error) {
	var list *tmplErrors.ErrorList
	if errors.As(err, &list) {
		for _, e := range list.Errors {
			l.add(base, e)
		}
		return
	}

	issue := base
	var e *tmplErrors.Error
	if !errors.As(err, &e) {
		issue.Message = err.Error()
		l.errorf(issue)
		return
	}

	issue.Type = string(e.Type)
	issue.Message = e.Message
	issue.Suggestion = e.Suggestion
	if e.Location.IsValid() {
		issue.Offset = e.Location.Offset
		if issue.Template == "" {
			issue.Template = e.Location.Template
		}
	}
	if e.Type == tmplErrors.ErrorTypeReference {
		l.warn(issue)
		return
	}
	l.errorf(issue)
}

func lintFile(path string, shared grammar.Rules, strict bool) LintResult {
	result := LintResult{File: path}
	lintDocument(&linter{result: &result, strict: strict}, path, shared)
	result.Valid = len(result.Errors) == 0
	return result
}

func lintDocument(l *linter, path string, shared grammar.Rules) {
	data, err := os.ReadFile(path)
	if err != nil {
		l.errorf(LintIssue{Message: err.Error()})
		return
	}
	doc, err := intents.Parse(data)
	if err != nil {
		l.errorf(LintIssue{Type: "yaml", Message: err.Error()})
		return
	}

	discard := slog.New(slog.DiscardHandler)

	var rules grammar.Rules
	if documentDomain(path) == intents.CommonDocument {
		batch := intents.NewBatch("")
		batch.Add(intents.CommonDocument, doc)
		rules = grammar.Override(shared, batch.MergeCommon())
	} else {
		rules = intents.DomainRules(shared, doc)
	}
	lintRules(l, doc.ExpansionRules, "")

	g, err := sampler.Compile(grammar.Normalize(rules, discard))
	if err != nil {
		l.add(LintIssue{}, err)
	}

	for _, intent := range doc.Intents {
		sentences := 0
		for _, block := range intent.Data {
			sentences += len(block.Sentences)
			lintRules(l, block.ExpansionRules, intent.Name)

			bg := g
			if g != nil && len(block.ExpansionRules) > 0 {
				if bg, err = g.Extend(grammar.Normalize(block.ExpansionRules, discard)); err != nil {
					l.add(LintIssue{Intent: intent.Name}, err)
					bg = nil
				}
			}

			for _, sentence := range block.Sentences {
				base := LintIssue{Intent: intent.Name, Template: sentence}
				if bg != nil {
					if err := bg.Validate(sentence); err != nil {
						l.add(base, err)
					}
					continue
				}
				if _, err := parser.ParseStrict(sentence); err != nil {
					l.add(base, err)
				}
			}
		}
		if sentences == 0 {
			l.warn(LintIssue{Intent: intent.Name, Message: "intent has no sentences"})
		}
	}
}

// lintRules warns about rules that expansion drops.
func lintRules(l *linter, rules grammar.Rules, intent string) {
	discard := slog.New(slog.DiscardHandler)
	for _, name := range slices.Sorted(maps.Keys(rules)) {
		if _, ok := grammar.NormalizeValue(name, rules[name], discard); !ok {
			l.warn(LintIssue{
				Intent:  intent,
				Rule:    name,
				Type:    string(tmplErrors.ErrorTypeStructural),
				Message: fmt.Sprintf("rule <%s> has no usable values", name),
			})
		}
	}
}

func outputLintText(w io.Writer, results []LintResult, strict bool) {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		fmt.Fprintf(w, "Validating %s...\n", result.File)

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Fprintln(w, "✓ All templates valid")
		}

		for _, issue := range result.Errors {
			fmt.Fprintf(w, "✗ Error: %s\n", formatIssue(issue))
			totalErrors++
		}
		for _, issue := range result.Warnings {
			fmt.Fprintf(w, "⚠  Warning: %s\n", formatIssue(issue))
			totalWarnings++
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)
	if strict {
		fmt.Fprintln(w, "  Strict mode enabled: treating warnings as errors")
	}
}

func formatIssue(issue LintIssue) string {
	msg := issue.Message
	if issue.Intent != "" {
		msg = issue.Intent + ": " + msg
	}
	if issue.Template != "" {
		msg += fmt.Sprintf(" (%q@%d)", issue.Template, issue.Offset)
	}
	if issue.Type != "" {
		msg += fmt.Sprintf(" [%s]", issue.Type)
	}
	if issue.Suggestion != "" {
		msg += "\n    suggestion: " + issue.Suggestion
	}
	return msg
}
