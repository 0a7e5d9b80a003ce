package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"alice-hq/hassil-parser/pkg/config"
	"alice-hq/hassil-parser/pkg/intents"
)

// Source fetches the intent documents of one language.
type Source interface {
	// Fetch returns every document keyed by file stem.
	Fetch(ctx context.Context) (*intents.Batch, error)

	// Name identifies the source in logs, e.g. "archive".
	Name() string
}

// FetchError reports a source that could not be reached or read.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrUnknownMode is returned by New for an unsupported source mode.
var ErrUnknownMode = errors.New("unknown source mode")

// New creates the source selected by cfg.Mode.
func New(cfg *config.SourceConfig, language string, logger *slog.Logger) (Source, error) {
	switch cfg.Mode {
	case "archive":
		return NewArchiveSource(cfg.ArchiveURL, cfg.SentencesPath, language,
			WithTimeout(cfg.Timeout), WithLogger(logger)), nil
	case "git":
		return NewGitSource(&cfg.Git, language, WithTimeout(cfg.Timeout), WithLogger(logger))
	case "dir":
		return NewDirSource(cfg.InboxPath, language, WithLogger(logger)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}

// options shared by every source.
type options struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a source.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimeout bounds a single fetch. Zero means no bound beyond the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

func newOptions(name string, opts []Option) options {
	o := options{logger: slog.Default().With("component", "source")}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("source", name)
	return o
}

func (o options) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

// ReadDir reads the documents directly under dir.
func ReadDir(dir, language string, logger *slog.Logger) (*intents.Batch, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return ReadFS(os.DirFS(dir), language, logger)
}

// ReadFS reads the documents at the root of fsys. Hidden files, non-YAML
// files and subdirectories are ignored; files that fail to parse are
// skipped with a warning.
func ReadFS(fsys fs.FS, language string, logger *slog.Logger) (*intents.Batch, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	batch := intents.NewBatch(language)
	for _, entry := range entries {
		name := entry.Name()
		stem, ok := documentStem(name)
		if entry.IsDir() || !ok {
			continue
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			logger.Warn("skipping unreadable intent file", "file", name, "error", err)
			continue
		}
		doc, err := intents.Parse(data)
		if err != nil {
			logger.Warn("skipping invalid intent file", "file", name, "error", err)
			continue
		}
		batch.Add(stem, doc)
	}

	logger.Debug("read intent documents", "documents", len(batch.Documents))
	return batch, nil
}

// documentStem returns the document name of a YAML file name.
func documentStem(name string) (string, bool) {
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	ext := path.Ext(name)
	if ext != ".yaml" && ext != ".yml" {
		return "", false
	}
	return strings.TrimSuffix(name, ext), true
}
