package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"alice-hq/hassil-parser/pkg/events"
	"alice-hq/hassil-parser/pkg/grammar"
	"alice-hq/hassil-parser/pkg/intents"
	"alice-hq/hassil-parser/pkg/orchestrator"
	"alice-hq/hassil-parser/pkg/source"
	"alice-hq/hassil-parser/pkg/storage"
	"alice-hq/hassil-parser/pkg/telemetry/logging"
	"alice-hq/hassil-parser/pkg/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Run outcomes reported to the Recorder.
const (
	StatusSuccess      = "success"
	StatusFetchError   = "fetch_error"
	StatusStorageError = "storage_error"
	StatusCanceled     = "canceled"
)

// Recorder receives run outcomes. The telemetry metrics collector
// implements it.
type Recorder interface {
	RecordSync(status string, duration time.Duration)
	RecordUpsert(inserted, updated, skipped int)
	RecordPublish(status string)
}

type nopRecorder struct{}

func (nopRecorder) RecordSync(string, time.Duration) {}
func (nopRecorder) RecordUpsert(int, int, int)       {}
func (nopRecorder) RecordPublish(string)             {}

// Options configures a Syncer.
type Options struct {
	// Workers bounds the number of domains expanded at once (default: 4).
	Workers int

	// Language is used for documents that declare none (default: "de").
	Language string

	// SourceTag is stored with every row and sent in events
	// (default: "github").
	SourceTag string

	// DryRun expands without writing or publishing.
	DryRun bool

	// Timeout bounds one run, counted from when it acquires the run lock.
	// Zero means no bound beyond the caller's context.
	Timeout time.Duration

	Logger   *slog.Logger
	Recorder Recorder
}

func (o *Options) applyDefaults() {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Language == "" {
		o.Language = "de"
	}
	if o.SourceTag == "" {
		o.SourceTag = intents.DefaultSource
	}
	if o.Logger == nil {
		o.Logger = slog.Default().With("component", "syncer")
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
}

// Syncer runs the sync pipeline. It is safe for concurrent use.
type Syncer struct {
	source    source.Source
	store     storage.Store
	publisher events.Publisher
	extractor *intents.Extractor
	opts      Options
	tracer    trace.Tracer

	mu   sync.Mutex // Serialises runs
	last atomic.Pointer[Report]
}

// New creates a syncer. publisher may be nil, in which case runs publish
// nothing.
func New(src source.Source, store storage.Store, publisher events.Publisher, orch *orchestrator.Orchestrator, opts Options) *Syncer {
	opts.applyDefaults()
	return &Syncer{
		source:    src,
		store:     store,
		publisher: publisher,
		extractor: intents.NewExtractor(orch,
			intents.WithLanguage(opts.Language),
			intents.WithSource(opts.SourceTag),
			intents.WithLogger(opts.Logger),
		),
		opts:   opts,
		tracer: otel.Tracer(tracing.InstrumentationName + "/syncer"),
	}
}

// LastReport returns the report of the last successful run, or nil.
func (s *Syncer) LastReport() *Report {
	return s.last.Load()
}

// Run performs one sync.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	report := &Report{
		RunID:     uuid.NewString(),
		Source:    s.source.Name(),
		Language:  s.opts.Language,
		StartedAt: start.UTC(),
		DryRun:    s.opts.DryRun,
	}

	ctx = logging.WithRunID(ctx, report.RunID)
	ctx, span := s.tracer.Start(ctx, "sync.run",
		trace.WithAttributes(tracing.RunIDKey.String(report.RunID)))
	defer span.End()

	logger := s.opts.Logger
	logger.InfoContext(ctx, "sync started", "source", report.Source, "dry_run", s.opts.DryRun)

	status, err := s.run(ctx, report)
	report.DurationMS = time.Since(start).Milliseconds()
	s.opts.Recorder.RecordSync(status, time.Since(start))
	tracing.SetStatus(span, err)

	if err != nil {
		logger.ErrorContext(ctx, "sync failed", "status", status, "error", err)
		return nil, err
	}

	s.last.Store(report)
	logger.InfoContext(ctx, "sync complete",
		"domains", report.Domains,
		"templates", report.Templates,
		"inserted", report.Inserted,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"duration_ms", report.DurationMS,
	)
	return report, nil
}

func (s *Syncer) run(ctx context.Context, report *Report) (string, error) {
	batch, err := s.source.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return StatusCanceled, ctx.Err()
		}
		var ferr *source.FetchError
		if !errors.As(err, &ferr) {
			err = &source.FetchError{Source: s.source.Name(), Err: err}
		}
		return StatusFetchError, err
	}

	rows, err := s.Expand(ctx, batch, report)
	if err != nil {
		return StatusCanceled, err
	}

	if s.opts.DryRun {
		return StatusSuccess, nil
	}

	result, err := s.store.Upsert(ctx, rows)
	if err != nil {
		var serr *storage.StorageError
		if !errors.As(err, &serr) {
			err = &storage.StorageError{Backend: "unknown", Op: "upsert", Err: err}
		}
		return StatusStorageError, err
	}
	report.Inserted = result.Inserted
	report.Updated = result.Updated
	report.Skipped = result.Skipped
	s.opts.Recorder.RecordUpsert(result.Inserted, result.Updated, result.Skipped)

	if err := s.publish(ctx, report.RunID); err != nil {
		s.opts.Logger.WarnContext(ctx, "event publish failed, sync still succeeded", "error", err)
	} else if s.publisher != nil {
		report.Published = true
	}

	return StatusSuccess, nil
}

// Expand expands every domain document of batch. Rows come back in
// sorted domain order and document intent order. report, when non-nil,
// receives the counts. The error is non-nil only when ctx is done.
func (s *Syncer) Expand(ctx context.Context, batch *intents.Batch, report *Report) ([]intents.Row, error) {
	if report == nil {
		report = &Report{}
	}

	shared := batch.MergeCommon()
	domains := batch.Domains()
	s.opts.Logger.InfoContext(ctx, "expanding domains",
		"domains", len(domains), "shared_rules", len(shared), "workers", s.opts.Workers)

	type domainResult struct {
		rows   []intents.Row
		stats  intents.Stats
		failed bool
	}
	results := make([]domainResult, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, domain := range domains {
		g.Go(func() error {
			rows, stats, err := s.expandDomain(gctx, domain, batch.Documents[domain], shared)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.opts.Logger.ErrorContext(logging.WithDomain(gctx, domain),
					"domain failed, skipping", "error", err)
				results[i].failed = true
				return nil
			}
			results[i] = domainResult{rows: rows, stats: stats}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows []intents.Row
	for i, r := range results {
		if r.failed {
			report.FailedDomains = append(report.FailedDomains, domains[i])
			continue
		}
		report.Domains++
		report.addStats(r.stats)
		rows = append(rows, r.rows...)
	}
	return rows, nil
}

func (s *Syncer) expandDomain(ctx context.Context, domain string, doc *intents.Document, shared grammar.Rules) (rows []intents.Row, stats intents.Stats, err error) {
	defer recoverDomain(domain, &err)

	ctx = logging.WithDomain(ctx, domain)
	ctx, span := s.tracer.Start(ctx, "sync.domain",
		trace.WithAttributes(tracing.DomainKey.String(domain)))
	defer func() {
		span.SetAttributes(tracing.UnitsKey.Int(stats.Intents), tracing.PatternsKey.Int(stats.Templates))
		tracing.SetStatus(span, err)
		span.End()
	}()

	if doc == nil {
		return nil, stats, fmt.Errorf("document %s is empty", domain)
	}
	return s.extractor.Extract(ctx, domain, doc, shared)
}

// Notify publishes a templates_updated event without running a sync.
func (s *Syncer) Notify(ctx context.Context) error {
	if s.publisher == nil {
		return fmt.Errorf("event publishing is disabled")
	}
	return s.publish(ctx, "")
}

func (s *Syncer) publish(ctx context.Context, runID string) error {
	if s.publisher == nil {
		return nil
	}
	err := s.publisher.Publish(ctx, events.Event{
		Event:  events.TemplatesUpdated,
		Source: s.opts.SourceTag,
		RunID:  runID,
	})
	if err != nil {
		s.opts.Recorder.RecordPublish("error")
		return err
	}
	s.opts.Recorder.RecordPublish("success")
	return nil
}

// recoverDomain turns a panic while expanding a domain into an error.
func recoverDomain(domain string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic expanding domain %s: %v\n%s", domain, r, debug.Stack())
	}
}
