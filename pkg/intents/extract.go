package intents

import (
	"context"
	"log/slog"

	"alice-hq/hassil-parser/pkg/grammar"
	"alice-hq/hassil-parser/pkg/orchestrator"
)

// DefaultSource tags rows built from the upstream intents repository.
const DefaultSource = "github"

// Row is one expanded intent, the unit of storage.
type Row struct {
	Domain            string             `json:"domain"`
	Intent            string             `json:"intent"`
	Service           string             `json:"service"`
	Language          string             `json:"language"`
	Patterns          []string           `json:"patterns"`
	Source            string             `json:"source"`
	DefaultParameters *DefaultParameters `json:"default_parameters"`
	Path              orchestrator.Path  `json:"-"`
}

// Stats counts the outcome of one extraction.
type Stats struct {
	Intents   int `json:"intents"`
	Templates int `json:"templates"`
	Fallbacks int `json:"fallbacks"`
	Dropped   int `json:"dropped"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Intents += other.Intents
	s.Templates += other.Templates
	s.Fallbacks += other.Fallbacks
	s.Dropped += other.Dropped
}

// Extractor turns documents into rows.
type Extractor struct {
	orch     *orchestrator.Orchestrator
	language string
	source   string
	logger   *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLanguage sets the language used when a document declares none.
func WithLanguage(language string) ExtractorOption {
	return func(e *Extractor) {
		if language != "" {
			e.language = language
		}
	}
}

// WithSource sets the source tag of produced rows.
func WithSource(source string) ExtractorOption {
	return func(e *Extractor) {
		if source != "" {
			e.source = source
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an extractor expanding through orch.
func NewExtractor(orch *orchestrator.Orchestrator, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		orch:     orch,
		language: "de",
		source:   DefaultSource,
		logger:   slog.Default().With("component", "intents"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Units builds one unit per intent in document order.
func (e *Extractor) Units(domain string, doc *Document) []Unit {
	language := doc.Language
	if language == "" {
		language = e.language
	}

	units := make([]Unit, 0, len(doc.Intents))
	for _, intent := range doc.Intents {
		units = append(units, NewUnit(domain, language, intent))
	}
	return units
}

// Extract expands every intent of a domain document. shared holds the
// rules common to all domains. Intents without sentences or without any
// expanded pattern produce no row. The error is non-nil only when ctx is
// done or the orchestrator cannot serve the document at all.
func (e *Extractor) Extract(ctx context.Context, domain string, doc *Document, shared grammar.Rules) ([]Row, Stats, error) {
	session := e.orch.NewSession(domain, DomainRules(shared, doc))
	if err := session.Err(); err != nil {
		return nil, Stats{}, err
	}

	var (
		rows  []Row
		stats Stats
	)
	for _, unit := range e.Units(domain, doc) {
		stats.Intents++

		result, err := session.Expand(ctx, unit.Expansion())
		if err != nil {
			return nil, stats, err
		}
		if result.Fallback != "" {
			stats.Fallbacks++
		}
		if result.Dropped() {
			stats.Dropped++
			continue
		}

		rows = append(rows, Row{
			Domain:            unit.Domain,
			Intent:            unit.Intent,
			Service:           unit.Service,
			Language:          unit.Language,
			Patterns:          result.Patterns,
			Source:            e.source,
			DefaultParameters: unit.Parameters,
			Path:              result.Path,
		})
		e.logger.Info("expanded intent",
			"domain", domain,
			"intent", unit.Intent,
			"sentences", len(unit.Sentences),
			"patterns", len(result.Patterns),
			"path", result.Path)
	}

	stats.Templates = len(rows)
	return rows, stats, nil
}
