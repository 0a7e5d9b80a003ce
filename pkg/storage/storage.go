package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alice-hq/hassil-parser/pkg/config"
	"alice-hq/hassil-parser/pkg/intents"
)

// Store persists template rows. Implementations are safe for concurrent use.
type Store interface {
	// Upsert writes rows in one transaction. Rows without patterns are
	// skipped. On error nothing is written.
	Upsert(ctx context.Context, rows []intents.Row) (Result, error)

	// List returns stored templates ordered by domain, intent and language.
	// An empty domain lists every domain.
	List(ctx context.Context, domain string) ([]*Template, error)

	// Get returns one template or ErrNotFound.
	Get(ctx context.Context, domain, intent, language string) (*Template, error)

	// Close releases resources held by the backend.
	Close() error
}

// Result counts the outcome of an upsert.
type Result struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// Template is a stored template row.
type Template struct {
	Domain            string                    `json:"domain"`
	Intent            string                    `json:"intent"`
	Service           string                    `json:"service"`
	Language          string                    `json:"language"`
	Patterns          []string                  `json:"patterns"`
	Source            string                    `json:"source"`
	DefaultParameters intents.DefaultParameters `json:"default_parameters"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// ErrNotFound is returned by Get for an unknown key.
var ErrNotFound = errors.New("template not found")

// StorageError reports a failed backend operation.
type StorageError struct {
	Backend string // "sqlite", "memory"
	Op      string // "open", "upsert", "list", ...
	Err     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

func newStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// New opens the backend selected by cfg.Backend.
func New(cfg *config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "":
		return NewSQLiteStore(&SQLiteConfig{
			Driver:       cfg.Driver,
			Path:         cfg.Path,
			MaxOpenConns: cfg.MaxOpenConns,
			WALMode:      cfg.WALMode,
			BusyTimeout:  cfg.BusyTimeout,
		})
	default:
		return nil, newStorageError(cfg.Backend, "open", fmt.Errorf("unknown storage backend %q", cfg.Backend))
	}
}

func encodeRow(row intents.Row) (patterns, params string, err error) {
	p, err := json.Marshal(row.Patterns)
	if err != nil {
		return "", "", err
	}
	var dp intents.DefaultParameters
	if row.DefaultParameters != nil {
		dp = *row.DefaultParameters
	}
	d, err := json.Marshal(dp)
	if err != nil {
		return "", "", err
	}
	return string(p), string(d), nil
}
