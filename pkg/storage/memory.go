package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"alice-hq/hassil-parser/pkg/intents"
)

type templateKey struct {
	domain, intent, language string
}

// MemoryStore implements Store in memory. It backs tests and dry runs.
type MemoryStore struct {
	templates map[templateKey]*Template
	mu        sync.RWMutex
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[templateKey]*Template),
		now:       time.Now,
	}
}

// Upsert implements Store.
func (s *MemoryStore) Upsert(ctx context.Context, rows []intents.Row) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, newStorageError("memory", "upsert", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result Result
	now := s.now().UTC()
	for _, row := range rows {
		if len(row.Patterns) == 0 {
			result.Skipped++
			continue
		}

		key := templateKey{row.Domain, row.Intent, row.Language}
		t := &Template{
			Domain:    row.Domain,
			Intent:    row.Intent,
			Service:   row.Service,
			Language:  row.Language,
			Patterns:  slices.Clone(row.Patterns),
			Source:    row.Source,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if row.DefaultParameters != nil {
			t.DefaultParameters = intents.DefaultParameters{
				ExcludesDomain: slices.Clone(row.DefaultParameters.ExcludesDomain),
				RequiresDomain: row.DefaultParameters.RequiresDomain,
			}
		}

		if existing, ok := s.templates[key]; ok {
			t.CreatedAt = existing.CreatedAt
			result.Updated++
		} else {
			result.Inserted++
		}
		s.templates[key] = t
	}
	return result, nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, domain string) ([]*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Template
	for key, t := range s.templates {
		if domain != "" && key.domain != domain {
			continue
		}
		out = append(out, copyTemplate(t))
	}
	slices.SortFunc(out, func(a, b *Template) int {
		return cmp.Or(
			cmp.Compare(a.Domain, b.Domain),
			cmp.Compare(a.Intent, b.Intent),
			cmp.Compare(a.Language, b.Language),
		)
	})
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, domain, intent, language string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[templateKey{domain, intent, language}]
	if !ok {
		return nil, ErrNotFound
	}
	return copyTemplate(t), nil
}

// Len returns the number of stored templates.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.templates)
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

func copyTemplate(t *Template) *Template {
	c := *t
	c.Patterns = slices.Clone(t.Patterns)
	c.DefaultParameters.ExcludesDomain = slices.Clone(t.DefaultParameters.ExcludesDomain)
	return &c
}
