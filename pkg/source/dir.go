package source

import (
	"context"

	"alice-hq/hassil-parser/pkg/intents"
)

// DirSource reads documents from a local directory such as the inbox.
type DirSource struct {
	dir      string
	language string
	opts     options
}

// NewDirSource creates a source reading the documents directly under dir.
func NewDirSource(dir, language string, opts ...Option) *DirSource {
	return &DirSource{
		dir:      dir,
		language: language,
		opts:     newOptions("dir", opts),
	}
}

// Name implements Source.
func (s *DirSource) Name() string { return "dir" }

// Dir returns the directory read by Fetch.
func (s *DirSource) Dir() string { return s.dir }

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context) (*intents.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: s.Name(), Err: err}
	}
	batch, err := ReadDir(s.dir, s.language, s.opts.logger)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Err: err}
	}
	return batch, nil
}
