package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"alice-hq/hassil-parser/pkg/intents"

	"github.com/hashicorp/go-getter"
)

// ArchiveSource downloads the intents repository archive and reads the
// language directory from the unpacked tree.
type ArchiveSource struct {
	url           string
	sentencesPath string
	language      string
	opts          options
}

// NewArchiveSource creates a source for the archive at url. sentencesPath
// is the slash-separated directory inside the archive holding the
// documents, e.g. "intents-main/sentences/de".
func NewArchiveSource(url, sentencesPath, language string, opts ...Option) *ArchiveSource {
	return &ArchiveSource{
		url:           url,
		sentencesPath: sentencesPath,
		language:      language,
		opts:          newOptions("archive", opts),
	}
}

// Name implements Source.
func (s *ArchiveSource) Name() string { return "archive" }

// Fetch implements Source. The archive is unpacked into a temporary
// directory that is removed before Fetch returns.
func (s *ArchiveSource) Fetch(ctx context.Context) (*intents.Batch, error) {
	ctx, cancel := s.opts.context(ctx)
	defer cancel()

	tempDir, err := os.MkdirTemp("", "hassil-intents-*")
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Err: fmt.Errorf("create temp directory: %w", err)}
	}
	defer os.RemoveAll(tempDir)

	dst := filepath.Join(tempDir, "archive")
	client := &getter.Client{
		Ctx:  ctx,
		Src:  s.url,
		Dst:  dst,
		Mode: getter.ClientModeDir,
		// Only plain HTTP(S) downloads; the archive extension selects unzip.
		Getters: map[string]getter.Getter{
			"http":  new(getter.HttpGetter),
			"https": new(getter.HttpGetter),
		},
	}

	s.opts.logger.Info("downloading intents archive", "url", s.url)
	if err := client.Get(); err != nil {
		return nil, &FetchError{Source: s.Name(), Err: fmt.Errorf("download %s: %w", s.url, err)}
	}

	dir := filepath.Join(dst, filepath.FromSlash(s.sentencesPath))
	batch, err := ReadDir(dir, s.language, s.opts.logger)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Err: fmt.Errorf("read %s: %w", s.sentencesPath, err)}
	}
	return batch, nil
}
