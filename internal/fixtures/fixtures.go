// Package fixtures provides shared test data and helpers.
package fixtures

import (
	"archive/zip"
	"bytes"
	"embed"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"testing"
)

//go:embed intents/*.yaml
var intentFiles embed.FS

// IntentNames lists the fixture documents by file stem.
var IntentNames = []string{"_common", "climate", "light"}

// Intent returns the raw YAML of a fixture document.
func Intent(t testing.TB, name string) []byte {
	t.Helper()
	data, err := intentFiles.ReadFile("intents/" + name + ".yaml")
	if err != nil {
		t.Fatalf("fixture %s: %v", name, err)
	}
	return data
}

// IntentFS returns the fixture documents as a file system rooted at the
// documents.
func IntentFS() fs.FS {
	sub, err := fs.Sub(intentFiles, "intents")
	if err != nil {
		panic(err)
	}
	return sub
}

// WriteIntents copies every fixture document into dir.
func WriteIntents(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for _, name := range IntentNames {
		if err := os.WriteFile(filepath.Join(dir, name+".yaml"), Intent(t, name), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
}

// ArchiveZip builds a zip archive holding the fixture documents under
// prefix, e.g. "intents-main/sentences/de".
func ArchiveZip(t testing.TB, prefix string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range IntentNames {
		w, err := zw.Create(path.Join(prefix, name+".yaml"))
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write(Intent(t, name)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	// Unrelated entries are ignored by readers.
	if w, err := zw.Create("intents-main/README.md"); err == nil {
		_, _ = w.Write([]byte("# intents\n"))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// Logger returns a text logger writing to w at debug level. A nil w
// discards output.
func Logger(w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
