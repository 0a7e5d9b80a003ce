package main

import (
	"os"
	"path/filepath"
	"testing"

	"alice-hq/hassil-parser/internal/fixtures"
	"alice-hq/hassil-parser/pkg/config"
)

// useConfig makes loadConfig return cfg for the duration of the test.
func useConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	if err := config.Initialize(""); err != nil {
		t.Fatalf("config.Initialize() error = %v", err)
	}
	prev := config.GetConfig()
	config.SetConfig(cfg)
	t.Cleanup(func() { config.SetConfig(prev) })
}

// testConfig returns a quiet default configuration.
func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Telemetry.Logging.Level = "error"
	return cfg
}

// intentsDir writes the fixture documents into a temporary directory.
func intentsDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "de")
	fixtures.WriteIntents(t, dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
