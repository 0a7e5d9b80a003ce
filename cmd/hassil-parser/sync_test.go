package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"alice-hq/hassil-parser/pkg/cli"
	"alice-hq/hassil-parser/pkg/syncer"
)

func runSyncCommand(t *testing.T, inbox string, dryRun bool, format string) (*bytes.Buffer, error) {
	t.Helper()
	cfg := testConfig()
	cfg.Source.Mode = "dir"
	cfg.Source.InboxPath = inbox
	cfg.Storage.Backend = "memory"
	useConfig(t, cfg)

	syncFlags.dryRun = dryRun
	syncFlags.format = format

	var buf bytes.Buffer
	syncCmd.SetOut(&buf)
	t.Cleanup(func() { syncCmd.SetOut(nil) })
	return &buf, runSync(syncCmd, nil)
}

func TestRunSync(t *testing.T) {
	dir := intentsDir(t)

	tests := []struct {
		name          string
		dryRun        bool
		wantInserted  int
		wantPublished bool
	}{
		{"store and publish", false, 4, true},
		{"dry run", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := runSyncCommand(t, dir, tt.dryRun, "json")
			if err != nil {
				t.Fatalf("runSync() error = %v", err)
			}

			var report syncer.Report
			if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
				t.Fatalf("invalid JSON report: %v\n%s", err, buf.String())
			}
			if report.Domains != 2 {
				t.Errorf("Domains = %d, want 2", report.Domains)
			}
			if report.Templates != 4 {
				t.Errorf("Templates = %d, want 4", report.Templates)
			}
			if report.Inserted != tt.wantInserted {
				t.Errorf("Inserted = %d, want %d", report.Inserted, tt.wantInserted)
			}
			if report.Published != tt.wantPublished {
				t.Errorf("Published = %v, want %v", report.Published, tt.wantPublished)
			}
			if report.DryRun != tt.dryRun {
				t.Errorf("DryRun = %v, want %v", report.DryRun, tt.dryRun)
			}
		})
	}
}

func TestRunSync_TextReport(t *testing.T) {
	buf, err := runSyncCommand(t, intentsDir(t), true, "text")
	if err != nil {
		t.Fatalf("runSync() error = %v", err)
	}
	for _, want := range []string{"field", "run_id", "templates", "dry_run"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("report missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRunSync_FetchError(t *testing.T) {
	_, err := runSyncCommand(t, "/nonexistent/inbox", false, "json")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := cli.ExitCode(err); got != cli.ExitRuntime {
		t.Errorf("ExitCode() = %d, want %d", got, cli.ExitRuntime)
	}
}

func TestRunSync_BadFormat(t *testing.T) {
	_, err := runSyncCommand(t, intentsDir(t), true, "yaml")
	if got := cli.ExitCode(err); got != cli.ExitConfig {
		t.Errorf("ExitCode() = %d, want %d", got, cli.ExitConfig)
	}
}
