package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"alice-hq/hassil-parser/pkg/config"
	"alice-hq/hassil-parser/pkg/intents"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// backends returns one fresh store per backend under test.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	stores := map[string]Store{"memory": NewMemoryStore()}
	for _, driver := range []string{DriverModernc, DriverMattn} {
		s, err := NewSQLiteStore(&SQLiteConfig{
			Driver:       driver,
			Path:         filepath.Join(t.TempDir(), "templates.db"),
			MaxOpenConns: 2,
			WALMode:      true,
		})
		if err != nil {
			t.Fatalf("NewSQLiteStore(%s) error = %v", driver, err)
		}
		stores["sqlite/"+driver] = s
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func lightRows() []intents.Row {
	return []intents.Row{
		{
			Domain:   "light",
			Intent:   "HassTurnOn",
			Service:  "light.turn_on",
			Language: "de",
			Patterns: []string{"schalte {name} an", "{name} an"},
			Source:   intents.DefaultSource,
			DefaultParameters: &intents.DefaultParameters{
				RequiresDomain: "light",
			},
		},
		{
			Domain:   "light",
			Intent:   "HassLightSet",
			Service:  "light.turn_on",
			Language: "de",
			Patterns: []string{"setze {name} auf {brightness}"},
			Source:   intents.DefaultSource,
			DefaultParameters: &intents.DefaultParameters{
				ExcludesDomain: []string{"cover", "switch"},
			},
		},
		{
			Domain:   "light",
			Intent:   "HassTurnOff",
			Service:  "light.turn_off",
			Language: "de",
			Source:   intents.DefaultSource,
		},
	}
}

var ignoreTimes = cmpopts.IgnoreFields(Template{}, "CreatedAt", "UpdatedAt")

func TestStore_Upsert(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := store.Upsert(ctx, lightRows())
			if err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}
			if diff := cmp.Diff(Result{Inserted: 2, Skipped: 1}, got); diff != "" {
				t.Errorf("first upsert mismatch (-want +got):\n%s", diff)
			}

			rows := lightRows()
			rows[0].Patterns = []string{"mach {name} an"}
			rows[0].DefaultParameters = nil
			rows = append(rows, intents.Row{
				Domain:   "climate",
				Intent:   "HassClimateGetTemperature",
				Service:  "climate.get_temperature",
				Language: "de",
				Patterns: []string{"wie warm ist es"},
				Source:   "inbox",
			})

			got, err = store.Upsert(ctx, rows)
			if err != nil {
				t.Fatalf("second Upsert() error = %v", err)
			}
			if diff := cmp.Diff(Result{Inserted: 1, Updated: 2, Skipped: 1}, got); diff != "" {
				t.Errorf("second upsert mismatch (-want +got):\n%s", diff)
			}

			tmpl, err := store.Get(ctx, "light", "HassTurnOn", "de")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			want := &Template{
				Domain:   "light",
				Intent:   "HassTurnOn",
				Service:  "light.turn_on",
				Language: "de",
				Patterns: []string{"mach {name} an"},
				Source:   intents.DefaultSource,
			}
			if diff := cmp.Diff(want, tmpl, ignoreTimes, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("updated template mismatch (-want +got):\n%s", diff)
			}
			if tmpl.CreatedAt.IsZero() || tmpl.UpdatedAt.Before(tmpl.CreatedAt) {
				t.Errorf("unexpected timestamps created=%v updated=%v", tmpl.CreatedAt, tmpl.UpdatedAt)
			}
		})
	}
}

func TestStore_List(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rows := append(lightRows(), intents.Row{
				Domain:   "climate",
				Intent:   "HassClimateGetTemperature",
				Service:  "climate.get_temperature",
				Language: "de",
				Patterns: []string{"wie warm ist es"},
				Source:   intents.DefaultSource,
			})
			if _, err := store.Upsert(ctx, rows); err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}

			all, err := store.List(ctx, "")
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var keys []string
			for _, tmpl := range all {
				keys = append(keys, tmpl.Domain+"/"+tmpl.Intent)
			}
			want := []string{"climate/HassClimateGetTemperature", "light/HassLightSet", "light/HassTurnOn"}
			if diff := cmp.Diff(want, keys); diff != "" {
				t.Errorf("List() order mismatch (-want +got):\n%s", diff)
			}

			light, err := store.List(ctx, "light")
			if err != nil {
				t.Fatalf("List(light) error = %v", err)
			}
			if len(light) != 2 {
				t.Fatalf("expected 2 light templates, got %d", len(light))
			}
			if diff := cmp.Diff([]string{"cover", "switch"}, light[0].DefaultParameters.ExcludesDomain); diff != "" {
				t.Errorf("excludes_domain mismatch (-want +got):\n%s", diff)
			}

			none, err := store.List(ctx, "vacuum")
			if err != nil {
				t.Fatalf("List(vacuum) error = %v", err)
			}
			if len(none) != 0 {
				t.Errorf("expected no templates, got %d", len(none))
			}
		})
	}
}

func TestStore_GetNotFound(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "light", "HassTurnOn", "fr")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_UpsertEmpty(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.Upsert(context.Background(), nil)
			if err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}
			if got != (Result{}) {
				t.Errorf("expected zero result, got %+v", got)
			}
		})
	}
}

func TestSQLiteStore_DefaultParametersStoredAsObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.db")
	store, err := NewSQLiteStore(&SQLiteConfig{Driver: DriverModernc, Path: path, MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	rows := lightRows()
	rows[0].DefaultParameters = nil
	if _, err := store.Upsert(ctx, rows); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	var params, patterns string
	err = store.db.QueryRowContext(ctx,
		"SELECT default_parameters, patterns FROM intent_templates WHERE intent = ?", "HassTurnOn",
	).Scan(&params, &patterns)
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if params != "{}" {
		t.Errorf("expected absent parameters stored as {}, got %s", params)
	}
	if patterns != `["schalte {name} an","{name} an"]` {
		t.Errorf("unexpected patterns JSON %s", patterns)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "templates.db")
	cfg := &SQLiteConfig{Driver: DriverModernc, Path: path, MaxOpenConns: 1, WALMode: true}

	store, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if _, err := store.Upsert(context.Background(), lightRows()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	store, err = NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	got, err := store.Upsert(context.Background(), lightRows())
	if err != nil {
		t.Fatalf("Upsert() after reopen error = %v", err)
	}
	if got.Updated != 2 || got.Inserted != 0 {
		t.Errorf("expected existing rows updated after reopen, got %+v", got)
	}
}

func TestSQLiteStore_CanceledContext(t *testing.T) {
	store, err := NewSQLiteStore(&SQLiteConfig{
		Driver:       DriverModernc,
		Path:         filepath.Join(t.TempDir(), "templates.db"),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Upsert(ctx, lightRows())
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if serr.Backend != "sqlite" {
		t.Errorf("expected backend sqlite, got %s", serr.Backend)
	}

	all, err := store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected nothing written, got %d rows", len(all))
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.StorageConfig)
		want    string
		wantErr bool
	}{
		{"memory", func(c *config.StorageConfig) { c.Backend = "memory" }, "*storage.MemoryStore", false},
		{"sqlite", func(c *config.StorageConfig) {}, "*storage.SQLiteStore", false},
		{"unknown", func(c *config.StorageConfig) { c.Backend = "postgres" }, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig().Storage
			cfg.Path = filepath.Join(t.TempDir(), "templates.db")
			tt.modify(&cfg)

			store, err := New(&cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var serr *StorageError
				if !errors.As(err, &serr) {
					t.Errorf("expected StorageError, got %T", err)
				}
				return
			}
			defer store.Close()

			switch store.(type) {
			case *MemoryStore:
				if tt.want != "*storage.MemoryStore" {
					t.Errorf("unexpected backend %T", store)
				}
			case *SQLiteStore:
				if tt.want != "*storage.SQLiteStore" {
					t.Errorf("unexpected backend %T", store)
				}
			}
		})
	}
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := error(newStorageError("sqlite", "upsert", cause))
	if got := err.Error(); got != "storage error [backend=sqlite, operation=upsert]: disk full" {
		t.Errorf("unexpected message %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("expected StorageError to unwrap to its cause")
	}
}

func TestStore_UpsertRepeatedKeyInBatch(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := lightRows()[0]
			second := first
			second.Patterns = []string{"mach {name} an"}

			got, err := store.Upsert(ctx, []intents.Row{first, second})
			if err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}
			if diff := cmp.Diff(Result{Inserted: 1, Updated: 1}, got); diff != "" {
				t.Errorf("Upsert() mismatch (-want +got):\n%s", diff)
			}

			tmpl, err := store.Get(ctx, first.Domain, first.Intent, first.Language)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if diff := cmp.Diff([]string{"mach {name} an"}, tmpl.Patterns); diff != "" {
				t.Errorf("stored patterns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
