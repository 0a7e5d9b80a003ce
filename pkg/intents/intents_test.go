package intents_test

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"testing"

	"alice-hq/hassil-parser/internal/fixtures"
	"alice-hq/hassil-parser/pkg/grammar"
	"alice-hq/hassil-parser/pkg/intents"
	"alice-hq/hassil-parser/pkg/orchestrator"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func loadBatch(t *testing.T) *intents.Batch {
	t.Helper()
	batch := intents.NewBatch("de")
	for _, name := range fixtures.IntentNames {
		doc, err := intents.Parse(fixtures.Intent(t, name))
		if err != nil {
			t.Fatalf("Parse(%s) error = %v", name, err)
		}
		batch.Add(name, doc)
	}
	return batch
}

func newExtractor(external bool, logs *bytes.Buffer) *intents.Extractor {
	var w io.Writer
	if logs != nil {
		w = logs
	}
	logger := fixtures.Logger(w)
	orch := orchestrator.New(orchestrator.Options{External: external, MaxPatterns: 50, Logger: logger})
	return intents.NewExtractor(orch, intents.WithLogger(logger))
}

func TestParse_KeepsIntentOrder(t *testing.T) {
	doc, err := intents.Parse(fixtures.Intent(t, "light"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var names []string
	for _, intent := range doc.Intents {
		names = append(names, intent.Name)
	}
	want := []string{"HassTurnOn", "HassLightSet", "HassTurnOff", "HassBroken"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("intent order mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{"- just\n- a list\n", "intents: [a, b]\n", "expansion_rules: 5\n"} {
		if _, err := intents.Parse([]byte(src)); err == nil {
			t.Errorf("Parse(%q) error = nil, want error", src)
		}
	}
}

func TestNewUnit(t *testing.T) {
	doc, err := intents.Parse(fixtures.Intent(t, "light"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	unit := intents.NewUnit("light", "de", doc.Intents[1])

	want := intents.Unit{
		Domain:    "light",
		Intent:    "HassLightSet",
		Service:   "light.turn_on",
		Language:  "de",
		Sentences: []string{"setze <licht> auf {brightness}[%]", "mach <licht> <farbe>"},
		Parameters: &intents.DefaultParameters{
			ExcludesDomain: []string{"cover", "switch"},
			RequiresDomain: "light",
		},
	}
	if diff := cmp.Diff(want, unit); diff != "" {
		t.Errorf("NewUnit() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewUnit_LocalRulesAndLastRequiredDomain(t *testing.T) {
	intent := intents.Intent{
		Name: "HassCustom",
		Data: []intents.DataBlock{
			{
				Sentences:       []string{"a"},
				RequiresContext: intents.Context{Domain: intents.StringList{"first"}},
				ExpansionRules:  grammar.Rules{"x": grammar.Literal("1"), "y": grammar.Literal("1")},
			},
			{
				Sentences:       []string{"a"},
				RequiresContext: intents.Context{Domain: intents.StringList{"second"}},
				ExpansionRules:  grammar.Rules{"y": grammar.Literal("2")},
			},
		},
	}

	unit := intents.NewUnit("d", "de", intent)
	if unit.Parameters.RequiresDomain != "second" {
		t.Errorf("RequiresDomain = %q, want %q", unit.Parameters.RequiresDomain, "second")
	}
	if diff := cmp.Diff([]string{"a", "a"}, unit.Sentences); diff != "" {
		t.Errorf("Sentences mismatch (-want +got):\n%s", diff)
	}
	want := grammar.Rules{"x": grammar.Literal("1"), "y": grammar.Literal("2")}
	if diff := cmp.Diff(want, unit.Rules); diff != "" {
		t.Errorf("Rules mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeCommon(t *testing.T) {
	shared := loadBatch(t).MergeCommon()

	var names []string
	for name := range shared {
		names = append(names, name)
	}
	sort.Strings(names)

	want := []string{"artikel", "bereich", "brightness", "farbe", "leer", "licht"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("shared rule names mismatch (-want +got):\n%s", diff)
	}
}

func TestBatch_Domains(t *testing.T) {
	if diff := cmp.Diff([]string{"climate", "light"}, loadBatch(t).Domains()); diff != "" {
		t.Errorf("Domains() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract(t *testing.T) {
	batch := loadBatch(t)
	shared := batch.MergeCommon()
	var logs bytes.Buffer
	ex := newExtractor(false, &logs)

	rows, stats, err := ex.Extract(context.Background(), "light", batch.Documents["light"], shared)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []intents.Row{
		{
			Domain:   "light",
			Intent:   "HassTurnOn",
			Service:  "light.turn_on",
			Language: "de",
			Patterns: []string{"schalte das Licht an", "schalte Licht an", "das Licht an", "Licht an"},
			Source:   "github",
			DefaultParameters: &intents.DefaultParameters{
				RequiresDomain: "light",
			},
			Path: orchestrator.PathCustom,
		},
		{
			Domain:   "light",
			Intent:   "HassLightSet",
			Service:  "light.turn_on",
			Language: "de",
			Patterns: []string{
				"setze das Licht auf {brightness}%",
				"setze das Licht auf {brightness}",
				"setze Licht auf {brightness}%",
				"setze Licht auf {brightness}",
				"mach das Licht rot",
				"mach Licht rot",
				"mach das Licht blau",
				"mach Licht blau",
			},
			Source: "github",
			DefaultParameters: &intents.DefaultParameters{
				ExcludesDomain: []string{"cover", "switch"},
				RequiresDomain: "light",
			},
			Path: orchestrator.PathCustom,
		},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Extract() rows mismatch (-want +got):\n%s", diff)
	}

	wantStats := intents.Stats{Intents: 4, Templates: 2, Dropped: 2}
	if diff := cmp.Diff(wantStats, stats); diff != "" {
		t.Errorf("Extract() stats mismatch (-want +got):\n%s", diff)
	}

	for _, msg := range []string{"intent=HassTurnOff", "intent=HassBroken"} {
		if !strings.Contains(logs.String(), msg) {
			t.Errorf("expected a warning mentioning %s", msg)
		}
	}
}

func TestExtract_Climate(t *testing.T) {
	batch := loadBatch(t)
	rows, _, err := newExtractor(false, nil).Extract(context.Background(), "climate", batch.Documents["climate"], batch.MergeCommon())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	if rows[0].Service != "climate.set_temperature" || rows[1].Service != "climate.get_temperature" {
		t.Errorf("services = %q, %q", rows[0].Service, rows[1].Service)
	}
	if rows[0].DefaultParameters != nil {
		t.Errorf("DefaultParameters = %+v, want nil", rows[0].DefaultParameters)
	}

	want := []string{
		"wie warm ist es im {area}",
		"wie warm ist es",
		"wie warm ist es in der {area}",
		"wie kalt ist es im {area}",
		"wie kalt ist es",
		"wie kalt ist es in der {area}",
	}
	if diff := cmp.Diff(want, rows[1].Patterns); diff != "" {
		t.Errorf("patterns mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_BothPathsAgree(t *testing.T) {
	batch := loadBatch(t)
	shared := batch.MergeCommon()
	sortStrings := cmpopts.SortSlices(func(a, b string) bool { return a < b })

	for _, domain := range batch.Domains() {
		doc := batch.Documents[domain]
		custom, _, err := newExtractor(false, nil).Extract(context.Background(), domain, doc, shared)
		if err != nil {
			t.Fatalf("Extract(custom) error = %v", err)
		}
		external, stats, err := newExtractor(true, nil).Extract(context.Background(), domain, doc, shared)
		if err != nil {
			t.Fatalf("Extract(external) error = %v", err)
		}

		if len(custom) != len(external) {
			t.Fatalf("%s: %d custom rows, %d external rows", domain, len(custom), len(external))
		}
		for i := range custom {
			if external[i].Path != orchestrator.PathExternal {
				t.Errorf("%s/%s path = %q, want external", domain, external[i].Intent, external[i].Path)
			}
			if diff := cmp.Diff(custom[i].Patterns, external[i].Patterns, sortStrings); diff != "" {
				t.Errorf("%s/%s pattern sets differ (-custom +external):\n%s", domain, custom[i].Intent, diff)
			}
		}

		// HassBroken references an unknown rule: the sampler fails and the
		// custom path comes up empty too.
		if domain == "light" && (stats.Fallbacks != 1 || stats.Dropped != 2) {
			t.Errorf("light stats = %+v, want 1 fallback and 2 dropped", stats)
		}
	}
}

func TestExtract_DefaultLanguage(t *testing.T) {
	doc, err := intents.Parse([]byte("intents:\n  HassNevermind:\n    data:\n      - sentences: [vergiss es]\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	ex := intents.NewExtractor(orchestrator.New(orchestrator.Options{Logger: fixtures.Logger(nil)}),
		intents.WithLanguage("en"), intents.WithSource("inbox"), intents.WithLogger(fixtures.Logger(nil)))
	rows, _, err := ex.Extract(context.Background(), "homeassistant", doc, nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Language != "en" || rows[0].Source != "inbox" {
		t.Errorf("rows = %+v, want one en/inbox row", rows)
	}
}
