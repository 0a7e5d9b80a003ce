package expand

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"alice-hq/hassil-parser/pkg/grammar"

	"github.com/google/go-cmp/cmp"
)

func quietEngine(opts ...Option) *Engine {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return New(append([]Option{WithLogger(logger)}, opts...)...)
}

func TestExpandTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		rules    grammar.Table
		limit    int
		want     []string
	}{
		{
			name:     "alternation",
			template: "turn (on|off)",
			limit:    100,
			want:     []string{"turn on", "turn off"},
		},
		{
			name:     "missing rule",
			template: "<color> light",
			limit:    100,
			want:     []string{"light"},
		},
		{
			name:     "optional kept before removed",
			template: "a [b] c",
			limit:    100,
			want:     []string{"a b c", "a c"},
		},
		{
			// Span content is spliced in unchanged; no separating spaces
			// are added around it.
			name:     "optional without surrounding spaces",
			template: "a[b]c",
			limit:    100,
			want:     []string{"abc", "ac"},
		},
		{
			name:     "rules resolve before structure",
			template: "schalte <name> (an|ein)",
			rules:    grammar.Table{"name": {"[das] licht", "die lampe"}},
			limit:    100,
			want: []string{
				"schalte das licht an",
				"schalte licht an",
				"schalte das licht ein",
				"schalte licht ein",
				"schalte die lampe an",
				"schalte die lampe ein",
			},
		},
		{
			name:     "nested rules",
			template: "<outer>",
			rules: grammar.Table{
				"outer": {"<inner> x"},
				"inner": {"a", "b"},
			},
			limit: 100,
			want:  []string{"a x", "b x"},
		},
		{
			name:     "nested alternation innermost first",
			template: "(a|(b|c) d)",
			limit:    100,
			want:     []string{"a", "b d", "c d"},
		},
		{
			name:     "branches are trimmed",
			template: "( on | off ) light",
			limit:    100,
			want:     []string{"on light", "off light"},
		},
		{
			name:     "alternation inside optional",
			template: "[(the|a)] lamp",
			limit:    100,
			want:     []string{"the lamp", "lamp", "a lamp"},
		},
		{
			name:     "slots are preserved",
			template: "set {name} to {brightness}%",
			limit:    100,
			want:     []string{"set {name} to {brightness}%"},
		},
		{
			name:     "duplicates and empty strings dropped",
			template: "[a] [a]",
			limit:    100,
			want:     []string{"a a", "a"},
		},
		{
			name:     "unmatched paren is literal",
			template: "turn (on|off",
			limit:    100,
			want:     []string{"turn (on|off"},
		},
		{
			name:     "unmatched bracket is literal",
			template: "lights]",
			limit:    100,
			want:     []string{"lights]"},
		},
		{
			name:     "pipe inside optional is literal",
			template: "[a|b] c",
			limit:    100,
			want:     []string{"a|b c", "c"},
		},
		{
			name:     "cap truncates",
			template: "(a|b|c|d)",
			limit:    2,
			want:     []string{"a", "b"},
		},
		{
			name:     "zero cap",
			template: "(a|b)",
			limit:    0,
			want:     nil,
		},
		{
			name:     "whitespace collapsed",
			template: "  turn \t on  ",
			limit:    100,
			want:     []string{"turn on"},
		},
		{
			name:     "optional only",
			template: "[x]",
			limit:    100,
			want:     []string{"x"},
		},
	}

	engine := quietEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ExpandTemplate(tt.template, tt.rules, tt.limit)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExpandTemplate(%q) mismatch (-want +got):\n%s", tt.template, diff)
			}
		})
	}
}

func TestExpandTemplate_LiteralRule(t *testing.T) {
	rules := grammar.Rules{
		"state": grammar.Literal("(an|aus)"),
		"what":  grammar.List{grammar.Plain("licht"), grammar.Tagged{In: "lampe", Out: "lamp"}},
	}
	table := rules.Alternatives(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	got := quietEngine().ExpandTemplate("<what> <state>", table, 100)
	want := []string{"licht an", "licht aus", "lampe an", "lampe aus"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExpandTemplate() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandTemplate_Cycles(t *testing.T) {
	tests := []struct {
		name  string
		rules grammar.Table
		want  []string
	}{
		{
			name:  "self reference",
			rules: grammar.Table{"a": {"x <a>"}},
			want:  []string{"x"},
		},
		{
			name:  "mutual reference",
			rules: grammar.Table{"a": {"<b> 1"}, "b": {"<a> 2"}},
			want:  []string{"2 1"},
		},
		{
			name:  "reference inside alternation",
			rules: grammar.Table{"a": {"(y|<a>) z"}},
			want:  []string{"y z", "z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			engine := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

			got := engine.ExpandTemplate("<a>", tt.rules, 100)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExpandTemplate() mismatch (-want +got):\n%s", diff)
			}
			if !strings.Contains(buf.String(), "rule references itself") {
				t.Errorf("expected a cycle warning, logs:\n%s", buf.String())
			}
		})
	}
}

func TestExpandTemplate_MaxRuleDepth(t *testing.T) {
	rules := grammar.Table{
		"r0": {"<r1> a"},
		"r1": {"<r2> b"},
		"r2": {"<r3> c"},
		"r3": {"d"},
	}

	got := quietEngine(WithMaxRuleDepth(2)).ExpandTemplate("<r0>", rules, 10)
	if diff := cmp.Diff([]string{"b a"}, got); diff != "" {
		t.Errorf("ExpandTemplate() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandTemplate_ExplosionGuard(t *testing.T) {
	alts := make([]string, 0, 31)
	for range 30 {
		alts = append(alts, "same")
	}
	alts = append(alts, "late")
	rules := grammar.Table{"x": alts}

	got := quietEngine(WithExplosionFactor(10)).ExpandTemplate("<x>", rules, 2)
	if diff := cmp.Diff([]string{"same"}, got); diff != "" {
		t.Errorf("guarded expansion mismatch (-want +got):\n%s", diff)
	}

	got = quietEngine(WithExplosionFactor(100)).ExpandTemplate("<x>", rules, 2)
	if diff := cmp.Diff([]string{"same", "late"}, got); diff != "" {
		t.Errorf("unguarded expansion mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandTemplate_LargeProductStopsEarly(t *testing.T) {
	template := strings.Repeat("[a|b|c] (x|y|z) ", 40)

	got := quietEngine().ExpandTemplate(template, nil, 5)
	if len(got) != 5 {
		t.Errorf("len(ExpandTemplate()) = %d, want 5", len(got))
	}
}

func TestExpandTemplate_StrayRuleTokens(t *testing.T) {
	var buf bytes.Buffer
	engine := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	got := engine.ExpandTemplate("say <open>b> now", grammar.Table{"open": {"<"}}, 10)
	if diff := cmp.Diff([]string{"say now"}, got); diff != "" {
		t.Errorf("ExpandTemplate() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "removed rule token") {
		t.Errorf("expected a stray token warning, logs:\n%s", buf.String())
	}
}

func TestExpandTemplate_WarnsOncePerRule(t *testing.T) {
	var buf bytes.Buffer
	engine := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	engine.ExpandTemplate("(a|b|c) <missing> [x] <missing>", nil, 100)
	if n := strings.Count(buf.String(), "expansion rule not found"); n != 1 {
		t.Errorf("warnings = %d, want 1, logs:\n%s", n, buf.String())
	}
}

func TestExpandSentences(t *testing.T) {
	sentences := []string{"(a|b)", "(b|c)", "d"}

	tests := []struct {
		limit int
		want  []string
	}{
		{limit: 10, want: []string{"a", "b", "c", "d"}},
		{limit: 3, want: []string{"a", "b", "c"}},
		{limit: 2, want: []string{"a", "b"}},
		{limit: 0, want: nil},
	}

	engine := quietEngine()
	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit=%d", tt.limit), func(t *testing.T) {
			got := engine.ExpandSentences(sentences, nil, tt.limit)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExpandSentences() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

var propertyTemplates = []string{
	"turn (on|off) [the] <name>",
	"<a> <b> <missing>",
	"[[nested] optional] (x|(y|z))",
	"(unbalanced [brackets)",
	"<<a>>",
	"<a<b>>",
	"set {slot} [to] <b>",
	"  spaced   (a |  b )  ",
	"",
}

var propertyRules = grammar.Table{
	"name": {"light", "(lamp|bulb)"},
	"a":    {"<b> one", "two"},
	"b":    {"[three]", "<a>"},
}

func TestProperty_CapInvariant(t *testing.T) {
	engine := quietEngine()
	for limit := range 8 {
		got := engine.ExpandSentences(propertyTemplates, propertyRules, limit)
		if len(got) > limit {
			t.Errorf("len(ExpandSentences(limit=%d)) = %d", limit, len(got))
		}
		for _, tmpl := range propertyTemplates {
			if got := engine.ExpandTemplate(tmpl, propertyRules, limit); len(got) > limit {
				t.Errorf("len(ExpandTemplate(%q, limit=%d)) = %d", tmpl, limit, len(got))
			}
		}
	}
}

func TestProperty_NoRuleTokens(t *testing.T) {
	token := regexp.MustCompile(`<\w+>`)
	engine := quietEngine()

	for _, tmpl := range propertyTemplates {
		for _, p := range engine.ExpandTemplate(tmpl, propertyRules, 100) {
			if token.MatchString(p) {
				t.Errorf("ExpandTemplate(%q) produced %q", tmpl, p)
			}
		}
	}
}

func TestProperty_OutputIsNormalized(t *testing.T) {
	engine := quietEngine()
	for _, tmpl := range propertyTemplates {
		seen := make(map[string]bool)
		for _, p := range engine.ExpandTemplate(tmpl, propertyRules, 100) {
			if p == "" || Normalize(p) != p {
				t.Errorf("ExpandTemplate(%q) produced unnormalized %q", tmpl, p)
			}
			if seen[p] {
				t.Errorf("ExpandTemplate(%q) produced duplicate %q", tmpl, p)
			}
			seen[p] = true
		}
	}
}
