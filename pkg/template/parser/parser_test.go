package parser

import (
	"errors"
	"testing"

	"alice-hq/hassil-parser/pkg/template/ast"
	tmplErrors "alice-hq/hassil-parser/pkg/template/errors"
)

func TestParse_Lenient(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string // round-tripped template syntax
		types    []ast.NodeType
	}{
		{
			name:     "plain text",
			template: "turn on the light",
			want:     "turn on the light",
			types:    []ast.NodeType{ast.NodeText},
		},
		{
			name:     "alternation",
			template: "turn (on|off)",
			want:     "turn (on|off)",
			types:    []ast.NodeType{ast.NodeText, ast.NodeAlternation},
		},
		{
			name:     "optional rule and slot",
			template: "[the] <name> {area}",
			want:     "[the] <name> {area}",
			types:    []ast.NodeType{ast.NodeOptional, ast.NodeText, ast.NodeRule, ast.NodeText, ast.NodeSlot},
		},
		{
			name:     "unclosed paren is literal",
			template: "turn (on",
			want:     "turn (on",
			types:    []ast.NodeType{ast.NodeText},
		},
		{
			name:     "stray closer is literal",
			template: "on] off)",
			want:     "on] off)",
			types:    []ast.NodeType{ast.NodeText},
		},
		{
			name:     "top level pipe is literal",
			template: "a|b",
			want:     "a|b",
			types:    []ast.NodeType{ast.NodeText},
		},
		{
			name:     "malformed rule is literal",
			template: "<not a rule>",
			want:     "<not a rule>",
			types:    []ast.NodeType{ast.NodeText},
		},
		{
			name:     "crossed delimiters",
			template: "( [ ) ]",
			want:     "( [ ) ]",
			types:    []ast.NodeType{ast.NodeAlternation, ast.NodeText},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := Parse(tt.template)
			if got := seq.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if len(seq) != len(tt.types) {
				t.Fatalf("len(seq) = %d, want %d (%#v)", len(seq), len(tt.types), seq)
			}
			for i, n := range seq {
				if n.Type != tt.types[i] {
					t.Errorf("seq[%d].Type = %q, want %q", i, n.Type, tt.types[i])
				}
			}
		})
	}
}

func TestParse_LenientBranches(t *testing.T) {
	seq := Parse("(a (b|c)|[x|y]|d)")
	if len(seq) != 1 || seq[0].Type != ast.NodeAlternation {
		t.Fatalf("expected a single alternation, got %#v", seq)
	}

	branches := seq[0].Branches
	if len(branches) != 3 {
		t.Fatalf("len(Branches) = %d, want 3", len(branches))
	}
	if !branches[0].Has(ast.NodeAlternation) {
		t.Error("first branch should contain the nested alternation")
	}
	// '|' inside an optional span is literal in lenient mode
	opt := branches[1][0]
	if opt.Type != ast.NodeOptional || len(opt.Branches) != 1 {
		t.Fatalf("second branch = %#v, want single-branch optional", branches[1])
	}
	if got := opt.Branches[0].Render(); got != "x|y" {
		t.Errorf("optional content = %q, want %q", got, "x|y")
	}
}

func TestParse_UnicodeRuleName(t *testing.T) {
	seq := Parse("<gerät> an")
	if seq[0].Type != ast.NodeRule || seq[0].Value != "gerät" {
		t.Errorf("seq[0] = %#v, want rule gerät", seq[0])
	}
}

func TestParseStrict(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"optional alternatives", "[the|a] light", "[the|a] light"},
		{"top level alternation", "on|off", "(on|off)"},
		{"nested", "((a|b) c|d)", "((a|b) c|d)"},
		{"escape", `a \(b\)`, "a (b)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := ParseStrict(tt.template)
			if err != nil {
				t.Fatalf("ParseStrict() error = %v", err)
			}
			if got := seq.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStrict_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		errType  tmplErrors.ErrorType
		offset   int
	}{
		{"unclosed paren", "turn (on|off", tmplErrors.ErrorTypeSyntax, 5},
		{"unclosed bracket", "[the light", tmplErrors.ErrorTypeSyntax, 0},
		{"stray closer", "on)", tmplErrors.ErrorTypeSyntax, 2},
		{"crossed", "(a]", tmplErrors.ErrorTypeSyntax, 2},
		{"malformed rule", "<a b>", tmplErrors.ErrorTypeSyntax, 0},
		{"unclosed slot", "{name", tmplErrors.ErrorTypeSyntax, 0},
		{"dangling escape", `a\`, tmplErrors.ErrorTypeSyntax, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStrict(tt.template)
			if err == nil {
				t.Fatal("ParseStrict() succeeded, want error")
			}
			var tErr *tmplErrors.Error
			if !errors.As(err, &tErr) {
				t.Fatalf("error type = %T, want *errors.Error", err)
			}
			if tErr.Type != tt.errType {
				t.Errorf("Type = %q, want %q", tErr.Type, tt.errType)
			}
			if tErr.Location.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", tErr.Location.Offset, tt.offset)
			}
		})
	}
}

func TestParseStrict_MaxDepth(t *testing.T) {
	_, err := NewParser().WithStrictMode(true).WithMaxDepth(2).Parse("(((a)))")
	if !errors.Is(err, &tmplErrors.Error{Type: tmplErrors.ErrorTypeLimit}) {
		t.Errorf("error = %v, want limit error", err)
	}
}
