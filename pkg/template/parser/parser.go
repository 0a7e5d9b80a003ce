package parser

import (
	"unicode"
	"unicode/utf8"

	"alice-hq/hassil-parser/pkg/template/ast"
)

// Parser parses sentence templates into ast sequences.
type Parser struct {
	strictMode bool   // Report malformed constructs instead of keeping them as text
	maxDepth   int    // Maximum nesting depth in strict mode (default: 32)
	origin     string // Reported as the template in locations when set
}

// NewParser creates a lenient parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxDepth: 32,
	}
}

// WithStrictMode enables strict parsing.
func (p *Parser) WithStrictMode(strict bool) *Parser {
	p.strictMode = strict
	return p
}

// WithMaxDepth sets the maximum nesting depth for strict parsing.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	if depth > 0 {
		p.maxDepth = depth
	}
	return p
}

// WithOrigin labels locations with name instead of the template text,
// e.g. the rule a fragment belongs to.
func (p *Parser) WithOrigin(name string) *Parser {
	p.origin = name
	return p
}

// Parse parses a single template. In lenient mode the error is always nil.
func (p *Parser) Parse(src string) (ast.Sequence, error) {
	if !p.strictMode {
		return parseLenient(src), nil
	}

	s := &strictParser{src: src, maxDepth: p.maxDepth, origin: p.origin}
	return s.parse()
}

// Parse parses a template in lenient mode.
func Parse(src string) ast.Sequence {
	return parseLenient(src)
}

// ParseStrict parses a template in strict mode with default limits.
func ParseStrict(src string) (ast.Sequence, error) {
	return NewParser().WithStrictMode(true).Parse(src)
}

// ruleTokenEnd returns the index just past a "<name>" token starting at i,
// or -1 if src[i:] does not start with one. Names are non-empty runs of
// letters, digits and underscores.
func ruleTokenEnd(src string, i int) int {
	if i >= len(src) || src[i] != '<' {
		return -1
	}
	j := i + 1
	for j < len(src) {
		r, size := utf8.DecodeRuneInString(src[j:])
		if !isNameRune(r) {
			break
		}
		j += size
	}
	if j == i+1 || j >= len(src) || src[j] != '>' {
		return -1
	}
	return j + 1
}

// slotTokenEnd returns the index just past a "{name}" token starting at i,
// or -1 if the brace is not closed before another opening brace.
func slotTokenEnd(src string, i int) int {
	if i >= len(src) || src[i] != '{' {
		return -1
	}
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '{':
			return -1
		case '}':
			return j + 1
		}
	}
	return -1
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
