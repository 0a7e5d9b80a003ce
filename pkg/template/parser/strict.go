package parser

import (
	"fmt"
	"strings"

	"alice-hq/hassil-parser/pkg/template/ast"
	tmplErrors "alice-hq/hassil-parser/pkg/template/errors"
)

// strictParser is a recursive-descent parser over the full template grammar:
//
//	sentence    = alternative { "|" alternative }
//	alternative = { item }
//	item        = "(" sentence ")" | "[" sentence "]" | "<" name ">"
//	            | "{" slot "}" | "\" any | text
type strictParser struct {
	src      string
	pos      int
	depth    int
	maxDepth int
	origin   string
}

func (p *strictParser) parse() (ast.Sequence, error) {
	branches, err := p.alternatives()
	if err != nil {
		return nil, err
	}

	if p.pos < len(p.src) {
		// alternatives only stops early on a stray closer
		return nil, p.errorf(tmplErrors.ErrorTypeSyntax, p.pos,
			fmt.Sprintf("Unexpected '%c' without matching opener", p.src[p.pos]), "")
	}

	if len(branches) == 1 {
		return branches[0], nil
	}
	return ast.Sequence{ast.Alternation(branches...)}, nil
}

// alternatives parses branches separated by '|' up to a closer or EOF.
func (p *strictParser) alternatives() ([]ast.Sequence, error) {
	var out []ast.Sequence
	for {
		seq, err := p.sequence()
		if err != nil {
			return nil, err
		}
		out = append(out, seq)

		if p.pos < len(p.src) && p.src[p.pos] == '|' {
			p.pos++
			continue
		}
		return out, nil
	}
}

// sequence parses items until '|', ')', ']' or EOF.
func (p *strictParser) sequence() (ast.Sequence, error) {
	var seq ast.Sequence
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			seq = append(seq, ast.Text(text.String()))
			text.Reset()
		}
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '|', ')', ']':
			flush()
			return seq, nil

		case '\\':
			if p.pos+1 >= len(p.src) {
				return nil, p.errorf(tmplErrors.ErrorTypeSyntax, p.pos, "Dangling escape at end of template", "")
			}
			text.WriteByte(p.src[p.pos+1])
			p.pos += 2

		case '(', '[':
			flush()
			n, err := p.group(c)
			if err != nil {
				return nil, err
			}
			seq = append(seq, n)

		case '<':
			end := ruleTokenEnd(p.src, p.pos)
			if end < 0 {
				return nil, p.errorf(tmplErrors.ErrorTypeSyntax, p.pos,
					"Malformed rule reference", tmplErrors.SuggestClosing('<'))
			}
			flush()
			n := ast.Rule(p.src[p.pos+1 : end-1])
			n.Location = p.location(p.pos)
			seq = append(seq, n)
			p.pos = end

		case '{':
			end := slotTokenEnd(p.src, p.pos)
			if end < 0 {
				return nil, p.errorf(tmplErrors.ErrorTypeSyntax, p.pos,
					"Unclosed slot", tmplErrors.SuggestClosing('{'))
			}
			name := strings.TrimSpace(p.src[p.pos+1 : end-1])
			if name == "" {
				return nil, p.errorf(tmplErrors.ErrorTypeSyntax, p.pos, "Empty slot name", "")
			}
			flush()
			n := ast.Slot(p.src[p.pos+1 : end-1])
			n.Location = p.location(p.pos)
			seq = append(seq, n)
			p.pos = end

		default:
			text.WriteByte(c)
			p.pos++
		}
	}

	flush()
	return seq, nil
}

// group parses "(...)" or "[...]" starting at the opener.
func (p *strictParser) group(open byte) (ast.Node, error) {
	start := p.pos
	closer := byte(')')
	if open == '[' {
		closer = ']'
	}

	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return ast.Node{}, p.errorf(tmplErrors.ErrorTypeLimit, start,
			fmt.Sprintf("Nesting deeper than %d levels", p.maxDepth), "")
	}

	p.pos++
	branches, err := p.alternatives()
	if err != nil {
		return ast.Node{}, err
	}

	if p.pos >= len(p.src) {
		return ast.Node{}, p.errorf(tmplErrors.ErrorTypeSyntax, start,
			fmt.Sprintf("Unclosed '%c'", open), tmplErrors.SuggestClosing(rune(open)))
	}
	if p.src[p.pos] != closer {
		return ast.Node{}, p.errorf(tmplErrors.ErrorTypeSyntax, p.pos,
			fmt.Sprintf("Expected '%c' to close '%c' at offset %d, found '%c'", closer, open, start, p.src[p.pos]),
			tmplErrors.SuggestClosing(rune(open)))
	}
	p.pos++

	var n ast.Node
	if open == '(' {
		n = ast.Alternation(branches...)
	} else {
		n = ast.Optional(branches...)
	}
	n.Location = p.location(start)
	return n, nil
}

func (p *strictParser) location(offset int) ast.Location {
	return ast.Location{Template: p.src, Offset: offset}
}

func (p *strictParser) errorf(errType tmplErrors.ErrorType, offset int, message, suggestion string) error {
	if p.origin != "" {
		message = fmt.Sprintf("%s (in %s)", message, p.origin)
	}
	return &tmplErrors.Error{
		Type:       errType,
		Message:    message,
		Location:   p.location(offset),
		Suggestion: suggestion,
	}
}
