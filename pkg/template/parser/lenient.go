package parser

import (
	"strings"

	"alice-hq/hassil-parser/pkg/template/ast"
)

// lenientParser builds a tree from a template whose delimiters have been
// paired up front.
type lenientParser struct {
	src   string
	pairs map[int]int // opening index -> closing index
}

func parseLenient(src string) ast.Sequence {
	p := &lenientParser{src: src, pairs: pairDelimiters(src)}
	return p.sequence(0, len(src))
}

// pairDelimiters matches '(' with ')' and '[' with ']' in one pass. A
// closer pairs with the nearest open delimiter of its kind; openers left
// above it on the stack become literal text. Rule and slot tokens are
// skipped as atoms.
func pairDelimiters(src string) map[int]int {
	pairs := make(map[int]int)
	var stack []int

	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '<':
			if end := ruleTokenEnd(src, i); end > 0 {
				i = end - 1
			}
		case '{':
			if end := slotTokenEnd(src, i); end > 0 {
				i = end - 1
			}
		case '(', '[':
			stack = append(stack, i)
		case ')', ']':
			open := byte('(')
			if src[i] == ']' {
				open = '['
			}
			for k := len(stack) - 1; k >= 0; k-- {
				if src[stack[k]] == open {
					pairs[stack[k]] = i
					stack = stack[:k]
					break
				}
			}
		}
	}

	return pairs
}

// sequence parses src[lo:hi].
func (p *lenientParser) sequence(lo, hi int) ast.Sequence {
	var seq ast.Sequence
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			seq = append(seq, ast.Text(text.String()))
			text.Reset()
		}
	}

	for i := lo; i < hi; i++ {
		c := p.src[i]
		switch c {
		case '<':
			if end := ruleTokenEnd(p.src, i); end > 0 && end <= hi {
				flush()
				n := ast.Rule(p.src[i+1 : end-1])
				n.Location = ast.Location{Template: p.src, Offset: i}
				seq = append(seq, n)
				i = end - 1
				continue
			}
		case '{':
			if end := slotTokenEnd(p.src, i); end > 0 && end <= hi {
				flush()
				n := ast.Slot(p.src[i+1 : end-1])
				n.Location = ast.Location{Template: p.src, Offset: i}
				seq = append(seq, n)
				i = end - 1
				continue
			}
		case '(':
			if end, ok := p.pairs[i]; ok && end < hi {
				flush()
				n := ast.Alternation(p.branches(i+1, end)...)
				n.Location = ast.Location{Template: p.src, Offset: i}
				seq = append(seq, n)
				i = end
				continue
			}
		case '[':
			if end, ok := p.pairs[i]; ok && end < hi {
				flush()
				n := ast.Optional(p.sequence(i+1, end))
				n.Location = ast.Location{Template: p.src, Offset: i}
				seq = append(seq, n)
				i = end
				continue
			}
		}
		text.WriteByte(c)
	}

	flush()
	return seq
}

// branches splits src[lo:hi] at every '|' that is not nested inside a
// paired delimiter or a token.
func (p *lenientParser) branches(lo, hi int) []ast.Sequence {
	var out []ast.Sequence
	start := lo

	for i := lo; i < hi; i++ {
		switch p.src[i] {
		case '<':
			if end := ruleTokenEnd(p.src, i); end > 0 && end <= hi {
				i = end - 1
			}
		case '{':
			if end := slotTokenEnd(p.src, i); end > 0 && end <= hi {
				i = end - 1
			}
		case '(', '[':
			if end, ok := p.pairs[i]; ok && end < hi {
				i = end
			}
		case '|':
			out = append(out, p.sequence(start, i))
			start = i + 1
		}
	}

	return append(out, p.sequence(start, hi))
}
