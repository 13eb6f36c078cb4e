package metadata

import (
	"fmt"
	"strings"
	"unicode"
)

// typeExpr is a parsed, unresolved type expression from a metadata document
type typeExpr struct {
	Name string
	Args []*typeExpr
	// Suffixes lists array ranks (>= 1) and pointers (0) in source order.
	Suffixes []int
}

// parseTypeExpr parses CLR-like type syntax: Ns.Name, Outer+Inner,
// Ns.List<Ns.Object>, T[], T[,] and T*.
func parseTypeExpr(src string) (*typeExpr, error) {
	p := &typeParser{src: src}
	expr, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d in type %q", p.src[p.pos], p.pos, src)
	}
	return expr, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) parse() (*typeExpr, error) {
	p.skipSpace()
	name := p.name()
	if name == "" {
		return nil, fmt.Errorf("expected type name at offset %d in %q", p.pos, p.src)
	}
	expr := &typeExpr{Name: name}

	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		for {
			arg, err := p.parse()
			if err != nil {
				return nil, err
			}
			expr.Args = append(expr.Args, arg)
			p.skipSpace()
			switch p.peek() {
			case ',':
				p.pos++
				continue
			case '>':
				p.pos++
			default:
				return nil, fmt.Errorf("expected ',' or '>' at offset %d in %q", p.pos, p.src)
			}
			break
		}
	}

	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			expr.Suffixes = append(expr.Suffixes, 0)
			continue
		case '[':
			p.pos++
			rank := 1
			for p.peek() == ',' || p.peek() == ' ' {
				if p.peek() == ',' {
					rank++
				}
				p.pos++
			}
			if p.peek() != ']' {
				return nil, fmt.Errorf("unterminated array suffix in %q", p.src)
			}
			p.pos++
			expr.Suffixes = append(expr.Suffixes, rank)
			continue
		}
		return expr, nil
	}
}

func (p *typeParser) name() string {
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_.+`", r) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *typeParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

// splitTypeName splits "Ns.Outer+Inner" into namespace "Ns" and the
// nesting chain ["Outer", "Inner"]. Arity suffixes are stripped.
func splitTypeName(full string) (namespace string, chain []string) {
	outer := full
	var nested []string
	if i := strings.Index(full, "+"); i >= 0 {
		outer = full[:i]
		nested = strings.Split(full[i+1:], "+")
	}
	if i := strings.LastIndex(outer, "."); i >= 0 {
		namespace = outer[:i]
		outer = outer[i+1:]
	}
	chain = append([]string{outer}, nested...)
	for i, c := range chain {
		chain[i] = stripArity(c)
	}
	return namespace, chain
}

func stripArity(name string) string {
	if i := strings.IndexByte(name, '`'); i >= 0 {
		return name[:i]
	}
	return name
}
