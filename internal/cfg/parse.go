package cfg

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrSyntax = errors.New("cfg syntax")

// Parse reads a predicate such as `all(unix, not(feature = "x"))`.
func Parse(s string) (Expr, error) {
	p := &parser{src: s}
	e, err := p.expr()
	if err != nil {
		return Expr{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Expr{}, fmt.Errorf("%w: trailing input at %d in %q", ErrSyntax, p.pos, s)
	}
	return e, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) expr() (Expr, error) {
	name := p.ident()
	if name == "" {
		return Expr{}, fmt.Errorf("%w: expected name at %d in %q", ErrSyntax, p.pos, p.src)
	}
	switch p.peek() {
	case '=':
		p.pos++
		if p.peek() != '"' {
			return Expr{}, fmt.Errorf("%w: expected string after %s =", ErrSyntax, name)
		}
		p.pos++
		end := strings.IndexByte(p.src[p.pos:], '"')
		if end < 0 {
			return Expr{}, fmt.Errorf("%w: unterminated string", ErrSyntax)
		}
		value := p.src[p.pos : p.pos+end]
		p.pos += end + 1
		return Expr{Op: OpAtom, Key: name, Value: value}, nil
	case '(':
		var op Op
		switch name {
		case "not":
			op = OpNot
		case "all":
			op = OpAll
		case "any":
			op = OpAny
		default:
			return Expr{}, fmt.Errorf("%w: unknown operator %s", ErrSyntax, name)
		}
		p.pos++
		var args []Expr
		for p.peek() != ')' {
			arg, err := p.expr()
			if err != nil {
				return Expr{}, err
			}
			args = append(args, arg)
			if p.peek() == ',' {
				p.pos++
				continue
			}
			if p.peek() != ')' {
				return Expr{}, fmt.Errorf("%w: expected , or ) at %d", ErrSyntax, p.pos)
			}
		}
		p.pos++
		if op == OpNot && len(args) != 1 {
			return Expr{}, fmt.Errorf("%w: not() takes one argument", ErrSyntax)
		}
		return Expr{Op: op, Key: name, Args: args}, nil
	default:
		return Expr{Op: OpAtom, Key: name}, nil
	}
}
