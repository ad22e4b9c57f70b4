// Package parser turns a query token list into a boolean expression tree.
//
// Grammar, loosest binding first:
//
//	query    := or_expr
//	or_expr  := and_expr ( '||' and_expr )*
//	and_expr := atom ( ('&&' | '&!') atom )*
//	atom     := TERM | '(' or_expr ')'
//
// '&&' and '&!' share a precedence level and associate to the left.
package parser

import (
	"fmt"

	"github.com/pollikk/pre-inf1101-p2-v2/pkg/adt"
	apperrors "github.com/pollikk/pre-inf1101-p2-v2/pkg/errors"
)

const (
	OpAnd    = "&&"
	OpOr     = "||"
	OpAndNot = "&!"
	OpOpen   = "("
	OpClose  = ")"
)

// SyntaxError describes why a token list is not a valid query. Its message
// is meant to be shown to the user as is.
type SyntaxError struct {
	Msg string
	// Pos is the index of the offending token, or the token count when the
	// input ended early.
	Pos int
}

func (e *SyntaxError) Error() string { return e.Msg }

func (e *SyntaxError) Unwrap() error { return apperrors.ErrMalformedQuery }

// Parse builds the expression tree for tokens. The list is read but not
// modified. On failure the returned error is a *SyntaxError.
func Parse(tokens *adt.List[string]) (Node, error) {
	p := &parser{tokens: tokens.Slice()}
	if len(p.tokens) == 0 {
		return nil, p.fail("empty query")
	}
	n, err := p.orExpr("")
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.unexpected()
	}
	return n, nil
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() string {
	if p.done() {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *parser) next() string {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *parser) fail(format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Pos: p.pos}
}

// unexpected reports the token that stopped an expression where an
// operator or the end of the group was due.
func (p *parser) unexpected() *SyntaxError {
	if tok := p.peek(); tok != OpClose {
		return p.fail("expected operator, found `%s`", tok)
	}
	return p.fail("unmatched parenthesis")
}

// orExpr parses a disjunction. prev is the token just consumed before it,
// used for diagnostics ("" at the start of the query).
func (p *parser) orExpr(prev string) (Node, error) {
	left, err := p.andExpr(prev)
	if err != nil {
		return nil, err
	}
	for p.peek() == OpOr {
		op := p.next()
		right, err := p.andExpr(op)
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) andExpr(prev string) (Node, error) {
	left, err := p.atom(prev)
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != OpAnd && op != OpAndNot {
			return left, nil
		}
		p.next()
		right, err := p.atom(op)
		if err != nil {
			return nil, err
		}
		if op == OpAnd {
			left = &And{Left: left, Right: right}
		} else {
			left = &AndNot{Left: left, Right: right}
		}
	}
}

func (p *parser) atom(prev string) (Node, error) {
	if p.done() {
		if prev == OpOpen {
			return nil, p.fail("unmatched parenthesis")
		}
		return nil, p.fail("expected term after `%s`", prev)
	}

	tok := p.peek()
	switch tok {
	case OpOpen:
		p.next()
		inner, err := p.orExpr(OpOpen)
		if err != nil {
			return nil, err
		}
		if p.done() {
			return nil, p.fail("unmatched parenthesis")
		}
		if p.peek() != OpClose {
			return nil, p.unexpected()
		}
		p.next()
		return inner, nil
	case OpClose, OpAnd, OpOr, OpAndNot:
		switch {
		case prev == "" && tok == OpClose:
			return nil, p.fail("unmatched parenthesis")
		case prev == "":
			return nil, p.fail("expected term, found `%s`", tok)
		default:
			return nil, p.fail("expected term after `%s`", prev)
		}
	}
	p.next()
	return &Term{Value: tok}, nil
}
