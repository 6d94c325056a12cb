// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package selector

import (
	"fmt"
)

// Expr is a parsed selector expression.
type Expr interface {
	eval(ns Namespace) (interface{}, error)
	names(into []string) []string
}

type identExpr struct{ name string }
type literalExpr struct{ val interface{} }
type notExpr struct{ x Expr }

type binaryExpr struct {
	op   tokenKind
	x, y Expr
}

// Parse parses a selector expression.
func Parse(src string) (Expr, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("parsing selector '%s': %w", src, err)
	}

	p := &parser{tokens: tokens}

	expr, err := p.parseOr()
	if err != nil {
		return nil, fmt.Errorf("parsing selector '%s': %w", src, err)
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, fmt.Errorf("parsing selector '%s': unexpected %s at col %d", src, tok, tok.col)
	}
	return expr, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (Expr, error) {
	x, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenOr {
		p.next()
		y, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		x = binaryExpr{tokenOr, x, y}
	}
	return x, nil
}

func (p *parser) parseAnd() (Expr, error) {
	x, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenAnd {
		p.next()
		y, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		x = binaryExpr{tokenAnd, x, y}
	}
	return x, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.peek().kind == tokenNot {
		p.next()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return notExpr{x}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	x, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if kind := p.peek().kind; kind == tokenEq || kind == tokenNotEq {
		p.next()
		y, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		return binaryExpr{kind, x, y}, nil
	}
	return x, nil
}

func (p *parser) parseAtom() (Expr, error) {
	tok := p.next()

	switch tok.kind {
	case tokenIdent:
		switch tok.value {
		case "True", "true":
			return literalExpr{true}, nil
		case "False", "false":
			return literalExpr{false}, nil
		case "None":
			return literalExpr{nil}, nil
		}
		return identExpr{tok.value}, nil

	case tokenString:
		return literalExpr{tok.value}, nil

	case tokenLParen:
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, fmt.Errorf("expected ')' at col %d, got %s", closing.col, closing)
		}
		return x, nil

	default:
		return nil, fmt.Errorf("unexpected %s at col %d", tok, tok.col)
	}
}
