// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package selector

import (
	"fmt"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenString
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
	tokenEq
	tokenNotEq
)

type token struct {
	kind  tokenKind
	value string
	col   int
}

func (t token) String() string {
	switch t.kind {
	case tokenEOF:
		return "end of expression"
	case tokenString:
		return fmt.Sprintf("string %q", t.value)
	default:
		return fmt.Sprintf("'%s'", t.value)
	}
}

func isIdentChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.'
}

func tokenize(src string) ([]token, error) {
	var tokens []token
	runes := []rune(src)

	for i := 0; i < len(runes); {
		r := runes[i]
		col := i + 1

		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			tokens = append(tokens, token{tokenLParen, "(", col})
			i++

		case r == ')':
			tokens = append(tokens, token{tokenRParen, ")", col})
			i++

		case r == '=' || r == '!':
			if i+1 >= len(runes) || runes[i+1] != '=' {
				return nil, fmt.Errorf("unexpected character '%c' at col %d", r, col)
			}
			kind := tokenEq
			if r == '!' {
				kind = tokenNotEq
			}
			tokens = append(tokens, token{kind, string(runes[i : i+2]), col})
			i += 2

		case r == '"' || r == '\'':
			end := i + 1
			for end < len(runes) && runes[end] != r {
				end++
			}
			if end >= len(runes) {
				return nil, fmt.Errorf("unterminated string starting at col %d", col)
			}
			tokens = append(tokens, token{tokenString, string(runes[i+1 : end]), col})
			i = end + 1

		case isIdentChar(r):
			end := i
			for end < len(runes) && isIdentChar(runes[end]) {
				end++
			}
			word := string(runes[i:end])
			kind := tokenIdent
			switch word {
			case "and":
				kind = tokenAnd
			case "or":
				kind = tokenOr
			case "not":
				kind = tokenNot
			}
			tokens = append(tokens, token{kind, word, col})
			i = end

		default:
			return nil, fmt.Errorf("unexpected character '%c' at col %d", r, col)
		}
	}

	return append(tokens, token{tokenEOF, "", len(runes) + 1}), nil
}
