// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strings"

	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/syntax"
)

const concatFuncName = "__concat__"

// expression is a single ${{ }} body translated to a starlark expression.
type expression struct {
	source string
	expr   syntax.Expr
	names  []string
}

func compileExpression(source string) (result *expression, resultErr error) {
	// The parser reports some syntax errors by panicking
	defer func() {
		if err := recover(); err != nil {
			result = nil
			if typedErr, ok := err.(error); ok {
				resultErr = typedErr
			} else {
				resultErr = fmt.Errorf("(p) %s", err)
			}
		}
	}()

	translated, err := translate(strings.TrimSpace(source))
	if err != nil {
		return nil, err
	}

	expr, err := syntax.ParseExpr("${{"+source+"}}", translated, syntax.BlockScanner)
	if err != nil {
		return nil, err
	}

	return &expression{source: source, expr: expr, names: freeNames(expr)}, nil
}

// translate rewrites filter pipes and ~ concatenation into calls:
// 'a ~ b | f(x)' becomes '__concat__(a, __filter_f(b, x))'.
func translate(src string) (string, error) {
	if len(src) == 0 {
		return "", fmt.Errorf("empty expression")
	}

	parts := splitTopLevel(src, '~')
	for _, part := range parts {
		if len(strings.TrimSpace(part)) == 0 {
			// unary ~ is left to starlark
			parts = []string{src}
			break
		}
	}

	var translatedParts []string
	for _, part := range parts {
		translated, err := translatePipeline(part)
		if err != nil {
			return "", err
		}
		translatedParts = append(translatedParts, translated)
	}

	if len(translatedParts) == 1 {
		return translatedParts[0], nil
	}
	return concatFuncName + "(" + strings.Join(translatedParts, ", ") + ")", nil
}

func translatePipeline(src string) (string, error) {
	segments := splitTopLevel(src, '|')
	result := "(" + strings.TrimSpace(segments[0]) + ")"

	for _, segment := range segments[1:] {
		segment = strings.TrimSpace(segment)

		nameEnd := 0
		for nameEnd < len(segment) && isNameChar(segment[nameEnd]) {
			nameEnd++
		}
		name, rest := segment[:nameEnd], strings.TrimSpace(segment[nameEnd:])

		if _, found := filters[name]; !found {
			return "", fmt.Errorf("no filter named '%s'", name)
		}

		switch {
		case len(rest) == 0:
			result = filterPrefix + name + "(" + result + ")"

		case strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")"):
			args := strings.TrimSpace(rest[1 : len(rest)-1])
			if len(args) == 0 {
				result = filterPrefix + name + "(" + result + ")"
			} else {
				result = filterPrefix + name + "(" + result + ", " + args + ")"
			}

		default:
			return "", fmt.Errorf("unexpected '%s' after filter '%s'", rest, name)
		}
	}

	return result, nil
}

// splitTopLevel splits on sep outside of string literals and brackets.
func splitTopLevel(src string, sep byte) []string {
	var (
		parts []string
		depth int
		quote byte
		start int
	)

	for i := 0; i < len(src); i++ {
		ch := src[i]

		if quote != 0 {
			switch ch {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}

		switch ch {
		case '"', '\'':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, src[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, src[start:])
}

func isNameChar(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

// freeNames lists identifiers an expression looks up, excluding
// attribute names and keyword argument names.
func freeNames(expr syntax.Expr) []string {
	var names []string
	seen := map[string]struct{}{}

	var visit func(syntax.Node) bool
	visit = func(node syntax.Node) bool {
		switch typedNode := node.(type) {
		case *syntax.Ident:
			if _, found := seen[typedNode.Name]; !found {
				seen[typedNode.Name] = struct{}{}
				names = append(names, typedNode.Name)
			}

		case *syntax.DotExpr:
			syntax.Walk(typedNode.X, visit)
			return false

		case *syntax.CallExpr:
			syntax.Walk(typedNode.Fn, visit)
			for _, arg := range typedNode.Args {
				if binExpr, ok := arg.(*syntax.BinaryExpr); ok && binExpr.Op == syntax.EQ {
					syntax.Walk(binExpr.Y, visit)
					continue
				}
				syntax.Walk(arg, visit)
			}
			return false
		}
		return true
	}

	syntax.Walk(expr, visit)
	return names
}

func (e *expression) eval(env starlark.StringDict) (starlark.Value, error) {
	thread := &starlark.Thread{Name: "template"}
	return starlark.EvalExpr(thread, e.expr, env)
}
