// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package selector

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUndefined = errors.New("selector is not defined")

type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("selector '%s' is not defined", e.Name)
}

func (e *UndefinedError) Unwrap() error { return ErrUndefined }

// Namespace maps selector names to values. Values are interpreted with
// Python truthiness.
type Namespace map[string]interface{}

// Copy returns a shallow copy of the namespace.
func (ns Namespace) Copy() Namespace {
	result := make(Namespace, len(ns))
	for k, v := range ns {
		result[k] = v
	}
	return result
}

var operators = map[string]struct{}{"and": {}, "or": {}, "not": {}}

// Lenient returns a copy of ns in which every name referenced by src that
// is missing from ns is set to true. Names are found by splitting src on
// whitespace and stripping parentheses, so "(win" and "win)" refer to win.
func Lenient(src string, ns Namespace) Namespace {
	result := ns.Copy()
	for _, word := range strings.Fields(src) {
		name := strings.TrimRight(strings.TrimLeft(word, "("), ")")
		if _, isOp := operators[name]; isOp || name == "" {
			continue
		}
		if _, found := result[name]; !found {
			result[name] = true
		}
	}
	return result
}

// Eval parses and evaluates src against ns.
func Eval(src string, ns Namespace) (bool, error) {
	expr, err := Parse(src)
	if err != nil {
		return false, err
	}
	return EvalExpr(expr, ns)
}

// EvalExpr evaluates a parsed expression against ns.
func EvalExpr(expr Expr, ns Namespace) (bool, error) {
	val, err := expr.eval(ns)
	if err != nil {
		return false, err
	}
	return Truthy(val), nil
}

// Names returns identifiers referenced by expr in order of appearance.
func Names(expr Expr) []string {
	return expr.names(nil)
}

// Truthy follows Python's truth rules for the value kinds a namespace holds.
func Truthy(val interface{}) bool {
	switch typedVal := val.(type) {
	case nil:
		return false
	case bool:
		return typedVal
	case string:
		return typedVal != ""
	case int:
		return typedVal != 0
	case int64:
		return typedVal != 0
	case float64:
		return typedVal != 0
	case []interface{}:
		return len(typedVal) > 0
	default:
		return true
	}
}

func (e identExpr) eval(ns Namespace) (interface{}, error) {
	val, found := ns[e.name]
	if !found {
		return nil, &UndefinedError{Name: e.name}
	}
	return val, nil
}

func (e literalExpr) eval(Namespace) (interface{}, error) { return e.val, nil }

func (e notExpr) eval(ns Namespace) (interface{}, error) {
	val, err := e.x.eval(ns)
	if err != nil {
		return nil, err
	}
	return !Truthy(val), nil
}

func (e binaryExpr) eval(ns Namespace) (interface{}, error) {
	x, err := e.x.eval(ns)
	if err != nil {
		return nil, err
	}

	switch e.op {
	case tokenAnd:
		if !Truthy(x) {
			return x, nil
		}
		return e.y.eval(ns)

	case tokenOr:
		if Truthy(x) {
			return x, nil
		}
		return e.y.eval(ns)
	}

	y, err := e.y.eval(ns)
	if err != nil {
		return nil, err
	}

	equal := fmt.Sprintf("%T:%v", x, x) == fmt.Sprintf("%T:%v", y, y)
	if e.op == tokenEq {
		return equal, nil
	}
	return !equal, nil
}

func (e identExpr) names(into []string) []string   { return append(into, e.name) }
func (e literalExpr) names(into []string) []string { return into }
func (e notExpr) names(into []string) []string     { return e.x.names(into) }

func (e binaryExpr) names(into []string) []string {
	return e.y.names(e.x.names(into))
}
