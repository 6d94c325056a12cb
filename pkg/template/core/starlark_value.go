// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"strings"

	"github.com/k14s/starlark-go/starlark"
)

type StarlarkValue struct {
	val starlark.Value
}

func NewStarlarkValue(val starlark.Value) StarlarkValue {
	return StarlarkValue{val}
}

func (e StarlarkValue) AsString() (string, error) {
	if typedVal, ok := e.val.(starlark.String); ok {
		return string(typedVal), nil
	}
	return "", fmt.Errorf("expected starlark.String, but was %s", e.val.Type())
}

// AsText converts the value the way Python's str() would, which is how
// rendered values end up in recipe text.
func (e StarlarkValue) AsText() string {
	if typedVal, ok := e.val.(starlark.String); ok {
		return string(typedVal)
	}
	return e.repr(e.val)
}

func (e StarlarkValue) repr(val starlark.Value) string {
	switch typedVal := val.(type) {
	case nil, starlark.NoneType:
		return "None"

	case starlark.Bool:
		if typedVal {
			return "True"
		}
		return "False"

	case starlark.String:
		return pyQuote(string(typedVal))

	case *starlark.List:
		var items []string
		for i := 0; i < typedVal.Len(); i++ {
			items = append(items, e.repr(typedVal.Index(i)))
		}
		return "[" + strings.Join(items, ", ") + "]"

	case starlark.Tuple:
		var items []string
		for _, item := range typedVal {
			items = append(items, e.repr(item))
		}
		if len(items) == 1 {
			return "(" + items[0] + ",)"
		}
		return "(" + strings.Join(items, ", ") + ")"

	case *starlark.Dict:
		var items []string
		for _, item := range typedVal.Items() {
			items = append(items, e.repr(item.Index(0))+": "+e.repr(item.Index(1)))
		}
		return "{" + strings.Join(items, ", ") + "}"

	default:
		return val.String()
	}
}

func pyQuote(s string) string {
	quote := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		quote = `"`
	}
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	if quote == "'" {
		escaped = strings.ReplaceAll(escaped, "'", `\'`)
	}
	return quote + escaped + quote
}
