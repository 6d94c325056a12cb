// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/k14s/starlark-go/starlark"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
)

type GoValueToStarlarkValueConversion interface {
	AsStarlarkValue() starlark.Value
}

type GoValue struct {
	val interface{}
}

func NewGoValue(val interface{}) GoValue {
	return GoValue{val}
}

func (e GoValue) AsStarlarkValue() starlark.Value {
	return e.asStarlarkValue(e.val)
}

func (e GoValue) asStarlarkValue(val interface{}) starlark.Value {
	if obj, ok := val.(GoValueToStarlarkValueConversion); ok {
		return obj.AsStarlarkValue()
	}

	switch typedVal := val.(type) {
	case nil:
		return starlark.None

	case starlark.Value:
		return typedVal

	case bool:
		return starlark.Bool(typedVal)

	case string:
		return starlark.String(typedVal)

	case int:
		return starlark.MakeInt(typedVal)

	case int64:
		return starlark.MakeInt64(typedVal)

	case uint64:
		return starlark.MakeUint64(typedVal)

	case float64:
		return starlark.Float(typedVal)

	case *orderedmap.Map:
		result := &starlark.Dict{}
		typedVal.Iterate(func(k string, v interface{}) {
			result.SetKey(starlark.String(k), e.asStarlarkValue(v))
		})
		return result

	case map[string]string:
		result := &starlark.Dict{}
		for k, v := range typedVal {
			result.SetKey(starlark.String(k), starlark.String(v))
		}
		return result

	case []interface{}:
		var items []starlark.Value
		for _, v := range typedVal {
			items = append(items, e.asStarlarkValue(v))
		}
		return starlark.NewList(items)

	case []string:
		var items []starlark.Value
		for _, v := range typedVal {
			items = append(items, starlark.String(v))
		}
		return starlark.NewList(items)

	default:
		panic(fmt.Sprintf("unknown type %T for conversion to starlark value", val))
	}
}
