// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/k14s/starlark-go/starlark"
)

// StringArg returns args[idx] as a Go string. Undefined arguments yield
// ErrUndefinedValue.
func StringArg(args starlark.Tuple, idx int) (string, error) {
	if idx >= args.Len() {
		return "", fmt.Errorf("expected at least %d argument(s)", idx+1)
	}
	if IsUndefined(args.Index(idx)) {
		return "", ErrUndefinedValue
	}
	return NewStarlarkValue(args.Index(idx)).AsString()
}

// KwArg finds a keyword argument by name.
func KwArg(kwargs []starlark.Tuple, keyToFind string) (starlark.Value, bool, error) {
	for _, arg := range kwargs {
		key, err := NewStarlarkValue(arg.Index(0)).AsString()
		if err != nil {
			return nil, false, err
		}
		if key == keyToFind {
			return arg.Index(1), true, nil
		}
	}
	return nil, false, nil
}

// OptionalArg returns the positional argument at idx, falling back to the
// keyword argument named key.
func OptionalArg(args starlark.Tuple, kwargs []starlark.Tuple, idx int, key string) (starlark.Value, bool, error) {
	if idx < args.Len() {
		return args.Index(idx), true, nil
	}
	return KwArg(kwargs, key)
}
