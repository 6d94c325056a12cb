// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"os"
	"sync"

	"github.com/k14s/starlark-go/resolve"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"
	"github.com/rbcompat/rbcompat/pkg/template/core"
)

var configureResolver sync.Once

// Context maps template names to document values (strings, lists,
// *orderedmap.Map or plain Go scalars).
type Context map[string]interface{}

// Environment holds the functions and filters available to expressions.
type Environment struct {
	// LookupEnv backs env.get and env.exists.
	LookupEnv func(string) (string, bool)
}

func NewEnvironment() *Environment {
	configureResolver.Do(func() {
		resolve.AllowFloat = true
		resolve.AllowSet = true
		resolve.AllowLambda = true
		resolve.AllowNestedDef = true
		resolve.AllowBitwise = true
		resolve.AllowRecursion = true
		resolve.AllowGlobalReassign = true
	})
	return &Environment{LookupEnv: os.LookupEnv}
}

func (e *Environment) globals() starlark.StringDict {
	return starlark.StringDict{
		"compiler":       starlark.NewBuiltin("compiler", core.ErrWrapper(suffixStub("_compiler_stub"))),
		"stdlib":         starlark.NewBuiltin("stdlib", core.ErrWrapper(suffixStub("_stdlib_stub"))),
		"pin_subpackage": starlark.NewBuiltin("pin_subpackage", core.ErrWrapper(prefixStub("subpackage_pin "))),
		"pin_compatible": starlark.NewBuiltin("pin_compatible", core.ErrWrapper(prefixStub("compatible_pin "))),
		"cdt":            starlark.NewBuiltin("cdt", core.ErrWrapper(e.cdt)),
		"env": &starlarkstruct.Module{
			Name: "env",
			Members: starlark.StringDict{
				"get":    starlark.NewBuiltin("env.get", core.ErrWrapper(e.envGet)),
				"exists": starlark.NewBuiltin("env.exists", core.ErrWrapper(e.envExists)),
			},
		},
		concatFuncName: starlark.NewBuiltin("~", core.ErrWrapper(concat)),
	}
}

func suffixStub(suffix string) core.StarlarkFunc {
	return func(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if args.Len() != 1 {
			return starlark.None, fmt.Errorf("expected exactly one argument")
		}
		val, err := core.StringArg(args, 0)
		if err != nil {
			return starlark.None, err
		}
		return starlark.String(val + suffix), nil
	}
}

func prefixStub(prefix string) core.StarlarkFunc {
	return func(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if args.Len() == 0 {
			return starlark.None, fmt.Errorf("expected at least one argument")
		}
		return starlark.String(prefix + core.NewStarlarkValue(args.Index(0)).AsText()), nil
	}
}

func (e *Environment) cdt(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return starlark.String("cdt_stub"), nil
}

func (e *Environment) envGet(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	name, err := core.StringArg(args, 0)
	if err != nil {
		return starlark.None, err
	}

	if val, found := e.lookupEnv(name); found {
		return starlark.String(val), nil
	}

	defaultVal, found, err := core.OptionalArg(args, kwargs, 1, "default")
	if err != nil {
		return starlark.None, err
	}
	if found && bool(defaultVal.Truth()) {
		return defaultVal, nil
	}
	return starlark.String(name), nil
}

func (e *Environment) envExists(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	name, err := core.StringArg(args, 0)
	if err != nil {
		return starlark.None, err
	}
	_, found := e.lookupEnv(name)
	return starlark.Bool(found), nil
}

func (e *Environment) lookupEnv(name string) (string, bool) {
	if e.LookupEnv == nil {
		return os.LookupEnv(name)
	}
	return e.LookupEnv(name)
}

// concat implements the ~ operator: operands are converted to text and
// joined, undefined operands included.
func concat(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var result string
	for _, arg := range args {
		result += core.NewStarlarkValue(arg).AsText()
	}
	return starlark.String(result), nil
}
