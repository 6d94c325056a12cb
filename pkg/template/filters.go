// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/k14s/starlark-go/starlark"
	"github.com/rbcompat/rbcompat/pkg/template/core"
)

const filterPrefix = "__filter_"

// filters are applied with the value | name(args) syntax. The piped value
// is passed as the first argument.
var filters = map[string]core.StarlarkFunc{
	"version_to_buildstring": versionToBuildString,
	"split":                  splitFilter,
	"lower":                  stringFilter(strings.ToLower),
	"upper":                  stringFilter(strings.ToUpper),
	"trim":                   stringFilter(strings.TrimSpace),
	"replace":                replaceFilter,
	"join":                   joinFilter,
	"default":                defaultFilter,
	"int":                    intFilter,
	"string":                 stringConvFilter,
	"length":                 lengthFilter,
	"first":                  indexFilter(0),
	"last":                   indexFilter(-1),
}

func (e *Environment) filterGlobals() starlark.StringDict {
	result := starlark.StringDict{}
	for name, filter := range filters {
		result[filterPrefix+name] = starlark.NewBuiltin(name, core.ErrWrapper(filter))
	}
	return result
}

// VersionToBuildString keeps the major and minor components of a version,
// without the separating dot ("3.10.2" becomes "310").
func VersionToBuildString(version string) string {
	if fields := strings.Fields(version); len(fields) > 0 {
		version = fields[0]
	}
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[0] + parts[1]
}

func versionToBuildString(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}
	if undef, ok := args.Index(0).(core.Undefined); ok {
		return core.NewUndefined(undef.Expr + " | version_to_buildstring"), nil
	}
	return starlark.String(VersionToBuildString(core.NewStarlarkValue(args.Index(0)).AsText())), nil
}

func splitFilter(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	val, err := core.StringArg(args, 0)
	if err != nil {
		return starlark.None, err
	}

	sep := " "
	sepArg, found, err := core.OptionalArg(args, kwargs, 1, "sep")
	if err != nil {
		return starlark.None, err
	}
	if found {
		sep, err = core.NewStarlarkValue(sepArg).AsString()
		if err != nil {
			return starlark.None, err
		}
	}
	if len(sep) == 0 {
		return starlark.None, fmt.Errorf("empty separator")
	}

	var items []starlark.Value
	for _, item := range strings.Split(val, sep) {
		items = append(items, starlark.String(item))
	}
	return starlark.NewList(items), nil
}

func stringFilter(fn func(string) string) core.StarlarkFunc {
	return func(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		val, err := core.StringArg(args, 0)
		if err != nil {
			return starlark.None, err
		}
		return starlark.String(fn(val)), nil
	}
}

func replaceFilter(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 3 {
		return starlark.None, fmt.Errorf("expected value, old and new")
	}
	var strs []string
	for i := 0; i < 3; i++ {
		val, err := core.StringArg(args, i)
		if err != nil {
			return starlark.None, err
		}
		strs = append(strs, val)
	}
	return starlark.String(strings.ReplaceAll(strs[0], strs[1], strs[2])), nil
}

func joinFilter(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() == 0 {
		return starlark.None, fmt.Errorf("expected at least one argument")
	}
	iterable, ok := args.Index(0).(starlark.Iterable)
	if !ok {
		return starlark.None, fmt.Errorf("expected iterable, but was %s", args.Index(0).Type())
	}

	sep := ""
	sepArg, found, err := core.OptionalArg(args, kwargs, 1, "d")
	if err != nil {
		return starlark.None, err
	}
	if found {
		sep = core.NewStarlarkValue(sepArg).AsText()
	}

	var items []string
	iter := iterable.Iterate()
	defer iter.Done()

	var item starlark.Value
	for iter.Next(&item) {
		items = append(items, core.NewStarlarkValue(item).AsText())
	}
	return starlark.String(strings.Join(items, sep)), nil
}

func defaultFilter(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() == 0 {
		return starlark.None, fmt.Errorf("expected at least one argument")
	}

	var defaultVal starlark.Value = starlark.String("")
	if val, found, err := core.OptionalArg(args, kwargs, 1, "default_value"); err != nil {
		return starlark.None, err
	} else if found {
		defaultVal = val
	}

	checkTruth := false
	if val, found, err := core.OptionalArg(args, kwargs, 2, "boolean"); err != nil {
		return starlark.None, err
	} else if found {
		checkTruth = bool(val.Truth())
	}

	val := args.Index(0)
	if core.IsUndefined(val) || (checkTruth && !bool(val.Truth())) {
		return defaultVal, nil
	}
	return val, nil
}

func intFilter(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() == 0 {
		return starlark.None, fmt.Errorf("expected at least one argument")
	}

	var defaultVal starlark.Value = starlark.MakeInt(0)
	if val, found, err := core.OptionalArg(args, kwargs, 1, "default"); err != nil {
		return starlark.None, err
	} else if found {
		defaultVal = val
	}

	switch typedVal := args.Index(0).(type) {
	case starlark.Int:
		return typedVal, nil
	case starlark.Float:
		return starlark.MakeInt64(int64(typedVal)), nil
	case starlark.String:
		num, err := strconv.ParseInt(strings.TrimSpace(string(typedVal)), 10, 64)
		if err != nil {
			return defaultVal, nil
		}
		return starlark.MakeInt64(num), nil
	case core.Undefined:
		return starlark.None, core.ErrUndefinedValue
	default:
		return defaultVal, nil
	}
}

func stringConvFilter(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}
	return starlark.String(core.NewStarlarkValue(args.Index(0)).AsText()), nil
}

func lengthFilter(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}
	length := starlark.Len(args.Index(0))
	if length < 0 {
		return starlark.None, fmt.Errorf("value of type %s has no length", args.Index(0).Type())
	}
	return starlark.MakeInt(length), nil
}

func indexFilter(idx int) core.StarlarkFunc {
	return func(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if args.Len() != 1 {
			return starlark.None, fmt.Errorf("expected exactly one argument")
		}
		indexable, ok := args.Index(0).(starlark.Indexable)
		if !ok {
			return starlark.None, fmt.Errorf("expected sequence, but was %s", args.Index(0).Type())
		}
		if indexable.Len() == 0 {
			return core.NewUndefined(f.Name()), nil
		}
		if idx < 0 {
			return indexable.Index(indexable.Len() + idx), nil
		}
		return indexable.Index(idx), nil
	}
}
