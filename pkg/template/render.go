// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"html"
	"strings"

	"github.com/k14s/starlark-go/starlark"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/template/core"
	"github.com/rbcompat/rbcompat/pkg/texttemplate"
)

// RenderString renders every ${{ }} expression in text. Expressions that
// depend on names missing from ctx are kept as written.
func (e *Environment) RenderString(text string, ctx Context) (string, error) {
	if !strings.Contains(text, texttemplate.CodeOpening) {
		return text, nil
	}

	root, err := texttemplate.NewParser().Parse(text, "")
	if err != nil {
		return "", err
	}

	globals := e.globals()
	for name, val := range e.filterGlobals() {
		globals[name] = val
	}

	var result strings.Builder

	for _, item := range root.Items {
		switch typedItem := item.(type) {
		case *texttemplate.NodeText:
			result.WriteString(typedItem.Content)

		case *texttemplate.NodeCode:
			out, err := e.renderCode(typedItem, globals, ctx)
			if err != nil {
				return "", err
			}
			result.WriteString(out)

		default:
			panic(fmt.Sprintf("unknown template node type %T", typedItem))
		}
	}

	return result.String(), nil
}

func (e *Environment) renderCode(node *texttemplate.NodeCode, globals starlark.StringDict, ctx Context) (string, error) {
	expr, err := compileExpression(node.Content)
	if err != nil {
		// Not every template expression is valid starlark; such
		// expressions are left for the build tool to evaluate.
		return node.AsSource(), nil
	}

	env := starlark.StringDict{}
	var undefined bool

	for _, name := range expr.names {
		if val, found := ctx[name]; found {
			env[name] = core.NewGoValue(val).AsStarlarkValue()
			continue
		}
		if val, found := globals[name]; found {
			env[name] = val
			continue
		}
		if _, found := starlark.Universe[name]; found {
			continue
		}
		switch name {
		case "true":
			env[name] = starlark.True
		case "false":
			env[name] = starlark.False
		case "none":
			env[name] = starlark.None
		default:
			env[name] = core.NewUndefined(name)
			undefined = true
		}
	}

	val, err := expr.eval(env)
	if err != nil {
		if undefined {
			return node.AsSource(), nil
		}
		return "", fmt.Errorf("evaluating '%s' (%s): %w", node.AsSource(), node.Position.AsString(), err)
	}

	if core.IsUndefined(val) {
		return node.AsSource(), nil
	}

	return html.EscapeString(core.NewStarlarkValue(val).AsText()), nil
}

// RenderContext resolves the entries of a recipe context section. Entries
// are rendered in order; each sees the entries before it in their rendered
// form and the ones after it as written. extra holds variant values and is
// shadowed by context entries of the same name.
func (e *Environment) RenderContext(context *orderedmap.Map, extra map[string]string) (*orderedmap.Map, error) {
	vars := Context{}
	for k, v := range extra {
		vars[k] = v
	}

	result := orderedmap.NewMap()
	if context == nil {
		return result, nil
	}

	context.Iterate(func(k string, v interface{}) {
		vars[k] = orderedmap.DeepCopy(v)
		result.Set(k, orderedmap.DeepCopy(v))
	})

	for _, key := range result.Keys() {
		val, _ := result.Get(key)
		typedVal, ok := val.(string)
		if !ok {
			continue
		}

		rendered, err := e.RenderString(typedVal, vars)
		if err != nil {
			return nil, fmt.Errorf("rendering context entry '%s': %w", key, err)
		}
		result.Set(key, rendered)
		vars[key] = rendered
	}

	return result, nil
}

// RenderDocument returns a copy of doc with every string scalar and
// mapping key rendered.
func (e *Environment) RenderDocument(doc interface{}, ctx Context) (interface{}, error) {
	switch typedVal := doc.(type) {
	case *orderedmap.Map:
		result := orderedmap.NewMap()
		err := typedVal.IterateErr(func(k string, v interface{}) error {
			renderedKey, err := e.RenderString(k, ctx)
			if err != nil {
				return err
			}
			renderedVal, err := e.RenderDocument(v, ctx)
			if err != nil {
				return err
			}
			result.Set(renderedKey, renderedVal)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return result, nil

	case []interface{}:
		result := make([]interface{}, 0, len(typedVal))
		for _, item := range typedVal {
			renderedItem, err := e.RenderDocument(item, ctx)
			if err != nil {
				return nil, err
			}
			result = append(result, renderedItem)
		}
		return result, nil

	case string:
		return e.RenderString(typedVal, ctx)

	default:
		return orderedmap.DeepCopy(typedVal), nil
	}
}

// RenderRecipeWithContext renders a recipe using the values of its own
// context section, merged over extra.
func (e *Environment) RenderRecipeWithContext(recipe *orderedmap.Map, extra map[string]string) (*orderedmap.Map, error) {
	context, _ := recipe.GetMap("context")

	resolved, err := e.RenderContext(context, extra)
	if err != nil {
		return nil, err
	}

	doc := recipe.DeepCopy()
	if recipe.Has("context") {
		doc.Set("context", resolved)
	}

	vars := Context{}
	for k, v := range extra {
		vars[k] = v
	}
	resolved.Iterate(func(k string, v interface{}) { vars[k] = v })

	rendered, err := e.RenderDocument(doc, vars)
	if err != nil {
		return nil, err
	}
	return rendered.(*orderedmap.Map), nil
}

func RenderString(text string, ctx Context) (string, error) {
	return NewEnvironment().RenderString(text, ctx)
}

func RenderContext(context *orderedmap.Map, extra map[string]string) (*orderedmap.Map, error) {
	return NewEnvironment().RenderContext(context, extra)
}

func RenderDocument(doc interface{}, ctx Context) (interface{}, error) {
	return NewEnvironment().RenderDocument(doc, ctx)
}

func RenderRecipeWithContext(recipe *orderedmap.Map, extra map[string]string) (*orderedmap.Map, error) {
	return NewEnvironment().RenderRecipeWithContext(recipe, extra)
}
