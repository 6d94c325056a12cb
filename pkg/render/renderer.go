// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goyaml "github.com/goccy/go-yaml"
	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
	"github.com/rbcompat/rbcompat/pkg/files"
	"github.com/rbcompat/rbcompat/pkg/loader"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
)

type Renderer struct {
	config Config
	runner Runner
	ui     files.UI
}

func NewRenderer(config Config, runner Runner, ui files.UI) *Renderer {
	ui = files.UIOrNoop(ui)
	if runner == nil {
		runner = NewExecRunner(ui)
	}
	return &Renderer{config, runner, ui}
}

// RenderRecipes asks the build tool to render the recipe at path once per
// variant. When the tool reports nothing to build (eg. all variants are
// skipped) the unrendered recipe is returned on its own.
func (r *Renderer) RenderRecipes(ctx context.Context, path string, variants *orderedmap.Map) ([]*MetaData, error) {
	recipePath, err := files.FindRecipe(path, r.ui)
	if err != nil {
		return nil, err
	}

	rendered, err := r.render(ctx, recipePath, variants)
	if err != nil {
		return nil, err
	}

	if len(rendered) == 0 {
		meta, err := NewMetaData(recipePath, r.ui)
		if err != nil {
			return nil, err
		}
		return []*MetaData{meta}, nil
	}

	var result []*MetaData
	for _, recipe := range rendered {
		result = append(result, NewRenderedMetaData(recipePath, recipe))
	}
	return result, nil
}

func (r *Renderer) render(ctx context.Context, recipePath string, variants *orderedmap.Map) ([]*orderedmap.Map, error) {
	r.ui.Debugf("build platform: %s\n", r.config.BuildPlatform())
	r.ui.Debugf("target platform: %s\n", r.config.TargetPlatform())

	args := []string{
		"build",
		"--render-only",
		"--recipe", filepath.Dir(recipePath),
		"--target-platform", r.config.TargetPlatform(),
		"--build-platform", r.config.BuildPlatform(),
	}

	if variants != nil && variants.Len() > 0 {
		variantsPath, err := writeVariantsFile(variants)
		if err != nil {
			return nil, err
		}
		defer os.Remove(variantsPath)

		r.ui.Debugf("variants file: %s\n", variantsPath)
		args = append(args, "-m", variantsPath)
	}

	out, err := r.runner.Execute(ctx, Command{
		Executable: r.config.tool(),
		Args:       args,
		Env:        r.config.Env,
	})
	if err != nil {
		return nil, errors.Wrap(err, "rendering recipe")
	}

	return decodeRenderOutput(out)
}

// CheckToolVersion verifies that the build tool version satisfies
// constraint (eg. ">= 0.20.0").
func (r *Renderer) CheckToolVersion(ctx context.Context, constraint string) error {
	constraints, err := version.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(err, "parsing version constraint '%s'", constraint)
	}

	out, err := r.runner.Execute(ctx, Command{
		Executable: r.config.tool(),
		Args:       []string{"--version"},
		Env:        r.config.Env,
	})
	if err != nil {
		return errors.Wrap(err, "checking build tool version")
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return fmt.Errorf("expected '%s --version' to print a version", r.config.tool())
	}

	toolVersion, err := version.NewVersion(fields[len(fields)-1])
	if err != nil {
		return errors.Wrapf(err, "parsing %s version", r.config.tool())
	}

	if !constraints.Check(toolVersion) {
		return fmt.Errorf("%s version %s does not satisfy '%s'", r.config.tool(), toolVersion, constraint)
	}
	return nil
}

func writeVariantsFile(variants *orderedmap.Map) (string, error) {
	data, err := goyaml.Marshal(asMapSlice(variants))
	if err != nil {
		return "", errors.Wrap(err, "marshaling variants")
	}

	file, err := os.CreateTemp("", "variants-*.yaml")
	if err != nil {
		return "", errors.Wrap(err, "creating variants file")
	}
	defer file.Close()

	_, err = file.Write(data)
	if err != nil {
		os.Remove(file.Name())
		return "", errors.Wrapf(err, "writing variants file %s", file.Name())
	}
	return file.Name(), nil
}

// asMapSlice keeps key order when marshaling with go-yaml.
func asMapSlice(val interface{}) interface{} {
	switch typedVal := val.(type) {
	case *orderedmap.Map:
		result := goyaml.MapSlice{}
		typedVal.Iterate(func(k string, v interface{}) {
			result = append(result, goyaml.MapItem{Key: k, Value: asMapSlice(v)})
		})
		return result

	case []interface{}:
		result := make([]interface{}, len(typedVal))
		for i, item := range typedVal {
			result[i] = asMapSlice(item)
		}
		return result

	default:
		return val
	}
}

// decodeRenderOutput accepts either a single rendered recipe or a list of
// them. JSON is decoded as YAML so that key order survives.
func decodeRenderOutput(out []byte) ([]*orderedmap.Map, error) {
	doc, err := loader.LoadYAML(out)
	if err != nil {
		return nil, errors.Wrap(err, "decoding render output")
	}

	var items []interface{}

	switch typedDoc := doc.(type) {
	case nil:
		return nil, nil
	case *orderedmap.Map:
		items = []interface{}{typedDoc}
	case []interface{}:
		items = typedDoc
	default:
		return nil, fmt.Errorf("expected render output to be a list or an object, but was %T", doc)
	}

	var result []*orderedmap.Map
	for i, item := range items {
		typedItem, ok := item.(*orderedmap.Map)
		if !ok {
			return nil, fmt.Errorf("expected render output item %d to be an object, but was %T", i, item)
		}
		result = append(result, typedItem)
	}
	return result, nil
}
