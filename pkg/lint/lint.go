// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package lint

import (
	"context"
	"fmt"
	"os"

	"github.com/rbcompat/rbcompat/pkg/conditional"
	"github.com/rbcompat/rbcompat/pkg/files"
	"github.com/rbcompat/rbcompat/pkg/loader"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
)

type Result struct {
	Lints []string
	Hints []string
}

func (r Result) OK() bool { return len(r.Lints) == 0 }

func (r *Result) add(lints []string, hints []string) {
	r.Lints = append(r.Lints, lints...)
	r.Hints = append(r.Hints, hints...)
}

// Linter runs every lint over a recipe. Schema and Hints are optional.
type Linter struct {
	Schema *SchemaCache
	Hints  *HintsSource
	ui     files.UI
}

func NewLinter(schema *SchemaCache, hints *HintsSource, ui files.UI) *Linter {
	return &Linter{Schema: schema, Hints: hints, ui: files.UIOrNoop(ui)}
}

// recipe sections used by the lints
type sections struct {
	context         *orderedmap.Map
	pkg             *orderedmap.Map
	about           *orderedmap.Map
	extra           *orderedmap.Map
	build           *orderedmap.Map
	requirements    *orderedmap.Map
	rawRequirements *orderedmap.Map
	tests           interface{}
	sources         []*orderedmap.Map
	outputs         []*orderedmap.Map
}

func newSections(recipe *orderedmap.Map) sections {
	section := func(key string) interface{} { return get(recipe, key) }

	return sections{
		context:         asMap(section("context")),
		pkg:             asMap(section("package")),
		about:           asMap(section("about")),
		extra:           asMap(section("extra")),
		build:           asMap(section("build")),
		requirements:    loader.LoadAllRequirements(recipe),
		rawRequirements: asMap(section("requirements")),
		tests:           section("tests"),
		sources:         maps(section("source")),
		outputs:         maps(section("outputs")),
	}
}

// maps lists the mappings of a section given as one mapping or a
// (possibly conditional) list.
func maps(val interface{}) []*orderedmap.Map {
	if val == nil {
		return nil
	}
	var result []*orderedmap.Map
	for item := range conditional.Visit(val, nil) {
		if typedItem, ok := item.(*orderedmap.Map); ok {
			result = append(result, typedItem)
		}
	}
	return result
}

// LintRecipe lints the recipe found at path (a recipe file or a directory
// containing one).
func (l *Linter) LintRecipe(ctx context.Context, path string) (Result, error) {
	recipePath, err := files.FindRecipe(path, l.ui)
	if err != nil {
		return Result{}, err
	}

	data, err := os.ReadFile(recipePath)
	if err != nil {
		return Result{}, fmt.Errorf("reading recipe: %w", err)
	}

	return l.Lint(ctx, data)
}

// Lint lints recipe YAML.
func (l *Linter) Lint(ctx context.Context, data []byte) (Result, error) {
	var result Result

	if l.Schema != nil {
		schema, err := l.Schema.Schema(ctx)
		if err != nil {
			return Result{}, err
		}
		lints, err := ValidateRecipe(schema, data)
		if err != nil {
			return Result{}, err
		}
		result.add(lints, nil)
	}

	recipe, err := loader.LoadRecipe(data)
	if err != nil {
		return Result{}, fmt.Errorf("loading recipe: %w", err)
	}

	s := newSections(recipe)
	noarch := str(get(s.build, "noarch"))

	result.add(lintAboutContents(s.about), nil)
	result.add(lintRecipeMaintainers(s.extra), nil)
	result.add(lintRecipeTests(s.tests, s.outputs))
	result.add(lintLicenseNotUnknown(s.about), nil)
	result.add(lintBuildNumber(s.build), nil)
	result.add(lintRequirementsOrder(s.rawRequirements), nil)
	result.add(lintPackageVersion(s.pkg, s.context), nil)
	result.add(lintFilesHaveHash(s.sources), nil)
	result.add(lintSHA256Literals(s.sources), nil)
	result.add(lintLegacyCompilers(s.requirements), nil)
	result.add(lintHasLicenseFile(s.about), nil)
	result.add(lintPackageName(s.pkg, s.context), nil)
	result.add(lintLegacyPatterns(s.requirements), nil)
	result.add(lintSingleSpacePinning(s.requirements), nil)

	if noarch != "" {
		result.add(lintNoarchSelectors(noarch, s.build, s.rawRequirements), nil)
	} else {
		result.add(lintNonNoarchLanguageConstraints(s.requirements), nil)
	}
	if noarch == "python" && len(s.outputs) == 0 {
		result.add(lintPythonLowerBound(s.requirements), nil)
	}

	result.add(nil, hintExpressionSpacing(data))
	result.add(nil, hintPipUsage(s.build))
	if noarch == "" {
		result.add(nil, hintNoarchUsage(s.build, s.rawRequirements))
	}

	if l.Hints != nil {
		result.add(nil, hintSpecificPackages(s.requirements, s.outputs, l.Hints.Hints(ctx), result.Hints))
	}

	return result, nil
}
