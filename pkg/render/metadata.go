// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rbcompat/rbcompat/pkg/files"
	"github.com/rbcompat/rbcompat/pkg/loader"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/template"
)

const (
	badChars         = "=@#$%^&*:;\"'\\|<>?/ "
	buildConfigKey   = "build_configuration"
	targetPlatformKV = "target_platform"
)

// Sections that may hold either a single mapping or a list of them.
var optionallyIterableSections = map[string]bool{
	"source":  true,
	"outputs": true,
}

// MetaData is a recipe as seen by downstream tooling: either a recipe with
// its context evaluated, or one variant of the build tool's render output.
type MetaData struct {
	path     string
	meta     *orderedmap.Map
	rendered bool
}

// NewMetaData loads the recipe at path (a recipe file or a directory
// containing one) and evaluates its context.
func NewMetaData(path string, ui files.UI) (*MetaData, error) {
	recipePath, err := files.FindRecipe(path, ui)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(recipePath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading recipe %s", recipePath)
	}

	recipe, err := loader.LoadRecipe(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading recipe %s", recipePath)
	}

	meta, err := template.RenderRecipeWithContext(recipe, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "rendering recipe context %s", recipePath)
	}

	return &MetaData{path: recipePath, meta: withDefaultSections(meta, meta)}, nil
}

// NewRenderedMetaData wraps one entry of the build tool's render output.
func NewRenderedMetaData(path string, rendered *orderedmap.Map) *MetaData {
	recipe, _ := rendered.GetMap("recipe")
	if recipe == nil {
		recipe = orderedmap.NewMap()
	}
	return &MetaData{path: path, meta: withDefaultSections(rendered, recipe), rendered: true}
}

func withDefaultSections(meta, recipe *orderedmap.Map) *orderedmap.Map {
	for _, key := range []string{"about", "extra"} {
		val, found := recipe.Get(key)
		if !found || val == nil {
			val = orderedmap.NewMap()
		}
		meta.Set(key, val)
	}
	return meta
}

func (m *MetaData) Path() string          { return m.path }
func (m *MetaData) Dir() string           { return filepath.Dir(m.path) }
func (m *MetaData) Meta() *orderedmap.Map { return m.meta }
func (m *MetaData) Rendered() bool        { return m.rendered }

// Name returns the package name, or the recipe name of a multi-output recipe.
func (m *MetaData) Name() (string, error) {
	name := m.recipeField("name")
	if name == "" {
		return "", fmt.Errorf("package/name missing in: '%s'", m.path)
	}
	if name != strings.ToLower(name) {
		return "", fmt.Errorf("package/name must be lowercase, got: '%s'", name)
	}
	err := checkBadChars(name, "package/name")
	if err != nil {
		return "", err
	}
	return name, nil
}

// Version returns the package version, or the recipe version of a
// multi-output recipe.
func (m *MetaData) Version() (string, error) {
	version := m.recipeField("version")
	if version == "" {
		return "", fmt.Errorf("package/version missing in: '%s'", m.path)
	}
	err := checkBadChars(version, "package/version")
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(version, ".") {
		return "", fmt.Errorf("fully-rendered version can't start with period, got: '%s'", version)
	}
	return version, nil
}

func (m *MetaData) recipeField(field string) string {
	recipe := m.meta
	if m.rendered {
		recipe, _ = m.meta.GetMap("recipe")
		if recipe == nil {
			return ""
		}
	}

	for _, section := range []string{"package", "recipe"} {
		if sec, found := recipe.GetMap(section); found {
			if val, ok := sec.Get(field); ok {
				if str, ok := val.(string); ok && str != "" {
					return str
				}
			}
		}
		// Rendered output always carries the package section
		if m.rendered {
			break
		}
	}
	return ""
}

func checkBadChars(str, field string) error {
	chars := badChars
	if field == "package/version" {
		chars += "-"
	} else {
		chars += "!"
	}
	for _, ch := range chars {
		if strings.ContainsRune(str, ch) {
			return fmt.Errorf("bad character '%c' in %s: %s", ch, field, str)
		}
	}
	return nil
}

func (m *MetaData) section(name string) interface{} {
	if !m.rendered {
		val, _ := m.meta.Get(name)
		return val
	}
	recipe, found := m.meta.GetMap("recipe")
	if !found {
		return nil
	}
	val, _ := recipe.Get(name)
	return val
}

// Section returns the named mapping section, or an empty mapping when
// the section is missing.
func (m *MetaData) Section(name string) (*orderedmap.Map, error) {
	if optionallyIterableSections[name] {
		return nil, fmt.Errorf("expected section '%s' to be accessed as a list", name)
	}
	switch typedVal := m.section(name).(type) {
	case nil:
		return orderedmap.NewMap(), nil
	case *orderedmap.Map:
		return typedVal, nil
	case string:
		if typedVal == "" {
			return orderedmap.NewMap(), nil
		}
	}
	return nil, fmt.Errorf("expected %s to be a dict", name)
}

// Sections returns a section that may be given either as one mapping or
// as a list (source, outputs).
func (m *MetaData) Sections(name string) ([]interface{}, error) {
	switch typedVal := m.section(name).(type) {
	case nil:
		return []interface{}{}, nil
	case *orderedmap.Map:
		return []interface{}{typedVal}, nil
	case []interface{}:
		return typedVal, nil
	case string:
		if typedVal == "" {
			return []interface{}{}, nil
		}
	}
	return nil, fmt.Errorf("expected %s to be a list", name)
}

// Noarch returns the build/noarch value, empty for arch specific packages.
func (m *MetaData) Noarch() string {
	build, err := m.Section("build")
	if err != nil {
		return ""
	}
	val, _ := build.Get("noarch")
	str, _ := val.(string)
	return str
}

// UsedVariant returns the variant the build tool resolved for this
// recipe with '-' in keys replaced by '_'. target_platform is dropped for
// noarch packages. Unrendered recipes and skipped builds have no variant.
func (m *MetaData) UsedVariant() *orderedmap.Map {
	result := orderedmap.NewMap()

	buildConfig, found := m.meta.GetMap(buildConfigKey)
	if !found {
		return result
	}
	variant, found := buildConfig.GetMap("variant")
	if !found {
		return result
	}

	variant.Iterate(func(k string, v interface{}) {
		result.Set(strings.ReplaceAll(k, "-", "_"), v)
	})

	if m.Noarch() != "" {
		result.Delete(targetPlatformKV)
	}
	return result
}

// UsedVars returns the keys of UsedVariant.
func (m *MetaData) UsedVars() []string {
	return m.UsedVariant().Keys()
}
