// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package sources_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/rbcompat/rbcompat/pkg/loader"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadRecipe(t *testing.T, name string) *orderedmap.Map {
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	recipe, err := loader.LoadRecipe(data)
	require.NoError(t, err)
	return recipe
}

func TestAllURLSources(t *testing.T) {
	cases := map[string][]string{
		"single_source.yaml":    {"https://foo.com"},
		"multiple_sources.yaml": {"https://foo.com", "https://bar.com"},
		"if_then_source.yaml":   {"https://foo.com", "https://bar.com"},
		"outputs_source.yaml":   {"https://foo.com", "https://bar.com", "https://baz.com", "https://qux.com"},
	}

	for name, expected := range cases {
		t.Run(name, func(t *testing.T) {
			urls := slices.Collect(sources.AllURLSources(loadRecipe(t, name)))
			assert.Equal(t, expected, urls)
		})
	}
}

func TestAllSourcesIncludesNonURLSources(t *testing.T) {
	srcs := slices.Collect(sources.AllSources(loadRecipe(t, "multiple_sources.yaml")))
	require.Len(t, srcs, 3)

	last, ok := srcs[2].(*orderedmap.Map)
	require.True(t, ok)
	assert.True(t, last.Has("path"))
}

func TestAllSourcesTopLevelThenOutputs(t *testing.T) {
	recipe, err := loader.LoadRecipe([]byte(`
source:
  url: https://top.com
outputs:
  - source:
      url: https://first.com
  - source:
      - url: https://second.com
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://top.com", "https://first.com", "https://second.com"},
		slices.Collect(sources.AllURLSources(recipe)))
}

func TestRenderAllSources(t *testing.T) {
	recipe := loadRecipe(t, "rendered.yaml")

	linux := orderedmap.NewMap()
	linux.Set("target_platform", []interface{}{"linux-64"})
	linux.Set("python", []interface{}{"3.11", "3.12"})

	osx := orderedmap.NewMap()
	osx.Set("target_platform", []interface{}{"osx-arm64"})

	result, err := sources.RenderAllSources(recipe, []*orderedmap.Map{linux, osx}, "")
	require.NoError(t, err)

	assert.Equal(t, []sources.Source{
		{URL: "https://example.com/foo-1.2.0.tar.gz", SHA256: "1111111111111111111111111111111111111111111111111111111111111111"},
		{URL: "https://example.com/foo-osx-1.2.0.tar.gz", MD5: "22222222222222222222222222222222"},
		{URL: "https://example.com/linux-1.2.0.tar.gz"},
	}, sources.Sorted(result))
}

func TestRenderAllSourcesOverridesVersion(t *testing.T) {
	recipe := loadRecipe(t, "rendered.yaml")

	spec := orderedmap.NewMap()
	spec.Set("target_platform", []interface{}{"linux-64"})

	result, err := sources.RenderAllSources(recipe, []*orderedmap.Map{spec}, "2.0.0")
	require.NoError(t, err)

	assert.Equal(t, []sources.Source{
		{URL: "https://example.com/foo-2.0.0.tar.gz", SHA256: "1111111111111111111111111111111111111111111111111111111111111111"},
		{URL: "https://example.com/linux-2.0.0.tar.gz"},
	}, sources.Sorted(result))

	// input recipe keeps its version
	context, _ := recipe.GetMap("context")
	version, _ := context.Get("version")
	assert.Equal(t, "1.2.0", version)
}

func TestRenderAllSourcesWithoutVariants(t *testing.T) {
	result, err := sources.RenderAllSources(loadRecipe(t, "rendered.yaml"), nil, "")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRenderAllSourcesUndefinedSelector(t *testing.T) {
	recipe, err := loader.LoadRecipe([]byte(`
source:
  - if: unknown_selector
    then:
      url: https://foo.com
`))
	require.NoError(t, err)

	_, err = sources.RenderAllSources(recipe, []*orderedmap.Map{orderedmap.NewMap()}, "")
	require.EqualError(t, err, "evaluating source conditions: selector 'unknown_selector' is not defined")
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "https://a (sha256: abc)", sources.Source{URL: "https://a", SHA256: "abc"}.String())
	assert.Equal(t, "https://a (md5: abc)", sources.Source{URL: "https://a", MD5: "abc"}.String())
	assert.Equal(t, "https://a", sources.Source{URL: "https://a"}.String())
}
