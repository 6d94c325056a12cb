// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package render_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rbcompat/rbcompat/pkg/loader"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	out      []byte
	err      error
	commands []render.Command
	variants string
}

func (r *fakeRunner) Execute(_ context.Context, command render.Command) ([]byte, error) {
	r.commands = append(r.commands, command)
	for i, arg := range command.Args {
		if arg == "-m" && i+1 < len(command.Args) {
			data, err := os.ReadFile(command.Args[i+1])
			if err != nil {
				return nil, err
			}
			r.variants = string(data)
		}
	}
	return r.out, r.err
}

func recipeDir(t *testing.T) string {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "recipe.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipe.yaml"), data, 0600))
	return dir
}

func mustLoad(t *testing.T, data string) *orderedmap.Map {
	doc, err := loader.LoadRecipe([]byte(data))
	require.NoError(t, err)
	return doc
}

func testConfig() render.Config {
	return render.Config{Platform: "linux", Arch: "64", HostPlatform: "osx", HostArch: "arm64", Tool: "fake-build"}
}

func TestRenderRecipes(t *testing.T) {
	out, err := os.ReadFile(filepath.Join("testdata", "render_output.json"))
	require.NoError(t, err)

	dir := recipeDir(t)
	runner := &fakeRunner{out: out}
	variants := mustLoad(t, `
python: ["3.10", "3.11"]
c-compiler: [gcc]
`)

	metas, err := render.NewRenderer(testConfig(), runner, nil).RenderRecipes(context.Background(), dir, variants)
	require.NoError(t, err)
	require.Len(t, metas, 2)

	require.Len(t, runner.commands, 1)
	cmd := runner.commands[0]
	assert.Equal(t, "fake-build", cmd.Executable)
	assert.Equal(t, []string{
		"build", "--render-only",
		"--recipe", dir,
		"--target-platform", "osx-arm64",
		"--build-platform", "linux-64",
	}, cmd.Args[:8])
	assert.Equal(t, "-m", cmd.Args[8])

	_, err = os.Stat(cmd.Args[9])
	assert.True(t, os.IsNotExist(err), "expected variants file to be removed")

	writtenVariants, err := loader.LoadRecipe([]byte(runner.variants))
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "c-compiler"}, writtenVariants.Keys())
	python, _ := writtenVariants.Get("python")
	assert.Equal(t, []interface{}{"3.10", "3.11"}, python)

	for i, expectedPython := range []string{"3.10", "3.11"} {
		meta := metas[i]
		assert.True(t, meta.Rendered())
		assert.Equal(t, filepath.Join(dir, "recipe.yaml"), meta.Path())

		name, err := meta.Name()
		require.NoError(t, err)
		assert.Equal(t, "foo", name)

		version, err := meta.Version()
		require.NoError(t, err)
		assert.Equal(t, "1.2.3", version)

		assert.Equal(t, []string{"python", "target_platform", "c_compiler"}, meta.UsedVars())
		python, _ := meta.UsedVariant().Get("python")
		assert.Equal(t, expectedPython, python)

		sources, err := meta.Sections("source")
		require.NoError(t, err)
		assert.Len(t, sources, 1)

		about, _ := meta.Meta().GetMap("about")
		summary, _ := about.Get("summary")
		assert.Equal(t, "A foo", summary)
	}
}

func TestRenderRecipesWithoutVariants(t *testing.T) {
	runner := &fakeRunner{out: []byte(`{"recipe": {"package": {"name": "foo", "version": "1.0"}}}`)}

	metas, err := render.NewRenderer(testConfig(), runner, nil).RenderRecipes(context.Background(), recipeDir(t), nil)
	require.NoError(t, err)
	require.Len(t, metas, 1)

	assert.NotContains(t, runner.commands[0].Args, "-m")
	assert.Empty(t, metas[0].UsedVars())
}

func TestRenderRecipesFallsBackToUnrendered(t *testing.T) {
	runner := &fakeRunner{out: []byte("[]")}

	metas, err := render.NewRenderer(testConfig(), runner, nil).RenderRecipes(context.Background(), recipeDir(t), nil)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.False(t, metas[0].Rendered())

	name, err := metas[0].Name()
	require.NoError(t, err)
	assert.Equal(t, "foo", name)
}

func TestRenderRecipesErrors(t *testing.T) {
	t.Run("tool failure", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("exit status 1")}
		_, err := render.NewRenderer(testConfig(), runner, nil).RenderRecipes(context.Background(), recipeDir(t), nil)
		require.EqualError(t, err, "rendering recipe: exit status 1")
	})

	t.Run("unexpected output", func(t *testing.T) {
		runner := &fakeRunner{out: []byte(`"text"`)}
		_, err := render.NewRenderer(testConfig(), runner, nil).RenderRecipes(context.Background(), recipeDir(t), nil)
		require.EqualError(t, err, "expected render output to be a list or an object, but was string")
	})

	t.Run("missing recipe", func(t *testing.T) {
		_, err := render.NewRenderer(testConfig(), &fakeRunner{}, nil).RenderRecipes(context.Background(), t.TempDir(), nil)
		require.Error(t, err)
	})
}

func TestNewMetaData(t *testing.T) {
	meta, err := render.NewMetaData(recipeDir(t), nil)
	require.NoError(t, err)
	assert.False(t, meta.Rendered())

	name, err := meta.Name()
	require.NoError(t, err)
	assert.Equal(t, "foo", name)

	version, err := meta.Version()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", version)

	assert.Equal(t, "python", meta.Noarch())
	assert.Empty(t, meta.UsedVars())

	sources, err := meta.Sections("source")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	url, _ := sources[0].(*orderedmap.Map).Get("url")
	assert.Equal(t, "https://example.com/foo-1.2.3.tar.gz", url)

	extra, err := meta.Section("extra")
	require.NoError(t, err)
	assert.Equal(t, 0, extra.Len())
}

func TestMetaDataMultiOutputName(t *testing.T) {
	meta := render.NewRenderedMetaData("recipe.yaml", orderedmap.NewMap())
	_, err := meta.Name()
	require.EqualError(t, err, "package/name missing in: 'recipe.yaml'")
}

func TestMetaDataNameAndVersionValidation(t *testing.T) {
	rendered := func(name, version string) *render.MetaData {
		return render.NewRenderedMetaData("recipe.yaml", mustLoad(t, `
recipe:
  package:
    name: "`+name+`"
    version: "`+version+`"
`))
	}

	nameCases := []struct {
		name string
		err  string
	}{
		{"", "package/name missing in: 'recipe.yaml'"},
		{"Foo", "package/name must be lowercase, got: 'Foo'"},
		{"foo bar", "bad character ' ' in package/name: foo bar"},
		{"foo!", "bad character '!' in package/name: foo!"},
		{"foo-bar", ""},
	}
	for _, tc := range nameCases {
		_, err := rendered(tc.name, "1.0").Name()
		if tc.err == "" {
			assert.NoError(t, err, tc.name)
		} else {
			assert.EqualError(t, err, tc.err, tc.name)
		}
	}

	versionCases := []struct {
		version string
		err     string
	}{
		{"", "package/version missing in: 'recipe.yaml'"},
		{"1-2", "bad character '-' in package/version: 1-2"},
		{".1", "fully-rendered version can't start with period, got: '.1'"},
		{"1.0!post", ""},
	}
	for _, tc := range versionCases {
		_, err := rendered("foo", tc.version).Version()
		if tc.err == "" {
			assert.NoError(t, err, tc.version)
		} else {
			assert.EqualError(t, err, tc.err, tc.version)
		}
	}
}

func TestMetaDataSections(t *testing.T) {
	meta := render.NewRenderedMetaData("recipe.yaml", mustLoad(t, `
recipe:
  build:
    noarch: generic
  requirements: [a, b]
  outputs:
    package:
      name: single
build_configuration:
  variant:
    target_platform: noarch
    python-version: "3.12"
`))

	build, err := meta.Section("build")
	require.NoError(t, err)
	noarch, _ := build.Get("noarch")
	assert.Equal(t, "generic", noarch)
	assert.Equal(t, "generic", meta.Noarch())

	_, err = meta.Section("requirements")
	require.EqualError(t, err, "expected requirements to be a dict")

	_, err = meta.Section("source")
	require.Error(t, err)

	missing, err := meta.Section("test")
	require.NoError(t, err)
	assert.Equal(t, 0, missing.Len())

	outputs, err := meta.Sections("outputs")
	require.NoError(t, err)
	assert.Len(t, outputs, 1)

	sources, err := meta.Sections("source")
	require.NoError(t, err)
	assert.Empty(t, sources)

	assert.Equal(t, []string{"python_version"}, meta.UsedVars())
}

func TestCheckToolVersion(t *testing.T) {
	runner := &fakeRunner{out: []byte("rattler-build 0.21.0\n")}
	renderer := render.NewRenderer(testConfig(), runner, nil)

	require.NoError(t, renderer.CheckToolVersion(context.Background(), ">= 0.20.0"))
	assert.Equal(t, []string{"--version"}, runner.commands[0].Args)

	err := renderer.CheckToolVersion(context.Background(), "< 0.20.0")
	require.EqualError(t, err, "fake-build version 0.21.0 does not satisfy '< 0.20.0'")

	err = renderer.CheckToolVersion(context.Background(), "not a constraint")
	require.Error(t, err)
}

func TestExecRunner(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh is not available")
	}

	runner := render.NewExecRunner(nil)

	out, err := runner.Execute(context.Background(), render.Command{Executable: sh, Args: []string{"-c", "echo ok"}})
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(out))

	_, err = runner.Execute(context.Background(), render.Command{Executable: sh, Args: []string{"-c", "echo broken >&2; exit 3"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	_, err = runner.Execute(context.Background(), render.Command{})
	require.EqualError(t, err, "command executable can not be empty")
}

func TestConfigPlatforms(t *testing.T) {
	config := render.DefaultConfig().WithTarget("win-64")
	assert.Equal(t, "win-64", config.TargetPlatform())
	assert.NotEmpty(t, config.BuildPlatform())
	assert.Equal(t, render.DefaultTool, config.Tool)
}
