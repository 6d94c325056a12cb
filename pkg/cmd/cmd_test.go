// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rbcompat/rbcompat/pkg/cmd"
	cmdui "github.com/rbcompat/rbcompat/pkg/cmd/ui"
	"github.com/rbcompat/rbcompat/pkg/lint"
	"github.com/rbcompat/rbcompat/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	abcSHA256   = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
)

const recipeYAML = `context:
  name: foo
  version: "1.0"

package:
  name: ${{ name }}
  version: ${{ version }}

source:
  - if: linux
    then:
      url: https://example.com/${{ name }}-${{ version }}.tar.gz
      sha256: ` + emptySHA256 + `
    else:
      url: https://example.com/${{ name }}-${{ version }}.zip
      sha256: ` + emptySHA256 + `

build:
  number: 0

requirements:
  host:
    - if: linux
      then: libfoo
      else: winfoo
    - python ${{ python }}
`

func writeRecipe(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipe.yaml"), []byte(recipeYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "variants.yaml"), []byte("python:\n  - \"3.10\"\n  - \"3.11\"\n"), 0644))
	return dir
}

func newTTY() (cmdui.TTY, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	return cmdui.NewCustomWriterTTY(false, stdout, &bytes.Buffer{}), stdout
}

func TestRenderCmd(t *testing.T) {
	dir := writeRecipe(t)
	tty, stdout := newTTY()

	opts := cmd.NewRenderOptions()
	opts.Recipe.Path = dir
	opts.Platform.Platform = "linux-64"
	opts.Platform.VariantFiles = []string{filepath.Join(dir, "variants.yaml")}

	require.NoError(t, opts.RunWithUI(tty))

	out := stdout.String()
	docs := strings.Split(out, "---\n")
	require.Len(t, docs, 2)

	assert.Contains(t, docs[0], "# variant: python=3.10, target_platform=linux-64")
	assert.Contains(t, docs[0], "python 3.10")
	assert.Contains(t, docs[1], "# variant: python=3.11, target_platform=linux-64")
	assert.Contains(t, docs[1], "python 3.11")

	assert.Contains(t, out, "libfoo")
	assert.Contains(t, out, "https://example.com/foo-1.0.tar.gz")
	assert.NotContains(t, out, "winfoo")
	assert.NotContains(t, out, ".zip")
}

func TestRenderCmdUnknownPlatform(t *testing.T) {
	tty, _ := newTTY()

	opts := cmd.NewRenderOptions()
	opts.Recipe.Path = writeRecipe(t)
	opts.Platform.Platform = "plan9-64"

	require.EqualError(t, opts.RunWithUI(tty), "unknown platform os 'plan9' in 'plan9-64'")
}

type buildToolRunner struct {
	commands []render.Command
}

func (r *buildToolRunner) Execute(_ context.Context, command render.Command) ([]byte, error) {
	r.commands = append(r.commands, command)
	if len(command.Args) == 1 && command.Args[0] == "--version" {
		return []byte("fake-build 0.21.0\n"), nil
	}
	return []byte(`[
  {"recipe": {"package": {"name": "foo", "version": "1.0"}},
   "build_configuration": {"variant": {"python": "3.10", "target_platform": "linux-64"}}},
  {"recipe": {"package": {"name": "foo", "version": "1.0"}},
   "build_configuration": {"variant": {"python": "3.11", "target_platform": "linux-64"}}}
]`), nil
}

func TestRenderCmdWithBuildTool(t *testing.T) {
	dir := writeRecipe(t)

	t.Run("renders each variant", func(t *testing.T) {
		tty, stdout := newTTY()
		runner := &buildToolRunner{}

		opts := cmd.NewRenderOptions()
		opts.Recipe.Path = dir
		opts.Platform.Platform = "linux-64"
		opts.Platform.VariantFiles = []string{filepath.Join(dir, "variants.yaml")}
		opts.BuildTool = "fake-build"
		opts.BuildToolVersion = ">= 0.20.0"
		opts.Runner = runner

		require.NoError(t, opts.RunWithUI(tty))

		require.Len(t, runner.commands, 2)
		assert.Equal(t, "fake-build", runner.commands[1].Executable)
		assert.Contains(t, runner.commands[1].Args, "--render-only")
		assert.Contains(t, runner.commands[1].Args, "-m")

		out := stdout.String()
		assert.Contains(t, out, "foo")
		assert.Contains(t, out, "python=3.10, target_platform=linux-64")
		assert.Contains(t, out, "python=3.11, target_platform=linux-64")
	})

	t.Run("unsatisfied version", func(t *testing.T) {
		tty, _ := newTTY()

		opts := cmd.NewRenderOptions()
		opts.Recipe.Path = dir
		opts.Platform.Platform = "linux-64"
		opts.BuildTool = "fake-build"
		opts.BuildToolVersion = ">= 1.0.0"
		opts.Runner = &buildToolRunner{}

		require.EqualError(t, opts.RunWithUI(tty), "fake-build version 0.21.0 does not satisfy '>= 1.0.0'")
	})
}

func TestSourcesCmd(t *testing.T) {
	dir := writeRecipe(t)

	t.Run("unrendered", func(t *testing.T) {
		tty, stdout := newTTY()

		opts := cmd.NewSourcesOptions()
		opts.Recipe.Path = dir

		require.NoError(t, opts.RunWithUI(tty))
		assert.Contains(t, stdout.String(), "https://example.com/${{ name }}-${{ version }}.tar.gz")
		assert.Contains(t, stdout.String(), "https://example.com/${{ name }}-${{ version }}.zip")
	})

	t.Run("rendered", func(t *testing.T) {
		tty, stdout := newTTY()

		opts := cmd.NewSourcesOptions()
		opts.Recipe.Path = dir
		opts.Rendered = true
		opts.OverrideVersion = "2.0"
		opts.Platform.Platform = "win-64"

		require.NoError(t, opts.RunWithUI(tty))
		assert.Contains(t, stdout.String(), "https://example.com/foo-2.0.zip")
		assert.NotContains(t, stdout.String(), "tar.gz")
	})

	t.Run("override without rendered", func(t *testing.T) {
		tty, _ := newTTY()

		opts := cmd.NewSourcesOptions()
		opts.Recipe.Path = dir
		opts.OverrideVersion = "2.0"

		require.EqualError(t, opts.RunWithUI(tty), "Expected --override-version to be used together with --rendered")
	})
}

func TestVariantsCmd(t *testing.T) {
	dir := writeRecipe(t)
	tty, stdout := newTTY()

	opts := cmd.NewVariantsOptions()
	opts.Platform.Platform = "osx-arm64"
	opts.Platform.VariantFiles = []string{filepath.Join(dir, "variants.yaml")}

	require.NoError(t, opts.RunWithUI(tty))
	assert.Contains(t, stdout.String(), "3.10")
	assert.Contains(t, stdout.String(), "3.11")
	assert.Contains(t, stdout.String(), "osx-arm64")
}

func TestBumpBuildCmd(t *testing.T) {
	dir := writeRecipe(t)
	recipePath := filepath.Join(dir, "recipe.yaml")

	tty, stdout := newTTY()

	opts := cmd.NewBumpBuildOptions()
	opts.Recipe.Path = dir
	opts.BuildNumber = 3
	opts.Output.Write = true

	require.NoError(t, opts.RunWithUI(tty))
	assert.Equal(t, "Updated "+recipePath+"\n", stdout.String())

	data, err := os.ReadFile(recipePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "number: 3")
	assert.NotContains(t, string(data), "number: 0")
}

func TestBumpVersionCmd(t *testing.T) {
	dir := writeRecipe(t)

	t.Run("prints updated recipe", func(t *testing.T) {
		tty, stdout := newTTY()

		opts := cmd.NewBumpVersionOptions()
		opts.Recipe.Path = dir
		opts.Version = "2.0"
		opts.Hash = "sha256:" + abcSHA256

		require.NoError(t, opts.RunWithUI(tty))
		assert.Contains(t, stdout.String(), `version: "2.0"`)
		assert.Contains(t, stdout.String(), abcSHA256)
		assert.NotContains(t, stdout.String(), emptySHA256)
	})

	t.Run("diff", func(t *testing.T) {
		tty, stdout := newTTY()

		opts := cmd.NewBumpVersionOptions()
		opts.Recipe.Path = dir
		opts.Version = "2.0"
		opts.Hash = "sha256:" + abcSHA256
		opts.Output.Diff = true

		require.NoError(t, opts.RunWithUI(tty))
		assert.Contains(t, stdout.String(), abcSHA256)
		assert.Contains(t, stdout.String(), emptySHA256)

		data, err := os.ReadFile(filepath.Join(dir, "recipe.yaml"))
		require.NoError(t, err)
		assert.Equal(t, recipeYAML, string(data))
	})

	t.Run("requires version", func(t *testing.T) {
		tty, _ := newTTY()

		opts := cmd.NewBumpVersionOptions()
		opts.Recipe.Path = dir

		require.EqualError(t, opts.RunWithUI(tty), "Expected --version to be specified")
	})

	t.Run("invalid hash", func(t *testing.T) {
		tty, _ := newTTY()

		opts := cmd.NewBumpVersionOptions()
		opts.Recipe.Path = dir
		opts.Version = "2.0"
		opts.Hash = "crc32:abc"

		require.EqualError(t, opts.RunWithUI(tty), "unknown hash type 'crc32' (expected md5 or sha256)")
	})
}

func TestLintCmd(t *testing.T) {
	tty, stdout := newTTY()

	opts := cmd.NewLintOptions()
	opts.Recipe.Path = writeRecipe(t)

	err := opts.RunWithLinter(tty, lint.NewLinter(nil, nil, nil))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Found "), err.Error())
	assert.Contains(t, stdout.String(), "The recipe must have some tests.")
}

func TestVersionCmd(t *testing.T) {
	tty, stdout := newTTY()

	require.NoError(t, cmd.NewVersionOptions().RunWithUI(tty))
	assert.Equal(t, "rbcompat version develop\n", stdout.String())
}

func TestCommandTree(t *testing.T) {
	root := cmd.NewDefaultRbcompatCmd()

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	for _, name := range []string{"render", "sources", "variants", "bump-build", "bump-version", "lint", "version"} {
		assert.Contains(t, names, name)
	}
}
