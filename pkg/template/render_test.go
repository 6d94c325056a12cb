// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package template_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/k14s/difflib"
	"github.com/rbcompat/rbcompat/pkg/loader"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var selectedFileTestPath = kvArg("TestTemplateFiles.filetest")

func TestTemplateFiles(t *testing.T) {
	files, err := os.ReadDir("filetests")
	require.NoError(t, err)

	var errs []error

	for _, file := range files {
		if len(selectedFileTestPath) > 0 && !strings.HasPrefix(file.Name(), selectedFileTestPath) {
			continue
		}

		contents, err := os.ReadFile(filepath.Join("filetests", file.Name()))
		require.NoError(t, err)

		const (
			testSep   = "\n+++\n"
			errPrefix = "\nERR: "
		)

		pieces := strings.SplitN(string(contents), testSep, 2)
		require.Len(t, pieces, 2, "expected file %s to include +++ separator", file.Name())

		resultStr, testErr := renderAndDump(pieces[0])
		expectedStr := pieces[1]

		if strings.HasPrefix(expectedStr, errPrefix) {
			if testErr == nil {
				err = fmt.Errorf("expected render error, but did not receive it")
			} else {
				err = expectEquals(t, testErr.Error(), strings.TrimSpace(strings.TrimPrefix(expectedStr, errPrefix)))
			}
		} else {
			if testErr == nil {
				err = expectEquals(t, resultStr, expectedStr)
			} else {
				err = testErr
			}
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %s", file.Name(), err))
		}
	}

	for _, err := range errs {
		t.Error(err)
	}
}

func renderAndDump(data string) (string, error) {
	recipe, err := loader.LoadRecipe([]byte(data))
	if err != nil {
		return "", err
	}
	rendered, err := template.RenderRecipeWithContext(recipe, nil)
	if err != nil {
		return "", err
	}
	out, err := loader.Dump(rendered)
	return string(out), err
}

func TestRenderString(t *testing.T) {
	ctx := template.Context{
		"name":    "foo",
		"version": "1.2.3",
		"amp":     "a&b",
		"flag":    "true",
		"items":   []interface{}{"x", "y"},
	}

	cases := []struct {
		in, out string
	}{
		{"plain text", "plain text"},
		{"${{ name }}-${{ version }}", "foo-1.2.3"},
		{"${{name}}", "foo"},
		{"${{ missing }}", "${{ missing }}"},
		{"${{missing}} and ${{ name }}", "${{missing}} and foo"},
		{"${{ missing.attr }}", "${{ missing.attr }}"},
		{"${{ missing + 'x' }}", "${{ missing + 'x' }}"},
		{"${{ name ~ '-' ~ missing }}", "foo-${{ missing }}"},
		{"${{ amp }}", "a&amp;b"},
		{"${{ '<b>' }}", "&lt;b&gt;"},
		{"${{ 1 == 1 }}", "True"},
		{"${{ none }}", "None"},
		{"${{ true and false }}", "False"},
		{"${{ items }}", "[&#39;x&#39;, &#39;y&#39;]"},
		{"${{ 'yes' if missing else 'no' }}", "no"},
		{"${{ 'a' if flag == 'true' else 'b' }}", "a"},
		{"${{ version.split('.')[1] }}", "2"},
		{"${{ version | version_to_buildstring }}", "12"},
		{"${{ python | version_to_buildstring }}", "${{ python | version_to_buildstring }}"},
		{"${{ version | split('.') | join('-') }}", "1-2-3"},
		{"${{ version | split(sep='.') | length }}", "3"},
		{"${{ name | upper }}", "FOO"},
		{"${{ name | replace('o', '0') }}", "f00"},
		{"${{ missing | default('dflt') }}", "dflt"},
		{"${{ '' | default('dflt', boolean=True) }}", "dflt"},
		{"${{ name | default('dflt', True) }}", "foo"},
		{"${{ '42' | int }}", "42"},
		{"${{ compiler('cxx') }}", "cxx_compiler_stub"},
		{"${{ compiler(lang) }}", "${{ compiler(lang) }}"},
		{"${{ stdlib('c') }}", "c_stdlib_stub"},
		{"${{ pin_compatible('numpy', max_pin='x.x') }}", "compatible_pin numpy"},
		{"${{ pin_subpackage(missing) }}", "subpackage_pin ${{ missing }}"},
		{"${{ cdt('mesa-libgl-devel') }}", "cdt_stub"},
		{"${{ '}}' }}", "}}"},
		{"${{ a | unknown_filter }}", "${{ a | unknown_filter }}"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			out, err := template.RenderString(tc.in, ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.out, out)
		})
	}
}

func TestRenderStringErrors(t *testing.T) {
	_, err := template.RenderString(`x ${{ 1 + "a" }}`, nil)
	require.ErrorContains(t, err, "unknown binary op: int + string")
	require.ErrorContains(t, err, `evaluating '${{ 1 + "a" }}'`)

	_, err = template.RenderString("${{ name", nil)
	require.EqualError(t, err, "Missing code closing '}}' for code opened at line 1 col 1")
}

func TestRenderStringKeepsUnparseableExpressions(t *testing.T) {
	for _, in := range []string{
		"${{ missing is defined }}",
		"${{ a b }}",
		`${{ "x" if y }}`,
		"${{ x[ }}",
		"${{ 1 + }}",
		"pre-${{ win and x is defined }}-post",
	} {
		t.Run(in, func(t *testing.T) {
			out, err := template.RenderString(in, template.Context{"x": "1", "win": "true"})
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestVersionToBuildString(t *testing.T) {
	assert.Equal(t, "12", template.VersionToBuildString("1.2.3"))
	assert.Equal(t, "12", template.VersionToBuildString("1.2"))
	assert.Equal(t, "12", template.VersionToBuildString("1.2.3 extra"))
	assert.Equal(t, "nothing", template.VersionToBuildString("nothing"))
}

func TestEnvFunctions(t *testing.T) {
	env := template.NewEnvironment()
	env.LookupEnv = func(name string) (string, bool) {
		if name == "SET_VAR" {
			return "value", true
		}
		return "", false
	}

	cases := map[string]string{
		"${{ env.get('SET_VAR') }}":                       "value",
		"${{ env.get('UNSET_VAR', 'fallback') }}":         "fallback",
		"${{ env.get('UNSET_VAR', default='fallback') }}": "fallback",
		"${{ env.get('UNSET_VAR', '') }}":                 "UNSET_VAR",
		"${{ env.get('UNSET_VAR') }}":                     "UNSET_VAR",
		"${{ env.exists('SET_VAR') }}":                    "True",
		"${{ env.exists('UNSET_VAR') }}":                  "False",
	}

	for in, expected := range cases {
		out, err := env.RenderString(in, nil)
		require.NoError(t, err)
		assert.Equal(t, expected, out, "rendering %s", in)
	}
}

func TestRenderContextOrder(t *testing.T) {
	ctx := orderedmap.NewMap()
	ctx.Set("name", "pkg")
	ctx.Set("full", "${{ name }}-${{ python }}")
	ctx.Set("python", "3.12")
	ctx.Set("list", []interface{}{"${{ name }}"})

	resolved, err := template.RenderContext(ctx, map[string]string{"python": "3.11", "target_platform": "linux-64"})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "full", "python", "list"}, resolved.Keys())

	full, _ := resolved.Get("full")
	assert.Equal(t, "pkg-3.12", full)

	// non-string entries are left as they are
	list, _ := resolved.Get("list")
	assert.Equal(t, []interface{}{"${{ name }}"}, list)

	// input is not modified
	orig, _ := ctx.Get("full")
	assert.Equal(t, "${{ name }}-${{ python }}", orig)
}

func TestRenderRecipeWithContextUsesVariant(t *testing.T) {
	recipe, err := loader.LoadRecipe([]byte(`
context:
  version: "1.0"
requirements:
  host:
    - python ${{ python }}.*
    - ${{ target_platform }}
`))
	require.NoError(t, err)

	rendered, err := template.RenderRecipeWithContext(recipe, map[string]string{"python": "3.11"})
	require.NoError(t, err)

	reqs, _ := rendered.GetMap("requirements")
	host, _ := reqs.Get("host")
	assert.Equal(t, []interface{}{"python 3.11.*", "${{ target_platform }}"}, host)
}

func TestRenderWithEmptyContextKeepsExpressions(t *testing.T) {
	doc := orderedmap.NewMap()
	doc.Set("a", "${{ x }}")
	doc.Set("b", []interface{}{"${{x}}-${{ y | lower }}", "${{ compiler('c') if x else 'z' }}"})

	rendered, err := template.RenderDocument(doc, template.Context{})
	require.NoError(t, err)

	a, _ := rendered.(*orderedmap.Map).Get("a")
	b, _ := rendered.(*orderedmap.Map).Get("b")
	assert.Equal(t, "${{ x }}", a)
	assert.Equal(t, []interface{}{"${{x}}-${{ y | lower }}", "z"}, b)
}

func expectEquals(t *testing.T, resultStr, expectedStr string) error {
	if resultStr != expectedStr {
		diff := difflib.PPDiff(strings.Split(expectedStr, "\n"), strings.Split(resultStr, "\n"))
		return fmt.Errorf("Not equal; diff expected...actual:\n%v", diff)
	}
	return nil
}

func kvArg(name string) string {
	name += "="
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, name) {
			return strings.TrimPrefix(arg, name)
		}
	}
	return ""
}
