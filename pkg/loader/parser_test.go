// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package loader_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/k14s/difflib"
	"github.com/rbcompat/rbcompat/pkg/loader"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var selectedFileTestPath = kvArg("TestLoaderFiles.filetest")

func TestLoaderFiles(t *testing.T) {
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

		ns := selector.Namespace{"linux-64": true, "unix": true, "osx": false, "win": false}
		opts := loader.Opts{}
		if strings.HasPrefix(file.Name(), "lenient-") {
			ns = selector.Namespace{"osx": true, "unix": true}
			opts.AllowMissingSelector = true
		}

		resultStr, testErr := parseAndDump(pieces[0], ns, opts)
		expectedStr := pieces[1]

		if strings.HasPrefix(expectedStr, errPrefix) {
			if testErr == nil {
				err = fmt.Errorf("expected parse error, but did not receive it")
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

func parseAndDump(data string, ns selector.Namespace, opts loader.Opts) (string, error) {
	doc, err := loader.NewParser(ns, opts).ParseBytes([]byte(data), "stdin.yml")
	if err != nil {
		return "", err
	}
	out, err := loader.Dump(loader.FlattenLists(loader.RemoveEmptyKeys(doc)))
	return string(out), err
}

func TestParseChoosesBranchByNamespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variants.yaml")
	data := "c_compiler:\n  - if: linux-64\n    then: [x]\n    else: [y]\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	doc, err := loader.Parse(path, selector.Namespace{"linux-64": true, "unix": true}, loader.Opts{})
	require.NoError(t, err)
	val, _ := doc.Get("c_compiler")
	assert.Equal(t, []interface{}{"x"}, val)

	doc, err = loader.Parse(path, selector.Namespace{"linux-64": false, "unix": true}, loader.Opts{})
	require.NoError(t, err)
	val, _ = doc.Get("c_compiler")
	assert.Equal(t, []interface{}{"y"}, val)
}

func TestParseLenientDoesNotLeakIntoNamespace(t *testing.T) {
	ns := selector.Namespace{"osx": true, "unix": true}
	data := "c_compiler:\n  - if: win\n    then: vs2019\n"

	doc, err := loader.NewParser(ns, loader.Opts{AllowMissingSelector: true}).ParseBytes([]byte(data), "")
	require.NoError(t, err)
	val, _ := doc.Get("c_compiler")
	assert.Equal(t, []interface{}{"vs2019"}, val)
	assert.Equal(t, selector.Namespace{"osx": true, "unix": true}, ns)

	_, err = loader.NewParser(ns, loader.Opts{}).ParseBytes([]byte(data), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, selector.ErrUndefined))
}

func TestParseErrors(t *testing.T) {
	_, err := loader.NewParser(nil, loader.Opts{}).ParseBytes([]byte("- a\n- b\n"), "list.yaml")
	require.EqualError(t, err, "line list.yaml:1 col 1: expected document to be a mapping")

	_, err = loader.NewParser(nil, loader.Opts{}).ParseBytes([]byte("a: [b\n"), "broken.yaml")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "unmarshaling 'broken.yaml': "), err.Error())

	_, err = loader.NewParser(nil, loader.Opts{}).ParseBytes([]byte("a:\n  - if: unix\n"), "x.yaml")
	require.True(t, errors.Is(err, loader.ErrIfWithoutThen))

	_, err = loader.Parse(filepath.Join(t.TempDir(), "missing.yaml"), nil, loader.Opts{})
	require.Error(t, err)
}

func TestConstructSequenceRequiresSequence(t *testing.T) {
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("a: b\n"), &node))

	_, err := loader.NewParser(nil, loader.Opts{}).ConstructSequence(node.Content[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, loader.ErrExpectedSequence))
	assert.Contains(t, err.Error(), "but found mapping")
}

func TestParseEmptyDocument(t *testing.T) {
	doc, err := loader.NewParser(nil, loader.Opts{}).ParseBytes([]byte("# only a comment\n"), "")
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Len())
}

func TestLoadYAMLKeepsEverythingAsStrings(t *testing.T) {
	doc, err := loader.LoadRecipe([]byte("build:\n  number: 0\n  noarch: python\nskip: true\nsource:\n  - if: unix\n    then:\n      url: a\n"))
	require.NoError(t, err)

	build, _ := doc.GetMap("build")
	number, _ := build.Get("number")
	assert.Equal(t, "0", number)

	skip, _ := doc.Get("skip")
	assert.Equal(t, "true", skip)

	source, _ := doc.Get("source")
	require.Len(t, source, 1)
	branch := source.([]interface{})[0].(*orderedmap.Map)
	assert.Equal(t, []string{"if", "then"}, branch.Keys())
}

func TestLoadAllRequirements(t *testing.T) {
	doc, err := loader.LoadRecipe([]byte(`
requirements:
  build:
    - if: unix
      then: make
      else: nmake
    - cmake
  host:
  run:
    - python
    - if: win
      then: [pywin32]
`))
	require.NoError(t, err)

	reqs := loader.LoadAllRequirements(doc)
	assert.Equal(t, []string{"build", "host", "run"}, reqs.Keys())

	build, _ := reqs.Get("build")
	assert.Equal(t, []interface{}{"make", "nmake", "cmake"}, build)
	host, _ := reqs.Get("host")
	assert.Equal(t, "", host)
	run, _ := reqs.Get("run")
	assert.Equal(t, []interface{}{"python", "pywin32"}, run)

	assert.Equal(t, 0, loader.LoadAllRequirements(orderedmap.NewMap()).Len())
}

func TestRemoveEmptyKeysAndFlattenLists(t *testing.T) {
	doc := orderedmap.NewMap()
	doc.Set("empty", []interface{}{})
	doc.Set("nested", []interface{}{[]interface{}{"a", "b"}, []interface{}{"c"}})
	inner := orderedmap.NewMap()
	inner.Set("deep", []interface{}{[]interface{}{"d"}})
	doc.Set("inner", inner)
	doc.Set("plain", []interface{}{"e", []interface{}{"f"}})

	result := loader.FlattenLists(loader.RemoveEmptyKeys(doc))
	assert.Equal(t, []string{"nested", "inner", "plain"}, result.Keys())

	nested, _ := result.Get("nested")
	assert.Equal(t, []interface{}{"a", "b", "c"}, nested)

	innerResult, _ := result.GetMap("inner")
	deep, _ := innerResult.Get("deep")
	assert.Equal(t, []interface{}{"d"}, deep)

	plain, _ := result.Get("plain")
	assert.Equal(t, []interface{}{"e", []interface{}{"f"}}, plain)

	// input is left untouched
	assert.True(t, doc.Has("empty"))
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
