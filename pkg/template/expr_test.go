// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	cases := map[string]string{
		"name":                       "(name)",
		"name | upper":               "__filter_upper((name))",
		"v | split('.') | join('|')": "__filter_join(__filter_split((v), '.'), '|')",
		"v | split()":                "__filter_split((v))",
		"a ~ '-' ~ b | lower":        "__concat__((a), ('-'), __filter_lower((b)))",
		"f(a | b)":                   "(f(a | b))",
		"~x":                         "(~x)",
	}

	for in, expected := range cases {
		out, err := translate(in)
		require.NoError(t, err)
		assert.Equal(t, expected, out, "translating %s", in)
	}

	_, err := translate("a | nope")
	require.EqualError(t, err, "no filter named 'nope'")

	_, err = translate("a | upper + 1")
	require.EqualError(t, err, "unexpected '+ 1' after filter 'upper'")
}

func TestFreeNames(t *testing.T) {
	expr, err := compileExpression(" pkg.attr + f(x, key=y) ~ z | default(d) ")
	require.NoError(t, err)
	assert.Equal(t, []string{"__concat__", "pkg", "f", "x", "y", "__filter_default", "z", "d"}, expr.names)
}
