// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package template renders ${{ }} expressions found in recipe documents.

Expressions are evaluated with starlark, extended with filter pipes
(value | filter(args)) and ~ concatenation. Names missing from the
context never fail rendering: the expression that referenced them is left
in the output as written, so a recipe can be rendered in several passes.

Rendering a recipe happens in two phases. First each string entry of the
"context" section is rendered in order against the current state of the
context. Then every string scalar and key of the document is rendered
against the resolved context.
*/
package template
