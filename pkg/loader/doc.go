// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package loader reads recipe and variant YAML into orderedmap documents.

Parser resolves "if/then/else" branch records structurally while building
the document: YAML text is first decoded into an immutable yaml.v3 node
tree, and a second pass produces a new, conditional-free document. Every
scalar is kept as a string.

LoadYAML performs the same conversion without evaluating any conditions.
*/
package loader
