// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package texttemplate splits text containing "${{ expr }}" expressions into
text and code nodes. Evaluation of code nodes lives in package template.
*/
package texttemplate
