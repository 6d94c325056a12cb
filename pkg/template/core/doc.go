// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package core converts between recipe document values and starlark values,
and provides the Undefined value that stands in for names missing from a
template context.
*/
package core
