// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package render runs the external build tool in render-only mode and exposes
the resulting per-variant recipes as MetaData.

MetaData may also be built from an unrendered recipe, in which case only the
recipe context is evaluated (see template.RenderRecipeWithContext).
*/
package render
