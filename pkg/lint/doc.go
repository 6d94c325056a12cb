// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package lint checks recipes for common mistakes.

Lints are problems that must be fixed; hints are suggestions. Recipes are
checked in their structural form (branch records are not evaluated), so
lints that look at lists consider items of every branch.

The recipe schema and the package specific hints document are fetched
remotely. Both are owned by the caller through SchemaCache and HintsSource.
*/
package lint
