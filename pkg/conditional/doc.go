// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package conditional resolves branch records of the form

	{if: <condition>, then: <value or list>, else: <value or list>}

that may appear anywhere a list is expected in a recipe.

With an Evaluator (selector mode) only the chosen branch is emitted. Without
one (enumeration mode) both branches are emitted, which lets callers discover
every value a recipe could produce across all platforms.
*/
package conditional
