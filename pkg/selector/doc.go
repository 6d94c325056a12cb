// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package selector evaluates the boolean conditions found in recipe "if" keys,
for example

	linux-64 and not (osx or win)

against a Namespace of platform facts. Only and, or, not, parentheses,
identifiers, string literals, True/False and ==/!= comparisons are
understood; nothing else is executed.
*/
package selector
