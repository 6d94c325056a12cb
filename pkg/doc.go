// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of rbcompat.

This codebase is organized into well-defined layers. Each package keeps a
narrow responsibility and depends on its neighbours only as far as required.

In the inventory, below, individual packages are named alongside their coupling
with the other packages in the codebase.

	(# of dependents) => <package name> => (# of dependencies)

From top-down, rbcompat code is layered in this way:

# Entry Point

rbcompat is built as a command-line tool:

	./cmd/rbcompat

# Commands

Each subcommand (render, sources, variants, bump-build, bump-version, lint,
version) is a thin set of flags over the packages below.

	(1) => pkg/cmd => (12)
	(1) => pkg/cmd/ui => (1)

# Recipe Operations

Operations over a whole recipe: collecting source URLs per variant,
rewriting build number/version/hashes in place, linting, and delegating
rendering to the external build tool.

	(1) => pkg/sources => (6)
	(1) => pkg/modify => (4)
	(1) => pkg/lint => (4)
	(1) => pkg/render => (5)

# Evaluation

Variant configurations expand into concrete combinations. `${{ }}`
expressions are evaluated with Starlark, filters included, against the
recipe context and a variant combination.

	(2) => pkg/variant => (3)
	(4) => pkg/template => (4)
	(1) => pkg/template/core => (1)
	(1) => pkg/texttemplate => (1)

# Structure

Recipes are read into ordered documents. Selectors and if/then/else
conditional lists are resolved structurally while loading.

	(6) => pkg/loader => (4)
	(5) => pkg/selector => (0)
	(4) => pkg/conditional => (1)

# Utilities

	(10) => pkg/orderedmap => (0)
	(2) => pkg/filepos => (0)
	(5) => pkg/files => (0)
	(1) => pkg/version => (0)
*/
package pkg
