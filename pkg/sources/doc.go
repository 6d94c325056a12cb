// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package sources finds the source archives declared by a recipe, either
across all conditional branches or rendered for concrete variants.
*/
package sources
