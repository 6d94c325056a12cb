// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package variant expands variant configurations into concrete build
combinations.

A variant configuration maps keys to lists of values. Keys named together
in a zip_keys group vary in lockstep; every other key varies independently.
*/
package variant
