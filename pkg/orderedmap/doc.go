// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package orderedmap provides the mapping type used for every recipe and
variant document. Unlike the native Go map, the order of keys is maintained.

Recipe documents are trees of *Map, []interface{} and string scalars (every
scalar is loaded as a string). Keeping key order is what keeps context
resolution and variant expansion deterministic.
*/
package orderedmap
