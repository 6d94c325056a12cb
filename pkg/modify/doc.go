// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package modify rewrites recipe files in place: bumping the build number,
or moving to a new version together with new source hashes.

Edits are made on the YAML node tree, so quoting styles, flow collections
and comments of the original file are kept.
*/
package modify
