// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package files locates recipe files and loads bytes from local files, HTTP
URLs or standard input through a common Source interface.
*/
package files
