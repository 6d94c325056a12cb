// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package ui provides a thin abstraction over user output (typically, a tty
device). Library packages accept the narrower files.UI.
*/
package ui
