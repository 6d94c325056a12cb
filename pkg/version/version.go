// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

// Package version holds the rbcompat build version.
package version

// Version is overridden at build time via
// -ldflags "-X github.com/rbcompat/rbcompat/pkg/version.Version=..."
var Version = "develop"
