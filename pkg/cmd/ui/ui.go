// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"io"

	uitable "github.com/cppforlife/go-cli-ui/ui/table"
	"github.com/rbcompat/rbcompat/pkg/files"
)

type UI interface {
	files.UI

	PrintTable(uitable.Table) error
	Stdout() io.Writer
}
