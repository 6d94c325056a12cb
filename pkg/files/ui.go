// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"io"
)

type UI interface {
	Printf(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	DebugWriter() io.Writer
}

type noopUI struct{}

var _ UI = noopUI{}

// NewNoopUI returns a UI that discards everything.
func NewNoopUI() UI { return noopUI{} }

func (noopUI) Printf(string, ...interface{}) {}
func (noopUI) Warnf(string, ...interface{})  {}
func (noopUI) Debugf(string, ...interface{}) {}
func (noopUI) DebugWriter() io.Writer        { return io.Discard }

// UIOrNoop returns ui, or a no-op UI when ui is nil.
func UIOrNoop(ui UI) UI {
	if ui == nil {
		return NewNoopUI()
	}
	return ui
}
