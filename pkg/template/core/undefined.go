// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/k14s/starlark-go/starlark"
)

// Undefined stands in for a name that is not present in the template
// context. It converts to text as the expression that produced it, so that
// unresolved expressions survive partial rendering.
type Undefined struct {
	Expr string
}

var _ starlark.Value = Undefined{}

func NewUndefined(expr string) Undefined { return Undefined{expr} }

func (u Undefined) String() string        { return "${{ " + u.Expr + " }}" }
func (u Undefined) Type() string          { return "undefined" }
func (u Undefined) Freeze()               {}
func (u Undefined) Truth() starlark.Bool  { return starlark.False }
func (u Undefined) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: undefined") }

func IsUndefined(val starlark.Value) bool {
	_, ok := val.(Undefined)
	return ok
}
