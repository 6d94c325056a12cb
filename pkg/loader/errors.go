// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"errors"
)

var (
	ErrIfWithoutThen    = errors.New("cannot have if without then, please reformat your variant file")
	ErrExpectedSequence = errors.New("expected a sequence node")
	ErrExpectedMapping  = errors.New("expected document to be a mapping")
)
