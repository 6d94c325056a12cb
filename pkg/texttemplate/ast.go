// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"fmt"
	"strings"

	"github.com/rbcompat/rbcompat/pkg/filepos"
)

const (
	CodeOpening = "${{"
	CodeClosing = "}}"
)

type NodeRoot struct {
	Items []interface{}
}

type NodeText struct {
	Position *filepos.Position
	Content  string

	startOffset int
}

type NodeCode struct {
	Position *filepos.Position
	Content  string

	startOffset int
}

// HasCode reports whether any code node is present.
func (n *NodeRoot) HasCode() bool {
	for _, item := range n.Items {
		if _, ok := item.(*NodeCode); ok {
			return true
		}
	}
	return false
}

// AsString reconstructs the original text.
func (n *NodeRoot) AsString() string {
	var result strings.Builder
	for _, item := range n.Items {
		switch typedItem := item.(type) {
		case *NodeText:
			result.WriteString(typedItem.Content)
		case *NodeCode:
			result.WriteString(typedItem.AsSource())
		default:
			panic(fmt.Sprintf("unknown node type %T", typedItem))
		}
	}
	return result.String()
}

// AsSource returns the expression with its delimiters, as written.
func (n *NodeCode) AsSource() string {
	return CodeOpening + n.Content + CodeClosing
}
