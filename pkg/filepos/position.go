// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type Position struct {
	lineNum int // 1 based
	col     int // 1 based, 0 if unknown
	file    string
	known   bool
}

func NewPosition(lineNum int) *Position {
	if lineNum <= 0 {
		panic("Lines are 1 based")
	}
	return &Position{lineNum: lineNum, known: true}
}

// NewPositionInFile returns the Position of line "lineNum" within the file "file"
func NewPositionInFile(lineNum int, file string) *Position {
	p := NewPosition(lineNum)
	p.file = file
	return p
}

// NewNodePosition returns the position of a yaml node within file.
func NewNodePosition(node *yaml.Node, file string) *Position {
	if node == nil || node.Line <= 0 {
		return NewUnknownPositionInFile(file)
	}
	return &Position{lineNum: node.Line, col: node.Column, file: file, known: true}
}

// NewUnknownPosition is equivalent of zero value *Position
func NewUnknownPosition() *Position {
	return &Position{}
}

// NewUnknownPositionInFile produces a Position of a known file at an unknown line.
func NewUnknownPositionInFile(file string) *Position {
	return &Position{file: file}
}

func (p *Position) SetFile(file string) { p.file = file }

func (p *Position) WithCol(col int) *Position {
	newPos := *p
	newPos.col = col
	return &newPos
}

func (p *Position) IsKnown() bool { return p != nil && p.known }

func (p *Position) LineNum() int {
	if !p.IsKnown() {
		panic("Position is unknown")
	}
	return p.lineNum
}

func (p *Position) Col() int { return p.col }

func (p *Position) GetFile() string { return p.file }

func (p *Position) AsString() string {
	if p.IsKnown() && p.col > 0 {
		return fmt.Sprintf("line %s col %d", p.AsCompactString(), p.col)
	}
	return "line " + p.AsCompactString()
}

func (p *Position) AsCompactString() string {
	filePrefix := p.file
	if len(filePrefix) > 0 {
		filePrefix += ":"
	}
	if p.IsKnown() {
		return fmt.Sprintf("%s%d", filePrefix, p.LineNum())
	}
	return fmt.Sprintf("%s?", filePrefix)
}
