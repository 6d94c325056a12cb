// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"fmt"
	"strings"

	"github.com/rbcompat/rbcompat/pkg/filepos"
)

type Parser struct {
	associatedName string
}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(data string, associatedName string) (*NodeRoot, error) {
	p.associatedName = associatedName

	var lastNode interface{} = &NodeText{Position: p.newPosition(1, 1)}
	var nodes []interface{}

	var quote byte
	var escaped bool
	currLine := 1
	currCol := 1

	for i := 0; i < len(data); i++ {
		currChar := data[i]

		switch typedLastNode := lastNode.(type) {
		case *NodeText:
			if strings.HasPrefix(data[i:], CodeOpening) {
				typedLastNode.Content = data[typedLastNode.startOffset:i]
				if len(typedLastNode.Content) > 0 {
					nodes = append(nodes, typedLastNode)
				}
				lastNode = &NodeCode{
					Position:    p.newPosition(currLine, currCol),
					startOffset: i + len(CodeOpening),
				}
				i += len(CodeOpening) - 1
				currCol += len(CodeOpening)
				continue
			}

		case *NodeCode:
			switch {
			case quote != 0:
				switch {
				case escaped:
					escaped = false
				case currChar == '\\':
					escaped = true
				case currChar == quote:
					quote = 0
				}

			case currChar == '"' || currChar == '\'':
				quote = currChar

			case strings.HasPrefix(data[i:], CodeOpening):
				return nil, fmt.Errorf(
					"Unexpected code opening '%s' at line %d col %d", CodeOpening, currLine, currCol)

			case strings.HasPrefix(data[i:], CodeClosing):
				typedLastNode.Content = data[typedLastNode.startOffset:i]
				nodes = append(nodes, typedLastNode)
				lastNode = &NodeText{
					Position:    p.newPosition(currLine, currCol+len(CodeClosing)),
					startOffset: i + len(CodeClosing),
				}
				i += len(CodeClosing) - 1
				currCol += len(CodeClosing)
				continue
			}

		default:
			panic(fmt.Sprintf("unknown string template piece %T", typedLastNode))
		}

		if currChar == '\n' {
			currLine++
			currCol = 1
		} else {
			currCol++
		}
	}

	// close last node
	switch typedLastNode := lastNode.(type) {
	case *NodeText:
		typedLastNode.Content = data[typedLastNode.startOffset:]
		if len(typedLastNode.Content) > 0 {
			nodes = append(nodes, typedLastNode)
		}
	case *NodeCode:
		return nil, fmt.Errorf(
			"Missing code closing '%s' for code opened at %s", CodeClosing, typedLastNode.Position.AsString())
	default:
		panic(fmt.Sprintf("unknown string template piece %T", typedLastNode))
	}

	return &NodeRoot{Items: nodes}, nil
}

func (p *Parser) newPosition(line, col int) *filepos.Position {
	pos := filepos.NewPosition(line).WithCol(col)
	pos.SetFile(p.associatedName)
	return pos
}
