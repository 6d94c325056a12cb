// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/rbcompat/rbcompat/pkg/filepos"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/selector"
	"gopkg.in/yaml.v3"
)

type Opts struct {
	// AllowMissingSelector treats selector names missing from the
	// namespace as true instead of failing.
	AllowMissingSelector bool
}

type Parser struct {
	namespace selector.Namespace
	opts      Opts
	file      string
}

func NewParser(namespace selector.Namespace, opts Opts) *Parser {
	return &Parser{namespace: namespace, opts: opts}
}

// Parse reads the file at path and returns the resolved document with
// empty list values removed and nested lists flattened.
func Parse(path string, namespace selector.Namespace, opts Opts) (*orderedmap.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading '%s': %w", path, err)
	}

	doc, err := NewParser(namespace, opts).ParseBytes(data, path)
	if err != nil {
		return nil, err
	}

	return FlattenLists(RemoveEmptyKeys(doc)), nil
}

// ParseBytes resolves branch records in data. The result is not
// post-processed; see Parse.
func (p *Parser) ParseBytes(data []byte, associatedName string) (*orderedmap.Map, error) {
	p.file = associatedName

	node, err := decodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %w", p.describe(), err)
	}
	if node == nil {
		return orderedmap.NewMap(), nil
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: %w", filepos.NewNodePosition(node, p.file).AsString(), ErrExpectedMapping)
	}

	result, err := p.construct(node)
	if err != nil {
		return nil, err
	}
	return result.(*orderedmap.Map), nil
}

func (p *Parser) construct(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.MappingNode:
		result := orderedmap.NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := resolveAlias(node.Content[i])
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%s: expected mapping key to be a scalar",
					filepos.NewNodePosition(keyNode, p.file).AsString())
			}
			val, err := p.construct(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			result.Set(keyNode.Value, val)
		}
		return result, nil

	case yaml.SequenceNode:
		return p.ConstructSequence(node)

	case yaml.AliasNode:
		return p.construct(node.Alias)

	default:
		return orderedmap.FromNode(node)
	}
}

// ConstructSequence builds a list from a sequence node, replacing every
// branch record with the value of the chosen branch.
func (p *Parser) ConstructSequence(node *yaml.Node) ([]interface{}, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s: %w, but found %s",
			filepos.NewNodePosition(node, p.file).AsString(), ErrExpectedSequence, kindName(node.Kind))
	}

	result := []interface{}{}

	for _, child := range node.Content {
		child = resolveAlias(child)

		chosen, isBranch, err := p.evalBranch(child)
		if err != nil {
			return nil, err
		}

		if !isBranch {
			val, err := p.construct(child)
			if err != nil {
				return nil, err
			}
			result = append(result, val)
			continue
		}

		if chosen == nil {
			continue
		}

		// A chosen list stays a single item; FlattenLists removes the nesting.
		val, err := p.construct(chosen)
		if err != nil {
			return nil, err
		}
		result = append(result, val)
	}

	return result, nil
}

// evalBranch returns the node of the chosen branch when child is a branch
// record; a nil node means that nothing was chosen.
func (p *Parser) evalBranch(child *yaml.Node) (*yaml.Node, bool, error) {
	if child.Kind != yaml.MappingNode {
		return nil, false, nil
	}

	pairs := child.Content
	for idx := 0; idx+1 < len(pairs); idx += 2 {
		if pairs[idx].Value != "if" {
			continue
		}

		pos := filepos.NewNodePosition(pairs[idx], p.file)

		if idx+3 >= len(pairs) || pairs[idx+2].Value != "then" {
			return nil, true, fmt.Errorf("%s: %w", pos.AsString(), ErrIfWithoutThen)
		}
		thenNode := pairs[idx+3]

		var elseNode *yaml.Node
		if idx+5 < len(pairs) {
			if pairs[idx+4].Value != "else" {
				return nil, true, fmt.Errorf("%s: expected 'else' after 'then', but found '%s'",
					filepos.NewNodePosition(pairs[idx+4], p.file).AsString(), pairs[idx+4].Value)
			}
			elseNode = pairs[idx+5]
		}

		condNode := resolveAlias(pairs[idx+1])
		if condNode.Kind != yaml.ScalarNode {
			return nil, true, fmt.Errorf("%s: expected if condition to be a string", pos.AsString())
		}

		holds, err := p.evalCondition(condNode.Value)
		if err != nil {
			return nil, true, fmt.Errorf("%s: %w", pos.AsString(), err)
		}

		if holds {
			return thenNode, true, nil
		}
		return elseNode, true, nil
	}

	return nil, false, nil
}

func (p *Parser) evalCondition(cond string) (bool, error) {
	ns := p.namespace
	if p.opts.AllowMissingSelector {
		ns = selector.Lenient(cond, ns)
	}
	return selector.Eval(cond, ns)
}

func (p *Parser) describe() string {
	if p.file == "" {
		return "document"
	}
	return fmt.Sprintf("'%s'", p.file)
}

// LoadYAML loads data with every scalar as a string and without evaluating
// branch records. An empty document yields nil.
func LoadYAML(data []byte) (interface{}, error) {
	node, err := decodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling document: %w", err)
	}
	if node == nil {
		return nil, nil
	}
	return orderedmap.FromNode(node)
}

// LoadRecipe loads a recipe mapping from data; see LoadYAML.
func LoadRecipe(data []byte) (*orderedmap.Map, error) {
	doc, err := LoadYAML(data)
	if err != nil {
		return nil, err
	}
	switch typedDoc := doc.(type) {
	case nil:
		return orderedmap.NewMap(), nil
	case *orderedmap.Map:
		return typedDoc, nil
	default:
		return nil, ErrExpectedMapping
	}
}

func decodeNode(data []byte) (*yaml.Node, error) {
	var doc yaml.Node

	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, nil
		}
		return resolveAlias(doc.Content[0]), nil
	}
	return &doc, nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
