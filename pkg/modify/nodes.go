// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package modify

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/rbcompat/rbcompat/pkg/conditional"
	"gopkg.in/yaml.v3"
)

// Document is a recipe kept as a YAML node tree.
type Document struct {
	root *yaml.Node
}

func NewDocument(data []byte) (*Document, error) {
	var root yaml.Node

	err := yaml.Unmarshal(data, &root)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling recipe: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected recipe to be a mapping")
	}

	return &Document{&root}, nil
}

func (d *Document) Body() *yaml.Node { return d.root.Content[0] }

// Bytes serializes the document with two-space indentation.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	err := enc.Encode(d.root)
	if err != nil {
		return nil, err
	}

	err = enc.Close()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// SourceNodes returns every source mapping at the top level and in
// outputs, including both branches of conditionals.
func (d *Document) SourceNodes() []*yaml.Node {
	var result []*yaml.Node

	collect := func(parent *yaml.Node) {
		for src := range conditional.Visit(branchItems(mappingValue(parent, "source")), nil) {
			if node, ok := src.(*yaml.Node); ok && node.Kind == yaml.MappingNode {
				result = append(result, node)
			}
		}
	}

	collect(d.Body())

	for output := range conditional.Visit(branchItems(mappingValue(d.Body(), "outputs")), nil) {
		if node, ok := output.(*yaml.Node); ok && node.Kind == yaml.MappingNode {
			collect(node)
		}
	}

	return result
}

// branchItems exposes a node as items understood by the conditional
// package: if/then/else mappings become branch records holding nodes.
func branchItems(node *yaml.Node) []interface{} {
	if node == nil {
		return nil
	}

	items := []*yaml.Node{node}
	if node.Kind == yaml.SequenceNode {
		items = node.Content
	}

	var result []interface{}
	for _, item := range items {
		cond := mappingValue(item, "if")
		if cond == nil || isNull(cond) {
			result = append(result, item)
			continue
		}

		branch := map[string]interface{}{"if": cond.Value, "then": branchValue(mappingValue(item, "then"))}
		if els := mappingValue(item, "else"); els != nil && !isNull(els) {
			branch["else"] = branchValue(els)
		}
		result = append(result, branch)
	}
	return result
}

func branchValue(node *yaml.Node) interface{} {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.SequenceNode {
		var items []interface{}
		for _, item := range node.Content {
			items = append(items, item)
		}
		return items
	}
	return node
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func mappingKeys(node *yaml.Node) []string {
	var keys []string
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

func deleteMappingKey(node *yaml.Node, key string) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			node.Content = append(node.Content[:i], node.Content[i+2:]...)
			return
		}
	}
}

// setMappingString sets key to a string value, keeping the quoting style
// of an existing value.
func setMappingString(node *yaml.Node, key, val string) {
	if existing := mappingValue(node, key); existing != nil {
		setString(existing, val)
		return
	}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: val})
}

func setString(node *yaml.Node, val string) {
	style := node.Style
	if node.Kind != yaml.ScalarNode {
		style = 0
	}
	*node = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: val, Style: style,
		HeadComment: node.HeadComment, LineComment: node.LineComment, FootComment: node.FootComment}
}

func setInt(node *yaml.Node, val int) {
	*node = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(val),
		HeadComment: node.HeadComment, LineComment: node.LineComment, FootComment: node.FootComment}
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

// firstURL returns the url of a source, or its first mirror.
func firstURL(source *yaml.Node) (string, bool) {
	url := mappingValue(source, "url")
	switch {
	case url == nil:
		return "", false
	case url.Kind == yaml.SequenceNode:
		if len(url.Content) == 0 {
			return "", false
		}
		return url.Content[0].Value, true
	default:
		return url.Value, true
	}
}
