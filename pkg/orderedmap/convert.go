// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

type Conversion struct {
	Object interface{}
}

// AsUnorderedStringMaps returns a copy of the object where every *Map is
// replaced with map[string]interface{}. Used when handing documents to
// libraries that expect plain JSON-like values.
func (c Conversion) AsUnorderedStringMaps() interface{} {
	return c.asUnorderedStringMaps(c.Object)
}

func (c Conversion) asUnorderedStringMaps(object interface{}) interface{} {
	switch typedObj := object.(type) {
	case map[string]interface{}:
		panic("Expected *orderedmap.Map instead of map[string]interface{} in asUnorderedStringMaps")

	case *Map:
		result := map[string]interface{}{}
		typedObj.Iterate(func(k string, v interface{}) {
			result[k] = c.asUnorderedStringMaps(v)
		})
		return result

	case []interface{}:
		result := make([]interface{}, len(typedObj))
		for i, item := range typedObj {
			result[i] = c.asUnorderedStringMaps(item)
		}
		return result

	default:
		return typedObj
	}
}

// FromUnorderedMaps converts plain maps into *Map with keys sorted.
func (c Conversion) FromUnorderedMaps() interface{} {
	return c.fromUnorderedMaps(c.Object)
}

func (c Conversion) fromUnorderedMaps(object interface{}) interface{} {
	switch typedObj := object.(type) {
	case map[string]interface{}:
		result := NewMap()
		for _, key := range c.sortedMapKeys(typedObj) {
			result.Set(key, c.fromUnorderedMaps(typedObj[key]))
		}
		return result

	case map[interface{}]interface{}:
		result := NewMap()
		strMap := map[string]interface{}{}
		for k, v := range typedObj {
			strMap[fmt.Sprintf("%v", k)] = v
		}
		for _, key := range c.sortedMapKeys(strMap) {
			result.Set(key, c.fromUnorderedMaps(strMap[key]))
		}
		return result

	case *Map:
		panic("Expected map[string]interface{} instead of *orderedmap.Map in fromUnorderedMaps")

	case []interface{}:
		result := make([]interface{}, len(typedObj))
		for i, item := range typedObj {
			result[i] = c.fromUnorderedMaps(item)
		}
		return result

	default:
		return typedObj
	}
}

func (Conversion) sortedMapKeys(m map[string]interface{}) []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromNode converts a yaml.v3 node into a document value. Every scalar
// becomes a string regardless of its resolved tag, so "true", "1" and
// "null" all stay textual.
func FromNode(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return FromNode(node.Content[0])

	case yaml.MappingNode:
		result := NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			if keyNode.Kind == yaml.AliasNode {
				keyNode = keyNode.Alias
			}
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: expected mapping key to be a scalar", keyNode.Line)
			}
			val, err := FromNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			result.Set(keyNode.Value, val)
		}
		return result, nil

	case yaml.SequenceNode:
		result := []interface{}{}
		for _, item := range node.Content {
			val, err := FromNode(item)
			if err != nil {
				return nil, err
			}
			result = append(result, val)
		}
		return result, nil

	case yaml.ScalarNode:
		return node.Value, nil

	case yaml.AliasNode:
		return FromNode(node.Alias)

	default:
		return nil, fmt.Errorf("line %d: unknown yaml node kind %d", node.Line, node.Kind)
	}
}

// ToNode converts a document value into a yaml.v3 node suitable for encoding.
func ToNode(val interface{}) (*yaml.Node, error) {
	switch typedVal := val.(type) {
	case *Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		err := typedVal.IterateErr(func(k string, v interface{}) error {
			valNode, err := ToNode(v)
			if err != nil {
				return err
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, valNode)
			return nil
		})
		return node, err

	case []interface{}:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range typedVal {
			itemNode, err := ToNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, itemNode)
		}
		return node, nil

	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: typedVal}, nil

	default:
		node := &yaml.Node{}
		err := node.Encode(val)
		if err != nil {
			return nil, fmt.Errorf("encoding %T: %w", val, err)
		}
		return node, nil
	}
}
