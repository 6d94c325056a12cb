// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"bytes"

	"github.com/rbcompat/rbcompat/pkg/conditional"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"gopkg.in/yaml.v3"
)

// RemoveEmptyKeys returns a copy of doc without the top-level keys whose
// value is an empty list.
func RemoveEmptyKeys(doc *orderedmap.Map) *orderedmap.Map {
	result := orderedmap.NewMap()
	doc.Iterate(func(k string, v interface{}) {
		if items, ok := v.([]interface{}); ok && len(items) == 0 {
			return
		}
		result.Set(k, v)
	})
	return result
}

// FlattenLists returns a copy of doc where every mapping value that is a
// list starting with a list is flattened by one level. Mappings are
// processed recursively, including mappings held in lists.
//
// zip_keys is a list of groups, so only groups wrapped in an extra list
// (as produced by a conditional branch) are unwrapped.
func FlattenLists(doc *orderedmap.Map) *orderedmap.Map {
	result := orderedmap.NewMap()
	doc.Iterate(func(k string, v interface{}) {
		switch typedVal := v.(type) {
		case *orderedmap.Map:
			result.Set(k, FlattenLists(typedVal))

		case []interface{}:
			if k == "zip_keys" {
				result.Set(k, flattenZipKeys(typedVal))
				return
			}
			if len(typedVal) > 0 {
				if _, nested := typedVal[0].([]interface{}); nested {
					typedVal = flattenOnce(typedVal)
				}
			}
			result.Set(k, flattenItems(typedVal))

		default:
			result.Set(k, v)
		}
	})
	return result
}

func flattenOnce(items []interface{}) []interface{} {
	var flat []interface{}
	for _, item := range items {
		if inner, ok := item.([]interface{}); ok {
			flat = append(flat, inner...)
		} else {
			flat = append(flat, item)
		}
	}
	return flat
}

func flattenItems(items []interface{}) []interface{} {
	result := make([]interface{}, len(items))
	for i, item := range items {
		if m, ok := item.(*orderedmap.Map); ok {
			result[i] = FlattenLists(m)
		} else {
			result[i] = item
		}
	}
	return result
}

func flattenZipKeys(groups []interface{}) []interface{} {
	var result []interface{}
	for _, group := range groups {
		inner, ok := group.([]interface{})
		if ok && len(inner) > 0 {
			if _, nested := inner[0].([]interface{}); nested {
				result = append(result, inner...)
				continue
			}
		}
		result = append(result, group)
	}
	return result
}

// LoadAllRequirements returns every requirements section of doc with all
// conditional branches enumerated. Sections with empty values are kept
// as they are.
func LoadAllRequirements(doc *orderedmap.Map) *orderedmap.Map {
	result := orderedmap.NewMap()

	requirements, found := doc.GetMap("requirements")
	if !found {
		return result
	}

	requirements.Iterate(func(section string, reqs interface{}) {
		if isEmpty(reqs) {
			result.Set(section, reqs)
			return
		}
		var items []interface{}
		for item := range conditional.Visit(reqs, nil) {
			items = append(items, item)
		}
		result.Set(section, items)
	})

	return result
}

func isEmpty(val interface{}) bool {
	switch typedVal := val.(type) {
	case nil:
		return true
	case string:
		return typedVal == ""
	case []interface{}:
		return len(typedVal) == 0
	case *orderedmap.Map:
		return typedVal.Len() == 0
	default:
		return false
	}
}

// Dump serializes a document as YAML with two-space indentation.
func Dump(val interface{}) ([]byte, error) {
	node, err := orderedmap.ToNode(val)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	err = enc.Encode(node)
	if err != nil {
		return nil, err
	}
	err = enc.Close()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
