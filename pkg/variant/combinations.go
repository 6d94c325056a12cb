// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/rbcompat/rbcompat/pkg/orderedmap"
)

const ZipKeysKey = "zip_keys"

var ErrZipLengthMismatch = errors.New("zipped keys have lists of different lengths")

// Combination is one concrete assignment of a value to every variant key.
type Combination map[string]string

// Keys returns combination keys in sorted order.
func (c Combination) Keys() []string {
	var keys []string
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// axis contributes one row per combination; independent keys have
// single-key rows, zip groups have one row per zipped position.
type axis struct {
	keys []string
	rows [][]string
}

// Combinations returns every combination described by spec. Independent
// keys vary in declaration order (last key fastest), followed by zip groups.
// spec is not modified.
func Combinations(spec *orderedmap.Map) ([]Combination, error) {
	groups, err := ZipGroups(spec)
	if err != nil {
		return nil, err
	}

	zipped := map[string]struct{}{}
	for _, group := range groups {
		for _, key := range group {
			zipped[key] = struct{}{}
		}
	}

	var axes []axis

	for _, key := range spec.Keys() {
		if _, found := zipped[key]; found || key == ZipKeysKey {
			continue
		}
		val, _ := spec.Get(key)
		values := valuesOf(val)

		ax := axis{keys: []string{key}}
		for _, v := range values {
			ax.rows = append(ax.rows, []string{v})
		}
		axes = append(axes, ax)
	}

	for _, group := range groups {
		ax, err := zipAxis(spec, group)
		if err != nil {
			return nil, err
		}
		axes = append(axes, ax)
	}

	return product(axes), nil
}

func zipAxis(spec *orderedmap.Map, group []string) (axis, error) {
	ax := axis{keys: group}
	length := -1

	var columns [][]string
	for _, key := range group {
		val, found := spec.Get(key)
		if !found {
			return axis{}, fmt.Errorf("zip key '%s' is not defined in variant config", key)
		}
		values := valuesOf(val)
		if length >= 0 && len(values) != length {
			return axis{}, fmt.Errorf("%w: %v", ErrZipLengthMismatch, group)
		}
		length = len(values)
		columns = append(columns, values)
	}

	for i := 0; i < length; i++ {
		var row []string
		for _, column := range columns {
			row = append(row, column[i])
		}
		ax.rows = append(ax.rows, row)
	}
	return ax, nil
}

func product(axes []axis) []Combination {
	result := []Combination{{}}

	for _, ax := range axes {
		var next []Combination
		for _, partial := range result {
			for _, row := range ax.rows {
				combination := Combination{}
				for k, v := range partial {
					combination[k] = v
				}
				for i, key := range ax.keys {
					combination[key] = row[i]
				}
				next = append(next, combination)
			}
		}
		result = next
	}

	return result
}

// ZipGroups returns the key groups listed under zip_keys.
func ZipGroups(spec *orderedmap.Map) ([][]string, error) {
	val, found := spec.Get(ZipKeysKey)
	if !found || val == nil {
		return nil, nil
	}

	items, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected %s to be a list of lists, but was %T", ZipKeysKey, val)
	}

	var groups [][]string
	for _, item := range items {
		groupItems, ok := item.([]interface{})
		if !ok {
			return nil, fmt.Errorf("expected %s group to be a list, but was %T", ZipKeysKey, item)
		}
		var group []string
		for _, key := range groupItems {
			group = append(group, Stringify(key))
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// valuesOf treats a scalar as a single-value list.
func valuesOf(val interface{}) []string {
	switch typedVal := val.(type) {
	case []interface{}:
		result := make([]string, 0, len(typedVal))
		for _, item := range typedVal {
			result = append(result, Stringify(item))
		}
		return result
	case nil:
		return nil
	default:
		return []string{Stringify(typedVal)}
	}
}

// Stringify formats a variant value the way it appears in rendered recipes.
func Stringify(val interface{}) string {
	switch typedVal := val.(type) {
	case string:
		return typedVal
	case nil:
		return "None"
	case bool:
		if typedVal {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(typedVal)
	case float64:
		return strconv.FormatFloat(typedVal, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", typedVal)
	}
}
