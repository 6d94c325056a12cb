// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"github.com/rbcompat/rbcompat/pkg/loader"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/selector"
)

// LoadFiles parses variant files and merges them in order. Keys from later
// files replace earlier ones; selectors missing from ns are treated as true.
func LoadFiles(paths []string, ns selector.Namespace) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()

	for _, path := range paths {
		doc, err := loader.Parse(path, ns, loader.Opts{AllowMissingSelector: true})
		if err != nil {
			return nil, err
		}
		Merge(result, doc)
	}

	return result, nil
}

// Merge copies keys of src into dst, replacing existing values.
func Merge(dst, src *orderedmap.Map) {
	src.Iterate(func(k string, v interface{}) {
		dst.Set(k, orderedmap.DeepCopy(v))
	})
}

// Namespace exposes a combination as selector names.
func (c Combination) Namespace() selector.Namespace {
	ns := selector.Namespace{}
	for k, v := range c {
		ns[k] = v
	}
	return ns
}
