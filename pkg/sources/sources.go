// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"fmt"
	"iter"
	"sort"

	"github.com/rbcompat/rbcompat/pkg/conditional"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/selector"
	"github.com/rbcompat/rbcompat/pkg/template"
	"github.com/rbcompat/rbcompat/pkg/variant"
)

// Source identifies a source archive. Only the first URL of a source with
// mirrors is kept.
type Source struct {
	URL    string
	SHA256 string
	MD5    string
}

func (s Source) String() string {
	switch {
	case len(s.SHA256) > 0:
		return fmt.Sprintf("%s (sha256: %s)", s.URL, s.SHA256)
	case len(s.MD5) > 0:
		return fmt.Sprintf("%s (md5: %s)", s.URL, s.MD5)
	default:
		return s.URL
	}
}

// AllSources yields every source declared at the top level of recipe and
// in its outputs, with both branches of conditionals included.
func AllSources(recipe *orderedmap.Map) iter.Seq[interface{}] {
	return func(yield func(interface{}) bool) {
		if srcs, found := recipe.Get("source"); found && srcs != nil {
			for src := range conditional.Visit(srcs, nil) {
				if !yield(src) {
					return
				}
			}
		}

		outputs, found := recipe.Get("outputs")
		if !found || outputs == nil {
			return
		}

		for output := range conditional.Visit(outputs, nil) {
			outputMap, ok := output.(*orderedmap.Map)
			if !ok {
				continue
			}
			srcs, found := outputMap.Get("source")
			if !found || srcs == nil {
				continue
			}
			for src := range conditional.Visit(srcs, nil) {
				if !yield(src) {
					return
				}
			}
		}
	}
}

// AllURLSources yields the first URL of every source that has one.
func AllURLSources(recipe *orderedmap.Map) iter.Seq[string] {
	return func(yield func(string) bool) {
		for src := range AllSources(recipe) {
			srcMap, ok := src.(*orderedmap.Map)
			if !ok {
				continue
			}
			url, found := firstURL(srcMap)
			if !found {
				continue
			}
			if !yield(url) {
				return
			}
		}
	}
}

// RenderAllSources renders recipe for every combination of every variant
// config and collects the resulting top-level sources. overrideVersion,
// when not empty, replaces context.version before rendering.
func RenderAllSources(recipe *orderedmap.Map, variants []*orderedmap.Map, overrideVersion string) (map[Source]struct{}, error) {
	recipe = recipe.DeepCopy()

	if len(overrideVersion) > 0 {
		context, found := recipe.GetMap("context")
		if !found {
			context = orderedmap.NewMap()
			recipe.Set("context", context)
		}
		context.Set("version", overrideVersion)
	}

	env := template.NewEnvironment()
	result := map[Source]struct{}{}

	for _, spec := range variants {
		combinations, err := variant.Combinations(spec)
		if err != nil {
			return nil, err
		}

		for _, combination := range combinations {
			rendered, err := env.RenderRecipeWithContext(recipe, combination)
			if err != nil {
				return nil, err
			}

			srcs, found := rendered.Get("source")
			if !found || srcs == nil {
				continue
			}

			ns := selectorNamespace(combination)
			eval := func(cond interface{}) (bool, error) {
				return selector.Eval(fmt.Sprintf("%v", cond), ns)
			}

			for src, err := range conditional.VisitErr(srcs, eval) {
				if err != nil {
					return nil, fmt.Errorf("evaluating source conditions: %w", err)
				}
				srcMap, ok := src.(*orderedmap.Map)
				if !ok {
					continue
				}
				url, found := firstURL(srcMap)
				if !found {
					continue
				}
				result[Source{URL: url, SHA256: stringVal(srcMap, "sha256"), MD5: stringVal(srcMap, "md5")}] = struct{}{}
			}
		}
	}

	return result, nil
}

// Sorted orders sources by URL, then hashes.
func Sorted(set map[Source]struct{}) []Source {
	var result []Source
	for src := range set {
		result = append(result, src)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].URL != result[j].URL {
			return result[i].URL < result[j].URL
		}
		if result[i].SHA256 != result[j].SHA256 {
			return result[i].SHA256 < result[j].SHA256
		}
		return result[i].MD5 < result[j].MD5
	})
	return result
}

// selectorNamespace exposes combination values as selectors, on top of
// the platform selectors implied by target_platform.
func selectorNamespace(combination variant.Combination) selector.Namespace {
	ns := selector.Namespace{}
	if platform, found := combination["target_platform"]; found {
		if platformNS, err := selector.ForPlatform(platform); err == nil {
			ns = platformNS
		}
	}
	for k, v := range combination.Namespace() {
		ns[k] = v
	}
	return ns
}

func firstURL(src *orderedmap.Map) (string, bool) {
	url, found := src.Get("url")
	if !found {
		return "", false
	}
	switch typedURL := url.(type) {
	case string:
		return typedURL, true
	case []interface{}:
		if len(typedURL) == 0 {
			return "", false
		}
		return fmt.Sprintf("%v", typedURL[0]), true
	default:
		return fmt.Sprintf("%v", typedURL), true
	}
}

func stringVal(m *orderedmap.Map, key string) string {
	val, found := m.Get(key)
	if !found || val == nil {
		return ""
	}
	return fmt.Sprintf("%v", val)
}
