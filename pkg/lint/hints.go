// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package lint

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/rbcompat/rbcompat/pkg/files"
	"github.com/rbcompat/rbcompat/pkg/loader"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
)

const (
	HintsURL       = "https://raw.githubusercontent.com/conda-forge/conda-forge-pinning-feedstock/main/recipe/linter_hints/hints.toml"
	HintsURLEnvVar = "RBCOMPAT_HINTS_URL"
)

// HintsSource provides package specific hints keyed by package name
// (eg. "matplotlib" suggests depending on matplotlib-base). The document
// is either TOML with a [hints] table or YAML with a hints mapping.
type HintsSource struct {
	src files.Source
	ui  files.UI

	once  sync.Once
	hints map[string]string
}

func NewHintsSource(src files.Source, ui files.UI) *HintsSource {
	return &HintsSource{src: src, ui: files.UIOrNoop(ui)}
}

func NewDefaultHintsSource(ui files.UI) *HintsSource {
	url := os.Getenv(HintsURLEnvVar)
	if url == "" {
		url = HintsURL
	}
	return NewHintsSource(files.SourceForPath(url), ui)
}

// Hints returns the hints document. Hints are not important enough to fail
// linting, so an unavailable or malformed document yields no hints.
func (h *HintsSource) Hints(ctx context.Context) map[string]string {
	h.once.Do(func() {
		hints, err := h.load(ctx)
		if err != nil {
			h.ui.Debugf("skipping package hints: %s\n", err)
			hints = map[string]string{}
		}
		h.hints = hints
	})
	return h.hints
}

func (h *HintsSource) load(ctx context.Context) (map[string]string, error) {
	data, err := files.ReadBytes(ctx, h.src)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Hints map[string]string `toml:"hints"`
	}

	_, tomlErr := toml.Decode(string(data), &doc)
	if tomlErr == nil && doc.Hints != nil {
		return doc.Hints, nil
	}

	hints, yamlErr := yamlHints(data)
	if yamlErr != nil {
		if tomlErr != nil {
			return nil, fmt.Errorf("decoding hints from %s: %w", h.src.Description(), tomlErr)
		}
		return nil, fmt.Errorf("decoding hints from %s: %w", h.src.Description(), yamlErr)
	}
	return hints, nil
}

func yamlHints(data []byte) (map[string]string, error) {
	doc, err := loader.LoadYAML(data)
	if err != nil {
		return nil, err
	}

	docMap, ok := doc.(*orderedmap.Map)
	if !ok {
		return nil, fmt.Errorf("expected hints to be a mapping, but was %T", doc)
	}
	if nested, found := docMap.GetMap("hints"); found {
		docMap = nested
	}

	hints := map[string]string{}
	docMap.Iterate(func(k string, v interface{}) {
		if typedV, ok := v.(string); ok {
			hints[k] = typedV
		}
	})
	return hints, nil
}
