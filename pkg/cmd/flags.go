// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/k14s/difflib"
	cmdui "github.com/rbcompat/rbcompat/pkg/cmd/ui"
	"github.com/rbcompat/rbcompat/pkg/files"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/selector"
	"github.com/rbcompat/rbcompat/pkg/variant"
	"github.com/spf13/cobra"
)

type RecipeFlags struct {
	Path string
}

func (f *RecipeFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Path, "recipe", "r", ".", "Recipe file or directory containing recipe.yaml")
}

func (f RecipeFlags) Find(ui files.UI) (string, error) {
	return files.FindRecipe(f.Path, ui)
}

type PlatformFlags struct {
	Platform     string
	VariantFiles []string
}

func (f *PlatformFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Platform, "platform", selector.HostPlatform(), "Target platform (eg. linux-64, osx-arm64, win-64)")
	cmd.Flags().StringArrayVarP(&f.VariantFiles, "variant-file", "m", nil, "Variant config file (can be specified multiple times)")
}

func (f PlatformFlags) Namespace() (selector.Namespace, error) {
	return selector.ForPlatform(f.Platform)
}

// Variants merges all variant files into one config.
func (f PlatformFlags) Variants() (*orderedmap.Map, error) {
	return f.load(f.VariantFiles)
}

// VariantsPerFile loads every variant file as a separate config. Without
// files a single config for the target platform is returned.
func (f PlatformFlags) VariantsPerFile() ([]*orderedmap.Map, error) {
	if len(f.VariantFiles) == 0 {
		spec, err := f.load(nil)
		if err != nil {
			return nil, err
		}
		return []*orderedmap.Map{spec}, nil
	}

	var result []*orderedmap.Map
	for _, path := range f.VariantFiles {
		spec, err := f.load([]string{path})
		if err != nil {
			return nil, err
		}
		result = append(result, spec)
	}
	return result, nil
}

func (f PlatformFlags) load(paths []string) (*orderedmap.Map, error) {
	ns, err := f.Namespace()
	if err != nil {
		return nil, err
	}

	spec, err := variant.LoadFiles(paths, ns)
	if err != nil {
		return nil, err
	}
	if !spec.Has("target_platform") {
		spec.Set("target_platform", []interface{}{f.Platform})
	}
	return spec, nil
}

// OutputFlags decide what happens to an updated recipe.
type OutputFlags struct {
	Diff  bool
	Write bool
}

func (f *OutputFlags) Set(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.Diff, "diff", false, "Show a diff instead of the updated recipe")
	cmd.Flags().BoolVarP(&f.Write, "write", "w", false, "Write the updated recipe in place")
}

func (f OutputFlags) Emit(ui cmdui.UI, path string, original []byte, updated string) error {
	switch {
	case f.Write:
		err := files.NewOutputFile(path, []byte(updated)).Write()
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		ui.Printf("Updated %s\n", path)

	case f.Diff:
		ui.Printf("%s", difflib.PPDiff(strings.Split(string(original), "\n"), strings.Split(updated, "\n")))

	default:
		ui.Printf("%s", updated)
	}
	return nil
}
