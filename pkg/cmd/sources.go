// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	uitable "github.com/cppforlife/go-cli-ui/ui/table"
	cmdui "github.com/rbcompat/rbcompat/pkg/cmd/ui"
	"github.com/rbcompat/rbcompat/pkg/loader"
	"github.com/rbcompat/rbcompat/pkg/sources"
	"github.com/spf13/cobra"
)

type SourcesOptions struct {
	Recipe          RecipeFlags
	Platform        PlatformFlags
	Rendered        bool
	OverrideVersion string
	Debug           bool
}

func NewSourcesOptions() *SourcesOptions {
	return &SourcesOptions{}
}

func NewSourcesCmd(o *SourcesOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List recipe sources",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.Recipe.Set(cmd)
	o.Platform.Set(cmd)
	cmd.Flags().BoolVar(&o.Rendered, "rendered", false, "Render sources for every variant combination")
	cmd.Flags().StringVar(&o.OverrideVersion, "override-version", "", "Render sources with this version (requires --rendered)")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

func (o *SourcesOptions) Run() error {
	return o.RunWithUI(cmdui.NewTTY(o.Debug))
}

func (o *SourcesOptions) RunWithUI(ui cmdui.UI) error {
	if len(o.OverrideVersion) > 0 && !o.Rendered {
		return fmt.Errorf("Expected --override-version to be used together with --rendered")
	}

	recipePath, err := o.Recipe.Find(ui)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(recipePath)
	if err != nil {
		return fmt.Errorf("reading recipe: %w", err)
	}

	recipe, err := loader.LoadRecipe(data)
	if err != nil {
		return err
	}

	if !o.Rendered {
		table := uitable.Table{
			Content: "sources",
			Header:  []uitable.Header{uitable.NewHeader("URL")},
		}
		for url := range sources.AllURLSources(recipe) {
			table.Rows = append(table.Rows, []uitable.Value{uitable.NewValueString(url)})
		}
		return ui.PrintTable(table)
	}

	specs, err := o.Platform.VariantsPerFile()
	if err != nil {
		return err
	}

	set, err := sources.RenderAllSources(recipe, specs, o.OverrideVersion)
	if err != nil {
		return err
	}

	table := uitable.Table{
		Content: "sources",
		Header: []uitable.Header{
			uitable.NewHeader("URL"),
			uitable.NewHeader("SHA256"),
			uitable.NewHeader("MD5"),
		},
	}
	for _, src := range sources.Sorted(set) {
		table.Rows = append(table.Rows, []uitable.Value{
			uitable.NewValueString(src.URL),
			uitable.NewValueString(src.SHA256),
			uitable.NewValueString(src.MD5),
		})
	}
	return ui.PrintTable(table)
}
