// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"strings"
	"time"

	uitable "github.com/cppforlife/go-cli-ui/ui/table"
	cmdui "github.com/rbcompat/rbcompat/pkg/cmd/ui"
	"github.com/rbcompat/rbcompat/pkg/loader"
	"github.com/rbcompat/rbcompat/pkg/orderedmap"
	"github.com/rbcompat/rbcompat/pkg/render"
	"github.com/rbcompat/rbcompat/pkg/template"
	"github.com/rbcompat/rbcompat/pkg/variant"
	"github.com/spf13/cobra"
)

type RenderOptions struct {
	Recipe               RecipeFlags
	Platform             PlatformFlags
	AllowMissingSelector bool
	Debug                bool

	BuildTool        string
	BuildToolVersion string

	// Runner executes the build tool; nil runs it as a subprocess.
	Runner render.Runner
}

func NewRenderOptions() *RenderOptions {
	return &RenderOptions{}
}

func NewRenderCmd(o *RenderOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render recipe once per variant combination",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.Recipe.Set(cmd)
	o.Platform.Set(cmd)
	cmd.Flags().BoolVar(&o.AllowMissingSelector, "allow-missing-selector", false, "Treat selectors that are not defined as true")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	cmd.Flags().StringVar(&o.BuildTool, "build-tool", "", "Render with an external build tool instead (eg. "+render.DefaultTool+")")
	cmd.Flags().StringVar(&o.BuildToolVersion, "build-tool-version", "", "Version constraint the build tool must satisfy (eg. '>= 0.20.0')")
	return cmd
}

func (o *RenderOptions) Run() error {
	return o.RunWithUI(cmdui.NewTTY(o.Debug))
}

func (o *RenderOptions) RunWithUI(ui cmdui.UI) error {
	t1 := time.Now()

	defer func() {
		ui.Debugf("total: %s\n", time.Now().Sub(t1))
	}()

	if o.BuildTool != "" {
		return o.runBuildTool(context.Background(), ui)
	}

	recipePath, err := o.Recipe.Find(ui)
	if err != nil {
		return err
	}

	ns, err := o.Platform.Namespace()
	if err != nil {
		return err
	}

	spec, err := o.Platform.Variants()
	if err != nil {
		return err
	}

	combinations, err := variant.Combinations(spec)
	if err != nil {
		return err
	}

	for i, combination := range combinations {
		comboNS := ns.Copy()
		for k, v := range combination.Namespace() {
			comboNS[k] = v
		}

		doc, err := loader.Parse(recipePath, comboNS, loader.Opts{AllowMissingSelector: o.AllowMissingSelector})
		if err != nil {
			return err
		}

		rendered, err := template.RenderRecipeWithContext(doc, combination)
		if err != nil {
			return err
		}

		out, err := loader.Dump(rendered)
		if err != nil {
			return err
		}

		if i > 0 {
			ui.Printf("---\n")
		}
		if len(combinations) > 1 {
			ui.Printf("# variant: %s\n", describeCombination(combination))
		}
		ui.Printf("%s", out)
	}

	return nil
}

func (o *RenderOptions) runBuildTool(ctx context.Context, ui cmdui.UI) error {
	if _, err := o.Platform.Namespace(); err != nil {
		return err
	}

	variants, err := o.Platform.Variants()
	if err != nil {
		return err
	}

	config := render.DefaultConfig().WithTarget(o.Platform.Platform)
	config.Tool = o.BuildTool

	renderer := render.NewRenderer(config, o.Runner, ui)

	if o.BuildToolVersion != "" {
		err := renderer.CheckToolVersion(ctx, o.BuildToolVersion)
		if err != nil {
			return err
		}
	}

	metas, err := renderer.RenderRecipes(ctx, o.Recipe.Path, variants)
	if err != nil {
		return err
	}

	table := uitable.Table{
		Content: "outputs",
		Header: []uitable.Header{
			uitable.NewHeader("Name"),
			uitable.NewHeader("Version"),
			uitable.NewHeader("Variant"),
		},
	}

	for _, meta := range metas {
		name, err := meta.Name()
		if err != nil {
			return err
		}
		version, err := meta.Version()
		if err != nil {
			return err
		}
		table.Rows = append(table.Rows, []uitable.Value{
			uitable.NewValueString(name),
			uitable.NewValueString(version),
			uitable.NewValueString(describeVariant(meta.UsedVariant())),
		})
	}

	return ui.PrintTable(table)
}

func describeVariant(used *orderedmap.Map) string {
	var pairs []string
	for _, k := range used.Keys() {
		v, _ := used.Get(k)
		str, _ := v.(string)
		pairs = append(pairs, k+"="+str)
	}
	return strings.Join(pairs, ", ")
}

func describeCombination(combination variant.Combination) string {
	var pairs []string
	for _, k := range combination.Keys() {
		pairs = append(pairs, k+"="+combination[k])
	}
	return strings.Join(pairs, ", ")
}
