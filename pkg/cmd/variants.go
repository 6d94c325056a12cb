// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	uitable "github.com/cppforlife/go-cli-ui/ui/table"
	cmdui "github.com/rbcompat/rbcompat/pkg/cmd/ui"
	"github.com/rbcompat/rbcompat/pkg/variant"
	"github.com/spf13/cobra"
)

type VariantsOptions struct {
	Platform PlatformFlags
	Debug    bool
}

func NewVariantsOptions() *VariantsOptions {
	return &VariantsOptions{}
}

func NewVariantsCmd(o *VariantsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List variant combinations",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.Platform.Set(cmd)
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

func (o *VariantsOptions) Run() error {
	return o.RunWithUI(cmdui.NewTTY(o.Debug))
}

func (o *VariantsOptions) RunWithUI(ui cmdui.UI) error {
	spec, err := o.Platform.Variants()
	if err != nil {
		return err
	}

	combinations, err := variant.Combinations(spec)
	if err != nil {
		return err
	}

	table := uitable.Table{Content: "combinations"}

	if len(combinations) > 0 {
		keys := combinations[0].Keys()
		for _, k := range keys {
			table.Header = append(table.Header, uitable.NewHeader(k))
		}
		for _, combination := range combinations {
			var row []uitable.Value
			for _, k := range keys {
				row = append(row, uitable.NewValueString(combination[k]))
			}
			table.Rows = append(table.Rows, row)
		}
	}

	return ui.PrintTable(table)
}
