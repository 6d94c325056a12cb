// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"time"

	uitable "github.com/cppforlife/go-cli-ui/ui/table"
	cmdui "github.com/rbcompat/rbcompat/pkg/cmd/ui"
	"github.com/rbcompat/rbcompat/pkg/lint"
	"github.com/spf13/cobra"
)

type LintOptions struct {
	Recipe RecipeFlags
	Schema bool
	Hints  bool
	Debug  bool
}

func NewLintOptions() *LintOptions {
	return &LintOptions{}
}

func NewLintCmd(o *LintOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Lint recipe",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.Recipe.Set(cmd)
	cmd.Flags().BoolVar(&o.Schema, "schema", true, "Validate recipe against the recipe schema ($"+lint.SchemaURLEnvVar+" overrides location)")
	cmd.Flags().BoolVar(&o.Hints, "hints", true, "Include package specific hints ($"+lint.HintsURLEnvVar+" overrides location)")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

func (o *LintOptions) Run() error {
	return o.RunWithLinter(cmdui.NewTTY(o.Debug), nil)
}

// RunWithLinter lints with linter, or with a linter configured from flags
// when linter is nil.
func (o *LintOptions) RunWithLinter(ui cmdui.UI, linter *lint.Linter) error {
	t1 := time.Now()

	defer func() {
		ui.Debugf("total: %s\n", time.Now().Sub(t1))
	}()

	if linter == nil {
		var schema *lint.SchemaCache
		var hints *lint.HintsSource

		if o.Schema {
			schema = lint.NewDefaultSchemaCache()
		}
		if o.Hints {
			hints = lint.NewDefaultHintsSource(ui)
		}
		linter = lint.NewLinter(schema, hints, ui)
	}

	result, err := linter.LintRecipe(context.Background(), o.Recipe.Path)
	if err != nil {
		return err
	}

	table := uitable.Table{
		Content: "findings",
		Header: []uitable.Header{
			uitable.NewHeader("Kind"),
			uitable.NewHeader("Message"),
		},
	}
	for _, msg := range result.Lints {
		table.Rows = append(table.Rows, []uitable.Value{uitable.NewValueString("lint"), uitable.NewValueString(msg)})
	}
	for _, msg := range result.Hints {
		table.Rows = append(table.Rows, []uitable.Value{uitable.NewValueString("hint"), uitable.NewValueString(msg)})
	}

	err = ui.PrintTable(table)
	if err != nil {
		return err
	}

	if !result.OK() {
		return fmt.Errorf("Found %d lint(s) in recipe", len(result.Lints))
	}
	return nil
}
