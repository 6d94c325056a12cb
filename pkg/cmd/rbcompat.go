// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/cppforlife/cobrautil"
	"github.com/rbcompat/rbcompat/pkg/version"
	"github.com/spf13/cobra"
)

type RbcompatOptions struct{}

func NewDefaultRbcompatOptions() *RbcompatOptions {
	return &RbcompatOptions{}
}

func NewDefaultRbcompatCmd() *cobra.Command {
	return NewRbcompatCmd(NewDefaultRbcompatOptions())
}

func NewRbcompatCmd(o *RbcompatOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rbcompat",
		Version: version.Version,
		Short:   "rbcompat evaluates rattler-build recipes",
		Long: `rbcompat evaluates rattler-build recipes: it resolves selectors,
renders ${{ }} expressions, expands variant combinations, lists sources,
bumps versions and build numbers, and lints recipes.`,
	}

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(NewRenderCmd(NewRenderOptions()))
	cmd.AddCommand(NewSourcesCmd(NewSourcesOptions()))
	cmd.AddCommand(NewVariantsCmd(NewVariantsOptions()))
	cmd.AddCommand(NewBumpBuildCmd(NewBumpBuildOptions()))
	cmd.AddCommand(NewBumpVersionCmd(NewBumpVersionOptions()))
	cmd.AddCommand(NewLintCmd(NewLintOptions()))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
