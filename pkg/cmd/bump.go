// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	cmdui "github.com/rbcompat/rbcompat/pkg/cmd/ui"
	"github.com/rbcompat/rbcompat/pkg/modify"
	"github.com/spf13/cobra"
)

type BumpBuildOptions struct {
	Recipe      RecipeFlags
	Output      OutputFlags
	BuildNumber int
	Debug       bool
}

func NewBumpBuildOptions() *BumpBuildOptions {
	return &BumpBuildOptions{}
}

func NewBumpBuildCmd(o *BumpBuildOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bump-build",
		Short: "Set recipe build number",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.Recipe.Set(cmd)
	o.Output.Set(cmd)
	cmd.Flags().IntVarP(&o.BuildNumber, "build-number", "n", 0, "Build number")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

func (o *BumpBuildOptions) Run() error {
	return o.RunWithUI(cmdui.NewTTY(o.Debug))
}

func (o *BumpBuildOptions) RunWithUI(ui cmdui.UI) error {
	recipePath, err := o.Recipe.Find(ui)
	if err != nil {
		return err
	}

	original, err := os.ReadFile(recipePath)
	if err != nil {
		return fmt.Errorf("reading recipe: %w", err)
	}

	updated, err := modify.UpdateBuildNumberBytes(original, o.BuildNumber)
	if err != nil {
		return err
	}

	return o.Output.Emit(ui, recipePath, original, updated)
}

type BumpVersionOptions struct {
	Recipe  RecipeFlags
	Output  OutputFlags
	Version string
	Hash    string
	Debug   bool
}

func NewBumpVersionOptions() *BumpVersionOptions {
	return &BumpVersionOptions{}
}

func NewBumpVersionCmd(o *BumpVersionOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bump-version",
		Short: "Set recipe version and update source hashes",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.Recipe.Set(cmd)
	o.Output.Set(cmd)
	cmd.Flags().StringVar(&o.Version, "version", "", "New version")
	cmd.Flags().StringVar(&o.Hash, "hash", "", "Source hash (eg. sha256:<hex>); downloaded and computed when not given")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

func (o *BumpVersionOptions) Run() error {
	return o.RunWithUI(cmdui.NewTTY(o.Debug))
}

func (o *BumpVersionOptions) RunWithUI(ui cmdui.UI) error {
	if len(o.Version) == 0 {
		return fmt.Errorf("Expected --version to be specified")
	}

	var hash *modify.Hash

	if len(o.Hash) > 0 {
		parsed, err := modify.ParseHash(o.Hash)
		if err != nil {
			return err
		}
		hash = &parsed
	}

	recipePath, err := o.Recipe.Find(ui)
	if err != nil {
		return err
	}

	original, err := os.ReadFile(recipePath)
	if err != nil {
		return fmt.Errorf("reading recipe: %w", err)
	}

	updated, err := modify.UpdateVersionBytes(context.Background(), original, o.Version, hash, modify.NewDownloader(ui))
	if err != nil {
		return err
	}

	return o.Output.Emit(ui, recipePath, original, updated)
}
