// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	uierrs "github.com/cppforlife/go-cli-ui/errors"
	"github.com/rbcompat/rbcompat/pkg/cmd"
)

func main() {
	command := cmd.NewDefaultRbcompatCmd()

	err := command.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rbcompat: Error: %s\n", uierrs.NewMultiLineError(err))
		os.Exit(1)
	}
}
