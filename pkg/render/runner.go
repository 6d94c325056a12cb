// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rbcompat/rbcompat/pkg/files"
)

type Command struct {
	WorkDir    string
	Executable string
	Args       []string
	Env        []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Executable}, c.Args...), " ")
}

// Runner executes a command and returns its stdout.
type Runner interface {
	Execute(ctx context.Context, command Command) ([]byte, error)
}

type ExecRunner struct {
	ui files.UI
}

var _ Runner = ExecRunner{}

func NewExecRunner(ui files.UI) ExecRunner {
	return ExecRunner{files.UIOrNoop(ui)}
}

func (r ExecRunner) Execute(ctx context.Context, command Command) ([]byte, error) {
	if command.Executable == "" {
		return nil, errors.New("command executable can not be empty")
	}

	var stderr bytes.Buffer

	// nolint:gosec
	cmd := exec.CommandContext(ctx, command.Executable, command.Args...)
	cmd.Dir = command.WorkDir
	cmd.Env = command.Env
	cmd.Stderr = &stderr

	r.ui.Debugf("running: %s\n", command)

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrapf(err, "running '%s': %s", command, msg)
		}
		return nil, errors.Wrapf(err, "running '%s'", command)
	}
	return out, nil
}
