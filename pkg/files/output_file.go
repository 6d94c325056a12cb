// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"os"
)

// OutputFile is rewritten recipe content destined for an existing path.
type OutputFile struct {
	path string
	data []byte
}

func NewOutputFile(path string, data []byte) OutputFile {
	return OutputFile{path, data}
}

func (f OutputFile) Path() string  { return f.path }
func (f OutputFile) Bytes() []byte { return f.data }

// Write replaces the file contents, keeping its permissions.
func (f OutputFile) Write() error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(f.path); err == nil {
		mode = info.Mode().Perm()
	}

	fd, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	defer fd.Close()

	_, err = fd.Write(f.data)
	return err
}
