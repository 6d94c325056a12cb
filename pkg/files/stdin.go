// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var hasStdinBeenRead bool

// ReadStdin only read stdin once
func ReadStdin() ([]byte, error) {
	if hasStdinBeenRead {
		return nil, fmt.Errorf("Standard input has already been read, has the '-' argument been used more than once?")
	}
	hasStdinBeenRead = true
	return io.ReadAll(os.Stdin)
}

// SourceForPath returns a source for a local path, an HTTP(S) URL or '-'
// for standard input.
func SourceForPath(path string) Source {
	switch {
	case path == "-":
		return NewStdinSource()
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		return NewHTTPSource(path)
	default:
		return NewLocalSource(path)
	}
}
