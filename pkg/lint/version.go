// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package lint

import (
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

var condaVersionCharsRegexp = regexp.MustCompile(`^[*.+!_0-9a-z]+$`)

// IsValidVersion reports whether ver is a valid conda package version,
// eg. 1.2.3, 2024.1, 1.0rc1, 1!2.0 or 1.0.post1+local.
func IsValidVersion(ver string) bool {
	ver = strings.TrimSpace(ver)
	if ver == "" {
		return false
	}

	_, err := version.NewVersion(ver)
	if err == nil {
		return true
	}

	ver = strings.ToLower(ver)
	if strings.Contains(ver, "-") && !strings.Contains(ver, "_") {
		ver = strings.ReplaceAll(ver, "-", "_")
	}
	if !condaVersionCharsRegexp.MatchString(ver) {
		return false
	}

	epoch, rest, hasEpoch := strings.Cut(ver, "!")
	if hasEpoch {
		if epoch == "" || strings.Trim(epoch, "0123456789") != "" || strings.Contains(rest, "!") {
			return false
		}
		ver = rest
	}

	main, local, hasLocal := strings.Cut(ver, "+")
	if hasLocal && (strings.Contains(local, "+") || !validComponents(local)) {
		return false
	}
	return validComponents(main)
}

func validComponents(ver string) bool {
	for _, part := range strings.Split(strings.ReplaceAll(ver, "_", "."), ".") {
		if part == "" {
			return false
		}
	}
	return true
}
