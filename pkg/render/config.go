// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"os"
	"strings"

	"github.com/rbcompat/rbcompat/pkg/selector"
)

const DefaultTool = "rattler-build"

// Config describes the platforms handed to the build tool. Platform and
// Arch describe the build machine, HostPlatform and HostArch the target.
type Config struct {
	Platform     string
	Arch         string
	HostPlatform string
	HostArch     string

	Tool string
	Env  []string
}

// DefaultConfig builds and targets the running platform and passes the
// process environment through to the build tool.
func DefaultConfig() Config {
	platform, arch := splitPlatform(selector.HostPlatform())
	return Config{
		Platform:     platform,
		Arch:         arch,
		HostPlatform: platform,
		HostArch:     arch,
		Tool:         DefaultTool,
		Env:          os.Environ(),
	}
}

// WithTarget returns a copy of c targeting a conda platform such as linux-64.
func (c Config) WithTarget(platform string) Config {
	c.HostPlatform, c.HostArch = splitPlatform(platform)
	return c
}

func (c Config) BuildPlatform() string  { return joinPlatform(c.Platform, c.Arch) }
func (c Config) TargetPlatform() string { return joinPlatform(c.HostPlatform, c.HostArch) }

func (c Config) tool() string {
	if c.Tool == "" {
		return DefaultTool
	}
	return c.Tool
}

func splitPlatform(platform string) (string, string) {
	osName, arch, _ := strings.Cut(platform, "-")
	return osName, arch
}

func joinPlatform(osName, arch string) string {
	if arch == "" {
		return osName
	}
	return osName + "-" + arch
}
