// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package selector

import (
	"fmt"
	"runtime"
	"strings"
)

var archSelectors = map[string][]string{
	"64":      {"x86_64"},
	"32":      {"x86"},
	"aarch64": {"aarch64", "arm64"},
	"arm64":   {"arm64", "aarch64"},
	"ppc64le": {"ppc64le"},
	"s390x":   {"s390x"},
	"armv6l":  {"armv6l"},
	"armv7l":  {"armv7l"},
}

// ForPlatform builds the selector facts of a conda platform string such as
// linux-64, osx-arm64, win-64 or noarch.
func ForPlatform(platform string) (Namespace, error) {
	ns := Namespace{
		"linux":           false,
		"osx":             false,
		"win":             false,
		"unix":            false,
		"target_platform": platform,
		"build_platform":  platform,
	}

	if platform == "noarch" {
		return ns, nil
	}

	osName, arch, found := strings.Cut(platform, "-")
	if !found {
		return nil, fmt.Errorf("expected platform '%s' to be in form <os>-<arch>", platform)
	}

	switch osName {
	case "linux":
		ns["linux"] = true
		ns["unix"] = true
	case "osx":
		ns["osx"] = true
		ns["unix"] = true
	case "win":
		ns["win"] = true
	case "emscripten", "wasi":
		ns[osName] = true
	default:
		return nil, fmt.Errorf("unknown platform os '%s' in '%s'", osName, platform)
	}

	ns[platform] = true
	for _, sel := range archSelectors[arch] {
		ns[sel] = true
	}

	return ns, nil
}

// HostPlatform returns the conda platform of the running process.
func HostPlatform() string {
	osName := map[string]string{"darwin": "osx", "windows": "win"}[runtime.GOOS]
	if osName == "" {
		osName = runtime.GOOS
	}

	arch := map[string]string{
		"amd64":   "64",
		"386":     "32",
		"arm64":   "aarch64",
		"ppc64le": "ppc64le",
		"s390x":   "s390x",
	}[runtime.GOARCH]
	if arch == "" {
		arch = runtime.GOARCH
	}
	if osName == "osx" && arch == "aarch64" {
		arch = "arm64"
	}

	return osName + "-" + arch
}
