// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports how the chirp binary was built.
//
// Values are injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/chirp-go/chirp/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"
	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"
	// Version is the semantic version, set by hand for releases.
	Version = "0.1.0-dev"
)

// Info returns the one-line form printed by --version.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, runtime.Version())
}

// UserAgent returns the User-Agent header value for program.
func UserAgent(program string) string {
	return program + "/" + Version
}
