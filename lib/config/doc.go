// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads chirp's client configuration.
//
// Configuration is loaded from a single file named by either the
// CHIRP_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no search path.
//
// The file is YAML unless its extension is .json or .jsonc, in which
// case it is JSON with comments and trailing commas allowed. Values in
// the file are merged over [Default].
//
// A file may carry development and production sections that override
// the API and log settings when [Config].Environment matches.
//
// ${HOME} and ${VAR:-default} patterns are expanded in file paths
// after loading. The bearer token may come from the file, from a token
// file, or from a named environment variable; see [AuthConfig].
//
// This package depends on no other chirp packages.
package config
