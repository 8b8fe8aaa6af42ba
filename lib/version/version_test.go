// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"testing"
)

func TestInfo(t *testing.T) {
	savedCommit, savedDirty := GitCommit, GitDirty
	t.Cleanup(func() { GitCommit, GitDirty = savedCommit, savedDirty })

	GitCommit, GitDirty = "abc1234", "false"
	if got, want := Info(), Version+" (abc1234, "+runtime.Version()+")"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}

	GitDirty = "true"
	if got, want := Info(), Version+" (abc1234-dirty, "+runtime.Version()+")"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent("chirp"); got != "chirp/"+Version {
		t.Errorf("UserAgent = %q", got)
	}
}
