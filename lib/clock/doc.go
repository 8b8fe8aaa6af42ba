// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the two time operations chirp needs: reading
// the current time and waiting for a deadline. Code that waits for a
// rate-limit window to reset takes a Clock so tests can drive it with
// Fake instead of sleeping.
package clock
