// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

// Package tweet reads statuses: the home, mentions and per-user
// timelines, single lookups, and concurrent batch lookups.
//
// It also holds the value types shared with other packages: User,
// Entities and the service's Timestamp format. Entity ranges arrive as
// codepoint offsets and are rewritten to byte offsets during decoding,
// so text[entity.Range[0]:entity.Range[1]] slices the entity directly.
package tweet
