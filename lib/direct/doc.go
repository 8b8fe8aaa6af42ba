// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

// Package direct reads and writes direct messages.
//
// The service only exposes two streams: messages the authenticated user
// sent, and messages it received. Sent and Received page through each
// as a timeline.Timeline. ConversationTimeline loads both streams
// together and files every message under the other party, which is how
// conversations are usually presented.
package direct
