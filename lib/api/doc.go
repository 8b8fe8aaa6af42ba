// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

// Package api is the request pipeline shared by every chirp endpoint
// package.
//
// A request goes through three layers:
//
//   - [Exchange] drives one HTTP round trip through an explicit state
//     machine (dispatching, awaiting headers, streaming the body,
//     decoding, done) and classifies the outcome. Service error
//     envelopes are recognized before the status code is consulted, so a
//     rate-limit error body (code 88) paired with an X-Rate-Limit-Reset
//     header becomes a [*RateLimitedError] instead of a bare status.
//   - [Call] composes an Exchange with a decode function and produces a
//     typed value. [ParseResponse] is the standard decoder: JSON into T,
//     plus the rate-limit headers captured by the same exchange.
//   - [Response] pairs a payload with its [RateLimit]. [Collect] folds
//     several responses into one, keeping the most constrained
//     rate-limit observation.
//
// Nothing in this package retries or throttles. Every failure is
// returned to the caller, who decides whether to wait (see
// [WaitForReset]) and try again.
package api
