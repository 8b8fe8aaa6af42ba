// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chirp-go/chirp/lib/clock"
)

// Rate-limit response headers.
const (
	HeaderRateLimitLimit     = "X-Rate-Limit-Limit"
	HeaderRateLimitRemaining = "X-Rate-Limit-Remaining"
	HeaderRateLimitReset     = "X-Rate-Limit-Reset"
)

// RateLimit is the rate-limit state reported alongside one response.
// Every field is -1 when the endpoint sent no rate-limit headers.
type RateLimit struct {
	// Limit is the request ceiling for the current window.
	Limit int32 `json:"limit"`
	// Remaining is the number of requests left in the window.
	Remaining int32 `json:"remaining"`
	// Reset is the unix time (seconds) at which the window resets.
	Reset int32 `json:"reset"`
}

// NoRateLimit is the value used when no rate-limit headers are present.
var NoRateLimit = RateLimit{Limit: -1, Remaining: -1, Reset: -1}

// Limited reports whether the endpoint reported any rate-limit state.
func (limit RateLimit) Limited() bool {
	return limit.Limit != -1 || limit.Remaining != -1 || limit.Reset != -1
}

// ResetTime returns Reset as a time, or the zero time when unknown.
func (limit RateLimit) ResetTime() time.Time {
	if limit.Reset < 0 {
		return time.Time{}
	}
	return time.Unix(int64(limit.Reset), 0)
}

func (limit RateLimit) String() string {
	return fmt.Sprintf("%d/%d (reset %d)", limit.Remaining, limit.Limit, limit.Reset)
}

// RateLimitFromHeader reads the X-Rate-Limit-* headers. Absent headers
// yield -1 for that field; a header that is present but not a 32-bit
// integer is a *DecodeError.
func RateLimitFromHeader(header http.Header) (RateLimit, error) {
	limit, err := rateLimitHeader(header, HeaderRateLimitLimit)
	if err != nil {
		return NoRateLimit, err
	}
	remaining, err := rateLimitHeader(header, HeaderRateLimitRemaining)
	if err != nil {
		return NoRateLimit, err
	}
	reset, err := rateLimitHeader(header, HeaderRateLimitReset)
	if err != nil {
		return NoRateLimit, err
	}
	return RateLimit{Limit: limit, Remaining: remaining, Reset: reset}, nil
}

func rateLimitHeader(header http.Header, name string) (int32, error) {
	values := header.Values(name)
	if len(values) == 0 {
		return -1, nil
	}
	parsed, err := strconv.ParseInt(values[0], 10, 32)
	if err != nil {
		return -1, &DecodeError{Target: name + " header", Err: err}
	}
	return int32(parsed), nil
}

// WaitForReset blocks until the reset time carried by a rate-limit
// error has passed on clk, or ctx is done. It returns immediately with
// a nil error when err is not a *RateLimitedError or the reset is
// already in the past.
//
// Requests are never retried automatically; callers that want to honor
// a rate limit call this before retrying themselves.
func WaitForReset(ctx context.Context, clk clock.Clock, err error) error {
	reset, ok := IsRateLimited(err)
	if !ok {
		return nil
	}
	wait := clock.Until(clk, time.Unix(int64(reset), 0))
	if wait <= 0 {
		return nil
	}
	select {
	case <-clk.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
