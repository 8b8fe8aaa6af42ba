// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source injected into code that waits. Production
// code uses Real(); tests use Fake().
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d has
	// elapsed. If d <= 0 the channel receives immediately.
	After(d time.Duration) <-chan time.Time
}

// Until returns the duration from clock's current time to deadline.
// Negative when the deadline has passed.
func Until(clock Clock, deadline time.Time) time.Duration {
	return deadline.Sub(clock.Now())
}
