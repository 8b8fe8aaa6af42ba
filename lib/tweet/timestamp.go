// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package tweet

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the service's created_at format,
// e.g. "Wed Aug 27 13:08:45 +0000 2008".
const TimestampLayout = time.RubyDate

// Timestamp is a time that marshals in TimestampLayout.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON parses a quoted TimestampLayout string. null leaves the
// zero time.
func (timestamp *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("tweet: timestamp: %w", err)
	}
	parsed, err := time.Parse(TimestampLayout, text)
	if err != nil {
		return fmt.Errorf("tweet: timestamp %q: %w", text, err)
	}
	timestamp.Time = parsed.UTC()
	return nil
}

// MarshalJSON renders the time in TimestampLayout.
func (timestamp Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(timestamp.UTC().Format(TimestampLayout))
}
