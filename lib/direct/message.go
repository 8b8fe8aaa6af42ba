// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package direct

import (
	"encoding/json"

	"github.com/chirp-go/chirp/lib/tweet"
)

// DirectMessage is a single direct message.
type DirectMessage struct {
	ID                  uint64          `json:"id"`
	CreatedAt           tweet.Timestamp `json:"created_at"`
	Text                string          `json:"text"`
	Entities            tweet.Entities  `json:"entities"`
	SenderID            uint64          `json:"sender_id"`
	SenderScreenName    string          `json:"sender_screen_name"`
	Sender              *tweet.User     `json:"sender,omitempty"`
	RecipientID         uint64          `json:"recipient_id"`
	RecipientScreenName string          `json:"recipient_screen_name"`
	Recipient           *tweet.User     `json:"recipient,omitempty"`
}

// EntryID returns the message ID.
func (message DirectMessage) EntryID() uint64 {
	return message.ID
}

// Counterpart returns the participant that is not self.
func (message DirectMessage) Counterpart(self uint64) uint64 {
	if message.SenderID == self {
		return message.RecipientID
	}
	return message.SenderID
}

// UnmarshalJSON decodes a message and resolves its entity ranges
// against Text.
func (message *DirectMessage) UnmarshalJSON(data []byte) error {
	type wire DirectMessage
	var decoded wire
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*message = DirectMessage(decoded)
	message.Entities.ResolveRanges(message.Text)
	return nil
}
