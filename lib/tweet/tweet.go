// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package tweet

import "encoding/json"

// Tweet is a single status.
type Tweet struct {
	ID                  uint64    `json:"id"`
	CreatedAt           Timestamp `json:"created_at"`
	Text                string    `json:"text"`
	User                *User     `json:"user,omitempty"`
	InReplyToStatusID   uint64    `json:"in_reply_to_status_id,omitempty"`
	InReplyToUserID     uint64    `json:"in_reply_to_user_id,omitempty"`
	InReplyToScreenName string    `json:"in_reply_to_screen_name,omitempty"`
	RetweetCount        int       `json:"retweet_count"`
	FavoriteCount       int       `json:"favorite_count"`
	Lang                string    `json:"lang,omitempty"`
	Entities            Entities  `json:"entities"`
}

// EntryID returns the status ID.
func (tweet Tweet) EntryID() uint64 {
	return tweet.ID
}

// UnmarshalJSON decodes a status and resolves its entity ranges
// against Text.
func (tweet *Tweet) UnmarshalJSON(data []byte) error {
	type wire Tweet
	var decoded wire
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*tweet = Tweet(decoded)
	tweet.Entities.ResolveRanges(tweet.Text)
	return nil
}
