// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package tweet

// User is the subset of a user object that chirp surfaces.
type User struct {
	ID             uint64    `json:"id"`
	ScreenName     string    `json:"screen_name"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Location       string    `json:"location,omitempty"`
	Protected      bool      `json:"protected"`
	Verified       bool      `json:"verified"`
	FollowersCount int       `json:"followers_count"`
	FriendsCount   int       `json:"friends_count"`
	StatusesCount  int       `json:"statuses_count"`
	CreatedAt      Timestamp `json:"created_at"`
}

// EntryID returns the user ID.
func (user User) EntryID() uint64 {
	return user.ID
}
