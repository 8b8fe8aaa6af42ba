// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package tweet

import "unicode/utf8"

// Range is a [start, end) offset pair into a message's text. The wire
// carries codepoint offsets; after decoding they are byte offsets.
type Range [2]int

// HashtagEntity is a hashtag or a cashtag ("$TWTR").
type HashtagEntity struct {
	Range Range  `json:"indices"`
	Text  string `json:"text"`
}

// URLEntity is a link, shortened by the service.
type URLEntity struct {
	Range       Range  `json:"indices"`
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
	DisplayURL  string `json:"display_url"`
}

// MentionEntity is an @-mention of another user.
type MentionEntity struct {
	Range      Range  `json:"indices"`
	ID         uint64 `json:"id"`
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

// MediaEntity is an attached photo, video or GIF.
type MediaEntity struct {
	Range         Range  `json:"indices"`
	ID            uint64 `json:"id"`
	Type          string `json:"type"`
	URL           string `json:"url"`
	MediaURLHTTPS string `json:"media_url_https"`
	DisplayURL    string `json:"display_url"`
}

// Entities is the structured content parsed out of a tweet or a direct
// message. Every list is present (possibly empty) except Media.
type Entities struct {
	Hashtags     []HashtagEntity `json:"hashtags"`
	Symbols      []HashtagEntity `json:"symbols"`
	URLs         []URLEntity     `json:"urls"`
	UserMentions []MentionEntity `json:"user_mentions"`
	Media        []MediaEntity   `json:"media,omitempty"`
}

// ResolveRanges rewrites every entity range from codepoint offsets in
// text to byte offsets. Offsets past the end clamp to len(text).
func (entities *Entities) ResolveRanges(text string) {
	offsets := codepointOffsets(text)
	resolve := func(span *Range) {
		for index, codepoint := range span {
			if codepoint < 0 {
				codepoint = 0
			}
			if codepoint >= len(offsets) {
				span[index] = len(text)
				continue
			}
			span[index] = offsets[codepoint]
		}
	}
	for index := range entities.Hashtags {
		resolve(&entities.Hashtags[index].Range)
	}
	for index := range entities.Symbols {
		resolve(&entities.Symbols[index].Range)
	}
	for index := range entities.URLs {
		resolve(&entities.URLs[index].Range)
	}
	for index := range entities.UserMentions {
		resolve(&entities.UserMentions[index].Range)
	}
	for index := range entities.Media {
		resolve(&entities.Media[index].Range)
	}
}

// codepointOffsets maps each codepoint index of text to its byte offset.
func codepointOffsets(text string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(text))
	for offset := range text {
		offsets = append(offsets, offset)
	}
	return offsets
}
