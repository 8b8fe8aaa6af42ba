// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package tweet

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/chirp-go/chirp/lib/api"
	"github.com/chirp-go/chirp/lib/timeline"
)

// Endpoint paths relative to the API root.
const (
	PathHomeTimeline     = "/statuses/home_timeline.json"
	PathMentionsTimeline = "/statuses/mentions_timeline.json"
	PathUserTimeline     = "/statuses/user_timeline.json"
	PathShow             = "/statuses/show.json"
)

// maxConcurrentLookups bounds the goroutines ShowMany runs at once.
const maxConcurrentLookups = 8

// HomeTimeline pages through the authenticated user's home timeline.
func HomeTimeline(client *api.Client) *timeline.Timeline[Tweet] {
	return timeline.New[Tweet](client, PathHomeTimeline, nil)
}

// MentionsTimeline pages through tweets mentioning the authenticated
// user.
func MentionsTimeline(client *api.Client) *timeline.Timeline[Tweet] {
	return timeline.New[Tweet](client, PathMentionsTimeline, nil)
}

// UserTimeline pages through tweets posted by userID.
func UserTimeline(client *api.Client, userID uint64, withReplies, withRetweets bool) *timeline.Timeline[Tweet] {
	params := api.Params{}.
		AddUint("user_id", userID).
		Add("exclude_replies", strconv.FormatBool(!withReplies)).
		Add("include_rts", strconv.FormatBool(withRetweets))
	return timeline.New[Tweet](client, PathUserTimeline, params)
}

// Show loads a single tweet.
func Show(ctx context.Context, client *api.Client, id uint64) (api.Response[Tweet], error) {
	return api.Get[Tweet](ctx, client, PathShow, api.Params{}.AddUint("id", id))
}

// ShowMany loads every tweet in ids concurrently. The result keeps the
// order of ids and carries the most restrictive rate-limit state seen
// across the lookups. The first failure cancels the remaining lookups
// and is returned.
func ShowMany(ctx context.Context, client *api.Client, ids []uint64) (api.Response[[]Tweet], error) {
	responses := make([]api.Response[Tweet], len(ids))
	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentLookups)
	for index, id := range ids {
		group.Go(func() error {
			response, err := Show(groupContext, client, id)
			if err != nil {
				return fmt.Errorf("tweet: showing %d: %w", id, err)
			}
			responses[index] = response
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return api.Response[[]Tweet]{}, err
	}
	return api.CollectAll(responses...), nil
}
