// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package direct

import (
	"context"

	"github.com/chirp-go/chirp/lib/api"
	"github.com/chirp-go/chirp/lib/timeline"
)

// Endpoint paths relative to the API root.
const (
	PathReceived = "/direct_messages.json"
	PathSent     = "/direct_messages/sent.json"
	PathShow     = "/direct_messages/show.json"
	PathNew      = "/direct_messages/new.json"
	PathDestroy  = "/direct_messages/destroy.json"
)

// Sent pages through messages sent by the authenticated user.
func Sent(client *api.Client) *timeline.Timeline[DirectMessage] {
	return timeline.New[DirectMessage](client, PathSent, nil)
}

// Received pages through messages sent to the authenticated user.
func Received(client *api.Client) *timeline.Timeline[DirectMessage] {
	return timeline.New[DirectMessage](client, PathReceived, nil)
}

// Show loads one message.
func Show(ctx context.Context, client *api.Client, id uint64) (api.Response[DirectMessage], error) {
	return api.Get[DirectMessage](ctx, client, PathShow, api.Params{}.AddUint("id", id))
}

// Send sends text to the user with recipientID and returns the created
// message.
func Send(ctx context.Context, client *api.Client, recipientID uint64, text string) (api.Response[DirectMessage], error) {
	params := api.Params{}.AddUint("user_id", recipientID).Add("text", text)
	return api.Post[DirectMessage](ctx, client, PathNew, params)
}

// SendToScreenName is Send addressed by screen name.
func SendToScreenName(ctx context.Context, client *api.Client, screenName, text string) (api.Response[DirectMessage], error) {
	params := api.Params{}.Add("screen_name", screenName).Add("text", text)
	return api.Post[DirectMessage](ctx, client, PathNew, params)
}

// Delete deletes a message the authenticated user sent or received and
// returns it as it was.
func Delete(ctx context.Context, client *api.Client, id uint64) (api.Response[DirectMessage], error) {
	return api.Post[DirectMessage](ctx, client, PathDestroy, api.Params{}.AddUint("id", id))
}
