// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/chirp-go/chirp/lib/api"
	"github.com/chirp-go/chirp/lib/clock"
	"github.com/chirp-go/chirp/lib/direct"
	"github.com/chirp-go/chirp/lib/place"
	"github.com/chirp-go/chirp/lib/timeline"
	"github.com/chirp-go/chirp/lib/tweet"
)

// commandContext carries what every command needs.
type commandContext struct {
	client   *api.Client
	logger   *slog.Logger
	clock    clock.Clock
	output   io.Writer
	pageSize int
	wait     bool
}

func (command *commandContext) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "timeline":
		return command.runTimeline(ctx, args)
	case "tweet":
		return command.runTweet(ctx, args)
	case "dm":
		return command.runDirect(ctx, args)
	case "conversations":
		return command.runConversations(ctx, args)
	case "place":
		return command.runPlace(ctx, args)
	}
	return usage("unknown command %q (run chirp --help)", name)
}

// emit writes one JSON document to the output and logs the rate-limit
// state it came with.
func emit[T any](command *commandContext, response api.Response[T]) error {
	command.logger.Info("response", "rate_limit", response.RateLimit.String())
	encoder := json.NewEncoder(command.output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response.Value())
}

// fetch runs load, and when the command was started with --wait and
// load was rate limited, waits for the reset and runs it once more.
func fetch[T any](ctx context.Context, command *commandContext, load func(context.Context) (api.Response[T], error)) (api.Response[T], error) {
	response, err := load(ctx)
	if err == nil || !command.wait {
		return response, err
	}
	reset, limited := api.IsRateLimited(err)
	if !limited {
		return response, err
	}
	command.logger.Warn("rate limited, waiting for reset",
		"reset", time.Unix(int64(reset), 0).UTC().Format(time.RFC3339))
	if waitErr := api.WaitForReset(ctx, command.clock, err); waitErr != nil {
		return response, waitErr
	}
	return load(ctx)
}

func parseID(value string) (uint64, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, usage("invalid ID %q", value)
	}
	return id, nil
}

// pageTimeline loads up to pages pages going back in time and emits
// each one. It stops early at an empty page.
func pageTimeline[T timeline.Entry](ctx context.Context, command *commandContext, stream *timeline.Timeline[T], pages int) error {
	for page := range pages {
		load := stream.Start
		if page > 0 {
			load = func(ctx context.Context) (api.Response[[]T], error) { return stream.Older(ctx, 0) }
		}
		response, err := fetch(ctx, command, load)
		if err != nil {
			return err
		}
		if api.Len(response) == 0 {
			command.logger.Debug("timeline exhausted", "page", page)
			return nil
		}
		if err := emit(command, response); err != nil {
			return err
		}
	}
	return nil
}

func (command *commandContext) runTimeline(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("timeline", pflag.ContinueOnError)
	pages := flagSet.Int("pages", 1, "number of pages to load")
	withReplies := flagSet.Bool("replies", false, "include replies (user timeline)")
	withRetweets := flagSet.Bool("retweets", true, "include retweets (user timeline)")
	if err := flagSet.Parse(args); err != nil {
		return usage("%v", err)
	}
	if *pages < 1 {
		return usage("--pages must be at least 1")
	}

	var stream *timeline.Timeline[tweet.Tweet]
	switch flagSet.Arg(0) {
	case "home":
		stream = tweet.HomeTimeline(command.client)
	case "mentions":
		stream = tweet.MentionsTimeline(command.client)
	case "user":
		if flagSet.NArg() != 2 {
			return usage("usage: chirp timeline user <user-id>")
		}
		userID, err := parseID(flagSet.Arg(1))
		if err != nil {
			return err
		}
		stream = tweet.UserTimeline(command.client, userID, *withReplies, *withRetweets)
	default:
		return usage("usage: chirp timeline home|mentions|user <user-id>")
	}
	return pageTimeline(ctx, command, stream.WithPageSize(command.pageSize), *pages)
}

func (command *commandContext) runTweet(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("usage: chirp tweet <id>...")
	}
	ids := make([]uint64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	response, err := fetch(ctx, command, func(ctx context.Context) (api.Response[[]tweet.Tweet], error) {
		return tweet.ShowMany(ctx, command.client, ids)
	})
	if err != nil {
		return err
	}
	return emit(command, response)
}

func (command *commandContext) runDirect(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("dm", pflag.ContinueOnError)
	pages := flagSet.Int("pages", 1, "number of pages to load (sent, received)")
	if err := flagSet.Parse(args); err != nil {
		return usage("%v", err)
	}

	switch flagSet.Arg(0) {
	case "sent":
		return pageTimeline(ctx, command, direct.Sent(command.client).WithPageSize(command.pageSize), *pages)
	case "received":
		return pageTimeline(ctx, command, direct.Received(command.client).WithPageSize(command.pageSize), *pages)
	case "send":
		if flagSet.NArg() != 3 {
			return usage("usage: chirp dm send <user-id|@screen-name> <text>")
		}
		recipient, text := flagSet.Arg(1), flagSet.Arg(2)
		response, err := fetch(ctx, command, func(ctx context.Context) (api.Response[direct.DirectMessage], error) {
			if screenName, ok := strings.CutPrefix(recipient, "@"); ok {
				return direct.SendToScreenName(ctx, command.client, screenName, text)
			}
			recipientID, err := parseID(recipient)
			if err != nil {
				return api.Response[direct.DirectMessage]{}, err
			}
			return direct.Send(ctx, command.client, recipientID, text)
		})
		if err != nil {
			return err
		}
		return emit(command, response)
	case "show", "delete":
		if flagSet.NArg() != 2 {
			return usage("usage: chirp dm %s <id>", flagSet.Arg(0))
		}
		id, err := parseID(flagSet.Arg(1))
		if err != nil {
			return err
		}
		action := direct.Show
		if flagSet.Arg(0) == "delete" {
			action = direct.Delete
		}
		response, err := fetch(ctx, command, func(ctx context.Context) (api.Response[direct.DirectMessage], error) {
			return action(ctx, command.client, id)
		})
		if err != nil {
			return err
		}
		return emit(command, response)
	}
	return usage("usage: chirp dm sent|received|send|show|delete")
}

func (command *commandContext) runConversations(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("conversations", pflag.ContinueOnError)
	pages := flagSet.Int("pages", 1, "number of pages of each stream to load")
	with := flagSet.Uint64("with", 0, "print only the thread with this user ID")
	if err := flagSet.Parse(args); err != nil {
		return usage("%v", err)
	}
	if *pages < 1 {
		return usage("--pages must be at least 1")
	}

	conversations := direct.NewConversationTimeline(command.client).WithPageSize(command.pageSize)
	for page := range *pages {
		response, err := fetch(ctx, command, conversations.Next)
		if err != nil {
			return err
		}
		command.logger.Info("loaded conversation page",
			"page", page,
			"messages", api.Len(response),
			"rate_limit", response.RateLimit.String(),
		)
		if api.Len(response) == 0 {
			break
		}
	}

	encoder := json.NewEncoder(command.output)
	encoder.SetIndent("", "  ")
	if *with != 0 {
		return encoder.Encode(conversations.Thread(*with))
	}
	return encoder.Encode(conversations.Conversations())
}

func (command *commandContext) runPlace(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("place", pflag.ContinueOnError)
	query := flagSet.String("query", "", "free-text place name")
	latitude := flagSet.Float64("lat", 0, "latitude of the point to search near")
	longitude := flagSet.Float64("long", 0, "longitude of the point to search near")
	address := flagSet.String("ip", "", "IP address to search near")
	granularity := flagSet.String("granularity", "", "smallest place type to return (poi, neighborhood, city, admin, country)")
	accuracy := flagSet.Float64("accuracy", 0, "search radius in meters")
	maxResults := flagSet.Int("max-results", 0, "maximum number of places to return")
	containedWithin := flagSet.String("contained-within", "", "only return places inside this place ID")
	if err := flagSet.Parse(args); err != nil {
		return usage("%v", err)
	}

	placeType := place.PlaceType(*granularity)
	if placeType != "" && !placeType.Valid() {
		return usage("invalid granularity %q", *granularity)
	}

	var load func(context.Context) (api.Response[place.SearchResult], error)
	switch flagSet.Arg(0) {
	case "show":
		if flagSet.NArg() != 2 {
			return usage("usage: chirp place show <place-id>")
		}
		response, err := fetch(ctx, command, func(ctx context.Context) (api.Response[place.Place], error) {
			return place.Show(ctx, command.client, flagSet.Arg(1))
		})
		if err != nil {
			return err
		}
		return emit(command, response)

	case "search":
		var builder *place.SearchBuilder
		switch {
		case *query != "":
			builder = place.SearchQuery(*query)
		case *address != "":
			builder = place.SearchIP(*address)
		case flagSet.Changed("lat") && flagSet.Changed("long"):
			builder = place.SearchPoint(*latitude, *longitude)
		default:
			return usage("place search needs --query, --ip, or both --lat and --long")
		}
		if placeType != "" {
			builder.Granularity(placeType)
		}
		if *accuracy > 0 {
			builder.Accuracy(place.Meters(*accuracy))
		}
		if *maxResults > 0 {
			builder.MaxResults(*maxResults)
		}
		if *containedWithin != "" {
			builder.ContainedWithin(*containedWithin)
		}
		command.logger.Debug("place search", "url", builder.URL(command.client))
		load = func(ctx context.Context) (api.Response[place.SearchResult], error) {
			return builder.Call(ctx, command.client)
		}

	case "geocode":
		if flagSet.NArg() != 3 {
			return usage("usage: chirp place geocode <lat> <long>")
		}
		lat, latErr := strconv.ParseFloat(flagSet.Arg(1), 64)
		long, longErr := strconv.ParseFloat(flagSet.Arg(2), 64)
		if latErr != nil || longErr != nil {
			return usage("invalid coordinates %q %q", flagSet.Arg(1), flagSet.Arg(2))
		}
		builder := place.ReverseGeocode(lat, long)
		if placeType != "" {
			builder.Granularity(placeType)
		}
		if *accuracy > 0 {
			builder.Accuracy(place.Meters(*accuracy))
		}
		if *maxResults > 0 {
			builder.MaxResults(*maxResults)
		}
		load = func(ctx context.Context) (api.Response[place.SearchResult], error) {
			return builder.Call(ctx, command.client)
		}

	case "replay":
		if flagSet.NArg() != 2 {
			return usage("usage: chirp place replay <result-url>")
		}
		rawURL := flagSet.Arg(1)
		replay := place.SearchURL
		if strings.HasPrefix(rawURL, command.client.URL(place.PathReverseGeocode)) {
			replay = place.ReverseGeocodeURL
		}
		load = func(ctx context.Context) (api.Response[place.SearchResult], error) {
			return replay(ctx, command.client, rawURL)
		}

	default:
		return usage("usage: chirp place show|search|geocode|replay")
	}

	response, err := fetch(ctx, command, load)
	if err != nil {
		return err
	}
	return emit(command, response)
}
