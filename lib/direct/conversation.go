// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package direct

import (
	"context"
	"fmt"
	"maps"

	"golang.org/x/sync/errgroup"

	"github.com/chirp-go/chirp/lib/api"
	"github.com/chirp-go/chirp/lib/timeline"
)

// Conversations maps the other participant's user ID to the thread with
// that user, newest message first.
type Conversations map[uint64][]DirectMessage

// ConversationTimeline loads sent and received messages together and
// keeps them filed by conversation.
//
// The watermarks record the widest span loaded so far on each stream.
// Zero means nothing has been loaded from that stream.
//
// A ConversationTimeline is not safe for concurrent use: Newest and
// Next read the watermarks and update them along with the cache.
type ConversationTimeline struct {
	sent     *timeline.Timeline[DirectMessage]
	received *timeline.Timeline[DirectMessage]

	// LastSent is the newest sent message ID loaded so far.
	LastSent uint64
	// LastReceived is the newest received message ID loaded so far.
	LastReceived uint64
	// FirstSent is the oldest sent message ID loaded so far.
	FirstSent uint64
	// FirstReceived is the oldest received message ID loaded so far.
	FirstReceived uint64

	conversations Conversations
}

// NewConversationTimeline creates an empty ConversationTimeline. Nothing
// is loaded until Newest or Next.
func NewConversationTimeline(client *api.Client) *ConversationTimeline {
	return &ConversationTimeline{
		sent:          Sent(client),
		received:      Received(client),
		conversations: make(Conversations),
	}
}

// WithPageSize sets the page size of both streams and returns the
// timeline.
func (conversation *ConversationTimeline) WithPageSize(count int) *ConversationTimeline {
	conversation.sent.WithPageSize(count)
	conversation.received.WithPageSize(count)
	return conversation
}

// Count returns the page size used for each stream.
func (conversation *ConversationTimeline) Count() int {
	return conversation.sent.Count()
}

// Conversations returns a snapshot of the loaded threads. The threads
// themselves are shared with the timeline and must not be modified.
func (conversation *ConversationTimeline) Conversations() Conversations {
	return maps.Clone(conversation.conversations)
}

// Thread returns the loaded messages exchanged with userID, newest
// first.
func (conversation *ConversationTimeline) Thread(userID uint64) []DirectMessage {
	return conversation.conversations[userID]
}

// Newest loads messages newer than everything loaded so far (the newest
// page of each stream on first use) and files them into the threads.
// The result holds the newly loaded messages, newest first; its
// rate-limit state is the more restrictive of the two streams. If
// either stream fails the error is returned and nothing changes.
func (conversation *ConversationTimeline) Newest(ctx context.Context) (api.Response[[]DirectMessage], error) {
	return conversation.load(ctx,
		window{sinceID: conversation.LastSent},
		window{sinceID: conversation.LastReceived},
	)
}

// Next loads messages older than everything loaded so far (the newest
// page of each stream on first use) and files them into the threads.
// Results and failures are as for Newest.
func (conversation *ConversationTimeline) Next(ctx context.Context) (api.Response[[]DirectMessage], error) {
	return conversation.load(ctx,
		below(conversation.FirstSent),
		below(conversation.FirstReceived),
	)
}

// window is the ID range one stream loads. An exhausted window loads
// nothing and sends no request.
type window struct {
	sinceID   uint64
	maxID     uint64
	exhausted bool
}

// below returns the window of IDs under id: open when id is unset, and
// exhausted when id is 1.
func below(id uint64) window {
	switch id {
	case 0:
		return window{}
	case 1:
		return window{exhausted: true}
	}
	return window{maxID: id - 1}
}

// fetch loads one stream's window.
func (bounds window) fetch(ctx context.Context, stream *timeline.Timeline[DirectMessage]) (api.Response[[]DirectMessage], error) {
	if bounds.exhausted {
		return api.NewResponse(api.NoRateLimit, []DirectMessage{}), nil
	}
	return stream.Call(ctx, bounds.sinceID, bounds.maxID)
}

func (conversation *ConversationTimeline) load(ctx context.Context, sentWindow, receivedWindow window) (api.Response[[]DirectMessage], error) {
	var sent, received api.Response[[]DirectMessage]
	group, groupContext := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		sent, err = sentWindow.fetch(groupContext, conversation.sent)
		if err != nil {
			return fmt.Errorf("direct: loading sent messages: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		received, err = receivedWindow.fetch(groupContext, conversation.received)
		if err != nil {
			return fmt.Errorf("direct: loading received messages: %w", err)
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return api.Response[[]DirectMessage]{}, err
	}

	merged := conversation.merge(sent.Value(), received.Value())
	rateLimit := api.CollectAll(sent, received).RateLimit
	return api.NewResponse(rateLimit, merged), nil
}

// merge widens the watermarks, then files the two pages into the
// threads. It returns the interleaved page.
func (conversation *ConversationTimeline) merge(sent, received []DirectMessage) []DirectMessage {
	if len(sent) > 0 {
		conversation.LastSent = maxSet(conversation.LastSent, sent[0].ID)
		conversation.FirstSent = minSet(conversation.FirstSent, sent[len(sent)-1].ID)
	}
	if len(received) > 0 {
		conversation.LastReceived = maxSet(conversation.LastReceived, received[0].ID)
		conversation.FirstReceived = minSet(conversation.FirstReceived, received[len(received)-1].ID)
	}

	var self uint64
	switch {
	case len(sent) > 0:
		self = sent[0].SenderID
	case len(received) > 0:
		self = received[0].RecipientID
	default:
		return []DirectMessage{}
	}

	interleaved := interleave(sent, received)
	threads := make(Conversations)
	for _, message := range interleaved {
		counterpart := message.Counterpart(self)
		threads[counterpart] = append(threads[counterpart], message)
	}
	for counterpart, thread := range threads {
		conversation.conversations[counterpart] = fold(conversation.conversations[counterpart], thread)
	}
	return interleaved
}

// interleave merges two newest-first pages into one newest-first
// sequence. On equal IDs the sent copy is kept and the other dropped.
func interleave(sent, received []DirectMessage) []DirectMessage {
	merged := make([]DirectMessage, 0, len(sent)+len(received))
	for len(sent) > 0 && len(received) > 0 {
		switch {
		case sent[0].ID > received[0].ID:
			merged = append(merged, sent[0])
			sent = sent[1:]
		case sent[0].ID < received[0].ID:
			merged = append(merged, received[0])
			received = received[1:]
		default:
			merged = append(merged, sent[0])
			sent = sent[1:]
			received = received[1:]
		}
	}
	merged = append(merged, sent...)
	return append(merged, received...)
}

// fold merges a newly loaded newest-first thread into the cached one,
// keeping the result newest-first. Messages already cached are skipped.
func fold(cached, fresh []DirectMessage) []DirectMessage {
	if len(fresh) == 0 {
		return cached
	}
	seen := make(map[uint64]struct{}, len(cached))
	for _, message := range cached {
		seen[message.ID] = struct{}{}
	}

	joined := make([]DirectMessage, 0, len(cached)+len(fresh))
	for len(cached) > 0 || len(fresh) > 0 {
		if len(fresh) > 0 {
			if _, ok := seen[fresh[0].ID]; ok {
				fresh = fresh[1:]
				continue
			}
		}
		if len(fresh) == 0 || (len(cached) > 0 && cached[0].ID > fresh[0].ID) {
			joined = append(joined, cached[0])
			cached = cached[1:]
			continue
		}
		joined = append(joined, fresh[0])
		fresh = fresh[1:]
	}
	return joined
}

// maxSet and minSet combine watermarks where 0 means unset.
func maxSet(current, candidate uint64) uint64 {
	if current == 0 {
		return candidate
	}
	return max(current, candidate)
}

func minSet(current, candidate uint64) uint64 {
	if current == 0 {
		return candidate
	}
	return min(current, candidate)
}
