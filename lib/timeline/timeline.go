// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

// Package timeline pages through newest-first collections that the API
// bounds with since_id and max_id.
//
// A Timeline remembers the newest (MaxID) and oldest (MinID) entry of
// the last page it loaded. Older continues below MinID, Newer resumes
// above MaxID, and Call fetches an arbitrary window without touching
// either bound. Entry IDs are positive and increase with recency; zero
// means "unset" everywhere in this package.
package timeline

import (
	"context"

	"github.com/chirp-go/chirp/lib/api"
)

// DefaultPageSize is the count sent when WithPageSize was not called.
const DefaultPageSize = 20

// Entry is an item with a recency-ordered identifier.
type Entry interface {
	EntryID() uint64
}

// Timeline is a cursor over one endpoint.
//
// A Timeline is not safe for concurrent use. Older and Newer read and
// write the bounds; two of them in flight at once would each start from
// stale bounds. Call does not touch the bounds and may overlap with
// anything.
type Timeline[T Entry] struct {
	client *api.Client
	path   string
	params api.Params
	count  int
	maxID  uint64
	minID  uint64
}

// New creates a Timeline for path. params are sent with every page and
// are copied; later changes to the caller's map have no effect.
func New[T Entry](client *api.Client, path string, params api.Params) *Timeline[T] {
	return &Timeline[T]{
		client: client,
		path:   path,
		params: params.Clone(),
		count:  DefaultPageSize,
	}
}

// WithPageSize sets how many entries each page requests and returns the
// timeline. Non-positive values restore DefaultPageSize.
func (timeline *Timeline[T]) WithPageSize(count int) *Timeline[T] {
	if count <= 0 {
		count = DefaultPageSize
	}
	timeline.count = count
	return timeline
}

// Count returns the page size.
func (timeline *Timeline[T]) Count() int { return timeline.count }

// MaxID returns the newest ID of the last loaded page, or 0.
func (timeline *Timeline[T]) MaxID() uint64 { return timeline.maxID }

// MinID returns the oldest ID of the last loaded page, or 0.
func (timeline *Timeline[T]) MinID() uint64 { return timeline.minID }

// Reset clears both bounds.
func (timeline *Timeline[T]) Reset() {
	timeline.maxID = 0
	timeline.minID = 0
}

// Start clears the bounds and loads the newest page.
func (timeline *Timeline[T]) Start(ctx context.Context) (api.Response[[]T], error) {
	timeline.Reset()
	return timeline.Older(ctx, 0)
}

// Older loads the page just below MinID (or the newest page when MinID
// is unset), optionally limited to entries newer than sinceID. On
// success the bounds are replaced by the page's first and last IDs; an
// empty page clears them.
//
// When MinID is 1 nothing older can exist: Older clears the bounds and
// returns an empty page without a request, carrying NoRateLimit.
func (timeline *Timeline[T]) Older(ctx context.Context, sinceID uint64) (api.Response[[]T], error) {
	if timeline.minID == 1 {
		timeline.Reset()
		return api.NewResponse(api.NoRateLimit, []T{}), nil
	}
	var maxID uint64
	if timeline.minID != 0 {
		maxID = timeline.minID - 1
	}
	response, err := timeline.Call(ctx, sinceID, maxID)
	if err != nil {
		return response, err
	}
	timeline.mapIDs(response.Value())
	return response, nil
}

// Newer loads entries above MaxID, optionally capped at maxID
// (inclusive). A non-empty page replaces the bounds. An empty page
// means nothing new arrived and leaves them alone, so polling Newer is
// idempotent while the collection is quiet.
func (timeline *Timeline[T]) Newer(ctx context.Context, maxID uint64) (api.Response[[]T], error) {
	response, err := timeline.Call(ctx, timeline.maxID, maxID)
	if err != nil {
		return response, err
	}
	if entries := response.Value(); len(entries) > 0 {
		timeline.mapIDs(entries)
	}
	return response, nil
}

// Call loads entries with sinceID < ID <= maxID. Zero leaves that side
// open. At most Count entries are returned, newest first; when the
// window holds more, the newest ones win. Bounds are not changed.
func (timeline *Timeline[T]) Call(ctx context.Context, sinceID, maxID uint64) (api.Response[[]T], error) {
	params := timeline.params.Clone().
		AddInt("count", timeline.count).
		AddOptionalUint("since_id", sinceID).
		AddOptionalUint("max_id", maxID)
	return api.Get[[]T](ctx, timeline.client, timeline.path, params)
}

func (timeline *Timeline[T]) mapIDs(entries []T) {
	if len(entries) == 0 {
		timeline.Reset()
		return
	}
	timeline.maxID = entries[0].EntryID()
	timeline.minID = entries[len(entries)-1].EntryID()
}
