// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package api

import "iter"

// Response pairs a decoded value with the rate-limit state reported by
// the exchange that produced it.
type Response[T any] struct {
	RateLimit RateLimit
	value     T
}

// NewResponse wraps value with rateLimit.
func NewResponse[T any](rateLimit RateLimit, value T) Response[T] {
	return Response[T]{RateLimit: rateLimit, value: value}
}

// Value returns the decoded payload.
func (response Response[T]) Value() T {
	return response.value
}

// ValueMut returns a pointer to the payload for in-place edits.
func (response *Response[T]) ValueMut() *T {
	return &response.value
}

// Map converts a Response[T] to a Response[U] through fn, keeping the
// rate-limit state.
func Map[T, U any](response Response[T], fn func(T) U) Response[U] {
	return Response[U]{RateLimit: response.RateLimit, value: fn(response.value)}
}

// Len returns the number of elements in a collection response.
func Len[T any](response Response[[]T]) int {
	return len(response.value)
}

// Each yields every element of a collection response wrapped with the
// collection's rate-limit state. The sequence is lazy and can be ranged
// over more than once.
func Each[T any](response Response[[]T]) iter.Seq[Response[T]] {
	return func(yield func(Response[T]) bool) {
		for _, item := range response.value {
			if !yield(Response[T]{RateLimit: response.RateLimit, value: item}) {
				return
			}
		}
	}
}

// Split is the eager form of Each.
func Split[T any](response Response[[]T]) []Response[T] {
	split := make([]Response[T], 0, len(response.value))
	for item := range Each(response) {
		split = append(split, item)
	}
	return split
}

// Collect folds a sequence of responses into one collection response.
// Payloads are kept in iteration order. The rate-limit state is the one
// with the latest Reset; among equal resets, the one with the fewest
// Remaining. An empty sequence yields NoRateLimit and an empty slice.
func Collect[T any](responses iter.Seq[Response[T]]) Response[[]T] {
	collected := Response[[]T]{RateLimit: NoRateLimit, value: []T{}}
	for response := range responses {
		if response.RateLimit.Reset > collected.RateLimit.Reset ||
			(response.RateLimit.Reset == collected.RateLimit.Reset &&
				response.RateLimit.Remaining < collected.RateLimit.Remaining) {
			collected.RateLimit = response.RateLimit
		}
		collected.value = append(collected.value, response.value)
	}
	return collected
}

// CollectAll is Collect over its arguments.
func CollectAll[T any](responses ...Response[T]) Response[[]T] {
	return Collect(func(yield func(Response[T]) bool) {
		for _, response := range responses {
			if !yield(response) {
				return
			}
		}
	})
}
