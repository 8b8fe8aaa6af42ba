// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Decoder turns the text of a successful exchange into a value. It
// receives the headers captured by the same exchange.
type Decoder[T any] func(text string, header http.Header) (T, error)

// Call pairs an Exchange with a Decoder. It completes exactly when the
// exchange does; decoding only runs on a successful exchange.
type Call[T any] struct {
	exchange *Exchange
	decode   Decoder[T]
}

// NewCall binds decode to exchange.
func NewCall[T any](exchange *Exchange, decode Decoder[T]) *Call[T] {
	return &Call[T]{exchange: exchange, decode: decode}
}

// Exchange returns the underlying exchange, for callers that want to
// drive it step by step before calling Await.
func (call *Call[T]) Exchange() *Exchange {
	return call.exchange
}

// Abort aborts the underlying exchange.
func (call *Call[T]) Abort() {
	call.exchange.Abort()
}

// Await runs the exchange to completion and decodes its text. Exchange
// errors are returned unchanged; a decode failure is a *DecodeError.
func (call *Call[T]) Await(ctx context.Context) (T, error) {
	var zero T
	if call.exchange.State() != StateDone {
		if _, err := call.exchange.Run(ctx); err != nil {
			return zero, err
		}
	}
	text, err := call.exchange.Result()
	if err != nil {
		return zero, err
	}
	value, err := call.decode(text, call.exchange.Header())
	if err != nil {
		if IsDecode(err) {
			return zero, err
		}
		return zero, &DecodeError{Target: "response", Err: err}
	}
	return value, nil
}

// ParseResponse is the standard Decoder: JSON into T, with the
// rate-limit headers of the same exchange attached.
func ParseResponse[T any](text string, header http.Header) (Response[T], error) {
	var value T
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return Response[T]{}, &DecodeError{Target: fmt.Sprintf("%T", value), Err: err}
	}
	rateLimit, err := RateLimitFromHeader(header)
	if err != nil {
		return Response[T]{}, err
	}
	return NewResponse(rateLimit, value), nil
}

// Get issues a GET for path and decodes the result with ParseResponse.
func Get[T any](ctx context.Context, client *Client, path string, params Params) (Response[T], error) {
	return send[T](ctx, client, http.MethodGet, path, params)
}

// Post issues a form-encoded POST for path and decodes the result with
// ParseResponse.
func Post[T any](ctx context.Context, client *Client, path string, params Params) (Response[T], error) {
	return send[T](ctx, client, http.MethodPost, path, params)
}

func send[T any](ctx context.Context, client *Client, method, path string, params Params) (Response[T], error) {
	request, err := client.NewRequest(ctx, method, path, params)
	if err != nil {
		return Response[T]{}, err
	}
	return NewCall[Response[T]](client.Exchange(request), ParseResponse[T]).Await(ctx)
}
