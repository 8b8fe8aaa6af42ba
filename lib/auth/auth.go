// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth defines how chirp obtains Authorization header values.
//
// Request signing is owned by the caller: the client hands an
// Authenticator the method, the request URL without its query string,
// and the full parameter map, and sends whatever header value comes
// back. Bearer covers app-only tokens; schemes that sign the parameter
// set (OAuth 1.0a) plug in through the same interface.
package auth

import (
	"context"
	"errors"
)

// Authenticator returns the Authorization header for one request.
type Authenticator interface {
	AuthorizationHeader(ctx context.Context, method, requestURL string, params map[string]string) (string, error)
}

// ErrEmptyToken is returned by Bearer when it holds no token.
var ErrEmptyToken = errors.New("auth: empty bearer token")

// Bearer is a static app-only bearer token.
type Bearer string

// AuthorizationHeader returns "Bearer <token>".
func (token Bearer) AuthorizationHeader(_ context.Context, _, _ string, _ map[string]string) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}
	return "Bearer " + string(token), nil
}

// Func adapts a plain function to Authenticator.
type Func func(ctx context.Context, method, requestURL string, params map[string]string) (string, error)

// AuthorizationHeader calls f.
func (f Func) AuthorizationHeader(ctx context.Context, method, requestURL string, params map[string]string) (string, error) {
	return f(ctx, method, requestURL, params)
}
