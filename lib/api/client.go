// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/chirp-go/chirp/lib/auth"
)

// DefaultBaseURL is the root of the v1.1 REST API.
const DefaultBaseURL = "https://api.twitter.com/1.1"

// defaultUserAgent is sent when Config.UserAgent is empty.
const defaultUserAgent = "chirp-go/1"

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root URL for API requests. Defaults to
	// DefaultBaseURL. Must use HTTPS.
	BaseURL string

	// Authenticator produces the Authorization header for every request.
	// Required.
	Authenticator auth.Authenticator

	// HTTPClient is used for all HTTP requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger

	// UserAgent overrides the User-Agent header.
	UserAgent string

	// DisableCompression stops the client from asking for gzip bodies.
	DisableCompression bool
}

// Client builds authenticated requests against one API root and runs
// them as Exchanges. A Client is safe for concurrent use; the exchanges
// it creates are not.
type Client struct {
	baseURL            string
	httpClient         *http.Client
	auth               auth.Authenticator
	logger             *slog.Logger
	userAgent          string
	disableCompression bool
}

// NewClient creates a Client from config. Returns an error if the
// configuration is invalid (non-HTTPS or unparseable URL, missing
// authenticator).
func NewClient(config Config) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: parsing base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "https" {
		return nil, fmt.Errorf("api: client requires HTTPS (got %q)", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("api: base URL %q has no host", baseURL)
	}
	if parsed.RawQuery != "" {
		return nil, fmt.Errorf("api: base URL %q must not carry a query", baseURL)
	}

	if config.Authenticator == nil {
		return nil, fmt.Errorf("api: no authenticator configured")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:            baseURL,
		httpClient:         httpClient,
		auth:               config.Authenticator,
		logger:             logger,
		userAgent:          userAgent,
		disableCompression: config.DisableCompression,
	}, nil
}

// BaseURL returns the API root without a trailing slash.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// Logger returns the client's logger.
func (client *Client) Logger() *slog.Logger {
	return client.logger
}

// URL returns the absolute endpoint URL for path (e.g.
// "/direct_messages.json").
func (client *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return client.baseURL + path
}

// RequestURL returns the endpoint URL for path with params encoded as
// its query string, exactly as a GET request would send it.
func (client *Client) RequestURL(path string, params Params) string {
	endpoint := client.URL(path)
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}

// NewRequest builds an authenticated request. GET (and DELETE) requests
// carry params in the query string; other methods send them as an
// application/x-www-form-urlencoded body. The Authenticator sees the
// method, the endpoint URL without query, and params.
func (client *Client) NewRequest(ctx context.Context, method, path string, params Params) (*http.Request, error) {
	endpoint := client.URL(path)

	authorization, err := client.auth.AuthorizationHeader(ctx, method, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("api: authentication: %w", err)
	}

	var body io.Reader
	target := endpoint
	formEncoded := method != http.MethodGet && method != http.MethodDelete
	if formEncoded {
		body = strings.NewReader(params.Encode())
	} else if len(params) > 0 {
		target = endpoint + "?" + params.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}
	request.Header.Set("Authorization", authorization)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", client.userAgent)
	if formEncoded {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if !client.disableCompression {
		request.Header.Set("Accept-Encoding", "gzip")
	}
	return request, nil
}

// Exchange wraps request in an Exchange that uses the client's HTTP
// client and logger.
func (client *Client) Exchange(request *http.Request) *Exchange {
	exchange := NewExchange(client.httpClient, request)
	exchange.logger = client.logger
	return exchange
}
