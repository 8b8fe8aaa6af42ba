// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
)

// MaxResponseSize bounds how many body bytes an exchange accumulates.
// Legitimate API responses are orders of magnitude smaller; the bound
// only stops a pathological response from exhausting memory.
const MaxResponseSize int64 = 256 << 20

// maxPreallocation caps how much a Content-Length hint may reserve up
// front.
const maxPreallocation = 4 << 20

// chunkSize is the read size for one StreamingBody step.
const chunkSize = 32 << 10

// ErrResponseTooLarge is wrapped in a *TransportError when a body
// exceeds MaxResponseSize.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// State is a step of an Exchange.
type State int

const (
	// StateDispatching hands the request to the transport.
	StateDispatching State = iota
	// StateAwaitingHeaders waits for the status line and headers.
	StateAwaitingHeaders
	// StateStreamingBody appends one body chunk per step.
	StateStreamingBody
	// StateDecoding validates and classifies the accumulated body.
	StateDecoding
	// StateDone is terminal.
	StateDone
)

func (state State) String() string {
	switch state {
	case StateDispatching:
		return "dispatching"
	case StateAwaitingHeaders:
		return "awaiting-headers"
	case StateStreamingBody:
		return "streaming-body"
	case StateDecoding:
		return "decoding"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

type roundTripResult struct {
	response *http.Response
	err      error
}

// Exchange drives a single HTTP request to exactly one result: the UTF-8
// response text, or a classified error. Each call to Advance performs
// one step and may block only on the network operation that step owns.
//
// The context passed to the first Advance (the dispatching step) bounds
// the whole network operation. Later steps check their own context
// before doing work, and a body read in flight is also canceled when
// the context of the step performing it ends.
//
// An Exchange is single-use and not safe for concurrent use.
type Exchange struct {
	httpClient *http.Client
	request    *http.Request
	logger     *slog.Logger
	limit      int64

	state   State
	cancel  context.CancelFunc
	pending chan roundTripResult

	body       io.ReadCloser
	reader     io.Reader
	header     http.Header
	statusCode int
	buffer     []byte
	chunk      []byte

	text    string
	err     error
	aborted bool
}

// NewExchange prepares an exchange for request. Nothing is sent until
// the first Advance.
func NewExchange(httpClient *http.Client, request *http.Request) *Exchange {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Exchange{
		httpClient: httpClient,
		request:    request,
		logger:     slog.Default(),
		limit:      MaxResponseSize,
		state:      StateDispatching,
	}
}

// State returns the step the exchange will perform next, or StateDone.
func (exchange *Exchange) State() State {
	return exchange.state
}

// Header returns the response headers, or nil before they arrive.
func (exchange *Exchange) Header() http.Header {
	return exchange.header
}

// StatusCode returns the response status, or 0 before headers arrive.
func (exchange *Exchange) StatusCode() int {
	return exchange.statusCode
}

// Result returns the outcome once the exchange is done.
func (exchange *Exchange) Result() (string, error) {
	if exchange.state != StateDone {
		return "", errors.New("api: exchange not finished")
	}
	return exchange.text, exchange.err
}

// Run advances the exchange until it is done and returns its result. If
// ctx ends first, including while a body read is blocked, the exchange
// is aborted and ctx's error is returned.
func (exchange *Exchange) Run(ctx context.Context) (string, error) {
	for {
		state, err := exchange.Advance(ctx)
		if err != nil {
			if state != StateDone {
				exchange.Abort()
			}
			return "", err
		}
		if state == StateDone {
			return exchange.text, nil
		}
	}
}

// Advance performs one step and returns the state reached. A non-nil
// error with StateDone is the exchange's final result. A non-nil error
// with any other state is ctx's error; the exchange can be advanced
// again or aborted. When ctx ends during a body read the request is
// canceled, so the exchange is aborted and ctx's error is returned with
// StateDone.
func (exchange *Exchange) Advance(ctx context.Context) (State, error) {
	if exchange.aborted {
		return StateDone, ErrExchangeAborted
	}
	if exchange.state == StateDone {
		return StateDone, ErrExchangeCompleted
	}
	if err := ctx.Err(); err != nil {
		return exchange.state, err
	}

	switch exchange.state {
	case StateDispatching:
		exchange.dispatch(ctx)
	case StateAwaitingHeaders:
		select {
		case result := <-exchange.pending:
			exchange.pending = nil
			if result.err != nil {
				exchange.fail(&TransportError{Op: "dispatch", Err: result.err})
				break
			}
			exchange.receiveHeaders(result.response)
		case <-ctx.Done():
			return exchange.state, ctx.Err()
		}
	case StateStreamingBody:
		// The read blocks on the request context from dispatch; tie it to
		// this step's ctx too.
		stop := context.AfterFunc(ctx, exchange.cancel)
		exchange.readChunk()
		if !stop() {
			exchange.release()
			return StateDone, ctx.Err()
		}
	case StateDecoding:
		text, err := exchange.classify()
		if err != nil {
			exchange.fail(err)
			break
		}
		exchange.succeed(text)
	}
	return exchange.state, exchange.err
}

// Abort cancels the in-flight request and releases the partially read
// body. No result is produced. Abort is a no-op once the exchange is
// done.
func (exchange *Exchange) Abort() {
	if exchange.state == StateDone {
		return
	}
	if exchange.cancel != nil {
		exchange.cancel()
	}
	if pending := exchange.pending; pending != nil {
		// The round trip goroutine still owns a response it may deliver.
		go func() {
			if result := <-pending; result.response != nil {
				result.response.Body.Close()
			}
		}()
		exchange.pending = nil
	}
	exchange.release()
}

// release drops the body and marks the exchange aborted.
func (exchange *Exchange) release() {
	exchange.closeBody()
	exchange.buffer = nil
	exchange.chunk = nil
	exchange.aborted = true
	exchange.err = ErrExchangeAborted
	exchange.state = StateDone
}

func (exchange *Exchange) dispatch(ctx context.Context) {
	requestContext, cancel := context.WithCancel(ctx)
	exchange.cancel = cancel
	request := exchange.request.WithContext(requestContext)
	pending := make(chan roundTripResult, 1)
	exchange.pending = pending

	exchange.logger.Debug("dispatching request",
		"method", request.Method,
		"host", request.URL.Host,
		"path", request.URL.Path,
	)

	httpClient := exchange.httpClient
	go func() {
		response, err := httpClient.Do(request)
		pending <- roundTripResult{response: response, err: err}
	}()
	exchange.state = StateAwaitingHeaders
}

func (exchange *Exchange) receiveHeaders(response *http.Response) {
	exchange.header = response.Header
	exchange.statusCode = response.StatusCode
	exchange.body = response.Body
	exchange.reader = response.Body

	if response.ContentLength > 0 {
		exchange.buffer = make([]byte, 0, min(response.ContentLength, maxPreallocation))
	}

	if !response.Uncompressed && strings.EqualFold(response.Header.Get("Content-Encoding"), "gzip") {
		decompressor, err := gzip.NewReader(response.Body)
		if err != nil {
			exchange.fail(&TransportError{Op: "decompress body", Err: err})
			return
		}
		exchange.reader = decompressor
	}

	exchange.chunk = make([]byte, chunkSize)
	exchange.state = StateStreamingBody
}

func (exchange *Exchange) readChunk() {
	count, err := exchange.reader.Read(exchange.chunk)
	if count > 0 {
		if int64(len(exchange.buffer)+count) > exchange.limit {
			exchange.fail(&TransportError{Op: "read body", Err: ErrResponseTooLarge})
			return
		}
		exchange.buffer = append(exchange.buffer, exchange.chunk[:count]...)
	}
	switch {
	case errors.Is(err, io.EOF):
		exchange.closeBody()
		exchange.chunk = nil
		exchange.state = StateDecoding
	case err != nil:
		exchange.fail(&TransportError{Op: "read body", Err: err})
	}
}

// classify turns the accumulated body into the exchange's result. The
// service error envelope is checked before the status code: it carries
// more detail than the status, including the rate-limit code.
func (exchange *Exchange) classify() (string, error) {
	if !utf8.Valid(exchange.buffer) {
		return "", &MalformedBodyError{StatusCode: exchange.statusCode, Size: len(exchange.buffer)}
	}
	text := string(exchange.buffer)
	exchange.buffer = nil

	if entries, ok := parseServiceErrors(text); ok {
		for _, entry := range entries {
			if entry.Code != ErrorCodeRateLimitExceeded {
				continue
			}
			if values := exchange.header.Values(HeaderRateLimitReset); len(values) > 0 {
				if reset, err := rateLimitHeader(exchange.header, HeaderRateLimitReset); err == nil {
					return "", &RateLimitedError{Reset: reset, Errors: entries}
				}
			}
			break
		}
		return "", &ServiceError{StatusCode: exchange.statusCode, Errors: entries}
	}

	if exchange.statusCode >= 200 && exchange.statusCode < 300 {
		return text, nil
	}
	return "", &BadStatusError{StatusCode: exchange.statusCode, Body: text}
}

// parseServiceErrors reports whether text is a service error envelope.
// An object without an "errors" array is not one.
func parseServiceErrors(text string) ([]ServiceErrorEntry, bool) {
	var envelope struct {
		Errors []ServiceErrorEntry `json:"errors"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil || envelope.Errors == nil {
		return nil, false
	}
	return envelope.Errors, true
}

func (exchange *Exchange) succeed(text string) {
	exchange.text = text
	exchange.finish()
}

func (exchange *Exchange) fail(err error) {
	exchange.err = err
	exchange.logger.Debug("exchange failed",
		"method", exchange.request.Method,
		"path", exchange.request.URL.Path,
		"status", exchange.statusCode,
		"error", err,
	)
	exchange.finish()
}

func (exchange *Exchange) finish() {
	exchange.closeBody()
	exchange.buffer = nil
	exchange.chunk = nil
	if exchange.cancel != nil {
		exchange.cancel()
	}
	exchange.state = StateDone
}

func (exchange *Exchange) closeBody() {
	if exchange.body != nil {
		exchange.body.Close()
		exchange.body = nil
	}
	exchange.reader = nil
}
