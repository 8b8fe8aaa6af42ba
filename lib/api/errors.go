// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCodeRateLimitExceeded is the service error code for an
// exhausted rate-limit window.
const ErrorCodeRateLimitExceeded = 88

// ErrExchangeCompleted is returned by Exchange.Advance once the exchange
// has already produced its result.
var ErrExchangeCompleted = errors.New("api: exchange already completed")

// ErrExchangeAborted is returned by Exchange.Advance after Abort.
var ErrExchangeAborted = errors.New("api: exchange aborted")

// ServiceErrorEntry is one element of the service's error envelope:
//
//	{"errors": [{"code": 88, "message": "Rate limit exceeded"}]}
type ServiceErrorEntry struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TransportError is a connection, TLS, or I/O failure while dispatching
// the request or streaming the response body.
type TransportError struct {
	// Op names the stage that failed ("dispatch", "read body", ...).
	Op  string
	Err error
}

func (err *TransportError) Error() string {
	return fmt.Sprintf("api: %s: %v", err.Op, err.Err)
}

func (err *TransportError) Unwrap() error { return err.Err }

// MalformedBodyError reports a response body that is not valid UTF-8.
type MalformedBodyError struct {
	StatusCode int
	Size       int
}

func (err *MalformedBodyError) Error() string {
	return fmt.Sprintf("api: HTTP %d: response body (%d bytes) is not valid UTF-8", err.StatusCode, err.Size)
}

// ServiceError is a structured error envelope returned by the service
// that is not a rate-limit error.
type ServiceError struct {
	StatusCode int
	Errors     []ServiceErrorEntry
}

func (err *ServiceError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "api: HTTP %d: service error", err.StatusCode)
	for _, entry := range err.Errors {
		fmt.Fprintf(&builder, "; #%d: %s", entry.Code, entry.Message)
	}
	return builder.String()
}

// HasCode reports whether any entry carries code.
func (err *ServiceError) HasCode(code int) bool {
	for _, entry := range err.Errors {
		if entry.Code == code {
			return true
		}
	}
	return false
}

// RateLimitedError is returned when the service reports code 88 and the
// response carries an X-Rate-Limit-Reset header. Callers should not
// retry before Reset.
type RateLimitedError struct {
	// Reset is the unix time (seconds) at which the window resets.
	Reset  int32
	Errors []ServiceErrorEntry
}

func (err *RateLimitedError) Error() string {
	return fmt.Sprintf("api: rate limit exceeded; resets at %d", err.Reset)
}

// ResetTime returns Reset as a time.
func (err *RateLimitedError) ResetTime() time.Time {
	return time.Unix(int64(err.Reset), 0)
}

// BadStatusError is a non-2xx response whose body was not a service
// error envelope.
type BadStatusError struct {
	StatusCode int
	Body       string
}

func (err *BadStatusError) Error() string {
	body := err.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("api: unexpected HTTP %d", err.StatusCode)
	}
	return fmt.Sprintf("api: unexpected HTTP %d: %s", err.StatusCode, body)
}

// DecodeError is a successful exchange whose body (or headers) did not
// match the expected shape.
type DecodeError struct {
	// Target describes what was being decoded.
	Target string
	Err    error
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("api: decoding %s: %v", err.Target, err.Err)
}

func (err *DecodeError) Unwrap() error { return err.Err }

// BadURLError is returned by ParseURL for a URL that does not belong to
// the expected endpoint or has a malformed query string.
type BadURLError struct {
	URL    string
	Reason string
}

func (err *BadURLError) Error() string {
	return fmt.Sprintf("api: bad url %q: %s", err.URL, err.Reason)
}

// IsRateLimited reports whether err is a *RateLimitedError and returns
// its reset timestamp.
func IsRateLimited(err error) (int32, bool) {
	var rateLimited *RateLimitedError
	if errors.As(err, &rateLimited) {
		return rateLimited.Reset, true
	}
	return 0, false
}

// IsServiceError reports whether err is a *ServiceError carrying code.
// A code of 0 matches any service error.
func IsServiceError(err error, code int) bool {
	var serviceError *ServiceError
	if !errors.As(err, &serviceError) {
		return false
	}
	return code == 0 || serviceError.HasCode(code)
}

// IsBadStatus reports whether err is a *BadStatusError with status. A
// status of 0 matches any bad status.
func IsBadStatus(err error, status int) bool {
	var badStatus *BadStatusError
	if !errors.As(err, &badStatus) {
		return false
	}
	return status == 0 || badStatus.StatusCode == status
}

// IsTransport reports whether err is a *TransportError.
func IsTransport(err error) bool {
	var transportError *TransportError
	return errors.As(err, &transportError)
}

// IsMalformedBody reports whether err is a *MalformedBodyError.
func IsMalformedBody(err error) bool {
	var malformed *MalformedBodyError
	return errors.As(err, &malformed)
}

// IsDecode reports whether err is a *DecodeError.
func IsDecode(err error) bool {
	var decodeError *DecodeError
	return errors.As(err, &decodeError)
}

// IsBadURL reports whether err is a *BadURLError.
func IsBadURL(err error) bool {
	var badURL *BadURLError
	return errors.As(err, &badURL)
}
