// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Params is the parameter set of one request. GET requests carry it in
// the query string, POST requests as a form body. The same map is handed
// to the Authenticator so that signing schemes see every parameter.
type Params map[string]string

// Add sets key to value and returns params for chaining.
func (params Params) Add(key, value string) Params {
	params[key] = value
	return params
}

// AddUint sets key to the decimal form of value.
func (params Params) AddUint(key string, value uint64) Params {
	params[key] = strconv.FormatUint(value, 10)
	return params
}

// AddInt sets key to the decimal form of value.
func (params Params) AddInt(key string, value int) Params {
	params[key] = strconv.Itoa(value)
	return params
}

// AddOptionalUint sets key only when value is non-zero. Zero is the
// "unset" marker for IDs throughout chirp.
func (params Params) AddOptionalUint(key string, value uint64) Params {
	if value != 0 {
		params.AddUint(key, value)
	}
	return params
}

// Clone returns an independent copy. A nil Params clones to an empty,
// writable one.
func (params Params) Clone() Params {
	cloned := make(Params, len(params))
	for key, value := range params {
		cloned[key] = value
	}
	return cloned
}

// Encode renders params as "k=v&k=v" with keys sorted and both sides
// percent-encoded per RFC 3986 (space is %20, never "+").
func (params Params) Encode() string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var builder strings.Builder
	for index, key := range keys {
		if index > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(PercentEncode(key))
		builder.WriteByte('=')
		builder.WriteString(PercentEncode(params[key]))
	}
	return builder.String()
}

// PercentEncode escapes every byte outside the RFC 3986 unreserved set.
// This is the encoding OAuth 1.0a signature bases require, which is why
// url.QueryEscape (space as "+") cannot be used.
func PercentEncode(value string) string {
	const hex = "0123456789ABCDEF"
	var builder strings.Builder
	builder.Grow(len(value))
	for index := 0; index < len(value); index++ {
		character := value[index]
		if isUnreserved(character) {
			builder.WriteByte(character)
			continue
		}
		builder.WriteByte('%')
		builder.WriteByte(hex[character>>4])
		builder.WriteByte(hex[character&0x0f])
	}
	return builder.String()
}

func isUnreserved(character byte) bool {
	switch {
	case 'A' <= character && character <= 'Z',
		'a' <= character && character <= 'z',
		'0' <= character && character <= '9':
		return true
	}
	return character == '-' || character == '.' || character == '_' || character == '~'
}

// ParseURL recovers the parameters of a URL previously produced for the
// endpoint base, so that a search result's URL can be replayed. The part
// before "?" must equal base exactly, a query must be present, and every
// "&"-separated segment must contain "=". Keys and values are
// query-unescaped ("+" reads as a space). Any violation is a
// *BadURLError.
func ParseURL(base, full string) (Params, error) {
	prefix, query, found := strings.Cut(full, "?")
	if prefix != base {
		return nil, &BadURLError{URL: full, Reason: "does not match endpoint " + base}
	}
	if !found {
		return nil, &BadURLError{URL: full, Reason: "missing query string"}
	}

	params := make(Params)
	for segment := range strings.SplitSeq(query, "&") {
		rawKey, rawValue, ok := strings.Cut(segment, "=")
		if !ok {
			return nil, &BadURLError{URL: full, Reason: "query segment " + strconv.Quote(segment) + " has no '='"}
		}
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, &BadURLError{URL: full, Reason: "malformed escape in key " + strconv.Quote(rawKey)}
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, &BadURLError{URL: full, Reason: "malformed escape in value " + strconv.Quote(rawValue)}
		}
		params[key] = value
	}
	return params, nil
}
