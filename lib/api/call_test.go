// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func TestParseResponse(t *testing.T) {
	header := http.Header{HeaderRateLimitRemaining: {"3"}}
	response, err := ParseResponse[[]int](`[1,2,3]`, header)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if Len(response) != 3 || response.RateLimit.Remaining != 3 || response.RateLimit.Limit != -1 {
		t.Errorf("response = %+v", response)
	}

	_, err = ParseResponse[[]int](`{"not":"a list"}`, header)
	var decodeError *DecodeError
	if !errors.As(err, &decodeError) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if decodeError.Target != "[]int" {
		t.Errorf("Target = %q, want %q", decodeError.Target, "[]int")
	}

	_, err = ParseResponse[[]int](`[]`, http.Header{HeaderRateLimitReset: {"later"}})
	if !IsDecode(err) {
		t.Errorf("malformed header error = %v, want *DecodeError", err)
	}
}

func TestCall_DecoderErrorIsWrapped(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("not a number"))
	}))
	defer server.Close()

	call := NewCall(newTestExchange(t, server, "/"), func(text string, _ http.Header) (int, error) {
		return strconv.Atoi(text)
	})
	_, err := call.Await(context.Background())
	if !IsDecode(err) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Errorf("error %v does not wrap the decoder's error", err)
	}
}

func TestCall_ExchangeErrorPassesThrough(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	decoded := false
	call := NewCall(newTestExchange(t, server, "/"), func(string, http.Header) (int, error) {
		decoded = true
		return 0, nil
	})
	if _, err := call.Await(context.Background()); !IsBadStatus(err, http.StatusServiceUnavailable) {
		t.Fatalf("error = %v, want bad status 503", err)
	}
	if decoded {
		t.Error("decoder ran after a failed exchange")
	}
}

func TestCall_AwaitAfterManualSteps(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("41"))
	}))
	defer server.Close()

	call := NewCall(newTestExchange(t, server, "/"), func(text string, _ http.Header) (int, error) {
		value, err := strconv.Atoi(text)
		return value + 1, err
	})
	ctx := context.Background()
	for call.Exchange().State() != StateDone {
		if _, err := call.Exchange().Advance(ctx); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	value, err := call.Await(ctx)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if value != 42 {
		t.Errorf("value = %d, want 42", value)
	}
}

func TestCall_Abort(t *testing.T) {
	request, _ := http.NewRequest(http.MethodGet, "https://example.invalid/", nil)
	call := NewCall(NewExchange(nil, request), func(string, http.Header) (int, error) { return 0, nil })
	call.Abort()
	if _, err := call.Await(context.Background()); !errors.Is(err, ErrExchangeAborted) {
		t.Fatalf("error = %v, want ErrExchangeAborted", err)
	}
}
