// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/chirp-go/chirp/lib/api"
	"github.com/chirp-go/chirp/lib/auth"
	"github.com/chirp-go/chirp/lib/clock"
	"github.com/chirp-go/chirp/lib/config"
	"github.com/chirp-go/chirp/lib/place"
	"github.com/chirp-go/chirp/lib/tweet"
)

// newTestCommand returns a commandContext talking to handler, writing
// documents to output.
func newTestCommand(t *testing.T, handler http.Handler, output io.Writer) *commandContext {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)
	client, err := api.NewClient(api.Config{
		BaseURL:       server.URL,
		Authenticator: auth.Bearer("test-token"),
		HTTPClient:    server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return &commandContext{
		client:   client,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:    clock.Real(),
		output:   output,
		pageSize: 2,
	}
}

// decodeIDs reads every JSON document in output as a list of objects
// and returns their IDs, one slice per document.
func decodeIDs(t *testing.T, output *bytes.Buffer) [][]uint64 {
	t.Helper()
	var pages [][]uint64
	decoder := json.NewDecoder(output)
	for decoder.More() {
		var entries []struct {
			ID uint64 `json:"id"`
		}
		if err := decoder.Decode(&entries); err != nil {
			t.Fatalf("decoding output: %v", err)
		}
		ids := make([]uint64, len(entries))
		for index, entry := range entries {
			ids[index] = entry.ID
		}
		pages = append(pages, ids)
	}
	return pages
}

func TestNewLogger(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := newLogger(config.LogConfig{Level: "warn", Format: "auto"}, &buffer)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	var record map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &record); err != nil {
		t.Fatalf("expected one JSON record for a non-terminal writer, got %q: %v", buffer.String(), err)
	}
	if record["msg"] != "shown" || record["key"] != "value" {
		t.Errorf("unexpected record: %v", record)
	}

	buffer.Reset()
	logger, err = newLogger(config.LogConfig{Level: "debug", Format: "text"}, &buffer)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Debug("visible")
	if !strings.Contains(buffer.String(), "msg=visible") {
		t.Errorf("expected text record, got %q", buffer.String())
	}

	if _, err := newLogger(config.LogConfig{Level: "loud", Format: "text"}, &buffer); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := newLogger(config.LogConfig{Level: "info", Format: "xml"}, &buffer); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestTimelineCommand_PagesUntilEmpty(t *testing.T) {
	ids := []uint64{50, 40, 30, 20, 10}
	var queries []string
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != tweet.PathHomeTimeline {
			http.NotFound(writer, request)
			return
		}
		queries = append(queries, request.URL.RawQuery)
		count, _ := strconv.Atoi(request.URL.Query().Get("count"))
		maxID, _ := strconv.ParseUint(request.URL.Query().Get("max_id"), 10, 64)
		page := []string{}
		for _, id := range ids {
			if (maxID == 0 || id <= maxID) && len(page) < count {
				page = append(page, fmt.Sprintf(`{"id": %d, "text": "tweet %d"}`, id, id))
			}
		}
		fmt.Fprintf(writer, "[%s]", strings.Join(page, ","))
	})

	var output bytes.Buffer
	command := newTestCommand(t, handler, &output)
	if err := command.dispatch(context.Background(), "timeline", []string{"home", "--pages", "5"}); err != nil {
		t.Fatalf("timeline: %v", err)
	}

	want := [][]uint64{{50, 40}, {30, 20}, {10}}
	if diff := cmp.Diff(want, decodeIDs(t, &output)); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	// Three non-empty pages and the empty one that ends paging.
	if len(queries) != 4 {
		t.Errorf("expected 4 requests, got %d: %v", len(queries), queries)
	}
	if !strings.Contains(queries[1], "max_id=39") {
		t.Errorf("second page query = %q, want max_id=39", queries[1])
	}
}

func TestFetch_WaitsForReset(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	reset := start.Add(90 * time.Second)

	var mu sync.Mutex
	requests := 0
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		mu.Lock()
		requests++
		first := requests == 1
		mu.Unlock()
		if first {
			writer.Header().Set(api.HeaderRateLimitReset, strconv.FormatInt(reset.Unix(), 10))
			writer.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(writer, `{"errors": [{"code": 88, "message": "Rate limit exceeded"}]}`)
			return
		}
		fmt.Fprint(writer, `{"id": 42, "text": "after the reset"}`)
	})

	var output bytes.Buffer
	command := newTestCommand(t, handler, &output)
	fakeClock := clock.Fake(start)
	command.clock = fakeClock
	command.wait = true

	done := make(chan error, 1)
	go func() {
		done <- command.dispatch(context.Background(), "tweet", []string{"42"})
	}()

	fakeClock.WaitForWaiters(1)
	fakeClock.Advance(90 * time.Second)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("tweet: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("command did not finish after the reset")
	}

	mu.Lock()
	defer mu.Unlock()
	if requests != 2 {
		t.Errorf("expected 2 requests, got %d", requests)
	}
	if diff := cmp.Diff([][]uint64{{42}}, decodeIDs(t, &output)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestFetch_WithoutWaitReturnsRateLimit(t *testing.T) {
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set(api.HeaderRateLimitReset, "1700000090")
		writer.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(writer, `{"errors": [{"code": 88, "message": "Rate limit exceeded"}]}`)
	})

	command := newTestCommand(t, handler, io.Discard)
	err := command.dispatch(context.Background(), "tweet", []string{"42"})
	if reset, limited := api.IsRateLimited(err); !limited || reset != 1700000090 {
		t.Errorf("expected rate-limit error with reset 1700000090, got %v", err)
	}
}

func TestPlaceReplay_ChoosesEndpoint(t *testing.T) {
	var paths []string
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		paths = append(paths, request.URL.Path)
		fmt.Fprint(writer, `{"query": {"url": "u"}, "result": {"places": []}}`)
	})

	command := newTestCommand(t, handler, io.Discard)
	ctx := context.Background()
	searchURL := command.client.RequestURL(place.PathSearch, api.Params{"query": "dallas"})
	geocodeURL := command.client.RequestURL(place.PathReverseGeocode, api.Params{"lat": "1", "long": "2"})

	for _, rawURL := range []string{searchURL, geocodeURL} {
		if err := command.dispatch(ctx, "place", []string{"replay", rawURL}); err != nil {
			t.Fatalf("replay %s: %v", rawURL, err)
		}
	}
	if diff := cmp.Diff([]string{place.PathSearch, place.PathReverseGeocode}, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}

	err := command.dispatch(ctx, "place", []string{"replay", "https://elsewhere.example/geo/search.json?query=x"})
	if !api.IsBadURL(err) {
		t.Errorf("expected *BadURLError for a foreign URL, got %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("foreign URL reached the server: %v", paths)
	}
}

func TestDispatch_UsageErrors(t *testing.T) {
	command := newTestCommand(t, http.NotFoundHandler(), io.Discard)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown", []string{"follow"}},
		{"timeline without kind", []string{"timeline"}},
		{"user timeline without ID", []string{"timeline", "user"}},
		{"bad tweet ID", []string{"tweet", "abc"}},
		{"zero pages", []string{"conversations", "--pages", "0"}},
		{"place search without target", []string{"place", "search"}},
		{"bad granularity", []string{"place", "search", "--query", "x", "--granularity", "planet"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := command.dispatch(context.Background(), test.args[0], test.args[1:])
			var usageErr *usageError
			if !errors.As(err, &usageErr) {
				t.Fatalf("expected *usageError, got %v", err)
			}
			if usageErr.ExitCode() != 2 {
				t.Errorf("ExitCode() = %d, want 2", usageErr.ExitCode())
			}
		})
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	cfg, err := loadConfig(globalOptions{logLevel: "debug", pageSize: 75})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Timeline.PageSize != 75 {
		t.Errorf("overrides not applied: %+v %+v", cfg.Log, cfg.Timeline)
	}

	if _, err := loadConfig(globalOptions{pageSize: 500}); err == nil {
		t.Error("expected validation error for page size 500")
	}
}
