// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/chirp-go/chirp/lib/config"
)

// newLogger creates the command logger. With format "auto", a terminal
// gets slog.TextHandler and anything else gets slog.JSONHandler.
func newLogger(logConfig config.LogConfig, writer io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logConfig.Level)); err != nil {
		return nil, usage("invalid log level %q", logConfig.Level)
	}
	options := &slog.HandlerOptions{Level: level}

	format := logConfig.Format
	if format == "auto" {
		format = "json"
		if file, ok := writer.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			format = "text"
		}
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(writer, options)
	case "json":
		handler = slog.NewJSONHandler(writer, options)
	default:
		return nil, usage("invalid log format %q", logConfig.Format)
	}
	return slog.New(handler), nil
}
