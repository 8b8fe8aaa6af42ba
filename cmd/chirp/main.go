// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

// chirp is a command-line client for the social API. It reads
// timelines, direct messages and conversations, and searches places.
//
// Configuration comes from the file named by --config or CHIRP_CONFIG.
// Without either, built-in defaults are used and the bearer token is
// read from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/chirp-go/chirp/lib/api"
	"github.com/chirp-go/chirp/lib/auth"
	"github.com/chirp-go/chirp/lib/clock"
	"github.com/chirp-go/chirp/lib/config"
	"github.com/chirp-go/chirp/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// globalOptions are the flags accepted before the command name.
type globalOptions struct {
	configPath string
	logLevel   string
	pageSize   int
	wait       bool
}

func run(args []string) error {
	var options globalOptions

	flagSet := pflag.NewFlagSet("chirp", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&options.configPath, "config", "", "path to chirp config file (default: $CHIRP_CONFIG)")
	flagSet.StringVar(&options.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	flagSet.IntVar(&options.pageSize, "page-size", 0, "override timeline.page_size")
	flagSet.BoolVar(&options.wait, "wait", false, "when rate limited, wait for the reset and retry once")
	flagSet.BoolP("help", "h", false, "show help")

	if len(args) > 0 && args[0] == "--version" {
		fmt.Println("chirp", version.Info())
		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return usage("%v", err)
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printHelp(flagSet)
		return nil
	}

	cfg, err := loadConfig(options)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	token, err := resolveToken(cfg)
	if err != nil {
		return err
	}

	userAgent := cfg.API.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent("chirp")
	}
	client, err := api.NewClient(api.Config{
		BaseURL:            cfg.API.BaseURL,
		Authenticator:      auth.Bearer(token),
		HTTPClient:         &http.Client{Timeout: cfg.RequestTimeout()},
		Logger:             logger,
		UserAgent:          userAgent,
		DisableCompression: cfg.API.DisableCompression,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := &commandContext{
		client:   client,
		logger:   logger.With("command", flagSet.Arg(0)),
		clock:    clock.Real(),
		output:   os.Stdout,
		pageSize: cfg.Timeline.PageSize,
		wait:     options.wait,
	}
	return command.dispatch(ctx, flagSet.Arg(0), flagSet.Args()[1:])
}

// loadConfig loads the config file named by --config or CHIRP_CONFIG,
// falling back to defaults when neither is set, then applies flag
// overrides and validates the result.
func loadConfig(options globalOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case options.configPath != "":
		cfg, err = config.LoadFile(options.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if options.logLevel != "" {
		cfg.Log.Level = options.logLevel
	}
	if options.pageSize != 0 {
		cfg.Timeline.PageSize = options.pageSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, usage("%v", err)
	}
	return cfg, nil
}

// resolveToken returns the configured bearer token, prompting on the
// terminal when no source is configured.
func resolveToken(cfg *config.Config) (string, error) {
	token, err := cfg.Token()
	if !errors.Is(err, config.ErrNoToken) {
		return token, err
	}

	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return "", usage("no bearer token configured and no terminal available to prompt (set auth.token_env or auth.token_file)")
	}

	fmt.Fprint(os.Stderr, "Bearer token: ")
	tokenBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading bearer token: %w", err)
	}
	if len(tokenBytes) == 0 {
		return "", usage("empty bearer token")
	}
	return string(tokenBytes), nil
}

// usageError is a problem with how chirp was invoked.
type usageError struct {
	message string
}

func usage(format string, args ...any) error {
	return &usageError{message: fmt.Sprintf(format, args...)}
}

func (err *usageError) Error() string { return err.message }

// ExitCode follows the sysexits convention for bad usage.
func (err *usageError) ExitCode() int { return 2 }

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `chirp reads timelines, direct messages and places from the social API.

Usage:
  chirp [global flags] <command> [arguments]

Commands:
  timeline home|mentions      page through your home or mentions timeline
  timeline user <user-id>     page through a user's tweets
  tweet <id>...               show tweets by ID
  dm sent|received            page through direct messages
  dm send <user-id> <text>    send a direct message
  dm delete <id>              delete a direct message
  conversations               load direct messages grouped by conversation
  place show <id>             show a place
  place search                search places (--query, --lat/--long, --ip)
  place geocode <lat> <long>  reverse geocode a point
  place replay <url>          repeat a search from its result URL

Examples:
  # Three pages of the home timeline, 50 tweets each
  chirp --page-size 50 timeline home --pages 3

  # Cities near a point
  chirp place search --lat 51.5 --long -0.13 --granularity city

Global flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
