// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AshBuk/streamcast-engine/internal/app"
	"github.com/AshBuk/streamcast-engine/internal/logger"
	"github.com/AshBuk/streamcast-engine/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run parses flags, acquires the single-instance lock, and drives the
// engine's lifecycle: NewApp -> Initialize -> RunAndWait.
func run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logLevel := logger.InfoLevel
	if opts.debug {
		logLevel = logger.DebugLevel
	}
	appLogger := logger.NewDefaultLogger(logLevel)

	lockFile := utils.NewLockFile(utils.GetDefaultLockPath())
	if isRunning, pid, err := lockFile.CheckExistingInstance(); err != nil {
		appLogger.Warning("failed to check for an existing instance: %v", err)
	} else if isRunning {
		fmt.Fprintf(os.Stderr, "another instance of streamcast-engine is already running (PID: %d)\n", pid)
		fmt.Fprintf(os.Stderr, "if you're sure no other instance is running, remove the lock file: %s\n", lockFile.GetLockFilePath())
		return 1
	}
	if err := lockFile.TryLock(); err != nil {
		appLogger.Error("failed to acquire application lock: %v", err)
		return 1
	}
	defer func() {
		if err := lockFile.Unlock(); err != nil {
			appLogger.Warning("failed to release lock: %v", err)
		}
	}()

	engine := app.NewApp(appLogger)
	if err := engine.Initialize(opts.configFile, opts.debug); err != nil {
		appLogger.Error("failed to initialize engine: %v", err)
		return 1
	}
	if err := engine.RunAndWait(); err != nil {
		appLogger.Error("engine error: %v", err)
		return 1
	}
	return 0
}

type options struct {
	configFile string
	debug      bool
}

func parseOptions(args []string) (*options, error) {
	opts := &options{configFile: "config.yaml"}

	fs := flag.NewFlagSet("streamcast", flag.ContinueOnError)
	var parseOutput strings.Builder
	fs.SetOutput(&parseOutput)

	fs.StringVar(&opts.configFile, "config", opts.configFile, "Path to configuration file")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "streamcast-engine: real-time speech transcription and translation")
		fmt.Fprintln(os.Stderr, "usage: streamcast [-config path] [-debug]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, flag.ErrHelp
		}
		if parseOutput.Len() > 0 {
			fmt.Fprint(os.Stderr, parseOutput.String())
		}
		fs.Usage()
		return nil, err
	}

	if remaining := fs.Args(); len(remaining) > 0 {
		fmt.Fprintf(os.Stderr, "unknown arguments: %v\n", remaining)
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments")
	}

	return opts, nil
}
