// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AshBuk/streamcast-engine/internal/logger"
)

// RuntimeContext carries the process-lifetime cancellation context and
// the OS signal channel that requests a graceful shutdown.
type RuntimeContext struct {
	Ctx        context.Context
	Cancel     context.CancelFunc
	ShutdownCh chan os.Signal
	Logger     logger.Logger
}

// NewRuntimeContext wires SIGINT/SIGTERM into ShutdownCh.
func NewRuntimeContext(log logger.Logger) *RuntimeContext {
	ctx, cancel := context.WithCancel(context.Background())
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	return &RuntimeContext{
		Ctx:        ctx,
		Cancel:     cancel,
		ShutdownCh: shutdownCh,
		Logger:     log,
	}
}
