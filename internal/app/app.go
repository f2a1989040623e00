// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package app wires the pipeline's three worker stages, the result
// queues connecting them, the websocket broadcaster, and the manual AI
// trigger hotkey into a single engine, and owns the process lifecycle
// (signal handling, graceful shutdown). Adapted from the teacher's
// internal/app + internal/services dependency-injection idiom, reduced
// from a multi-service desktop dictation app down to the one thing
// this engine runs: a streaming capture/transcribe/translate pipeline.
package app

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/AshBuk/streamcast-engine/config"
	"github.com/AshBuk/streamcast-engine/hotkeys/adapters"
	"github.com/AshBuk/streamcast-engine/hotkeys/interfaces"
	"github.com/AshBuk/streamcast-engine/hotkeys/manager"
	"github.com/AshBuk/streamcast-engine/internal/logger"
	"github.com/AshBuk/streamcast-engine/internal/platform"
	"github.com/AshBuk/streamcast-engine/pipeline"
	"github.com/AshBuk/streamcast-engine/translate"
	"github.com/AshBuk/streamcast-engine/websocket"
)

const shutdownTimeout = 5 * time.Second

// App owns the engine's supervisor, its surrounding collaborators
// (hotkeys, websocket broadcaster), and the process runtime.
type App struct {
	cfg     *config.Config
	Runtime *RuntimeContext

	frameQ *pipeline.MergeQueue[pipeline.AudioFrame]
	tsResQ *pipeline.MergeQueue[pipeline.Pair]
	ts2tlQ *pipeline.MergeQueue[pipeline.Pair]
	tlResQ *pipeline.MergeQueue[pipeline.Pair]
	prResQ *pipeline.MergeQueue[pipeline.Pair]

	translateStage *translate.Stage
	supervisor     *pipeline.Supervisor
	hotkeyManager  *manager.Manager
	webServer      *websocket.WebSocketServer

	stopped chan struct{}
	failed  chan error
	started atomic.Bool
}

// NewApp constructs an App bound to a runtime logger. Call Initialize
// before Start.
func NewApp(log logger.Logger) *App {
	return &App{
		Runtime: NewRuntimeContext(log),
	}
}

// Initialize loads and validates the configuration. debug forces debug
// logging regardless of the file's setting.
func (a *App) Initialize(configFile string, debug bool) error {
	a.Runtime.Logger.Info("Loading configuration from: %s", configFile)

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if debug {
		cfg.General.Debug = true
	}

	a.cfg = cfg
	a.Runtime.Logger.Info("Configuration loaded successfully")
	return nil
}

// Start builds the pipeline's queues and stages, starts the
// supervisor, the websocket broadcaster, and the manual AI trigger
// hotkey.
func (a *App) Start() error {
	if a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	log := a.Runtime.Logger

	a.frameQ, a.tsResQ, a.ts2tlQ, a.tlResQ, a.prResQ = newQueues()
	a.translateStage, a.prResQ = buildTranslateStage(a.cfg, a.ts2tlQ, a.tlResQ, a.prResQ, log)

	a.stopped = make(chan struct{})
	a.failed = make(chan error, 1)
	a.supervisor = pipeline.NewSupervisor(
		buildPipeline(a.cfg, a.frameQ, a.tsResQ, a.ts2tlQ, a.translateStage, log, a.onRecordError, a.onTranscribeError),
		pipeline.Callbacks{
			OnSuccess: func() { a.started.Store(true); log.Info("pipeline started") },
			OnFailure: func(err error) {
				log.Error("pipeline failed to start: %v", err)
				a.failed <- err
			},
			OnStopped: func() { close(a.stopped) },
		},
	)
	a.translateStage.SetStopFn(a.supervisor.Stop)

	a.webServer = websocket.NewWebSocketServer(a.cfg, websocket.ResultQueues{
		TsResQ: a.tsResQ,
		TlResQ: a.tlResQ,
		PrResQ: a.prResQ,
	}, log)
	if err := a.webServer.Start(); err != nil {
		return fmt.Errorf("failed to start websocket server: %w", err)
	}

	a.hotkeyManager = manager.New(
		adapters.NewConfigAdapter(a.cfg.Hotkeys.ManualAITrigger, a.cfg.Hotkeys.Provider),
		toHotkeyEnvironment(platform.DetectEnvironment()),
		log,
	)
	if err := a.hotkeyManager.Start(a.onManualAITrigger); err != nil {
		log.Warning("failed to start hotkey manager: %v", err)
	}

	a.supervisor.Start()
	return nil
}

// onRecordError is the capture stage's fatal-error callback (spec.md
// §7): the owning stage has already stopped itself.
func (a *App) onRecordError(err error) {
	a.Runtime.Logger.Error("audio capture stage failed: %v", err)
}

// onTranscribeError is the transcription stage's fatal-error callback.
func (a *App) onTranscribeError(err error) {
	a.Runtime.Logger.Error("transcription stage failed: %v", err)
}

// onManualAITrigger fires the translation stage's manual AI dispatch
// when ai_trigger=manual (spec.md §6.5) and the configured hotkey is
// pressed.
func (a *App) onManualAITrigger() error {
	a.translateStage.TriggerManual()
	return nil
}

// toHotkeyEnvironment converts the platform package's display-server
// detection into the hotkeys package's own enum, kept independent
// since hotkeys/ has no dependency on internal/platform.
func toHotkeyEnvironment(env platform.EnvironmentType) interfaces.EnvironmentType {
	switch env {
	case platform.EnvironmentX11:
		return interfaces.EnvironmentX11
	case platform.EnvironmentWayland:
		return interfaces.EnvironmentWayland
	default:
		return interfaces.EnvironmentUnknown
	}
}

// RunAndWait starts the engine and blocks until a shutdown signal, the
// pipeline itself stopping (e.g. auto-stop), or a supervisor failure,
// then shuts down cleanly.
func (a *App) RunAndWait() error {
	if err := a.Start(); err != nil {
		return err
	}
	a.Runtime.Logger.Info("engine running")

	var startErr error
	select {
	case <-a.Runtime.ShutdownCh:
		a.Runtime.Logger.Info("received shutdown signal")
	case <-a.Runtime.Ctx.Done():
		a.Runtime.Logger.Info("context cancelled")
	case <-a.stopped:
		a.Runtime.Logger.Info("pipeline stopped on its own")
	case startErr = <-a.failed:
		a.Runtime.Logger.Info("pipeline never started, shutting down collaborators")
	}

	if err := a.Shutdown(); err != nil {
		return err
	}
	return startErr
}

// Shutdown requests cooperative pipeline shutdown and stops the
// surrounding collaborators, waiting up to shutdownTimeout for the
// three worker stages to drain.
func (a *App) Shutdown() error {
	a.Runtime.Logger.Info("shutting down engine...")
	a.Runtime.Cancel()

	if a.hotkeyManager != nil {
		a.hotkeyManager.Stop()
	}
	if a.supervisor != nil {
		a.supervisor.Stop()
		if a.started.Load() {
			select {
			case <-a.stopped:
				a.Runtime.Logger.Info("pipeline drained")
			case <-time.After(shutdownTimeout):
				a.Runtime.Logger.Warning("shutdown timeout - pipeline did not drain in time")
			}
		}
	}
	if a.webServer != nil {
		a.webServer.Stop()
	}

	a.Runtime.Logger.Info("engine shutdown complete")
	return nil
}
