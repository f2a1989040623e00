// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package manager selects a keyboard event provider for the host
// environment and registers the pipeline's single hotkey action: the
// manual AI trigger (spec.md supplemented feature). The teacher's
// hotkey manager juggled start/stop recording plus arbitrary custom
// actions for a desktop dictation app; this headless pipeline needs
// exactly one callback.
package manager

import (
	"fmt"

	"github.com/AshBuk/streamcast-engine/hotkeys/adapters"
	"github.com/AshBuk/streamcast-engine/hotkeys/interfaces"
	"github.com/AshBuk/streamcast-engine/internal/logger"
)

// Manager owns a single keyboard provider and the manual AI trigger
// callback registered on it.
type Manager struct {
	config      adapters.HotkeyConfig
	environment interfaces.EnvironmentType
	logger      logger.Logger
	provider    interfaces.KeyboardEventProvider
	isListening bool
}

// New selects a provider for the given environment and configuration.
func New(config adapters.HotkeyConfig, environment interfaces.EnvironmentType, log logger.Logger) *Manager {
	m := &Manager{
		config:      config,
		environment: environment,
		logger:      log,
	}
	m.provider = selectProviderForEnvironment(config, environment, log)
	return m
}

// Start registers the manual AI trigger hotkey and starts listening.
// trigger is invoked each time the configured hotkey fires.
func (m *Manager) Start(trigger func() error) error {
	if m.isListening {
		return fmt.Errorf("hotkey manager is already running")
	}
	if m.provider == nil {
		return fmt.Errorf("no keyboard provider available - hotkeys will not work")
	}

	hotkey := m.config.GetManualAITriggerHotkey()
	if hotkey == "" {
		m.logger.Info("manual AI trigger hotkey is unset, hotkeys disabled")
		return nil
	}

	if err := m.provider.RegisterHotkey(hotkey, trigger); err != nil {
		return fmt.Errorf("failed to register manual AI trigger hotkey %q: %w", hotkey, err)
	}

	if err := m.provider.Start(); err != nil {
		return m.startFallback(err, trigger)
	}

	m.isListening = true
	m.logger.Info("hotkey manager listening for manual AI trigger: %s", hotkey)
	return nil
}

// Stop stops the active provider.
func (m *Manager) Stop() {
	if m.isListening {
		m.provider.Stop()
		m.isListening = false
	}
}
