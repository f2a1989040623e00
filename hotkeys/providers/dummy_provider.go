// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package providers

import (
	"fmt"
	"time"

	"github.com/AshBuk/streamcast-engine/internal/logger"
)

// DummyKeyboardProvider is the last-resort KeyboardEventProvider: it
// registers callbacks but never invokes them. Selected when neither
// D-Bus GlobalShortcuts nor evdev is usable, so the engine still runs
// headless with the manual AI trigger simply disabled.
type DummyKeyboardProvider struct {
	callbacks   map[string]func() error
	isListening bool
	logger      logger.Logger
}

// NewDummyKeyboardProvider creates a new DummyKeyboardProvider.
func NewDummyKeyboardProvider(log logger.Logger) *DummyKeyboardProvider {
	return &DummyKeyboardProvider{
		callbacks: make(map[string]func() error),
		logger:    log,
	}
}

// IsSupported always returns true; the dummy provider never fails to start.
func (p *DummyKeyboardProvider) IsSupported() bool {
	return true
}

// Start logs that hotkeys are disabled and otherwise does nothing.
func (p *DummyKeyboardProvider) Start() error {
	if p.isListening {
		return fmt.Errorf("dummy keyboard provider already started")
	}
	p.isListening = true
	p.logger.Warning("no keyboard provider available; manual AI trigger hotkey disabled")
	return nil
}

// Stop marks the provider as stopped.
func (p *DummyKeyboardProvider) Stop() {
	p.isListening = false
}

// RegisterHotkey stores the callback but never invokes it.
func (p *DummyKeyboardProvider) RegisterHotkey(hotkey string, callback func() error) error {
	p.logger.Info("registered hotkey %s (inert: no keyboard provider)", hotkey)
	p.callbacks[hotkey] = callback
	return nil
}

// CaptureOnce is not supported by the dummy provider.
func (p *DummyKeyboardProvider) CaptureOnce(timeout time.Duration) (string, error) {
	return "", fmt.Errorf("captureOnce not supported in dummy provider")
}

// SupportsCaptureOnce always returns false for the dummy provider.
func (p *DummyKeyboardProvider) SupportsCaptureOnce() bool {
	return false
}
