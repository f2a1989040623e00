// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package mocks provides a test double for interfaces.KeyboardEventProvider,
// trimmed to the calls the manager package's tests actually drive: a
// single manual AI trigger hotkey, registered and started once.
package mocks

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// MockHotkeyProvider implements interfaces.KeyboardEventProvider for
// manager tests.
type MockHotkeyProvider struct {
	mu                sync.RWMutex
	isStarted         bool
	isSupported       bool
	registeredHotkeys map[string]func() error
	registerError     error
	stopCalled        bool
}

// NewMockHotkeyProvider creates a new mock hotkey provider.
func NewMockHotkeyProvider() *MockHotkeyProvider {
	return &MockHotkeyProvider{
		isSupported:       true,
		registeredHotkeys: make(map[string]func() error),
	}
}

// Start simulates starting the hotkey provider.
func (m *MockHotkeyProvider) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isStarted {
		return errors.New("hotkey provider already started")
	}
	m.isStarted = true
	return nil
}

// Stop simulates stopping the hotkey provider.
func (m *MockHotkeyProvider) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.isStarted = false
	m.stopCalled = true
}

// RegisterHotkey simulates registering a hotkey.
func (m *MockHotkeyProvider) RegisterHotkey(hotkey string, callback func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registerError != nil {
		return m.registerError
	}
	if callback == nil {
		return errors.New("callback cannot be nil")
	}

	m.registeredHotkeys[hotkey] = callback
	return nil
}

// IsSupported returns whether the provider is supported.
func (m *MockHotkeyProvider) IsSupported() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isSupported
}

// CaptureOnce is not implemented by the mock; it always returns an error.
func (m *MockHotkeyProvider) CaptureOnce(timeout time.Duration) (string, error) {
	return "", errors.New("capture-once not supported by mock provider")
}

// SupportsCaptureOnce always returns false for the mock.
func (m *MockHotkeyProvider) SupportsCaptureOnce() bool {
	return false
}

// SetRegisterError configures the mock to return an error on RegisterHotkey.
func (m *MockHotkeyProvider) SetRegisterError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registerError = err
}

// IsStarted returns whether the provider is started.
func (m *MockHotkeyProvider) IsStarted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isStarted
}

// WasStopCalled returns whether Stop was called.
func (m *MockHotkeyProvider) WasStopCalled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stopCalled
}

// IsHotkeyRegistered returns whether a specific hotkey is registered.
func (m *MockHotkeyProvider) IsHotkeyRegistered(hotkey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.registeredHotkeys[hotkey]
	return exists
}

// SimulateHotkeyPress simulates pressing a registered hotkey.
func (m *MockHotkeyProvider) SimulateHotkeyPress(hotkey string) error {
	m.mu.RLock()
	callback, exists := m.registeredHotkeys[hotkey]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("hotkey %s not registered", hotkey)
	}
	return callback()
}
