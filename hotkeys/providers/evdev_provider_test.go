// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package providers

import (
	"testing"

	"github.com/AshBuk/streamcast-engine/hotkeys/utils"
	"github.com/AshBuk/streamcast-engine/internal/testutils"
)

func TestNewEvdevKeyboardProvider(t *testing.T) {
	provider := NewEvdevKeyboardProvider(testutils.NewMockLogger())
	if provider == nil {
		t.Fatal("NewEvdevKeyboardProvider returned nil")
	}
	if provider.callbacks == nil {
		t.Error("callbacks map not initialized")
	}
	if provider.isListening {
		t.Error("should not be listening initially")
	}
}

func TestEvdevKeyboardProvider_RegisterHotkey(t *testing.T) {
	provider := NewEvdevKeyboardProvider(testutils.NewMockLogger())
	called := false
	callback := func() error { called = true; return nil }

	if err := provider.RegisterHotkey("altgr+shift+t", callback); err != nil {
		t.Fatalf("unexpected error registering hotkey: %v", err)
	}
	stored, exists := provider.callbacks["altgr+shift+t"]
	if !exists {
		t.Fatal("hotkey not found in callbacks")
	}
	if err := stored(); err != nil || !called {
		t.Errorf("expected stored callback to fire, err=%v called=%v", err, called)
	}
}

func TestEvdevKeyboardProvider_Start_AlreadyStarted(t *testing.T) {
	provider := NewEvdevKeyboardProvider(testutils.NewMockLogger())
	provider.isListening = true

	err := provider.Start()
	if err == nil || err.Error() != "evdev keyboard provider already started" {
		t.Errorf("expected already-started error, got %v", err)
	}
}

func TestEvdevKeyboardProvider_Stop_NotStarted(t *testing.T) {
	provider := NewEvdevKeyboardProvider(testutils.NewMockLogger())
	provider.Stop()
	if provider.isListening {
		t.Error("isListening should remain false")
	}
}

// TestEvdevStopStartRace guards against Start/Stop races on real
// devices; it skips entirely in environments without evdev access
// (containers, CI without /dev/input).
func TestEvdevStopStartRace(t *testing.T) {
	provider := NewEvdevKeyboardProvider(testutils.NewMockLogger())
	if !provider.IsSupported() {
		t.Skip("evdev not supported (permissions or no devices)")
	}
	if err := provider.Start(); err != nil {
		t.Skipf("cannot start evdev: %v", err)
	}
	provider.Stop()
	if err := provider.Start(); err != nil {
		t.Fatalf("start after stop failed: %v", err)
	}
	provider.Stop()
}

func TestGetKeyName(t *testing.T) {
	tests := []struct {
		keyCode  int
		expected string
	}{
		{1, "esc"},
		{30, "a"},
		{28, "enter"},
		{57, "space"},
		{29, "leftctrl"},
		{999, ""},
	}
	for _, tt := range tests {
		if got := utils.GetKeyName(tt.keyCode); got != tt.expected {
			t.Errorf("GetKeyName(%d) = %q, want %q", tt.keyCode, got, tt.expected)
		}
	}
}
