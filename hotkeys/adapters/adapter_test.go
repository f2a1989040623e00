// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package adapters

import "testing"

func TestNewConfigAdapter(t *testing.T) {
	tests := []struct {
		name    string
		trigger string
		provider string
	}{
		{name: "standard hotkey", trigger: "altgr+shift+t", provider: "auto"},
		{name: "single key", trigger: "F12", provider: "dbus"},
		{name: "complex hotkey", trigger: "altgr+comma", provider: "evdev"},
		{name: "empty hotkey", trigger: "", provider: "auto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewConfigAdapter(tt.trigger, tt.provider)
			if adapter == nil {
				t.Fatalf("NewConfigAdapter returned nil")
			}
			var _ HotkeyConfig = adapter
		})
	}
}

func TestConfigAdapter_GetManualAITriggerHotkey(t *testing.T) {
	tests := []struct {
		name     string
		trigger  string
		expected string
	}{
		{name: "standard hotkey", trigger: "altgr+shift+t", expected: "altgr+shift+t"},
		{name: "single key", trigger: "F12", expected: "F12"},
		{name: "empty hotkey", trigger: "", expected: ""},
		{name: "unicode characters", trigger: "ctrl+ñ", expected: "ctrl+ñ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewConfigAdapter(tt.trigger, "auto")
			if got := adapter.GetManualAITriggerHotkey(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestConfigAdapter_GetProvider_DefaultAuto(t *testing.T) {
	adapter := NewConfigAdapter("altgr+shift+t", "")
	if p := adapter.GetProvider(); p != "auto" {
		t.Errorf("expected default provider 'auto', got '%s'", p)
	}
}

func TestConfigAdapter_GetProvider_Override(t *testing.T) {
	adapter := NewConfigAdapter("altgr+shift+t", "evdev")
	if p := adapter.GetProvider(); p != "evdev" {
		t.Errorf("expected 'evdev', got '%s'", p)
	}
}

func TestConfigAdapter_MultipleInstancesIndependent(t *testing.T) {
	a1 := NewConfigAdapter("ctrl+1", "auto")
	a2 := NewConfigAdapter("ctrl+2", "auto")
	if a1.GetManualAITriggerHotkey() == a2.GetManualAITriggerHotkey() {
		t.Error("expected independent adapter instances")
	}
}
