// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AshBuk/streamcast-engine/hotkeys/interfaces"
	"github.com/AshBuk/streamcast-engine/internal/logger"
	"github.com/AshBuk/streamcast-engine/internal/platform"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestApp_InitializeLoadsConfig(t *testing.T) {
	path := writeTestConfig(t, `
transcription:
  model_path: "/tmp/model.bin"
translation:
  mode: "http"
web_server:
  enabled: false
`)

	a := NewApp(logger.NewDefaultLogger(logger.ErrorLevel))
	if err := a.Initialize(path, false); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if a.cfg == nil {
		t.Fatal("expected config to be set after Initialize")
	}
	if a.cfg.Transcription.ModelPath != "/tmp/model.bin" {
		t.Errorf("expected model path to be loaded from file, got %q", a.cfg.Transcription.ModelPath)
	}
}

func TestApp_InitializeDebugOverride(t *testing.T) {
	path := writeTestConfig(t, `
general:
  debug: false
`)

	a := NewApp(logger.NewDefaultLogger(logger.ErrorLevel))
	if err := a.Initialize(path, true); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if !a.cfg.General.Debug {
		t.Error("expected debug flag to be forced on")
	}
}

func TestApp_StartWithoutInitializeFails(t *testing.T) {
	a := NewApp(logger.NewDefaultLogger(logger.ErrorLevel))
	if err := a.Start(); err == nil {
		t.Error("expected Start to fail before Initialize")
	}
}

func TestApp_ShutdownWithoutStartIsSafe(t *testing.T) {
	a := NewApp(logger.NewDefaultLogger(logger.ErrorLevel))
	if err := a.Shutdown(); err != nil {
		t.Errorf("Shutdown on an unstarted App should be a no-op, got %v", err)
	}
}

func TestToHotkeyEnvironment(t *testing.T) {
	tests := []struct {
		in   platform.EnvironmentType
		want interfaces.EnvironmentType
	}{
		{platform.EnvironmentX11, interfaces.EnvironmentX11},
		{platform.EnvironmentWayland, interfaces.EnvironmentWayland},
		{platform.EnvironmentUnknown, interfaces.EnvironmentUnknown},
	}
	for _, tt := range tests {
		if got := toHotkeyEnvironment(tt.in); got != tt.want {
			t.Errorf("toHotkeyEnvironment(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
