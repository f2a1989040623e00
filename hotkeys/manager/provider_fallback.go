// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package manager

import (
	"fmt"
	"os"
	"strings"

	"github.com/AshBuk/streamcast-engine/hotkeys/providers"
)

// startFallback attempts to switch from D-Bus to evdev when the
// primary provider fails to start. Allowed on GNOME/KDE only inside an
// AppImage, where portal sandboxing commonly blocks GlobalShortcuts.
func (m *Manager) startFallback(startErr error, trigger func() error) error {
	m.logger.Warning("primary keyboard provider failed to start: %v", startErr)

	de := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	isAppImage := os.Getenv("APPIMAGE") != "" || os.Getenv("APPDIR") != ""

	if (strings.Contains(de, "gnome") || strings.Contains(de, "kde")) && !isAppImage {
		m.logger.Info("skipping evdev fallback on GNOME/KDE; check portal permissions")
		return fmt.Errorf("failed to start keyboard provider: %w", startErr)
	}

	if _, ok := m.provider.(*providers.DbusKeyboardProvider); !ok {
		return fmt.Errorf("failed to start keyboard provider: %w", startErr)
	}

	fallback := providers.NewEvdevKeyboardProvider(m.logger)
	if !fallback.IsSupported() {
		return fmt.Errorf("failed to start keyboard provider: %w", startErr)
	}

	hotkey := m.config.GetManualAITriggerHotkey()
	if err := fallback.RegisterHotkey(hotkey, trigger); err != nil {
		return fmt.Errorf("failed to register manual AI trigger on fallback provider: %w", err)
	}
	if err := fallback.Start(); err != nil {
		return fmt.Errorf("failed to start fallback keyboard provider: %w", err)
	}

	m.provider = fallback
	m.isListening = true
	m.logger.Info("fell back to evdev keyboard provider")
	return nil
}
