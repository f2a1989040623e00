//go:build linux

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package manager

import (
	"os"

	"github.com/AshBuk/streamcast-engine/hotkeys/adapters"
	"github.com/AshBuk/streamcast-engine/hotkeys/interfaces"
	"github.com/AshBuk/streamcast-engine/hotkeys/providers"
	"github.com/AshBuk/streamcast-engine/internal/logger"
)

// Check if running inside AppImage
func isAppImage() bool {
	return os.Getenv("APPIMAGE") != "" || os.Getenv("APPDIR") != ""
}

// Select the most appropriate hotkey provider based on configuration and environment
func selectProviderForEnvironment(config adapters.HotkeyConfig, environment interfaces.EnvironmentType, log logger.Logger) interfaces.KeyboardEventProvider {
	// Handle an explicit provider override from the configuration
	switch config.GetProvider() {
	case "evdev":
		log.Info("Hotkeys provider override: evdev")
		return providers.NewEvdevKeyboardProvider(log)
	case "dbus":
		log.Info("Hotkeys provider override: dbus")
		return providers.NewDbusKeyboardProvider(config, environment, log)
	}
	// Auto-select the provider based on the runtime environment
	if isAppImage() {
		return selectAppImageProvider(config, environment, log)
	}
	return selectSystemProvider(config, environment, log)
}

// Select the provider for an AppImage environment
func selectAppImageProvider(config adapters.HotkeyConfig, environment interfaces.EnvironmentType, log logger.Logger) interfaces.KeyboardEventProvider {
	log.Info("AppImage detected - checking evdev first for better compatibility")
	// Try evdev first, as it is often more reliable in AppImage contexts
	if evdevProvider := providers.NewEvdevKeyboardProvider(log); evdevProvider.IsSupported() {
		log.Info("Using evdev keyboard provider (AppImage mode)")
		return evdevProvider
	}
	log.Info("evdev not available in AppImage, falling back to D-Bus")
	log.Info("HOTKEY SETUP: For reliable hotkeys in AppImage, run:")
	log.Info("  sudo usermod -a -G input $USER")
	log.Info("  Then reboot or log out/in")
	// Fallback to D-Bus if evdev is not available
	return providers.NewDbusKeyboardProvider(config, environment, log)
}

// Select the provider for a standard system environment
func selectSystemProvider(config adapters.HotkeyConfig, environment interfaces.EnvironmentType, log logger.Logger) interfaces.KeyboardEventProvider {
	// Try D-Bus first, as it works without root permissions on modern desktops
	if dbusProvider := providers.NewDbusKeyboardProvider(config, environment, log); dbusProvider.IsSupported() {
		log.Info("Using D-Bus keyboard provider (GNOME/KDE)")
		return dbusProvider
	}
	log.Info("D-Bus GlobalShortcuts portal not available, trying evdev...")
	// Fallback to evdev if D-Bus is not available
	if evdevProvider := providers.NewEvdevKeyboardProvider(log); evdevProvider.IsSupported() {
		log.Info("Using evdev keyboard provider (requires root permissions)")
		return evdevProvider
	}

	log.Info("evdev not available, hotkeys will be disabled")
	return createFallbackProvider(log)
}

// Create a dummy provider as a last resort
func createFallbackProvider(log logger.Logger) interfaces.KeyboardEventProvider {
	log.Warning("No supported keyboard provider available")
	log.Info("For hotkeys to work:")
	log.Info("  - On GNOME/KDE: Ensure D-Bus session is running")
	log.Info("  - On other DEs: Run with sudo or add user to 'input' group")
	log.Info("  - Alternative: Use system-wide hotkey tools like sxhkd")
	return providers.NewDummyKeyboardProvider(log)
}
