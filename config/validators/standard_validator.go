// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package validators

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AshBuk/streamcast-engine/config/models"
)

// Inspect the configuration for invalid or unsafe values.
// It automatically corrects offending values to safe defaults and returns an error
// that aggregates all validation issues found. This ensures the application can
// always run with a sane configuration.
func ValidateConfig(config *models.Config) error {
	var errors []string

	if config.General.TempAudioPath != "" {
		// Sanitize path to prevent directory traversal
		config.General.TempAudioPath = filepath.Clean(config.General.TempAudioPath)
		if strings.Contains(config.General.TempAudioPath, "..") {
			config.General.TempAudioPath = "/tmp"
			errors = append(errors, "suspicious temp audio path sanitized to /tmp")
		}
	}

	// Audio sample rate must be within a reasonable range for audio processing
	if config.Audio.SampleRate < 8000 || config.Audio.SampleRate > 48000 {
		errors = append(errors, fmt.Sprintf("invalid sample rate: %d, correcting to 16000", config.Audio.SampleRate))
		config.Audio.SampleRate = 16000
	}

	// Ensure only supported recording methods are used
	validRecordingMethods := map[string]bool{
		"arecord": true,
		"ffmpeg":  true,
	}
	if !validRecordingMethods[config.Audio.RecordingMethod] {
		errors = append(errors, fmt.Sprintf("invalid recording method: %s, correcting to 'arecord'", config.Audio.RecordingMethod))
		config.Audio.RecordingMethod = "arecord"
	}

	// Max recording time is capped to prevent accidental resource exhaustion; 0 means unbounded
	if config.Audio.MaxRecordingTime < 0 || config.Audio.MaxRecordingTime > 1800 {
		errors = append(errors, fmt.Sprintf("invalid max recording time: %d, correcting to 0 (unbounded)", config.Audio.MaxRecordingTime))
		config.Audio.MaxRecordingTime = 0
	}

	if config.Audio.ChunkDurationMs <= 0 {
		errors = append(errors, fmt.Sprintf("invalid chunk duration: %d, correcting to 100ms", config.Audio.ChunkDurationMs))
		config.Audio.ChunkDurationMs = 100
	}

	if config.Audio.Channels <= 0 {
		errors = append(errors, fmt.Sprintf("invalid channel count: %d, correcting to 1", config.Audio.Channels))
		config.Audio.Channels = 1
	}

	// Transcription patience must be non-negative: it is subtracted from the window length
	if config.Transcription.Patience < 0 {
		errors = append(errors, fmt.Sprintf("invalid patience: %f, correcting to 2.0", config.Transcription.Patience))
		config.Transcription.Patience = 2.0
	}

	if config.Transcription.MemorySegments < 0 {
		errors = append(errors, fmt.Sprintf("invalid memory_segments: %d, correcting to 5", config.Transcription.MemorySegments))
		config.Transcription.MemorySegments = 5
	}

	// Paragraph detector parameters must describe a sane statistic
	if config.Paragraph.ThresholdStd <= 0 {
		errors = append(errors, fmt.Sprintf("invalid paragraph threshold_std: %f, correcting to 1.5", config.Paragraph.ThresholdStd))
		config.Paragraph.ThresholdStd = 1.5
	}
	if config.Paragraph.MinPause <= 0 {
		errors = append(errors, fmt.Sprintf("invalid paragraph min_pause: %f, correcting to 0.8", config.Paragraph.MinPause))
		config.Paragraph.MinPause = 0.8
	}
	if config.Paragraph.MaxChars <= 0 {
		errors = append(errors, fmt.Sprintf("invalid paragraph max_chars: %d, correcting to 500", config.Paragraph.MaxChars))
		config.Paragraph.MaxChars = 500
	}
	if config.Paragraph.MaxWords <= 0 {
		errors = append(errors, fmt.Sprintf("invalid paragraph max_words: %d, correcting to 100", config.Paragraph.MaxWords))
		config.Paragraph.MaxWords = 100
	}
	if config.Paragraph.WindowSize <= 0 {
		errors = append(errors, fmt.Sprintf("invalid paragraph window_size: %d, correcting to 30", config.Paragraph.WindowSize))
		config.Paragraph.WindowSize = 30
	}

	// Translation mode must be one of the two supported modes
	validTranslationModes := map[string]bool{
		models.TranslationModeHTTP: true,
		models.TranslationModeLLM:  true,
	}
	if !validTranslationModes[config.Translation.Mode] {
		errors = append(errors, fmt.Sprintf("invalid translation mode: %s, correcting to 'http'", config.Translation.Mode))
		config.Translation.Mode = models.TranslationModeHTTP
	}

	if config.Translation.TimeoutSeconds <= 0 {
		errors = append(errors, fmt.Sprintf("invalid translation timeout: %d, correcting to 10s", config.Translation.TimeoutSeconds))
		config.Translation.TimeoutSeconds = 10
	}

	validAITriggers := map[string]bool{
		models.AITriggerParagraph: true,
		models.AITriggerTime:      true,
		models.AITriggerWords:     true,
		models.AITriggerManual:    true,
	}
	if config.Translation.AI.Enabled && !validAITriggers[config.Translation.AI.Trigger] {
		errors = append(errors, fmt.Sprintf("invalid ai trigger: %s, correcting to 'paragraph'", config.Translation.AI.Trigger))
		config.Translation.AI.Trigger = models.AITriggerParagraph
	}

	validAIModes := map[string]bool{
		models.AIModeTranslate:          true,
		models.AIModeProofread:          true,
		models.AIModeProofreadTranslate: true,
	}
	if config.Translation.AI.Enabled && !validAIModes[config.Translation.AI.Mode] {
		errors = append(errors, fmt.Sprintf("invalid ai mode: %s, correcting to 'translate'", config.Translation.AI.Mode))
		config.Translation.AI.Mode = models.AIModeTranslate
	}

	// Validate web server settings if it's enabled
	if config.WebServer.Enabled {
		if config.WebServer.Port <= 0 || config.WebServer.Port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid port: %d, correcting to 8080", config.WebServer.Port))
			config.WebServer.Port = 8080
		}

		// Host must be a valid hostname
		if config.WebServer.Host == "" {
			config.WebServer.Host = "localhost"
		} else {
			// Basic validation to prevent injection of malicious characters
			hostRegex := regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)
			if !hostRegex.MatchString(config.WebServer.Host) {
				errors = append(errors, fmt.Sprintf("invalid host: %s, correcting to 'localhost'", config.WebServer.Host))
				config.WebServer.Host = "localhost"
			}
		}
	}

	// Ensure there's always a baseline of allowed commands for security
	if len(config.Security.AllowedCommands) == 0 {
		config.Security.AllowedCommands = []string{"arecord", "ffmpeg"}
		errors = append(errors, "allowed_commands was empty, populated with defaults")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation issues: %s", strings.Join(errors, "; "))
	}

	return nil
}
