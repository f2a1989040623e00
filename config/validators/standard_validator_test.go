// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package validators

import (
	"testing"

	"github.com/AshBuk/streamcast-engine/config/models"
)

// defaultTestConfig mirrors loaders.SetDefaultConfig's values for the
// fields this validator inspects, without importing loaders (which
// itself imports validators).
func defaultTestConfig() *models.Config {
	c := &models.Config{}
	c.Audio.SampleRate = 16000
	c.Audio.Channels = 1
	c.Audio.RecordingMethod = "arecord"
	c.Audio.MaxRecordingTime = 0
	c.Audio.ChunkDurationMs = 100
	c.Transcription.Patience = 2.0
	c.Transcription.MemorySegments = 5
	c.Paragraph.ThresholdStd = 1.5
	c.Paragraph.MinPause = 0.8
	c.Paragraph.MaxChars = 500
	c.Paragraph.MaxWords = 100
	c.Paragraph.WindowSize = 30
	c.Translation.Mode = models.TranslationModeHTTP
	c.Translation.TimeoutSeconds = 10
	c.Translation.AI.Trigger = models.AITriggerParagraph
	c.Translation.AI.Mode = models.AIModeProofreadTranslate
	c.Security.AllowedCommands = []string{"arecord", "ffmpeg"}
	return c
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(*models.Config)
		expectError    bool
		expectedValues map[string]interface{}
	}{
		{
			name:        "valid config",
			mutate:      func(c *models.Config) {},
			expectError: false,
			expectedValues: map[string]interface{}{
				"sampleRate": 16000,
			},
		},
		{
			name: "invalid sample rate - too low",
			mutate: func(c *models.Config) {
				c.Audio.SampleRate = 1000
			},
			expectError: true,
			expectedValues: map[string]interface{}{
				"sampleRate": 16000,
			},
		},
		{
			name: "invalid sample rate - too high",
			mutate: func(c *models.Config) {
				c.Audio.SampleRate = 100000
			},
			expectError: true,
			expectedValues: map[string]interface{}{
				"sampleRate": 16000,
			},
		},
		{
			name: "invalid recording method",
			mutate: func(c *models.Config) {
				c.Audio.RecordingMethod = "invalid"
			},
			expectError: true,
			expectedValues: map[string]interface{}{
				"recordingMethod": "arecord",
			},
		},
		{
			name: "negative patience corrected",
			mutate: func(c *models.Config) {
				c.Transcription.Patience = -1.0
			},
			expectError: true,
			expectedValues: map[string]interface{}{
				"patience": 2.0,
			},
		},
		{
			name: "invalid translation mode",
			mutate: func(c *models.Config) {
				c.Translation.Mode = "carrier-pigeon"
			},
			expectError: true,
			expectedValues: map[string]interface{}{
				"translationMode": models.TranslationModeHTTP,
			},
		},
		{
			name: "invalid ai trigger only flagged when ai enabled",
			mutate: func(c *models.Config) {
				c.Translation.AI.Enabled = true
				c.Translation.AI.Trigger = "whenever"
			},
			expectError: true,
			expectedValues: map[string]interface{}{
				"aiTrigger": models.AITriggerParagraph,
			},
		},
		{
			name: "invalid paragraph threshold corrected",
			mutate: func(c *models.Config) {
				c.Paragraph.ThresholdStd = -1
			},
			expectError: true,
			expectedValues: map[string]interface{}{
				"thresholdStd": 1.5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := defaultTestConfig()
			tt.mutate(config)

			err := ValidateConfig(config)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if sampleRate, ok := tt.expectedValues["sampleRate"]; ok {
				if config.Audio.SampleRate != sampleRate {
					t.Errorf("expected SampleRate %v, got %v", sampleRate, config.Audio.SampleRate)
				}
			}
			if recordingMethod, ok := tt.expectedValues["recordingMethod"]; ok {
				if config.Audio.RecordingMethod != recordingMethod {
					t.Errorf("expected RecordingMethod %v, got %v", recordingMethod, config.Audio.RecordingMethod)
				}
			}
			if patience, ok := tt.expectedValues["patience"]; ok {
				if config.Transcription.Patience != patience {
					t.Errorf("expected Patience %v, got %v", patience, config.Transcription.Patience)
				}
			}
			if mode, ok := tt.expectedValues["translationMode"]; ok {
				if config.Translation.Mode != mode {
					t.Errorf("expected Translation.Mode %v, got %v", mode, config.Translation.Mode)
				}
			}
			if trigger, ok := tt.expectedValues["aiTrigger"]; ok {
				if config.Translation.AI.Trigger != trigger {
					t.Errorf("expected AI.Trigger %v, got %v", trigger, config.Translation.AI.Trigger)
				}
			}
			if threshold, ok := tt.expectedValues["thresholdStd"]; ok {
				if config.Paragraph.ThresholdStd != threshold {
					t.Errorf("expected Paragraph.ThresholdStd %v, got %v", threshold, config.Paragraph.ThresholdStd)
				}
			}
		})
	}
}
