// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package loaders

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/AshBuk/streamcast-engine/config/models"
	"github.com/AshBuk/streamcast-engine/config/validators"
	yaml "gopkg.in/yaml.v2"
)

// LoadConfig loads configuration from file
func LoadConfig(filename string) (*models.Config, error) {
	var config models.Config

	// Set default values
	SetDefaultConfig(&config)

	// Read configuration file
	// Sanitize and validate path
	clean := filepath.Clean(filename)
	if strings.Contains(clean, "..") {
		return nil, fmt.Errorf("invalid config path: %s", filename)
	}
	// #nosec G304 -- Safe: path is sanitized and controlled by application configuration.
	data, err := os.ReadFile(clean)
	if err != nil {
		log.Printf("Warning: could not read config file: %v", err)
		log.Println("Using default configuration")
		return &config, nil
	}

	// Parse YAML
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Validate configuration
	if err := validators.ValidateConfig(&config); err != nil {
		log.Printf("Configuration validation error: %v", err)
		log.Println("Using validated configuration with corrections")
	}

	return &config, nil
}

// SetDefaultConfig sets default values
func SetDefaultConfig(config *models.Config) {
	// General settings
	config.General.Debug = false
	config.General.TempAudioPath = "/tmp"
	config.General.LogFile = "" // No log file by default

	// Hotkey settings
	config.Hotkeys.Provider = "auto"
	config.Hotkeys.ManualAITrigger = "altgr+shift+t"

	// Audio settings
	config.Audio.Device = "default"
	config.Audio.SampleRate = 16000
	config.Audio.Channels = 1
	config.Audio.Format = "s16le"
	config.Audio.RecordingMethod = "arecord"
	config.Audio.MaxRecordingTime = 0 // unbounded; session ends via shutdown or auto-stop
	config.Audio.ChunkDurationMs = 100 // CHUNK_DURATION, spec.md §4.2 default
	config.Audio.EnableVAD = false
	config.Audio.VADSensitivity = "medium"

	// Transcription settings
	config.Transcription.ModelPath = "sources/language-models/base.bin"
	config.Transcription.ModelType = "base"
	config.Transcription.ModelPrecision = "f16"
	config.Transcription.Device = "cpu"
	config.Transcription.Language = "auto"
	config.Transcription.Patience = 2.0
	config.Transcription.MemorySegments = 5

	// Paragraph detection settings, per original_source/src/core_parts/paragraph_detector.py defaults
	config.Paragraph.Enabled = true
	config.Paragraph.ThresholdStd = 1.5
	config.Paragraph.MinPause = 0.8
	config.Paragraph.MaxChars = 500
	config.Paragraph.MaxWords = 100
	config.Paragraph.WindowSize = 30
	config.Paragraph.WarmupCount = 5
	config.Paragraph.WarmupThreshold = 2.0

	// Translation settings
	config.Translation.Mode = models.TranslationModeHTTP
	config.Translation.SourceLanguage = "auto"
	config.Translation.TargetLanguage = "en"
	config.Translation.TimeoutSeconds = 10
	config.Translation.ProviderURL = "https://translate.googleapis.com/translate_a/single"

	config.Translation.AI.Enabled = false
	config.Translation.AI.Provider = "openrouter"
	config.Translation.AI.BaseURL = "https://openrouter.ai/api/v1/chat/completions"
	config.Translation.AI.Model = "openai/gpt-4o-mini"
	config.Translation.AI.APIKeyEnv = "OPENROUTER_API_KEY"
	config.Translation.AI.Mode = models.AIModeProofreadTranslate
	config.Translation.AI.Trigger = models.AITriggerParagraph
	config.Translation.AI.IntervalSec = 15.0
	config.Translation.AI.WordCount = 60
	config.Translation.AI.SilenceTimeout = 8.0
	config.Translation.AI.MaxRetries = 2
	config.Translation.AI.Temperature = 0.3

	// Auto-stop
	config.AutoStop.Enabled = false
	config.AutoStop.Minutes = 30.0

	// Web server settings
	config.WebServer.Enabled = false
	config.WebServer.Port = 8080
	config.WebServer.Host = "localhost"
	config.WebServer.AuthToken = "" // No auth by default
	config.WebServer.APIVersion = "v1"
	config.WebServer.LogRequests = true
	config.WebServer.CORSOrigins = "*" // Allow all origins by default
	config.WebServer.MaxClients = 10

	// Security settings
	config.Security.AllowedCommands = []string{"arecord", "ffmpeg"}
	config.Security.CheckIntegrity = false
	config.Security.ConfigHash = ""
	config.Security.MaxTempFileSize = 50 * 1024 * 1024 // 50MB by default
}

// SaveConfig writes the configuration back to disk in YAML format
func SaveConfig(filename string, config *models.Config) error {
	// Sanitize and validate path
	safe := filepath.Clean(filename)
	if strings.Contains(safe, "..") {
		return fmt.Errorf("invalid config path: %s", filename)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(safe), 0o750); err != nil {
		return err
	}

	// Write with restrictive permissions
	return os.WriteFile(safe, data, 0o600)
}
