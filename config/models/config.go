// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package models

// Translation provider modes (Translation.Mode).
const (
	TranslationModeHTTP = "http"
	TranslationModeLLM  = "llm"
)

// AI trigger modes (AI.Trigger).
const (
	AITriggerParagraph = "paragraph"
	AITriggerTime      = "time"
	AITriggerWords     = "words"
	AITriggerManual    = "manual"
)

// AI dispatch modes (AI.Mode): which calls the LLM processor makes per batch.
const (
	AIModeTranslate          = "translate"
	AIModeProofread          = "proofread"
	AIModeProofreadTranslate = "proofread_translate"
)

// Config structure for storing application configuration.
type Config struct {
	// General settings
	General struct {
		Debug         bool   `yaml:"debug"`
		TempAudioPath string `yaml:"temp_audio_path"`
		LogFile       string `yaml:"log_file"` // Path to log file
	} `yaml:"general"`

	// Hotkey settings - only the manual AI trigger survives in this
	// headless pipeline; recording/model hotkeys belonged to the
	// teacher's desktop dictation workflow.
	Hotkeys struct {
		// Provider override: "auto" | "dbus" | "evdev"
		Provider        string `yaml:"provider"`
		ManualAITrigger string `yaml:"manual_ai_trigger"`
	} `yaml:"hotkeys"`

	// Audio capture settings
	Audio struct {
		Device           string `yaml:"device"`
		SampleRate       int    `yaml:"sample_rate"` // rate requested from the capture device
		Channels         int    `yaml:"channels"`    // channels requested from the capture device; downmixed to mono on emission
		Format           string `yaml:"format"`
		RecordingMethod  string `yaml:"recording_method"`   // 'arecord', 'ffmpeg'
		MaxRecordingTime int    `yaml:"max_recording_time"` // Seconds, 0 = unbounded; range-checked by the validator, not enforced by the capture stage
		ChunkDurationMs  int    `yaml:"chunk_duration_ms"`  // Size of each AudioFrame pushed to the frame queue
		EnableVAD        bool   `yaml:"enable_vad"`         // Passed to the transcription oracle as its VAD flag; the whisper.cpp oracle does not apply it
		VADSensitivity   string `yaml:"vad_sensitivity"`    // 'low', 'medium', 'high'
	} `yaml:"audio"`

	// Transcription settings
	Transcription struct {
		ModelPath      string  `yaml:"model_path"`
		ModelType      string  `yaml:"model_type"`      // 'tiny', 'base', 'small', 'medium', 'large'
		ModelPrecision string  `yaml:"model_precision"` // 'f16', 'q5_1', 'q4_0', etc.
		Device         string  `yaml:"device"`          // 'cpu', 'cuda', 'auto'
		Language       string  `yaml:"language"`        // recognition language, 'auto' to detect
		Patience       float64 `yaml:"patience"`        // seconds reserved as draft at the tail of the window
		MemorySegments int     `yaml:"memory_segments"` // bounded prompt deque length
	} `yaml:"transcription"`

	// Paragraph detection settings
	Paragraph struct {
		Enabled         bool    `yaml:"enabled"`
		ThresholdStd    float64 `yaml:"threshold_std"`    // k in mean + k*stdev
		MinPause        float64 `yaml:"min_pause"`        // floor for the adaptive threshold, seconds
		MaxChars        int     `yaml:"max_chars"`        // hard cap forcing a break
		MaxWords        int     `yaml:"max_words"`        // hard cap forcing a break
		WindowSize      int     `yaml:"window_size"`      // pause-history window length
		WarmupCount     int     `yaml:"warmup_count"`     // pauses observed before adaptive threshold kicks in
		WarmupThreshold float64 `yaml:"warmup_threshold"` // fixed threshold used during warmup, seconds
	} `yaml:"paragraph"`

	// Translation settings
	Translation struct {
		Mode           string `yaml:"mode"` // 'http' or 'llm'
		SourceLanguage string `yaml:"source_language"`
		TargetLanguage string `yaml:"target_language"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`

		// HTTP mode
		ProviderURL string `yaml:"provider_url"`

		// LLM mode
		AI struct {
			Enabled        bool    `yaml:"enabled"`
			Provider       string  `yaml:"provider"` // e.g. 'openrouter', 'openai'
			BaseURL        string  `yaml:"base_url"`
			Model          string  `yaml:"model"`
			APIKeyEnv      string  `yaml:"api_key_env"` // env var name holding the API key
			Mode           string  `yaml:"mode"`        // translate / proofread / proofread_translate
			Trigger        string  `yaml:"trigger"`     // paragraph / time / words / manual
			IntervalSec    float64 `yaml:"interval_seconds"`
			WordCount      int     `yaml:"word_count"`
			SilenceTimeout float64 `yaml:"silence_timeout"` // seconds of silence that forces a flush
			MaxRetries     int     `yaml:"max_retries"`
			Temperature    float64 `yaml:"temperature"`
		} `yaml:"ai"`
	} `yaml:"translation"`

	// Auto-stop: end the session after a period with no confirmed or draft text.
	AutoStop struct {
		Enabled bool    `yaml:"enabled"`
		Minutes float64 `yaml:"minutes"`
	} `yaml:"auto_stop"`

	// Web server settings - broadcasts Pair updates to subscribers.
	WebServer struct {
		Enabled     bool   `yaml:"enabled"`
		Port        int    `yaml:"port"`
		Host        string `yaml:"host"`
		AuthToken   string `yaml:"auth_token"`   // Optional auth token
		APIVersion  string `yaml:"api_version"`  // API version
		LogRequests bool   `yaml:"log_requests"` // Whether to log requests
		CORSOrigins string `yaml:"cors_origins"` // Allowed origins for CORS
		MaxClients  int    `yaml:"max_clients"`  // Maximum number of clients
	} `yaml:"web_server"`

	// Security settings
	Security struct {
		AllowedCommands []string `yaml:"allowed_commands"`   // Whitelist of allowed commands
		CheckIntegrity  bool     `yaml:"check_integrity"`    // Whether to check config integrity
		ConfigHash      string   `yaml:"config_hash"`        // Hash for integrity check
		MaxTempFileSize int64    `yaml:"max_temp_file_size"` // Max temp file size in bytes
	} `yaml:"security"`
}
