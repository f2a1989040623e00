//go:build cgo

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transcribe

import (
	"context"
	"fmt"
	"sync"

	"github.com/AshBuk/streamcast-engine/internal/utils"
	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// modelCacheEntry is a single memoized, process-wide loaded model. The
// transcription model is expensive to load and immutable once loaded,
// so caching it across sessions keyed by (path, device) is legitimate
// global-state memoization, not shared mutable state: each WhisperOracle
// still opens its own whisper.Context per Transcribe call.
type modelCacheEntry struct {
	once  sync.Once
	model whisper.Model
	err   error
}

var (
	modelCacheMu sync.Mutex
	modelCache   = map[string]*modelCacheEntry{}
)

func loadCachedModel(modelPath, device string) (whisper.Model, error) {
	key := modelPath + "|" + device
	modelCacheMu.Lock()
	entry, ok := modelCache[key]
	if !ok {
		entry = &modelCacheEntry{}
		modelCache[key] = entry
	}
	modelCacheMu.Unlock()

	entry.once.Do(func() {
		entry.model, entry.err = whisper.New(modelPath)
	})
	return entry.model, entry.err
}

// WhisperOracle adapts a loaded whisper.cpp model to the Oracle
// interface. Each call to Transcribe opens its own context; the
// underlying model is owned by a single goroutine at a time by
// convention (the transcription stage never calls Transcribe
// concurrently with itself).
type WhisperOracle struct {
	model whisper.Model
}

// NewWhisperOracle loads (or reuses the cached) model at modelPath for
// the given device.
func NewWhisperOracle(modelPath, device string) (*WhisperOracle, error) {
	if !utils.IsValidFile(modelPath) {
		return nil, fmt.Errorf("model file not found or inaccessible: %s", modelPath)
	}

	model, err := loadCachedModel(modelPath, device)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model: %w", err)
	}
	return &WhisperOracle{model: model}, nil
}

// Transcribe implements Oracle over the whisper.cpp binding.
func (w *WhisperOracle) Transcribe(ctx context.Context, pcm []int16, initialPrompt, language string, vadFilter bool) ([]Segment, error) {
	whisperCtx, err := w.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create whisper context: %w", err)
	}

	if language != "" && language != "auto" {
		if err := whisperCtx.SetLanguage(language); err != nil {
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
	}
	if initialPrompt != "" {
		whisperCtx.SetInitialPrompt(initialPrompt)
	}

	samples := make([]float32, len(pcm))
	for i, s := range pcm {
		samples[i] = float32(s) / 32768.0
	}

	if err := whisperCtx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to process audio window: %w", err)
	}

	var segments []Segment
	for {
		seg, err := whisperCtx.NextSegment()
		if err != nil {
			break
		}
		segments = append(segments, Segment{
			Text:  utils.SanitizeTranscript(seg.Text),
			Start: seg.Start.Seconds(),
			End:   seg.End.Seconds(),
		})
	}
	return segments, nil
}
