//go:build !cgo || nocgo

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transcribe

import (
	"context"
	"errors"
)

// WhisperOracle is unavailable in builds without cgo (whisper.cpp's Go
// bindings require it). NewWhisperOracle always fails; this keeps the
// package importable for callers that only need the stage's pure logic
// (e.g. in tests run with CGO_ENABLED=0).
type WhisperOracle struct{}

// NewWhisperOracle always returns an error in this build.
func NewWhisperOracle(modelPath, device string) (*WhisperOracle, error) {
	return nil, errors.New("whisper transcription oracle unavailable: built without cgo")
}

// Transcribe always fails in this build.
func (w *WhisperOracle) Transcribe(ctx context.Context, pcm []int16, initialPrompt, language string, vadFilter bool) ([]Segment, error) {
	return nil, errors.New("whisper transcription oracle unavailable: built without cgo")
}
