// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package transcribe implements the sliding-window streaming
// transcription stage: it owns the growing audio window, the bounded
// prompt memory, and the confirm/draft boundary algorithm, and drives
// the transcription oracle defined by Oracle.
package transcribe

import "context"

// Segment is a span of recognised text with window-relative timestamps
// in seconds, as returned by the transcription oracle.
type Segment struct {
	Text  string
	Start float64
	End   float64
}

// Oracle is the transcription backend the stage consumes. Implementations
// receive the entire current window on every call: the window's
// earlier content is not re-sent incrementally because the oracle has
// no notion of incremental state between calls.
type Oracle interface {
	// Transcribe runs recognition over pcm (mono 16 kHz 16-bit samples)
	// using initialPrompt as continuity context and language as the
	// target language ("auto" or empty to auto-detect). Segments are
	// returned in chronological order.
	Transcribe(ctx context.Context, pcm []int16, initialPrompt string, language string, vadFilter bool) ([]Segment, error)
}
