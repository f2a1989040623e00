// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package translate implements the translation stage: HTTP-provider
// mode with its reserve-last-sentence trick, and LLM-processor mode
// with its configurable trigger rules and two-call proofread+translate
// dispatch.
package translate

import (
	"context"
	"time"
)

// SentencePair is one sentence-level split returned by a translation
// provider: the original-language span and its translated counterpart.
type SentencePair struct {
	Source string
	Target string
}

// Provider is the external translation service the HTTP-mode stage
// consumes (spec §6.2). source may be "auto"; target is required.
// Implementations should return an empty slice for empty input and a
// wrapped error on network/parse failure — the stage treats any error
// as recoverable and substitutes a marker.
type Provider interface {
	Translate(ctx context.Context, text, source, target string, timeout time.Duration) ([]SentencePair, error)
}

// ErrorMarker is substituted for the translated text when a Provider or
// LLMProcessor call fails; translation failures are recoverable and
// must never stall the result queues.
const ErrorMarker = "Translation service is unavailable."
