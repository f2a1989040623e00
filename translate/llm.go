// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ProcessMode selects what an LLMProcessor call does with its input.
type ProcessMode string

const (
	ModeProofread          ProcessMode = "proofread"
	ModeTranslate          ProcessMode = "translate"
	ModeProofreadTranslate ProcessMode = "proofread_translate"
)

// LLMProcessor is the external large-model processor the LLM-mode
// stage consumes (spec §6.3). By default the stage dispatches two
// separate translate-only and proofread-only calls rather than relying
// on a single combined call, since models reliably follow a single
// task per call; ParseStructuredOutput is kept as a fallback parser for
// processors that do return a combined PROOFREAD:/TRANSLATE: response.
type LLMProcessor interface {
	Process(ctx context.Context, text string, mode ProcessMode) (string, error)
}

// OpenRouterProcessor is a chat-completions LLM processor, grounded on
// the structure of a raw net/http JSON chat call (no vendor SDK) rather
// than any specific provider's official client.
type OpenRouterProcessor struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxRetries  int
	Client      *http.Client
}

// NewOpenRouterProcessor constructs a processor against baseURL using
// apiKey for bearer auth.
func NewOpenRouterProcessor(baseURL, apiKey, model string, temperature float64, maxRetries int) *OpenRouterProcessor {
	return &OpenRouterProcessor{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Model:       model,
		Temperature: temperature,
		MaxRetries:  maxRetries,
		Client:      &http.Client{},
	}
}

func systemPromptFor(mode ProcessMode) string {
	switch mode {
	case ModeProofread:
		return "You proofread transcribed speech for grammar and punctuation only. Do not translate. Return only the corrected text."
	case ModeTranslate:
		return "You translate the given text. Return only the translation, no commentary."
	default:
		return "You proofread and translate the given text. Respond with a PROOFREAD: section followed by a TRANSLATE: section."
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Process implements LLMProcessor over a chat-completions endpoint,
// retrying transient failures up to MaxRetries times.
func (o *OpenRouterProcessor) Process(ctx context.Context, text string, mode ProcessMode) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: o.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPromptFor(mode)},
			{Role: "user", Content: text},
		},
		Temperature: o.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode llm request: %w", err)
	}

	var lastErr error
	attempts := o.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := o.doRequest(ctx, reqBody)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("llm processor failed after %d attempts: %w", attempts, lastErr)
}

func (o *OpenRouterProcessor) doRequest(ctx context.Context, reqBody []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to build llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.APIKey)
	}

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm provider returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode llm response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// StructuredOutput is the result of parsing a combined
// PROOFREAD:/TRANSLATE: response.
type StructuredOutput struct {
	Proofread string
	Translate string
}

// ParseStructuredOutput implements the fallback parser for single-call
// proofread+translate providers (spec §7 "Structural" error handling):
// if both markers are present, split on them; if only PROOFREAD: is
// present, treat the whole output as proofread-only; otherwise treat
// the whole output as translation-only.
func ParseStructuredOutput(text string) StructuredOutput {
	const proofreadMarker = "PROOFREAD:"
	const translateMarker = "TRANSLATE:"

	proofreadIdx := strings.Index(text, proofreadMarker)
	translateIdx := strings.Index(text, translateMarker)

	switch {
	case proofreadIdx >= 0 && translateIdx > proofreadIdx:
		proofread := strings.TrimSpace(text[proofreadIdx+len(proofreadMarker) : translateIdx])
		translate := strings.TrimSpace(text[translateIdx+len(translateMarker):])
		return StructuredOutput{Proofread: proofread, Translate: translate}
	case proofreadIdx >= 0 && translateIdx < 0:
		return StructuredOutput{Proofread: strings.TrimSpace(text[proofreadIdx+len(proofreadMarker):])}
	default:
		return StructuredOutput{Translate: strings.TrimSpace(text)}
	}
}

// llmStageState is the per-session state for LLM-mode translation
// (spec §4.5.2).
type llmStageState struct {
	accumulated        string
	lastDraftSrc       string
	lastProcessTime    time.Time
	manualTriggered    bool
	emittedProofread   bool
	emittedTranslation bool
}

const (
	minCharsToProcess    = 150
	maxCharsToAccumulate = 400
)

// TriggerManual sets the manual-trigger flag an external actor (e.g. a
// hotkey) uses to force an immediate LLM dispatch.
func (s *Stage) TriggerManual() {
	s.llmMu.Lock()
	s.llm.manualTriggered = true
	s.llmMu.Unlock()
}

func wordCountOf(text string) int {
	return len(strings.Fields(text))
}

// evaluateTriggers returns whether a dispatch should fire right now,
// given the accumulated text and elapsed time since the last dispatch
// and the last confirmed activity.
func (s *Stage) evaluateTriggers(now time.Time) bool {
	st := &s.llm
	hasParagraphBreak := strings.Contains(st.accumulated, "\n\n")

	paragraphTrigger := hasParagraphBreak && len(st.accumulated) >= minCharsToProcess
	capTrigger := len(st.accumulated) >= maxCharsToAccumulate
	manualTrigger := st.manualTriggered

	if paragraphTrigger || capTrigger || manualTrigger {
		return true
	}

	// Automatic time/word/silence triggers are disabled entirely in
	// manual mode (spec §4.5.2, testable property 7).
	if s.cfg.AITrigger == TriggerManual {
		return false
	}

	switch s.cfg.AITrigger {
	case TriggerTime:
		if now.Sub(st.lastProcessTime) >= s.cfg.IntervalSeconds {
			return true
		}
	case TriggerWords:
		if wordCountOf(st.accumulated) >= s.cfg.WordCount {
			return true
		}
	}

	last := time.Unix(0, s.lastActivity.Load())
	if now.Sub(last) >= s.cfg.SilenceTimeout && st.accumulated != "" {
		return true
	}

	return false
}

// dispatchLLM splits accumulated at its last paragraph break (if any),
// runs the configured LLM dispatch over the prefix, and resets
// lastProcessTime. accumulated retains the suffix after the break.
func (s *Stage) dispatchLLM(ctx context.Context, now time.Time) {
	st := &s.llm
	const breakMarker = "\n\n"

	var toProcess string
	hasParagraphBreak := false
	if idx := strings.LastIndex(st.accumulated, breakMarker); idx >= 0 {
		toProcess = st.accumulated[:idx]
		st.accumulated = st.accumulated[idx+len(breakMarker):]
		hasParagraphBreak = true
	} else {
		toProcess = st.accumulated
		st.accumulated = ""
	}

	st.manualTriggered = false
	st.lastProcessTime = now

	if toProcess == "" {
		return
	}

	s.runDispatch(ctx, toProcess, hasParagraphBreak)
}

// runDispatch performs the actual LLM call(s) and emits results. Shared
// by the per-trigger path and the end-of-stream flush.
func (s *Stage) runDispatch(ctx context.Context, toProcess string, hasParagraphBreak bool) {
	st := &s.llm

	if s.cfg.AIMode == ModeProofreadTranslate && s.prResQ != nil {
		proofread, err := s.llmProcessor.Process(ctx, toProcess, ModeProofread)
		if err != nil {
			s.logger.Warning("llm proofread call failed: %v", err)
			proofread = ErrorMarker
		}
		prefix := ""
		if st.emittedProofread {
			prefix = "\n\n"
		}
		s.prResQ.Put(pipelinePair(prefix + proofread))
		st.emittedProofread = true

		translated, err := s.llmProcessor.Process(ctx, proofread, ModeTranslate)
		if err != nil {
			s.logger.Warning("llm translate call failed: %v", err)
			translated = ErrorMarker
		}
		sep := " "
		if hasParagraphBreak {
			sep = "\n\n"
		}
		tprefix := ""
		if st.emittedTranslation {
			tprefix = sep
		}
		s.tlResQ.Put(pipelinePair(tprefix + translated))
		st.emittedTranslation = true
		return
	}

	result, err := s.llmProcessor.Process(ctx, toProcess, s.cfg.AIMode)
	if err != nil {
		s.logger.Warning("llm call failed: %v", err)
		result = ErrorMarker
	}
	if s.cfg.AIMode == ModeProofread && s.prResQ != nil {
		s.prResQ.Put(pipelinePair(result))
		return
	}
	s.tlResQ.Put(pipelinePair(result))
}
