// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AshBuk/streamcast-engine/internal/logger"
	"github.com/AshBuk/streamcast-engine/pipeline"
)

type scriptedProvider struct {
	calls int
	pairs [][]SentencePair
	err   error
}

func (p *scriptedProvider) Translate(ctx context.Context, text, source, target string, timeout time.Duration) ([]SentencePair, error) {
	if text == "" {
		return nil, nil
	}
	if p.err != nil {
		return nil, p.err
	}
	idx := p.calls
	p.calls++
	if idx >= len(p.pairs) {
		idx = len(p.pairs) - 1
	}
	return p.pairs[idx], nil
}

type scriptedLLM struct {
	calls []string
	modes []ProcessMode
}

func (l *scriptedLLM) Process(ctx context.Context, text string, mode ProcessMode) (string, error) {
	l.calls = append(l.calls, text)
	l.modes = append(l.modes, mode)
	return "[" + string(mode) + "]" + text, nil
}

func newTestQueues() (*pipeline.MergeQueue[pipeline.Pair], *pipeline.MergeQueue[pipeline.Pair], *pipeline.MergeQueue[pipeline.Pair]) {
	return pipeline.NewMergeQueue[pipeline.Pair](), pipeline.NewMergeQueue[pipeline.Pair](), pipeline.NewMergeQueue[pipeline.Pair]()
}

// TestStage_HTTPModeReserveTrick reproduces spec S2: two successive
// Pairs arrive; the second HTTP call's single-pair result clears
// reserve and the emitted confirmed_tgt covers both sentences exactly
// once.
func TestStage_HTTPModeReserveTrick(t *testing.T) {
	provider := &scriptedProvider{pairs: [][]SentencePair{
		{
			{Source: "Hello.", Target: "Hola."},
			{Source: "How are", Target: "Como esta"},
		},
		{
			{Source: "How are you?", Target: "Como estas tu?"},
		},
	}}
	ts2tlQ, tlResQ, _ := newTestQueues()
	cfg := Config{Mode: StageModeHTTP, SourceLanguage: "en", TargetLanguage: "es", Timeout: time.Second}
	stage := New(cfg, provider, nil, ts2tlQ, tlResQ, nil, logger.NewDefaultLogger(logger.ErrorLevel))

	go stage.Run()

	ts2tlQ.Put(pipeline.Pair{Confirmed: "Hello.", Draft: "How are"})
	first, isEnd := tlResQ.Get()
	if isEnd {
		t.Fatalf("unexpected sentinel")
	}
	if first.Confirmed != "Hola." {
		t.Errorf("expected first confirmed 'Hola.', got %q", first.Confirmed)
	}
	if stage.http.reserve != "How are" {
		t.Errorf("expected reserve to hold the incomplete sentence, got %q", stage.http.reserve)
	}

	ts2tlQ.Put(pipeline.Pair{Confirmed: " How are you?", Draft: ""})
	second, isEnd := tlResQ.Get()
	if isEnd {
		t.Fatalf("unexpected sentinel")
	}
	if second.Confirmed != "Como estas tu?" {
		t.Errorf("expected second confirmed 'Como estas tu?', got %q", second.Confirmed)
	}
	if stage.http.reserve != "" {
		t.Errorf("expected reserve cleared after single-pair result, got %q", stage.http.reserve)
	}

	ts2tlQ.PutEnd()
	_, isEnd = tlResQ.Get()
	if !isEnd {
		t.Fatalf("expected sentinel after stream end")
	}
}

func TestStage_HTTPModeProviderFailureSubstitutesMarker(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("network down")}
	ts2tlQ, tlResQ, _ := newTestQueues()
	cfg := Config{Mode: StageModeHTTP, SourceLanguage: "en", TargetLanguage: "es", Timeout: time.Second}
	stage := New(cfg, provider, nil, ts2tlQ, tlResQ, nil, logger.NewDefaultLogger(logger.ErrorLevel))

	go stage.Run()
	ts2tlQ.Put(pipeline.Pair{Confirmed: "hello", Draft: ""})

	pair, isEnd := tlResQ.Get()
	if isEnd {
		t.Fatalf("unexpected sentinel")
	}
	if pair.Confirmed != ErrorMarker {
		t.Errorf("expected error marker, got %q", pair.Confirmed)
	}
	ts2tlQ.PutEnd()
	tlResQ.Get()
}

// TestStage_LLMParagraphTrigger reproduces spec S5: below the 150-char
// floor no call occurs; once the paragraph break exists and combined
// length clears 150, exactly one call fires against the pre-break
// prefix, and accumulated retains the suffix.
func TestStage_LLMParagraphTrigger(t *testing.T) {
	llm := &scriptedLLM{}
	ts2tlQ, tlResQ, _ := newTestQueues()
	// A long silence timeout keeps the silence trigger from firing, so
	// only the paragraph trigger is under test.
	cfg := Config{Mode: StageModeLLM, AIMode: ModeTranslate, AITrigger: TriggerDefault, SilenceTimeout: time.Hour}
	stage := New(cfg, nil, llm, ts2tlQ, tlResQ, nil, logger.NewDefaultLogger(logger.ErrorLevel))

	long := ""
	for len(long) < 140 {
		long += "word "
	}

	stage.handleLLMUpdate(context.Background(), pipeline.Pair{Confirmed: long})
	if len(llm.calls) != 0 {
		t.Fatalf("expected no LLM call below the char floor, got %d", len(llm.calls))
	}

	stage.handleLLMUpdate(context.Background(), pipeline.Pair{Confirmed: "\n\nPara two continuing"})
	if len(llm.calls) != 1 {
		t.Fatalf("expected exactly one LLM call once the paragraph break clears the floor, got %d", len(llm.calls))
	}
	if stage.llm.accumulated != "Para two continuing" {
		t.Errorf("expected accumulated to retain the post-break suffix, got %q", stage.llm.accumulated)
	}
}

// TestStage_LLMManualModeDisablesAutomaticTriggers is testable
// property 7: in manual trigger mode, time/word/silence triggers never
// fire; only the manual flag (and paragraph/cap) do.
func TestStage_LLMManualModeDisablesAutomaticTriggers(t *testing.T) {
	llm := &scriptedLLM{}
	ts2tlQ, tlResQ, _ := newTestQueues()
	cfg := Config{
		Mode:            StageModeLLM,
		AIMode:          ModeTranslate,
		AITrigger:       TriggerManual,
		IntervalSeconds: 0, // would fire immediately under a time trigger
		WordCount:       1, // would fire immediately under a word trigger
		SilenceTimeout:  0, // would fire immediately under a silence trigger
	}
	stage := New(cfg, nil, llm, ts2tlQ, tlResQ, nil, logger.NewDefaultLogger(logger.ErrorLevel))

	stage.handleLLMUpdate(context.Background(), pipeline.Pair{Confirmed: "short"})
	if len(llm.calls) != 0 {
		t.Fatalf("expected manual mode to suppress automatic triggers, got %d calls", len(llm.calls))
	}

	stage.TriggerManual()
	stage.handleLLMUpdate(context.Background(), pipeline.Pair{Confirmed: " more"})
	if len(llm.calls) != 1 {
		t.Fatalf("expected the manual trigger to fire exactly one call, got %d", len(llm.calls))
	}
}

func TestStage_LLMProofreadTranslateTwoCallSequence(t *testing.T) {
	llm := &scriptedLLM{}
	ts2tlQ, tlResQ, prResQ := newTestQueues()
	cfg := Config{Mode: StageModeLLM, AIMode: ModeProofreadTranslate, AITrigger: TriggerDefault}
	stage := New(cfg, nil, llm, ts2tlQ, tlResQ, prResQ, logger.NewDefaultLogger(logger.ErrorLevel))

	stage.llm.accumulated = "Para one.\n\nPara two."
	stage.dispatchLLMForTest(context.Background(), time.Now())

	if len(llm.calls) != 2 {
		t.Fatalf("expected two sequential calls (proofread then translate), got %d", len(llm.calls))
	}
	if llm.modes[0] != ModeProofread || llm.modes[1] != ModeTranslate {
		t.Errorf("expected proofread-then-translate order, got %v", llm.modes)
	}
	if llm.calls[0] != "Para one." {
		t.Errorf("expected proofread call over the pre-break prefix, got %q", llm.calls[0])
	}
}

// dispatchLLMForTest exposes dispatchLLM to the test file without
// widening its exported surface.
func (s *Stage) dispatchLLMForTest(ctx context.Context, now time.Time) {
	s.dispatchLLM(ctx, now)
}

// TestStage_AutoStopFiresAfterInactivity reproduces spec.md §6.5: once
// AutoStopAfter has elapsed since the last activity, checkAutoStop
// invokes the registered stop callback exactly once.
func TestStage_AutoStopFiresAfterInactivity(t *testing.T) {
	ts2tlQ, tlResQ, _ := newTestQueues()
	cfg := Config{Mode: StageModeHTTP, AutoStopEnabled: true, AutoStopAfter: time.Millisecond}
	stage := New(cfg, &scriptedProvider{}, nil, ts2tlQ, tlResQ, nil, logger.NewDefaultLogger(logger.ErrorLevel))

	var stops int
	stage.SetStopFn(func() { stops++ })

	past := time.Now().Add(-time.Hour)
	stage.lastActivity.Store(past.UnixNano())

	stage.checkAutoStop(time.Now())
	stage.checkAutoStop(time.Now())
	if stops != 1 {
		t.Fatalf("expected exactly one stop callback invocation, got %d", stops)
	}
}

// TestStage_AutoStopSuppressedByActivity ensures a recent touchActivity
// call resets the inactivity clock so auto-stop does not fire.
func TestStage_AutoStopSuppressedByActivity(t *testing.T) {
	ts2tlQ, tlResQ, _ := newTestQueues()
	cfg := Config{Mode: StageModeHTTP, AutoStopEnabled: true, AutoStopAfter: time.Hour}
	stage := New(cfg, &scriptedProvider{}, nil, ts2tlQ, tlResQ, nil, logger.NewDefaultLogger(logger.ErrorLevel))

	var stops int
	stage.SetStopFn(func() { stops++ })

	stage.touchActivity(time.Now())
	stage.checkAutoStop(time.Now())
	if stops != 0 {
		t.Fatalf("expected no stop callback with recent activity, got %d", stops)
	}
}
