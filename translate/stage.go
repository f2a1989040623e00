// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package translate implements the translation stage: HTTP-provider
// mode with its reserve-last-sentence trick, and LLM-processor mode
// with its configurable trigger rules and two-call proofread+translate
// dispatch. Grounded on original_source/src/core_parts/processing.py's
// tl_proc for the branching logic, and on the teacher's transcribe
// worker loop for the Run/queue-draining idiom.
package translate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AshBuk/streamcast-engine/internal/logger"
	"github.com/AshBuk/streamcast-engine/pipeline"
)

// StageMode selects which of the two mutually exclusive translation
// modes a Stage runs in.
type StageMode string

const (
	StageModeHTTP StageMode = "http"
	StageModeLLM  StageMode = "llm"
)

// Trigger selects which additional automatic trigger (beyond the
// always-active paragraph and cap triggers) fires an LLM dispatch.
type Trigger string

const (
	TriggerTime    Trigger = "time"
	TriggerWords   Trigger = "words"
	TriggerManual  Trigger = "manual"
	TriggerDefault Trigger = "paragraph"
)

// Config configures a Stage.
type Config struct {
	Mode StageMode

	// HTTP mode.
	SourceLanguage string
	TargetLanguage string
	Timeout        time.Duration

	// LLM mode.
	AIMode          ProcessMode
	AITrigger       Trigger
	IntervalSeconds time.Duration
	WordCount       int
	SilenceTimeout  time.Duration

	// Auto-stop (spec.md §6.5): when AutoStopEnabled, the stage signals
	// its stop callback after AutoStopAfter has elapsed with no
	// confirmed or draft activity in either mode.
	AutoStopEnabled bool
	AutoStopAfter   time.Duration
}

// autoStopPollInterval is how often Run re-evaluates elapsed-since-
// last-activity against AutoStopAfter (and, in LLM mode, re-evaluates
// the time/words/silence triggers) independent of new Pair arrivals,
// so a stalled frame stream doesn't delay either check indefinitely.
const autoStopPollInterval = 5 * time.Second

// Stage is the translation pipeline stage (spec §4.5). It consumes
// Pair updates from ts2tlQ and emits translated Pairs to tlResQ, and in
// proofread+translate LLM mode, proofread-only text to prResQ.
type Stage struct {
	cfg          Config
	provider     Provider
	llmProcessor LLMProcessor
	logger       logger.Logger

	ts2tlQ *pipeline.MergeQueue[pipeline.Pair]
	tlResQ *pipeline.MergeQueue[pipeline.Pair]
	prResQ *pipeline.MergeQueue[pipeline.Pair]

	http httpStageState

	llmMu sync.Mutex
	llm   llmStageState

	// lastActivity is a unix-nano timestamp, updated by both HTTP and
	// LLM mode on every Pair carrying confirmed or draft text, so
	// auto-stop tracks session inactivity rather than LLM-dispatch
	// inactivity.
	lastActivity atomic.Int64

	stopOnce sync.Once
	stopFn   func()
}

// New constructs a Stage. provider is used in HTTP mode; llmProcessor
// is used in LLM mode; prResQ may be nil when no proofread-output queue
// is configured.
func New(cfg Config, provider Provider, llmProcessor LLMProcessor, ts2tlQ, tlResQ, prResQ *pipeline.MergeQueue[pipeline.Pair], log logger.Logger) *Stage {
	now := time.Time{}
	s := &Stage{
		cfg:          cfg,
		provider:     provider,
		llmProcessor: llmProcessor,
		logger:       log,
		ts2tlQ:       ts2tlQ,
		tlResQ:       tlResQ,
		prResQ:       prResQ,
		llm: llmStageState{
			lastProcessTime: now,
		},
	}
	s.lastActivity.Store(time.Now().UnixNano())
	return s
}

// SetStopFn registers the callback Run invokes at most once when
// auto-stop fires. Typically the owning supervisor's Stop method.
func (s *Stage) SetStopFn(stop func()) {
	s.stopFn = stop
}

func (s *Stage) touchActivity(now time.Time) {
	s.lastActivity.Store(now.UnixNano())
}

// checkAutoStop signals stopFn, at most once, once AutoStopAfter has
// elapsed since the last confirmed or draft activity (spec.md §6.5).
func (s *Stage) checkAutoStop(now time.Time) {
	if !s.cfg.AutoStopEnabled || s.stopFn == nil {
		return
	}
	last := time.Unix(0, s.lastActivity.Load())
	if now.Sub(last) < s.cfg.AutoStopAfter {
		return
	}
	s.stopOnce.Do(func() {
		s.logger.Info("auto-stop: no activity for %s, stopping session", s.cfg.AutoStopAfter)
		s.stopFn()
	})
}

// pipelinePair wraps confirmed text alone into a Pair, the shape
// LLM-mode results take (LLM mode has no streaming draft of its own;
// the translation draft concept belongs to HTTP mode only).
func pipelinePair(confirmed string) pipeline.Pair {
	return pipeline.Pair{Confirmed: confirmed}
}

// queueUpdate carries a single ts2tlQ.Get() result across to Run's
// select loop so it can be interleaved with a ticker.
type queueUpdate struct {
	pair  pipeline.Pair
	isEnd bool
}

// Run implements pipeline.Runner. It drains ts2tlQ until the
// end-of-stream sentinel, dispatching each update per the configured
// mode, then propagates the sentinel downstream exactly once.
//
// ts2tlQ.Get blocks on a sync.Cond and so cannot be select-ed directly
// against a ticker; a forwarding goroutine bridges it onto a channel
// so periodic auto-stop and LLM trigger re-evaluation (spec.md §6.5)
// run even while the frame stream is stalled, not only when a new Pair
// arrives.
func (s *Stage) Run() {
	ctx := context.Background()

	updates := make(chan queueUpdate)
	go func() {
		for {
			pair, isEnd := s.ts2tlQ.Get()
			updates <- queueUpdate{pair: pair, isEnd: isEnd}
			if isEnd {
				return
			}
		}
	}()

	ticker := time.NewTicker(autoStopPollInterval)
	defer ticker.Stop()

	for {
		select {
		case u := <-updates:
			if u.isEnd {
				if s.cfg.Mode == StageModeLLM {
					s.flushLLM(ctx)
				}
				s.tlResQ.PutEnd()
				if s.prResQ != nil {
					s.prResQ.PutEnd()
				}
				return
			}

			switch s.cfg.Mode {
			case StageModeLLM:
				s.handleLLMUpdate(ctx, u.pair)
			default:
				if u.pair.Confirmed != "" || u.pair.Draft != "" {
					s.touchActivity(time.Now())
				}
				result := s.processHTTPUpdate(ctx, u.pair.Confirmed, u.pair.Draft)
				s.tlResQ.Put(result)
			}

		case now := <-ticker.C:
			s.checkAutoStop(now)
			if s.cfg.Mode == StageModeLLM {
				s.pollLLMTriggers(ctx, now)
			}
		}
	}
}

// handleLLMUpdate accumulates a Pair's confirmed text and evaluates
// triggers, dispatching when one fires (spec §4.5.2).
func (s *Stage) handleLLMUpdate(ctx context.Context, pair pipeline.Pair) {
	now := time.Now()

	s.llmMu.Lock()
	if pair.Confirmed != "" {
		s.llm.accumulated += pair.Confirmed
	}
	s.llm.lastDraftSrc = pair.Draft
	if pair.Confirmed != "" || pair.Draft != "" {
		s.touchActivity(now)
	}
	if s.llm.lastProcessTime.IsZero() {
		s.llm.lastProcessTime = now
	}
	fire := s.evaluateTriggers(now)
	s.llmMu.Unlock()

	if fire {
		s.llmMu.Lock()
		s.dispatchLLM(ctx, now)
		s.llmMu.Unlock()
	}
}

// pollLLMTriggers re-evaluates time/words/silence triggers on the
// ticker, independent of a new Pair arriving, so a stalled frame stream
// doesn't indefinitely delay a trigger that has already elapsed.
func (s *Stage) pollLLMTriggers(ctx context.Context, now time.Time) {
	s.llmMu.Lock()
	if s.llm.accumulated == "" {
		s.llmMu.Unlock()
		return
	}
	fire := s.evaluateTriggers(now)
	if fire {
		s.dispatchLLM(ctx, now)
	}
	s.llmMu.Unlock()
}

// flushLLM runs the end-of-stream flush: remaining accumulated text
// plus the latest draft, dispatched once through the same logic.
func (s *Stage) flushLLM(ctx context.Context) {
	s.llmMu.Lock()
	defer s.llmMu.Unlock()

	toProcess := s.llm.accumulated + s.llm.lastDraftSrc
	s.llm.accumulated = ""
	s.llm.lastDraftSrc = ""
	if toProcess == "" {
		return
	}
	hasParagraphBreak := false
	if idx := lastIndexDoubleNewline(toProcess); idx >= 0 {
		hasParagraphBreak = true
	}
	s.runDispatch(ctx, toProcess, hasParagraphBreak)
}

func lastIndexDoubleNewline(text string) int {
	for i := len(text) - 2; i >= 0; i-- {
		if text[i] == '\n' && text[i+1] == '\n' {
			return i
		}
	}
	return -1
}
