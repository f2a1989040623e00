// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package app

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/AshBuk/streamcast-engine/audio"
	"github.com/AshBuk/streamcast-engine/config"
	"github.com/AshBuk/streamcast-engine/internal/logger"
	"github.com/AshBuk/streamcast-engine/internal/utils"
	"github.com/AshBuk/streamcast-engine/paragraph"
	"github.com/AshBuk/streamcast-engine/pipeline"
	"github.com/AshBuk/streamcast-engine/transcribe"
	"github.com/AshBuk/streamcast-engine/translate"
)

// newQueues allocates the five merging queues the three stages share
// (spec.md §2's `mic → FrameQ → Transcribe → (TsResQ + Ts2TlQ) →
// Translate → (TlResQ [+ PrResQ])` data flow).
func newQueues() (frameQ *pipeline.MergeQueue[pipeline.AudioFrame], tsResQ, ts2tlQ, tlResQ, prResQ *pipeline.MergeQueue[pipeline.Pair]) {
	frameQ = pipeline.NewMergeQueue[pipeline.AudioFrame]()
	tsResQ = pipeline.NewMergeQueue[pipeline.Pair]()
	ts2tlQ = pipeline.NewMergeQueue[pipeline.Pair]()
	tlResQ = pipeline.NewMergeQueue[pipeline.Pair]()
	prResQ = pipeline.NewMergeQueue[pipeline.Pair]()
	return frameQ, tsResQ, ts2tlQ, tlResQ, prResQ
}

// transcribeConfig maps the configuration's transcription and
// paragraph-detection options onto transcribe.Config.
func transcribeConfig(cfg *config.Config) transcribe.Config {
	tc := transcribe.Config{
		SampleRate:     16000,
		Patience:       cfg.Transcription.Patience,
		MemorySegments: cfg.Transcription.MemorySegments,
		Language:       cfg.Transcription.Language,
		VADFilter:      cfg.Audio.EnableVAD,
	}
	if cfg.Paragraph.Enabled {
		pc := paragraph.Config{
			ThresholdStd:    cfg.Paragraph.ThresholdStd,
			MinPause:        cfg.Paragraph.MinPause,
			MaxChars:        cfg.Paragraph.MaxChars,
			MaxWords:        cfg.Paragraph.MaxWords,
			WindowSize:      cfg.Paragraph.WindowSize,
			WarmupCount:     cfg.Paragraph.WarmupCount,
			WarmupThreshold: cfg.Paragraph.WarmupThreshold,
		}
		tc.ParagraphConfig = &pc
	}
	return tc
}

// translateConfig maps the configuration's translation and AI options
// onto translate.Config.
func translateConfig(cfg *config.Config) translate.Config {
	tc := translate.Config{
		SourceLanguage: cfg.Translation.SourceLanguage,
		TargetLanguage: cfg.Translation.TargetLanguage,
		Timeout:        time.Duration(cfg.Translation.TimeoutSeconds) * time.Second,
	}
	if cfg.Translation.Mode == config.TranslationModeLLM || cfg.Translation.AI.Enabled {
		tc.Mode = translate.StageModeLLM
		tc.AIMode = llmProcessMode(cfg.Translation.AI.Mode)
		tc.AITrigger = llmTrigger(cfg.Translation.AI.Trigger)
		tc.IntervalSeconds = time.Duration(cfg.Translation.AI.IntervalSec * float64(time.Second))
		tc.WordCount = cfg.Translation.AI.WordCount
		tc.SilenceTimeout = time.Duration(cfg.Translation.AI.SilenceTimeout * float64(time.Second))
	} else {
		tc.Mode = translate.StageModeHTTP
	}
	tc.AutoStopEnabled = cfg.AutoStop.Enabled
	tc.AutoStopAfter = time.Duration(cfg.AutoStop.Minutes * float64(time.Minute))
	return tc
}

func llmProcessMode(mode string) translate.ProcessMode {
	switch mode {
	case config.AIModeProofread:
		return translate.ModeProofread
	case config.AIModeProofreadTranslate:
		return translate.ModeProofreadTranslate
	default:
		return translate.ModeTranslate
	}
}

func llmTrigger(trigger string) translate.Trigger {
	switch trigger {
	case config.AITriggerTime:
		return translate.TriggerTime
	case config.AITriggerWords:
		return translate.TriggerWords
	case config.AITriggerManual:
		return translate.TriggerManual
	default:
		return translate.TriggerDefault
	}
}

// buildTranslateStage constructs the translation stage eagerly: unlike
// the transcription oracle, neither the HTTP provider nor the LLM
// processor do any expensive work at construction time, so there is no
// reason to defer this into the supervisor's build goroutine. It
// returns the constructed stage and the prResQ actually wired into it
// (nil unless LLM proofread+translate mode is active), so the caller
// can decide whether the websocket server has a proofread queue to
// broadcast.
func buildTranslateStage(cfg *config.Config, ts2tlQ, tlResQ, prResQ *pipeline.MergeQueue[pipeline.Pair], log logger.Logger) (*translate.Stage, *pipeline.MergeQueue[pipeline.Pair]) {
	tc := translateConfig(cfg)

	var provider translate.Provider
	var llmProcessor translate.LLMProcessor
	if tc.Mode == translate.StageModeLLM {
		apiKey := os.Getenv(cfg.Translation.AI.APIKeyEnv)
		llmProcessor = translate.NewOpenRouterProcessor(
			cfg.Translation.AI.BaseURL,
			apiKey,
			cfg.Translation.AI.Model,
			cfg.Translation.AI.Temperature,
			cfg.Translation.AI.MaxRetries,
		)
		if tc.AIMode != translate.ModeProofreadTranslate {
			prResQ = nil
		}
	} else {
		provider = translate.NewHTTPProvider(cfg.Translation.ProviderURL)
		prResQ = nil
	}

	return translate.New(tc, provider, llmProcessor, ts2tlQ, tlResQ, prResQ, log), prResQ
}

// buildPipeline returns the pipeline.Builder the supervisor runs on its
// construction goroutine. Only the transcription oracle's model load is
// expensive; capture and translate are constructed synchronously by the
// caller and simply threaded through.
func buildPipeline(
	cfg *config.Config,
	frameQ *pipeline.MergeQueue[pipeline.AudioFrame],
	tsResQ, ts2tlQ *pipeline.MergeQueue[pipeline.Pair],
	translateStage *translate.Stage,
	log logger.Logger,
	onRecordError, onTranscribeError func(error),
) pipeline.Builder {
	return func(running *atomic.Bool) (capture, transcribeStage, translateRunner pipeline.Runner, err error) {
		captureStage := audio.New(cfg, running, frameQ, log, onRecordError)

		if err := utils.CheckDiskSpace(cfg.Transcription.ModelPath); err != nil {
			log.Warning("disk space check failed: %v", err)
		}

		oracle, err := transcribe.NewWhisperOracle(cfg.Transcription.ModelPath, cfg.Transcription.Device)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load transcription model: %w", err)
		}

		ts := transcribe.New(transcribeConfig(cfg), oracle, frameQ, tsResQ, ts2tlQ, log, onTranscribeError)

		return captureStage, ts, translateStage, nil
	}
}
