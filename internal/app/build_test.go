// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package app

import (
	"testing"
	"time"

	"github.com/AshBuk/streamcast-engine/config"
	"github.com/AshBuk/streamcast-engine/pipeline"
	"github.com/AshBuk/streamcast-engine/translate"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	config.SetDefaultConfig(cfg)
	return cfg
}

func TestTranscribeConfig_ParagraphDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Paragraph.Enabled = false

	tc := transcribeConfig(cfg)
	if tc.ParagraphConfig != nil {
		t.Error("expected ParagraphConfig to be nil when paragraph detection is disabled")
	}
	if tc.SampleRate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", tc.SampleRate)
	}
}

func TestTranscribeConfig_ParagraphEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Paragraph.Enabled = true
	cfg.Paragraph.ThresholdStd = 2.0

	tc := transcribeConfig(cfg)
	if tc.ParagraphConfig == nil {
		t.Fatal("expected ParagraphConfig to be set")
	}
	if tc.ParagraphConfig.ThresholdStd != 2.0 {
		t.Errorf("expected threshold 2.0, got %v", tc.ParagraphConfig.ThresholdStd)
	}
}

func TestTranslateConfig_HTTPMode(t *testing.T) {
	cfg := testConfig()
	cfg.Translation.Mode = config.TranslationModeHTTP
	cfg.Translation.AI.Enabled = false

	tc := translateConfig(cfg)
	if tc.Mode != translate.StageModeHTTP {
		t.Errorf("expected HTTP mode, got %v", tc.Mode)
	}
}

func TestTranslateConfig_LLMMode(t *testing.T) {
	cfg := testConfig()
	cfg.Translation.Mode = config.TranslationModeLLM
	cfg.Translation.AI.Enabled = true
	cfg.Translation.AI.Mode = config.AIModeProofreadTranslate
	cfg.Translation.AI.Trigger = config.AITriggerWords
	cfg.Translation.AI.WordCount = 42

	tc := translateConfig(cfg)
	if tc.Mode != translate.StageModeLLM {
		t.Errorf("expected LLM mode, got %v", tc.Mode)
	}
	if tc.AIMode != translate.ModeProofreadTranslate {
		t.Errorf("expected proofread+translate mode, got %v", tc.AIMode)
	}
	if tc.AITrigger != translate.TriggerWords {
		t.Errorf("expected words trigger, got %v", tc.AITrigger)
	}
	if tc.WordCount != 42 {
		t.Errorf("expected word count 42, got %d", tc.WordCount)
	}
}

func TestLLMProcessMode(t *testing.T) {
	tests := []struct {
		in   string
		want translate.ProcessMode
	}{
		{config.AIModeProofread, translate.ModeProofread},
		{config.AIModeProofreadTranslate, translate.ModeProofreadTranslate},
		{config.AIModeTranslate, translate.ModeTranslate},
		{"unknown", translate.ModeTranslate},
	}
	for _, tt := range tests {
		if got := llmProcessMode(tt.in); got != tt.want {
			t.Errorf("llmProcessMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLLMTrigger(t *testing.T) {
	tests := []struct {
		in   string
		want translate.Trigger
	}{
		{config.AITriggerTime, translate.TriggerTime},
		{config.AITriggerWords, translate.TriggerWords},
		{config.AITriggerManual, translate.TriggerManual},
		{config.AITriggerParagraph, translate.TriggerDefault},
		{"unknown", translate.TriggerDefault},
	}
	for _, tt := range tests {
		if got := llmTrigger(tt.in); got != tt.want {
			t.Errorf("llmTrigger(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildTranslateStage_HTTPModeDropsProofreadQueue(t *testing.T) {
	cfg := testConfig()
	cfg.Translation.Mode = config.TranslationModeHTTP
	cfg.Translation.AI.Enabled = false

	ts2tlQ := pipeline.NewMergeQueue[pipeline.Pair]()
	tlResQ := pipeline.NewMergeQueue[pipeline.Pair]()
	prResQ := pipeline.NewMergeQueue[pipeline.Pair]()

	stage, gotPrResQ := buildTranslateStage(cfg, ts2tlQ, tlResQ, prResQ, nil)
	if stage == nil {
		t.Fatal("expected a non-nil stage")
	}
	if gotPrResQ != nil {
		t.Error("expected proofread queue to be dropped in HTTP mode")
	}
}

func TestBuildTranslateStage_ProofreadTranslateKeepsQueue(t *testing.T) {
	cfg := testConfig()
	cfg.Translation.Mode = config.TranslationModeLLM
	cfg.Translation.AI.Enabled = true
	cfg.Translation.AI.Mode = config.AIModeProofreadTranslate

	ts2tlQ := pipeline.NewMergeQueue[pipeline.Pair]()
	tlResQ := pipeline.NewMergeQueue[pipeline.Pair]()
	prResQ := pipeline.NewMergeQueue[pipeline.Pair]()

	stage, gotPrResQ := buildTranslateStage(cfg, ts2tlQ, tlResQ, prResQ, nil)
	if stage == nil {
		t.Fatal("expected a non-nil stage")
	}
	if gotPrResQ == nil {
		t.Error("expected proofread queue to be kept in proofread+translate mode")
	}
}

func TestTranslateConfig_TimeoutConversion(t *testing.T) {
	cfg := testConfig()
	cfg.Translation.TimeoutSeconds = 7

	tc := translateConfig(cfg)
	if tc.Timeout != 7*time.Second {
		t.Errorf("expected 7s timeout, got %v", tc.Timeout)
	}
}
