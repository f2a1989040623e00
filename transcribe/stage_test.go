// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transcribe

import (
	"context"
	"errors"
	"testing"

	"github.com/AshBuk/streamcast-engine/pipeline"
)

// scriptedOracle returns a pre-programmed sequence of segment sets, one
// per call, so tests can exercise the boundary algorithm deterministically.
type scriptedOracle struct {
	calls    int
	segments [][]Segment
	err      error
}

func (o *scriptedOracle) Transcribe(ctx context.Context, pcm []int16, prompt, language string, vad bool) ([]Segment, error) {
	if o.err != nil {
		return nil, o.err
	}
	idx := o.calls
	o.calls++
	if idx >= len(o.segments) {
		idx = len(o.segments) - 1
	}
	return o.segments[idx], nil
}

func newTestStage(oracle Oracle, cfg Config) (*Stage, *pipeline.MergeQueue[pipeline.AudioFrame], *pipeline.MergeQueue[pipeline.Pair], *pipeline.MergeQueue[pipeline.Pair]) {
	frameQ := pipeline.NewMergeQueue[pipeline.AudioFrame]()
	tsResQ := pipeline.NewMergeQueue[pipeline.Pair]()
	ts2tlQ := pipeline.NewMergeQueue[pipeline.Pair]()
	stage := New(cfg, oracle, frameQ, tsResQ, ts2tlQ, nil, nil)
	return stage, frameQ, tsResQ, ts2tlQ
}

func TestStage_PartitionsConfirmedAndDraftAtBoundary(t *testing.T) {
	// Window will be 3 seconds long (48000 samples @ 16kHz); patience=1s
	// puts the boundary at 2.0s, which the second segment [1.0,2.5]
	// crosses.
	oracle := &scriptedOracle{segments: [][]Segment{
		{
			{Text: "hello ", Start: 0.0, End: 1.0},
			{Text: "world", Start: 1.0, End: 2.5},
		},
	}}
	cfg := Config{SampleRate: 16000, Patience: 1.0, MemorySegments: 5, Language: "auto"}
	stage, frameQ, tsResQ, _ := newTestStage(oracle, cfg)

	go stage.Run()

	frameQ.Put(pipeline.AudioFrame{PCM: make([]int16, 16000*3)}) // 3s window
	frameQ.PutEnd()

	pair, isEnd := tsResQ.Get()
	if isEnd {
		t.Fatalf("expected a Pair before the sentinel")
	}
	// boundary = 3 - 1 = 2.0; first segment with end>=2.0 is "world"
	// (end=2.5), whose start=1.0 < 2.0, so boundary pulls back to 1.0.
	// confirmed = segments before split index 1 = ["hello "], draft = ["world"].
	if pair.Confirmed != "hello " {
		t.Errorf("expected confirmed 'hello ', got %q", pair.Confirmed)
	}
	if pair.Draft != "world" {
		t.Errorf("expected draft 'world', got %q", pair.Draft)
	}

	_, isEnd = tsResQ.Get()
	if !isEnd {
		t.Fatalf("expected end-of-stream sentinel after frame queue closes")
	}
}

func TestStage_OffsetConsistency(t *testing.T) {
	oracle := &scriptedOracle{segments: [][]Segment{
		{{Text: "a", Start: 0.0, End: 0.5}},
	}}
	cfg := Config{SampleRate: 16000, Patience: 0, MemorySegments: 5}
	stage, frameQ, tsResQ, _ := newTestStage(oracle, cfg)

	go stage.Run()
	frameQ.Put(pipeline.AudioFrame{PCM: make([]int16, 16000)}) // 1s
	frameQ.PutEnd()

	_, _ = tsResQ.Get()
	_, _ = tsResQ.Get() // drain the sentinel

	// With patience 0, boundary = windowSeconds = 1.0, and the only
	// segment ends at 0.5 < 1.0 so split=1 (all confirmed), boundary
	// stays at 1.0 (no pull-back since no segment crosses it).
	if stage.cumulativeOffset != 1.0 {
		t.Errorf("expected cumulative offset 1.0, got %f", stage.cumulativeOffset)
	}
	if len(stage.window) != 0 {
		t.Errorf("expected window fully trimmed, got %d samples remaining", len(stage.window))
	}
}

func TestStage_OracleFailurePostsSentinelToBothQueues(t *testing.T) {
	oracle := &scriptedOracle{err: errors.New("boom")}
	cfg := Config{SampleRate: 16000, Patience: 1.0, MemorySegments: 5}

	var gotErr error
	frameQ := pipeline.NewMergeQueue[pipeline.AudioFrame]()
	tsResQ := pipeline.NewMergeQueue[pipeline.Pair]()
	ts2tlQ := pipeline.NewMergeQueue[pipeline.Pair]()
	stage := New(cfg, oracle, frameQ, tsResQ, ts2tlQ, nil, func(err error) { gotErr = err })

	go stage.Run()
	frameQ.Put(pipeline.AudioFrame{PCM: make([]int16, 16000)})

	_, isEnd := tsResQ.Get()
	if !isEnd {
		t.Fatalf("expected sentinel on TS result queue after oracle failure")
	}
	_, isEnd = ts2tlQ.Get()
	if !isEnd {
		t.Fatalf("expected sentinel on TS->TL queue after oracle failure")
	}
	if gotErr == nil {
		t.Errorf("expected onError callback to fire")
	}
}

func TestStage_PromptMemoryBounded(t *testing.T) {
	oracle := &scriptedOracle{segments: [][]Segment{
		{{Text: "one", Start: 0, End: 0.005}},
	}}
	cfg := Config{SampleRate: 16000, Patience: 0, MemorySegments: 2}
	stage, frameQ, tsResQ, _ := newTestStage(oracle, cfg)

	go stage.Run()
	for i := 0; i < 3; i++ {
		// Each 160-sample frame is a 0.01s window; the segment ends at
		// 0.005s, before the boundary, so every frame confirms one prompt.
		oracle.segments = append(oracle.segments, []Segment{{Text: "one", Start: 0, End: 0.005}})
		frameQ.Put(pipeline.AudioFrame{PCM: make([]int16, 160)})
		tsResQ.Get()
	}
	frameQ.PutEnd()
	tsResQ.Get()

	if len(stage.prompts) > 2 {
		t.Errorf("expected prompt memory bounded to 2 entries, got %d", len(stage.prompts))
	}
}
