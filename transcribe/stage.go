// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transcribe

import (
	"context"
	"math"
	"strings"

	"github.com/AshBuk/streamcast-engine/internal/logger"
	"github.com/AshBuk/streamcast-engine/paragraph"
	"github.com/AshBuk/streamcast-engine/pipeline"
)

// Config parameterises the sliding-window algorithm (spec §4.3 and the
// engine's `model`/`device`/`vad`/`memory`/`patience` configuration
// options).
type Config struct {
	SampleRate      int     // samples per second, 16000 for the default oracle
	Patience        float64 // seconds of tail retained as draft
	MemorySegments  int     // bounded prompt deque capacity
	Language        string  // "auto" or a language code
	VADFilter       bool
	ParagraphConfig *paragraph.Config // nil disables paragraph detection
}

// Stage owns the growing audio window, the prompt memory, and the
// cumulative offset, and drives the oracle on every inbound frame. It
// implements pipeline.Runner.
type Stage struct {
	cfg    Config
	oracle Oracle
	logger logger.Logger

	frameQueue *pipeline.MergeQueue[pipeline.AudioFrame]
	tsResQ     *pipeline.MergeQueue[pipeline.Pair]
	ts2tlQ     *pipeline.MergeQueue[pipeline.Pair]

	onError func(error)

	// state
	window           []int16
	prompts          []string
	cumulativeOffset float64
	detector         *paragraph.Detector
}

// New constructs a transcription stage wired to the given queues.
// onError is invoked once on a fatal oracle failure, after which the
// stage posts the end-of-stream sentinel to both outbound queues and
// returns.
func New(
	cfg Config,
	oracle Oracle,
	frameQueue *pipeline.MergeQueue[pipeline.AudioFrame],
	tsResQ, ts2tlQ *pipeline.MergeQueue[pipeline.Pair],
	log logger.Logger,
	onError func(error),
) *Stage {
	var detector *paragraph.Detector
	if cfg.ParagraphConfig != nil {
		detector = paragraph.New(*cfg.ParagraphConfig)
	}
	if log == nil {
		log = logger.NewDefaultLogger(logger.WarningLevel)
	}
	return &Stage{
		cfg:        cfg,
		oracle:     oracle,
		logger:     log,
		frameQueue: frameQueue,
		tsResQ:     tsResQ,
		ts2tlQ:     ts2tlQ,
		onError:    onError,
		detector:   detector,
	}
}

// Run implements pipeline.Runner: it blocks reading frames until the
// frame queue yields the end-of-stream sentinel or the oracle fails.
func (s *Stage) Run() {
	ctx := context.Background()
	for {
		frame, isEnd := s.frameQueue.Get()
		if isEnd {
			s.tsResQ.PutEnd()
			s.ts2tlQ.PutEnd()
			return
		}

		pair, err := s.processFrame(ctx, frame)
		if err != nil {
			s.logger.Error("transcription oracle failed: %v", err)
			if s.onError != nil {
				s.onError(err)
			}
			s.tsResQ.PutEnd()
			s.ts2tlQ.PutEnd()
			return
		}

		s.tsResQ.Put(pair)
		s.ts2tlQ.Put(pair)
	}
}

// processFrame runs one iteration of the algorithm in spec §4.3 steps 1-8.
func (s *Stage) processFrame(ctx context.Context, frame pipeline.AudioFrame) (pipeline.Pair, error) {
	// 1. Append frame to window.
	s.window = append(s.window, frame.PCM...)

	// 2. Invoke the oracle over the entire current window.
	prompt := strings.Join(s.prompts, " ")
	segments, err := s.oracle.Transcribe(ctx, s.window, prompt, s.cfg.Language, s.cfg.VADFilter)
	if err != nil {
		return pipeline.Pair{}, err
	}

	// 3. Compute the confirm/draft boundary.
	windowSeconds := float64(len(s.window)) / float64(s.cfg.SampleRate)
	boundary := math.Max(windowSeconds-s.cfg.Patience, 0)

	split := len(segments)
	for i, seg := range segments {
		if seg.End >= boundary {
			split = i
			if seg.Start < boundary {
				boundary = seg.Start
			}
			break
		}
	}

	// 4. Partition into confirmed/draft text.
	confirmedSegments := segments[:split]
	draftSegments := segments[split:]

	var draftBuilder strings.Builder
	for _, seg := range draftSegments {
		draftBuilder.WriteString(seg.Text)
	}

	confirmedText := s.confirmedText(confirmedSegments)

	// 5. Extend prompt memory with the confirmed segment texts.
	for _, seg := range confirmedSegments {
		s.prompts = append(s.prompts, seg.Text)
	}
	if over := len(s.prompts) - s.cfg.MemorySegments; s.cfg.MemorySegments > 0 && over > 0 {
		s.prompts = s.prompts[over:]
	}

	// 6. Advance cumulative offset before trimming.
	s.cumulativeOffset += boundary

	// 7. Trim the confirmed prefix from the window.
	trimSamples := int(math.Floor(boundary * float64(s.cfg.SampleRate)))
	if trimSamples > len(s.window) {
		trimSamples = len(s.window)
	}
	if trimSamples > 0 {
		s.window = append([]int16(nil), s.window[trimSamples:]...)
	}

	// 8. Emit the Pair.
	return pipeline.Pair{Confirmed: confirmedText, Draft: draftBuilder.String()}, nil
}

// confirmedText runs the confirmed segments through the paragraph
// detector (if enabled) so paragraph breaks appear in the text the
// translation stage's LLM-mode trigger inspects; otherwise it is a
// plain concatenation.
func (s *Stage) confirmedText(segments []Segment) string {
	if s.detector == nil {
		var b strings.Builder
		for _, seg := range segments {
			b.WriteString(seg.Text)
		}
		return b.String()
	}

	paraSegs := make([]paragraph.Segment, len(segments))
	for i, seg := range segments {
		paraSegs[i] = paragraph.Segment{Text: seg.Text, Start: seg.Start, End: seg.End}
	}
	// cumulativeOffset has not yet been advanced by this call's boundary
	// (step 6 happens after this), so it reflects audio trimmed by all
	// prior frames, which is exactly the offset these segments' start/end
	// values (still window-relative to the pre-trim window) need.
	return s.detector.Process(paraSegs, s.cumulativeOffset)
}
