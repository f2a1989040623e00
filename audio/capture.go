// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package audio implements the capture stage (spec.md §4.2): it spawns
// a recording process, reads raw PCM off its stdout, downmixes and
// resamples to mono 16 kHz, and posts fixed-duration frames to the
// frame queue. Grounded on audio/recorders/base_recorder.go's exec.Cmd
// lifecycle (graceful SIGTERM/SIGKILL escalation, stderr capture,
// command allow-listing) adapted from file-output recording to
// continuous stdout streaming.
package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/AshBuk/streamcast-engine/config"
	"github.com/AshBuk/streamcast-engine/internal/logger"
	"github.com/AshBuk/streamcast-engine/pipeline"
)

// State is the capture stage's lifecycle state (spec.md §4.2).
type State int32

const (
	Idle State = iota
	Open
	Producing
	Closed
)

const targetSampleRate = 16000

// Stage is the audio capture pipeline.Runner.
type Stage struct {
	cfg        *config.Config
	running    *atomic.Bool
	frameQueue *pipeline.MergeQueue[pipeline.AudioFrame]
	logger     logger.Logger
	onError    func(error)

	state     atomic.Int32
	level     atomic.Int32 // 0-100 RMS meter
	closeOnce sync.Once

	mu     sync.Mutex
	cmd    *exec.Cmd
	exited chan struct{}
}

// New constructs a capture Stage. running is the supervisor's shared
// flag; the Producing loop exits when it is cleared.
func New(cfg *config.Config, running *atomic.Bool, frameQueue *pipeline.MergeQueue[pipeline.AudioFrame], log logger.Logger, onError func(error)) *Stage {
	return &Stage{
		cfg:        cfg,
		running:    running,
		frameQueue: frameQueue,
		logger:     log,
		onError:    onError,
	}
}

// State returns the stage's current lifecycle state.
func (s *Stage) State() State {
	return State(s.state.Load())
}

// Level returns the current 0-100 RMS meter reading for UI display.
func (s *Stage) Level() int {
	return int(s.level.Load())
}

// Run implements pipeline.Runner (spec.md §4.2's Idle→Open→Producing→Closed
// state machine).
func (s *Stage) Run() {
	s.state.Store(int32(Open))

	stdout, err := s.start()
	if err != nil {
		s.logger.Error("audio capture failed to start: %v", err)
		s.fail(err)
		return
	}

	dump, err := newDebugDumpWriter(s.cfg.General.TempAudioPath, targetSampleRate)
	if err != nil {
		s.logger.Warning("failed to open capture debug dump: %v", err)
	}
	defer dump.close()

	s.state.Store(int32(Producing))
	err = s.produce(stdout, dump)

	s.mu.Lock()
	cmd := s.cmd
	s.mu.Unlock()
	if cmd != nil {
		_ = s.stopProcess()
	}

	s.state.Store(int32(Closed))
	if err != nil && err != io.EOF {
		s.logger.Error("audio capture terminated with error: %v", err)
		if s.onError != nil {
			s.onError(err)
		}
	}
	s.closeOnce.Do(func() { s.frameQueue.PutEnd() })
}

// start builds and launches the configured recording process, returning
// its stdout pipe.
func (s *Stage) start() (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmdName, args := s.buildCommand()
	if !config.IsCommandAllowed(s.cfg, cmdName) {
		return nil, fmt.Errorf("command not allowed: %s", cmdName)
	}
	safeArgs := config.SanitizeCommandArgs(args)

	// cmdName is allowlisted and safeArgs are sanitized above.
	// #nosec G204 -- allowlisted cmdName and sanitized args mitigate command injection.
	cmd := exec.Command(cmdName, safeArgs...)
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmdName, err)
	}
	s.cmd = cmd
	exited := make(chan struct{})
	s.exited = exited

	// Reap exactly here; stopProcess only signals and waits on exited so
	// cmd.Wait is never called from two goroutines.
	go func() {
		werr := cmd.Wait()
		if stderrBuf.Len() > 0 {
			s.logger.Debug("%s stderr: %s", cmdName, stderrBuf.String())
		}
		if werr != nil {
			s.logger.Debug("%s exited: %v", cmdName, werr)
		}
		close(exited)
	}()

	return stdout, nil
}

// buildCommand returns the external recorder command and its raw
// stdout-streaming arguments for the configured recording method.
func (s *Stage) buildCommand() (string, []string) {
	channels := s.cfg.Audio.Channels
	if channels <= 0 {
		channels = 1
	}

	switch s.cfg.Audio.RecordingMethod {
	case "ffmpeg":
		return "ffmpeg", []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "alsa", "-i", s.cfg.Audio.Device,
			"-ar", fmt.Sprintf("%d", s.cfg.Audio.SampleRate),
			"-ac", fmt.Sprintf("%d", channels),
			"-f", "s16le", "-",
		}
	default:
		return "arecord", []string{
			"-D", s.cfg.Audio.Device,
			"-f", arecordFormat(s.cfg.Audio.Format),
			"-r", fmt.Sprintf("%d", s.cfg.Audio.SampleRate),
			"-c", fmt.Sprintf("%d", channels),
			"-t", "raw",
		}
	}
}

func arecordFormat(format string) string {
	switch format {
	case "s24le":
		return "S24_LE"
	case "s32le":
		return "S32_LE"
	default:
		return "S16_LE"
	}
}

// produce reads raw PCM from stdout in CHUNK_DURATION-sized chunks,
// downmixes and resamples to mono 16 kHz, and posts frames until the
// running flag clears, the stream ends, or a read error occurs.
func (s *Stage) produce(stdout io.Reader, dump *debugDumpWriter) error {
	channels := s.cfg.Audio.Channels
	if channels <= 0 {
		channels = 1
	}
	nativeRate := s.cfg.Audio.SampleRate
	if nativeRate <= 0 {
		nativeRate = targetSampleRate
	}
	chunkMs := s.cfg.Audio.ChunkDurationMs
	if chunkMs <= 0 {
		chunkMs = 100
	}

	frameSamples := (nativeRate * chunkMs) / 1000
	readBuf := make([]byte, frameSamples*channels*2)

	for s.running == nil || s.running.Load() {
		n, err := io.ReadFull(stdout, readBuf)
		if n > 0 {
			native := bytesToInt16(readBuf[:n-(n%(channels*2))])
			s.updateLevel(native)

			mono := downmix(native, channels)
			resampled := linearResample(mono, nativeRate, targetSampleRate)
			if err := dump.write(resampled); err != nil {
				s.logger.Warning("capture debug dump write failed: %v", err)
				dump = nil
			}
			s.frameQueue.Put(pipeline.AudioFrame{PCM: resampled})
		}
		if err != nil {
			if err == io.ErrUnexpectedEOF && n > 0 {
				continue
			}
			return err
		}
	}
	return nil
}

// stopProcess terminates the recording process, escalating from
// SIGTERM to SIGKILL if it does not exit promptly (grounded on
// audio/recorders/base_recorder.go's StopProcess).
func (s *Stage) stopProcess() error {
	s.mu.Lock()
	cmd := s.cmd
	exited := s.exited
	s.cmd = nil
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil || exited == nil {
		return nil
	}

	_ = cmd.Process.Signal(syscall.SIGTERM)

	select {
	case <-exited:
		return nil
	case <-time.After(500 * time.Millisecond):
		_ = cmd.Process.Signal(syscall.SIGKILL)
		<-exited
		return nil
	}
}

// fail propagates a startup error and posts the end-of-stream sentinel
// exactly once.
func (s *Stage) fail(err error) {
	s.state.Store(int32(Closed))
	if s.onError != nil {
		s.onError(err)
	}
	s.closeOnce.Do(func() { s.frameQueue.PutEnd() })
}

// updateLevel computes a 0-100 RMS level from native (pre-resample)
// samples and stores it for UI consumption.
func (s *Stage) updateLevel(samples []int16) {
	if len(samples) == 0 {
		return
	}
	var sum float64
	for _, v := range samples {
		f := float64(v)
		sum += f * f
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	norm := rms / 32768.0
	level := int32(norm * 1000)
	if level > 100 {
		level = 100
	}
	s.level.Store(level)
}

// Stop requests the capture stage to halt by signaling the shared
// running flag; Run observes it on its next read loop iteration and
// terminates the process.
func (s *Stage) Stop() {
	if s.running != nil {
		s.running.Store(false)
	}
}
