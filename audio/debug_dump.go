// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// debugDumpWriter mirrors every resampled frame the capture stage
// produces to a WAV file, for offline troubleshooting of a noisy or
// misconfigured capture device. Only opened when General.TempAudioPath
// is set; a failure to open it is logged and otherwise ignored, since
// it must never block transcription.
type debugDumpWriter struct {
	file    *os.File
	encoder *wav.Encoder
}

func newDebugDumpWriter(tempDir string, sampleRate int) (*debugDumpWriter, error) {
	if tempDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(tempDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create temp audio dir: %w", err)
	}

	path := filepath.Join(tempDir, fmt.Sprintf("capture-%d.wav", time.Now().UnixNano()))
	// #nosec G304 -- path is built from a validated config directory and an internal timestamp.
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create debug dump file: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	return &debugDumpWriter{file: f, encoder: enc}, nil
}

func (d *debugDumpWriter) write(samples []int16) error {
	if d == nil || len(samples) == 0 {
		return nil
	}
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: d.encoder.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	return d.encoder.Write(buf)
}

func (d *debugDumpWriter) close() {
	if d == nil {
		return
	}
	_ = d.encoder.Close()
	_ = d.file.Close()
}
