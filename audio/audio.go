// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package audio runs the pipeline's capture stage: a supervised arecord
// (default) or ffmpeg subprocess that streams raw PCM frames into the frame queue for the
// transcription stage to consume. See capture.go for the Stage itself
// and pcm.go for frame decoding.
package audio
