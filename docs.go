// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package streamcastengine provides a high-level overview of the
// streamcast-engine project.
//
// streamcast-engine is a headless, real-time speech transcription and
// translation engine written in Go. It captures microphone audio,
// streams it through a local whisper.cpp model for live transcription,
// and optionally translates the confirmed text through either a plain
// HTTP translation provider or an LLM (proofread/translate/both).
//
// Pipeline architecture:
//   - audio:      captures PCM frames from an arecord or ffmpeg subprocess
//   - transcribe: runs a sliding-window whisper.cpp oracle over the
//     captured audio, partitioning each window into confirmed and
//     draft text and folding in adaptive paragraph detection
//   - translate:  consumes confirmed text in either HTTP or LLM mode,
//     the latter with configurable trigger conditions (paragraph,
//     time, word count, or a manual hotkey)
//   - pipeline:   the generic merging queues and worker-stage
//     supervisor wiring the three stages together
//
// Core responsibilities:
//   - Global manual-AI-trigger hotkey using the D-Bus GlobalShortcuts
//     portal (primary) or evdev (fallback)
//   - Audio capture via an arecord or ffmpeg subprocess
//   - Local transcription using whisper.cpp's Go bindings
//   - Optional LLM-based proofreading and translation
//
// WebSocket API:
//   - Real-time transcript/translation streaming for external clients
//   - Enabled via config: web_server.enabled: true
//   - Endpoint: ws://host:port/ws
//   - Supports token authentication and a bounded client count
//
// Testing strategy:
//   - Unit tests colocated with packages (go test ./...)
//   - Build-tagged integration tests in this package (-tags=integration)
//
// For more details, see SPEC_FULL.md and DESIGN.md.
package streamcastengine
