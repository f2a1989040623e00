// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package pipeline

import (
	"sync"
	"sync/atomic"
)

// Runner is a pipeline worker stage started by the supervisor. Run must
// return once the stage has observed shutdown, either through the
// supervisor's running flag (capture) or the end-of-stream sentinel on
// its inbound queue (transcribe, translate).
type Runner interface {
	Run()
}

// Builder constructs the three pipeline stages. It runs on the
// supervisor's construction goroutine so a slow or failing model load
// never blocks the caller of Start.
type Builder func(running *atomic.Bool) (capture, transcribe, translate Runner, err error)

// Callbacks groups the engine's lifecycle hooks into a single struct to
// avoid parameter explosion across start/success/failure/stopped
// events; this is the right shape for a UI embedder to hang state
// transitions off of.
type Callbacks struct {
	OnSuccess func()
	OnFailure func(err error)
	OnStopped func()
}

// Supervisor owns the three pipeline worker goroutines, the shared
// running flag, and enforces clean start, stop, and drain. Exactly one
// OnStopped fires per successful Start.
type Supervisor struct {
	running atomic.Bool
	wg      sync.WaitGroup
	build   Builder
	cb      Callbacks
}

// NewSupervisor constructs a supervisor around a stage builder and the
// engine's lifecycle callbacks.
func NewSupervisor(build Builder, cb Callbacks) *Supervisor {
	return &Supervisor{build: build, cb: cb}
}

// Running returns the shared cooperative-cancellation flag. The capture
// stage re-checks it on every read-loop iteration; transcribe and
// translate do not read it directly, they stop on receiving the
// end-of-stream sentinel capture posts once it observes the flag clear.
func (s *Supervisor) Running() *atomic.Bool {
	return &s.running
}

// Start builds the three stages on a background goroutine. Construction
// failure invokes OnFailure; success invokes OnSuccess and runs the
// three workers to completion, after which OnStopped fires.
func (s *Supervisor) Start() {
	s.running.Store(true)
	go func() {
		capture, transcribe, translate, err := s.build(&s.running)
		if err != nil {
			if s.cb.OnFailure != nil {
				s.cb.OnFailure(err)
			}
			return
		}
		if s.cb.OnSuccess != nil {
			s.cb.OnSuccess()
		}

		s.wg.Add(3)
		go s.runStage(capture)
		go s.runStage(transcribe)
		go s.runStage(translate)
		s.wg.Wait()

		if s.cb.OnStopped != nil {
			s.cb.OnStopped()
		}
	}()
}

func (s *Supervisor) runStage(r Runner) {
	defer s.wg.Done()
	r.Run()
}

// Stop requests cooperative shutdown. Non-blocking: capture observes
// the cleared flag on its own read loop; downstream stages observe it
// indirectly, by eventually receiving the end-of-stream sentinel that
// capture posts exactly once when it stops.
func (s *Supervisor) Stop() {
	s.running.Store(false)
}
