// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package pipeline

import (
	"testing"
	"time"
)

func TestMergeQueue_MergesAdjacentItems(t *testing.T) {
	q := NewMergeQueue[Pair]()

	q.Put(Pair{Confirmed: "a", Draft: "x"})
	q.Put(Pair{Confirmed: "b", Draft: "y"})
	q.Put(Pair{Confirmed: "c", Draft: "z"})

	value, isEnd := q.Get()
	if isEnd {
		t.Fatalf("expected a value, got end-of-stream")
	}
	if value.Confirmed != "abc" {
		t.Errorf("expected merged confirmed 'abc', got %q", value.Confirmed)
	}
	if value.Draft != "z" {
		t.Errorf("expected merged draft 'z' (last writer wins), got %q", value.Draft)
	}
}

func TestMergeQueue_SentinelNeverMerged(t *testing.T) {
	q := NewMergeQueue[Pair]()

	q.Put(Pair{Confirmed: "a"})
	q.PutEnd()
	q.Put(Pair{Confirmed: "b"})

	first, isEnd := q.Get()
	if isEnd || first.Confirmed != "a" {
		t.Fatalf("expected first item {a, false}, got %+v end=%v", first, isEnd)
	}

	second, isEnd := q.Get()
	if !isEnd {
		t.Fatalf("expected end-of-stream sentinel as second item")
	}
	_ = second

	third, isEnd := q.Get()
	if isEnd || third.Confirmed != "b" {
		t.Fatalf("expected item posted after the sentinel to survive distinctly, got %+v end=%v", third, isEnd)
	}
}

func TestMergeQueue_AudioFrameByteConcatenation(t *testing.T) {
	q := NewMergeQueue[AudioFrame]()
	q.Put(AudioFrame{PCM: []int16{1, 2}})
	q.Put(AudioFrame{PCM: []int16{3, 4}})

	value, isEnd := q.Get()
	if isEnd {
		t.Fatalf("unexpected end-of-stream")
	}
	want := []int16{1, 2, 3, 4}
	if len(value.PCM) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(value.PCM))
	}
	for i := range want {
		if value.PCM[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], value.PCM[i])
		}
	}
}

func TestMergeQueue_GetBlocksUntilPut(t *testing.T) {
	q := NewMergeQueue[Pair]()
	done := make(chan Pair, 1)

	go func() {
		value, _ := q.Get()
		done <- value
	}()

	time.Sleep(20 * time.Millisecond)
	if q.IsNonEmpty() {
		t.Fatalf("queue should be empty before Put")
	}
	q.Put(Pair{Confirmed: "hi"})

	select {
	case value := <-done:
		if value.Confirmed != "hi" {
			t.Errorf("expected 'hi', got %q", value.Confirmed)
		}
	case <-time.After(time.Second):
		t.Fatal("Get did not unblock after Put")
	}
}

func TestMergeQueue_IsNonEmpty(t *testing.T) {
	q := NewMergeQueue[Pair]()
	if q.IsNonEmpty() {
		t.Errorf("expected empty queue")
	}
	q.Put(Pair{Confirmed: "a"})
	if !q.IsNonEmpty() {
		t.Errorf("expected non-empty queue after Put")
	}
}
