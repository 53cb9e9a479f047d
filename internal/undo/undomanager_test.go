/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func snap(label, blob string, ts time.Time) Snapshot {
	return Snapshot{Label: label, Blob: []byte(blob), TS: ts}
}

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxDepth: 10})
	t0 := time.Now()
	m.Push(snap("add", "a", t0))
	m.Push(snap("move", "b", t0.Add(time.Second)))

	s, ok := m.Undo(snap("", "c", t0))
	if !ok || string(s.Blob) != "b" || s.Label != "move" {
		t.Fatalf("undo expected 'b'/move, got ok=%v %q/%s", ok, s.Blob, s.Label)
	}
	if label, ok := m.CanRedo(); !ok || label != "move" {
		t.Fatalf("CanRedo = %q,%v", label, ok)
	}
	s, ok = m.Redo(snap("", "b", t0))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("redo expected 'c', got ok=%v blob=%q", ok, s.Blob)
	}
	if _, undoDepth, redoDepth := m.Stats(); undoDepth != 2 || redoDepth != 0 {
		t.Fatalf("depths = %d/%d, want 2/0", undoDepth, redoDepth)
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.Push(snap("add", "a", t0))
	m.Undo(snap("", "b", t0))
	m.Push(snap("add", "a", t0.Add(time.Second)))
	if _, ok := m.CanRedo(); ok {
		t.Fatalf("redo survived a new change")
	}
	if b, _, _ := m.Stats(); b != 1 {
		t.Fatalf("byte accounting = %d, want 1", b)
	}
}

func TestCoalesceKeepsBurstStart(t *testing.T) {
	m := NewManager(Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	m.Push(snap("move", "1", t0))
	m.Push(snap("move", "2", t0.Add(10*time.Millisecond)))
	m.Push(snap("move", "3", t0.Add(55*time.Millisecond)))
	m.Push(snap("resize", "4", t0.Add(60*time.Millisecond)))
	if _, depth, _ := m.Stats(); depth != 2 {
		t.Fatalf("depth = %d, want 2 (one move burst plus resize)", depth)
	}
	m.Undo(snap("", "x", t0))
	s, _ := m.Undo(snap("", "y", t0))
	if string(s.Blob) != "1" {
		t.Fatalf("coalesced burst restored %q, want '1'", s.Blob)
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 12, MaxDepth: 5})
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		m.Push(snap("move", "xxxxx", t0.Add(time.Duration(i)*time.Second)))
	}
	total, depth, _ := m.Stats()
	if depth != 2 || total != 10 {
		t.Fatalf("caps: depth=%d bytes=%d, want 2/10", depth, total)
	}
	m.Clear()
	if total, depth, _ := m.Stats(); total != 0 || depth != 0 {
		t.Fatalf("clear left %d bytes %d steps", total, depth)
	}
}
