/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"emojiart/internal/domain"
	"emojiart/internal/geometry"
	"emojiart/internal/gesture"
	"emojiart/internal/storage"
)

type recordingSaver struct {
	mu     sync.Mutex
	labels []string
	last   *domain.Document
}

func (r *recordingSaver) Submit(label string, d *domain.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, label)
	r.last = d
}

func viewport() gesture.Viewport {
	return gesture.ViewportFunc(func() geometry.Size { return geometry.Size{W: 400, H: 400} })
}

func newSession(t *testing.T) (*Session, *recordingSaver) {
	t.Helper()
	sv := &recordingSaver{}
	return New(nil, Options{Viewport: viewport(), Saver: sv}), sv
}

func TestDropThenMoveAutosavesEachCommit(t *testing.T) {
	s, sv := newSession(t)
	c := s.Coordinator()
	if !c.Drop([]gesture.DropItem{{Glyph: "😀"}}, geometry.Point{X: 200, Y: 200}) {
		t.Fatalf("drop rejected")
	}
	id := s.Emojis()[0].ID
	c.PointerDown(1, geometry.Point{X: 200, Y: 200}, time.Now())
	c.PointerUp(1, geometry.Point{X: 200, Y: 200}, time.Now())
	if got := s.Selection(); len(got) != 1 || got[0] != id {
		t.Fatalf("selection = %v", got)
	}
	s.Update("move emojis", func(m gesture.Mutator) { m.Move(id, geometry.Offset{DX: 10, DY: -10}, 1) })

	if len(sv.labels) != 2 || sv.labels[0] != "add emoji" || sv.labels[1] != "move emojis" {
		t.Fatalf("saved labels = %v", sv.labels)
	}
	if e := sv.last.Emojis[0]; e.Position != (geometry.Position{X: 10, Y: 10}) || e.Size != 40 {
		t.Fatalf("saved emoji = %+v", e)
	}
}

func TestNoOpUpdateRecordsNothing(t *testing.T) {
	s, sv := newSession(t)
	s.Update("move emojis", func(m gesture.Mutator) { m.Move(42, geometry.Offset{DX: 5}, 1) })
	if len(sv.labels) != 0 {
		t.Fatalf("no-op update was saved: %v", sv.labels)
	}
	if _, ok := s.CanUndo(); ok {
		t.Fatalf("no-op update recorded an undo step")
	}
}

func TestSavedStateIsDetached(t *testing.T) {
	s, sv := newSession(t)
	s.Update("add emoji", func(m gesture.Mutator) { m.AddEmoji("a", geometry.Zero, 10) })
	saved := sv.last
	s.Update("add emoji", func(m gesture.Mutator) { m.AddEmoji("b", geometry.Zero, 10) })
	if len(saved.Emojis) != 1 {
		t.Fatalf("submitted document aliased live state: %+v", saved.Emojis)
	}
}

func TestUndoRedoAndSelectionReconcile(t *testing.T) {
	s, _ := newSession(t)
	var id int
	s.Update("add emoji", func(m gesture.Mutator) { id = m.AddEmoji("a", geometry.Zero, 40) })
	c := s.Coordinator()
	c.PointerDown(1, geometry.Point{X: 200, Y: 200}, time.Now())
	c.PointerUp(1, geometry.Point{X: 200, Y: 200}, time.Now())
	if len(s.Selection()) != 1 {
		t.Fatalf("emoji not selected")
	}

	if label, ok := s.CanUndo(); !ok || label != "add emoji" {
		t.Fatalf("CanUndo = %q,%v", label, ok)
	}
	if !s.Undo() {
		t.Fatalf("undo failed")
	}
	if len(s.Emojis()) != 0 {
		t.Fatalf("undo left %+v", s.Emojis())
	}
	if len(s.Selection()) != 0 {
		t.Fatalf("selection kept removed id: %v", s.Selection())
	}
	if !s.Redo() {
		t.Fatalf("redo failed")
	}
	if _, ok := s.Emoji(id); !ok {
		t.Fatalf("redo did not bring back %d", id)
	}
	if s.Undo(); s.Undo() {
		t.Fatalf("undo past the beginning succeeded")
	}
}

func TestUndoDoesNotRecycleIDs(t *testing.T) {
	s, _ := newSession(t)
	var first, second int
	s.Update("add emoji", func(m gesture.Mutator) { first = m.AddEmoji("a", geometry.Zero, 10) })
	s.Undo()
	s.Update("add emoji", func(m gesture.Mutator) { second = m.AddEmoji("b", geometry.Zero, 10) })
	if second == first {
		t.Fatalf("id %d reused after undo", first)
	}
}

func TestRestoreKeepsUndo(t *testing.T) {
	s, _ := newSession(t)
	s.Update("add emoji", func(m gesture.Mutator) { m.AddEmoji("a", geometry.Zero, 10) })
	s.Update("add emoji", func(m gesture.Mutator) { m.AddEmoji("b", geometry.Zero, 10) })
	old := domain.NewDocument()
	old.SetBackground("https://example.test/old.png")
	s.Restore("restore revision", old)
	if s.Background() != "https://example.test/old.png" || len(s.Emojis()) != 0 {
		t.Fatalf("restore did not replace document")
	}
	var id int
	s.Update("add emoji", func(m gesture.Mutator) { id = m.AddEmoji("c", geometry.Zero, 10) })
	if id <= 2 {
		t.Fatalf("restore recycled id %d", id)
	}
	s.Undo()
	s.Undo()
	if len(s.Emojis()) != 2 {
		t.Fatalf("undo after restore = %+v", s.Emojis())
	}
}

func TestOpenRecoversFromCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), storage.DefaultFileName)
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Open(context.Background(), storage.NewFileStore(path), Options{Viewport: viewport()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var ce *domain.CorruptError
	if !errors.As(s.Recovered(), &ce) {
		t.Fatalf("Recovered = %v", s.Recovered())
	}
	if len(s.Emojis()) != 0 {
		t.Fatalf("expected empty document")
	}
}

func TestOpenReportsRecoveryFromBackup(t *testing.T) {
	ctx := context.Background()
	store := storage.NewFileStore(filepath.Join(t.TempDir(), storage.DefaultFileName))
	good := domain.NewDocument()
	good.AddEmoji("🦉", geometry.Position{X: 4, Y: 2}, 30)
	if err := store.Save(ctx, good); err != nil {
		t.Fatalf("save: %v", err)
	}
	// second save moves the good copy into the backups
	if err := store.Save(ctx, good); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.WriteFile(store.Path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	s, err := Open(ctx, store, Options{Viewport: viewport()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var re *storage.BackupRecoveredError
	if !errors.As(s.Recovered(), &re) {
		t.Fatalf("Recovered = %v, want BackupRecoveredError", s.Recovered())
	}
	var ce *domain.CorruptError
	if !errors.As(s.Recovered(), &ce) {
		t.Fatalf("Recovered does not unwrap to CorruptError: %v", s.Recovered())
	}
	if got := s.Emojis(); len(got) != 1 || got[0].Glyph != "🦉" {
		t.Fatalf("expected the backup content, got %+v", got)
	}
}

func TestOpenRoundTripsThroughAutosaver(t *testing.T) {
	ctx := context.Background()
	store := storage.NewFileStore(filepath.Join(t.TempDir(), storage.DefaultFileName))
	saver := storage.NewAutosaver(store, storage.AutosaveOptions{Delay: time.Hour})
	s, err := Open(ctx, store, Options{Viewport: viewport(), Saver: saver})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Coordinator().Drop([]gesture.DropItem{{Glyph: "🐸"}}, geometry.Point{X: 220, Y: 180})
	s.Coordinator().Drop([]gesture.DropItem{{URL: "https://example.test/pond.jpg"}}, geometry.Point{})
	if err := saver.Close(ctx); err != nil {
		t.Fatalf("close saver: %v", err)
	}

	s2, err := Open(ctx, store, Options{Viewport: viewport()})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := s2.Snapshot()
	want := s.Snapshot()
	if !got.Equal(&want) {
		t.Fatalf("reopened %+v, want %+v", got, want)
	}
	if e := got.Emojis[0]; e.Position != (geometry.Position{X: 20, Y: 20}) || e.Glyph != "🐸" {
		t.Fatalf("dropped emoji = %+v", e)
	}
}

func TestOnChangeFiresForCommitsAndGestures(t *testing.T) {
	s, _ := newSession(t)
	n := 0
	s.OnChange(func() { n++ })
	s.Update("add emoji", func(m gesture.Mutator) { m.AddEmoji("a", geometry.Zero, 10) })
	if n == 0 {
		t.Fatalf("commit did not notify")
	}
	before := n
	s.Coordinator().PinchBegin()
	s.Coordinator().PinchChange(1.2)
	if n == before {
		t.Fatalf("in-flight gesture did not notify")
	}
}
