/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor binds one document to its selection, gesture coordinator,
// undo history and autosave.
//
// Session is the single owner of the document. Readers get copies; writers go
// through Update, which applies a whole command batch under one lock, records
// the previous state for undo and hands the new state to the autosaver.
// Methods that touch the coordinator (Undo, Redo, Restore) must be called from
// the same goroutine that feeds it input.
package editor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"emojiart/internal/domain"
	"emojiart/internal/gesture"
	applog "emojiart/internal/log"
	"emojiart/internal/selection"
	"emojiart/internal/storage"
	"emojiart/internal/undo"
)

// Saver receives every committed document state. *storage.Autosaver implements it.
type Saver interface {
	Submit(label string, d *domain.Document)
}

// Options configures a Session.
type Options struct {
	Gesture  gesture.Config
	Undo     undo.Config
	Viewport gesture.Viewport
	// Saver is optional; without it changes stay in memory.
	Saver Saver
}

// Session is an open document in the editor.
type Session struct {
	mu  sync.RWMutex
	doc *domain.Document

	sel   selection.Set
	coord *gesture.Coordinator
	undo  *undo.Manager
	saver Saver
	log   *slog.Logger

	recovered error

	lmu       sync.Mutex
	listeners []func()
	now       func() time.Time
}

// New starts a session on d. A nil d starts an empty document.
func New(d *domain.Document, opts Options) *Session {
	if d == nil {
		d = domain.NewDocument()
	}
	s := &Session{
		doc:   d,
		undo:  undo.NewManager(opts.Undo),
		saver: opts.Saver,
		log:   applog.WithComponent("editor"),
		now:   time.Now,
	}
	s.coord = gesture.New(opts.Gesture, s, opts.Viewport, &s.sel)
	s.coord.OnChange = s.notify
	return s
}

// Open loads the document from store. A missing document starts empty. An
// unreadable one starts from whatever the store could salvage (a backup, or
// nothing) and is reported by Recovered.
func Open(ctx context.Context, store storage.Store, opts Options) (*Session, error) {
	l := applog.WithComponent("editor")
	d, err := store.Load(ctx)
	var (
		ce        *domain.CorruptError
		recovered error
	)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		d = domain.NewDocument()
	case errors.As(err, &ce):
		recovered = err
		var re *storage.BackupRecoveredError
		if errors.As(err, &re) {
			l.Warn("stored document unreadable, continuing from backup", slog.String("backup", re.Backup), slog.Any("err", ce))
		} else {
			l.Warn("starting from an empty document", slog.Any("err", err))
		}
	default:
		return nil, err
	}
	if d == nil {
		d = domain.NewDocument()
	}
	s := New(d, opts)
	s.recovered = recovered
	return s, nil
}

// Recovered returns the load error if the stored document was unreadable.
// It unwraps to *domain.CorruptError; a *storage.BackupRecoveredError means
// the session started from a backup rather than empty.
func (s *Session) Recovered() error { return s.recovered }

// Coordinator is the gesture state machine bound to this session.
func (s *Session) Coordinator() *gesture.Coordinator { return s.coord }

// Selection returns the selected ids in ascending order.
func (s *Session) Selection() []int { return s.sel.IDs() }

// Snapshot returns a copy of the current document.
func (s *Session) Snapshot() domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Emojis returns a copy of the emojis in paint order.
func (s *Session) Emojis() []domain.Emoji {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Emoji(nil), s.doc.Emojis...)
}

func (s *Session) Emoji(id int) (domain.Emoji, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Emoji(id)
}

func (s *Session) Background() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Background
}

// Update applies fn as one atomic batch. A batch that leaves the document
// unchanged records no undo step and triggers no save.
func (s *Session) Update(label string, fn func(gesture.Mutator)) {
	s.mu.Lock()
	before, err := domain.Encode(s.doc)
	if err != nil {
		s.mu.Unlock()
		s.log.Error("encode before update", slog.Any("err", err))
		return
	}
	fn(s.doc)
	after, err := domain.Encode(s.doc)
	if err != nil || bytes.Equal(before, after) {
		s.mu.Unlock()
		return
	}
	s.undo.Push(undo.Snapshot{Label: label, Blob: before, TS: s.now()})
	c := s.doc.Clone()
	s.mu.Unlock()

	s.log.Debug("update", slog.String("label", label), slog.Int("emojis", len(c.Emojis)))
	s.submit(label, &c)
	s.notify()
}

// Undo restores the state before the last change.
func (s *Session) Undo() bool {
	return s.step("undo", s.undo.Undo)
}

// Redo reapplies the last undone change.
func (s *Session) Redo() bool {
	return s.step("redo", s.undo.Redo)
}

// CanUndo names the change Undo would revert.
func (s *Session) CanUndo() (string, bool) { return s.undo.CanUndo() }

func (s *Session) CanRedo() (string, bool) { return s.undo.CanRedo() }

func (s *Session) step(op string, pop func(undo.Snapshot) (undo.Snapshot, bool)) bool {
	s.mu.Lock()
	cur, err := domain.Encode(s.doc)
	if err != nil {
		s.mu.Unlock()
		return false
	}
	snap, ok := pop(undo.Snapshot{Blob: cur, TS: s.now()})
	if !ok {
		s.mu.Unlock()
		return false
	}
	d, err := domain.Decode(snap.Blob)
	if err != nil {
		s.mu.Unlock()
		s.log.Error("undo snapshot unreadable", slog.String("op", op), slog.Any("err", err))
		return false
	}
	// ids handed out after the snapshot stay retired
	d.ReserveIDs(s.doc.LastID())
	s.doc = d
	c := d.Clone()
	s.mu.Unlock()

	s.coord.Reconcile()
	s.submit(op+" "+snap.Label, &c)
	s.notify()
	return true
}

// Restore replaces the whole document, e.g. with a revision from history.
// The replaced state stays reachable through Undo.
func (s *Session) Restore(label string, d *domain.Document) {
	if d == nil {
		return
	}
	s.mu.Lock()
	if before, err := domain.Encode(s.doc); err == nil {
		s.undo.Push(undo.Snapshot{Label: label, Blob: before, TS: s.now()})
	}
	next := d.Clone()
	// keep ids retired in the current document retired in the restored one
	next.ReserveIDs(s.doc.LastID())
	s.doc = &next
	c := next.Clone()
	s.mu.Unlock()

	s.coord.Reconcile()
	s.submit(label, &c)
	s.notify()
}

// OnChange registers fn to be called after every change visible to a
// renderer: document commits, selection, delete mode and in-flight gestures.
func (s *Session) OnChange(fn func()) {
	s.lmu.Lock()
	s.listeners = append(s.listeners, fn)
	s.lmu.Unlock()
}

func (s *Session) notify() {
	s.lmu.Lock()
	ls := append([]func(){}, s.listeners...)
	s.lmu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

func (s *Session) submit(label string, d *domain.Document) {
	if s.saver != nil {
		s.saver.Submit(label, d)
	}
}
