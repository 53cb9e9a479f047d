/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"emojiart/internal/domain"
	applog "emojiart/internal/log"
)

// Recorder keeps revisions of saved documents; *History implements it.
type Recorder interface {
	Record(ctx context.Context, label string, d *domain.Document) (Revision, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// AutosaveOptions configures an Autosaver.
type AutosaveOptions struct {
	// Delay is the longest a change waits before it is written. Changes
	// arriving meanwhile are folded into the same write. Zero writes on every change.
	Delay time.Duration
	// History, when set, records a revision after every successful save.
	History Recorder
	// HistoryKeep bounds the revisions kept in History.
	HistoryKeep int
	// OnError is called from the autosave goroutine when a write fails.
	OnError func(error)
}

// ErrAutosaverClosed is returned by Flush after Close.
var ErrAutosaverClosed = errors.New("autosaver closed")

// Autosaver persists submitted documents off the caller's goroutine. Only
// the latest submitted state is ever written.
type Autosaver struct {
	store Store
	opts  AutosaveOptions
	log   *slog.Logger

	mu      sync.Mutex
	pending *domain.Document
	label   string
	lastErr error
	saves   int

	kick    chan struct{}
	flushes chan chan error
	closed  chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewAutosaver starts the background writer.
func NewAutosaver(store Store, opts AutosaveOptions) *Autosaver {
	if opts.HistoryKeep <= 0 {
		opts.HistoryKeep = DefaultHistoryKeep
	}
	a := &Autosaver{
		store:   store,
		opts:    opts,
		log:     applog.WithComponent("autosave"),
		kick:    make(chan struct{}, 1),
		flushes: make(chan chan error),
		closed:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go a.loop()
	return a
}

// Submit queues d for saving. The autosaver takes ownership of d; callers
// pass a clone. It never blocks.
func (a *Autosaver) Submit(label string, d *domain.Document) {
	a.mu.Lock()
	a.pending = d
	a.label = label
	a.mu.Unlock()
	select {
	case a.kick <- struct{}{}:
	default:
	}
}

// Flush writes any pending document now and returns the write error.
func (a *Autosaver) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case a.flushes <- reply:
	case <-a.done:
		return ErrAutosaverClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes pending changes and stops the writer.
func (a *Autosaver) Close(ctx context.Context) error {
	a.once.Do(func() { close(a.closed) })
	select {
	case <-a.done:
		return a.LastError()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastError is the error of the most recent write, nil after a success.
func (a *Autosaver) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Saves counts successful writes.
func (a *Autosaver) Saves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves
}

func (a *Autosaver) loop() {
	defer close(a.done)
	var timer *time.Timer
	var timerC <-chan time.Time
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
		timerC = nil
	}
	for {
		select {
		case <-a.kick:
			if a.opts.Delay <= 0 {
				a.write()
				continue
			}
			// the first change of a burst arms the timer, later ones ride along
			if timerC == nil {
				if timer == nil {
					timer = time.NewTimer(a.opts.Delay)
				} else {
					timer.Reset(a.opts.Delay)
				}
				timerC = timer.C
			}
		case <-timerC:
			timerC = nil
			a.write()
		case reply := <-a.flushes:
			stop()
			reply <- a.write()
		case <-a.closed:
			stop()
			a.write()
			return
		}
	}
}

func (a *Autosaver) write() error {
	a.mu.Lock()
	d, label := a.pending, a.label
	a.pending = nil
	a.mu.Unlock()
	if d == nil {
		return a.LastError()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.store.Save(ctx, d)

	a.mu.Lock()
	a.lastErr = err
	if err == nil {
		a.saves++
	} else if a.pending == nil {
		// keep the failed state for the next attempt unless a newer one arrived
		a.pending, a.label = d, label
	}
	saves := a.saves
	a.mu.Unlock()

	if err != nil {
		a.log.Error("autosave failed", slog.String("label", label), slog.Any("err", err))
		if a.opts.OnError != nil {
			a.opts.OnError(err)
		}
		return err
	}
	a.log.Debug("autosaved", slog.String("label", label), slog.Int("emojis", len(d.Emojis)))
	if a.opts.History != nil {
		if _, herr := a.opts.History.Record(ctx, label, d); herr != nil {
			a.log.Warn("record revision failed", slog.Any("err", herr))
		} else if saves%50 == 0 {
			if _, perr := a.opts.History.Prune(ctx, a.opts.HistoryKeep); perr != nil {
				a.log.Warn("prune revisions failed", slog.Any("err", perr))
			}
		}
	}
	return nil
}
