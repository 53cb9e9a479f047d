/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"emojiart/internal/config"
	"emojiart/internal/crash"
	"emojiart/internal/editor"
	"emojiart/internal/gesture"
	applog "emojiart/internal/log"
	"emojiart/internal/palette"
	"emojiart/internal/storage"
	"emojiart/internal/ui"
	"emojiart/internal/undo"
)

// undoCoalesce folds same-label commits this close together into one undo step.
const undoCoalesce = 300 * time.Millisecond

// defaultViewport is used until a window reports its real size.
const defaultViewportW, defaultViewportH = 800, 600

// app is the opened autosave document with everything bound to it.
type app struct {
	cfg     config.AppConfig
	docPath string

	store    *storage.FileStore
	history  *storage.History
	saver    *storage.Autosaver
	viewport *ui.Viewport
	session  *editor.Session
}

func openApp(ctx context.Context, cfg config.AppConfig, target *crash.Target) (*app, error) {
	l := applog.WithComponent("cli")
	docPath, err := cfg.DocumentPath()
	if err != nil {
		return nil, fmt.Errorf("resolve document: %w", err)
	}
	a := &app{cfg: cfg, docPath: docPath}
	a.store = storage.NewFileStore(docPath)
	a.store.KeepBackups = cfg.Storage.KeepBackups
	if target != nil {
		target.Store = a.store
	}

	opts := storage.AutosaveOptions{
		Delay:   cfg.Editor.AutosaveDelay(),
		OnError: func(err error) { l.Error("autosave failed", slog.Any("err", err)) },
	}
	if h, err := storage.OpenHistory(ctx, historyPath(cfg, docPath)); err != nil {
		// the document itself is still usable without its revision log
		l.Warn("history unavailable", slog.Any("err", err))
	} else {
		a.history = h
		opts.History = h
		opts.HistoryKeep = cfg.Storage.HistoryKeep
	}
	a.saver = storage.NewAutosaver(a.store, opts)
	a.viewport = ui.NewViewport(defaultViewportW, defaultViewportH)

	s, err := editor.Open(ctx, a.store, editor.Options{
		Gesture: gesture.Config{
			TapSlop:          cfg.Editor.TapSlop,
			LongPress:        cfg.Editor.LongPress(),
			PaletteGlyphSize: cfg.Editor.PaletteGlyphSize,
			MinZoom:          cfg.Editor.MinZoom,
			MaxZoom:          cfg.Editor.MaxZoom,
		},
		Undo:     undo.Config{MaxDepth: cfg.Editor.UndoDepth, MinInterval: undoCoalesce},
		Viewport: a.viewport,
		Saver:    a.saver,
	})
	if err != nil {
		_ = a.close(ctx)
		return nil, fmt.Errorf("open %s: %w", docPath, err)
	}
	a.session = s
	if target != nil {
		target.Source = s
	}
	if rerr := s.Recovered(); rerr != nil {
		var br *storage.BackupRecoveredError
		if errors.As(rerr, &br) {
			l.Warn("document was unreadable, opened backup", slog.String("path", docPath), slog.String("backup", br.Backup))
		} else {
			l.Warn("document was unreadable, started empty", slog.String("path", docPath), slog.Any("err", rerr))
		}
	}
	return a, nil
}

// historyPath is storage.history from config, relative to the document's
// directory, or the default next to the document.
func historyPath(cfg config.AppConfig, docPath string) string {
	p := strings.TrimSpace(cfg.Storage.History)
	switch {
	case p == "":
		return storage.HistoryPath(docPath)
	case filepath.IsAbs(p):
		return p
	default:
		return filepath.Join(filepath.Dir(docPath), p)
	}
}

// palettes builds the palette store from config, falling back to the built-ins.
func (a *app) palettes() *palette.Store {
	var ps []palette.Palette
	for _, pc := range a.cfg.Palettes {
		p := palette.New(pc.Name, pc.Emojis)
		if len(p.Glyphs()) == 0 {
			continue
		}
		ps = append(ps, p)
	}
	return palette.NewStore("Main", ps)
}

// close writes pending changes and releases the history database.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.saver != nil {
		errs = append(errs, a.saver.Close(ctx))
	}
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	return errors.Join(errs...)
}
