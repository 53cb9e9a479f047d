/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a report file plus a last-chance snapshot
// of the open document.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"emojiart/internal/domain"
	applog "emojiart/internal/log"
	"emojiart/internal/storage"
	"emojiart/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Snapshotter yields the document state worth saving when the process dies.
// *editor.Session satisfies it.
type Snapshotter interface {
	Snapshot() domain.Document
}

// Target names what to save on a crash. It is filled in as the program opens
// its document, so it can be registered before that happens.
type Target struct {
	Store  *storage.FileStore
	Source Snapshotter
}

// Recover captures a panic, logs an error with stacktrace,
// writes an error report file, and attempts a crash-safe snapshot
// of the current document (if t has both a store and a source).
//
// Usage: defer crash.Recover(&target)
//
// It must be deferred directly; recover has no effect in a nested call.
func Recover(t *Target) {
	if r := recover(); r != nil {
		var (
			store *storage.FileStore
			src   Snapshotter
		)
		if t != nil {
			store, src = t.Store, t.Source
		}
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, _ := writeReport(store, r, stack)
		if store != nil && src != nil {
			d := snapshot(src)
			if d == nil {
				l.Error("document unavailable for crash snapshot")
			} else if path, err := storage.AutosaveCrashSnapshot(store, d); err != nil {
				l.Error("autosave crash snapshot failed", slog.Any("err", err))
			} else {
				l.Info("autosave crash snapshot written", slog.String("path", path))
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

// snapshot guards against the source itself being the thing that panicked
// while holding its lock or in a broken state.
func snapshot(src Snapshotter) (d *domain.Document) {
	defer func() {
		if recover() != nil {
			d = nil
		}
	}()
	doc := src.Snapshot()
	return &doc
}

func writeReport(store *storage.FileStore, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if store != nil && store.Path != "" {
		dir = store.BackupDir()
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	fname := fmt.Sprintf("crash-%s.log", stamp)
	path := filepath.Join(dir, fname)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "EmojiArt Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if store != nil {
		_, _ = fmt.Fprintf(&buf, "Document: %s\n", store.Path)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
