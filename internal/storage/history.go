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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"emojiart/internal/domain"
	applog "emojiart/internal/log"
	"emojiart/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	HistoryDirName  = ".emojiart"
	HistoryFileName = "history.sqlite"

	// historySchemaVersion tracks the local SQLite schema. Bump it together
	// with a new case in runHistoryMigrations.
	historySchemaVersion = 2

	// DefaultHistoryKeep is the number of revisions kept by Prune.
	DefaultHistoryKeep = 200
)

// language=SQL
// dialect=SQLite
const insertRevisionSQL = `INSERT INTO revisions(session, label, ts, emojis, body) VALUES (?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listRevisionsSQL = `SELECT id, session, label, ts, emojis FROM revisions ORDER BY id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const selectRevisionSQL = `SELECT body FROM revisions WHERE id = ?`

// language=SQL
// dialect=SQLite
const pruneRevisionsSQL = `DELETE FROM revisions WHERE id NOT IN (
	SELECT id FROM revisions ORDER BY id DESC LIMIT ?
)`

// Revision describes one recorded document state.
type Revision struct {
	ID      int64
	Session string
	Label   string
	TS      time.Time
	Emojis  int
}

// History is the revision log of a document. Each process gets its own
// session id so revisions from concurrent or earlier runs stay distinguishable.
type History struct {
	db      *sql.DB
	path    string
	session string
	log     *slog.Logger
}

// HistoryPath returns the history database location for a document file.
func HistoryPath(docPath string) string {
	return filepath.Join(filepath.Dir(docPath), HistoryDirName, HistoryFileName)
}

// OpenHistory opens or creates the database at path, enables WAL and brings
// the schema up to date.
func OpenHistory(ctx context.Context, path string) (*History, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "history_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureHistorySchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runHistoryMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	h := &History{db: db, path: path, session: uuid.NewString(), log: l}
	l.Debug("history ready", slog.String("session", h.session))
	return h, nil
}

func ensureHistorySchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS revisions (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			session  TEXT NOT NULL,
			label    TEXT NOT NULL,
			ts       TEXT NOT NULL,
			body     BLOB NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// a fresh database starts at schema 1 and migrates forward like any other
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, version.String(), now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, version.String(), now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runHistoryMigrations applies incremental schema migrations up to historySchemaVersion.
func runHistoryMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < historySchemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// emoji count for listings without decoding every body
			stmts = []string{
				`ALTER TABLE revisions ADD COLUMN emojis INTEGER NOT NULL DEFAULT 0;`,
				`CREATE INDEX IF NOT EXISTS idx_revisions_session ON revisions(session);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// Session is the id stamped on revisions recorded by this process.
func (h *History) Session() string { return h.session }

func (h *History) Path() string { return h.path }

// Record stores d as a new revision.
func (h *History) Record(ctx context.Context, label string, d *domain.Document) (Revision, error) {
	body, err := domain.Encode(d)
	if err != nil {
		return Revision{}, err
	}
	ts := time.Now().UTC()
	res, err := h.db.ExecContext(ctx, insertRevisionSQL, h.session, label, ts.Format(time.RFC3339Nano), len(d.Emojis), body)
	if err != nil {
		return Revision{}, fmt.Errorf("insert revision: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Revision{}, fmt.Errorf("revision id: %w", err)
	}
	return Revision{ID: id, Session: h.session, Label: label, TS: ts, Emojis: len(d.Emojis)}, nil
}

// List returns up to limit revisions, newest first.
func (h *History) List(ctx context.Context, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx, listRevisionsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Revision
	for rows.Next() {
		var r Revision
		var ts string
		if err := rows.Scan(&r.ID, &r.Session, &r.Label, &ts, &r.Emojis); err != nil {
			return nil, err
		}
		r.TS, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get decodes the document stored in revision id.
func (h *History) Get(ctx context.Context, id int64) (*domain.Document, error) {
	var body []byte
	err := h.db.QueryRowContext(ctx, selectRevisionSQL, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revision %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read revision %d: %w", id, err)
	}
	return domain.Decode(body)
}

// Prune keeps the newest keep revisions.
func (h *History) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		keep = DefaultHistoryKeep
	}
	res, err := h.db.ExecContext(ctx, pruneRevisionsSQL, keep)
	if err != nil {
		return 0, fmt.Errorf("prune revisions: %w", err)
	}
	return res.RowsAffected()
}

func (h *History) Close() error { return h.db.Close() }
