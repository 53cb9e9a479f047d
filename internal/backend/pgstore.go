/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"emojiart/internal/domain"
	applog "emojiart/internal/log"
	"emojiart/internal/storage"
)

// language=SQL
const (
	upsertDocumentSQL = `INSERT INTO documents(name, body, emoji_count, revision, updated_at)
VALUES($1, $2::jsonb, $3, 1, now())
ON CONFLICT(name) DO UPDATE SET body = EXCLUDED.body, emoji_count = EXCLUDED.emoji_count,
    revision = documents.revision + 1, updated_at = now()
RETURNING revision`
	selectDocumentSQL = `SELECT body::text FROM documents WHERE name = $1`
	listDocumentsSQL  = `SELECT name, revision, emoji_count, updated_at FROM documents ORDER BY updated_at DESC, name`
	deleteDocumentSQL = `DELETE FROM documents WHERE name = $1`
)

// PGStore is a storage.Store for one named document in Postgres.
type PGStore struct {
	DB   *sql.DB
	Name string
	log  *slog.Logger
}

var _ storage.Store = (*PGStore)(nil)

// DocumentInfo describes a stored document without its body.
type DocumentInfo struct {
	Name      string
	Revision  int64
	Emojis    int
	UpdatedAt time.Time
}

func NewPGStore(db *sql.DB, name string) *PGStore {
	return &PGStore{DB: db, Name: name, log: applog.WithComponent("backend")}
}

// Load fetches the document. An unknown name yields storage.ErrNotFound; an
// undecodable body yields an empty document with *domain.CorruptError.
func (s *PGStore) Load(ctx context.Context) (*domain.Document, error) {
	var body string
	err := s.DB.QueryRowContext(ctx, selectDocumentSQL, s.Name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %q: %w", s.Name, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	d, err := domain.Decode([]byte(body))
	if err != nil {
		s.log.WarnContext(ctx, "remote document corrupt", slog.String("name", s.Name), slog.Any("err", err))
	}
	return d, err
}

// Save upserts the document and bumps its revision.
func (s *PGStore) Save(ctx context.Context, d *domain.Document) error {
	_, err := s.Push(ctx, d)
	return err
}

// Push is Save returning the new revision.
func (s *PGStore) Push(ctx context.Context, d *domain.Document) (int64, error) {
	data, err := domain.Encode(d)
	if err != nil {
		return 0, err
	}
	var rev int64
	if err := s.DB.QueryRowContext(ctx, upsertDocumentSQL, s.Name, string(data), len(d.Emojis)).Scan(&rev); err != nil {
		return 0, fmt.Errorf("upsert document: %w", err)
	}
	s.log.DebugContext(ctx, "document pushed", slog.String("name", s.Name), slog.Int64("revision", rev))
	return rev, nil
}

// Delete removes the document; deleting an absent one is not an error.
func (s *PGStore) Delete(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, deleteDocumentSQL, s.Name); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// List returns all stored documents, most recently updated first.
func List(ctx context.Context, db *sql.DB) ([]DocumentInfo, error) {
	rows, err := db.QueryContext(ctx, listDocumentsSQL)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []DocumentInfo
	for rows.Next() {
		var di DocumentInfo
		if err := rows.Scan(&di.Name, &di.Revision, &di.Emojis, &di.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, di)
	}
	return out, rows.Err()
}
