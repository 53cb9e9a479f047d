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
	"fmt"

	"emojiart/internal/domain"
)

// ErrNotFound is returned by Load when nothing was saved yet.
var ErrNotFound = errors.New("document not found")

// BackupRecoveredError is returned with the document when the stored file was
// unreadable and Load opened the newest readable backup instead. It unwraps to
// the decode error, a *domain.CorruptError.
type BackupRecoveredError struct {
	Backup string
	Err    error
}

func (e *BackupRecoveredError) Error() string {
	return fmt.Sprintf("document unreadable, opened backup %s: %v", e.Backup, e.Err)
}

func (e *BackupRecoveredError) Unwrap() error { return e.Err }

// Store persists one document. Load may return a usable document together
// with a *domain.CorruptError when the stored bytes could not be decoded.
type Store interface {
	Load(ctx context.Context) (*domain.Document, error)
	Save(ctx context.Context, d *domain.Document) error
}
