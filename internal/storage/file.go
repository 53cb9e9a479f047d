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
	"io"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"emojiart/internal/domain"
	applog "emojiart/internal/log"
)

const (
	// DefaultFileName is the autosave target inside the data directory.
	DefaultFileName = "Autosaved.emojiart"
	BackupsDirName  = "backups"
	// DefaultKeepBackups bounds the number of timestamped backups per document.
	DefaultKeepBackups = 20
)

// FileStore stores a document as JSON at Path. Before each replace the
// previous file is copied to <dir>/backups/<name>.<stamp>.bak.
type FileStore struct {
	Path string
	// KeepBackups caps the backups kept for this document (0 means DefaultKeepBackups,
	// negative disables backups).
	KeepBackups int

	now func() time.Time
}

// NewFileStore returns a store for path. An empty path selects
// DefaultFileName in the working directory.
func NewFileStore(path string) *FileStore {
	if strings.TrimSpace(path) == "" {
		path = DefaultFileName
	}
	return &FileStore{Path: path, now: time.Now}
}

// BackupDir is where timestamped copies of the document are kept.
func (s *FileStore) BackupDir() string {
	return filepath.Join(filepath.Dir(s.Path), BackupsDirName)
}

// Load reads the document. A missing file falls back to the latest backup and
// then to ErrNotFound. A corrupt file falls back to the latest readable
// backup, returned with a *BackupRecoveredError; if there is none the empty
// document is returned with the decode error.
func (s *FileStore) Load(ctx context.Context) (*domain.Document, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "load")
	ctx = applog.WithDocument(ctx, s.Path)

	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		if d, path, berr := s.latestBackup(); berr == nil {
			l.WarnContext(ctx, "document missing, opened backup", slog.String("backup", path))
			return d, nil
		}
		return domain.NewDocument(), ErrNotFound
	}
	if err != nil {
		return domain.NewDocument(), fmt.Errorf("read document: %w", err)
	}
	d, derr := domain.Decode(b)
	if derr == nil {
		return d, nil
	}
	l.WarnContext(ctx, "document corrupt", slog.Any("err", derr))
	if bd, path, berr := s.latestBackup(); berr == nil {
		l.WarnContext(ctx, "opened latest backup", slog.String("backup", path))
		return bd, &BackupRecoveredError{Backup: path, Err: derr}
	}
	return d, derr
}

// Save replaces the document transactionally: the new content is written to
// a temp file in the same directory and renamed over the target.
func (s *FileStore) Save(ctx context.Context, d *domain.Document) error {
	if d == nil {
		return errors.New("nil document")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := domain.Encode(d)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure document dir: %w", err)
	}
	if s.KeepBackups >= 0 {
		if err := s.backupCurrent(); err != nil {
			return err
		}
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(s.Path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := os.Rename(temp, s.Path); err != nil {
		// Windows refuses to rename over an existing file
		_ = os.Remove(s.Path)
		if rerr := os.Rename(temp, s.Path); rerr != nil {
			_ = os.Remove(temp)
			return fmt.Errorf("replace document: %w", rerr)
		}
	}
	return nil
}

// Backups lists backup files oldest first.
func (s *FileStore) Backups() ([]string, error) {
	ents, err := os.ReadDir(s.BackupDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(s.Path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(s.BackupDir(), name))
		}
	}
	// timestamp in name yields lexicographic order
	sort.Strings(out)
	return out, nil
}

func (s *FileStore) backupCurrent() error {
	if _, err := os.Stat(s.Path); err != nil {
		return nil
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	stamp := now().Format("20060102-150405.000000000")
	dst := filepath.Join(s.BackupDir(), fmt.Sprintf("%s.%s.bak", filepath.Base(s.Path), stamp))
	if err := copyFile(s.Path, dst); err != nil {
		return fmt.Errorf("backup current document: %w", err)
	}
	return s.pruneBackups()
}

func (s *FileStore) pruneBackups() error {
	keep := s.KeepBackups
	if keep == 0 {
		keep = DefaultKeepBackups
	}
	all, err := s.Backups()
	if err != nil {
		return err
	}
	for len(all) > keep {
		if err := os.Remove(all[0]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("prune backup: %w", err)
		}
		all = all[1:]
	}
	return nil
}

// latestBackup opens the newest backup that decodes cleanly.
func (s *FileStore) latestBackup() (*domain.Document, string, error) {
	all, err := s.Backups()
	if err != nil {
		return nil, "", err
	}
	for i := len(all) - 1; i >= 0; i-- {
		b, err := os.ReadFile(all[i])
		if err != nil {
			continue
		}
		if d, err := domain.Decode(b); err == nil {
			return d, all[i], nil
		}
	}
	return nil, "", errors.New("no readable backups")
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// AutosaveCrashSnapshot writes d next to the store's backups under a crash
// name without touching the main file, which may be mid-write.
func AutosaveCrashSnapshot(s *FileStore, d *domain.Document) (string, error) {
	if s == nil || d == nil {
		return "", errors.New("nothing to snapshot")
	}
	data, err := domain.Encode(d)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.BackupDir(), 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.BackupDir(), fmt.Sprintf("%s.crash-%s.json", filepath.Base(s.Path), time.Now().Format("20060102-150405")))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}
