/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emojiart/internal/config"
	"emojiart/internal/crash"
	"emojiart/internal/storage"

	"github.com/zalando/go-keyring"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	keyring.MockInit()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigPath, filepath.Join(dir, "config.yaml"))
	t.Setenv(config.EnvDataDir, dir)
	t.Setenv(config.EnvDocument, "")
	t.Setenv(config.EnvSyncDSN, "")
	t.Setenv(config.EnvLogLevel, "error")
	return dir
}

func runCmd(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	code := run(args, &out, &crash.Target{})
	return code, out.String()
}

func TestVersionAndUsage(t *testing.T) {
	setupEnv(t)
	if code, out := runCmd(t, "version"); code != 0 || !strings.Contains(out, "EmojiArt") {
		t.Fatalf("version: code=%d out=%q", code, out)
	}
	if code, out := runCmd(t); code != 0 || !strings.Contains(out, "Usage:") {
		t.Fatalf("usage: code=%d out=%q", code, out)
	}
	if code, out := runCmd(t, "frobnicate"); code != 2 || !strings.Contains(out, "unknown command") {
		t.Fatalf("unknown: code=%d out=%q", code, out)
	}
}

func TestAddShowPersists(t *testing.T) {
	dir := setupEnv(t)
	if code, out := runCmd(t, "add", "🐸", "10", "-20", "64"); code != 0 {
		t.Fatalf("add: code=%d out=%q", code, out)
	}
	if _, err := os.Stat(filepath.Join(dir, config.Defaults().Storage.Document)); err != nil {
		t.Fatalf("document not written: %v", err)
	}
	code, out := runCmd(t, "show")
	if code != 0 {
		t.Fatalf("show: code=%d out=%q", code, out)
	}
	for _, want := range []string{"Emojis: 1", "#1 🐸 at (10, -20) size 64", "U+1F438"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	setupEnv(t)
	if code, _ := runCmd(t, "add", "abc", "1", "2"); code != 1 {
		t.Fatalf("non-emoji add should fail with 1, got %d", code)
	}
	if code, _ := runCmd(t, "add", "🐸", "x", "2"); code != 2 {
		t.Fatalf("bad coordinates should be a usage error, got %d", code)
	}
	if code, _ := runCmd(t, "add", "🐸"); code != 2 {
		t.Fatalf("missing args should be a usage error, got %d", code)
	}
}

func TestDropGlyphAndBackground(t *testing.T) {
	setupEnv(t)
	if code, out := runCmd(t, "drop", "🐶"); code != 0 {
		t.Fatalf("drop glyph: code=%d out=%q", code, out)
	}
	if code, out := runCmd(t, "drop", "https://example.com/sky.png"); code != 0 || !strings.Contains(out, "Background set") {
		t.Fatalf("drop url: code=%d out=%q", code, out)
	}
	_, out := runCmd(t, "show")
	// the viewport center maps to the document origin at the initial view
	if !strings.Contains(out, "#1 🐶 at (0, 0) size 40") {
		t.Fatalf("unexpected drop placement:\n%s", out)
	}
	if !strings.Contains(out, "Background: https://example.com/sky.png") {
		t.Fatalf("background missing:\n%s", out)
	}
}

func TestHistoryRestoreAndNew(t *testing.T) {
	setupEnv(t)
	runCmd(t, "add", "🐸", "0", "0")
	runCmd(t, "add", "🐶", "5", "5")

	code, out := runCmd(t, "history")
	if code != 0 || !strings.Contains(out, "add emoji") {
		t.Fatalf("history: code=%d out=%q", code, out)
	}

	if code, out := runCmd(t, "new"); code != 0 {
		t.Fatalf("new: code=%d out=%q", code, out)
	}
	if _, out := runCmd(t, "show"); !strings.Contains(out, "Emojis: 0") {
		t.Fatalf("new did not clear:\n%s", out)
	}

	// the first revision holds only the frog
	if code, out := runCmd(t, "restore", "1"); code != 0 || !strings.Contains(out, "1 emojis") {
		t.Fatalf("restore: code=%d out=%q", code, out)
	}
	_, out = runCmd(t, "show")
	if !strings.Contains(out, "🐸") || strings.Contains(out, "🐶") {
		t.Fatalf("restore content wrong:\n%s", out)
	}
	if code, _ := runCmd(t, "restore", "999"); code != 1 {
		t.Fatalf("restoring a missing revision should fail, got %d", code)
	}
}

func TestReplayScript(t *testing.T) {
	dir := setupEnv(t)
	script := filepath.Join(dir, "tap.yaml")
	body := `
viewport: {width: 400, height: 400}
steps:
  - {op: drop, glyph: "🐸", x: 200, y: 200}
  - {op: down, pointer: 1, x: 200, y: 200, t: 10}
  - {op: up, pointer: 1, x: 200, y: 200, t: 50}
  - {op: expect, selected: [1], emojis: 1}
`
	if err := os.WriteFile(script, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out := runCmd(t, "replay", script)
	if code != 0 || !strings.Contains(out, "Replayed 4/4 steps, 1 checks") {
		t.Fatalf("replay: code=%d out=%q", code, out)
	}
	if _, out := runCmd(t, "show"); !strings.Contains(out, "Emojis: 1") {
		t.Fatalf("replayed drop not saved:\n%s", out)
	}
}

func TestExports(t *testing.T) {
	dir := setupEnv(t)
	runCmd(t, "add", "🐸", "0", "0")

	pngPath := filepath.Join(dir, "out.png")
	if code, out := runCmd(t, "export-png", pngPath, "128"); code != 0 {
		t.Fatalf("export-png: code=%d out=%q", code, out)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("png not decodable: %v", err)
	}

	pdfPath := filepath.Join(dir, "out.pdf")
	if code, out := runCmd(t, "export-pdf", pdfPath); code != 0 {
		t.Fatalf("export-pdf: code=%d out=%q", code, out)
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("pdf missing or malformed: %v", err)
	}

	code, out := runCmd(t, "export", "web", filepath.Join(dir, "web"))
	if code != 0 || !strings.Contains(out, ".png") {
		t.Fatalf("export web: code=%d out=%q", code, out)
	}
}

func TestSyncRequiresDSN(t *testing.T) {
	setupEnv(t)
	code, out := runCmd(t, "push")
	if code != 1 || !strings.Contains(out, config.EnvSyncDSN) {
		t.Fatalf("push without dsn: code=%d out=%q", code, out)
	}
	if code, _ := runCmd(t, "pull"); code != 1 {
		t.Fatalf("pull without dsn should fail, got %d", code)
	}
}

func TestRunFillsCrashTarget(t *testing.T) {
	setupEnv(t)
	var target crash.Target
	var out bytes.Buffer
	if code := run([]string{"show"}, &out, &target); code != 0 {
		t.Fatalf("show: %d %s", code, out.String())
	}
	if target.Store == nil || target.Source == nil {
		t.Fatalf("crash target not filled: %+v", target)
	}
}

func TestHistoryPathResolution(t *testing.T) {
	cfg := config.Defaults()
	doc := filepath.Join(string(filepath.Separator)+"data", "doc.emojiart")
	if got := historyPath(cfg, doc); got != storage.HistoryPath(doc) {
		t.Fatalf("default history path = %q", got)
	}
	cfg.Storage.History = "revs.db"
	if got := historyPath(cfg, doc); got != filepath.Join(filepath.Dir(doc), "revs.db") {
		t.Fatalf("relative history path = %q", got)
	}
}
