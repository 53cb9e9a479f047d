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
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"emojiart/internal/backend"
	"emojiart/internal/config"
	"emojiart/internal/crash"
	"emojiart/internal/domain"
	"emojiart/internal/export"
	"emojiart/internal/geometry"
	"emojiart/internal/gesture"
	applog "emojiart/internal/log"
	"emojiart/internal/palette"
	"emojiart/internal/replay"
	"emojiart/internal/storage"
	"emojiart/internal/ui"
	"emojiart/internal/version"
)

// errUsage marks bad invocations; they exit with status 2.
var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprintln(w, "EmojiArt - compose pictures from emoji")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  emojiart version|-v|--version          Show version")
	fmt.Fprintln(w, "  emojiart new                           Start an empty document (the old one stays in history)")
	fmt.Fprintln(w, "  emojiart show                          Print the document")
	fmt.Fprintln(w, "  emojiart add <emoji> <x> <y> [size]    Place an emoji at document coordinates")
	fmt.Fprintln(w, "  emojiart drop <emoji|url> [<x> <y>]    Drop onto the viewport (default: its center)")
	fmt.Fprintln(w, "  emojiart replay <script.yaml>          Feed a gesture script to the editor")
	fmt.Fprintln(w, "  emojiart history [limit]               List saved revisions")
	fmt.Fprintln(w, "  emojiart restore <revision>            Restore a revision")
	fmt.Fprintln(w, "  emojiart export-pdf <out.pdf>          Export as PDF")
	fmt.Fprintln(w, "  emojiart export-png <out.png> [side]   Export a PNG thumbnail")
	fmt.Fprintln(w, "  emojiart export <web|print> <dir>      Export with a preset")
	fmt.Fprintln(w, "  emojiart push                          Upload the document to the sync database")
	fmt.Fprintln(w, "  emojiart pull                          Replace the document with the synced copy")
	fmt.Fprintln(w, "  emojiart ui                            Launch desktop UI (build with -tags fyne for full UI)")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Environment: %s, %s, %s, %s\n", config.EnvConfigPath, config.EnvDataDir, config.EnvDocument, config.EnvSyncDSN)
}

func main() {
	var target crash.Target
	defer crash.Recover(&target)

	if code := run(os.Args[1:], os.Stdout, &target); code != 0 {
		os.Exit(code)
	}
}

// run executes one command and returns the process exit status.
func run(args []string, out io.Writer, target *crash.Target) int {
	cfg, syncPassword, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	l.Debug("start", slog.Int("args", len(args)))
	if cfgErr != nil {
		// keep going on defaults; a broken config must not lock the user out
		l.Warn("config not loaded", slog.Any("err", cfgErr))
		fmt.Fprintln(out, "Warning:", cfgErr)
	}

	if len(args) == 0 {
		usage(out)
		return 0
	}
	cmd := args[0]
	switch cmd {
	case "version", "--version", "-v":
		fmt.Fprintln(out, "EmojiArt")
		fmt.Fprintln(out, version.String())
		return 0
	case "help", "--help", "-h":
		usage(out)
		return 0
	}

	ctx := context.Background()
	a, err := openApp(ctx, cfg, target)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	ctx = applog.WithDocument(ctx, a.docPath)

	err = dispatch(ctx, a, cmd, args[1:], syncPassword, out)
	if cerr := a.close(ctx); cerr != nil {
		l.ErrorContext(ctx, "close failed", slog.Any("err", cerr))
		if err == nil {
			err = cerr
		}
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(out, err)
		usage(out)
		return 2
	default:
		l.ErrorContext(ctx, cmd+" failed", slog.Any("err", err))
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
}

func dispatch(ctx context.Context, a *app, cmd string, args []string, syncPassword string, out io.Writer) error {
	switch cmd {
	case "new":
		a.session.Restore("new document", domain.NewDocument())
		fmt.Fprintln(out, "Started an empty document at", a.docPath)
		return nil
	case "show":
		return show(a, out)
	case "add":
		return add(a, args, out)
	case "drop":
		return drop(a, args, out)
	case "replay":
		if len(args) < 1 {
			return fmt.Errorf("%w: replay requires <script.yaml>", errUsage)
		}
		return runReplay(a, args[0], out)
	case "history":
		return history(ctx, a, args, out)
	case "restore":
		return restore(ctx, a, args, out)
	case "export-pdf":
		if len(args) < 1 {
			return fmt.Errorf("%w: export-pdf requires <out.pdf>", errUsage)
		}
		d := a.session.Snapshot()
		opt := export.DefaultPDFOptions()
		opt.Title = strings.TrimSuffix(filepath.Base(a.docPath), filepath.Ext(a.docPath))
		if err := export.PDF(&d, args[0], opt); err != nil {
			return err
		}
		fmt.Fprintln(out, "Wrote", args[0])
		return nil
	case "export-png":
		return exportPNG(a, args, out)
	case "export":
		return exportPreset(a, args, out)
	case "push":
		return push(ctx, a, syncPassword, out)
	case "pull":
		return pull(ctx, a, syncPassword, out)
	case "ui":
		return ui.Run(ui.Env{
			Title:    "EmojiArt - " + filepath.Base(a.docPath),
			Session:  a.session,
			Palettes: a.palettes(),
			Viewport: a.viewport,
		})
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func show(a *app, out io.Writer) error {
	fmt.Fprintln(out, "Document:", a.docPath)
	if err := a.session.Recovered(); err != nil {
		fmt.Fprintln(out, "Recovered: stored file was unreadable:", err)
	}
	if bg := a.session.Background(); bg != "" {
		fmt.Fprintln(out, "Background:", bg)
	}
	emojis := a.session.Emojis()
	fmt.Fprintf(out, "Emojis: %d\n", len(emojis))
	for _, e := range emojis {
		fmt.Fprintf(out, "  #%d %s at (%d, %d) size %d  [%s]\n",
			e.ID, e.Glyph, e.Position.X, e.Position.Y, e.Size, export.Codepoints(e.Glyph))
	}
	return nil
}

func add(a *app, args []string, out io.Writer) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: add requires <emoji> <x> <y>", errUsage)
	}
	glyph := args[0]
	if !palette.IsEmoji(glyph) {
		return fmt.Errorf("%q is not a single emoji", glyph)
	}
	x, errX := strconv.Atoi(args[1])
	y, errY := strconv.Atoi(args[2])
	if errX != nil || errY != nil {
		return fmt.Errorf("%w: coordinates must be integers", errUsage)
	}
	size := a.cfg.Editor.PaletteGlyphSize
	if len(args) > 3 {
		v, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("%w: size must be a number", errUsage)
		}
		size = v
	}
	var id int
	a.session.Update("add emoji", func(m gesture.Mutator) {
		id = m.AddEmoji(glyph, geometry.Position{X: x, Y: y}, size)
	})
	fmt.Fprintf(out, "Added #%d %s\n", id, glyph)
	return nil
}

func drop(a *app, args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: drop requires <emoji|url>", errUsage)
	}
	at := a.viewport.Size().Center()
	if len(args) >= 3 {
		x, errX := strconv.ParseFloat(args[1], 64)
		y, errY := strconv.ParseFloat(args[2], 64)
		if errX != nil || errY != nil {
			return fmt.Errorf("%w: drop point must be numeric", errUsage)
		}
		at = geometry.Point{X: x, Y: y}
	}
	item := gesture.DropItem{Glyph: args[0]}
	if isURL(args[0]) {
		item = gesture.DropItem{URL: args[0]}
	}
	if !a.session.Coordinator().Drop([]gesture.DropItem{item}, at) {
		return errors.New("nothing to drop")
	}
	if item.URL != "" {
		fmt.Fprintln(out, "Background set to", item.URL)
	} else {
		fmt.Fprintln(out, "Dropped", item.Glyph)
	}
	return nil
}

func isURL(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "data:")
}

func runReplay(a *app, path string, out io.Writer) error {
	sc, err := replay.Load(path)
	if err != nil {
		return err
	}
	a.viewport.Set(sc.Viewport.Size())
	res, err := replay.Run(a.session, sc, time.Now())
	fmt.Fprintf(out, "Replayed %d/%d steps, %d checks, %s script time\n",
		res.Steps, len(sc.Steps), res.Checks, res.Elapsed)
	return err
}

func history(ctx context.Context, a *app, args []string, out io.Writer) error {
	if a.history == nil {
		return errors.New("history is unavailable")
	}
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: limit must be a positive integer", errUsage)
		}
		limit = n
	}
	revs, err := a.history.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		fmt.Fprintln(out, "No revisions yet")
		return nil
	}
	for _, r := range revs {
		fmt.Fprintf(out, "%6d  %s  %-20s %4d emojis  session %s\n",
			r.ID, r.TS.Local().Format(time.DateTime), r.Label, r.Emojis, r.Session)
	}
	return nil
}

func restore(ctx context.Context, a *app, args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: restore requires <revision>", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: revision must be an integer", errUsage)
	}
	if a.history == nil {
		return errors.New("history is unavailable")
	}
	d, err := a.history.Get(ctx, id)
	if err != nil {
		return err
	}
	a.session.Restore(fmt.Sprintf("restore revision %d", id), d)
	fmt.Fprintf(out, "Restored revision %d (%d emojis)\n", id, len(d.Emojis))
	return nil
}

func exportPNG(a *app, args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: export-png requires <out.png>", errUsage)
	}
	opt := export.DefaultPNGOptions()
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: side must be a positive integer", errUsage)
		}
		opt.MaxSide = n
	}
	d := a.session.Snapshot()
	if err := export.WritePNG(&d, args[0], opt); err != nil {
		return err
	}
	fmt.Fprintln(out, "Wrote", args[0])
	return nil
}

func exportPreset(a *app, args []string, out io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: export requires <web|print> <dir>", errUsage)
	}
	d := a.session.Snapshot()
	paths, err := export.BatchExport(&d, export.BatchOptions{
		Preset: export.PresetName(args[0]),
		Name:   strings.TrimSuffix(filepath.Base(a.docPath), filepath.Ext(a.docPath)),
		OutDir: args[1],
	})
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(out, "Wrote", p)
	}
	return nil
}

// syncStore connects to the sync database. The caller closes the returned DB.
func syncStore(ctx context.Context, a *app, password string) (*backend.PGStore, func(), error) {
	if strings.TrimSpace(a.cfg.Sync.DSN) == "" {
		return nil, nil, fmt.Errorf("sync is not configured (set sync.dsn or %s)", config.EnvSyncDSN)
	}
	db, err := backend.Open(ctx, a.cfg.Sync.DSN, password)
	if err != nil {
		return nil, nil, err
	}
	return backend.NewPGStore(db, a.cfg.Sync.DocumentName), func() { _ = db.Close() }, nil
}

func push(ctx context.Context, a *app, password string, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Sync.Timeout())
	defer cancel()
	st, closeDB, err := syncStore(ctx, a, password)
	if err != nil {
		return err
	}
	defer closeDB()
	d := a.session.Snapshot()
	rev, err := st.Push(ctx, &d)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Pushed %q revision %d\n", st.Name, rev)
	return nil
}

func pull(ctx context.Context, a *app, password string, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Sync.Timeout())
	defer cancel()
	st, closeDB, err := syncStore(ctx, a, password)
	if err != nil {
		return err
	}
	defer closeDB()
	d, err := st.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no synced document named %q", st.Name)
	}
	if err != nil {
		// a corrupt remote copy must not replace a good local one
		return err
	}
	a.session.Restore("pull "+st.Name, d)
	fmt.Fprintf(out, "Pulled %q (%d emojis)\n", st.Name, len(d.Emojis))
	return nil
}
