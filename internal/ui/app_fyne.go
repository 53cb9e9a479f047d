//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"emojiart/internal/geometry"
	"emojiart/internal/gesture"
	applog "emojiart/internal/log"
	"emojiart/internal/version"
)

// tickInterval drives long-press detection while a button is held.
const tickInterval = 100 * time.Millisecond

// Run starts the Fyne-based desktop shell and blocks until the window closes.
func Run(env Env) error {
	if env.Session == nil || env.Viewport == nil {
		return errors.New("ui: session and viewport are required")
	}
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	fyneApp := app.NewWithID("emojiart")
	title := env.Title
	if title == "" {
		title = "EmojiArt"
	}
	w := fyneApp.NewWindow(title)
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1000), 640)
	winH := max(prefs.IntWithFallback("window.height", 720), 480)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	s := env.Session
	cv := NewEmojiCanvas(s, env.Viewport)
	status := widget.NewLabel("")
	updateStatus := func() {
		c := s.Coordinator()
		txt := fmt.Sprintf("%d emoji · %d selected · zoom %.0f%%", len(s.Emojis()), len(c.Selection()), c.CommittedView().Zoom*100)
		if c.DeleteArmed() {
			txt += " · delete mode (long-press to exit)"
		}
		status.SetText(txt)
	}
	s.OnChange(func() {
		cv.Refresh()
		updateStatus()
	})
	updateStatus()

	// palette strip
	strip := container.NewHBox()
	var fillStrip func()
	dropAtCenter := func(item gesture.DropItem) {
		s.Coordinator().Drop([]gesture.DropItem{item}, env.Viewport.Size().Center())
	}
	fillStrip = func() {
		strip.RemoveAll()
		if env.Palettes == nil {
			return
		}
		p := env.Palettes.Current()
		for i, g := range p.Glyphs() {
			item, _ := p.DropItem(i)
			strip.Add(widget.NewButton(g, func() { dropAtCenter(item) }))
		}
		strip.Refresh()
	}
	var paletteSel *widget.Select
	if env.Palettes != nil {
		names := make([]string, 0, env.Palettes.Len())
		for _, p := range env.Palettes.Palettes() {
			names = append(names, p.Name)
		}
		paletteSel = widget.NewSelect(names, func(string) {
			env.Palettes.SetCursor(paletteSel.SelectedIndex())
			fillStrip()
		})
		paletteSel.SetSelectedIndex(env.Palettes.Cursor())
	}
	fillStrip()

	undoBtn := widget.NewButton("Undo", func() { s.Undo() })
	redoBtn := widget.NewButton("Redo", func() { s.Redo() })
	top := container.NewHBox(undoBtn, redoBtn)
	if paletteSel != nil {
		top.Add(paletteSel)
	}
	bottom := container.NewBorder(nil, nil, nil, nil, container.NewHScroll(strip))
	w.SetContent(container.NewBorder(top, container.NewVBox(bottom, status), nil, nil, cv))

	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { s.Undo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}, func(fyne.Shortcut) { s.Redo() })
	w.Canvas().SetOnTypedKey(func(k *fyne.KeyEvent) {
		if k.Name == fyne.KeyEscape {
			cv.input.Abort()
		}
	})

	// URLs and files dropped from the OS set the background.
	w.SetOnDropped(func(pos fyne.Position, uris []fyne.URI) {
		items := make([]gesture.DropItem, 0, len(uris))
		for _, u := range uris {
			items = append(items, gesture.DropItem{URL: u.String()})
		}
		origin := fyne.CurrentApp().Driver().AbsolutePositionForObject(cv)
		at := geometry.Point{X: float64(pos.X - origin.X), Y: float64(pos.Y - origin.Y)}
		if !s.Coordinator().Drop(items, at) {
			l.Info("drop ignored", slog.Int("items", len(uris)))
		}
	})

	stop := make(chan struct{})
	go func() {
		t := time.NewTicker(tickInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				fyne.Do(func() {
					if cv.input.Pressed() {
						cv.input.Tick()
					}
				})
			}
		}
	}()

	w.SetOnClosed(func() {
		close(stop)
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})
	w.ShowAndRun()
	if env.OnQuit != nil {
		env.OnQuit()
	}
	l.Info("UI closed")
	return nil
}
