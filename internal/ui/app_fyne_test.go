//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based canvas widget. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"emojiart/internal/editor"
	"emojiart/internal/geometry"
	"emojiart/internal/gesture"
)

func newCanvas(t *testing.T) (*EmojiCanvas, *editor.Session) {
	t.Helper()
	test.NewTempApp(t)
	vp := NewViewport(400, 400)
	s := editor.New(nil, editor.Options{Gesture: gesture.DefaultConfig(), Viewport: vp})
	cv := NewEmojiCanvas(s, vp)
	cv.Resize(fyne.NewSize(400, 400))
	return cv, s
}

func TestEmojiCanvas_ResizeUpdatesViewport(t *testing.T) {
	cv, _ := newCanvas(t)
	cv.Resize(fyne.NewSize(640, 480))
	if got := cv.vp.Size(); got != (geometry.Size{W: 640, H: 480}) {
		t.Fatalf("viewport = %+v", got)
	}
}

func TestEmojiCanvas_ClickSelects(t *testing.T) {
	cv, s := newCanvas(t)
	s.Coordinator().Drop([]gesture.DropItem{{Glyph: "🐝"}}, geometry.Point{X: 200, Y: 200})

	ev := &desktop.MouseEvent{Button: desktop.MouseButtonPrimary}
	ev.Position = fyne.NewPos(200, 200)
	cv.MouseDown(ev)
	cv.MouseUp(ev)
	cv.DragEnd() // a late drag end must not tap twice

	if sel := s.Selection(); len(sel) != 1 || sel[0] != 1 {
		t.Fatalf("selection = %v", sel)
	}
	r := cv.CreateRenderer()
	// background, label, glyph, selection box
	if n := len(r.Objects()); n != 4 {
		t.Fatalf("objects = %d, want 4", n)
	}
}
