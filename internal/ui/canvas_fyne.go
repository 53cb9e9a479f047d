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
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"emojiart/internal/editor"
	"emojiart/internal/geometry"
)

// EmojiCanvas draws the document and feeds mouse input to the coordinator.
type EmojiCanvas struct {
	widget.BaseWidget
	session *editor.Session
	vp      *Viewport
	input   *Input
}

var (
	_ desktop.Mouseable = (*EmojiCanvas)(nil)
	_ fyne.Draggable    = (*EmojiCanvas)(nil)
	_ fyne.Scrollable   = (*EmojiCanvas)(nil)
)

func NewEmojiCanvas(s *editor.Session, vp *Viewport) *EmojiCanvas {
	ec := &EmojiCanvas{session: s, vp: vp, input: NewInput(s.Coordinator())}
	ec.ExtendBaseWidget(ec)
	return ec
}

func point(p fyne.Position) geometry.Point { return geometry.Point{X: float64(p.X), Y: float64(p.Y)} }

func (ec *EmojiCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	ec.input.Press(point(e.Position))
}

func (ec *EmojiCanvas) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	ec.input.Release(point(e.Position))
}

func (ec *EmojiCanvas) Dragged(e *fyne.DragEvent) { ec.input.Move(point(e.Position)) }

func (ec *EmojiCanvas) DragEnd() { ec.input.ReleaseLast() }

// Scrolled zooms the canvas, or resizes the selection when there is one.
func (ec *EmojiCanvas) Scrolled(e *fyne.ScrollEvent) { ec.input.Wheel(float64(e.Scrolled.DY)) }

func (ec *EmojiCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func (ec *EmojiCanvas) Resize(size fyne.Size) {
	ec.vp.Set(geometry.Size{W: float64(size.Width), H: float64(size.Height)})
	ec.BaseWidget.Resize(size)
}

func (ec *EmojiCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.White)
	bgLabel := canvas.NewText("", color.RGBA{R: 120, G: 120, B: 120, A: 255})
	bgLabel.TextSize = 11
	r := &emojiCanvasRenderer{ec: ec, bg: bg, bgLabel: bgLabel}
	r.Refresh()
	return r
}

var (
	selectionColor = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	badgeColor     = color.RGBA{R: 220, G: 40, B: 40, A: 255}
)

type emojiCanvasRenderer struct {
	ec      *EmojiCanvas
	bg      *canvas.Rectangle
	bgLabel *canvas.Text
	objects []fyne.CanvasObject
}

func (r *emojiCanvasRenderer) Destroy()                     {}
func (r *emojiCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *emojiCanvasRenderer) MinSize() fyne.Size           { return r.ec.MinSize() }

func (r *emojiCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	r.bgLabel.Move(fyne.NewPos(6, 4))
}

// Refresh rebuilds the object list from a fresh frame; documents are small
// enough that diffing is not worth it.
func (r *emojiCanvasRenderer) Refresh() {
	s := r.ec.session
	f := BuildFrame(s.Emojis(), s.Background(), s.Coordinator())
	r.bgLabel.Text = f.Background
	objs := []fyne.CanvasObject{r.bg, r.bgLabel}
	for _, it := range f.Items {
		txt := canvas.NewText(it.Glyph, color.Black)
		txt.TextSize = float32(it.Rect.H * 0.8)
		txt.Alignment = fyne.TextAlignCenter
		place(txt, it.Rect)
		objs = append(objs, txt)
		if it.Selected {
			box := canvas.NewRectangle(color.Transparent)
			box.StrokeColor = selectionColor
			box.StrokeWidth = 2
			place(box, it.Rect)
			objs = append(objs, box)
		}
		if f.DeleteArmed {
			badge := canvas.NewCircle(badgeColor)
			place(badge, it.Badge)
			x := canvas.NewText("✕", color.White)
			x.TextSize = float32(it.Badge.H * 0.7)
			x.Alignment = fyne.TextAlignCenter
			place(x, it.Badge)
			objs = append(objs, badge, x)
		}
	}
	r.objects = objs
	r.Layout(r.ec.Size())
	canvas.Refresh(r.ec)
}

func place(o fyne.CanvasObject, rc geometry.Rect) {
	o.Move(fyne.NewPos(float32(rc.X), float32(rc.Y)))
	o.Resize(fyne.NewSize(float32(rc.W), float32(rc.H)))
}
