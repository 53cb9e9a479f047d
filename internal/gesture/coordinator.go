/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package gesture resolves raw pointer input over the composition into
// document commands.
//
// The Coordinator owns every in-flight value (drag translation, pinch scale,
// the single unselected emoji being dragged, delete mode) and commits at most
// one coherent mutation per gesture end. It never touches document fields: all
// changes go through the Mutator handed out by Model.Update, and selection
// changes are limited to Toggle and Clear. It is not safe for concurrent use;
// feed it from the UI thread.
package gesture

import (
	"log/slog"
	"time"

	"emojiart/internal/domain"
	"emojiart/internal/geometry"
	applog "emojiart/internal/log"
	"emojiart/internal/selection"
)

// Mutator is the command surface of the document.
type Mutator interface {
	AddEmoji(glyph string, at geometry.Position, size float64) int
	Move(id int, by geometry.Offset, zoom float64)
	Resize(id int, factor float64)
	Remove(id int)
	SetBackground(url string)
}

// Model is the document as seen by the coordinator. Emojis returns the paint
// ordered list and must not be retained across commands. Update runs fn as one
// atomic batch: observers never see a half-applied group transform.
type Model interface {
	Emojis() []domain.Emoji
	Emoji(id int) (domain.Emoji, bool)
	Update(label string, fn func(Mutator))
}

// Viewport is queried on every use; the coordinator never caches its size.
type Viewport interface {
	Size() geometry.Size
}

// ViewportFunc adapts a function to Viewport.
type ViewportFunc func() geometry.Size

func (f ViewportFunc) Size() geometry.Size { return f() }

// Config tunes gesture recognition.
type Config struct {
	// TapSlop is the travel in screen pixels below which a press is a tap.
	TapSlop float64
	// LongPress is the hold duration that toggles delete mode.
	LongPress time.Duration
	// PaletteGlyphSize is the on-screen size of palette glyphs; drops divide it
	// by the zoom so inserted glyphs match what was dragged.
	PaletteGlyphSize float64
	MinZoom          float64
	MaxZoom          float64
}

func DefaultConfig() Config {
	return Config{
		TapSlop:          6,
		LongPress:        time.Second,
		PaletteGlyphSize: 40,
		MinZoom:          0.05,
		MaxZoom:          20,
	}
}

// Mode is the active gesture. Delete mode is tracked separately since it is
// modal and outlives individual gestures.
type Mode int

const (
	ModeIdle Mode = iota
	// ModePending: a pointer is down but tap, drag and long press are still undecided.
	ModePending
	ModeCanvasTransform
	ModeGroupTransform
	ModeUnselectedDrag
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePending:
		return "pending"
	case ModeCanvasTransform:
		return "canvas"
	case ModeGroupTransform:
		return "group"
	case ModeUnselectedDrag:
		return "unselected-drag"
	default:
		return "unknown"
	}
}

// View is the persistent viewport state. It belongs to the editor view, not
// to the document.
type View struct {
	Zoom float64
	Pan  geometry.Pan
}

// Transient holds the in-flight gesture values. Zoom is 1 and Pan is zero
// when nothing is in motion.
type Transient struct {
	Pan       geometry.Offset
	Zoom      float64
	DraggedID int
}

var identity = Transient{Zoom: 1}

// Coordinator is the gesture state machine.
type Coordinator struct {
	cfg      Config
	model    Model
	viewport Viewport
	sel      *selection.Set
	log      *slog.Logger

	view        View
	mode        Mode
	deleteArmed bool
	transient   Transient

	pointers map[PointerID]*pointer
	primary  PointerID
	pinch    pinchState

	// OnChange is called after every visible state change (transient values,
	// selection, delete mode, view or a commit).
	OnChange func()
}

// New creates a coordinator. A nil selection gets a fresh empty set.
func New(cfg Config, model Model, vp Viewport, sel *selection.Set) *Coordinator {
	def := DefaultConfig()
	if cfg.TapSlop <= 0 {
		cfg.TapSlop = def.TapSlop
	}
	if cfg.LongPress <= 0 {
		cfg.LongPress = def.LongPress
	}
	if cfg.PaletteGlyphSize <= 0 {
		cfg.PaletteGlyphSize = def.PaletteGlyphSize
	}
	if cfg.MinZoom <= 0 {
		cfg.MinZoom = def.MinZoom
	}
	if cfg.MaxZoom < cfg.MinZoom {
		cfg.MaxZoom = def.MaxZoom
	}
	if sel == nil {
		sel = &selection.Set{}
	}
	return &Coordinator{
		cfg:       cfg,
		model:     model,
		viewport:  vp,
		sel:       sel,
		log:       applog.WithComponent("gesture"),
		view:      View{Zoom: 1},
		transient: identity,
		pointers:  make(map[PointerID]*pointer),
	}
}

func (c *Coordinator) Config() Config { return c.cfg }

func (c *Coordinator) Mode() Mode { return c.mode }

// DeleteArmed reports whether delete mode is active.
func (c *Coordinator) DeleteArmed() bool { return c.deleteArmed }

func (c *Coordinator) Transient() Transient { return c.transient }

// Selection returns the selected ids in ascending order.
func (c *Coordinator) Selection() []int { return c.sel.IDs() }

func (c *Coordinator) IsSelected(id int) bool { return c.sel.Contains(id) }

// CommittedView returns the view without any in-flight canvas gesture.
func (c *Coordinator) CommittedView() View { return c.view }

// View returns the view to render, including an in-flight canvas pan or zoom.
func (c *Coordinator) View() View {
	if c.mode != ModeCanvasTransform {
		return c.view
	}
	return View{
		Zoom: c.view.Zoom * c.transient.Zoom,
		Pan:  c.view.Pan.Add(c.transient.Pan),
	}
}

// SetView replaces the committed view, e.g. when restoring editor state.
func (c *Coordinator) SetView(v View) {
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	c.view = View{Zoom: c.clampZoom(v.Zoom), Pan: v.Pan}
	c.changed()
}

// Preview returns the live offset and scale to apply to one emoji while a
// gesture is in flight.
func (c *Coordinator) Preview(id int) (geometry.Offset, float64) {
	switch c.mode {
	case ModeGroupTransform:
		if c.sel.Contains(id) {
			return c.transient.Pan, c.transient.Zoom
		}
	case ModeUnselectedDrag:
		if id == c.transient.DraggedID {
			return c.transient.Pan, 1
		}
	}
	return geometry.Offset{}, 1
}

// Center is the viewport center as currently reported by the viewport.
func (c *Coordinator) Center() geometry.Point {
	if c.viewport == nil {
		return geometry.Point{}
	}
	return c.viewport.Size().Center()
}

// Reconcile drops selected ids that no longer exist in the document, e.g.
// after an undo or a reload replaced it.
func (c *Coordinator) Reconcile() {
	dirty := false
	for _, id := range c.sel.IDs() {
		if _, ok := c.model.Emoji(id); !ok {
			c.sel.Toggle(id)
			dirty = true
		}
	}
	if c.mode == ModeUnselectedDrag {
		if _, ok := c.model.Emoji(c.transient.DraggedID); !ok {
			c.Cancel()
			return
		}
	}
	if dirty {
		c.changed()
	}
}

// Cancel abandons every in-flight gesture without committing anything.
func (c *Coordinator) Cancel() {
	for id := range c.pointers {
		delete(c.pointers, id)
	}
	c.pinch = pinchState{}
	c.reset()
}

func (c *Coordinator) reset() {
	c.mode = ModeIdle
	c.transient = identity
	c.changed()
}

func (c *Coordinator) setMode(m Mode) {
	if c.mode == m {
		return
	}
	c.log.Debug("mode", slog.String("from", c.mode.String()), slog.String("to", m.String()))
	c.mode = m
}

func (c *Coordinator) clampZoom(z float64) float64 {
	if z < c.cfg.MinZoom {
		return c.cfg.MinZoom
	}
	if z > c.cfg.MaxZoom {
		return c.cfg.MaxZoom
	}
	return z
}

func (c *Coordinator) changed() {
	if c.OnChange != nil {
		c.OnChange()
	}
}
