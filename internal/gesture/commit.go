/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package gesture

import (
	"log/slog"

	"emojiart/internal/geometry"
)

// DropItem is one payload of a drop. A URL sets the background; a glyph adds
// an emoji. URLs take precedence within an item.
type DropItem struct {
	URL   string
	Glyph string
}

// Drop handles payloads dropped at a viewport point. The first item that
// carries a URL or a glyph wins. It reports whether anything was accepted.
func (c *Coordinator) Drop(items []DropItem, at geometry.Point) bool {
	for _, it := range items {
		switch {
		case it.URL != "":
			url := it.URL
			c.model.Update("set background", func(m Mutator) { m.SetBackground(url) })
			c.log.Info("background dropped", slog.String("url", url))
		case it.Glyph != "":
			pos := geometry.ToDocument(at, c.Center(), c.view.Zoom, c.view.Pan)
			size := c.cfg.PaletteGlyphSize / c.view.Zoom
			glyph := it.Glyph
			var id int
			c.model.Update("add emoji", func(m Mutator) { id = m.AddEmoji(glyph, pos, size) })
			c.log.Debug("emoji dropped", slog.Int("id", id), slog.Int("x", pos.X), slog.Int("y", pos.Y))
		default:
			continue
		}
		c.changed()
		return true
	}
	return false
}

// tap handles a press released inside the tap slop.
func (c *Coordinator) tap(hitID int) {
	live := c.exists(hitID)
	if c.deleteArmed {
		if live {
			c.model.Update("remove emoji", func(m Mutator) { m.Remove(hitID) })
			if c.sel.Contains(hitID) {
				c.sel.Toggle(hitID)
			}
			c.log.Debug("emoji removed", slog.Int("id", hitID))
		} else {
			c.deleteArmed = false
			c.sel.Clear()
			c.log.Debug("delete mode", slog.Bool("armed", false))
		}
		c.changed()
		return
	}
	if live {
		c.sel.Toggle(hitID)
	} else {
		c.sel.Clear()
	}
	c.changed()
}

func (c *Coordinator) commitDrag() {
	by := c.transient.Pan
	switch c.mode {
	case ModeCanvasTransform:
		c.view.Pan = c.view.Pan.Add(by)
	case ModeGroupTransform:
		ids := c.liveSelection()
		if by.IsZero() || len(ids) == 0 {
			return
		}
		zoom := c.view.Zoom
		c.model.Update("move emojis", func(m Mutator) {
			for _, id := range ids {
				m.Move(id, by, zoom)
			}
		})
	case ModeUnselectedDrag:
		id := c.transient.DraggedID
		if by.IsZero() || !c.exists(id) {
			return
		}
		zoom := c.view.Zoom
		c.model.Update("move emoji", func(m Mutator) { m.Move(id, by, zoom) })
	default:
		return
	}
	c.log.Debug("drag committed", slog.String("mode", c.mode.String()),
		slog.Float64("dx", by.DX), slog.Float64("dy", by.DY))
}

func (c *Coordinator) commitPinch() {
	scale := c.transient.Zoom
	if scale <= 0 {
		return
	}
	switch c.mode {
	case ModeCanvasTransform:
		c.view.Zoom = c.clampZoom(c.view.Zoom * scale)
	case ModeGroupTransform:
		ids := c.liveSelection()
		if scale == 1 || len(ids) == 0 {
			return
		}
		c.model.Update("resize emojis", func(m Mutator) {
			for _, id := range ids {
				m.Resize(id, scale)
			}
		})
	}
}

// liveSelection re-resolves the selection against the document right before
// a command is issued.
func (c *Coordinator) liveSelection() []int {
	ids := c.sel.IDs()
	live := ids[:0]
	for _, id := range ids {
		if c.exists(id) {
			live = append(live, id)
		}
	}
	return live
}
