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
	"emojiart/internal/domain"
	"emojiart/internal/geometry"
	"emojiart/internal/gesture"
)

// Item is one emoji as it should be drawn right now.
type Item struct {
	ID       int
	Glyph    string
	Rect     geometry.Rect
	Selected bool
	// Badge is the delete affordance; zero unless delete mode is armed.
	Badge geometry.Rect
}

// Frame is the display list for one paint.
type Frame struct {
	Background  string
	DeleteArmed bool
	View        gesture.View
	Items       []Item
}

// BuildFrame lays out emojis in paint order, applying the in-flight gesture
// preview to the emojis it affects.
func BuildFrame(emojis []domain.Emoji, background string, c *gesture.Coordinator) Frame {
	v := c.View()
	center := c.Center()
	f := Frame{Background: background, DeleteArmed: c.DeleteArmed(), View: v, Items: make([]Item, 0, len(emojis))}
	for _, e := range emojis {
		by, scale := c.Preview(e.ID)
		r := gesture.GlyphRect(e, center, v)
		it := Item{ID: e.ID, Glyph: e.Glyph, Rect: preview(r, by, scale), Selected: c.IsSelected(e.ID)}
		if f.DeleteArmed {
			it.Badge = preview(gesture.DeleteButtonRect(e, center, v), by, 1)
		}
		f.Items = append(f.Items, it)
	}
	return f
}

// preview scales r about its center and shifts it by the screen offset.
func preview(r geometry.Rect, by geometry.Offset, scale float64) geometry.Rect {
	if by.IsZero() && scale == 1 {
		return r
	}
	c := geometry.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}.Translate(by)
	return geometry.CenteredRect(c, r.W*scale, r.H*scale)
}
