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
	"emojiart/internal/domain"
	"emojiart/internal/geometry"
)

// GlyphRect is the on-screen box of an emoji for the given view.
func GlyphRect(e domain.Emoji, center geometry.Point, v View) geometry.Rect {
	side := float64(e.Size) * v.Zoom
	return geometry.CenteredRect(geometry.ToViewport(e.Position, center, v.Zoom, v.Pan), side, side)
}

// DeleteButtonRect is the on-screen box of the delete badge drawn at the
// upper-left of an emoji while delete mode is armed.
func DeleteButtonRect(e domain.Emoji, center geometry.Point, v View) geometry.Rect {
	s := float64(e.Size) * v.Zoom
	p := geometry.ToViewport(e.Position, center, v.Zoom, v.Pan)
	c := geometry.Point{X: p.X - s/2, Y: p.Y - s/1.4}
	return geometry.CenteredRect(c, s/2, s/2)
}

// HitTest returns the top-most emoji under p, or 0 for empty canvas. With
// buttons set the delete badges count as part of their emoji.
func HitTest(emojis []domain.Emoji, p, center geometry.Point, v View, buttons bool) int {
	for i := len(emojis) - 1; i >= 0; i-- {
		e := emojis[i]
		if GlyphRect(e, center, v).Contains(p) {
			return e.ID
		}
		if buttons && DeleteButtonRect(e, center, v).Contains(p) {
			return e.ID
		}
	}
	return 0
}

func (c *Coordinator) hit(p geometry.Point) int {
	return HitTest(c.model.Emojis(), p, c.Center(), c.view, c.deleteArmed)
}

func (c *Coordinator) exists(id int) bool {
	if id == 0 {
		return false
	}
	_, ok := c.model.Emoji(id)
	return ok
}
