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
	"time"

	"emojiart/internal/geometry"
)

// PointerID identifies one finger or mouse button stream.
type PointerID int

type pointer struct {
	start  geometry.Point
	last   geometry.Point
	downAt time.Time
	hitID  int
	// consumed pointers produce no tap or drag on release, e.g. after a long
	// press fired or a pinch took them over.
	consumed bool
}

const maxPointers = 2

// PointerDown starts tracking a pointer. A second pointer turns the gesture
// into a pinch and discards any drag in progress.
func (c *Coordinator) PointerDown(id PointerID, at geometry.Point, now time.Time) {
	if _, dup := c.pointers[id]; dup || len(c.pointers) >= maxPointers {
		return
	}
	ps := &pointer{start: at, last: at, downAt: now, hitID: c.hit(at)}
	c.pointers[id] = ps

	if len(c.pointers) == 1 {
		c.primary = id
		c.transient = identity
		c.setMode(ModePending)
		return
	}
	if c.deleteArmed || c.pinch.active {
		ps.consumed = true
		return
	}
	c.beginPointerPinch()
}

// PointerMove updates a tracked pointer.
func (c *Coordinator) PointerMove(id PointerID, at geometry.Point, now time.Time) {
	ps, ok := c.pointers[id]
	if !ok {
		return
	}
	ps.last = at

	if c.pinch.active && c.pinch.fromPointers {
		if c.pinch.involves(id) {
			c.transient.Zoom = c.pinchScale()
			c.changed()
		}
		return
	}
	if ps.consumed || id != c.primary {
		return
	}

	switch c.mode {
	case ModePending:
		if at.Sub(ps.start).Length() <= c.cfg.TapSlop {
			if c.longPressDue(ps, now) {
				c.fireLongPress(ps)
			}
			return
		}
		if c.deleteArmed {
			// no dragging while delete mode is armed
			ps.consumed = true
			c.setMode(ModeIdle)
			return
		}
		c.resolveDrag(ps)
		c.transient.Pan = at.Sub(ps.start)
		c.changed()
	case ModeCanvasTransform, ModeGroupTransform, ModeUnselectedDrag:
		c.transient.Pan = at.Sub(ps.start)
		c.changed()
	}
}

// PointerUp ends a pointer stream. Taps, drags and pinches commit here.
func (c *Coordinator) PointerUp(id PointerID, at geometry.Point, now time.Time) {
	ps, ok := c.pointers[id]
	if !ok {
		return
	}
	ps.last = at
	defer c.release(id)

	if c.pinch.active && c.pinch.fromPointers {
		if c.pinch.involves(id) {
			c.endPinch(c.pinchScale())
		}
		return
	}
	if ps.consumed || id != c.primary {
		return
	}

	switch c.mode {
	case ModePending:
		travel := at.Sub(ps.start).Length()
		switch {
		case travel > c.cfg.TapSlop && !c.deleteArmed:
			c.resolveDrag(ps)
			c.transient.Pan = at.Sub(ps.start)
			c.commitDrag()
		case travel > c.cfg.TapSlop:
			// a drag in delete mode is ignored
		case c.longPressDue(ps, now):
			c.fireLongPress(ps)
		default:
			c.tap(ps.hitID)
		}
	case ModeCanvasTransform, ModeGroupTransform, ModeUnselectedDrag:
		c.transient.Pan = at.Sub(ps.start)
		c.commitDrag()
	}
}

// PointerCancel abandons a pointer stream without committing anything.
func (c *Coordinator) PointerCancel(id PointerID) {
	if _, ok := c.pointers[id]; !ok {
		return
	}
	if c.pinch.active && c.pinch.fromPointers && c.pinch.involves(id) {
		c.log.Debug("pinch cancelled")
		c.pinch = pinchState{}
		c.consumeAll()
		c.transient = identity
	} else if id == c.primary && c.mode != ModeIdle {
		c.log.Debug("gesture cancelled", slog.String("mode", c.mode.String()))
		c.transient = identity
	}
	c.release(id)
}

// Tick lets a held pointer turn into a long press without further input.
func (c *Coordinator) Tick(now time.Time) {
	if c.mode != ModePending {
		return
	}
	ps, ok := c.pointers[c.primary]
	if !ok || ps.consumed {
		return
	}
	if c.longPressDue(ps, now) && ps.last.Sub(ps.start).Length() <= c.cfg.TapSlop {
		c.fireLongPress(ps)
	}
}

func (c *Coordinator) release(id PointerID) {
	delete(c.pointers, id)
	if len(c.pointers) > 0 {
		if c.mode != ModeIdle && !c.pinch.active {
			// the remaining pointer can not continue a gesture it did not start
			c.consumeAll()
			c.transient = identity
			c.setMode(ModeIdle)
			c.changed()
		}
		return
	}
	c.pinch = pinchState{}
	c.setMode(ModeIdle)
	c.transient = identity
	c.changed()
}

func (c *Coordinator) consumeAll() {
	for _, p := range c.pointers {
		p.consumed = true
	}
}

// longPressDue is false while delete mode is armed: a slow press there is
// still a tap, so it removes or exits instead of toggling the mode.
func (c *Coordinator) longPressDue(ps *pointer, now time.Time) bool {
	if c.deleteArmed {
		return false
	}
	return !now.Before(ps.downAt.Add(c.cfg.LongPress))
}

// fireLongPress arms delete mode. Leaving it is a tap on empty canvas.
func (c *Coordinator) fireLongPress(ps *pointer) {
	ps.consumed = true
	c.deleteArmed = true
	c.log.Debug("delete mode", slog.Bool("armed", true))
	c.transient = identity
	c.setMode(ModeIdle)
	c.changed()
}

// resolveDrag picks the drag target once the pointer leaves the tap slop: an
// unselected emoji under the pointer drags alone, otherwise a non-empty
// selection moves as a group, otherwise the canvas pans.
func (c *Coordinator) resolveDrag(ps *pointer) {
	c.transient = identity
	switch {
	case ps.hitID != 0 && c.exists(ps.hitID) && !c.sel.Contains(ps.hitID):
		c.transient.DraggedID = ps.hitID
		c.setMode(ModeUnselectedDrag)
	case !c.sel.IsEmpty():
		c.setMode(ModeGroupTransform)
	default:
		c.setMode(ModeCanvasTransform)
	}
}
