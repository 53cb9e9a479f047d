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

import "log/slog"

type pinchState struct {
	active bool
	// fromPointers is set when two tracked pointers drive the pinch; otherwise
	// the host feeds the scale through PinchBegin/PinchChange/PinchEnd.
	fromPointers bool
	a, b         PointerID
	initialDist  float64
}

func (p pinchState) involves(id PointerID) bool {
	return p.a == id || p.b == id
}

func (c *Coordinator) beginPointerPinch() {
	var ids []PointerID
	for id := range c.pointers {
		ids = append(ids, id)
	}
	a, b := c.pointers[ids[0]], c.pointers[ids[1]]
	c.consumeAll()
	c.pinch = pinchState{
		active:       true,
		fromPointers: true,
		a:            ids[0],
		b:            ids[1],
		initialDist:  a.last.Sub(b.last).Length(),
	}
	c.startPinch()
}

func (c *Coordinator) pinchScale() float64 {
	a, okA := c.pointers[c.pinch.a]
	b, okB := c.pointers[c.pinch.b]
	if !okA || !okB || c.pinch.initialDist <= 0 {
		return 1
	}
	return a.last.Sub(b.last).Length() / c.pinch.initialDist
}

// startPinch discards any drag in flight and targets the selection when there
// is one, the canvas otherwise.
func (c *Coordinator) startPinch() {
	c.transient = identity
	if c.sel.IsEmpty() {
		c.setMode(ModeCanvasTransform)
	} else {
		c.setMode(ModeGroupTransform)
	}
	c.changed()
}

// PinchBegin starts a host recognised magnification. It is ignored in delete
// mode.
func (c *Coordinator) PinchBegin() {
	if c.deleteArmed || c.pinch.active {
		return
	}
	c.consumeAll()
	c.pinch = pinchState{active: true}
	c.startPinch()
}

// PinchChange reports the cumulative magnification since PinchBegin.
func (c *Coordinator) PinchChange(scale float64) {
	if !c.pinch.active || c.pinch.fromPointers {
		return
	}
	c.transient.Zoom = scale
	c.changed()
}

// PinchEnd commits the final magnification.
func (c *Coordinator) PinchEnd(scale float64) {
	if !c.pinch.active || c.pinch.fromPointers {
		return
	}
	c.endPinch(scale)
	c.pinch = pinchState{}
}

// PinchCancel abandons a host pinch.
func (c *Coordinator) PinchCancel() {
	if !c.pinch.active || c.pinch.fromPointers {
		return
	}
	c.pinch = pinchState{}
	c.reset()
}

func (c *Coordinator) endPinch(scale float64) {
	c.transient.Zoom = scale
	c.commitPinch()
	c.pinch.active = false
	c.log.Debug("pinch ended", slog.Float64("scale", scale))
	c.transient = identity
	c.setMode(ModeIdle)
	c.changed()
}
