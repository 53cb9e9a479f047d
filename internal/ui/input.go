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
	"math"
	"time"

	"emojiart/internal/geometry"
	"emojiart/internal/gesture"
)

const mousePointer gesture.PointerID = 1

// DefaultWheelStep is the log-scale zoom per wheel unit.
const DefaultWheelStep = 0.002

// Input turns single-pointer desktop events into coordinator calls. Toolkits
// report the end of a press more than once (mouse up, drag end); only the
// first one counts.
type Input struct {
	c       *gesture.Coordinator
	now     func() time.Time
	pressed bool
	last    geometry.Point

	WheelStep float64
}

func NewInput(c *gesture.Coordinator) *Input {
	return &Input{c: c, now: time.Now, WheelStep: DefaultWheelStep}
}

func (in *Input) Pressed() bool { return in.pressed }

func (in *Input) Press(p geometry.Point) {
	if in.pressed {
		return
	}
	in.pressed = true
	in.last = p
	in.c.PointerDown(mousePointer, p, in.now())
}

func (in *Input) Move(p geometry.Point) {
	if !in.pressed {
		return
	}
	in.last = p
	in.c.PointerMove(mousePointer, p, in.now())
}

func (in *Input) Release(p geometry.Point) {
	if !in.pressed {
		return
	}
	in.pressed = false
	in.last = p
	in.c.PointerUp(mousePointer, p, in.now())
}

// ReleaseLast ends the press where the pointer was last seen.
func (in *Input) ReleaseLast() { in.Release(in.last) }

// Abort cancels the press without committing anything.
func (in *Input) Abort() {
	if !in.pressed {
		in.c.Cancel()
		return
	}
	in.pressed = false
	in.c.PointerCancel(mousePointer)
}

func (in *Input) Tick() { in.c.Tick(in.now()) }

// Wheel applies one scroll notch as a complete pinch: positive dy zooms in.
// It is ignored while the button is held.
func (in *Input) Wheel(dy float64) {
	if in.pressed || dy == 0 {
		return
	}
	scale := math.Exp(dy * in.WheelStep)
	in.c.PinchBegin()
	in.c.PinchChange(scale)
	in.c.PinchEnd(scale)
}
