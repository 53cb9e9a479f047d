/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package replay

import (
	"fmt"

	"emojiart/internal/geometry"
)

// Script is a recorded gesture session: a viewport plus timed input steps.
type Script struct {
	Viewport Viewport `yaml:"viewport"`
	Steps    []Step   `yaml:"steps"`
}

type Viewport struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Size returns the viewport, defaulting to 800x600.
func (v Viewport) Size() geometry.Size {
	if v.Width <= 0 || v.Height <= 0 {
		return geometry.Size{W: 800, H: 600}
	}
	return geometry.Size{W: v.Width, H: v.Height}
}

// Op names one kind of step.
type Op string

const (
	OpDown        Op = "down"
	OpMove        Op = "move"
	OpUp          Op = "up"
	OpCancel      Op = "cancel"
	OpTick        Op = "tick"
	OpPinchBegin  Op = "pinch-begin"
	OpPinchChange Op = "pinch-change"
	OpPinchEnd    Op = "pinch-end"
	OpPinchCancel Op = "pinch-cancel"
	OpDrop        Op = "drop"
	OpUndo        Op = "undo"
	OpRedo        Op = "redo"
	OpExpect      Op = "expect"
)

// Step is one input event. T is milliseconds since the script start; a step
// without T happens at the previous step's time. X and Y are viewport
// coordinates.
//
//   - down/move/up: Pointer, X, Y
//   - cancel: Pointer
//   - pinch-change/pinch-end: Scale
//   - drop: Glyph or URL at X, Y
//   - expect: any of Mode, Selected, Emojis, DeleteArmed
type Step struct {
	Op      Op      `yaml:"op"`
	T       int     `yaml:"t"`
	Pointer int     `yaml:"pointer"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Scale   float64 `yaml:"scale"`
	Glyph   string  `yaml:"glyph"`
	URL     string  `yaml:"url"`

	Mode        string `yaml:"mode"`
	Selected    []int  `yaml:"selected"`
	Emojis      *int   `yaml:"emojis"`
	DeleteArmed *bool  `yaml:"delete_armed"`

	// Line is the 1-based source line, set by Parse.
	Line int `yaml:"-"`
}

func (s Step) Point() geometry.Point { return geometry.Point{X: s.X, Y: s.Y} }

// Error represents a parse or replay error with position context.
type Error struct {
	Step    int // 0-based step index, -1 for script-level errors
	Line    int
	Message string
}

func (e Error) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("step %d (line %d): %s", e.Step+1, e.Line, e.Message)
}
