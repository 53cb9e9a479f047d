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
	"testing"
	"time"

	"emojiart/internal/editor"
	"emojiart/internal/geometry"
	"emojiart/internal/gesture"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(ms int) { c.t = c.t.Add(time.Duration(ms) * time.Millisecond) }

func newInput(t *testing.T) (*Input, *editor.Session, *clock) {
	t.Helper()
	vp := NewViewport(400, 400)
	s := editor.New(nil, editor.Options{Gesture: gesture.DefaultConfig(), Viewport: vp})
	clk := &clock{t: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	in := NewInput(s.Coordinator())
	in.now = clk.now
	return in, s, clk
}

var mid = geometry.Point{X: 200, Y: 200}

func TestInputReleaseCountsOnce(t *testing.T) {
	in, s, clk := newInput(t)
	s.Coordinator().Drop([]gesture.DropItem{{Glyph: "🍕"}}, mid)

	in.Press(mid)
	clk.advance(30)
	in.Release(mid)
	in.ReleaseLast()
	if got := s.Selection(); len(got) != 1 {
		t.Fatalf("selection after one click = %v", got)
	}
}

func TestInputDragMovesEmoji(t *testing.T) {
	in, s, clk := newInput(t)
	s.Coordinator().Drop([]gesture.DropItem{{Glyph: "🍕"}}, mid)

	in.Move(geometry.Point{X: 1, Y: 1}) // ignored while not pressed
	in.Press(mid)
	clk.advance(20)
	in.Move(geometry.Point{X: 220, Y: 180})
	clk.advance(20)
	in.Move(geometry.Point{X: 240, Y: 160})
	in.ReleaseLast()

	e, _ := s.Emoji(1)
	if e.Position != (geometry.Position{X: 40, Y: 40}) {
		t.Fatalf("position = %+v, want {40 40}", e.Position)
	}
	if len(s.Selection()) != 0 {
		t.Fatalf("dragging an unselected emoji must not select it")
	}
}

func TestInputLongPressArmsDelete(t *testing.T) {
	in, s, clk := newInput(t)
	in.Press(mid)
	clk.advance(500)
	in.Tick()
	if s.Coordinator().DeleteArmed() {
		t.Fatalf("armed too early")
	}
	clk.advance(600)
	in.Tick()
	if !s.Coordinator().DeleteArmed() {
		t.Fatalf("long press did not arm delete mode")
	}
	in.ReleaseLast()
}

func TestInputWheelZoomsCanvas(t *testing.T) {
	in, s, _ := newInput(t)
	in.Wheel(100)
	z := s.Coordinator().CommittedView().Zoom
	if z <= 1 {
		t.Fatalf("zoom = %v, want > 1", z)
	}
	in.Press(mid)
	in.Wheel(100)
	if s.Coordinator().CommittedView().Zoom != z {
		t.Fatalf("wheel applied while pressed")
	}
	in.Abort()
	if in.Pressed() || s.Coordinator().Mode() != gesture.ModeIdle {
		t.Fatalf("abort left state %v", s.Coordinator().Mode())
	}
}
