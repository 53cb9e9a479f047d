/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package geometry

import "testing"

func TestToViewportFlipsY(t *testing.T) {
	c := Point{X: 400, Y: 300}
	got := ToViewport(Position{X: 10, Y: 20}, c, 2, Pan{X: 5, Y: 7})
	want := Point{X: 400 + 5 + 20, Y: 300 - 7 - 40}
	if got != want {
		t.Fatalf("ToViewport = %+v, want %+v", got, want)
	}
}

func TestToDocumentInvertsToViewport(t *testing.T) {
	c := Point{X: 320, Y: 240}
	cases := []struct {
		pos  Position
		zoom float64
		pan  Pan
	}{
		{Position{0, 0}, 1, Pan{}},
		{Position{15, -40}, 1, Pan{X: 12, Y: -3}},
		{Position{-100, 77}, 2.5, Pan{X: -30, Y: 8}},
		{Position{3, 3}, 0.5, Pan{}},
	}
	for _, tc := range cases {
		s := ToViewport(tc.pos, c, tc.zoom, tc.pan)
		if got := ToDocument(s, c, tc.zoom, tc.pan); got != tc.pos {
			t.Fatalf("round trip of %+v at zoom %v pan %+v gave %+v", tc.pos, tc.zoom, tc.pan, got)
		}
	}
}

func TestToDocumentTruncatesTowardZero(t *testing.T) {
	c := Point{}
	// x: 5/2 = 2.5 -> 2, y: -5/2 = -2.5 -> -2
	got := ToDocument(Point{X: 5, Y: 5}, c, 2, Pan{})
	if got != (Position{X: 2, Y: -2}) {
		t.Fatalf("ToDocument = %+v, want {2 -2}", got)
	}
	if got := ToDocument(Point{X: 5, Y: 5}, c, 0, Pan{}); got != Zero {
		t.Fatalf("zero zoom should map to origin, got %+v", got)
	}
}

func TestOffsetPosition(t *testing.T) {
	cases := []struct {
		name string
		p    Position
		by   Offset
		zoom float64
		want Position
	}{
		{"unit zoom flips y once", Position{}, Offset{DX: 10, DY: -10}, 1, Position{X: 10, Y: 10}},
		{"zoom divides", Position{X: 1, Y: 1}, Offset{DX: 10, DY: 10}, 2, Position{X: 6, Y: -4}},
		{"truncates toward zero", Position{}, Offset{DX: 5, DY: -5}, 2, Position{X: 2, Y: 2}},
		{"zero offset", Position{X: 7, Y: -3}, Offset{}, 3.3, Position{X: 7, Y: -3}},
		{"bad zoom", Position{X: 7, Y: -3}, Offset{DX: 1}, 0, Position{X: 7, Y: -3}},
	}
	for _, tc := range cases {
		if got := OffsetPosition(tc.p, tc.by, tc.zoom); got != tc.want {
			t.Fatalf("%s: OffsetPosition = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestPanAddFollowsScreenDrag(t *testing.T) {
	got := Pan{X: 1, Y: 1}.Add(Offset{DX: 10, DY: 20})
	if got != (Pan{X: 11, Y: -19}) {
		t.Fatalf("Pan.Add = %+v", got)
	}
	// The origin must follow the finger on screen.
	c := Point{X: 100, Y: 100}
	before := ToViewport(Zero, c, 1, Pan{})
	after := ToViewport(Zero, c, 1, Pan{}.Add(Offset{DX: 10, DY: 20}))
	if d := after.Sub(before); d != (Offset{DX: 10, DY: 20}) {
		t.Fatalf("origin moved by %+v, want {10 20}", d)
	}
}

func TestRectContains(t *testing.T) {
	r := CenteredRect(Point{X: 10, Y: 10}, 4, 4)
	if !r.Contains(Point{X: 12, Y: 8}) || r.Contains(Point{X: 12.5, Y: 10}) {
		t.Fatalf("unexpected containment for %+v", r)
	}
}
