/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package geometry maps between document space and viewport space.
//
// Document space is integer based with the origin at the viewport center and
// Y growing upwards. Viewport (screen) space is float based with Y growing
// downwards. Every conversion applies the Y flip exactly once.
package geometry

import "math"

// Position is a point in document space.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Zero is the canonical document origin.
var Zero = Position{}

// Point is a point in viewport space.
type Point struct{ X, Y float64 }

// Offset is a translation in viewport space (Y down), e.g. a drag.
type Offset struct{ DX, DY float64 }

// Pan is the persistent viewport pan. It is expressed in screen units but
// with Y pointing up, like document space.
type Pan struct{ X, Y float64 }

// Size is a width/height pair in viewport space.
type Size struct{ W, H float64 }

// Center returns the midpoint of a viewport of this size.
func (s Size) Center() Point { return Point{X: s.W / 2, Y: s.H / 2} }

// Sub returns the translation from o to p.
func (p Point) Sub(o Point) Offset { return Offset{DX: p.X - o.X, DY: p.Y - o.Y} }

// Translate moves p by o.
func (p Point) Translate(o Offset) Point { return Point{X: p.X + o.DX, Y: p.Y + o.DY} }

// Add sums two translations.
func (o Offset) Add(n Offset) Offset { return Offset{DX: o.DX + n.DX, DY: o.DY + n.DY} }

// Length is the euclidean length of the translation.
func (o Offset) Length() float64 { return math.Hypot(o.DX, o.DY) }

// IsZero reports whether the offset is the identity translation.
func (o Offset) IsZero() bool { return o.DX == 0 && o.DY == 0 }

// Add folds a screen-space drag into the pan.
func (p Pan) Add(o Offset) Pan { return Pan{X: p.X + o.DX, Y: p.Y - o.DY} }

// ToViewport maps a document position into the viewport.
func ToViewport(p Position, center Point, zoom float64, pan Pan) Point {
	return Point{
		X: center.X + pan.X + float64(p.X)*zoom,
		Y: center.Y - pan.Y - float64(p.Y)*zoom,
	}
}

// ToDocument is the inverse of ToViewport. The result is truncated toward zero.
// A non-positive zoom maps everything to the origin.
func ToDocument(s Point, center Point, zoom float64, pan Pan) Position {
	if zoom <= 0 {
		return Zero
	}
	return Position{
		X: int((s.X - center.X - pan.X) / zoom),
		Y: int((center.Y - pan.Y - s.Y) / zoom),
	}
}

// OffsetPosition applies a screen-space drag to a document position. The drag
// is divided by zoom first so a fixed screen drag always moves an item by the
// same visual distance.
func OffsetPosition(p Position, by Offset, zoom float64) Position {
	if zoom <= 0 {
		return p
	}
	return Position{
		X: p.X + int(by.DX/zoom),
		Y: p.Y - int(by.DY/zoom),
	}
}

// Rect is an axis-aligned rectangle in viewport space defined by its min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

// CenteredRect returns a w×h rectangle centered on c.
func CenteredRect(c Point, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}
