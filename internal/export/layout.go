/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes documents to print and raster formats. Glyphs are
// drawn as labelled boxes: neither gofpdf's core fonts nor basicfont carry
// emoji, so exports document placement and size rather than artwork.
package export

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"math"
	"strings"

	"emojiart/internal/domain"
)

// Box is one emoji placed in sheet coordinates: origin top-left, Y down.
type Box struct {
	ID    int
	Glyph string
	X, Y  float64
	Side  float64
}

// Sheet is the document laid out on a page.
type Sheet struct {
	W, H  float64
	Boxes []Box
	// Origin is where document (0,0) landed on the sheet.
	OriginX, OriginY float64
}

// Layout maps document coordinates (origin at center, Y up) to a sheet
// that tightly wraps every glyph plus margin on each side. An empty document
// yields a square sheet of 2*margin around the origin.
func Layout(d *domain.Document, margin float64) Sheet {
	if margin < 0 {
		margin = 0
	}
	minX, minY, maxX, maxY := 0.0, 0.0, 0.0, 0.0
	for i, e := range d.Emojis {
		h := float64(e.Size) / 2
		x0, x1 := float64(e.Position.X)-h, float64(e.Position.X)+h
		y0, y1 := float64(e.Position.Y)-h, float64(e.Position.Y)+h
		if i == 0 {
			minX, maxX, minY, maxY = x0, x1, y0, y1
			continue
		}
		minX, maxX = math.Min(minX, x0), math.Max(maxX, x1)
		minY, maxY = math.Min(minY, y0), math.Max(maxY, y1)
	}
	s := Sheet{
		W:       maxX - minX + 2*margin,
		H:       maxY - minY + 2*margin,
		OriginX: margin - minX,
		OriginY: margin + maxY,
	}
	for _, e := range d.Emojis {
		side := float64(e.Size)
		s.Boxes = append(s.Boxes, Box{
			ID:    e.ID,
			Glyph: e.Glyph,
			X:     s.OriginX + float64(e.Position.X) - side/2,
			Y:     s.OriginY - float64(e.Position.Y) - side/2,
			Side:  side,
		})
	}
	return s
}

// Codepoints renders a glyph as U+XXXX sequences for fonts without emoji.
func Codepoints(glyph string) string {
	parts := make([]string, 0, 2)
	for _, r := range glyph {
		parts = append(parts, fmt.Sprintf("U+%04X", r))
	}
	return strings.Join(parts, " ")
}

// glyphColor gives each glyph a stable pastel fill.
func glyphColor(glyph string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(glyph))
	v := h.Sum32()
	return color.RGBA{R: 128 + uint8(v&0x7f), G: 128 + uint8(v>>8&0x7f), B: 128 + uint8(v>>16&0x7f), A: 255}
}
