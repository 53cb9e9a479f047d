/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package palette holds the named emoji palettes the user drags glyphs from.
// Glyphs are grapheme clusters, so flags, keycaps and ZWJ sequences count as
// one glyph each.
package palette

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"emojiart/internal/gesture"
)

// Palette is a named, ordered set of distinct emoji glyphs.
type Palette struct {
	ID     string `yaml:"id,omitempty" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Emojis string `yaml:"emojis" json:"emojis"`
}

// New builds a palette with a fresh id, keeping only distinct emoji glyphs.
func New(name, emojis string) Palette {
	return Palette{ID: uuid.NewString(), Name: name, Emojis: Uniqued(FilterEmoji(emojis))}
}

// Glyphs splits the palette into its glyphs.
func (p Palette) Glyphs() []string { return Split(p.Emojis) }

// AddGlyphs puts the emoji glyphs of s in front of the existing ones.
// Non-emoji input is dropped and duplicates keep their first position.
func (p *Palette) AddGlyphs(s string) {
	p.Emojis = Uniqued(FilterEmoji(s + p.Emojis))
}

// RemoveGlyph removes every occurrence of glyph.
func (p *Palette) RemoveGlyph(glyph string) {
	var b strings.Builder
	for _, g := range Split(p.Emojis) {
		if g != glyph {
			b.WriteString(g)
		}
	}
	p.Emojis = b.String()
}

// DropItem is the drag payload for the i-th glyph.
func (p Palette) DropItem(i int) (gesture.DropItem, bool) {
	gs := p.Glyphs()
	if i < 0 || i >= len(gs) {
		return gesture.DropItem{}, false
	}
	return gesture.DropItem{Glyph: gs[i]}, true
}

// Split segments s into grapheme clusters.
func Split(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Uniqued drops repeated glyphs, keeping the first occurrence.
func Uniqued(s string) string {
	seen := map[string]bool{}
	var b strings.Builder
	for _, g := range Split(s) {
		if !seen[g] {
			seen[g] = true
			b.WriteString(g)
		}
	}
	return b.String()
}

// FilterEmoji keeps only the glyphs IsEmoji accepts.
func FilterEmoji(s string) string {
	var b strings.Builder
	for _, g := range Split(s) {
		if IsEmoji(g) {
			b.WriteString(g)
		}
	}
	return b.String()
}

// IsEmoji reports whether a grapheme cluster renders as an emoji. Plain
// symbols below U+238D (digits, ©, ↔) only count when they carry a modifier
// such as a keycap or variation selector.
func IsEmoji(cluster string) bool {
	runes := []rune(cluster)
	if len(runes) == 0 {
		return false
	}
	r := runes[0]
	if !emojiBase(r) {
		return false
	}
	return r >= 0x238d || len(runes) > 1
}

func emojiBase(r rune) bool {
	switch {
	case r == '#' || r == '*' || (r >= '0' && r <= '9'):
		return true
	case r == 0xa9 || r == 0xae || r == 0x203c || r == 0x2049:
		return true
	case r >= 0x1f000 && r <= 0x1faff:
		return true
	}
	return unicode.In(r, unicode.So, unicode.Sk)
}
