/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the composition model: a background reference plus an
// ordered list of emoji glyphs. All operations are total; operating on an id
// that no longer exists is a silent no-op because gestures may race with removal.

import "emojiart/internal/geometry"

// MinEmojiSize is the lower bound applied whenever a size is derived from a
// continuous value (creation from a palette drop, resize).
const MinEmojiSize = 1

// Emoji is one placed glyph. Glyph never changes after creation.
type Emoji struct {
	ID       int               `json:"id"`
	Glyph    string            `json:"string"`
	Position geometry.Position `json:"position"`
	Size     int               `json:"size"`
}

// IDAllocator hands out emoji ids. Ids are never reused, even after removal,
// so a stale selection can not alias a newer emoji.
type IDAllocator struct {
	last int
}

// Next allocates the next id.
func (a *IDAllocator) Next() int {
	a.last++
	return a.last
}

// Last returns the most recently allocated id (0 if none).
func (a IDAllocator) Last() int { return a.last }

// Observe makes sure id will never be handed out again.
func (a *IDAllocator) Observe(id int) {
	if id > a.last {
		a.last = id
	}
}

// Document is the persisted composition. Insertion order of Emojis is the
// paint order: later entries are drawn on top.
//
// Callers must not modify Emojis directly; use the mutation methods so the
// id index stays consistent.
type Document struct {
	Background string  `json:"background,omitempty"`
	Emojis     []Emoji `json:"emojis"`

	ids   IDAllocator
	index map[int]int
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Emojis: []Emoji{}, index: map[int]int{}}
}

// LastID exposes the allocator state for persistence.
func (d *Document) LastID() int { return d.ids.Last() }

// ReserveIDs makes sure no id up to last is handed out again.
func (d *Document) ReserveIDs(last int) { d.ids.Observe(last) }

// AddEmoji appends a new emoji and returns its id. size is truncated to an
// integer and never stored below MinEmojiSize.
func (d *Document) AddEmoji(glyph string, at geometry.Position, size float64) int {
	d.ensureIndex()
	id := d.ids.Next()
	d.Emojis = append(d.Emojis, Emoji{ID: id, Glyph: glyph, Position: at, Size: clampSize(int(size))})
	d.index[id] = len(d.Emojis) - 1
	return id
}

// Move translates an emoji by a screen-space offset at the given zoom.
func (d *Document) Move(id int, by geometry.Offset, zoom float64) {
	if i, ok := d.Index(id); ok {
		d.Emojis[i].Position = geometry.OffsetPosition(d.Emojis[i].Position, by, zoom)
	}
}

// Resize scales an emoji. Non-positive factors are ignored.
func (d *Document) Resize(id int, factor float64) {
	if factor <= 0 {
		return
	}
	if i, ok := d.Index(id); ok {
		d.Emojis[i].Size = clampSize(int(float64(d.Emojis[i].Size) * factor))
	}
}

// Remove deletes an emoji, keeping the order of the remaining ones.
func (d *Document) Remove(id int) {
	i, ok := d.Index(id)
	if !ok {
		return
	}
	d.Emojis = append(d.Emojis[:i], d.Emojis[i+1:]...)
	delete(d.index, id)
	for j := i; j < len(d.Emojis); j++ {
		d.index[d.Emojis[j].ID] = j
	}
}

// SetBackground replaces the background URL; empty means no image.
func (d *Document) SetBackground(url string) { d.Background = url }

// Emoji resolves an id to its current value.
func (d *Document) Emoji(id int) (Emoji, bool) {
	if i, ok := d.Index(id); ok {
		return d.Emojis[i], true
	}
	return Emoji{}, false
}

// Index returns the paint-order index of id.
func (d *Document) Index(id int) (int, bool) {
	d.ensureIndex()
	i, ok := d.index[id]
	return i, ok
}

// Contains reports whether id is a live emoji.
func (d *Document) Contains(id int) bool {
	_, ok := d.Index(id)
	return ok
}

// Clone returns a deep copy that shares no mutable state with d.
func (d *Document) Clone() Document {
	c := Document{
		Background: d.Background,
		Emojis:     append(make([]Emoji, 0, len(d.Emojis)), d.Emojis...),
		ids:        d.ids,
	}
	c.rebuildIndex()
	return c
}

// Equal compares the persisted state of two documents.
func (d *Document) Equal(o *Document) bool {
	if d.Background != o.Background || d.ids.Last() != o.ids.Last() || len(d.Emojis) != len(o.Emojis) {
		return false
	}
	for i := range d.Emojis {
		if d.Emojis[i] != o.Emojis[i] {
			return false
		}
	}
	return true
}

// ensureIndex lazily builds the id index for documents created as literals.
func (d *Document) ensureIndex() {
	if d.index == nil || len(d.index) != len(d.Emojis) {
		d.rebuildIndex()
	}
}

func (d *Document) rebuildIndex() {
	d.index = make(map[int]int, len(d.Emojis))
	for i, e := range d.Emojis {
		d.index[e.ID] = i
		d.ids.Observe(e.ID)
	}
}

func clampSize(s int) int {
	if s < MinEmojiSize {
		return MinEmojiSize
	}
	return s
}
