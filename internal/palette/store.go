/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package palette

import "sync"

// Builtins are used when no palettes are configured.
func Builtins() []Palette {
	return []Palette{
		New("Vehicles", "🚙🚗🚘🚕🚖🏎🚚🛻🚛🚐🚓🚔🚑🚒🚀✈️🛫🛬🛩🚁🛸🚲🏍🛶⛵️🚤🛥🛳⛴🚢🚂🚝🚅🚆🚊🚉🚇🛺🚜"),
		New("Sports", "🏈⚾️🏀⚽️🎾🏐🥏🏓⛳️🥅🥌🏂⛷🎳"),
		New("Music", "🎼🎤🎹🪘🥁🎺🪗🪕🎻"),
		New("Animals", "🐥🐣🐂🐄🐎🐖🐏🐑🦙🐐🐓🐁🐀🐒🦆🦅🦉🦇🐢🐍🦎🦖🦕🐅🐆🦓🦍🦧🦣🐘🦛🦏🐪🐫🦒🦘🦬🐃🦙🐐🦌🐕🐩🦮🐈🦤🦢🦩🕊🦝🦨🦡🦫🦦🦥🐿🦔"),
		New("Animal Faces", "🐵🙈🙊🙉🐶🐱🐭🐹🐰🦊🐻🐼🐻‍❄️🐨🐯🦁🐮🐷🐸🐲"),
		New("Flora", "🌲🌴🌿☘️🍀🍁🍄🌾💐🌷🌹🥀🌺🌸🌼🌻"),
		New("Weather", "☀️🌤⛅️🌥☁️🌦🌧⛈🌩🌨❄️💨☔️💧💦🌊☂️🌫🌪"),
		New("Faces", "😀😃😄😁😆😅😂🤣🥲☺️😊😇🙂🙃😉😌😍🥰😘😗😙😚😋😛😝😜🤪🤨🧐🤓😎🥸🤩🥳😏😞😔😟😕🙁☹️😣😖😫😩🥺😢😭😤😠😡🤯😳🥶😥😓🤗🤔🤭🤫🤥😬🙄😯😧🥱😴🤮😷🤧🤒🤠"),
	}
}

// fallback keeps the store usable when every palette was removed.
func fallback() Palette { return New("Warning", "⚠️") }

// Store is an ordered list of palettes with a cursor. It never becomes
// empty. It is safe for concurrent use.
type Store struct {
	Name string

	mu       sync.Mutex
	palettes []Palette
	cursor   int
}

// NewStore creates a store; an empty initial list selects Builtins.
func NewStore(name string, initial []Palette) *Store {
	s := &Store{Name: name}
	for _, p := range initial {
		if p.ID == "" {
			p = New(p.Name, p.Emojis)
		}
		s.palettes = append(s.palettes, p)
	}
	if len(s.palettes) == 0 {
		s.palettes = Builtins()
	}
	return s
}

// Palettes returns a copy of the palettes in order.
func (s *Store) Palettes() []Palette {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Palette(nil), s.palettes...)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.palettes)
}

// Cursor is the index of the current palette.
func (s *Store) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundsChecked(s.cursor)
}

// SetCursor moves the cursor; out-of-range values wrap around.
func (s *Store) SetCursor(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = s.boundsChecked(i)
}

// Current returns the palette under the cursor.
func (s *Store) Current() Palette {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.palettes[s.boundsChecked(s.cursor)]
}

// Insert places p at index at (wrapped into range). A palette with the same
// id is moved there and replaced. The cursor follows the inserted palette.
func (s *Store) Insert(p Palette, at int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = New(p.Name, "").ID
	}
	at = s.boundsChecked(at)
	if i := s.indexOf(p.ID); i >= 0 {
		s.palettes = append(s.palettes[:i], s.palettes[i+1:]...)
		if at > len(s.palettes) {
			at = len(s.palettes)
		}
	}
	s.palettes = append(s.palettes, Palette{})
	copy(s.palettes[at+1:], s.palettes[at:])
	s.palettes[at] = p
	s.cursor = at
}

// InsertNew inserts a fresh palette at the cursor and returns it.
func (s *Store) InsertNew(name, emojis string) Palette {
	p := New(name, emojis)
	s.Insert(p, s.Cursor())
	return p
}

// Append adds p at the end, replacing a palette with the same id.
func (s *Store) Append(p Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(p.ID); i >= 0 {
		s.palettes = append(s.palettes[:i], s.palettes[i+1:]...)
	}
	s.palettes = append(s.palettes, p)
}

// Replace updates the palette with p's id in place.
func (s *Store) Replace(p Palette) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(p.ID); i >= 0 {
		s.palettes[i] = p
		return true
	}
	return false
}

// Remove deletes the palette at index i.
func (s *Store) Remove(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.palettes) {
		return
	}
	s.palettes = append(s.palettes[:i], s.palettes[i+1:]...)
	if len(s.palettes) == 0 {
		s.palettes = []Palette{fallback()}
	}
	s.cursor = s.boundsChecked(s.cursor)
}

// Move relocates the palette at from so that it ends up at index to.
func (s *Store) Move(from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.palettes)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	p := s.palettes[from]
	s.palettes = append(s.palettes[:from], s.palettes[from+1:]...)
	s.palettes = append(s.palettes[:to], append([]Palette{p}, s.palettes[to:]...)...)
}

func (s *Store) indexOf(id string) int {
	for i, p := range s.palettes {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) boundsChecked(i int) int {
	n := len(s.palettes)
	if n == 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
