/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui hosts the desktop shell. The fyne widget lives behind the "fyne"
// build tag; input translation and the display list are plain Go so they can be
// tested headless.
package ui

import (
	"errors"
	"sync"

	"emojiart/internal/editor"
	"emojiart/internal/geometry"
	"emojiart/internal/palette"
)

// ErrUnavailable is returned by Run in binaries built without the desktop shell.
var ErrUnavailable = errors.New("desktop UI not built into this binary")

// Env is everything the shell needs from the caller.
type Env struct {
	Title    string
	Session  *editor.Session
	Palettes *palette.Store
	// Viewport must be the one the session's coordinator was built with; the
	// shell keeps it in sync with the canvas size.
	Viewport *Viewport
	// OnQuit runs after the window closed, e.g. to flush the autosaver.
	OnQuit func()
}

// Viewport is a gesture.Viewport whose size is set by the widget layout.
type Viewport struct {
	mu   sync.RWMutex
	size geometry.Size
}

func NewViewport(w, h float64) *Viewport {
	return &Viewport{size: geometry.Size{W: w, H: h}}
}

func (v *Viewport) Size() geometry.Size {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.size
}

func (v *Viewport) Set(s geometry.Size) {
	v.mu.Lock()
	v.size = s
	v.mu.Unlock()
}
