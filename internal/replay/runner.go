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
	"log/slog"
	"slices"
	"time"

	"emojiart/internal/editor"
	"emojiart/internal/gesture"
	applog "emojiart/internal/log"
)

// Result summarises a replay.
type Result struct {
	Steps   int
	Checks  int
	Elapsed time.Duration // script time, not wall time
}

// Run feeds the script's steps to the session's coordinator. Step times are
// offsets from start and never run backwards. It stops at the first failed expectation.
func Run(s *editor.Session, sc Script, start time.Time) (Result, error) {
	l := applog.WithOperation(applog.WithComponent("replay"), "run")
	c := s.Coordinator()
	var res Result
	now := start
	for i, st := range sc.Steps {
		if t := start.Add(time.Duration(st.T) * time.Millisecond); t.After(now) {
			now = t
		}
		id := gesture.PointerID(st.Pointer)
		switch st.Op {
		case OpDown:
			c.PointerDown(id, st.Point(), now)
		case OpMove:
			c.PointerMove(id, st.Point(), now)
		case OpUp:
			c.PointerUp(id, st.Point(), now)
		case OpCancel:
			c.PointerCancel(id)
		case OpTick:
			c.Tick(now)
		case OpPinchBegin:
			c.PinchBegin()
		case OpPinchChange:
			c.PinchChange(st.Scale)
		case OpPinchEnd:
			c.PinchEnd(st.Scale)
		case OpPinchCancel:
			c.PinchCancel()
		case OpDrop:
			c.Drop([]gesture.DropItem{{URL: st.URL, Glyph: st.Glyph}}, st.Point())
		case OpUndo:
			s.Undo()
		case OpRedo:
			s.Redo()
		case OpExpect:
			res.Checks++
			if msg := check(s, st); msg != "" {
				res.Steps = i + 1
				return res, Error{Step: i, Line: st.Line, Message: msg}
			}
		default:
			return res, Error{Step: i, Line: st.Line, Message: fmt.Sprintf("unknown op %q", st.Op)}
		}
		res.Steps = i + 1
		res.Elapsed = now.Sub(start)
		l.Debug("step", slog.Int("n", i+1), slog.String("op", string(st.Op)), slog.String("mode", c.Mode().String()))
	}
	return res, nil
}

func check(s *editor.Session, st Step) string {
	c := s.Coordinator()
	if st.Mode != "" && c.Mode().String() != st.Mode {
		return fmt.Sprintf("mode = %s, want %s", c.Mode(), st.Mode)
	}
	if st.Selected != nil {
		want := slices.Clone(st.Selected)
		slices.Sort(want)
		if got := c.Selection(); !slices.Equal(got, want) {
			return fmt.Sprintf("selection = %v, want %v", got, want)
		}
	}
	if st.Emojis != nil {
		if got := len(s.Emojis()); got != *st.Emojis {
			return fmt.Sprintf("emojis = %d, want %d", got, *st.Emojis)
		}
	}
	if st.DeleteArmed != nil && c.DeleteArmed() != *st.DeleteArmed {
		return fmt.Sprintf("delete armed = %v, want %v", c.DeleteArmed(), *st.DeleteArmed)
	}
	return ""
}
