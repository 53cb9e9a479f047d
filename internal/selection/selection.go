/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package selection holds the set of emoji ids chosen for group operations.
package selection

import "sort"

// Set is a set of emoji ids. The zero value is an empty set ready to use.
type Set struct {
	ids map[int]struct{}
}

// Toggle adds id when absent and removes it when present.
func (s *Set) Toggle(id int) {
	if s.ids == nil {
		s.ids = make(map[int]struct{})
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

func (s *Set) Clear() { s.ids = nil }

func (s *Set) Contains(id int) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Set) IsEmpty() bool { return len(s.ids) == 0 }

func (s *Set) Len() int { return len(s.ids) }

// IDs returns the members in ascending order.
func (s *Set) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
