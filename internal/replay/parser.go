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
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse reads a YAML gesture script. It keeps going past bad steps so every
// problem is reported at once; the returned Script holds only valid steps.
//
//	viewport: {width: 400, height: 400}
//	steps:
//	  - {op: down, pointer: 1, x: 200, y: 200, t: 0}
//	  - {op: up, pointer: 1, x: 200, y: 200, t: 40}
//	  - {op: expect, selected: [1]}
func Parse(data []byte) (Script, []Error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Script{}, []Error{{Step: -1, Line: lineOf(err), Message: err.Error()}}
	}
	if len(root.Content) == 0 {
		return Script{}, []Error{{Step: -1, Line: 1, Message: "empty script"}}
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return Script{}, []Error{{Step: -1, Line: doc.Line, Message: "script must be a mapping"}}
	}

	var (
		sc   Script
		errs []Error
	)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "viewport":
			if err := val.Decode(&sc.Viewport); err != nil {
				errs = append(errs, Error{Step: -1, Line: val.Line, Message: err.Error()})
			}
		case "steps":
			if val.Kind != yaml.SequenceNode {
				errs = append(errs, Error{Step: -1, Line: val.Line, Message: "steps must be a list"})
				continue
			}
			for idx, n := range val.Content {
				var st Step
				if err := n.Decode(&st); err != nil {
					errs = append(errs, Error{Step: idx, Line: n.Line, Message: err.Error()})
					continue
				}
				st.Line = n.Line
				st.Op = Op(strings.ToLower(strings.TrimSpace(string(st.Op))))
				if msg := validate(st); msg != "" {
					errs = append(errs, Error{Step: idx, Line: n.Line, Message: msg})
					continue
				}
				sc.Steps = append(sc.Steps, st)
			}
		default:
			errs = append(errs, Error{Step: -1, Line: key.Line, Message: fmt.Sprintf("unknown key %q", key.Value)})
		}
	}
	return sc, errs
}

// Load reads and parses a script file. All parse errors are joined into one.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	sc, errs := Parse(data)
	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return sc, fmt.Errorf("%s: %s", path, strings.Join(msgs, "; "))
	}
	return sc, nil
}

func validate(st Step) string {
	switch st.Op {
	case OpDown, OpMove, OpUp, OpCancel:
		if st.Pointer < 0 {
			return "pointer must not be negative"
		}
	case OpPinchChange, OpPinchEnd:
		if st.Scale <= 0 {
			return "scale must be positive"
		}
	case OpDrop:
		if st.Glyph == "" && st.URL == "" {
			return "drop needs a glyph or url"
		}
	case OpExpect:
		if st.Mode == "" && st.Selected == nil && st.Emojis == nil && st.DeleteArmed == nil {
			return "expect has nothing to check"
		}
	case OpTick, OpPinchBegin, OpPinchCancel, OpUndo, OpRedo:
	case "":
		return "missing op"
	default:
		return fmt.Sprintf("unknown op %q", st.Op)
	}
	if st.T < 0 {
		return "t must not be negative"
	}
	return ""
}

// lineOf digs the line number out of a yaml.v3 syntax error ("yaml: line N: ...").
func lineOf(err error) int {
	var n int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &n); scanErr == nil {
		return n
	}
	return 0
}
