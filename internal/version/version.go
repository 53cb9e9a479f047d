/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version carries build metadata, set via -ldflags:
//
//	go build -ldflags "-X emojiart/internal/version.Version=1.2.0 -X emojiart/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import "runtime/debug"

var (
	Version = "dev"
	Commit  = ""
)

// String renders the version for the version command.
func String() string {
	v := Version
	c := Commit
	if c == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					c = s.Value[:7]
				}
			}
		}
	}
	if c != "" {
		return "emojiart " + v + " (" + c + ")"
	}
	return "emojiart " + v
}
