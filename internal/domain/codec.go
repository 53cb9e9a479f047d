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

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed document.schema.json
var documentSchema string

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// wireDocument is the serialized form. uniqueEmojiId carries the allocator so
// ids of removed emojis stay retired across save/load.
type wireDocument struct {
	Background    string  `json:"background,omitempty"`
	Emojis        []Emoji `json:"emojis"`
	UniqueEmojiID int     `json:"uniqueEmojiId,omitempty"`
}

// CorruptError reports a persisted document that could not be decoded.
// Decode still returns a usable empty document alongside it.
type CorruptError struct {
	Reasons []string
	Err     error
}

func (e *CorruptError) Error() string {
	if e.Err != nil {
		return "corrupt document: " + e.Err.Error()
	}
	return "corrupt document: " + strings.Join(e.Reasons, "; ")
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Encode serializes d in human-readable JSON.
func Encode(d *Document) ([]byte, error) {
	w := wireDocument{Background: d.Background, Emojis: d.Emojis, UniqueEmojiID: d.LastID()}
	if w.Emojis == nil {
		w.Emojis = []Emoji{}
	}
	b, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(b, '\n'), nil
}

// Decode parses a serialized document. It never returns a nil document: on any
// failure the result is empty and err is a *CorruptError.
func Decode(data []byte) (*Document, error) {
	s, err := compiledSchema()
	if err != nil {
		return NewDocument(), fmt.Errorf("load document schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return NewDocument(), &CorruptError{Err: err}
	}
	if !res.Valid() {
		reasons := make([]string, 0, len(res.Errors()))
		for _, re := range res.Errors() {
			reasons = append(reasons, re.String())
		}
		return NewDocument(), &CorruptError{Reasons: reasons}
	}
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return NewDocument(), &CorruptError{Err: err}
	}
	seen := make(map[int]bool, len(w.Emojis))
	for i, e := range w.Emojis {
		if seen[e.ID] {
			return NewDocument(), &CorruptError{Reasons: []string{fmt.Sprintf("duplicate emoji id %d", e.ID)}}
		}
		seen[e.ID] = true
		// files written by hand or by older builds may carry degenerate sizes
		w.Emojis[i].Size = clampSize(e.Size)
	}
	d := &Document{Background: w.Background, Emojis: w.Emojis}
	if d.Emojis == nil {
		d.Emojis = []Emoji{}
	}
	d.ids.Observe(w.UniqueEmojiID)
	d.rebuildIndex()
	return d, nil
}

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	})
	return schema, schemaErr
}
