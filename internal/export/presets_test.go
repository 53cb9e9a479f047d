/*
 * Copyright (c) 2025
 */
package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBatchExport_WebPreset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "web")
	written, err := BatchExport(sampleDocument(), BatchOptions{Preset: PresetWeb, OutDir: dir, Name: "park"})
	if err != nil {
		t.Fatalf("batch export web: %v", err)
	}
	if len(written) != 1 || written[0] != filepath.Join(dir, "park.png") {
		t.Fatalf("written = %v", written)
	}
}

func TestBatchExport_PrintPreset(t *testing.T) {
	dir := t.TempDir()
	if _, err := BatchExport(sampleDocument(), BatchOptions{Preset: PresetPrint, OutDir: dir}); err != nil {
		t.Fatalf("batch export print: %v", err)
	}
	for _, p := range []string{filepath.Join(dir, "emojiart.pdf"), filepath.Join(dir, "emojiart.png")} {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
}

func TestBatchExport_UnknownFormat(t *testing.T) {
	if _, err := BatchExport(sampleDocument(), BatchOptions{Formats: []string{"gif"}, OutDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
