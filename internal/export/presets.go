/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"emojiart/internal/domain"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export across formats.
//
// Path semantics:
//   - If OutDir is empty it defaults to the preset name.
//   - Files are <Name>.pdf and <Name>.png inside OutDir.
type BatchOptions struct {
	Preset        PresetName
	Formats       []string // allowed: pdf, png; empty means preset defaults
	Name          string
	OutDir        string
	IncludeGuides *bool // when set, overrides preset's default for guides
}

// BatchExport runs exports according to the given preset and returns the
// written paths.
func BatchExport(d *domain.Document, opt BatchOptions) ([]string, error) {
	if d == nil {
		return nil, fmt.Errorf("document is nil")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	name := opt.Name
	if name == "" {
		name = "emojiart"
	}
	guides := presetIncludeGuides(opt.Preset)
	if opt.IncludeGuides != nil {
		guides = *opt.IncludeGuides
	}

	var written []string
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "pdf":
			out := filepath.Join(baseOut, name+".pdf")
			po := DefaultPDFOptions()
			po.Title = name
			po.IncludeGuides = guides
			if err := PDF(d, out, po); err != nil {
				return written, fmt.Errorf("pdf: %w", err)
			}
			written = append(written, out)
		case "png":
			out := filepath.Join(baseOut, name+".png")
			po := DefaultPNGOptions()
			po.IncludeGuides = guides
			if opt.Preset == PresetPrint {
				po.MaxSide = 2048
			}
			if err := WritePNG(d, out, po); err != nil {
				return written, fmt.Errorf("png: %w", err)
			}
			written = append(written, out)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetIncludeGuides(p PresetName) bool {
	return p != PresetWeb
}
