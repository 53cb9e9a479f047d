/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"emojiart/internal/domain"
)

// PDFOptions controls PDF export behavior.
// Units are points (pt): one document unit maps to one point.
//
// The sheet is a single page sized to the document bounds plus Margin, but
// never smaller than MinWidth x MinHeight. The drawing is centered on it.
type PDFOptions struct {
	Title         string
	Margin        float64
	MinWidth      float64
	MinHeight     float64
	IncludeGuides bool // origin crosshair and bounds rectangle
	IncludeLabels bool // id and codepoints under each box
}

// DefaultPDFOptions is an A4 portrait sheet with guides and labels.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{Margin: 36, MinWidth: 595, MinHeight: 842, IncludeGuides: true, IncludeLabels: true}
}

// PDF writes a layout sheet of d to outPath.
func PDF(d *domain.Document, outPath string, opt PDFOptions) error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	sh := Layout(d, opt.Margin)
	pageW, pageH := max(sh.W, opt.MinWidth), max(sh.H, opt.MinHeight)
	dx, dy := (pageW-sh.W)/2, (pageH-sh.H)/2

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	title := opt.Title
	if title == "" {
		title = "EmojiArt"
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor("EmojiArt", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(12, 18, title)
	pdf.SetFont("Helvetica", "", 8)
	if d.Background != "" {
		pdf.Text(12, 30, "Background: "+d.Background)
	}
	pdf.Text(12, pageH-10, fmt.Sprintf("%d emoji(s)", len(d.Emojis)))

	if opt.IncludeGuides {
		pdf.SetDrawColor(255, 0, 0)
		pdf.SetLineWidth(0.2)
		pdf.Rect(dx+opt.Margin, dy+opt.Margin, sh.W-2*opt.Margin, sh.H-2*opt.Margin, "D")
		ox, oy := dx+sh.OriginX, dy+sh.OriginY
		pdf.Line(ox-6, oy, ox+6, oy)
		pdf.Line(ox, oy-6, ox, oy+6)
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	for _, b := range sh.Boxes {
		c := glyphColor(b.Glyph)
		pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		pdf.Rect(dx+b.X, dy+b.Y, b.Side, b.Side, "FD")
		if opt.IncludeLabels {
			pdf.SetFont("Helvetica", "", 6)
			pdf.Text(dx+b.X, dy+b.Y+b.Side+7, fmt.Sprintf("#%d %s", b.ID, Codepoints(b.Glyph)))
		}
	}

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
