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
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"emojiart/internal/domain"
)

// PNGOptions controls thumbnail rendering.
// The sheet is rendered at one pixel per document unit, then scaled to fit
// MaxSide while keeping the aspect ratio. Labels are drawn after scaling so
// they stay legible.
type PNGOptions struct {
	MaxSide       int
	Margin        float64
	IncludeGuides bool
	IncludeLabels bool
}

func DefaultPNGOptions() PNGOptions {
	return PNGOptions{MaxSide: 512, Margin: 16, IncludeLabels: true}
}

// maxRasterSide bounds the intermediate full-scale raster.
const maxRasterSide = 4096

// Thumbnail renders d to an image no larger than MaxSide on either axis.
func Thumbnail(d *domain.Document, opt PNGOptions) *image.RGBA {
	if opt.MaxSide <= 0 {
		opt.MaxSide = DefaultPNGOptions().MaxSide
	}
	sh := Layout(d, opt.Margin)

	// render scale for the intermediate raster
	pre := 1.0
	if m := math.Max(sh.W, sh.H); m > maxRasterSide {
		pre = maxRasterSide / m
	}
	full := image.NewRGBA(image.Rect(0, 0, max(1, int(math.Ceil(sh.W*pre))), max(1, int(math.Ceil(sh.H*pre)))))
	xdraw.Draw(full, full.Bounds(), &image.Uniform{C: color.White}, image.Point{}, xdraw.Src)

	black := color.RGBA{A: 255}
	for _, b := range sh.Boxes {
		x0, y0 := int(math.Round(b.X*pre)), int(math.Round(b.Y*pre))
		x1, y1 := int(math.Round((b.X+b.Side)*pre))-1, int(math.Round((b.Y+b.Side)*pre))-1
		fillRect(full, x0, y0, x1, y1, glyphColor(b.Glyph))
		strokeRect(full, x0, y0, x1, y1, black)
	}
	if opt.IncludeGuides {
		red := color.RGBA{R: 255, A: 255}
		ox, oy := int(math.Round(sh.OriginX*pre)), int(math.Round(sh.OriginY*pre))
		for i := -4; i <= 4; i++ {
			full.SetRGBA(ox+i, oy, red)
			full.SetRGBA(ox, oy+i, red)
		}
	}

	scale := math.Min(1, float64(opt.MaxSide)/float64(max(full.Bounds().Dx(), full.Bounds().Dy())))
	w := max(1, int(math.Round(float64(full.Bounds().Dx())*scale)))
	h := max(1, int(math.Round(float64(full.Bounds().Dy())*scale)))
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), full, full.Bounds(), xdraw.Src, nil)

	if opt.IncludeLabels {
		dr := &font.Drawer{Dst: out, Src: image.NewUniform(black), Face: basicfont.Face7x13}
		k := pre * scale
		for _, b := range sh.Boxes {
			label := strconv.Itoa(b.ID)
			// skip labels that would not fit inside the scaled box
			if float64(dr.MeasureString(label).Ceil()) > b.Side*k {
				continue
			}
			dr.Dot = fixed.P(int(math.Round(b.X*k))+2, int(math.Round(b.Y*k))+basicfont.Face7x13.Ascent)
			dr.DrawString(label)
		}
	}
	return out
}

// WritePNG renders a thumbnail of d to outPath.
func WritePNG(d *domain.Document, outPath string, opt PNGOptions) error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	img := Thumbnail(d, opt)
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
