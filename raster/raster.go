// Package raster implements the Renderer (C4): shape a string with
// the engine's HarfBuzz-equivalent shaper under a chosen
// script/language/feature set, then rasterise the shaped run to an
// RGBA bitmap at a chosen em size with zero margin.
package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"

	"github.com/typegraph/fontdiff/dfont"
	"github.com/typegraph/fontdiff/internal/dferr"
	"github.com/typegraph/fontdiff/ot"
)

// Renderer shapes and rasterises strings against one Font at a fixed
// configuration. It is single-threaded and holds no state shared
// across Renderers; cached glyph outlines are kept until InvalidateTiles
// is called, and a change of the Font's variation coordinates does not
// clear them by itself.
type Renderer struct {
	Font     *dfont.Font
	FontSize float64 // em units
	Margin   int      // px, outset on every side

	Features []ot.Feature
	Script   ot.Tag // 0 = guess
	Language ot.Tag // 0 = guess

	tiles map[ot.GlyphID]ot.GlyphOutline
}

// New builds a Renderer over f.
func New(f *dfont.Font, fontSize float64, margin int) *Renderer {
	return &Renderer{Font: f, FontSize: fontSize, Margin: margin, tiles: map[ot.GlyphID]ot.GlyphOutline{}}
}

// InvalidateTiles drops cached glyph outlines. Call after any
// set_variations on the underlying Font.
func (r *Renderer) InvalidateTiles() {
	r.tiles = map[ot.GlyphID]ot.GlyphOutline{}
}

// Shape constructs a shaping buffer for text: guesses segment
// properties, then overrides script/language with any explicitly set
// on the Renderer, then shapes with the Renderer's feature set.
// Deterministic: identical (font state, text, script, lang, features)
// produces an identical buffer.
func (r *Renderer) Shape(text string) *ot.Buffer {
	buf := ot.NewBuffer()
	buf.AddString(text)
	buf.GuessSegmentProperties()
	if r.Script != 0 {
		buf.Script = r.Script
	}
	if r.Language != 0 {
		buf.Language = r.Language
	}
	r.Font.Shaper().Shape(buf, r.Features)
	return buf
}

// Bitmap is a simple RGBA raster with integer pixel dimensions.
type Bitmap struct {
	W, H int
	Pix  []byte // RGBA, row-major, 4 bytes/pixel
}

func (b *Bitmap) at(x, y int) []byte {
	i := (y*b.W + x) * 4
	return b.Pix[i : i+4]
}

// Render shapes text and rasterises it to an RGBA bitmap:
//  1. Shape.
//  2. Compute the glyph line's x-bounds from shaped advances and
//     offsets; use the font's vertical extents for the y-bounds.
//  3. Scale bounds by font_size/UPEM, outset by margin, round outward
//     to integer pixels.
//  4. If either dimension is zero, return a 0x0 bitmap (not an
//     error).
//  5. Rasterise each glyph onto a canvas translated by cumulative
//     advances and per-glyph x/y offsets.
func (r *Renderer) Render(text string) (*Bitmap, error) {
	buf := r.Shape(text)
	if buf.Len() == 0 {
		return nil, &dferr.RenderError{Text: text, Err: nil}
	}

	upem := float64(r.Font.Upem())
	scale := (r.FontSize / upem) * r.Font.Scale()

	minX, maxX := math.Inf(1), math.Inf(-1)
	cursor := 0.0
	type placedGlyph struct {
		gid  ot.GlyphID
		x, y float64
	}
	placed := make([]placedGlyph, 0, buf.Len())
	for i, info := range buf.Info {
		pos := buf.Pos[i]
		gx := cursor + float64(pos.XOffset)
		gy := float64(pos.YOffset)
		placed = append(placed, placedGlyph{gid: info.GlyphID, x: gx, y: gy})

		outline, ok := r.outlineFor(info.GlyphID)
		lo, hi := gx, gx
		if ok {
			lo, hi = outlineXBounds(outline)
			lo += gx
			hi += gx
		}
		if lo < minX {
			minX = lo
		}
		if hi > maxX {
			maxX = hi
		}
		cursor += float64(pos.XAdvance)
	}
	if cursor > maxX {
		maxX = cursor
	}
	if 0 < minX {
		minX = 0
	}

	ext := r.Font.Face().GetHExtents()
	minY := float64(ext.Descender) * scale
	maxY := float64(ext.Ascender) * scale
	minX *= scale
	maxX *= scale

	minX -= float64(r.Margin)
	minY -= float64(r.Margin)
	maxX += float64(r.Margin)
	maxY += float64(r.Margin)

	w := int(math.Ceil(maxX)) - int(math.Floor(minX))
	h := int(math.Ceil(maxY)) - int(math.Floor(minY))
	if w <= 0 || h <= 0 {
		return &Bitmap{}, nil
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	ras := vector.NewRasterizer(w, h)
	originX := float32(-math.Floor(minX))
	originY := float32(h) + float32(math.Floor(minY))

	for _, pg := range placed {
		outline, ok := r.outlineFor(pg.gid)
		if !ok {
			continue
		}
		drawGlyph(ras, outline, float32(scale), originX+float32(pg.x*scale), originY-float32(pg.y*scale))
	}

	alpha := image.NewAlpha(img.Bounds())
	ras.Draw(alpha, alpha.Bounds(), image.Opaque, image.Point{})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := alpha.AlphaAt(x, y).A
			img.Set(x, y, color.RGBA{R: 0, G: 0, B: 0, A: a})
		}
	}

	return &Bitmap{W: w, H: h, Pix: img.Pix}, nil
}

func (r *Renderer) outlineFor(gid ot.GlyphID) (ot.GlyphOutline, bool) {
	if o, ok := r.tiles[gid]; ok {
		return o, true
	}
	var outline ot.GlyphOutline
	var ok bool
	if g := r.Font.Glyf(); g != nil {
		outline, ok = g.GlyphOutlineForGID(gid)
	} else if c := r.Font.CFF(); c != nil {
		outline, ok = c.CFFGlyphOutline(gid)
	}
	if ok {
		r.tiles[gid] = outline
	}
	return outline, ok
}

func outlineXBounds(o ot.GlyphOutline) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, seg := range o.Segments {
		for _, p := range seg.Args {
			if float64(p.X) < lo {
				lo = float64(p.X)
			}
			if float64(p.X) > hi {
				hi = float64(p.X)
			}
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

func drawGlyph(ras *vector.Rasterizer, o ot.GlyphOutline, scale, tx, ty float32) {
	for _, seg := range o.Segments {
		switch seg.Op {
		case ot.SegmentMoveTo:
			ras.MoveTo(tx+seg.Args[0].X*scale, ty-seg.Args[0].Y*scale)
		case ot.SegmentLineTo:
			ras.LineTo(tx+seg.Args[0].X*scale, ty-seg.Args[0].Y*scale)
		case ot.SegmentQuadTo:
			ras.QuadTo(
				tx+seg.Args[0].X*scale, ty-seg.Args[0].Y*scale,
				tx+seg.Args[1].X*scale, ty-seg.Args[1].Y*scale,
			)
		case ot.SegmentClose:
			ras.ClosePath()
		}
	}
}
