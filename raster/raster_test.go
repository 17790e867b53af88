package raster

import (
	"testing"

	"github.com/typegraph/fontdiff/ot"
)

func TestOutlineXBoundsEmpty(t *testing.T) {
	lo, hi := outlineXBounds(ot.GlyphOutline{})
	if lo != 0 || hi != 0 {
		t.Errorf("outlineXBounds(empty) = (%v, %v), want (0, 0)", lo, hi)
	}
}

func TestOutlineXBoundsSpansSegments(t *testing.T) {
	o := ot.GlyphOutline{Segments: []ot.Segment{
		{Op: ot.SegmentMoveTo, Args: [2]ot.OutlinePoint{{X: 10, Y: 0}}},
		{Op: ot.SegmentLineTo, Args: [2]ot.OutlinePoint{{X: -5, Y: 20}}},
		{Op: ot.SegmentLineTo, Args: [2]ot.OutlinePoint{{X: 30, Y: 5}}},
	}}
	lo, hi := outlineXBounds(o)
	if lo != -5 || hi != 30 {
		t.Errorf("outlineXBounds() = (%v, %v), want (-5, 30)", lo, hi)
	}
}

func TestBitmapAtIndexesRowMajor(t *testing.T) {
	b := &Bitmap{W: 2, H: 2, Pix: make([]byte, 2*2*4)}
	copy(b.at(1, 1), []byte{9, 9, 9, 9})
	if b.Pix[(1*2+1)*4] != 9 {
		t.Errorf("at(1,1) did not write to the expected row-major offset")
	}
}

func TestInvalidateTilesClearsCache(t *testing.T) {
	r := &Renderer{tiles: map[ot.GlyphID]ot.GlyphOutline{1: {}}}
	r.InvalidateTiles()
	if len(r.tiles) != 0 {
		t.Errorf("InvalidateTiles() left %d entries, want 0", len(r.tiles))
	}
}
