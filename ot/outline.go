package ot

import (
	"encoding/binary"
)

// Simple glyph point flags (glyf table).
const (
	pointOnCurve      byte = 0x01
	pointXShort       byte = 0x02
	pointYShort       byte = 0x04
	pointRepeat       byte = 0x08
	pointXSameOrPos   byte = 0x10
	pointYSameOrPos   byte = 0x20
	pointOverlapSimple byte = 0x40
)

// GlyphContourPoint describes one point of a parsed simple-glyph
// contour, before any quadratic-curve reconstruction.
type GlyphContourPoint struct {
	X, Y    int32
	OnCurve bool
}

// SimpleGlyphOutline holds the decoded, un-curved point list of a
// simple (non-composite) glyph, grouped by contour.
type SimpleGlyphOutline struct {
	Contours [][]GlyphContourPoint
}

// ParseSimpleGlyphPoints decodes a simple glyph's raw point arrays,
// applying delta-encoded X/Y coordinates.
func ParseSimpleGlyphPoints(data []byte) (*SimpleGlyphOutline, error) {
	if len(data) < 10 {
		return nil, ErrInvalidTable
	}
	numContours := int(int16(binary.BigEndian.Uint16(data[0:])))
	if numContours < 0 {
		return nil, ErrInvalidFormat
	}

	offset := 10
	if offset+numContours*2 > len(data) {
		return nil, ErrInvalidOffset
	}

	endPts := make([]int, numContours)
	for i := 0; i < numContours; i++ {
		endPts[i] = int(binary.BigEndian.Uint16(data[offset+i*2:]))
	}
	offset += numContours * 2

	if numContours == 0 {
		return &SimpleGlyphOutline{}, nil
	}

	numPoints := endPts[numContours-1] + 1

	if offset+2 > len(data) {
		return nil, ErrInvalidOffset
	}
	instructionLength := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2 + instructionLength
	if offset > len(data) {
		return nil, ErrInvalidOffset
	}

	flags := make([]byte, 0, numPoints)
	for len(flags) < numPoints {
		if offset >= len(data) {
			return nil, ErrInvalidOffset
		}
		f := data[offset]
		offset++
		flags = append(flags, f)
		if f&pointRepeat != 0 {
			if offset >= len(data) {
				return nil, ErrInvalidOffset
			}
			repeat := int(data[offset])
			offset++
			for r := 0; r < repeat && len(flags) < numPoints; r++ {
				flags = append(flags, f)
			}
		}
	}

	xs := make([]int32, numPoints)
	var x int32
	for i := 0; i < numPoints; i++ {
		f := flags[i]
		switch {
		case f&pointXShort != 0:
			if offset >= len(data) {
				return nil, ErrInvalidOffset
			}
			d := int32(data[offset])
			offset++
			if f&pointXSameOrPos == 0 {
				d = -d
			}
			x += d
		case f&pointXSameOrPos == 0:
			if offset+2 > len(data) {
				return nil, ErrInvalidOffset
			}
			x += int32(int16(binary.BigEndian.Uint16(data[offset:])))
			offset += 2
		}
		xs[i] = x
	}

	ys := make([]int32, numPoints)
	var y int32
	for i := 0; i < numPoints; i++ {
		f := flags[i]
		switch {
		case f&pointYShort != 0:
			if offset >= len(data) {
				return nil, ErrInvalidOffset
			}
			d := int32(data[offset])
			offset++
			if f&pointYSameOrPos == 0 {
				d = -d
			}
			y += d
		case f&pointYSameOrPos == 0:
			if offset+2 > len(data) {
				return nil, ErrInvalidOffset
			}
			y += int32(int16(binary.BigEndian.Uint16(data[offset:])))
			offset += 2
		}
		ys[i] = y
	}

	out := &SimpleGlyphOutline{Contours: make([][]GlyphContourPoint, numContours)}
	start := 0
	for c, end := range endPts {
		pts := make([]GlyphContourPoint, 0, end-start+1)
		for i := start; i <= end && i < numPoints; i++ {
			pts = append(pts, GlyphContourPoint{X: xs[i], Y: ys[i], OnCurve: flags[i]&pointOnCurve != 0})
		}
		out.Contours[c] = pts
		start = end + 1
	}

	return out, nil
}

// SegmentOp identifies the kind of a path segment.
type SegmentOp int

// Path segment operators.
const (
	SegmentMoveTo SegmentOp = iota
	SegmentLineTo
	SegmentQuadTo
	SegmentClose
)

// OutlinePoint is a 2D coordinate in font design units.
type OutlinePoint struct {
	X, Y float32
}

// Segment is one drawing instruction of a glyph's outline path.
// QuadTo uses Args[0] as the control point and Args[1] as the end
// point; MoveTo/LineTo use only Args[0].
type Segment struct {
	Op   SegmentOp
	Args [2]OutlinePoint
}

// GlyphOutline is the flattened, curve-resolved path of a glyph,
// ready for scan conversion.
type GlyphOutline struct {
	Segments []Segment
}

// BuildOutline converts decoded on/off-curve contour points into a
// sequence of move/line/quad segments, synthesizing the implied
// on-curve midpoints between consecutive off-curve points the way
// TrueType contours require.
func BuildOutline(contours [][]GlyphContourPoint) GlyphOutline {
	var out GlyphOutline
	for _, pts := range contours {
		if len(pts) == 0 {
			continue
		}
		out.appendContour(pts)
	}
	return out
}

func midpoint(a, b GlyphContourPoint) OutlinePoint {
	return OutlinePoint{X: float32(a.X+b.X) / 2, Y: float32(a.Y+b.Y) / 2}
}

func asPoint(p GlyphContourPoint) OutlinePoint {
	return OutlinePoint{X: float32(p.X), Y: float32(p.Y)}
}

func (o *GlyphOutline) appendContour(pts []GlyphContourPoint) {
	n := len(pts)

	start := 0
	var startPt OutlinePoint
	if pts[0].OnCurve {
		startPt = asPoint(pts[0])
		start = 1
	} else if pts[n-1].OnCurve {
		startPt = asPoint(pts[n-1])
		start = 0
	} else {
		startPt = midpoint(pts[n-1], pts[0])
		start = 0
	}

	o.Segments = append(o.Segments, Segment{Op: SegmentMoveTo, Args: [2]OutlinePoint{startPt}})

	cur := startPt
	var pendingOff *OutlinePoint

	emitLine := func(to OutlinePoint) {
		o.Segments = append(o.Segments, Segment{Op: SegmentLineTo, Args: [2]OutlinePoint{to}})
		cur = to
	}
	emitQuad := func(ctrl, to OutlinePoint) {
		o.Segments = append(o.Segments, Segment{Op: SegmentQuadTo, Args: [2]OutlinePoint{ctrl, to}})
		cur = to
	}

	for i := 0; i < n; i++ {
		idx := (start + i) % n
		p := pts[idx]
		if p.OnCurve {
			pt := asPoint(p)
			if pendingOff != nil {
				emitQuad(*pendingOff, pt)
				pendingOff = nil
			} else if pt != cur {
				emitLine(pt)
			}
			continue
		}

		off := asPoint(p)
		if pendingOff != nil {
			mid := OutlinePoint{X: (pendingOff.X + off.X) / 2, Y: (pendingOff.Y + off.Y) / 2}
			emitQuad(*pendingOff, mid)
		}
		v := off
		pendingOff = &v
	}

	if pendingOff != nil {
		emitQuad(*pendingOff, startPt)
	}

	o.Segments = append(o.Segments, Segment{Op: SegmentClose})
}

// GlyphOutlineForGID builds the resolved outline for gid, descending
// through composite components and applying their 2x2 transforms and
// offsets. Variable-font deltas are not applied here, and there is no
// hook for applying them. The rasteriser's outlineFor uses this outline
// as it is, so rendered glyph shapes do not reflect gvar deltas.
func (g *Glyf) GlyphOutlineForGID(gid GlyphID) (GlyphOutline, bool) {
	return g.glyphOutline(gid, 0)
}

func (g *Glyf) glyphOutline(gid GlyphID, depth int) (GlyphOutline, bool) {
	if depth > 8 {
		return GlyphOutline{}, false
	}
	glyph := g.GetGlyph(gid)
	if glyph == nil || glyph.Data == nil {
		return GlyphOutline{}, true
	}

	if !glyph.IsComposite() {
		pts, err := ParseSimpleGlyphPoints(glyph.Data)
		if err != nil {
			return GlyphOutline{}, false
		}
		return BuildOutline(pts.Contours), true
	}

	var combined GlyphOutline
	for _, comp := range g.parseComposite(glyph.Data) {
		sub, ok := g.glyphOutline(comp.GlyphID, depth+1)
		if !ok {
			continue
		}
		dx, dy := float32(0), float32(0)
		if comp.Flags&argsAreXYValues != 0 {
			dx, dy = float32(comp.Arg1), float32(comp.Arg2)
		}
		sx, sy, s01, s10 := componentScale(comp)
		for _, seg := range sub.Segments {
			var out Segment
			out.Op = seg.Op
			for i, a := range seg.Args {
				out.Args[i] = OutlinePoint{
					X: a.X*sx + a.Y*s10 + dx,
					Y: a.X*s01 + a.Y*sy + dy,
				}
			}
			combined.Segments = append(combined.Segments, out)
		}
	}
	return combined, true
}

func componentScale(comp CompositeComponent) (sx, sy, s01, s10 float32) {
	sx, sy = 1, 1
	if comp.Scale != 0 {
		sx, sy = comp.Scale, comp.Scale
	}
	if comp.ScaleX != 0 || comp.ScaleY != 0 {
		sx, sy = comp.ScaleX, comp.ScaleY
	}
	s01, s10 = comp.Scale01, comp.Scale10
	return
}
