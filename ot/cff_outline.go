package ot

import "encoding/binary"

// cffOutlineBuilder interprets a Type2 charstring to build a
// GlyphOutline, tracking only the drawing operators (hint operators
// are consumed for stack/width bookkeeping but otherwise ignored,
// since the diffing module never rasterises hints).
type cffOutlineBuilder struct {
	globalSubrs, localSubrs [][]byte
	globalBias, localBias   int

	stack []float64
	x, y  float32
	open  bool

	widthParsed bool
	stemHints   int

	outline  GlyphOutline
	depth    int
	opCount  int
	overflow bool
}

const (
	cffMaxCallDepth = 10
	cffMaxOps       = 200000
)

// CFFGlyphOutline builds the path for glyph gid from a parsed CFF
// table's CharStrings INDEX. Seac-style accent charstrings (endchar
// with 4 extra args) are not expanded: only the charstring's own path
// is drawn, not its two component glyphs.
func (c *CFF) CFFGlyphOutline(gid GlyphID) (GlyphOutline, bool) {
	if c == nil || int(gid) >= len(c.CharStrings) {
		return GlyphOutline{}, false
	}

	localSubrs := c.LocalSubrs
	if c.IsCID && len(c.FDArray) > 0 {
		// CID fonts select local subrs per-glyph via FDSelect; the
		// diffing module only needs a best-effort outline, so fall
		// back to the font-wide local subrs when FDSelect isn't
		// resolved here.
	}

	b := &cffOutlineBuilder{
		globalSubrs: c.GlobalSubrs,
		localSubrs:  localSubrs,
		globalBias:  calcSubrBias(len(c.GlobalSubrs)),
		localBias:   calcSubrBias(len(localSubrs)),
	}

	if err := b.run(c.CharStrings[gid]); err != nil {
		return b.outline, false
	}
	if b.open {
		b.outline.Segments = append(b.outline.Segments, Segment{Op: SegmentClose})
	}
	return b.outline, true
}

func (b *cffOutlineBuilder) run(cs []byte) error {
	return b.execute(cs)
}

func (b *cffOutlineBuilder) execute(data []byte) error {
	b.depth++
	defer func() { b.depth-- }()
	if b.depth > cffMaxCallDepth {
		return ErrInvalidTable
	}

	i := 0
	for i < len(data) {
		b.opCount++
		if b.opCount > cffMaxOps {
			return ErrInvalidTable
		}

		v := data[i]
		if v >= 32 || v == 28 {
			operand, consumed := decodeCSOperandFloat(data[i:])
			b.stack = append(b.stack, operand)
			i += consumed
			continue
		}

		op := v
		i++
		switch op {
		case 1, 3, 18, 23: // hstem, vstem, hstemhm, vstemhm
			b.takeWidthIfOdd(len(b.stack))
			b.stemHints += len(b.stack) / 2
			b.stack = b.stack[:0]

		case 19, 20: // hintmask, cntrmask
			b.takeWidthIfOdd(len(b.stack))
			b.stemHints += len(b.stack) / 2
			b.stack = b.stack[:0]
			i += (b.stemHints + 7) / 8

		case 21: // rmoveto
			b.takeWidthIfArgs(len(b.stack), 2)
			b.closeIfOpen()
			dx, dy := b.arg2()
			b.moveTo(dx, dy)

		case 22: // hmoveto
			b.takeWidthIfArgs(len(b.stack), 1)
			b.closeIfOpen()
			b.moveTo(b.arg1(), 0)

		case 4: // vmoveto
			b.takeWidthIfArgs(len(b.stack), 1)
			b.closeIfOpen()
			b.moveTo(0, b.arg1())

		case 5: // rlineto
			for len(b.stack) >= 2 {
				dx, dy := b.shift2()
				b.lineTo(dx, dy)
			}
			b.stack = b.stack[:0]

		case 6: // hlineto
			b.altLineTo(true)

		case 7: // vlineto
			b.altLineTo(false)

		case 8: // rrcurveto
			for len(b.stack) >= 6 {
				b.curveTo6(b.shiftN(6))
			}
			b.stack = b.stack[:0]

		case 24: // rcurveline
			for len(b.stack) >= 8 {
				b.curveTo6(b.shiftN(6))
			}
			if len(b.stack) >= 2 {
				dx, dy := b.shift2()
				b.lineTo(dx, dy)
			}
			b.stack = b.stack[:0]

		case 25: // rlinecurve
			for len(b.stack) >= 8 {
				dx, dy := b.shift2()
				b.lineTo(dx, dy)
			}
			if len(b.stack) >= 6 {
				b.curveTo6(b.shiftN(6))
			}
			b.stack = b.stack[:0]

		case 26: // vvcurveto
			b.vvOrHHCurveTo(false)

		case 27: // hhcurveto
			b.vvOrHHCurveTo(true)

		case 30: // vhcurveto
			b.vhOrHVCurveTo(false)

		case 31: // hvcurveto
			b.vhOrHVCurveTo(true)

		case 10: // callsubr
			if len(b.stack) == 0 {
				continue
			}
			idx := int(b.stack[len(b.stack)-1]) + b.localBias
			b.stack = b.stack[:len(b.stack)-1]
			if idx >= 0 && idx < len(b.localSubrs) {
				if err := b.execute(b.localSubrs[idx]); err != nil {
					return err
				}
			}

		case 29: // callgsubr
			if len(b.stack) == 0 {
				continue
			}
			idx := int(b.stack[len(b.stack)-1]) + b.globalBias
			b.stack = b.stack[:len(b.stack)-1]
			if idx >= 0 && idx < len(b.globalSubrs) {
				if err := b.execute(b.globalSubrs[idx]); err != nil {
					return err
				}
			}

		case 11: // return
			return nil

		case 14: // endchar
			b.takeWidthIfArgs(len(b.stack), 0)
			b.closeIfOpen()
			b.stack = b.stack[:0]
			return nil

		case 12: // escape (two-byte operators, including flex): the
			// operands are dropped and nothing is drawn, so a flex
			// curve adds no segment and does not move the current
			// point.
			if i >= len(data) {
				return nil
			}
			i++
			b.stack = b.stack[:0]

		default:
			b.stack = b.stack[:0]
		}
	}
	return nil
}

// decodeCSOperandFloat decodes a Type2 CharString operand as a float64,
// preserving the fractional part of 16.16 fixed-point operands (unlike
// decodeCSOperand, which truncates them for subroutine-remapping use).
func decodeCSOperandFloat(data []byte) (float64, int) {
	if len(data) == 0 {
		return 0, 0
	}
	b0 := data[0]

	switch {
	case b0 >= 32 && b0 <= 246:
		return float64(int(b0) - 139), 1
	case b0 >= 247 && b0 <= 250:
		if len(data) < 2 {
			return 0, 1
		}
		return float64((int(b0)-247)*256 + int(data[1]) + 108), 2
	case b0 >= 251 && b0 <= 254:
		if len(data) < 2 {
			return 0, 1
		}
		return float64(-(int(b0)-251)*256 - int(data[1]) - 108), 2
	case b0 == 28:
		if len(data) < 3 {
			return 0, 1
		}
		return float64(int16(binary.BigEndian.Uint16(data[1:3]))), 3
	case b0 == 255:
		if len(data) < 5 {
			return 0, 1
		}
		v := int32(binary.BigEndian.Uint32(data[1:5]))
		return float64(v) / 65536, 5
	}
	return 0, 1
}

func (b *cffOutlineBuilder) takeWidthIfOdd(n int) {
	if !b.widthParsed && n%2 == 1 {
		b.stack = b.stack[1:]
	}
	b.widthParsed = true
}

func (b *cffOutlineBuilder) takeWidthIfArgs(n, want int) {
	if !b.widthParsed && n > want {
		b.stack = b.stack[1:]
	}
	b.widthParsed = true
}

func (b *cffOutlineBuilder) arg1() float32 {
	if len(b.stack) == 0 {
		return 0
	}
	v := float32(b.stack[0])
	b.stack = b.stack[:0]
	return v
}

func (b *cffOutlineBuilder) arg2() (float32, float32) {
	if len(b.stack) < 2 {
		b.stack = b.stack[:0]
		return 0, 0
	}
	dx, dy := float32(b.stack[0]), float32(b.stack[1])
	b.stack = b.stack[:0]
	return dx, dy
}

func (b *cffOutlineBuilder) shift2() (float32, float32) {
	dx, dy := float32(b.stack[0]), float32(b.stack[1])
	b.stack = b.stack[2:]
	return dx, dy
}

func (b *cffOutlineBuilder) shiftN(n int) []float32 {
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = float32(b.stack[i])
	}
	b.stack = b.stack[n:]
	return out
}

func (b *cffOutlineBuilder) altLineTo(startHorizontal bool) {
	horiz := startHorizontal
	for len(b.stack) >= 1 {
		v := float32(b.stack[0])
		b.stack = b.stack[1:]
		if horiz {
			b.lineTo(v, 0)
		} else {
			b.lineTo(0, v)
		}
		horiz = !horiz
	}
	b.stack = b.stack[:0]
}

func (b *cffOutlineBuilder) vvOrHHCurveTo(horizontal bool) {
	var d1 float32
	if len(b.stack)%4 == 1 {
		d1 = float32(b.stack[0])
		b.stack = b.stack[1:]
	}
	first := true
	for len(b.stack) >= 4 {
		args := b.shiftN(4)
		if horizontal {
			c1x, c1y := b.x+args[0], b.y
			if first {
				c1y += d1
			}
			c2x, c2y := c1x+args[1], c1y+args[2]
			ex, ey := c2x+args[3], c2y
			b.curve(c1x, c1y, c2x, c2y, ex, ey)
		} else {
			c1x, c1y := b.x, b.y+args[0]
			if first {
				c1x += d1
			}
			c2x, c2y := c1x+args[1], c1y+args[2]
			ex, ey := c2x, c2y+args[3]
			b.curve(c1x, c1y, c2x, c2y, ex, ey)
		}
		first = false
	}
	b.stack = b.stack[:0]
}

func (b *cffOutlineBuilder) vhOrHVCurveTo(startHorizontal bool) {
	horiz := startHorizontal
	for len(b.stack) >= 4 {
		last := len(b.stack) == 5
		args := b.shiftN(4)
		var extra float32
		if last && len(b.stack) == 1 {
			extra = float32(b.stack[0])
			b.stack = b.stack[:0]
		}
		if horiz {
			c1x, c1y := b.x+args[0], b.y
			c2x, c2y := c1x+args[1], c1y+args[2]
			ex, ey := c2x+extra, c2y+args[3]
			b.curve(c1x, c1y, c2x, c2y, ex, ey)
		} else {
			c1x, c1y := b.x, b.y+args[0]
			c2x, c2y := c1x+args[1], c1y+args[2]
			ex, ey := c2x+args[3], c2y+extra
			b.curve(c1x, c1y, c2x, c2y, ex, ey)
		}
		horiz = !horiz
	}
	b.stack = b.stack[:0]
}

func (b *cffOutlineBuilder) curveTo6(args []float32) {
	c1x, c1y := b.x+args[0], b.y+args[1]
	c2x, c2y := c1x+args[2], c1y+args[3]
	ex, ey := c2x+args[4], c2y+args[5]
	b.curve(c1x, c1y, c2x, c2y, ex, ey)
}

func (b *cffOutlineBuilder) moveTo(dx, dy float32) {
	b.x += dx
	b.y += dy
	b.outline.Segments = append(b.outline.Segments, Segment{Op: SegmentMoveTo, Args: [2]OutlinePoint{{X: b.x, Y: b.y}}})
	b.open = true
}

func (b *cffOutlineBuilder) lineTo(dx, dy float32) {
	b.x += dx
	b.y += dy
	b.outline.Segments = append(b.outline.Segments, Segment{Op: SegmentLineTo, Args: [2]OutlinePoint{{X: b.x, Y: b.y}}})
}

// curve approximates a cubic Bezier (the only curve CFF draws) with a
// single quadratic through the cubic's midpoint, which is sufficient
// fidelity for pixel-diffing at small rendering sizes and keeps
// GlyphOutline's segment model (move/line/quad) uniform across glyf
// and CFF outlines.
func (b *cffOutlineBuilder) curve(c1x, c1y, c2x, c2y, ex, ey float32) {
	ctrl := OutlinePoint{
		X: (3*c1x + 3*c2x - b.x - ex) / 4,
		Y: (3*c1y + 3*c2y - b.y - ey) / 4,
	}
	b.outline.Segments = append(b.outline.Segments, Segment{Op: SegmentQuadTo, Args: [2]OutlinePoint{ctrl, {X: ex, Y: ey}}})
	b.x, b.y = ex, ey
}

func (b *cffOutlineBuilder) closeIfOpen() {
	if b.open {
		b.outline.Segments = append(b.outline.Segments, Segment{Op: SegmentClose})
		b.open = false
	}
}
