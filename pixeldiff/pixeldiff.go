// Package pixeldiff implements PixelDiffer (C5): it owns two
// Renderers sharing script/lang/feature state and computes a scalar
// "changed pixels" score plus a per-pixel difference map between
// their rendering of the same string.
package pixeldiff

import (
	"github.com/typegraph/fontdiff/ot"
	"github.com/typegraph/fontdiff/raster"
)

// Differ holds the two Renderers being compared. Setters mutate both
// sides together; this is the only way its state changes.
type Differ struct {
	A, B *raster.Renderer
}

// New builds a Differ over a, b.
func New(a, b *raster.Renderer) *Differ {
	return &Differ{A: a, B: b}
}

// SetScriptLang sets the script/language tags on both Renderers.
func (d *Differ) SetScriptLang(script, lang ot.Tag) {
	d.A.Script, d.B.Script = script, script
	d.A.Language, d.B.Language = lang, lang
}

// SetFeatures sets the feature map on both Renderers.
func (d *Differ) SetFeatures(features []ot.Feature) {
	d.A.Features = features
	d.B.Features = features
}

// Diff renders s with both Renderers, crops to their shared top-left
// W x H region (W = min width, H = min height), computes the
// per-channel absolute difference, and returns the mean absolute
// per-channel pixel difference as score, scaled to [0, 255].
func (d *Differ) Diff(s string) (float64, []byte, error) {
	a, err := d.A.Render(s)
	if err != nil {
		return 0, nil, err
	}
	b, err := d.B.Render(s)
	if err != nil {
		return 0, nil, err
	}

	w := min(a.W, b.W)
	h := min(a.H, b.H)
	if w == 0 || h == 0 {
		return 0, nil, nil
	}

	diffMap := make([]byte, w*h*4)
	var sum int64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ai := (y*a.W + x) * 4
			bi := (y*b.W + x) * 4
			di := (y*w + x) * 4
			for c := 0; c < 4; c++ {
				dv := absDiff(a.Pix[ai+c], b.Pix[bi+c])
				diffMap[di+c] = dv
				sum += int64(dv)
			}
		}
	}

	score := float64(sum) / float64(w*h*4)
	return score, diffMap, nil
}

func absDiff(x, y byte) byte {
	if x > y {
		return x - y
	}
	return y - x
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
