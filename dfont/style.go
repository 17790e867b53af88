package dfont

import (
	"fmt"
	"sort"

	"github.com/typegraph/fontdiff/ot"
)

// Style is a (font, coordinate vector, name) triple representing one
// concrete design point. Applying it is the only way a Style mutates
// state, and it only ever mutates its own owning Font.
type Style struct {
	Font   *Font
	Coords CoordMap
	Name   string
}

// Apply pushes the style's coordinates into its owning font.
func (s *Style) Apply() {
	s.Font.SetVariations(s.Coords)
}

func (s *Style) String() string {
	return fmt.Sprintf("%s(%s)", s.Name, coordMapName(s.Coords))
}

// NamedInstances returns one Style per named instance of a variable
// font, or a single Style for a static font built from
// (wght=OS/2.usWeightClass, SubfamilyName).
func (f *Font) NamedInstances() []Style {
	if !f.IsVariable() {
		return []Style{{
			Font:   f,
			Coords: CoordMap{"wght": float64(f.face.WeightClass())},
			Name:   f.subfamilyName(),
		}}
	}

	axes := f.face.VariationAxes()
	var styles []Style
	for _, inst := range f.face.NamedInstances() {
		coords := CoordMap{}
		for i, v := range inst.Coords {
			if i < len(axes) {
				coords[axes[i].Tag.String()] = float64(v)
			}
		}
		name := instanceName(f, inst)
		if name == "" {
			name = fmt.Sprintf("Instance%d", inst.Index)
		}
		styles = append(styles, Style{Font: f, Coords: coords, Name: name})
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i].Name < styles[j].Name })
	return styles
}

// CrossProduct returns the Cartesian product of {min, (min+max)/2, max}
// across every declared axis.
func (f *Font) CrossProduct() []Style {
	axes := f.face.VariationAxes()
	if len(axes) == 0 {
		return nil
	}

	var rows []CoordMap
	rows = append(rows, CoordMap{})
	for _, ax := range axes {
		mid := (float64(ax.MinValue) + float64(ax.MaxValue)) / 2
		values := []float64{float64(ax.MinValue), mid, float64(ax.MaxValue)}
		var next []CoordMap
		for _, row := range rows {
			for _, v := range values {
				nr := row.Clone()
				nr[ax.Tag.String()] = v
				next = append(next, nr)
			}
		}
		rows = next
	}

	styles := make([]Style, len(rows))
	for i, r := range rows {
		styles[i] = Style{Font: f, Coords: r, Name: coordMapName(r)}
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i].Name < styles[j].Name })
	return styles
}

// Masters computes per-axis "peak" values by inspecting every
// tuple/item variation store the font carries (gvar, HVAR, VVAR,
// MVAR), reverse-mapping each through avar (if present) back to
// user-space, adding the default (0 normalized) position, and
// dropping axes with one or fewer distinct peaks. Masters is the
// Cartesian product of the remaining per-axis peak sets.
func (f *Font) Masters() []Style {
	axes := f.face.VariationAxes()
	if len(axes) == 0 {
		return nil
	}

	peaksByAxis := make([][]float64, len(axes))
	for i := range peaksByAxis {
		peaksByAxis[i] = []float64{0} // default (normalized 0) always included
	}

	collect := func(tuples [][]int16) {
		for _, t := range tuples {
			for i := 0; i < len(t) && i < len(axes); i++ {
				if t[i] == 0 {
					continue
				}
				norm := reverseAvarNormalized(f.avar, i, t[i])
				peaksByAxis[i] = append(peaksByAxis[i], norm)
			}
		}
	}

	if f.gvar != nil {
		collect(f.gvar.CollectPeakTuples())
	}
	if f.hvar != nil {
		collect(f.hvar.PeakTuples())
	}
	if f.vvar != nil {
		collect(f.vvar.PeakTuples())
	}
	if f.mvar != nil {
		collect(f.mvar.PeakTuples())
	}

	var rows []CoordMap
	rows = append(rows, CoordMap{})
	anyMultiAxis := false
	for i, ax := range axes {
		distinct := dedupeFloats(peaksByAxis[i])
		if len(distinct) <= 1 {
			continue
		}
		anyMultiAxis = true
		var next []CoordMap
		for _, row := range rows {
			for _, norm := range distinct {
				nr := row.Clone()
				nr[ax.Tag.String()] = float64(userSpaceValue(ax, float32(norm)))
				next = append(next, nr)
			}
		}
		rows = next
	}

	if !anyMultiAxis {
		return nil
	}

	styles := make([]Style, len(rows))
	for i, r := range rows {
		styles[i] = Style{Font: f, Coords: r, Name: coordMapName(r)}
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i].Name < styles[j].Name })
	return styles
}

// reverseAvarNormalized maps a post-avar F2DOT14 peak back through the
// axis's avar segment map (if present) to a pre-avar normalized float
// in [-1, 1].
func reverseAvarNormalized(avar *ot.Avar, axisIndex int, peak int16) float64 {
	v := int(peak)
	if avar != nil && avar.HasData() {
		v = avar.ReverseMapValue(axisIndex, v)
	}
	return float64(v) / 16384
}

// userSpaceValue converts a pre-avar normalized value in [-1, 1] to
// the axis's user-space coordinate, using the standard pivot at
// (min, default, max) — the inverse of Fvar.NormalizeAxisValue.
func userSpaceValue(ax ot.AxisInfo, norm float32) float32 {
	switch {
	case norm == 0:
		return ax.DefaultValue
	case norm < 0:
		return ax.DefaultValue + norm*(ax.DefaultValue-ax.MinValue)
	default:
		return ax.DefaultValue + norm*(ax.MaxValue-ax.DefaultValue)
	}
}

func dedupeFloats(vs []float64) []float64 {
	seen := make(map[float64]bool, len(vs))
	var out []float64
	for _, v := range vs {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}
