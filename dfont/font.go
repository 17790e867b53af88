// Package dfont implements the font handle (load, expose axes/named
// instances/masters, own shaping and rasterising state) and the Style
// value type describing one concrete design point of a font.
package dfont

import (
	"fmt"
	"os"
	"sort"

	"github.com/typegraph/fontdiff/internal/dferr"
	"github.com/typegraph/fontdiff/ot"
)

// colour-table tags used to detect colour-glyph capability.
var (
	tagSVG  = ot.MakeTag('S', 'V', 'G', ' ')
	tagCOLR = ot.MakeTag('C', 'O', 'L', 'R')
	tagCBDT = ot.MakeTag('C', 'B', 'D', 'T')
)

// CoordMap is an axis-tag-to-value variation coordinate set. Keys are
// four-character OpenType axis tags ("wght", "wdth", ...).
type CoordMap map[string]float64

// Clone returns an independent copy of m.
func (m CoordMap) Clone() CoordMap {
	out := make(CoordMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Font is a loaded font binary plus its mutable variation-coordinate
// state. It owns a shaping handle and the parsed tables needed to
// rasterise glyph outlines. A Font is not safe for concurrent
// mutation: each worker must own its own handle (see SPEC_FULL.md
// §5).
type Font struct {
	Path   string
	Suffix string // "old" or "new"; CSS/report identity only

	raw    *ot.Font
	face   *ot.Face
	shaper *ot.Shaper
	glyf   *ot.Glyf
	cff    *ot.CFF
	avar   *ot.Avar
	gvar   *ot.Gvar
	hvar   *ot.Hvar
	vvar   *ot.Vvar
	mvar   *ot.Mvar

	upem uint16
	// scale multiplies every raw font-unit value (outline coordinates,
	// advances) a caller reads from this handle. It is 1 until
	// RescaleUpem is called. Keeping rescaling as a multiplier consumed
	// at read time — rather than rewriting glyf/hmtx bytes in place —
	// satisfies the no-on-disk-font-mutation rule while still producing
	// table-diff-comparable units.
	scale float64

	coords CoordMap
}

// Open loads a font file, parses its tables, and constructs its
// shaping and rasterising handles. suffix is "old" or "new" and is
// used only for report identity.
func Open(path string, suffix string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &dferr.LoadError{Path: path, Err: err}
	}
	return OpenData(data, path, suffix)
}

// OpenData loads a font already resident in memory. Open uses it after
// reading the file.
func OpenData(data []byte, path string, suffix string) (*Font, error) {
	raw, err := ot.ParseFont(data, 0)
	if err != nil {
		return nil, &dferr.LoadError{Path: path, Err: err}
	}

	face, err := ot.NewFace(raw)
	if err != nil {
		return nil, &dferr.LoadError{Path: path, Err: err}
	}

	shaper, err := ot.NewShaperFromFace(face)
	if err != nil {
		return nil, &dferr.LoadError{Path: path, Err: err}
	}

	f := &Font{
		Path:   path,
		Suffix: suffix,
		raw:    raw,
		face:   face,
		shaper: shaper,
		upem:   face.Upem(),
		coords: CoordMap{},
	}

	if raw.HasTable(ot.TagGlyf) {
		f.glyf, _ = ot.ParseGlyfFromFont(raw)
	}
	if raw.HasTable(ot.TagCFF) {
		if d, err := raw.TableData(ot.TagCFF); err == nil {
			f.cff, _ = ot.ParseCFF(d)
		}
	}
	if d, err := raw.TableData(ot.TagAvar); err == nil {
		f.avar, _ = ot.ParseAvar(d)
	}
	if d, err := raw.TableData(ot.TagGvar); err == nil {
		f.gvar, _ = ot.ParseGvar(d)
	}
	if d, err := raw.TableData(ot.TagHvar); err == nil {
		f.hvar, _ = ot.ParseHvar(d)
	}
	if d, err := raw.TableData(ot.TagVvar); err == nil {
		f.vvar, _ = ot.ParseVvar(d)
	}
	if d, err := raw.TableData(ot.TagMvar); err == nil {
		f.mvar, _ = ot.ParseMvar(d)
	}

	// Initial coordinate state = axis defaults.
	for _, ax := range face.VariationAxes() {
		f.coords[ax.Tag.String()] = float64(ax.DefaultValue)
	}

	return f, nil
}

// RawFont exposes the parsed table directory for table-diff.
func (f *Font) RawFont() *ot.Font { return f.raw }

// Face exposes the metrics/cmap handle for rendering and glyph scans.
func (f *Font) Face() *ot.Face { return f.face }

// Shaper exposes the HarfBuzz-equivalent shaping engine.
func (f *Font) Shaper() *ot.Shaper { return f.shaper }

// Glyf exposes the parsed glyf table, or nil for CFF-outline fonts.
func (f *Font) Glyf() *ot.Glyf { return f.glyf }

// CFF exposes the parsed CFF table, or nil for glyf-outline fonts.
func (f *Font) CFF() *ot.CFF { return f.cff }

// Upem returns the font's units-per-em.
func (f *Font) Upem() uint16 { return f.upem }

// SetUpem overrides the recorded units-per-em without changing Scale.
// RescaleUpem (used by match.Upms) updates both and does not call this.
func (f *Font) SetUpem(upem uint16) { f.upem = upem }

// Scale returns the multiplier every raw font-unit value read through
// this handle must be scaled by. 1 unless RescaleUpem has been
// called.
func (f *Font) Scale() float64 {
	if f.scale == 0 {
		return 1
	}
	return f.scale
}

// RescaleUpem scales this font's effective units-per-em to target.
// It does not touch the underlying font bytes: it records a
// multiplier (Scale) that every raw-unit consumer (rasteriser,
// table-diff) must apply, and updates the recorded Upem so that
// font_size/UPEM scaling stays correct. The net visual effect is
// nothing — render() always divides by UPEM — but it makes
// before/after raw units comparable for table-diff.
func (f *Font) RescaleUpem(target uint16) {
	if target == 0 || f.upem == 0 {
		return
	}
	f.scale = f.Scale() * float64(target) / float64(f.upem)
	f.upem = target
}

// IsVariable reports whether the font declares a variation-axes table.
func (f *Font) IsVariable() bool {
	return f.face.HasVariations()
}

// IsColor reports whether any colour-glyph table is present.
func (f *Font) IsColor() bool {
	return f.raw.HasTable(tagSVG) || f.raw.HasTable(tagCOLR) || f.raw.HasTable(tagCBDT)
}

// FamilyName returns the font's family name, falling back to the
// postscript name, matching how most font tooling resolves a "best"
// display name when a font has unusual name-table coverage.
func (f *Font) FamilyName() string {
	if n := f.face.FamilyName(); n != "" {
		return n
	}
	return f.face.PostscriptName()
}

// subfamilyName returns a style's best human-readable name, preferring
// the postscript name and falling back to the family name with the
// weight class appended for static fonts with no better label.
func (f *Font) subfamilyName() string {
	if n := f.face.PostscriptName(); n != "" {
		return n
	}
	return fmt.Sprintf("%s-%d", f.FamilyName(), f.face.WeightClass())
}

// Coords returns a copy of the font's current variation coordinates.
func (f *Font) Coords() CoordMap {
	return f.coords.Clone()
}

// SetVariations updates the coordinate state and pushes it into the
// shaping handle. A no-op on an empty map, matching the source
// semantics: callers that want to reset to defaults pass the font's
// own axis-default map explicitly.
func (f *Font) SetVariations(coords CoordMap) {
	if len(coords) == 0 {
		return
	}
	variations := make([]ot.Variation, 0, len(coords))
	for tagStr, v := range coords {
		tag := tagFromString(tagStr)
		f.coords[tagStr] = v
		variations = append(variations, ot.Variation{Tag: tag, Value: float32(v)})
	}
	f.shaper.SetVariations(variations)
}

// SetVariationsFromStatic pins this (variable) font to the named
// instance whose subfamily name matches other's best subfamily name.
func (f *Font) SetVariationsFromStatic(other *Font) error {
	want := other.subfamilyName()
	for i, inst := range f.face.NamedInstances() {
		if instanceName(f, inst) == want {
			f.shaper.SetNamedInstance(i)
			f.syncCoordsFromShaper()
			return nil
		}
	}
	return &dferr.NoMatchingInstance{WantStyle: want}
}

func (f *Font) syncCoordsFromShaper() {
	design := f.shaper.DesignCoords()
	for i, ax := range f.face.VariationAxes() {
		if i < len(design) {
			f.coords[ax.Tag.String()] = float64(design[i])
		}
	}
}

func instanceName(f *Font, inst ot.NamedInstance) string {
	if inst.PostScriptNameID != 0 {
		if n := f.face.Get(inst.PostScriptNameID); n != "" {
			return n
		}
	}
	return f.face.Get(inst.SubfamilyNameID)
}

// ClosestStyle accepts coords iff every requested axis exists in the
// font and every value lies within [min,max]; boundary values are
// valid. Returns nil, false otherwise.
func (f *Font) ClosestStyle(coords CoordMap) (*Style, bool) {
	if !f.face.HasVariations() {
		return nil, false
	}
	for tagStr, v := range coords {
		ax, ok := f.face.FindVariationAxis(tagFromString(tagStr))
		if !ok {
			return nil, false
		}
		if v < float64(ax.MinValue) || v > float64(ax.MaxValue) {
			return nil, false
		}
	}
	return &Style{Font: f, Coords: coords.Clone(), Name: coordMapName(coords)}, true
}

func tagFromString(s string) ot.Tag {
	var b [4]byte
	for i := 0; i < 4; i++ {
		if i < len(s) {
			b[i] = s[i]
		} else {
			b[i] = ' '
		}
	}
	return ot.MakeTag(b[0], b[1], b[2], b[3])
}

func coordMapName(c CoordMap) string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	name := ""
	for _, k := range keys {
		if name != "" {
			name += ","
		}
		name += fmt.Sprintf("%s=%g", k, c[k])
	}
	return name
}
