// Package glyphscan implements the glyph scan (C7): it computes the
// missing/new/modified glyph sets between two fonts' cmaps, rasterises
// each common codepoint at small size, and emits a GlyphDiff for
// every one whose rendered difference meets a threshold.
package glyphscan

import (
	"fmt"
	"sort"

	"golang.org/x/text/unicode/runenames"

	"github.com/typegraph/fontdiff/dfont"
	"github.com/typegraph/fontdiff/internal/dferr"
	"github.com/typegraph/fontdiff/internal/dlog"
	"github.com/typegraph/fontdiff/pixeldiff"
	"github.com/typegraph/fontdiff/raster"
)

// Glyph identifies one codepoint for reporting.
type Glyph struct {
	Codepoint string // the rune itself, as a string
	Name      string // Unicode name, "" if unknown
	HexName   string // "U+XXXX"
}

// GlyphDiff adds the pixel-diff result to a Glyph. Identity is
// (Codepoint, Name, HexName).
type GlyphDiff struct {
	Glyph
	Score   float64
	DiffMap []byte
}

// Items is the (missing, new, modified) triple the glyph scan
// produces.
type Items struct {
	Missing  []Glyph
	New      []Glyph
	Modified []GlyphDiff
}

// Options configures a Scan.
type Options struct {
	Threshold float64
	FontSize  float64
}

// Scan computes Items for before vs after.
func Scan(before, after *dfont.Font, opt Options) Items {
	beforeMap := before.Face().Cmap().CollectMapping()
	afterMap := after.Face().Cmap().CollectMapping()

	var items Items

	for r := range beforeMap {
		if _, ok := afterMap[r]; !ok {
			items.Missing = append(items.Missing, glyphFor(r))
		}
	}
	for r := range afterMap {
		if _, ok := beforeMap[r]; !ok {
			items.New = append(items.New, glyphFor(r))
		}
	}

	rb := raster.New(before, opt.FontSize, 0)
	ra := raster.New(after, opt.FontSize, 0)
	differ := pixeldiff.New(rb, ra)

	var common []rune
	for r := range beforeMap {
		if _, ok := afterMap[r]; ok {
			common = append(common, r)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })

	for _, r := range common {
		score, diffMap, err := differ.Diff(string(r))
		if err != nil || score < opt.Threshold {
			continue
		}
		items.Modified = append(items.Modified, GlyphDiff{Glyph: glyphFor(r), Score: score, DiffMap: diffMap})
	}

	sortGlyphs(items.Missing)
	sortGlyphs(items.New)
	sort.SliceStable(items.Modified, func(i, j int) bool { return items.Modified[i].Score > items.Modified[j].Score })

	return items
}

func glyphFor(r rune) Glyph {
	return Glyph{
		Codepoint: string(r),
		Name:      unicodeName(r),
		HexName:   fmt.Sprintf("U+%04X", r),
	}
}

// unicodeName looks up r's Unicode character name. A codepoint with no
// assigned name logs a non-fatal UnicodeNameError and the glyph record
// is kept with an empty name, per the error taxonomy's non-fatal/skip
// policy for this condition.
func unicodeName(r rune) string {
	name := runenames.Name(r)
	if name == "" {
		dlog.Log.Notice("%v", &dferr.UnicodeNameError{Codepoint: r})
	}
	return name
}

func sortGlyphs(g []Glyph) {
	sort.Slice(g, func(i, j int) bool { return g[i].Codepoint < g[j].Codepoint })
}
