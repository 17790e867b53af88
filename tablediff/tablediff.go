// Package tablediff implements the table diff (C8): it produces a
// normalised tree from a font's tables and recursively diffs two such
// trees into a change tree, collapsing any subtree with 200 or more
// leaves into a single overflow marker.
package tablediff

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/typegraph/fontdiff/dfont"
	"github.com/typegraph/fontdiff/ot"
)

// maxLeaves is the overflow guard: a subtree with at least this many
// leaf differences collapses into a single marker instead of a full
// listing.
const maxLeaves = 200

// Tree is a normalised table representation: every node is either a
// leaf (string, number, bool) or a map[string]interface{}/[]interface{}.
type Tree = interface{}

// BuildTree produces a normalised tree for f's tables: required
// shapes for name/fvar/cmap/kern/glyf (per the component design), and
// a depth-limited raw-content fallback for every other present table.
func BuildTree(f *dfont.Font) map[string]Tree {
	out := map[string]Tree{}

	if n := f.Face().NameTable(); n != nil {
		out["name"] = buildNameTree(f)
	}
	if f.IsVariable() {
		out["fvar"] = buildFvarTree(f)
	}
	if cm := f.Face().Cmap(); cm != nil {
		out["cmap"] = buildCmapTree(cm)
	}
	if raw, err := f.RawFont().TableData(ot.MakeTag('k', 'e', 'r', 'n')); err == nil {
		if k, err := ot.ParseKern(raw, f.RawFont().NumGlyphs()); err == nil {
			out["kern"] = buildKernTree(k)
		}
	}
	if f.Glyf() != nil {
		out["glyf"] = buildGlyfTree(f)
	}

	for _, tag := range f.RawFont().Tables() {
		name := tag.String()
		if _, handled := out[name]; handled {
			continue
		}
		data, err := f.RawFont().TableData(tag)
		if err != nil {
			continue
		}
		out[name] = rawTableLeaf(data)
	}

	return out
}

func buildNameTree(f *dfont.Font) map[string]Tree {
	out := map[string]Tree{}
	// The name table is collapsed per-nameID (no platform/encoding
	// distinction is kept by the parsed handle); fonts under
	// comparison are assumed to share platform conventions.
	for _, id := range []uint16{1, 2, 4, 6, 16, 17} {
		if v := f.Face().Get(id); v != "" {
			out[fmt.Sprintf("%d", id)] = v
		}
	}
	return out
}

func buildFvarTree(f *dfont.Font) map[string]Tree {
	axes := map[string]Tree{}
	for _, ax := range f.Face().VariationAxes() {
		axes[ax.Tag.String()] = map[string]Tree{
			"minValue":     ax.MinValue,
			"maxValue":     ax.MaxValue,
			"defaultValue": ax.DefaultValue,
		}
	}
	instances := map[string]Tree{}
	for _, inst := range f.Face().NamedInstances() {
		name := f.Face().Get(inst.SubfamilyNameID)
		coords := make([]Tree, len(inst.Coords))
		for i, c := range inst.Coords {
			coords[i] = c
		}
		var psName Tree
		if inst.PostScriptNameID != 0 {
			if v := f.Face().Get(inst.PostScriptNameID); v != "" {
				psName = v
			}
		}
		instances[name] = map[string]Tree{
			"coordinates":    coords,
			"postscriptName": psName,
			// the fvar InstanceRecord flags field is reserved with no
			// defined bits; the parser discards it, so this is always 0.
			"flags": 0,
		}
	}
	return map[string]Tree{"axes": axes, "instances": instances}
}

func buildCmapTree(cm *ot.Cmap) map[string]Tree {
	out := map[string]Tree{}
	for r, gid := range cm.CollectMapping() {
		out[fmt.Sprintf("0x%04X", r)] = fmt.Sprintf("gid%d", gid)
	}
	return out
}

func buildKernTree(k *ot.Kern) []Tree {
	sub := map[string]Tree{}
	for pair, v := range k.Pairs() {
		key := fmt.Sprintf("%d/%d", pair[0], pair[1])
		sub[key] = v
	}
	return []Tree{sub}
}

func buildGlyfTree(f *dfont.Font) map[string]Tree {
	g := f.Glyf()
	out := map[string]Tree{}
	n := f.RawFont().NumGlyphs()
	for gid := 0; gid < n; gid++ {
		gd := g.GetGlyph(ot.GlyphID(gid))
		if gd == nil {
			continue
		}
		if gd.IsComposite() {
			comps := g.GetComponents(ot.GlyphID(gid))
			list := make([]Tree, len(comps))
			for i, c := range comps {
				list[i] = fmt.Sprintf("gid%d", c)
			}
			out[fmt.Sprintf("gid%d", gid)] = map[string]Tree{"components": list}
			continue
		}
		outline, ok := g.GlyphOutlineForGID(ot.GlyphID(gid))
		if !ok {
			continue
		}
		out[fmt.Sprintf("gid%d", gid)] = contoursFromOutline(outline)
	}
	return out
}

// contoursFromOutline walks a flattened, curve-resolved glyph outline
// and groups its nodes into per-contour {x,y,on} maps. Move/line
// segments contribute a single on-curve node (Args[0]); a quad
// segment contributes its off-curve control point (Args[0]) followed
// by its on-curve endpoint (Args[1]).
func contoursFromOutline(outline ot.GlyphOutline) map[string]Tree {
	contours := map[string]Tree{}
	contourIdx := 0
	nodeIdx := 0
	nodes := map[string]Tree{}
	addNode := func(p ot.OutlinePoint, on bool) {
		nodes[fmt.Sprintf("%d", nodeIdx)] = map[string]Tree{
			"x":  p.X,
			"y":  p.Y,
			"on": on,
		}
		nodeIdx++
	}
	for _, seg := range outline.Segments {
		switch seg.Op {
		case ot.SegmentClose:
			contours[fmt.Sprintf("%d", contourIdx)] = nodes
			contourIdx++
			nodeIdx = 0
			nodes = map[string]Tree{}
		case ot.SegmentMoveTo, ot.SegmentLineTo:
			addNode(seg.Args[0], true)
		case ot.SegmentQuadTo:
			addNode(seg.Args[0], false)
			addNode(seg.Args[1], true)
		}
	}
	return contours
}

// rawTableLeaf summarises a table this package has no dedicated
// normaliser for as a (length, content hash) pair: still structurally
// comparable, just not broken into named fields.
func rawTableLeaf(data []byte) map[string]Tree {
	sum := sha256.Sum256(data)
	return map[string]Tree{
		"length": len(data),
		"sha256": hex.EncodeToString(sum[:8]),
	}
}

// Diff recursively compares two normalised trees and returns a change
// tree: maps only contain keys that differ (value is
// {before, after} for a changed leaf, or a nested diff for a changed
// subtree), and a subtree with >= maxLeaves leaf differences collapses
// to the string "too many changes".
func Diff(before, after Tree) Tree {
	d, _ := diff(before, after)
	return d
}

func diff(before, after Tree) (Tree, int) {
	bm, bIsMap := before.(map[string]Tree)
	am, aIsMap := after.(map[string]Tree)
	if bIsMap && aIsMap {
		return diffMaps(bm, am)
	}

	bl, bIsList := before.([]Tree)
	al, aIsList := after.([]Tree)
	if bIsList && aIsList {
		return diffLists(bl, al)
	}

	if leafEqual(before, after) {
		return nil, 0
	}
	return map[string]Tree{"before": before, "after": after}, 1
}

func diffMaps(before, after map[string]Tree) (Tree, int) {
	keys := map[string]bool{}
	for k := range before {
		keys[k] = true
	}
	for k := range after {
		keys[k] = true
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	out := map[string]Tree{}
	total := 0
	for _, k := range names {
		b, hasB := before[k]
		a, hasA := after[k]
		if !hasB {
			out[k] = map[string]Tree{"after": a}
			total++
			continue
		}
		if !hasA {
			out[k] = map[string]Tree{"before": b}
			total++
			continue
		}
		d, n := diff(b, a)
		if n > 0 {
			out[k] = d
			total += n
		}
	}
	if total >= maxLeaves {
		return "too many changes", total
	}
	if len(out) == 0 {
		return nil, 0
	}
	return out, total
}

func diffLists(before, after []Tree) (Tree, int) {
	n := len(before)
	if len(after) > n {
		n = len(after)
	}
	var out []Tree
	total := 0
	for i := 0; i < n; i++ {
		var b, a Tree
		if i < len(before) {
			b = before[i]
		}
		if i < len(after) {
			a = after[i]
		}
		d, c := diff(b, a)
		if c > 0 {
			out = append(out, d)
			total += c
		}
	}
	if total >= maxLeaves {
		return "too many changes", total
	}
	if len(out) == 0 {
		return nil, 0
	}
	return out, total
}

func leafEqual(a, b Tree) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
