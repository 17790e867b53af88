package wordscan

import (
	"testing"

	"github.com/typegraph/fontdiff/ot"
)

func bufferOf(glyphs ...ot.GlyphID) *ot.Buffer {
	buf := ot.NewBuffer()
	for _, g := range glyphs {
		buf.Info = append(buf.Info, ot.GlyphInfo{GlyphID: g})
		buf.Pos = append(buf.Pos, ot.GlyphPos{XAdvance: int16(g) * 10})
	}
	return buf
}

func TestFingerprintStability(t *testing.T) {
	buf := bufferOf(3, 4, 5)
	a := fingerprint(buf)
	b := fingerprint(buf)
	if len(a) != len(b) {
		t.Fatalf("fingerprint length changed across calls: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("fingerprint[%d] changed across calls: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestAllSeenRequiresEveryComponent(t *testing.T) {
	seen := map[string]bool{"a": true, "b": true}
	if allSeen([]string{"a", "b", "c"}, seen) {
		t.Error("allSeen() = true with an unseen component \"c\"")
	}
	if !allSeen([]string{"a", "b"}, seen) {
		t.Error("allSeen() = false when every component is seen")
	}
	if allSeen(nil, seen) {
		t.Error("allSeen(nil, ...) = true, want false (nothing to dedupe against)")
	}
}

func TestHasNotdefDetectsGlyphZero(t *testing.T) {
	if !hasNotdef(bufferOf(0, 2)) {
		t.Error("hasNotdef() = false with a glyph 0 present")
	}
	if hasNotdef(bufferOf(1, 2)) {
		t.Error("hasNotdef() = true with no glyph 0 present")
	}
}

func TestMarkSeenIsUnconditional(t *testing.T) {
	seen := map[string]bool{}
	fp := []string{"x", "y"}
	markSeen(fp, seen)
	if !seen["x"] || !seen["y"] {
		t.Error("markSeen did not record every fingerprint component")
	}
}
