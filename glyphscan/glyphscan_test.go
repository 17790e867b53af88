package glyphscan

import "testing"

func TestGlyphForHexName(t *testing.T) {
	g := glyphFor('A')
	if g.HexName != "U+0041" {
		t.Errorf("HexName = %q, want U+0041", g.HexName)
	}
	if g.Codepoint != "A" {
		t.Errorf("Codepoint = %q, want %q", g.Codepoint, "A")
	}
}

func TestUnicodeNameKnownCodepoint(t *testing.T) {
	if got := unicodeName('a'); got != "LATIN SMALL LETTER A" {
		t.Errorf("unicodeName('a') = %q, want LATIN SMALL LETTER A", got)
	}
}

func TestSortGlyphsOrdersByCodepoint(t *testing.T) {
	g := []Glyph{{Codepoint: "c"}, {Codepoint: "a"}, {Codepoint: "b"}}
	sortGlyphs(g)
	if g[0].Codepoint != "a" || g[1].Codepoint != "b" || g[2].Codepoint != "c" {
		t.Errorf("sortGlyphs() = %+v, want a, b, c in order", g)
	}
}
