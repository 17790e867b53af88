package diff

import (
	"regexp"
	"testing"

	"github.com/typegraph/fontdiff/glyphscan"
	"github.com/typegraph/fontdiff/wordscan"
)

func TestStringSubset(t *testing.T) {
	re := regexp.MustCompile("^[nt]$")
	if !stringSubset("tn", re) {
		t.Error("stringSubset(\"tn\") = false, want true")
	}
	if stringSubset("tna", re) {
		t.Error("stringSubset(\"tna\") = true, want false (contains 'a')")
	}
	if !stringSubset("", re) {
		t.Error("stringSubset(\"\") = false, want true (vacuously true)")
	}
}

func TestFilterWordsKeepsOnlySubsetMatches(t *testing.T) {
	re := regexp.MustCompile("^[nt]$")
	diffs := []wordscan.WordDiff{{Text: "tn"}, {Text: "tna"}, {Text: "nt"}}
	kept := filterWords(diffs, re)
	if len(kept) != 2 {
		t.Fatalf("filterWords() kept %d, want 2: %+v", len(kept), kept)
	}
}

func TestFilterCharactersIdempotent(t *testing.T) {
	re := regexp.MustCompile("^[nt]$")
	d := &DiffFonts{Result: Result{
		Words: map[string][]wordscan.WordDiff{
			"Latin": {{Text: "tn"}, {Text: "xyz"}},
		},
		Glyphs: glyphscan.Items{
			Modified: []glyphscan.GlyphDiff{{Glyph: glyphscan.Glyph{Codepoint: "n"}}, {Glyph: glyphscan.Glyph{Codepoint: "q"}}},
		},
	}}
	d.FilterCharacters(re)
	first := len(d.Result.Words["Latin"]) + len(d.Result.Glyphs.Modified)

	d.FilterCharacters(re)
	second := len(d.Result.Words["Latin"]) + len(d.Result.Glyphs.Modified)

	if first != second {
		t.Errorf("FilterCharacters is not idempotent: first pass left %d entries, second left %d", first, second)
	}
	if _, ok := d.Result.Words["Latin"]; !ok || len(d.Result.Words["Latin"]) != 1 {
		t.Errorf("Words[Latin] = %+v, want exactly the \"tn\" entry", d.Result.Words["Latin"])
	}
}

func TestFilterCharactersNilFilterIsNoOp(t *testing.T) {
	d := &DiffFonts{Result: Result{
		Words: map[string][]wordscan.WordDiff{"Latin": {{Text: "xyz"}}},
	}}
	d.FilterCharacters(nil)
	if len(d.Result.Words["Latin"]) != 1 {
		t.Error("FilterCharacters(nil) mutated the result")
	}
}

func TestSkippedRuneSetUnionsMissingAndNew(t *testing.T) {
	items := glyphscan.Items{
		Missing: []glyphscan.Glyph{{Codepoint: "a"}},
		New:     []glyphscan.Glyph{{Codepoint: "b"}},
	}
	set := skippedRuneSet(items)
	if !set['a'] || !set['b'] {
		t.Errorf("skippedRuneSet() = %v, want both 'a' and 'b'", set)
	}
	if len(set) != 2 {
		t.Errorf("skippedRuneSet() has %d entries, want 2", len(set))
	}
}
