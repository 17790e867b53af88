package diffutil

import "testing"

func TestParseCoordsFormatCoordsRoundTrip(t *testing.T) {
	cases := []string{
		"wght=400",
		"wght=400,wdth=100",
		"wght=700.5,ital=1,opsz=12",
		"",
	}
	for _, s := range cases {
		m, err := ParseCoords(s)
		if err != nil {
			t.Fatalf("ParseCoords(%q): %v", s, err)
		}
		again, err := ParseCoords(FormatCoords(m))
		if err != nil {
			t.Fatalf("ParseCoords(FormatCoords(%q)): %v", s, err)
		}
		if len(again) != len(m) {
			t.Fatalf("round trip changed axis count: %v -> %v", m, again)
		}
		for k, v := range m {
			if again[k] != v {
				t.Errorf("round trip changed %s: %v -> %v", k, v, again[k])
			}
		}
	}
}

func TestParseCoordsMalformed(t *testing.T) {
	if _, err := ParseCoords("wght"); err == nil {
		t.Error("expected an error for a coordinate with no value")
	}
	if _, err := ParseCoords("wght=notafloat"); err == nil {
		t.Error("expected an error for a non-numeric value")
	}
}

func TestCharacterFilterStableAcrossRebuilds(t *testing.T) {
	re, err := CharacterFilter("n|t")
	if err != nil {
		t.Fatalf("CharacterFilter: %v", err)
	}
	for _, r := range []rune{'n', 't', 'a', 'z'} {
		first := re.MatchString(string(r))
		re2, err := CharacterFilter("n|t")
		if err != nil {
			t.Fatalf("CharacterFilter (second build): %v", err)
		}
		second := re2.MatchString(string(r))
		if first != second {
			t.Errorf("filter result for %q not stable across rebuilds: %v vs %v", r, first, second)
		}
	}
}
