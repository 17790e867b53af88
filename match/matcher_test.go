package match

import (
	"testing"

	"github.com/typegraph/fontdiff/dfont"
)

func TestStylesByNameLastWriteWinsOnCollision(t *testing.T) {
	discover := func(f *dfont.Font) []dfont.Style {
		return []dfont.Style{{Font: f, Name: "Regular", Coords: dfont.CoordMap{"wght": 400}}}
	}
	fonts := []*dfont.Font{{Path: "a.ttf"}, {Path: "b.ttf"}}
	out := stylesByName(fonts, discover)
	if len(out) != 1 {
		t.Fatalf("got %d names, want 1", len(out))
	}
	if out["Regular"].Font.Path != "b.ttf" {
		t.Errorf("stylesByName kept %q, want the last font processed (b.ttf)", out["Regular"].Font.Path)
	}
}

func TestStylesByNameEmptyInput(t *testing.T) {
	discover := func(f *dfont.Font) []dfont.Style { return nil }
	out := stylesByName(nil, discover)
	if len(out) != 0 {
		t.Errorf("stylesByName(nil, ...) = %v, want empty map", out)
	}
}

func TestInstancesEmptyListsIsMatchError(t *testing.T) {
	m := New(nil, nil)
	if _, err := m.Instances(nil); err == nil {
		t.Error("Instances() with no fonts on either side: expected a MatchError")
	}
}

func TestViaDiscoveryEmptyListsIsMatchError(t *testing.T) {
	m := New(nil, nil)
	if _, err := m.CrossProduct(nil); err == nil {
		t.Error("CrossProduct() with no fonts on either side: expected a MatchError")
	}
	if _, err := m.Masters(nil); err == nil {
		t.Error("Masters() with no fonts on either side: expected a MatchError")
	}
}

func TestDiffenatorEmptyListsIsMatchError(t *testing.T) {
	m := New(nil, nil)
	if _, err := m.Diffenator(nil); err == nil {
		t.Error("Diffenator() with no fonts on either side: expected a MatchError")
	}
}
