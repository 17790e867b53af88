package tablediff

import (
	"testing"

	"github.com/typegraph/fontdiff/ot"
)

func TestDiffSelfIsEmpty(t *testing.T) {
	tree := map[string]Tree{
		"name": map[string]Tree{"1": "Example", "2": "Regular"},
		"cmap": map[string]Tree{"0x0041": "gid5"},
	}
	if d := Diff(tree, tree); d != nil {
		t.Errorf("Diff(tree, tree) = %v, want nil", d)
	}
}

func TestDiffLeafChange(t *testing.T) {
	before := map[string]Tree{"name": map[string]Tree{"1": "Old"}}
	after := map[string]Tree{"name": map[string]Tree{"1": "New"}}

	d := Diff(before, after)
	m, ok := d.(map[string]Tree)
	if !ok {
		t.Fatalf("Diff() = %#v, want a map", d)
	}
	nameDiff, ok := m["name"].(map[string]Tree)
	if !ok {
		t.Fatalf("name diff = %#v, want a map", m["name"])
	}
	leaf, ok := nameDiff["1"].(map[string]Tree)
	if !ok {
		t.Fatalf("leaf diff = %#v, want a map", nameDiff["1"])
	}
	if leaf["before"] != "Old" || leaf["after"] != "New" {
		t.Errorf("leaf diff = %#v, want before=Old after=New", leaf)
	}
}

func TestDiffOverflowGuard(t *testing.T) {
	before := map[string]Tree{}
	after := map[string]Tree{}
	for i := 0; i < maxLeaves+5; i++ {
		key := string(rune('a' + i%26))
		before[key+string(rune(i))] = i
		after[key+string(rune(i))] = i + 1000
	}

	d := Diff(before, after)
	if d != "too many changes" {
		t.Errorf("Diff() with %d leaf changes = %#v, want the overflow marker", maxLeaves+5, d)
	}
}

func TestContoursFromOutlineLineNodesKeepTheirCoordinates(t *testing.T) {
	outline := ot.GlyphOutline{Segments: []ot.Segment{
		{Op: ot.SegmentMoveTo, Args: [2]ot.OutlinePoint{{X: 10, Y: 20}}},
		{Op: ot.SegmentLineTo, Args: [2]ot.OutlinePoint{{X: 30, Y: 40}}},
		{Op: ot.SegmentClose},
	}}
	contours := contoursFromOutline(outline)
	c0, ok := contours["0"].(map[string]Tree)
	if !ok {
		t.Fatalf("contours[0] = %#v, want a map", contours["0"])
	}
	n0 := c0["0"].(map[string]Tree)
	if n0["x"] != float32(10) || n0["y"] != float32(20) || n0["on"] != true {
		t.Errorf("node 0 = %#v, want {x:10,y:20,on:true}", n0)
	}
	n1 := c0["1"].(map[string]Tree)
	if n1["x"] != float32(30) || n1["y"] != float32(40) || n1["on"] != true {
		t.Errorf("node 1 = %#v, want {x:30,y:40,on:true}", n1)
	}
}

func TestContoursFromOutlineQuadEmitsControlAndEndpoint(t *testing.T) {
	outline := ot.GlyphOutline{Segments: []ot.Segment{
		{Op: ot.SegmentMoveTo, Args: [2]ot.OutlinePoint{{X: 0, Y: 0}}},
		{Op: ot.SegmentQuadTo, Args: [2]ot.OutlinePoint{{X: 5, Y: 5}, {X: 10, Y: 0}}},
		{Op: ot.SegmentClose},
	}}
	contours := contoursFromOutline(outline)
	c0 := contours["0"].(map[string]Tree)

	control := c0["1"].(map[string]Tree)
	if control["x"] != float32(5) || control["y"] != float32(5) || control["on"] != false {
		t.Errorf("quad control node = %#v, want {x:5,y:5,on:false}", control)
	}
	endpoint := c0["2"].(map[string]Tree)
	if endpoint["x"] != float32(10) || endpoint["y"] != float32(0) || endpoint["on"] != true {
		t.Errorf("quad endpoint node = %#v, want {x:10,y:0,on:true}", endpoint)
	}
}

func TestDiffAddedAndRemovedKeys(t *testing.T) {
	before := map[string]Tree{"a": 1}
	after := map[string]Tree{"b": 2}

	d := Diff(before, after).(map[string]Tree)
	if _, ok := d["a"]; !ok {
		t.Error("removed key \"a\" missing from diff")
	}
	if _, ok := d["b"]; !ok {
		t.Error("added key \"b\" missing from diff")
	}
}
