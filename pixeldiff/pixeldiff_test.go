package pixeldiff

import "testing"

func TestAbsDiff(t *testing.T) {
	cases := []struct{ x, y, want byte }{
		{10, 3, 7},
		{3, 10, 7},
		{5, 5, 0},
		{0, 255, 255},
	}
	for _, c := range cases {
		if got := absDiff(c.x, c.y); got != c.want {
			t.Errorf("absDiff(%d, %d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
}

func TestMin(t *testing.T) {
	if min(3, 5) != 3 {
		t.Error("min(3, 5) != 3")
	}
	if min(5, 3) != 3 {
		t.Error("min(5, 3) != 3")
	}
	if min(4, 4) != 4 {
		t.Error("min(4, 4) != 4")
	}
}
