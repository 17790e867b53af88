// Package match implements the Matcher (C3): it pairs up Styles from
// two font lists by name, by designspace intersection, by masters, by
// cross-product of axis extremes, or by an explicit coordinate, and
// rescales the "before" font's UPEM to match the "after" font's.
package match

import (
	"regexp"
	"sort"

	"github.com/typegraph/fontdiff/dfont"
	"github.com/typegraph/fontdiff/internal/dferr"
)

// Pair is one aligned (before, after) Style pair.
type Pair struct {
	Before dfont.Style
	After  dfont.Style
}

// Matcher holds the two font lists being compared and emits aligned
// Style pairs.
type Matcher struct {
	Before []*dfont.Font
	After  []*dfont.Font
}

// New constructs a Matcher over the given before/after font lists.
func New(before, after []*dfont.Font) *Matcher {
	return &Matcher{Before: before, After: after}
}

// Instances unions named-instance Styles from each side keyed by
// name, keeps the intersection, and returns them in sorted name
// order. filterRe, if non-nil, further restricts by name.
func (m *Matcher) Instances(filterRe *regexp.Regexp) ([]Pair, error) {
	beforeByName := stylesByName(m.Before, (*dfont.Font).NamedInstances)
	afterByName := stylesByName(m.After, (*dfont.Font).NamedInstances)

	var names []string
	for name := range beforeByName {
		if _, ok := afterByName[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var pairs []Pair
	for _, name := range names {
		if filterRe != nil && !filterRe.MatchString(name) {
			continue
		}
		pairs = append(pairs, Pair{Before: beforeByName[name], After: afterByName[name]})
	}
	if len(pairs) == 0 {
		return nil, &dferr.MatchError{Mode: "instances"}
	}
	return pairs, nil
}

// CrossProduct computes after[0].CrossProduct(), maps each resulting
// Style back through before[0].ClosestStyle, keeps only matches,
// dedupes by name, and orders by coordinate value (tie-broken by
// name).
func (m *Matcher) CrossProduct(filterRe *regexp.Regexp) ([]Pair, error) {
	return m.viaDiscovery(filterRe, (*dfont.Font).CrossProduct)
}

// Masters is the same protocol as CrossProduct, driven by
// after[0].Masters() instead.
func (m *Matcher) Masters(filterRe *regexp.Regexp) ([]Pair, error) {
	return m.viaDiscovery(filterRe, (*dfont.Font).Masters)
}

func (m *Matcher) viaDiscovery(filterRe *regexp.Regexp, discover func(*dfont.Font) []dfont.Style) ([]Pair, error) {
	if len(m.Before) == 0 || len(m.After) == 0 {
		return nil, &dferr.MatchError{Mode: "discovery"}
	}
	candidates := discover(m.After[0])
	before0 := m.Before[0]

	seen := map[string]bool{}
	var pairs []Pair
	for _, after := range candidates {
		before, ok := before0.ClosestStyle(after.Coords)
		if !ok {
			continue
		}
		if seen[after.Name] {
			continue
		}
		if filterRe != nil && !filterRe.MatchString(after.Name) {
			continue
		}
		seen[after.Name] = true
		pairs = append(pairs, Pair{Before: *before, After: after})
	}
	axes := m.After[0].Face().VariationAxes()
	sort.Slice(pairs, func(i, j int) bool {
		for _, ax := range axes {
			tag := ax.Tag.String()
			a, b := pairs[i].After.Coords[tag], pairs[j].After.Coords[tag]
			if a != b {
				return a < b
			}
		}
		return pairs[i].After.Name < pairs[j].After.Name
	})
	if len(pairs) == 0 {
		return nil, &dferr.MatchError{Mode: "discovery"}
	}
	return pairs, nil
}

// Diffenator is the single-pair convenience used by the default CLI
// path. If both fonts are variable, coords pins both (or, if coords is
// empty, both are set to the after font's axis defaults). If exactly
// one is variable, the variable font is pinned to the static font's
// stylename-matching named instance. If both are static, they are
// paired as-is with an implied {wght:400}.
func (m *Matcher) Diffenator(coords dfont.CoordMap) (Pair, error) {
	if len(m.Before) == 0 || len(m.After) == 0 {
		return Pair{}, &dferr.MatchError{Mode: "diffenator"}
	}
	before, after := m.Before[0], m.After[0]

	switch {
	case before.IsVariable() && after.IsVariable():
		c := coords
		if len(c) == 0 {
			c = defaultCoords(after)
		}
		before.SetVariations(c)
		after.SetVariations(c)
	case before.IsVariable() && !after.IsVariable():
		if err := before.SetVariationsFromStatic(after); err != nil {
			return Pair{}, &dferr.MatchError{Mode: "diffenator", Err: err}
		}
	case !before.IsVariable() && after.IsVariable():
		if err := after.SetVariationsFromStatic(before); err != nil {
			return Pair{}, &dferr.MatchError{Mode: "diffenator", Err: err}
		}
	default:
		static := dfont.CoordMap{"wght": 400}
		before.SetVariations(static)
		after.SetVariations(static)
	}

	return Pair{
		Before: dfont.Style{Font: before, Coords: before.Coords(), Name: before.Path},
		After:  dfont.Style{Font: after, Coords: after.Coords(), Name: after.Path},
	}, nil
}

func defaultCoords(f *dfont.Font) dfont.CoordMap {
	c := dfont.CoordMap{}
	for tag, v := range f.Coords() {
		c[tag] = v
	}
	return c
}

func stylesByName(fonts []*dfont.Font, discover func(*dfont.Font) []dfont.Style) map[string]dfont.Style {
	out := map[string]dfont.Style{}
	for _, f := range fonts {
		for _, s := range discover(f) {
			out[s.Name] = s
		}
	}
	return out
}
