package match

import "github.com/typegraph/fontdiff/dfont"

// Upms scales the before-font's UPEM to equal the after-font's UPEM
// for every paired style (or the single direct pair), using the
// standard upem-rescaling transformation. It is a pure transform: see
// dfont.Font.RescaleUpem.
func (m *Matcher) Upms(pairs []Pair) {
	seen := map[*dfont.Font]bool{}
	for _, p := range pairs {
		if p.Before.Font == nil || p.After.Font == nil || seen[p.Before.Font] {
			continue
		}
		seen[p.Before.Font] = true
		p.Before.Font.RescaleUpem(p.After.Font.Upem())
	}
}
