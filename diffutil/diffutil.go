// Package diffutil collects small cross-cutting helpers (C11):
// coordinate-string parsing/formatting, sample-text selection, and
// character-filter regex construction.
package diffutil

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/typegraph/fontdiff/dfont"
)

// ParseCoords parses the CLI/build-graph coordinate string format
// "axis=float(,axis=float)*" into a CoordMap.
func ParseCoords(s string) (dfont.CoordMap, error) {
	out := dfont.CoordMap{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("diffutil: malformed coordinate %q", part)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("diffutil: malformed coordinate %q: %w", part, err)
		}
		out[strings.TrimSpace(kv[0])] = v
	}
	return out, nil
}

// FormatCoords renders a CoordMap back to "axis=float,axis=float"
// form, sorted by axis tag so the output is round-trippable and
// deterministic.
func FormatCoords(c dfont.CoordMap) string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, c[k])
	}
	return strings.Join(parts, ",")
}

// CharacterFilter compiles a character-class expression (e.g. the
// CLI's --characters flag) into a regexp usable to restrict a glyph
// scan to a codepoint subset. The expression is wrapped into an
// anchored single-rune match.
func CharacterFilter(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	return regexp.Compile("^[" + expr + "]$")
}

// SampleText builds a fallback render sample for a codepoint when no
// wordlist row exercises it directly: the rune by itself.
func SampleText(r rune) string {
	return string(r)
}
