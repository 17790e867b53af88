// Package segment splits a string into maximal runs that share both a
// Unicode bidi level and a Unicode script, the unit the word scan (C6)
// evaluates instead of whole wordlist rows.
package segment

import (
	"sort"
	"unicode"

	"golang.org/x/text/unicode/bidi"
)

// scriptNames is unicode.Scripts' keys in a fixed order, so scriptOf
// is deterministic even though some codepoints belong to more than
// one script table (e.g. punctuation shared between Common and a
// specific script).
var scriptNames = sortedScriptNames()

func sortedScriptNames() []string {
	names := make([]string, 0, len(unicode.Scripts))
	for name := range unicode.Scripts {
		if name == "Common" || name == "Inherited" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run is one maximal (script, bidi-level) segment of a string.
type Run struct {
	Text      string
	Script    string // Unicode script name, "Common" if none matched
	BidiLevel int
	RTL       bool
}

// Split segments s into Runs: first by bidi run (via the Unicode
// bidi algorithm), then each bidi run is further split at script
// boundaries.
func Split(s string) []Run {
	if s == "" {
		return nil
	}

	var p bidi.Paragraph
	if _, err := p.SetString(s); err != nil {
		return scriptOnlyRuns(s, 0, false)
	}
	ordering, err := p.Order()
	if err != nil {
		return scriptOnlyRuns(s, 0, false)
	}

	var runs []Run
	for i := 0; i < ordering.NumRuns(); i++ {
		r := ordering.Run(i)
		text := r.String()
		rtl := r.Direction() == bidi.RightToLeft
		level := 0
		if rtl {
			level = 1
		}
		runs = append(runs, scriptOnlyRuns(text, level, rtl)...)
	}
	return runs
}

// scriptOnlyRuns splits text at script boundaries within a single
// bidi level.
func scriptOnlyRuns(text string, level int, rtl bool) []Run {
	var runs []Run
	var cur []rune
	curScript := ""

	flush := func() {
		if len(cur) > 0 {
			runs = append(runs, Run{Text: string(cur), Script: curScript, BidiLevel: level, RTL: rtl})
			cur = cur[:0]
		}
	}

	for _, r := range text {
		sc := scriptOf(r)
		if sc != curScript && len(cur) > 0 && sc != "Common" && curScript != "Common" {
			flush()
		}
		if len(cur) == 0 {
			curScript = sc
		} else if curScript == "Common" && sc != "Common" {
			curScript = sc
		}
		cur = append(cur, r)
	}
	flush()
	return runs
}

func scriptOf(r rune) string {
	for _, name := range scriptNames {
		if unicode.Is(unicode.Scripts[name], r) {
			return name
		}
	}
	return "Common"
}
