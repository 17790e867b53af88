// Package wordscan implements the shaping/word scan (C6): it walks a
// wordlist, segments each row by script and bidi level, shapes each
// segment with both fonts, fingerprints the shaped output, skips
// segments that would only re-report glyphs already exercised, and
// emits a WordDiff for every segment whose rendered difference meets
// a threshold.
package wordscan

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/typegraph/fontdiff/dfont"
	"github.com/typegraph/fontdiff/internal/dlog"
	"github.com/typegraph/fontdiff/ot"
	"github.com/typegraph/fontdiff/pixeldiff"
	"github.com/typegraph/fontdiff/raster"
	"github.com/typegraph/fontdiff/segment"
	"github.com/typegraph/fontdiff/wordlist"
)

// WordDiff is one emitted word-level difference. Identity is
// (Text, FingerprintBefore, FingerprintAfter, FeatureTags); Score is
// not part of identity.
type WordDiff struct {
	Text              string
	FingerprintBefore string
	FingerprintAfter  string
	FeatureTags       []string
	HTMLLang          string
	Direction         string // "ltr" or "rtl"
	Score             float64
}

// Options configures a Scan.
type Options struct {
	Threshold float64
	FontSize  float64
	SkipRunes map[rune]bool // codepoints that map to a missing-or-new glyph on either side
}

// Scan runs the word scan over the rows read from wl, comparing
// renders of before against after, and returns WordDiffs sorted by
// score descending.
func Scan(wl io.Reader, before, after *dfont.Font, opt Options) ([]WordDiff, error) {
	rb := raster.New(before, opt.FontSize, 0)
	ra := raster.New(after, opt.FontSize, 0)
	differ := pixeldiff.New(rb, ra)

	seen := map[string]bool{}
	var out []WordDiff

	err := wordlist.Parse(wl, func(row wordlist.Row) error {
		features := parseFeatures(row.Features)
		differ.SetFeatures(features)

		scriptTag := tagOrZero(row.Script)
		langTag := tagOrZero(row.Language)
		differ.SetScriptLang(scriptTag, langTag)

		for _, run := range segment.Split(row.Text) {
			diff := scanSegment(differ, run, features, row, opt, seen)
			if diff != nil {
				out = append(out, *diff)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func scanSegment(differ *pixeldiff.Differ, run segment.Run, features []ot.Feature, row wordlist.Row, opt Options, seen map[string]bool) *WordDiff {
	for _, r := range run.Text {
		if opt.SkipRunes[r] {
			return nil
		}
	}

	afterBuf := differ.B.Shape(run.Text)
	if hasNotdef(afterBuf) {
		return nil
	}
	afterFP := fingerprint(afterBuf)
	if allSeen(afterFP, seen) {
		return nil
	}
	markSeen(afterFP, seen)

	beforeBuf := differ.A.Shape(run.Text)
	if hasNotdef(beforeBuf) {
		return nil
	}
	beforeFP := fingerprint(beforeBuf)

	score, _, err := differ.Diff(run.Text)
	if err != nil {
		dlog.Log.Notice("%v", err)
		return nil
	}
	if score < opt.Threshold {
		return nil
	}

	dir := "ltr"
	if run.RTL {
		dir = "rtl"
	}
	return &WordDiff{
		Text:              run.Text,
		FingerprintBefore: strings.Join(beforeFP, "|"),
		FingerprintAfter:  strings.Join(afterFP, "|"),
		FeatureTags:       row.Features,
		HTMLLang:          row.Language,
		Direction:         dir,
		Score:             score,
	}
}

func fingerprint(buf *ot.Buffer) []string {
	comps := make([]string, buf.Len())
	for i, info := range buf.Info {
		pos := buf.Pos[i]
		comps[i] = fmt.Sprintf("%d:%d,%d,%d,%d", info.GlyphID, pos.XAdvance, pos.YAdvance, pos.XOffset, pos.YOffset)
	}
	return comps
}

func allSeen(fp []string, seen map[string]bool) bool {
	if len(fp) == 0 {
		return false
	}
	for _, c := range fp {
		if !seen[c] {
			return false
		}
	}
	return true
}

func markSeen(fp []string, seen map[string]bool) {
	for _, c := range fp {
		seen[c] = true
	}
}

func hasNotdef(buf *ot.Buffer) bool {
	for _, info := range buf.Info {
		if info.GlyphID == 0 {
			return true
		}
	}
	return false
}

func parseFeatures(tags []string) []ot.Feature {
	if len(tags) == 0 {
		return nil
	}
	out := make([]ot.Feature, len(tags))
	for i, t := range tags {
		out[i] = ot.NewFeature(tagOrZero(t), 1)
	}
	return out
}

func tagOrZero(s string) ot.Tag {
	if s == "" {
		return 0
	}
	var b [4]byte
	for i := range b {
		if i < len(s) {
			b[i] = s[i]
		} else {
			b[i] = ' '
		}
	}
	return ot.MakeTag(b[0], b[1], b[2], b[3])
}

// ScriptTally counts, per Unicode script, how many codepoints of that
// script the font's cmap can reach — used to decide whether a
// script's bundled wordlist is worth scanning at all. The cutoff is
// computed against the font's own cmap-intersected rune set, not the
// total Unicode population of the script, so a font with a handful of
// Cyrillic glyphs doesn't read as "barely covers Cyrillic".
func ScriptTally(f *dfont.Font) map[string]int {
	tally := map[string]int{}
	for r := range f.Face().Cmap().CollectMapping() {
		s := scriptOf(r)
		tally[s]++
	}
	return tally
}

func scriptOf(r rune) string {
	runs := segment.Split(string(r))
	if len(runs) == 0 {
		return "Common"
	}
	return runs[0].Script
}
