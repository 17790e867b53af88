// Package diff implements the DiffFonts facade (C9): it composes the
// matcher's style pair, the table diff (C8), and the word/glyph scans
// (C6, C7) into a single object exposing plain-data results to a
// report writer.
package diff

import (
	"os"
	"regexp"

	"github.com/typegraph/fontdiff/dfont"
	"github.com/typegraph/fontdiff/glyphscan"
	"github.com/typegraph/fontdiff/internal/dferr"
	"github.com/typegraph/fontdiff/internal/dlog"
	"github.com/typegraph/fontdiff/tablediff"
	"github.com/typegraph/fontdiff/wordscan"
)

// Options configures every scan a DiffFonts runs.
type Options struct {
	Threshold   float64
	FontSize    float64
	WordlistDir string // directory holding wordlists/{Script}.txt
}

// Result is the plain-data record a report writer consumes.
type Result struct {
	Tables  map[string]tablediff.Tree // table name -> change tree
	Glyphs  glyphscan.Items
	Words   map[string][]wordscan.WordDiff // script -> diffs
	Strings []wordscan.WordDiff
}

// DiffFonts runs diff_tables/diff_words/diff_strings/diff_all over one
// (before, after) Style pair. All methods are idempotent and
// rerun-safe: each just overwrites its own Result field.
type DiffFonts struct {
	Before *dfont.Font
	After  *dfont.Font
	Opt    Options

	Result Result
}

// New constructs a DiffFonts over an already-matched style pair.
func New(before, after *dfont.Font, opt Options) *DiffFonts {
	return &DiffFonts{Before: before, After: after, Opt: opt}
}

// DiffTables populates Result.Tables, possibly empty.
func (d *DiffFonts) DiffTables() {
	beforeTree := tablediff.BuildTree(d.Before)
	afterTree := tablediff.BuildTree(d.After)

	out := map[string]tablediff.Tree{}
	names := map[string]bool{}
	for k := range beforeTree {
		names[k] = true
	}
	for k := range afterTree {
		names[k] = true
	}
	for name := range names {
		t := tablediff.Diff(beforeTree[name], afterTree[name])
		if t != nil {
			out[name] = t
		}
	}
	d.Result.Tables = out
}

// DiffWords populates Result.Glyphs and Result.Words.
func (d *DiffFonts) DiffWords() {
	d.Result.Glyphs = glyphscan.Scan(d.Before, d.After, glyphscan.Options{
		Threshold: d.Opt.Threshold,
		FontSize:  d.Opt.FontSize,
	})

	skipRunes := skippedRuneSet(d.Result.Glyphs)

	tally := wordscan.ScriptTally(d.After)
	words := map[string][]wordscan.WordDiff{}
	for script, count := range tally {
		if count < 10 {
			continue
		}
		path := d.Opt.WordlistDir + "/" + script + ".txt"
		f, err := os.Open(path)
		if err != nil {
			dlog.Log.Notice("%v", &dferr.WordlistMissing{Script: script})
			continue
		}
		diffs, err := wordscan.Scan(f, d.Before, d.After, wordscan.Options{
			Threshold: d.Opt.Threshold,
			FontSize:  d.Opt.FontSize,
			SkipRunes: skipRunes,
		})
		f.Close()
		if err != nil {
			dlog.Log.Warning("word scan %s: %v", script, err)
			continue
		}
		if len(diffs) > 0 {
			words[script] = diffs
		}
	}
	d.Result.Words = words
}

// DiffStrings populates Result.Strings from a user-supplied wordlist.
func (d *DiffFonts) DiffStrings(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	skipRunes := skippedRuneSet(d.Result.Glyphs)
	diffs, err := wordscan.Scan(f, d.Before, d.After, wordscan.Options{
		Threshold: d.Opt.Threshold,
		FontSize:  d.Opt.FontSize,
		SkipRunes: skipRunes,
	})
	if err != nil {
		return err
	}
	d.Result.Strings = diffs
	return nil
}

// DiffAll invokes every scan but DiffStrings.
func (d *DiffFonts) DiffAll() {
	d.DiffTables()
	d.DiffWords()
}

// FilterCharacters retains only WordDiffs/GlyphDiffs whose string is a
// subset of the characters matched by filter. Applying it twice is a
// no-op the second time, since it only ever removes entries.
func (d *DiffFonts) FilterCharacters(filter *regexp.Regexp) {
	if filter == nil {
		return
	}
	d.Result.Glyphs.Modified = filterModified(d.Result.Glyphs.Modified, filter)
	for script, diffs := range d.Result.Words {
		kept := filterWords(diffs, filter)
		if len(kept) == 0 {
			delete(d.Result.Words, script)
		} else {
			d.Result.Words[script] = kept
		}
	}
	d.Result.Strings = filterWords(d.Result.Strings, filter)
}

func filterWords(diffs []wordscan.WordDiff, filter *regexp.Regexp) []wordscan.WordDiff {
	var out []wordscan.WordDiff
	for _, w := range diffs {
		if stringSubset(w.Text, filter) {
			out = append(out, w)
		}
	}
	return out
}

func filterModified(diffs []glyphscan.GlyphDiff, filter *regexp.Regexp) []glyphscan.GlyphDiff {
	var out []glyphscan.GlyphDiff
	for _, g := range diffs {
		if stringSubset(g.Codepoint, filter) {
			out = append(out, g)
		}
	}
	return out
}

func stringSubset(s string, filter *regexp.Regexp) bool {
	for _, r := range s {
		if !filter.MatchString(string(r)) {
			return false
		}
	}
	return true
}

// skippedRuneSet collects every codepoint the glyph scan found missing
// on one side or new on the other: the word scan must not report a
// difference that is really just "this glyph doesn't exist yet/anymore".
func skippedRuneSet(items glyphscan.Items) map[rune]bool {
	out := map[rune]bool{}
	for _, g := range items.Missing {
		for _, r := range g.Codepoint {
			out[r] = true
		}
	}
	for _, g := range items.New {
		for _, r := range g.Codepoint {
			out[r] = true
		}
	}
	return out
}
