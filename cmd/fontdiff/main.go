// Command fontdiff compares two font binaries and writes a diff
// report: table-structure changes, word-shaping changes, and
// glyph-outline changes above a pixel-difference threshold.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/typegraph/fontdiff/dfont"
	"github.com/typegraph/fontdiff/diff"
	"github.com/typegraph/fontdiff/diffutil"
	"github.com/typegraph/fontdiff/internal/dlog"
	"github.com/typegraph/fontdiff/match"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		dlog.Log.Error("%v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("fontdiff", flag.ContinueOnError)
	var (
		coords       = fs.String("coords", "", "variation coordinates, axis=float,axis=float")
		threshold    = fs.Float64("threshold", 0.90, "minimum mean per-channel pixel delta to report")
		fontSize     = fs.Float64("font-size", 28, "em size used for rasterisation")
		noWords      = fs.Bool("no-words", false, "skip the word-shaping scan")
		noTables     = fs.Bool("no-tables", false, "skip the table-structure scan")
		userWordlist = fs.String("user-wordlist", "", "path to an additional user-supplied wordlist")
		characters   = fs.String("characters", "", "restrict results to this character class, e.g. \"n|t\"")
		wordlistDir  = fs.String("wordlist-dir", "wordlists", "directory of bundled per-script wordlists")
		verbosity    = fs.Int("v", int(dlog.LevelWarning), "log verbosity, 0 (error) to 4 (debug)")
		out          = fs.String("out", "-", "output path for the JSON diff record, - for stdout")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	dlog.SetLogger(dlog.NewConsoleLogger(dlog.Level(*verbosity)))

	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: fontdiff <before> <after> [flags]")
	}
	beforePath, afterPath := rest[0], rest[1]

	coordMap, err := diffutil.ParseCoords(*coords)
	if err != nil {
		return err
	}

	before, err := dfont.Open(beforePath, "old")
	if err != nil {
		return err
	}
	after, err := dfont.Open(afterPath, "new")
	if err != nil {
		return err
	}

	m := match.New([]*dfont.Font{before}, []*dfont.Font{after})
	pair, err := m.Diffenator(coordMap)
	if err != nil {
		return err
	}
	m.Upms([]match.Pair{pair})

	var filter *regexp.Regexp
	if *characters != "" {
		filter, err = diffutil.CharacterFilter(*characters)
		if err != nil {
			return err
		}
	}

	d := diff.New(pair.Before.Font, pair.After.Font, diff.Options{
		Threshold:   *threshold,
		FontSize:    *fontSize,
		WordlistDir: *wordlistDir,
	})

	if !*noTables {
		d.DiffTables()
	}
	if !*noWords {
		d.DiffWords()
	}
	if *userWordlist != "" {
		if err := d.DiffStrings(*userWordlist); err != nil {
			dlog.Log.Warning("user wordlist: %v", err)
		}
	}
	if filter != nil {
		d.FilterCharacters(filter)
	}

	return writeResult(*out, d.Result)
}

func writeResult(path string, result diff.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if path == "-" || path == "" {
		return enc.Encode(result)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fe := json.NewEncoder(f)
	fe.SetIndent("", "  ")
	return fe.Encode(result)
}
