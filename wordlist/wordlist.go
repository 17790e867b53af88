// Package wordlist provides read-only access to bundled per-script
// wordlists (C10): UTF-8, LF-separated files named
// wordlists/{Script}.txt, one row per line.
package wordlist

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Row is one parsed wordlist line:
// <string>[,<script_tag>[,<language_tag>[,<feature_tag>...]]]
type Row struct {
	Text     string
	Script   string // "" means "guess from the string"
	Language string
	Features []string
}

// Parse reads rows from r lazily, calling fn for each one. Blank
// lines are skipped. A bare word with no commas is a valid row with
// no script/language/features.
func Parse(r io.Reader, fn func(Row) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		row := Row{Text: fields[0]}
		if len(fields) > 1 && fields[1] != "" && fields[1] != "dflt" {
			row.Script = fields[1]
		}
		if len(fields) > 2 && fields[2] != "" && fields[2] != "dflt" {
			row.Language = fields[2]
		}
		if len(fields) > 3 {
			row.Features = fields[3:]
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Open opens a bundled wordlist file for script (without the
// "wordlists/" prefix or ".txt" suffix), for example Open(dir,
// "Latin").
func Open(dir, script string) (*os.File, error) {
	return os.Open(dir + "/" + script + ".txt")
}

// PathFor returns the conventional path for a script's wordlist under
// dir.
func PathFor(dir, script string) string {
	return dir + "/" + script + ".txt"
}
