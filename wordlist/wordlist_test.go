package wordlist

import (
	"strings"
	"testing"
)

func parseAll(t *testing.T, text string) []Row {
	t.Helper()
	var rows []Row
	if err := Parse(strings.NewReader(text), func(r Row) error {
		rows = append(rows, r)
		return nil
	}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return rows
}

func TestParseBareWord(t *testing.T) {
	rows := parseAll(t, "hello\n")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.Text != "hello" || r.Script != "" || r.Language != "" || r.Features != nil {
		t.Errorf("parsed bare word = %+v, want only Text set", r)
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	rows := parseAll(t, "hello\n\n\nworld\n")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}
}

func TestParseDfltTokensAreEmpty(t *testing.T) {
	rows := parseAll(t, "hello,dflt,dflt\n")
	r := rows[0]
	if r.Script != "" || r.Language != "" {
		t.Errorf("dflt tokens not treated as empty: %+v", r)
	}
}

func TestParseScriptLanguageFeatures(t *testing.T) {
	rows := parseAll(t, "hello,Latn,en,liga,kern\n")
	r := rows[0]
	if r.Script != "Latn" || r.Language != "en" {
		t.Errorf("script/language = %q/%q, want Latn/en", r.Script, r.Language)
	}
	if len(r.Features) != 2 || r.Features[0] != "liga" || r.Features[1] != "kern" {
		t.Errorf("features = %v, want [liga kern]", r.Features)
	}
}

func TestPathForBuildsScriptPath(t *testing.T) {
	if got, want := PathFor("wordlists", "Latin"), "wordlists/Latin.txt"; got != want {
		t.Errorf("PathFor = %q, want %q", got, want)
	}
}
