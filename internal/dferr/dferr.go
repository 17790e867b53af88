// Package dferr defines the font-diffing error taxonomy: which
// failures abort a job (fatal) and which are logged and skipped
// (non-fatal). Each type wraps an underlying cause so callers can
// still errors.Is/errors.As through to it.
package dferr

import "fmt"

// LoadError means a font file could not be parsed, or a table the
// loader requires is absent. Fatal for the job.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MatchError means a Matcher produced zero style pairs when the caller
// required at least one. Fatal.
type MatchError struct {
	Mode string
	Err  error
}

func (e *MatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("match (%s): %v", e.Mode, e.Err)
	}
	return fmt.Sprintf("match (%s): no common styles", e.Mode)
}

func (e *MatchError) Unwrap() error { return e.Err }

// NoMatchingInstance means stylename-based variation pinning could not
// find a matching named instance. Fatal for that style pair only;
// other pairs in the same run continue.
type NoMatchingInstance struct {
	WantStyle string
}

func (e *NoMatchingInstance) Error() string {
	return fmt.Sprintf("no named instance matching style %q", e.WantStyle)
}

// WordlistMissing means no bundled wordlist exists for a script with
// enough reachable codepoints to be worth scanning. Non-fatal: logged,
// that script is skipped.
type WordlistMissing struct {
	Script string
}

func (e *WordlistMissing) Error() string {
	return fmt.Sprintf("no wordlist for script %q", e.Script)
}

// RenderError means shaping returned an empty buffer, or rasterisation
// produced a zero-sized canvas. Non-fatal: the string is skipped with
// score 0.
type RenderError struct {
	Text string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %q: %v", e.Text, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// UnicodeNameError means a codepoint has no Unicode name. Non-fatal:
// the glyph record is kept with an empty name.
type UnicodeNameError struct {
	Codepoint rune
}

func (e *UnicodeNameError) Error() string {
	return fmt.Sprintf("no unicode name for U+%04X", e.Codepoint)
}
