// Package numparse extracts numbers embedded in free-form text.
//
// The default pattern recognizes plain integers ("123"), comma-grouped
// integers ("456,789") and decimals ("90.19"), delimited by word
// boundaries. A custom template narrows the search to numbers in context:
// every "<NUM>" in the template is replaced by a capturing form of the
// default pattern, so "foo:\s*<NUM>" only matches numbers after "foo:".
//
// Two API layers are provided:
//
//   - Structured: Extract and Extractor.Extract return []Match with byte
//     offsets, the matched text and the parsed values.
//   - Convenience: Numbers returns []float64 for the default pattern.
//
// Each numeral has its grouping commas stripped and is parsed as a
// float64. An optional MapFunc transforms the values of every match into a
// list or a record; an optional FilterFunc drops matches it rejects.
//
// Byte-offset invariant: for every Match m produced from input s,
// s[m.Start:m.End] == m.Text.
//
// All functions are safe for concurrent use by multiple goroutines. An
// Extractor is safe for concurrent use as long as its MapFunc and
// FilterFunc are.
//
// Known limitations:
//
//   - Only ASCII digits, "," grouping and "." decimals are recognized.
//   - Templates use RE2 syntax (package regexp); lookaround and
//     backreferences are rejected with ErrInvalidPattern.
//   - Signs are not part of the default pattern: "-5" yields 5.
package numparse

import (
	"errors"
	"fmt"
)

// Sentinel errors. Configuration errors are returned before scanning
// starts; ErrInvalidMapResult is returned at the first offending match.
var (
	ErrInvalidPatternType = errors.New("numparse: pattern must be a string")
	ErrMissingPlaceholder = errors.New("numparse: pattern must contain " + Placeholder)
	ErrInvalidPattern     = errors.New("numparse: invalid pattern")
	ErrInvalidMapType     = errors.New("numparse: map must be a function")
	ErrInvalidFilterType  = errors.New("numparse: filter must be a function")
	ErrInvalidMapResult   = errors.New("numparse: map must return array or object literal")
)

// MapFunc transforms the numbers parsed from one match. The result must be
// a slice, an array or a map with string keys; see Values.
type MapFunc func(nums []float64) (any, error)

// FilterFunc reports whether a match should be kept. It receives the
// values after MapFunc, if one is configured.
type FilterFunc func(v Values) (bool, error)

// Options configures an extraction. Every field is optional.
type Options struct {
	// Pattern is a template containing at least one Placeholder. Empty
	// selects the default pattern.
	Pattern string

	// Map, when set, replaces each match's values with its result.
	Map MapFunc

	// Filter, when set, drops matches for which it returns false.
	Filter FilterFunc
}

// Match is one numeric match in the source text.
type Match struct {
	Text   string `json:"match"`  // Full substring consumed by the pattern
	Start  int    `json:"start"`  // Byte offset in the original string (inclusive)
	End    int    `json:"end"`    // Byte offset in the original string (exclusive)
	Values Values `json:"values"` // Parsed numbers, or the MapFunc result
}

// String returns a debug representation, e.g. Match("foo: 123")[0:8]=[123].
func (m Match) String() string {
	return fmt.Sprintf("Match(%q)[%d:%d]=%s", m.Text, m.Start, m.End, m.Values)
}

// Extract finds every match of opts.Pattern (or the default pattern) in s.
// Returns nil and no error when nothing matches.
func Extract(s string, opts Options) ([]Match, error) {
	e, err := New(opts)
	if err != nil {
		return nil, err
	}
	return e.Extract(s)
}

// Numbers returns the values of every default-pattern match in s, in
// order of appearance.
func Numbers(s string) []float64 {
	locs := Regex.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]float64, 0, len(locs))
	for _, loc := range locs {
		out = append(out, parseNum(s[loc[0]:loc[1]]))
	}
	return out
}
