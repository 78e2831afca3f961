package numparse

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Pattern matches a bare number: a comma-grouped integer ("1,234") or a
// plain integer, with an optional fractional part, delimited by word
// boundaries.
const Pattern = `\b(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?\b`

// Placeholder marks where a number is expected in a custom template.
const Placeholder = "<NUM>"

// groupName names the capture group substituted for each Placeholder.
// Groups the caller names "num" are treated as placeholders too.
const groupName = "num"

// placeholderGroup is the capturing form of Pattern substituted for every
// Placeholder.
const placeholderGroup = `(?P<` + groupName + `>` + Pattern + `)`

// Regex is the compiled default Pattern.
var Regex = regexp.MustCompile(Pattern)

// GeneratePattern returns template with every Placeholder replaced by a
// capturing group around Pattern. The result is a regular expression in
// RE2 syntax; one named group "num" exists per placeholder, in template
// order.
//
// Returns ErrMissingPlaceholder if template has no Placeholder.
func GeneratePattern(template string) (string, error) {
	if !strings.Contains(template, Placeholder) {
		return "", ErrMissingPlaceholder
	}
	return strings.ReplaceAll(template, Placeholder, placeholderGroup), nil
}

// compileTemplate builds and compiles template, returning the regexp and
// the submatch indices of its placeholder groups.
func compileTemplate(template string) (*regexp.Regexp, []int, error) {
	pattern, err := GeneratePattern(template)
	if err != nil {
		return nil, nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	groups := make([]int, 0, strings.Count(template, Placeholder))
	for i, name := range re.SubexpNames() {
		if name == groupName {
			groups = append(groups, i)
		}
	}
	return re, groups, nil
}

// parseNum strips grouping commas from a numeral and parses it.
// Numerals that overflow float64 yield ±Inf.
func parseNum(s string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		// ParseFloat reports ErrRange with a usable ±Inf or ±0 value.
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}
