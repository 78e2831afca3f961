package numparse

import (
	"fmt"
	"math"
	"regexp"
)

// Extractor is a validated, compiled Options. Build one with New when the
// same configuration is applied to many inputs.
type Extractor struct {
	re     *regexp.Regexp
	groups []int // submatch indices of placeholder groups; nil in default mode
	mapFn  MapFunc
	filter FilterFunc
}

// New validates opts and compiles its pattern.
//
// Returns ErrMissingPlaceholder when opts.Pattern is set but has no
// Placeholder, and an error wrapping ErrInvalidPattern when the generated
// expression does not compile.
func New(opts Options) (*Extractor, error) {
	e := &Extractor{
		re:     Regex,
		mapFn:  opts.Map,
		filter: opts.Filter,
	}
	if opts.Pattern != "" {
		re, groups, err := compileTemplate(opts.Pattern)
		if err != nil {
			return nil, err
		}
		e.re = re
		e.groups = groups
	}
	return e, nil
}

// Custom reports whether e was built from a custom template.
func (e *Extractor) Custom() bool {
	return e.groups != nil
}

// String returns the regular expression e matches with.
func (e *Extractor) String() string {
	return e.re.String()
}

// Extract returns the matches in s, in order of appearance.
// Matches rejected by the filter are skipped; any error aborts the whole
// call and no matches are returned.
func (e *Extractor) Extract(s string) ([]Match, error) {
	if s == "" {
		return nil, nil
	}

	// The engine's match list preserves word-boundary context at each
	// resume point, which re-slicing s at the cursor would not.
	locs := e.re.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return nil, nil
	}

	var out []Match
	for _, loc := range locs {
		m, keep, err := e.process(s, loc)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, m)
		}
	}
	return out, nil
}

// process runs the coerce, map and filter steps on one raw match.
func (e *Extractor) process(s string, loc []int) (Match, bool, error) {
	text := s[loc[0]:loc[1]]
	nums := e.coerce(s, loc)

	values := ListOf(nums...)
	if e.mapFn != nil {
		mapped, err := e.mapFn(nums)
		if err != nil {
			return Match{}, false, fmt.Errorf("numparse: map %q: %w", text, err)
		}
		var ok bool
		if values, ok = normalize(mapped); !ok {
			return Match{}, false, fmt.Errorf("%w: got %T at %q", ErrInvalidMapResult, mapped, text)
		}
	}

	if e.filter != nil {
		keep, err := e.filter(values)
		if err != nil {
			return Match{}, false, fmt.Errorf("numparse: filter %q: %w", text, err)
		}
		if !keep {
			return Match{}, false, nil
		}
	}

	return Match{
		Text:   text,
		Start:  loc[0],
		End:    loc[1],
		Values: values,
	}, true, nil
}

// coerce parses the numerals of one match: the whole match in default
// mode, one numeral per placeholder group otherwise.
func (e *Extractor) coerce(s string, loc []int) []float64 {
	if e.groups == nil {
		return []float64{parseNum(s[loc[0]:loc[1]])}
	}
	nums := make([]float64, len(e.groups))
	for i, g := range e.groups {
		start, end := loc[2*g], loc[2*g+1]
		if start < 0 {
			// Placeholder inside a group that did not participate.
			nums[i] = math.NaN()
			continue
		}
		nums[i] = parseNum(s[start:end])
	}
	return nums
}
