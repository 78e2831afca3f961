// Tests for the numparse package: Extract, New, Numbers, GeneratePattern.
package numparse

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

const sample = "123 456,789 90.19 abc  100,00"

// span returns a Match for the first occurrence of text in s.
func span(t *testing.T, s, text string, v Values) Match {
	t.Helper()
	i := strings.Index(s, text)
	if i < 0 {
		t.Fatalf("%q not found in %q", text, s)
	}
	return Match{Text: text, Start: i, End: i + len(text), Values: v}
}

func mustExtract(t *testing.T, s string, opts Options) []Match {
	t.Helper()
	got, err := Extract(s, opts)
	if err != nil {
		t.Fatalf("Extract(%q) error: %v", s, err)
	}
	return got
}

func assertMatches(t *testing.T, got, want []Match) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d matches %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("match[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExtractDefault(t *testing.T) {
	t.Parallel()

	got := mustExtract(t, sample, Options{})
	want := []Match{
		{Text: "123", Start: 0, End: 3, Values: ListOf(123)},
		{Text: "456,789", Start: 4, End: 11, Values: ListOf(456789)},
		{Text: "90.19", Start: 12, End: 17, Values: ListOf(90.19)},
		{Text: "100", Start: 23, End: 26, Values: ListOf(100)},
		{Text: "00", Start: 27, End: 29, Values: ListOf(0)},
	}
	assertMatches(t, got, want)
}

func TestExtractNoNumerals(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "abc", "no digits, at all.", "x1y", "a.b,c"}
	for _, s := range inputs {
		got := mustExtract(t, s, Options{})
		if len(got) != 0 {
			t.Errorf("Extract(%q) = %v, want none", s, got)
		}
	}
}

func TestExtractCustomPattern(t *testing.T) {
	t.Parallel()

	s := "foo: 123 bar:\t456,789 foo:90.19 abc  100,00"
	got := mustExtract(t, s, Options{Pattern: `foo:\s?<NUM>`})
	want := []Match{
		span(t, s, "foo: 123", ListOf(123)),
		span(t, s, "foo:90.19", ListOf(90.19)),
	}
	assertMatches(t, got, want)
}

func TestExtractFilter(t *testing.T) {
	t.Parallel()

	s := "foo: 123 foo:  456,786 foo:90.19 abc   10,000"
	got := mustExtract(t, s, Options{
		Pattern: `foo:\s*<NUM>`,
		Filter: func(v Values) (bool, error) {
			x, _ := v.Float(0)
			return math.Mod(x, 3) == 0, nil
		},
	})
	want := []Match{
		span(t, s, "foo: 123", ListOf(123)),
		span(t, s, "foo:  456,786", ListOf(456786)),
	}
	assertMatches(t, got, want)
}

func TestExtractMapThenFilter(t *testing.T) {
	t.Parallel()

	s := "foo: 123 foo:  456,786 foo:90.19 abc   10,000"
	var seen []Kind
	got := mustExtract(t, s, Options{
		Pattern: `foo:\s*<NUM>`,
		Map: func(nums []float64) (any, error) {
			return map[string]any{"foo": nums[0]}, nil
		},
		Filter: func(v Values) (bool, error) {
			seen = append(seen, v.Kind)
			foo, _ := v.Field("foo")
			return math.Mod(foo, 3) == 0, nil
		},
	})
	want := []Match{
		span(t, s, "foo: 123", RecordOf(map[string]any{"foo": 123.0})),
		span(t, s, "foo:  456,786", RecordOf(map[string]any{"foo": 456786.0})),
	}
	assertMatches(t, got, want)

	// The filter sees every raw match, after mapping.
	if !reflect.DeepEqual(seen, []Kind{KindRecord, KindRecord, KindRecord}) {
		t.Errorf("filter saw kinds %v, want three records", seen)
	}
}

func TestExtractRange(t *testing.T) {
	t.Parallel()

	got := mustExtract(t, sample, Options{
		Filter: func(v Values) (bool, error) {
			x, _ := v.Float(0)
			return x > 91 && x < 456e3, nil
		},
	})
	want := []Match{
		{Text: "123", Start: 0, End: 3, Values: ListOf(123)},
		{Text: "100", Start: 23, End: 26, Values: ListOf(100)},
	}
	assertMatches(t, got, want)
}

func TestExtractMultiplePlaceholders(t *testing.T) {
	t.Parallel()

	s := "foo: 123 bar: 99,998 foo:  456,786 bar: 99,999 foo:90 abc   10,000"
	got := mustExtract(t, s, Options{
		Pattern: `foo:\s*<NUM>\s*bar:\s*<NUM>`,
		Map: func(nums []float64) (any, error) {
			return map[string]any{"foo": nums[0], "bar": nums[1]}, nil
		},
		Filter: func(v Values) (bool, error) {
			foo, _ := v.Field("foo")
			return math.Mod(foo, 2) == 0, nil
		},
	})
	want := []Match{
		span(t, s, "foo:  456,786 bar: 99,999", RecordOf(map[string]any{"foo": 456786.0, "bar": 99999.0})),
	}
	assertMatches(t, got, want)
}

func TestExtractPlaceholderOrder(t *testing.T) {
	t.Parallel()

	s := "from 10 to 20, from 1,000 to 2.5"
	got := mustExtract(t, s, Options{Pattern: `from <NUM> to <NUM>`})
	want := []Match{
		span(t, s, "from 10 to 20", ListOf(10, 20)),
		span(t, s, "from 1,000 to 2.5", ListOf(1000, 2.5)),
	}
	assertMatches(t, got, want)
}

func TestExtractIgnoresCallerGroups(t *testing.T) {
	t.Parallel()

	s := "foo: 1 bar: 2 baz: 3"
	got := mustExtract(t, s, Options{Pattern: `(foo|bar):\s*<NUM>`})
	want := []Match{
		span(t, s, "foo: 1", ListOf(1)),
		span(t, s, "bar: 2", ListOf(2)),
	}
	assertMatches(t, got, want)
}

func TestExtractOptionalPlaceholder(t *testing.T) {
	t.Parallel()

	got := mustExtract(t, "a; a=5;", Options{Pattern: `a(?:=<NUM>)?;`})
	if len(got) != 2 {
		t.Fatalf("got %d matches %v, want 2", len(got), got)
	}
	if x, ok := got[0].Values.Float(0); !ok || !math.IsNaN(x) {
		t.Errorf("absent placeholder = %v, want NaN", got[0].Values)
	}
	if x, _ := got[1].Values.Float(0); x != 5 {
		t.Errorf("present placeholder = %v, want 5", got[1].Values)
	}
}

func TestExtractMapList(t *testing.T) {
	t.Parallel()

	got := mustExtract(t, "1 2,000 3.5", Options{
		Map: func(nums []float64) (any, error) {
			return []int{int(nums[0]) * 2}, nil
		},
	})
	want := []Match{
		{Text: "1", Start: 0, End: 1, Values: Values{Kind: KindList, List: []any{2}}},
		{Text: "2,000", Start: 2, End: 7, Values: Values{Kind: KindList, List: []any{4000}}},
		{Text: "3.5", Start: 8, End: 11, Values: Values{Kind: KindList, List: []any{6}}},
	}
	assertMatches(t, got, want)
}

func TestExtractConfigErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	mapFn := func(nums []float64) (any, error) {
		calls++
		return nums, nil
	}
	filterFn := func(Values) (bool, error) {
		calls++
		return true, nil
	}

	cases := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{"missing placeholder", Options{Pattern: `\d`, Map: mapFn, Filter: filterFn}, ErrMissingPlaceholder},
		{"lowercase placeholder", Options{Pattern: `foo: <num>`}, ErrMissingPlaceholder},
		{"unbalanced group", Options{Pattern: `(<NUM>`, Map: mapFn}, ErrInvalidPattern},
		{"lookahead", Options{Pattern: `<NUM>(?=px)`, Filter: filterFn}, ErrInvalidPattern},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(sample, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Extract error = %v, want %v", err, tt.wantErr)
			}
			if got != nil {
				t.Errorf("Extract returned %v alongside error", got)
			}
		})
	}

	if calls != 0 {
		t.Errorf("callbacks invoked %d times before validation failed", calls)
	}
}

func TestExtractMapResultShape(t *testing.T) {
	t.Parallel()

	invalid := []struct {
		name   string
		result any
	}{
		{"nil", nil},
		{"number", 42.0},
		{"string", "123"},
		{"struct", struct{ Foo float64 }{1}},
		{"pointer", &[]float64{1}},
		{"int keys", map[int]float64{1: 1}},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			calls := 0
			got, err := Extract(sample, Options{
				Map: func([]float64) (any, error) {
					calls++
					return tt.result, nil
				},
			})
			if !errors.Is(err, ErrInvalidMapResult) {
				t.Fatalf("Extract error = %v, want ErrInvalidMapResult", err)
			}
			if got != nil {
				t.Errorf("Extract returned %v alongside error", got)
			}
			if calls != 1 {
				t.Errorf("map called %d times, want 1 (fail on first match)", calls)
			}
		})
	}
}

func TestExtractMapFailsOnOffendingMatch(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := Extract(sample, Options{
		Map: func(nums []float64) (any, error) {
			calls++
			if nums[0] == 90.19 {
				return nil, nil
			}
			return nums, nil
		},
	})
	if !errors.Is(err, ErrInvalidMapResult) {
		t.Fatalf("Extract error = %v, want ErrInvalidMapResult", err)
	}
	if !strings.Contains(err.Error(), `"90.19"`) {
		t.Errorf("error %q does not name the offending match", err)
	}
	if got != nil {
		t.Errorf("partial results returned: %v", got)
	}
	if calls != 3 {
		t.Errorf("map called %d times, want 3", calls)
	}
}

func TestExtractCallbackErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	_, err := Extract(sample, Options{
		Map: func([]float64) (any, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Errorf("map error = %v, want wrapped boom", err)
	}

	_, err = Extract(sample, Options{
		Filter: func(Values) (bool, error) { return false, boom },
	})
	if !errors.Is(err, boom) {
		t.Errorf("filter error = %v, want wrapped boom", err)
	}
}

func TestExtractIdempotent(t *testing.T) {
	t.Parallel()

	s := "foo: 123 bar: 99,998 foo:  456,786 bar: 99,999"
	opts := Options{
		Pattern: `foo:\s*<NUM>\s*bar:\s*<NUM>`,
		Map: func(nums []float64) (any, error) {
			return map[string]any{"sum": nums[0] + nums[1]}, nil
		},
	}

	first := mustExtract(t, s, opts)
	second := mustExtract(t, s, opts)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second call = %v, want %v", second, first)
	}
}

func TestExtractorReuse(t *testing.T) {
	t.Parallel()

	e, err := New(Options{Pattern: `#<NUM>`})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if !e.Custom() {
		t.Error("Custom() = false for a template extractor")
	}

	for _, s := range []string{"#1 #2", "none", "#3,000"} {
		got, err := e.Extract(s)
		if err != nil {
			t.Fatalf("Extract(%q) error: %v", s, err)
		}
		for _, m := range got {
			if m.Text[0] != '#' {
				t.Errorf("Extract(%q) match %v lacks prefix", s, m)
			}
		}
	}

	def, err := New(Options{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if def.Custom() {
		t.Error("Custom() = true for the default extractor")
	}
	if def.String() != Pattern {
		t.Errorf("String() = %q, want %q", def.String(), Pattern)
	}
}

func TestOffsetInvariant(t *testing.T) {
	t.Parallel()

	inputs := []struct {
		s       string
		pattern string
	}{
		{sample, ""},
		{"qiymət: 25 manat, qiymət: 3,500 manat", `qiymət:\s*<NUM>`},
		{"αβγ 12 δ 3.4 ε", ""},
		{"x=1;y=2;x=3", `x=<NUM>;`},
	}

	for _, in := range inputs {
		got := mustExtract(t, in.s, Options{Pattern: in.pattern})
		if len(got) == 0 {
			t.Errorf("Extract(%q) found nothing", in.s)
		}
		for _, m := range got {
			if in.s[m.Start:m.End] != m.Text {
				t.Errorf("s[%d:%d] = %q, want %q", m.Start, m.End, in.s[m.Start:m.End], m.Text)
			}
		}
	}
}

func TestNumbers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  []float64
	}{
		{"sample", sample, []float64{123, 456789, 90.19, 100, 0}},
		{"grouped", "1,234,567", []float64{1234567}},
		{"leading zeros", "007", []float64{7}},
		{"empty", "", nil},
		{"words", "no numbers", nil},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Numbers(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Numbers(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestGeneratePattern(t *testing.T) {
	t.Parallel()

	got, err := GeneratePattern(`foo:\s?<NUM>`)
	if err != nil {
		t.Fatalf("GeneratePattern error: %v", err)
	}
	want := `foo:\s?(?P<num>` + Pattern + `)`
	if got != want {
		t.Errorf("GeneratePattern = %q, want %q", got, want)
	}

	got, err = GeneratePattern(`<NUM>x<NUM>`)
	if err != nil {
		t.Fatalf("GeneratePattern error: %v", err)
	}
	if n := strings.Count(got, "(?P<num>"); n != 2 {
		t.Errorf("GeneratePattern produced %d groups, want 2", n)
	}

	if _, err := GeneratePattern(`\d+`); !errors.Is(err, ErrMissingPlaceholder) {
		t.Errorf("GeneratePattern without placeholder error = %v", err)
	}
	if _, err := GeneratePattern(""); !errors.Is(err, ErrMissingPlaceholder) {
		t.Errorf("GeneratePattern(\"\") error = %v", err)
	}
}

func TestParseNum(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  float64
	}{
		{"1,234,567", 1234567},
		{"00", 0},
		{"90.19", 90.19},
		{"007.50", 7.5},
		{"1" + strings.Repeat("0", 400), math.Inf(1)},
	}

	for _, tt := range cases {
		if got := parseNum(tt.input); got != tt.want {
			t.Errorf("parseNum(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMatchString(t *testing.T) {
	t.Parallel()

	m := Match{Text: "foo: 123", Start: 0, End: 8, Values: ListOf(123)}
	want := `Match("foo: 123")[0:8]=[123]`
	if got := m.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
