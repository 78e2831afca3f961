package exprfn

import (
	"fmt"

	"github.com/az-ai-labs/numparse"
)

// Configuration keys recognized by FromMap.
const (
	KeyPattern = "pattern"
	KeyMap     = "map"
	KeyFilter  = "filter"
)

// FromMap builds numparse.Options from loosely typed configuration.
// Absent keys are left unset; unknown keys are ignored.
//
// Checks run in order and stop at the first failure:
//
//   - pattern must be a string (numparse.ErrInvalidPatternType) containing
//     numparse.Placeholder (numparse.ErrMissingPlaceholder);
//   - map must be an expression string or a Go map function
//     (numparse.ErrInvalidMapType);
//   - filter must be an expression string or a Go filter function
//     (numparse.ErrInvalidFilterType).
//
// Expressions that fail to compile are reported as not callable.
func FromMap(raw map[string]any) (numparse.Options, error) {
	var opts numparse.Options

	if p, ok := raw[KeyPattern]; ok {
		s, ok := p.(string)
		if !ok {
			return numparse.Options{}, fmt.Errorf("%w, got %T", numparse.ErrInvalidPatternType, p)
		}
		if _, err := numparse.GeneratePattern(s); err != nil {
			return numparse.Options{}, err
		}
		opts.Pattern = s
	}

	if m, ok := raw[KeyMap]; ok {
		fn, err := toMapFunc(m)
		if err != nil {
			return numparse.Options{}, err
		}
		opts.Map = fn
	}

	if f, ok := raw[KeyFilter]; ok {
		fn, err := toFilterFunc(f)
		if err != nil {
			return numparse.Options{}, err
		}
		opts.Filter = fn
	}

	return opts, nil
}

func toMapFunc(x any) (numparse.MapFunc, error) {
	switch fn := x.(type) {
	case string:
		m, err := Map(fn)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", numparse.ErrInvalidMapType, err)
		}
		return m, nil
	case numparse.MapFunc:
		if fn != nil {
			return fn, nil
		}
	case func([]float64) (any, error):
		if fn != nil {
			return fn, nil
		}
	case func([]float64) any:
		if fn != nil {
			return func(nums []float64) (any, error) { return fn(nums), nil }, nil
		}
	}
	return nil, fmt.Errorf("%w, got %T", numparse.ErrInvalidMapType, x)
}

func toFilterFunc(x any) (numparse.FilterFunc, error) {
	switch fn := x.(type) {
	case string:
		f, err := Filter(fn)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", numparse.ErrInvalidFilterType, err)
		}
		return f, nil
	case numparse.FilterFunc:
		if fn != nil {
			return fn, nil
		}
	case func(numparse.Values) (bool, error):
		if fn != nil {
			return fn, nil
		}
	case func(numparse.Values) bool:
		if fn != nil {
			return func(v numparse.Values) (bool, error) { return fn(v), nil }, nil
		}
	}
	return nil, fmt.Errorf("%w, got %T", numparse.ErrInvalidFilterType, x)
}
