// Package exprfn builds numparse callbacks from expr-lang expressions and
// validates loosely typed configuration, such as options decoded from YAML
// or JSON.
//
// Map expressions see the parsed numbers as `values` and must evaluate to
// a list or a map:
//
//	[values[0] * 100]
//	{lo: values[0], hi: values[1]}
//
// Filter expressions see the (mapped) values as `values`; when the values
// are a record, its fields are also visible by name, and a field named
// "values" shadows the record itself. The result is
// interpreted loosely: nil, false, zero, NaN and "" drop the match,
// anything else keeps it.
//
//	values[0] > 91 && values[0] < 456e3
//	mod(foo, 3) == 0
//
// In addition to the expr-lang builtins, expressions may call mod(x, y),
// the floating-point remainder of x/y.
//
// Compiled callbacks are safe for concurrent use.
package exprfn

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/az-ai-labs/numparse"
)

// valuesVar names the variable holding the values of one match.
const valuesVar = "values"

// Map compiles src into a numparse.MapFunc.
func Map(src string) (numparse.MapFunc, error) {
	program, err := compile(src)
	if err != nil {
		return nil, err
	}
	return func(nums []float64) (any, error) {
		list := make([]any, len(nums))
		for i, n := range nums {
			list[i] = n
		}
		return run(program, src, map[string]any{valuesVar: list})
	}, nil
}

// Filter compiles src into a numparse.FilterFunc.
func Filter(src string) (numparse.FilterFunc, error) {
	program, err := compile(src)
	if err != nil {
		return nil, err
	}
	return func(v numparse.Values) (bool, error) {
		env := make(map[string]any, len(v.Record)+1)
		env[valuesVar] = v.Any()
		if v.Kind == numparse.KindRecord {
			for k, x := range v.Record {
				env[k] = x
			}
		}

		out, err := run(program, src, env)
		if err != nil {
			return false, err
		}
		return truthy(out), nil
	}, nil
}

func compile(src string) (*vm.Program, error) {
	program, err := expr.Compile(src, expr.Function("mod", mod))
	if err != nil {
		return nil, fmt.Errorf("exprfn: compile %q: %w", src, err)
	}
	return program, nil
}

func run(program *vm.Program, src string, env map[string]any) (any, error) {
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("exprfn: eval %q: %w", src, err)
	}
	return out, nil
}

// mod implements mod(x, y) for any pair of numeric arguments.
func mod(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("mod: want 2 arguments, got %d", len(params))
	}
	x, ok := toFloat(params[0])
	if !ok {
		return nil, fmt.Errorf("mod: %T is not a number", params[0])
	}
	y, ok := toFloat(params[1])
	if !ok {
		return nil, fmt.Errorf("mod: %T is not a number", params[1])
	}
	return math.Mod(x, y), nil
}

// truthy reports whether x counts as true in a filter result.
func truthy(x any) bool {
	switch t := x.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := toFloat(x); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func toFloat(x any) (float64, bool) {
	switch n := x.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
