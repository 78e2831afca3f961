package numparse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Kind discriminates the two shapes a Values can hold.
type Kind int

const (
	KindList   Kind = iota // Ordered sequence (Values.List)
	KindRecord             // Key-value record (Values.Record)
)

// kindNames maps Kind values to their string names.
var kindNames = [...]string{
	KindList:   "List",
	KindRecord: "Record",
}

// kindFromName maps string names back to Kind values.
var kindFromName = map[string]Kind{
	"List":   KindList,
	"Record": KindRecord,
}

// String returns the name of the kind.
func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalJSON encodes the kind as a JSON string (e.g. "List").
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a JSON string (e.g. "Record") into a Kind.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kk, ok := kindFromName[s]
	if !ok {
		const maxErrLen = 50
		if len(s) > maxErrLen {
			s = s[:maxErrLen] + "..."
		}
		return fmt.Errorf("numparse: unknown kind: %q", s)
	}
	*k = kk
	return nil
}

// Values holds the values of one match: either the parsed numbers as a
// list, or whatever list or record a MapFunc produced. Only the field
// selected by Kind is meaningful.
//
// Without a MapFunc, List holds one float64 per placeholder (one element
// in default mode).
type Values struct {
	Kind   Kind
	List   []any
	Record map[string]any
}

// ListOf returns a KindList holding nums.
func ListOf(nums ...float64) Values {
	list := make([]any, len(nums))
	for i, n := range nums {
		list[i] = n
	}
	return Values{Kind: KindList, List: list}
}

// RecordOf returns a KindRecord holding m.
func RecordOf(m map[string]any) Values {
	return Values{Kind: KindRecord, Record: m}
}

// Len returns the number of elements in the active variant.
func (v Values) Len() int {
	if v.Kind == KindRecord {
		return len(v.Record)
	}
	return len(v.List)
}

// Float returns list element i as a float64. Reports false when v is not
// a list, i is out of range or the element is not numeric.
func (v Values) Float(i int) (float64, bool) {
	if v.Kind != KindList || i < 0 || i >= len(v.List) {
		return 0, false
	}
	return toFloat(v.List[i])
}

// Field returns record field key as a float64. Reports false when v is
// not a record, the key is absent or the value is not numeric.
func (v Values) Field(key string) (float64, bool) {
	if v.Kind != KindRecord {
		return 0, false
	}
	x, ok := v.Record[key]
	if !ok {
		return 0, false
	}
	return toFloat(x)
}

// Any returns the active variant as a plain []any or map[string]any.
func (v Values) Any() any {
	if v.Kind == KindRecord {
		return v.Record
	}
	return v.List
}

// String returns a debug representation, e.g. [123 456] or map[foo:123].
func (v Values) String() string {
	return fmt.Sprint(v.Any())
}

// MarshalJSON encodes v as a bare JSON array or object. NaN and ±Inf,
// which JSON cannot represent, encode as null.
func (v Values) MarshalJSON() ([]byte, error) {
	if v.Kind == KindRecord {
		if v.Record == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(jsonSafe(v.Record))
	}
	if v.List == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(jsonSafe(v.List))
}

// jsonSafe returns x with non-finite floats replaced by nil, descending
// into nested lists and records. x itself is not modified.
func jsonSafe(x any) any {
	switch t := x.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
	case float32:
		if f := float64(t); math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonSafe(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = jsonSafe(e)
		}
		return out
	}
	return x
}

// UnmarshalJSON decodes a JSON array into a list and a JSON object into a
// record. Numbers decode as float64.
func (v *Values) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("numparse: empty values")
	}
	switch trimmed[0] {
	case '[':
		var list []any
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*v = Values{Kind: KindList, List: list}
	case '{':
		var rec map[string]any
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return err
		}
		*v = Values{Kind: KindRecord, Record: rec}
	default:
		return fmt.Errorf("numparse: values must be an array or object")
	}
	return nil
}

// normalize converts a MapFunc result into Values. Any slice or array
// becomes a list; any map with string keys becomes a record. Everything
// else, including nil, is rejected.
func normalize(x any) (Values, bool) {
	switch t := x.(type) {
	case nil:
		return Values{}, false
	case Values:
		return t, t.Kind == KindList || t.Kind == KindRecord
	case []any:
		return Values{Kind: KindList, List: t}, true
	case []float64:
		return ListOf(t...), true
	case map[string]any:
		return Values{Kind: KindRecord, Record: t}, true
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = rv.Index(i).Interface()
		}
		return Values{Kind: KindList, List: list}, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Values{}, false
		}
		rec := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			rec[iter.Key().String()] = iter.Value().Interface()
		}
		return Values{Kind: KindRecord, Record: rec}, true
	}
	return Values{}, false
}

// toFloat converts any Go numeric value to float64.
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
