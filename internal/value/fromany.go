package value

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FromAny converts a decoded encoding/json value (the result of
// json.Unmarshal into an any, or json.Decoder.UseNumber output) into a
// Value. It is the only bridge between Go's generic JSON decoding and the
// core's dynamic value model; callers outside this core (cmd/jsonlint, the
// host binding) own JSON parsing, per spec §1's Non-goals.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case float64:
		return fromFloat(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", x.String(), err)
		}
		return fromFloat(f), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case string:
		return String(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			converted, err := FromAny(e)
			if err != nil {
				return Value{}, fmt.Errorf("array index %d: %w", i, err)
			}
			items[i] = converted
		}
		return Array(items), nil
	case map[string]any:
		obj := NewObject()
		for _, key := range mapKeysStable(x) {
			converted, err := FromAny(x[key])
			if err != nil {
				return Value{}, fmt.Errorf("object key %q: %w", key, err)
			}
			obj.Set(key, converted)
		}
		return obj, nil
	default:
		return Value{}, fmt.Errorf("unsupported decoded type %T", v)
	}
}

func fromFloat(f float64) Value {
	if f == float64(int64(f)) {
		return Int(int64(f))
	}
	return Number(f)
}

// mapKeysStable returns map keys in sorted order; encoding/json's
// map[string]any loses source order, so sorting is the best stable choice
// available to this bridge.
func mapKeysStable(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
