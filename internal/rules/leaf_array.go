package rules

import (
	"strconv"

	"github.com/jacoelho/jsonschema/internal/value"
)

// MinItemsRule fails when an array has fewer than Min elements.
type MinItemsRule struct {
	Min int
}

// Evaluate implements Rule.
func (r MinItemsRule) Evaluate(v value.Value, ctx *Ctx) bool {
	n := value.ArrayLen(v)
	if n < 0 || n >= r.Min {
		return true
	}
	ctx.AddError("minItems", v, "array has %d items, fewer than minimum %d", n, r.Min)
	return false
}

// MaxItemsRule fails when an array has more than Max elements.
type MaxItemsRule struct {
	Max int
}

// Evaluate implements Rule.
func (r MaxItemsRule) Evaluate(v value.Value, ctx *Ctx) bool {
	n := value.ArrayLen(v)
	if n < 0 || n <= r.Max {
		return true
	}
	ctx.AddError("maxItems", v, "array has %d items, more than maximum %d", n, r.Max)
	return false
}

// UniqueItemsRule fails when any element duplicates an earlier one,
// structurally compared, nested collections included (spec §4.4). Every
// duplicate is reported, each at its own index.
type UniqueItemsRule struct{}

// Evaluate implements Rule.
func (UniqueItemsRule) Evaluate(v value.Value, ctx *Ctx) bool {
	arr, ok := v.AsArray()
	if !ok {
		return true
	}
	seen := make(map[string]int, len(arr))
	ok = true
	for i, e := range arr {
		key := value.HashKey(e)
		if first, dup := seen[key]; dup {
			ctx.AddErrorAt(strconv.Itoa(i), "uniqueItems", e, "item at index %d duplicates item at index %d", i, first)
			ok = false
			continue
		}
		seen[key] = i
	}
	return ok
}
