package rules

import (
	"github.com/jacoelho/jsonschema/internal/value"
)

// TypeRule passes when the value's JSON type is one of Allowed, honoring
// the integer/number widening rule (spec §4.4).
type TypeRule struct {
	Allowed []string
}

// Evaluate implements Rule.
func (r TypeRule) Evaluate(v value.Value, ctx *Ctx) bool {
	for _, want := range r.Allowed {
		if value.SatisfiesType(v, want) {
			return true
		}
	}
	ctx.AddError("type", v, "value has type %q, want one of %v", value.JSONType(v), r.Allowed)
	return false
}

// ConstRule passes when v is structurally equal to Value.
type ConstRule struct {
	Value value.Value
}

// Evaluate implements Rule.
func (r ConstRule) Evaluate(v value.Value, ctx *Ctx) bool {
	if value.Equal(r.Value, v) {
		return true
	}
	ctx.AddError("const", v, "value does not equal the constant %s", r.Value.String())
	return false
}

// EnumRule passes when v structurally matches any of Values.
type EnumRule struct {
	Values []value.Value
}

// Evaluate implements Rule.
func (r EnumRule) Evaluate(v value.Value, ctx *Ctx) bool {
	if value.Contains(r.Values, v) {
		return true
	}
	ctx.AddError("enum", v, "value does not match any enum member")
	return false
}
