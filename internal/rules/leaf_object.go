package rules

import "github.com/jacoelho/jsonschema/internal/value"

// MinPropertiesRule fails when an object has fewer than Min members.
type MinPropertiesRule struct {
	Min int
}

// Evaluate implements Rule.
func (r MinPropertiesRule) Evaluate(v value.Value, ctx *Ctx) bool {
	if v.Kind() != value.KindObject {
		return true
	}
	n := v.Len()
	if n >= r.Min {
		return true
	}
	ctx.AddError("minProperties", v, "object has %d properties, fewer than minimum %d", n, r.Min)
	return false
}

// MaxPropertiesRule fails when an object has more than Max members.
type MaxPropertiesRule struct {
	Max int
}

// Evaluate implements Rule.
func (r MaxPropertiesRule) Evaluate(v value.Value, ctx *Ctx) bool {
	if v.Kind() != value.KindObject {
		return true
	}
	n := v.Len()
	if n <= r.Max {
		return true
	}
	ctx.AddError("maxProperties", v, "object has %d properties, more than maximum %d", n, r.Max)
	return false
}

// RequiredPropertiesRule fails once per name in Names missing from the
// object, every error reported at the object's own instance path — the
// missing key never existed, so it cannot be a path segment into the input
// (spec §8's "every error's instance_path is a valid pointer into the
// input value"). Paired with the identity selector, one Rule per
// "required" keyword rather than one per name (spec §4.6; original
// rule_factory.cpp wires "required" the same way, via a single
// RequiredPropertiesRule, rule/required_properties_rule.cpp).
type RequiredPropertiesRule struct {
	Names []string
}

// Evaluate implements Rule.
func (r RequiredPropertiesRule) Evaluate(v value.Value, ctx *Ctx) bool {
	if v.Kind() != value.KindObject {
		return true
	}
	ok := true
	for _, name := range r.Names {
		if !v.Has(name) {
			ctx.AddError("required", v, "missing required property %q", name)
			ok = false
		}
	}
	return ok
}
