package rules

import (
	"math"

	"github.com/jacoelho/jsonschema/internal/value"
)

const multipleOfTolerance = 1e-10

// applicableFloat extracts a numeric operand (spec §4.4's "common f64
// domain" for minimum/maximum/multipleOf).
func applicableFloat(v value.Value) (float64, bool) {
	return v.AsFloat64()
}

// MinimumRule fails when the value is less than Min.
type MinimumRule struct {
	Min       float64
	Exclusive bool
}

// Evaluate implements Rule.
func (r MinimumRule) Evaluate(v value.Value, ctx *Ctx) bool {
	f, ok := applicableFloat(v)
	if !ok {
		return true
	}
	if r.Exclusive {
		if f > r.Min {
			return true
		}
		ctx.AddError("exclusiveMinimum", v, "value %g is not greater than exclusive minimum %g", f, r.Min)
		return false
	}
	if f >= r.Min {
		return true
	}
	ctx.AddError("minimum", v, "value %g is less than minimum %g", f, r.Min)
	return false
}

// MaximumRule fails when the value is greater than Max.
type MaximumRule struct {
	Max       float64
	Exclusive bool
}

// Evaluate implements Rule.
func (r MaximumRule) Evaluate(v value.Value, ctx *Ctx) bool {
	f, ok := applicableFloat(v)
	if !ok {
		return true
	}
	if r.Exclusive {
		if f < r.Max {
			return true
		}
		ctx.AddError("exclusiveMaximum", v, "value %g is not less than exclusive maximum %g", f, r.Max)
		return false
	}
	if f <= r.Max {
		return true
	}
	ctx.AddError("maximum", v, "value %g is greater than maximum %g", f, r.Max)
	return false
}

// MultipleOfRule fails unless the value is an integral multiple of Of,
// within the tolerance spec §4.4 prescribes for the f64 domain.
type MultipleOfRule struct {
	Of float64
}

// Evaluate implements Rule.
func (r MultipleOfRule) Evaluate(v value.Value, ctx *Ctx) bool {
	f, ok := applicableFloat(v)
	if !ok {
		return true
	}
	if r.Of == 0 {
		return true
	}
	remainder := math.Abs(math.Mod(f, r.Of))
	if remainder <= multipleOfTolerance || remainder >= math.Abs(r.Of)-multipleOfTolerance {
		return true
	}
	ctx.AddError("multipleOf", v, "value %g is not a multiple of %g", f, r.Of)
	return false
}
