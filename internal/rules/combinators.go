package rules

import (
	"fmt"
	"strings"

	"github.com/jacoelho/jsonschema/internal/value"
)

// AllOfRule passes iff every branch passes; every branch always runs and
// its errors are merged into the parent (spec §4.5).
type AllOfRule struct {
	Branches []Rule
}

// Evaluate implements Rule.
func (r AllOfRule) Evaluate(v value.Value, ctx *Ctx) bool {
	ok := true
	for _, branch := range r.Branches {
		if !branch.Evaluate(v, ctx) {
			ok = false
		}
	}
	return ok
}

// AnyOfRule passes on the first passing branch (spec §4.5). On total
// failure it emits one summary error plus the first failing branch's
// errors, evaluated in an isolated child Ctx so non-winning branches never
// pollute the parent's error list directly.
type AnyOfRule struct {
	Branches []Rule
}

// Evaluate implements Rule.
func (r AnyOfRule) Evaluate(v value.Value, ctx *Ctx) bool {
	var firstFailure *Ctx
	for _, branch := range r.Branches {
		child := AcquireCtx()
		if branch.Evaluate(v, child) {
			Release(child)
			if firstFailure != nil {
				Release(firstFailure)
			}
			return true
		}
		if firstFailure == nil {
			firstFailure = child
		} else {
			Release(child)
		}
	}
	ctx.AddError("anyOf", v, "value does not match any of the %d alternatives", len(r.Branches))
	if firstFailure != nil {
		ctx.Merge(firstFailure)
		Release(firstFailure)
	}
	return false
}

// OneOfRule passes iff exactly one branch passes (spec §4.5).
type OneOfRule struct {
	Branches []Rule
}

// Evaluate implements Rule.
func (r OneOfRule) Evaluate(v value.Value, ctx *Ctx) bool {
	var matched []int
	var firstFailure *Ctx
	for i, branch := range r.Branches {
		child := AcquireCtx()
		if branch.Evaluate(v, child) {
			matched = append(matched, i)
		} else if firstFailure == nil {
			firstFailure = child
			continue
		}
		Release(child)
	}
	defer func() {
		if firstFailure != nil {
			Release(firstFailure)
		}
	}()

	switch len(matched) {
	case 1:
		return true
	case 0:
		ctx.AddError("oneOf", v, "value does not match any of the %d alternatives", len(r.Branches))
		if firstFailure != nil {
			ctx.Merge(firstFailure)
		}
		return false
	default:
		ctx.AddError("oneOf", v, "value matches more than one alternative (indices: %s)", joinInts(matched))
		return false
	}
}

func joinInts(ints []int) string {
	parts := make([]string, len(ints))
	for i, n := range ints {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

// NotRule inverts Branch's result; its errors are always discarded (spec §4.5).
type NotRule struct {
	Branch Rule
}

// Evaluate implements Rule.
func (r NotRule) Evaluate(v value.Value, ctx *Ctx) bool {
	child := AcquireCtx()
	defer Release(child)
	if r.Branch.Evaluate(v, child) {
		ctx.AddError("not", v, "value matches the schema negated by \"not\"")
		return false
	}
	return true
}

// ConditionalRule implements if/then/else (spec §4.5). The If branch's
// errors are never reported, evaluated in an isolated child Ctx.
type ConditionalRule struct {
	If   Rule
	Then Rule
	Else Rule
}

// Evaluate implements Rule.
func (r ConditionalRule) Evaluate(v value.Value, ctx *Ctx) bool {
	if r.If == nil {
		// "then"/"else" without "if" are inert (Draft-7 §6.6.1/6.6.2).
		return true
	}
	probe := AcquireCtx()
	ifPassed := r.If.Evaluate(v, probe)
	Release(probe)

	if ifPassed {
		if r.Then != nil {
			return r.Then.Evaluate(v, ctx)
		}
		return true
	}
	if r.Else != nil {
		return r.Else.Evaluate(v, ctx)
	}
	return true
}

// ContainsRule passes if at least one array element satisfies Branch.
// Empty arrays fail; non-arrays pass (spec §4.5).
type ContainsRule struct {
	Branch Rule
}

// Evaluate implements Rule.
func (r ContainsRule) Evaluate(v value.Value, ctx *Ctx) bool {
	arr, ok := v.AsArray()
	if !ok {
		return true
	}
	if len(arr) == 0 {
		ctx.AddError("contains", v, "empty array cannot satisfy \"contains\"")
		return false
	}
	for _, e := range arr {
		child := AcquireCtx()
		passed := r.Branch.Evaluate(e, child)
		Release(child)
		if passed {
			return true
		}
	}
	ctx.AddError("contains", v, "no array element satisfies \"contains\"")
	return false
}

// PropertyDependencyRule implements the property-dependency form of
// "dependencies": if Trigger is present, every name in Requires must also
// be present (spec §4.5).
type PropertyDependencyRule struct {
	Trigger  string
	Requires []string
}

// Evaluate implements Rule.
func (r PropertyDependencyRule) Evaluate(v value.Value, ctx *Ctx) bool {
	if v.Kind() != value.KindObject || !v.Has(r.Trigger) {
		return true
	}
	ok := true
	for _, name := range r.Requires {
		if !v.Has(name) {
			ctx.AddError("dependencies", v, "property %q requires property %q, which is missing", r.Trigger, name)
			ok = false
		}
	}
	return ok
}

// SchemaDependencyRule implements the schema-dependency form of
// "dependencies": if Trigger is present, the whole object must also
// satisfy Branch (spec §4.5).
type SchemaDependencyRule struct {
	Trigger string
	Branch  Rule
}

// Evaluate implements Rule.
func (r SchemaDependencyRule) Evaluate(v value.Value, ctx *Ctx) bool {
	if v.Kind() != value.KindObject || !v.Has(r.Trigger) {
		return true
	}
	return r.Branch.Evaluate(v, ctx)
}
