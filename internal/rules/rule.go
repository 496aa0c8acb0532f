// Package rules implements the selector/rule/combinator vocabulary of
// spec §3–§4.6: pure Selectors that project sub-values, pure Rules that
// test a value and accumulate errors, and Groups that compose them in
// conjunction. Grounded on the teacher's evaluation-loop style
// (internal/validator/runtime_validate.go) and its per-concern facet files
// (internal/types/facet_validators*.go), adapted from an XML event stream
// to an in-memory dynamic value tree.
package rules

import (
	"fmt"
	"sync"

	"github.com/jacoelho/jsonschema/errors"
	"github.com/jacoelho/jsonschema/internal/jsonpointer"
	"github.com/jacoelho/jsonschema/internal/value"
)

// MaxValidationDepth bounds $ref recursion during evaluation (spec §4.7,
// §9 open question). Exceeding it is a silent pass, not an error.
const MaxValidationDepth = 50

// Target is one (sub-value, path-segment) pair yielded by a Selector.
type Target struct {
	Value   value.Value
	Segment string
}

// Selector projects zero or more Targets out of a value.
type Selector interface {
	Select(v value.Value) []Target
}

// Rule tests a value in ctx, returning pass/fail and appending any errors
// to ctx as a side effect (spec §3). Rule is also satisfied by *Group
// itself, letting a compiled subschema be nested as one combinator branch.
type Rule interface {
	Evaluate(v value.Value, ctx *Ctx) bool
}

// Pair is one (Selector, Rule) step of a Group.
type Pair struct {
	Selector Selector
	Rule     Rule
	// SchemaSegment names the keyword this pair compiles, appended to the
	// schema path of every error the pair's Rule reports.
	SchemaSegment string
}

// Group is an ordered conjunction of (Selector, Rule) pairs (spec §3): all
// must pass for the group to pass, but every pair runs regardless, so
// sibling errors all accumulate. Group instances are immutable after
// construction by the compiler, so they can be shared by pointer across
// the cache (spec's "pointer-equal rule groups" testable property).
type Group struct {
	Pairs []Pair
}

// Evaluate runs every pair against v, in source order, returning whether
// all of them passed.
func (g *Group) Evaluate(v value.Value, ctx *Ctx) bool {
	if g == nil {
		return true
	}
	ok := true
	for _, pair := range g.Pairs {
		targets := selectOrIdentity(pair.Selector, v)
		for _, t := range targets {
			ctx.pushSchema(pair.SchemaSegment)
			ctx.pushInstance(t.Segment)
			if !pair.Rule.Evaluate(t.Value, ctx) {
				ok = false
			}
			ctx.popInstance()
			ctx.popSchema()
		}
	}
	return ok
}

func selectOrIdentity(sel Selector, v value.Value) []Target {
	if sel == nil {
		return []Target{{Value: v}}
	}
	return sel.Select(v)
}

// Ctx is the per-evaluation state: instance/schema path stacks, the
// accumulated error list, and the $ref recursion depth counter (spec §3
// "Context", §4.7, §5). Ctx is pooled via sync.Pool by the validator entry
// point, mirroring the teacher's Engine/Session pool (engine.go).
type Ctx struct {
	instancePath []string
	schemaPath   []string
	errs         []errors.ValidationError
	refDepth     int
}

var ctxPool = sync.Pool{New: func() any { return &Ctx{} }}

// AcquireCtx returns a reset Ctx from the pool.
func AcquireCtx() *Ctx {
	c := ctxPool.Get().(*Ctx)
	c.instancePath = c.instancePath[:0]
	c.schemaPath = c.schemaPath[:0]
	c.errs = c.errs[:0]
	c.refDepth = 0
	return c
}

// Release returns c to the pool.
func Release(c *Ctx) {
	if c == nil {
		return
	}
	ctxPool.Put(c)
}

func (c *Ctx) pushInstance(segment string) {
	c.instancePath = append(c.instancePath, segment)
}

func (c *Ctx) popInstance() {
	if len(c.instancePath) > 0 {
		c.instancePath = c.instancePath[:len(c.instancePath)-1]
	}
}

func (c *Ctx) pushSchema(segment string) {
	c.schemaPath = append(c.schemaPath, segment)
}

func (c *Ctx) popSchema() {
	if len(c.schemaPath) > 0 {
		c.schemaPath = c.schemaPath[:len(c.schemaPath)-1]
	}
}

// InstancePath returns the current instance path as a pointer string.
func (c *Ctx) InstancePath() string {
	return jsonpointer.Path(c.nonEmpty(c.instancePath)).String()
}

// SchemaPath returns the current schema path as a pointer string.
func (c *Ctx) SchemaPath() string {
	return jsonpointer.Path(c.nonEmpty(c.schemaPath)).String()
}

func (c *Ctx) nonEmpty(path []string) []string {
	out := make([]string, 0, len(path))
	for _, seg := range path {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// AddError appends a ValidationError at the current instance/schema path.
func (c *Ctx) AddError(keyword errors.Keyword, invalidValue value.Value, format string, args ...any) {
	c.errs = append(c.errs, errors.ValidationError{
		Message:      fmt.Sprintf(format, args...),
		InstancePath: c.nonEmpty(c.instancePath),
		SchemaPath:   c.nonEmpty(c.schemaPath),
		Keyword:      keyword,
		InvalidValue: renderInvalid(invalidValue),
	})
}

// AddErrorAt appends a ValidationError one segment deeper than the current
// instance path, for rules (like uniqueItems) that report against a
// specific sub-element rather than the value their Selector handed them.
func (c *Ctx) AddErrorAt(segment string, keyword errors.Keyword, invalidValue value.Value, format string, args ...any) {
	c.pushInstance(segment)
	c.AddError(keyword, invalidValue, format, args...)
	c.popInstance()
}

// Errors returns the accumulated error list, most recent evaluation only.
func (c *Ctx) Errors() []errors.ValidationError {
	out := make([]errors.ValidationError, len(c.errs))
	copy(out, c.errs)
	return out
}

// Merge appends another Ctx's accumulated errors into c, used where a child
// evaluation's errors are folded into the parent (anyOf and oneOf on total
// failure, $ref delegation; spec §4.5, §7). allOf needs no Merge: its
// branches report straight into the parent Ctx.
func (c *Ctx) Merge(child *Ctx) {
	c.errs = append(c.errs, child.errs...)
}

// RefDepth reports the current $ref recursion depth.
func (c *Ctx) RefDepth() int { return c.refDepth }

// EnterRef increments the recursion depth and returns a func to decrement
// it on every exit path, the RAII-style guard spec §9 calls for.
func (c *Ctx) EnterRef() func() {
	c.refDepth++
	return func() { c.refDepth-- }
}

// EnterSchemaSegment pushes an extra schema-path segment for the duration
// of the returned closure, used by rules (like Ref) that hand evaluation
// off into another schema's own path context (spec §4.7 step 3).
func (c *Ctx) EnterSchemaSegment(segment string) func() {
	c.pushSchema(segment)
	return func() { c.popSchema() }
}

// Fork acquires a fresh child Ctx that starts at c's current instance path
// but an empty schema path and error list, and inherits c's $ref depth —
// used when a rule delegates to another schema's RuleGroup over the same
// instance value (spec §4.7 step 3).
func (c *Ctx) Fork() *Ctx {
	child := AcquireCtx()
	child.instancePath = append(child.instancePath, c.instancePath...)
	child.refDepth = c.refDepth
	return child
}

func renderInvalid(v value.Value) any {
	if v.IsNull() {
		return nil
	}
	return v.String()
}
