package ref

import (
	"encoding/json"
	"testing"

	"github.com/jacoelho/jsonschema/errors"
	"github.com/jacoelho/jsonschema/internal/rules"
	"github.com/jacoelho/jsonschema/internal/schematree"
	"github.com/jacoelho/jsonschema/internal/value"
)

func buildTree(t *testing.T, doc string) *schematree.Node {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	v, err := value.FromAny(raw)
	if err != nil {
		t.Fatalf("value.FromAny: %v", err)
	}
	return schematree.Build(v)
}

// trivialCompile turns a node's Definition into a Group that always passes,
// enough to exercise resolution/recursion without pulling in the compiler
// package (ref must not import compiler, to avoid a cycle).
func trivialCompile(n *schematree.Node) (*rules.Group, []errors.CompileError) {
	return &rules.Group{}, nil
}

func TestResolveRootFragment(t *testing.T) {
	root := buildTree(t, `{"type":"object"}`)
	r := New("#", "", root, trivialCompile, nil)
	ctx := rules.AcquireCtx()
	defer rules.Release(ctx)
	if !r.Evaluate(value.NewObject(), ctx) {
		t.Error("Evaluate() with \"#\" should resolve and pass")
	}
}

func TestResolveSameDocumentPointer(t *testing.T) {
	root := buildTree(t, `{"definitions":{"pos":{"minimum":0}}}`)
	r := New("#/definitions/pos", "", root, trivialCompile, nil)
	ctx := rules.AcquireCtx()
	defer rules.Release(ctx)
	if !r.Evaluate(value.Int(5), ctx) {
		t.Error("Evaluate() should resolve #/definitions/pos")
	}
}

func TestResolveUnresolvableYieldsRefError(t *testing.T) {
	root := buildTree(t, `{}`)
	r := New("#/definitions/missing", "", root, trivialCompile, nil)
	ctx := rules.AcquireCtx()
	defer rules.Release(ctx)
	ok := r.Evaluate(value.Int(1), ctx)
	if ok {
		t.Fatal("Evaluate() should fail for an unresolvable $ref")
	}
	errs := ctx.Errors()
	if len(errs) != 1 || errs[0].Keyword != "ref" {
		t.Errorf("errors = %v, want one \"ref\" error", errs)
	}
}

func TestResolveAnchorStyleUnsupported(t *testing.T) {
	root := buildTree(t, `{}`)
	r := New("#anchor", "", root, trivialCompile, nil)
	ctx := rules.AcquireCtx()
	defer rules.Release(ctx)
	if r.Evaluate(value.Int(1), ctx) {
		t.Error("anchor-style $ref should not resolve")
	}
}

func TestResolveExternalViaRegistryLookup(t *testing.T) {
	external := buildTree(t, `{"type":"string"}`)
	lookup := func(id string) (*schematree.Node, bool) {
		if id == "http://example.com/schema" {
			return external, true
		}
		return nil, false
	}
	r := New("http://example.com/schema", "", nil, trivialCompile, lookup)
	ctx := rules.AcquireCtx()
	defer rules.Release(ctx)
	if !r.Evaluate(value.String("x"), ctx) {
		t.Error("Evaluate() should resolve via the registry lookup")
	}
}

func TestResolveRelativeRefRebasesAgainstEnclosingID(t *testing.T) {
	// Spec §9 supplemental feature: a "$ref" that is a relative URI resolves
	// against the nearest enclosing "$id", not the bare string.
	external := buildTree(t, `{"type":"string"}`)
	lookup := func(id string) (*schematree.Node, bool) {
		if id == "http://example.com/schemas/address.json" {
			return external, true
		}
		return nil, false
	}
	r := New("address.json", "http://example.com/schemas/root.json", nil, trivialCompile, lookup)
	ctx := rules.AcquireCtx()
	defer rules.Release(ctx)
	if !r.Evaluate(value.String("x"), ctx) {
		t.Errorf("Evaluate() should rebase \"address.json\" against the enclosing $id; errs = %v", ctx.Errors())
	}
}

func TestResolveExternalUnregisteredFails(t *testing.T) {
	lookup := func(id string) (*schematree.Node, bool) { return nil, false }
	r := New("http://example.com/missing", "", nil, trivialCompile, lookup)
	ctx := rules.AcquireCtx()
	defer rules.Release(ctx)
	if r.Evaluate(value.String("x"), ctx) {
		t.Error("Evaluate() should fail when the registry has no matching id")
	}
}

func TestResolvedOnlyOnce(t *testing.T) {
	calls := 0
	root := buildTree(t, `{}`)
	lookup := func(id string) (*schematree.Node, bool) {
		calls++
		return nil, false
	}
	r := New("http://example.com/x", "", root, trivialCompile, lookup)
	ctx1 := rules.AcquireCtx()
	r.Evaluate(value.Int(1), ctx1)
	rules.Release(ctx1)
	ctx2 := rules.AcquireCtx()
	r.Evaluate(value.Int(1), ctx2)
	rules.Release(ctx2)
	if calls != 1 {
		t.Errorf("lookup called %d times, want 1 (single resolve attempt)", calls)
	}
}

func TestRecursiveRefDepthGuardPasses(t *testing.T) {
	// Spec §8 scenario 4: a recursive $ref terminates by the depth guard,
	// reporting no errors for deeper levels.
	root := buildTree(t, `{"type":"object","properties":{"child":{}}}`)
	var r *Rule
	r = New("#", "", root, func(n *schematree.Node) (*rules.Group, []errors.CompileError) {
		return &rules.Group{Pairs: []rules.Pair{{
			Selector: childSelector{},
			Rule:     r,
		}}}, nil
	}, nil)

	ctx := rules.AcquireCtx()
	defer rules.Release(ctx)

	// Built innermost-first: Value is copied by assignment, so each level
	// wraps the finished level below it.
	deep := value.NewObject()
	for i := 0; i < rules.MaxValidationDepth+5; i++ {
		parent := value.NewObject()
		parent.Set("child", deep)
		deep = parent
	}

	if !r.Evaluate(deep, ctx) {
		t.Errorf("deep recursive $ref should pass via depth guard, errs = %v", ctx.Errors())
	}
}

// childSelector projects the "child" property, used only to drive the
// recursive-$ref depth-guard test above without pulling in internal/rules'
// PropertySelector test helpers.
type childSelector struct{}

func (childSelector) Select(v value.Value) []rules.Target {
	child, ok := v.Get("child")
	if !ok {
		return nil
	}
	return []rules.Target{{Value: child, Segment: "child"}}
}
