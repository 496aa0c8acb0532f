package rules

import (
	"testing"

	"github.com/jacoelho/jsonschema/errors"
	"github.com/jacoelho/jsonschema/internal/value"
)

// passRule and failRule are fixed-outcome Rules used to compose combinators
// under test without going through the compiler.
type passRule struct{}

func (passRule) Evaluate(value.Value, *Ctx) bool { return true }

type failRule struct{ keyword string }

func (r failRule) Evaluate(v value.Value, ctx *Ctx) bool {
	ctx.AddError(errors.Keyword(r.keyword), v, "forced failure")
	return false
}

func TestAllOfAllBranchesRunAndMerge(t *testing.T) {
	rule := AllOfRule{Branches: []Rule{passRule{}, failRule{keyword: "a"}, failRule{keyword: "b"}}}
	ok, ctx := evalOnce(rule, value.Null())
	if ok {
		t.Fatal("AllOfRule should fail when any branch fails")
	}
	if len(ctx.Errors()) != 2 {
		t.Errorf("errors = %d, want 2 (both failing branches merged)", len(ctx.Errors()))
	}
}

func TestAllOfAllPass(t *testing.T) {
	rule := AllOfRule{Branches: []Rule{passRule{}, passRule{}}}
	ok, _ := evalOnce(rule, value.Null())
	if !ok {
		t.Error("AllOfRule should pass when all branches pass")
	}
}

func TestAnyOfFirstPassShortCircuits(t *testing.T) {
	rule := AnyOfRule{Branches: []Rule{failRule{keyword: "a"}, passRule{}}}
	ok, ctx := evalOnce(rule, value.Null())
	if !ok {
		t.Fatal("AnyOfRule should pass when one branch passes")
	}
	if len(ctx.Errors()) != 0 {
		t.Errorf("errors = %d, want 0 on overall pass", len(ctx.Errors()))
	}
}

func TestAnyOfAllFail(t *testing.T) {
	rule := AnyOfRule{Branches: []Rule{failRule{keyword: "a"}, failRule{keyword: "b"}}}
	ok, ctx := evalOnce(rule, value.Null())
	if ok {
		t.Fatal("AnyOfRule should fail when all branches fail")
	}
	errs := ctx.Errors()
	if len(errs) < 1 {
		t.Fatal("AnyOfRule failure should emit at least a summary error")
	}
	if errs[0].Keyword != "anyOf" {
		t.Errorf("errs[0].Keyword = %q, want anyOf", errs[0].Keyword)
	}
}

func TestOneOfArity(t *testing.T) {
	// Spec §8 testable property: "oneOf" arity.
	exactlyOne := OneOfRule{Branches: []Rule{passRule{}, failRule{keyword: "a"}}}
	if ok, _ := evalOnce(exactlyOne, value.Null()); !ok {
		t.Error("OneOfRule with exactly one pass should pass")
	}

	zero := OneOfRule{Branches: []Rule{failRule{keyword: "a"}, failRule{keyword: "b"}}}
	if ok, _ := evalOnce(zero, value.Null()); ok {
		t.Error("OneOfRule with zero passes should fail")
	}

	both := OneOfRule{Branches: []Rule{passRule{}, passRule{}}}
	ok, ctx := evalOnce(both, value.Null())
	if ok {
		t.Fatal("OneOfRule with two passes should fail")
	}
	if len(ctx.Errors()) != 1 || ctx.Errors()[0].Keyword != "oneOf" {
		t.Errorf("errors = %v, want one oneOf error listing both indices", ctx.Errors())
	}
}

func TestNotInvertsAndDiscardsChildErrors(t *testing.T) {
	rule := NotRule{Branch: failRule{keyword: "x"}}
	if ok, ctx := evalOnce(rule, value.Null()); !ok || len(ctx.Errors()) != 0 {
		t.Errorf("NotRule(fail) = ok=%v errs=%v, want ok=true errs=empty", ok, ctx.Errors())
	}

	rule = NotRule{Branch: passRule{}}
	if ok, _ := evalOnce(rule, value.Null()); ok {
		t.Error("NotRule(pass) should fail")
	}
}

func TestConditionalIfErrorsNeverReported(t *testing.T) {
	// Spec §8 scenario 6.
	cond := ConditionalRule{If: failRule{keyword: "k"}, Then: failRule{keyword: "v"}}
	ok, ctx := evalOnce(cond, value.Null())
	if !ok {
		t.Fatal("ConditionalRule should pass when \"if\" fails and there is no \"else\"")
	}
	if len(ctx.Errors()) != 0 {
		t.Errorf("errors = %v, want empty when \"if\" fails without \"else\"", ctx.Errors())
	}
}

func TestConditionalThenBranch(t *testing.T) {
	cond := ConditionalRule{If: passRule{}, Then: failRule{keyword: "v"}}
	ok, ctx := evalOnce(cond, value.Null())
	if ok {
		t.Fatal("ConditionalRule should run \"then\" when \"if\" passes")
	}
	if len(ctx.Errors()) != 1 {
		t.Errorf("errors = %d, want 1 from \"then\"", len(ctx.Errors()))
	}
}

func TestConditionalElseBranch(t *testing.T) {
	cond := ConditionalRule{If: failRule{keyword: "k"}, Else: failRule{keyword: "e"}}
	ok, ctx := evalOnce(cond, value.Null())
	if ok {
		t.Fatal("ConditionalRule should run \"else\" when \"if\" fails")
	}
	if len(ctx.Errors()) != 1 {
		t.Errorf("errors = %d, want 1 from \"else\"", len(ctx.Errors()))
	}
}

func TestConditionalNoIfIsInert(t *testing.T) {
	cond := ConditionalRule{Then: failRule{keyword: "v"}}
	ok, _ := evalOnce(cond, value.Null())
	if !ok {
		t.Error("ConditionalRule without \"if\" should always pass")
	}
}

func TestContainsEmptyArrayFails(t *testing.T) {
	ok, _ := evalOnce(ContainsRule{Branch: passRule{}}, value.Array(nil))
	if ok {
		t.Error("ContainsRule on empty array should fail")
	}
}

func TestContainsNonArrayPasses(t *testing.T) {
	ok, _ := evalOnce(ContainsRule{Branch: failRule{keyword: "x"}}, value.Int(5))
	if !ok {
		t.Error("ContainsRule on non-array should pass")
	}
}

func TestContainsAtLeastOneMatch(t *testing.T) {
	arr := value.Array([]value.Value{value.Int(1), value.Int(2)})
	ok, _ := evalOnce(ContainsRule{Branch: evenRule{}}, arr)
	if !ok {
		t.Error("ContainsRule should pass when at least one element matches")
	}
}

type evenRule struct{}

func (evenRule) Evaluate(v value.Value, ctx *Ctx) bool {
	f, _ := v.AsFloat64()
	if int64(f)%2 == 0 {
		return true
	}
	ctx.AddError("even", v, "not even")
	return false
}

func TestPropertyDependencyRule(t *testing.T) {
	withTrigger := value.NewObject()
	withTrigger.Set("credit_card", value.Int(1))
	withTrigger.Set("billing_address", value.String("x"))

	rule := PropertyDependencyRule{Trigger: "credit_card", Requires: []string{"billing_address"}}
	if ok, _ := evalOnce(rule, withTrigger); !ok {
		t.Error("PropertyDependencyRule should pass when required property present")
	}

	missing := value.NewObject()
	missing.Set("credit_card", value.Int(1))
	if ok, _ := evalOnce(rule, missing); ok {
		t.Error("PropertyDependencyRule should fail when required property missing")
	}

	noTrigger := value.NewObject()
	if ok, _ := evalOnce(rule, noTrigger); !ok {
		t.Error("PropertyDependencyRule should pass trivially when trigger absent")
	}
}

func TestSchemaDependencyRule(t *testing.T) {
	withTrigger := value.NewObject()
	withTrigger.Set("x", value.Int(1))

	rule := SchemaDependencyRule{Trigger: "x", Branch: failRule{keyword: "nested"}}
	if ok, _ := evalOnce(rule, withTrigger); ok {
		t.Error("SchemaDependencyRule should fail when nested schema fails")
	}

	noTrigger := value.NewObject()
	if ok, _ := evalOnce(rule, noTrigger); !ok {
		t.Error("SchemaDependencyRule should pass trivially when trigger absent")
	}
}
