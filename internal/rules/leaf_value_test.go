package rules

import (
	"testing"

	"github.com/jacoelho/jsonschema/internal/value"
)

func evalOnce(r Rule, v value.Value) (bool, *Ctx) {
	ctx := AcquireCtx()
	ok := r.Evaluate(v, ctx)
	return ok, ctx
}

func TestTypeRuleWidening(t *testing.T) {
	tests := []struct {
		name string
		rule TypeRule
		v    value.Value
		want bool
	}{
		{"integer type accepts int", TypeRule{Allowed: []string{"integer"}}, value.Int(5), true},
		{"integer type accepts fractional-free float", TypeRule{Allowed: []string{"integer"}}, value.Number(5.0), true},
		{"integer type rejects fractional float", TypeRule{Allowed: []string{"integer"}}, value.Number(5.5), false},
		{"number type accepts int", TypeRule{Allowed: []string{"number"}}, value.Int(5), true},
		{"string type rejects int", TypeRule{Allowed: []string{"string"}}, value.Int(5), false},
		{"union type matches second", TypeRule{Allowed: []string{"string", "integer"}}, value.Int(5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := evalOnce(tt.rule, tt.v)
			if ok != tt.want {
				t.Errorf("Evaluate() = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestConstRule(t *testing.T) {
	rule := ConstRule{Value: value.String("x")}
	if ok, _ := evalOnce(rule, value.String("x")); !ok {
		t.Error("ConstRule matched value failed to pass")
	}
	ok, ctx := evalOnce(rule, value.String("y"))
	if ok {
		t.Error("ConstRule mismatched value passed")
	}
	if len(ctx.Errors()) != 1 {
		t.Errorf("errors = %d, want 1", len(ctx.Errors()))
	}
}

func TestEnumRule(t *testing.T) {
	rule := EnumRule{Values: []value.Value{value.Int(1), value.String("a")}}
	if ok, _ := evalOnce(rule, value.Int(1)); !ok {
		t.Error("EnumRule(1) should pass")
	}
	if ok, _ := evalOnce(rule, value.Number(1.0)); !ok {
		t.Error("EnumRule(1.0) should pass via numeric widening")
	}
	if ok, _ := evalOnce(rule, value.String("b")); ok {
		t.Error("EnumRule(b) should fail")
	}
}
