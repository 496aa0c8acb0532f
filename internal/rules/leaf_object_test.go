package rules

import (
	"testing"

	"github.com/jacoelho/jsonschema/internal/value"
)

func objWithN(n int) value.Value {
	obj := value.NewObject()
	for i := 0; i < n; i++ {
		obj.Set(string(rune('a'+i)), value.Int(int64(i)))
	}
	return obj
}

func TestMinMaxProperties(t *testing.T) {
	obj := objWithN(2)
	if ok, _ := evalOnce(MinPropertiesRule{Min: 2}, obj); !ok {
		t.Error("MinPropertiesRule{2} should pass for 2-member object")
	}
	if ok, _ := evalOnce(MinPropertiesRule{Min: 3}, obj); ok {
		t.Error("MinPropertiesRule{3} should fail for 2-member object")
	}
	if ok, _ := evalOnce(MaxPropertiesRule{Max: 2}, obj); !ok {
		t.Error("MaxPropertiesRule{2} should pass for 2-member object")
	}
	if ok, _ := evalOnce(MaxPropertiesRule{Max: 1}, obj); ok {
		t.Error("MaxPropertiesRule{1} should fail for 2-member object")
	}
}

func TestMinMaxPropertiesInapplicableType(t *testing.T) {
	if ok, _ := evalOnce(MinPropertiesRule{Min: 5}, value.Int(1)); !ok {
		t.Error("MinPropertiesRule on non-object should pass trivially")
	}
	if ok, _ := evalOnce(MaxPropertiesRule{Max: 0}, value.Int(1)); !ok {
		t.Error("MaxPropertiesRule on non-object should pass trivially")
	}
}

func TestRequiredPropertiesRuleReportsEachMissingNameAtObjectPath(t *testing.T) {
	obj := value.NewObject()
	obj.Set("a", value.Int(1))

	rule := RequiredPropertiesRule{Names: []string{"a", "b", "c"}}
	ok, ctx := evalOnce(rule, obj)
	if ok {
		t.Fatal("RequiredPropertiesRule should fail when a required name is missing")
	}
	errs := ctx.Errors()
	if len(errs) != 2 {
		t.Fatalf("errors = %d, want 2 (one per missing name)", len(errs))
	}
	for _, e := range errs {
		if e.Keyword != "required" {
			t.Errorf("Keyword = %q, want \"required\"", e.Keyword)
		}
		if len(e.InstancePath) != 0 {
			t.Errorf("InstancePath = %v, want empty — the missing key is not a valid pointer into the input", e.InstancePath)
		}
	}
}

func TestRequiredPropertiesRuleAllPresentPasses(t *testing.T) {
	obj := value.NewObject()
	obj.Set("a", value.Int(1))
	obj.Set("b", value.Int(2))
	if ok, _ := evalOnce(RequiredPropertiesRule{Names: []string{"a", "b"}}, obj); !ok {
		t.Error("RequiredPropertiesRule should pass when every name is present")
	}
}

func TestRequiredPropertiesRuleInapplicableType(t *testing.T) {
	if ok, _ := evalOnce(RequiredPropertiesRule{Names: []string{"a"}}, value.Int(1)); !ok {
		t.Error("RequiredPropertiesRule on non-object should pass trivially")
	}
}
