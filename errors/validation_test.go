package errors

import (
	"encoding/json"
	"testing"
)

func TestValidationErrorError(t *testing.T) {
	tests := []struct {
		name string
		v    ValidationError
		want string
	}{
		{
			name: "message only",
			v:    ValidationError{Message: "bad value"},
			want: "bad value",
		},
		{
			name: "with path and keyword",
			v: ValidationError{
				Message:      "value has type \"string\", want one of [integer]",
				InstancePath: []string{"a", "0"},
				Keyword:      "type",
			},
			want: `value has type "string", want one of [integer] at /a/0 (keyword: type)`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationErrorMarshalJSON(t *testing.T) {
	v := ValidationError{
		Message:      "missing required property \"x\"",
		InstancePath: []string{"a", "b"},
		SchemaPath:   []string{"properties", "a", "required"},
		Keyword:      "required",
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got["instance_path"] != "/a/b" {
		t.Errorf("instance_path = %v, want /a/b", got["instance_path"])
	}
	if got["keyword"] != "required" {
		t.Errorf("keyword = %v, want required", got["keyword"])
	}
	arr, ok := got["instance_path_array"].([]any)
	if !ok || len(arr) != 2 || arr[0] != "a" || arr[1] != "b" {
		t.Errorf("instance_path_array = %v, want [a b]", got["instance_path_array"])
	}
}

func TestCompileErrorError(t *testing.T) {
	c := NewCompileError([]string{"minLength"}, "%q must be a non-negative integer", "minLength")
	want := `/minLength: "minLength" must be a non-negative integer`
	if got := c.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorListSummaries(t *testing.T) {
	var empty ValidationErrorList
	if got := empty.Error(); got != "no validation errors" {
		t.Errorf("empty list Error() = %q", got)
	}
	if !empty.Valid() {
		t.Error("empty list Valid() = false, want true")
	}

	list := ValidationErrorList{
		{Message: "first"},
		{Message: "second"},
	}
	if list.Valid() {
		t.Error("non-empty list Valid() = true, want false")
	}
	if got := list.Error(); got != "first (and 1 more)" {
		t.Errorf("Error() = %q, want %q", got, "first (and 1 more)")
	}
}

func TestFromCompileErrors(t *testing.T) {
	compileErrs := []CompileError{
		NewCompileError([]string{"pattern"}, "invalid regular expression"),
	}
	got := FromCompileErrors(compileErrs)
	if len(got) != 1 {
		t.Fatalf("FromCompileErrors() = %d errors, want 1", len(got))
	}
	if got[0].Keyword != "$compile" {
		t.Errorf("Keyword = %q, want $compile", got[0].Keyword)
	}
}
