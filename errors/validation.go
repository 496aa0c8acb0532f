// Package errors implements the two error taxonomies of spec §7:
// CompileError (malformed schema) and ValidationError (input data that
// failed a rule), each collected into a list type that itself satisfies
// error so a validator never needs to throw — grounded on the teacher's
// Validation/ValidationList shape (errors/validation.go).
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Keyword identifies the schema keyword (or pseudo-keyword) that produced
// an error. Kept as a plain string, not a closed enum, because it also
// carries pseudo-keywords such as "false", "ref" and "$compile".
type Keyword string

// CompileError describes a malformed schema: a keyword has the wrong shape,
// or a nested subschema could not be compiled (spec §7).
type CompileError struct {
	Message    string
	SchemaPath []string
}

// Error satisfies the error interface.
func (c CompileError) Error() string {
	if len(c.SchemaPath) == 0 {
		return c.Message
	}
	return fmt.Sprintf("%s: %s", pathString(c.SchemaPath), c.Message)
}

// NewCompileError builds a CompileError at schemaPath.
func NewCompileError(schemaPath []string, format string, args ...any) CompileError {
	return CompileError{Message: fmt.Sprintf(format, args...), SchemaPath: append([]string(nil), schemaPath...)}
}

// CompileErrorList is one or more CompileErrors, satisfying error.
type CompileErrorList []CompileError

// Error summarizes the list per the teacher's "first + count" convention.
func (l CompileErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no compile errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// ValidationError is one failed rule against one instance location
// (spec §3, §6). It marshals to the host-facing error record shape.
type ValidationError struct {
	Message      string
	InstancePath []string
	SchemaPath   []string
	Keyword      Keyword
	InvalidValue any
}

// Error satisfies the error interface.
func (v ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(v.Message)
	if len(v.InstancePath) > 0 {
		fmt.Fprintf(&b, " at %s", pathString(v.InstancePath))
	}
	if v.Keyword != "" {
		fmt.Fprintf(&b, " (keyword: %s)", v.Keyword)
	}
	return b.String()
}

// jsonRecord is the wire shape spec §6 names for a ValidationError.
type jsonRecord struct {
	Message           string   `json:"message"`
	InstancePath      string   `json:"instance_path"`
	InstancePathArray []string `json:"instance_path_array"`
	SchemaPath        string   `json:"schema_path"`
	SchemaPathArray   []string `json:"schema_path_array"`
	Keyword           string   `json:"keyword"`
	InvalidValue      any      `json:"invalid_value,omitempty"`
}

// MarshalJSON renders the host-facing error record shape from spec §6.
func (v ValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonRecord{
		Message:           v.Message,
		InstancePath:      pathString(v.InstancePath),
		InstancePathArray: append([]string(nil), v.InstancePath...),
		SchemaPath:        pathString(v.SchemaPath),
		SchemaPathArray:   append([]string(nil), v.SchemaPath...),
		Keyword:           string(v.Keyword),
		InvalidValue:      v.InvalidValue,
	})
}

// ValidationErrorList is zero or more ValidationErrors, satisfying error.
// An empty list represents success but is still returned (never nil vs.
// non-nil ambiguity) so callers can inspect it uniformly.
type ValidationErrorList []ValidationError

// Error summarizes the list.
func (l ValidationErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no validation errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// Valid reports whether the list is empty.
func (l ValidationErrorList) Valid() bool { return len(l) == 0 }

// FromCompileErrors reprojects compile errors as validation errors so a
// caller attempting to validate against a schema that failed to compile
// sees one uniform error shape (spec §7, §4.9 step 2).
func FromCompileErrors(errs []CompileError) ValidationErrorList {
	out := make(ValidationErrorList, len(errs))
	for i, c := range errs {
		out[i] = ValidationError{
			Message:    c.Message,
			SchemaPath: c.SchemaPath,
			Keyword:    "$compile",
		}
	}
	return out
}

func pathString(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range segments {
		b.WriteByte('/')
		if strings.ContainsAny(seg, "~/") {
			seg = strings.ReplaceAll(seg, "~", "~0")
			seg = strings.ReplaceAll(seg, "/", "~1")
		}
		b.WriteString(seg)
	}
	return b.String()
}
