package rules

import (
	"regexp"
	"strings"

	"github.com/jacoelho/jsonschema/internal/value"
)

// applicableString extracts a string operand, or "", false if v is not a
// string — leaf rules succeed trivially on inapplicable types (spec §4.4).
func applicableString(v value.Value) (string, bool) {
	return v.AsString()
}

// MinLengthRule measures UTF-8 byte length (spec §4.4's documented
// deviation from Draft-7 code-point counting; see DESIGN.md).
type MinLengthRule struct {
	Min int
}

// Evaluate implements Rule.
func (r MinLengthRule) Evaluate(v value.Value, ctx *Ctx) bool {
	s, ok := applicableString(v)
	if !ok {
		return true
	}
	if len(s) >= r.Min {
		return true
	}
	ctx.AddError("minLength", v, "string length %d is less than minimum %d", len(s), r.Min)
	return false
}

// MaxLengthRule measures UTF-8 byte length (same deviation as MinLengthRule).
type MaxLengthRule struct {
	Max int
}

// Evaluate implements Rule.
func (r MaxLengthRule) Evaluate(v value.Value, ctx *Ctx) bool {
	s, ok := applicableString(v)
	if !ok {
		return true
	}
	if len(s) <= r.Max {
		return true
	}
	ctx.AddError("maxLength", v, "string length %d is greater than maximum %d", len(s), r.Max)
	return false
}

// PatternRule matches a string against a compiled regex. An invalid
// pattern is a validation-time error (not a compile error, spec §7), kept
// as a per-evaluation failure rather than panicking.
type PatternRule struct {
	Regexp *regexp.Regexp
	Source string
}

// Evaluate implements Rule.
func (r PatternRule) Evaluate(v value.Value, ctx *Ctx) bool {
	s, ok := applicableString(v)
	if !ok {
		return true
	}
	if r.Regexp == nil {
		ctx.AddError("pattern", v, "pattern %q could not be compiled", r.Source)
		return false
	}
	if r.Regexp.MatchString(s) {
		return true
	}
	ctx.AddError("pattern", v, "string does not match pattern %q", r.Source)
	return false
}

// ContentEncodingRule checks base64 / base64url encodings (spec §4.4).
// Unknown encodings pass (annotation-only).
type ContentEncodingRule struct {
	Encoding string
}

// Evaluate implements Rule.
func (r ContentEncodingRule) Evaluate(v value.Value, ctx *Ctx) bool {
	s, ok := applicableString(v)
	if !ok {
		return true
	}
	switch r.Encoding {
	case "base64":
		if validBase64(s, true) {
			return true
		}
		ctx.AddError("contentEncoding", v, "string is not valid base64")
		return false
	case "base64url":
		if validBase64(s, false) {
			return true
		}
		ctx.AddError("contentEncoding", v, "string is not valid base64url")
		return false
	default:
		return true
	}
}

func validBase64(s string, standard bool) bool {
	if len(s)%4 != 0 {
		return false
	}
	trimmed := strings.TrimRight(s, "=")
	if len(s)-len(trimmed) > 2 {
		return false
	}
	alphabet := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	if standard {
		alphabet += "+/"
	} else {
		alphabet += "-_"
		if strings.ContainsAny(trimmed, "+/=") {
			return false
		}
	}
	for _, c := range trimmed {
		if !strings.ContainsRune(alphabet, c) {
			return false
		}
	}
	return true
}

// ContentMediaTypeRule is an annotation-only keyword: it never fails
// validation on its own (Draft-7 leaves media-type checking to consumers),
// kept so the compiler can still emit a pair for it without a special case.
type ContentMediaTypeRule struct {
	MediaType string
}

// Evaluate implements Rule.
func (ContentMediaTypeRule) Evaluate(value.Value, *Ctx) bool { return true }
