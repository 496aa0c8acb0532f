// Package jsonschema implements a JSON-Schema Draft-7 validation core: a
// two-phase engine that parses a schema document into a tree of typed,
// de-duplicated validation rules, then evaluates arbitrary data against
// that tree with full path-aware error collection.
//
// The engine is organized as (see internal/ for each stage):
//
//	internal/value       generic dynamic value model
//	internal/jsonpointer  JSON-Pointer-style paths
//	internal/rules        selectors, leaf constraints, combinators, Ctx
//	internal/schematree    the recursive schema tree
//	internal/compiler      schema tree -> compiled rule group
//	internal/ref           "$ref" resolution
//	internal/registry      process-wide $id -> schema registry
//
// CompileSchema builds a Schema from a document; Schema.Validate evaluates
// a value against it. Neither step parses JSON itself — callers decode
// their own documents (with encoding/json or otherwise) and hand the
// decoded value to value.FromAny. value lives under internal/, so only
// code inside this module (such as cmd/jsonlint) can import it and call
// CompileSchema or Validate; no exported value type is offered elsewhere.
package jsonschema
