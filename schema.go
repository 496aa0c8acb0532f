// Package jsonschema compiles and evaluates JSON-Schema Draft-7 documents
// against a generic dynamic value model. See internal/value, internal/rules,
// internal/schematree, and internal/compiler for the engine; this file is
// the public facade, mirroring the teacher's Engine/Session split
// (engine.go) adapted to a lazily-compiled, registry-aware Schema type.
package jsonschema

import (
	"sync"

	"github.com/jacoelho/jsonschema/errors"
	"github.com/jacoelho/jsonschema/internal/compiler"
	"github.com/jacoelho/jsonschema/internal/jsonpointer"
	"github.com/jacoelho/jsonschema/internal/rules"
	"github.com/jacoelho/jsonschema/internal/schematree"
	"github.com/jacoelho/jsonschema/internal/value"
)

// Schema is a schema tree together with its lazily-compiled rule group
// (spec §3 Schema node, §6 build_schema). The zero value is not usable;
// construct with CompileSchema.
type Schema struct {
	root *schematree.Node

	once        sync.Once
	group       *rules.Group
	compileErrs []errors.CompileError

	metaWarnings []errors.ValidationError
}

// CompileSchema constructs a schema tree from doc (spec §4.2). The tree is
// built eagerly; the rule group itself compiles lazily on first Validate or
// CompileErrors call (spec §4.9 step 1, §5 "idempotent compile"). If doc or
// WithID carries an id, the schema auto-registers (spec §6).
func CompileSchema(doc value.Value, opts ...CompileOption) (*Schema, error) {
	cfg := applyCompileOptions(opts)

	root := schematree.Build(doc)
	s := &Schema{root: root}

	if cfg.validateMeta && !metaschemaBuilding() {
		s.metaWarnings = validateAgainstMeta(doc)
	}

	id := cfg.id
	if id == "" {
		id = root.ID
	}
	if id != "" {
		defaultRegistry.Register(id, root)
	}

	return s, nil
}

// MetaWarnings reports any errors found validating this schema's own
// document against the Draft-7 meta-schema, when constructed with
// WithMetaValidation(true) (spec §4.2's "non-fatal warning").
func (s *Schema) MetaWarnings() []errors.ValidationError {
	return s.metaWarnings
}

func (s *Schema) compile() {
	s.once.Do(func() {
		s.group, s.compileErrs = compiler.Compile(s.root)
	})
}

// CompileErrors reports any problems found compiling the schema, forcing
// compilation if it has not already happened (spec §6 compile_errors).
func (s *Schema) CompileErrors() []errors.CompileError {
	s.compile()
	return s.compileErrs
}

// ValidationResult is the outcome of one Validate call (spec §6).
type ValidationResult struct {
	Errors errors.ValidationErrorList
}

// Valid reports whether Errors is empty.
func (r ValidationResult) Valid() bool { return r.Errors.Valid() }

// Validate ensures s is compiled, then evaluates v against its rule group
// (spec §4.9). A schema that failed to compile reprojects its compile
// errors as validation errors so callers see one uniform shape.
func (s *Schema) Validate(v value.Value) ValidationResult {
	s.compile()
	if len(s.compileErrs) > 0 {
		return ValidationResult{Errors: errors.FromCompileErrors(s.compileErrs)}
	}

	ctx := rules.AcquireCtx()
	defer rules.Release(ctx)
	s.group.Evaluate(v, ctx)
	return ValidationResult{Errors: ctx.Errors()}
}

// GetAtPath navigates the schema tree by JSON Pointer, returning the
// sub-schema at that location, or nil if no node exists there (spec §6).
func (s *Schema) GetAtPath(pointer string) *Schema {
	node := s.root.ChildAt(jsonpointer.Parse(pointer).Segments())
	if node == nil {
		return nil
	}
	return &Schema{root: node}
}
