package jsonschema

// CompileOption configures CompileSchema. Grounded on the teacher's
// CompileOption/apply(*compileOptions) shape (options.go).
type CompileOption interface{ apply(*compileOptions) }

type compileOptions struct {
	validateMeta bool
	id           string
}

type compileOptionFunc func(*compileOptions)

func (f compileOptionFunc) apply(cfg *compileOptions) { f(cfg) }

// WithMetaValidation pre-validates the schema document against the Draft-7
// meta-schema during construction (spec §4.2, §4.8). Failures are recorded
// as non-fatal warnings, retrievable via Schema.MetaWarnings.
func WithMetaValidation(b bool) CompileOption {
	return compileOptionFunc(func(cfg *compileOptions) { cfg.validateMeta = b })
}

// WithID overrides the id used for auto-registration, taking precedence
// over any "$id" found in the document (spec §6 register_schema).
func WithID(id string) CompileOption {
	return compileOptionFunc(func(cfg *compileOptions) { cfg.id = id })
}

func applyCompileOptions(opts []CompileOption) compileOptions {
	var cfg compileOptions
	for _, o := range opts {
		o.apply(&cfg)
	}
	return cfg
}
