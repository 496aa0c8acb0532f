package jsonschema

import (
	"github.com/jacoelho/jsonschema/internal/compiler"
	"github.com/jacoelho/jsonschema/internal/registry"
)

var defaultRegistry = registry.New()

func init() {
	compiler.SetLookup(defaultRegistry.Lookup)
}

// RegisterSchema inserts s into the process-wide registry under id, or
// under its own "$id" if id is empty (spec §6 register_schema). A
// conflicting explicit id and document "$id" is not an error — the
// explicit id always wins, since the core does no logging of its own
// (spec §1 Non-goals) and so cannot itself emit the warning spec.md
// describes; a caller that cares can compare id against s.root.ID.
func RegisterSchema(s *Schema, id string) {
	if id == "" {
		id = s.root.ID
	}
	defaultRegistry.Register(id, s.root)
}

// UnregisterSchema removes id from the registry, reporting whether it was
// present (spec §6 unregister_schema).
func UnregisterSchema(id string) bool {
	return defaultRegistry.Unregister(id)
}

// IsSchemaRegistered reports whether id has a registry entry (spec §6
// is_schema_registered).
func IsSchemaRegistered(id string) bool {
	return defaultRegistry.IsRegistered(id)
}
