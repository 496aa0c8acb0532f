package schematree

import (
	"strconv"

	"github.com/jacoelho/jsonschema/internal/value"
)

// scalarSubschemaKeywords, mapSubschemaKeywords and arraySubschemaKeywords
// list the keywords whose value is itself a schema (or an array/map of
// schemas), grouped by how to descend into them (spec §4.2). Each entry
// drives Build's recursive construction of composite child keys.
var scalarSubschemaKeywords = []string{
	"not", "if", "then", "else", "contains", "propertyNames", "additionalItems",
}

var mapSubschemaKeywords = []string{
	"properties", "patternProperties", "definitions", "$defs",
}

var arraySubschemaKeywords = []string{
	"allOf", "anyOf", "oneOf",
}

// Build constructs the schema tree rooted at def (spec §4.2). A boolean
// schema becomes a Node with Boolean set and no children. An object schema
// is walked keyword-by-keyword, recursing into every position that can hold
// a subschema; everything else — the object's own scalar keywords
// (minLength, pattern, and so on) — is left in Definition for the compiler
// to read directly, since they need no further tree structure.
func Build(def value.Value) *Node {
	root := &Node{Definition: def, Path: nil}
	root.Kind = InferKind(def)
	populate(root, def)
	return root
}

func populate(n *Node, def value.Value) {
	if b, ok := def.AsBool(); ok {
		n.Boolean = &b
		return
	}
	if def.Kind() != value.KindObject {
		// Bare scalar/array/number/null shorthand: per spec §4.2 this is
		// promoted to {"const": def} so it behaves as a fixed-value schema.
		promoted := value.NewObject()
		promoted.Set("const", def)
		n.Definition = promoted
		return
	}

	if id, ok := stringKeyword(def, "$id"); ok {
		n.ID = id
	} else if id, ok := stringKeyword(def, "id"); ok {
		n.ID = id
	}
	if n.ID != "" {
		// A node's own "$id" rebases sibling "$ref" resolution within its
		// subtree (spec §9 supplemental feature: Draft-7 "$id" scoping).
		n.BaseURI = n.ID
	}
	if s, ok := stringKeyword(def, "$schema"); ok {
		n.SchemaURI = s
	}

	for _, kw := range scalarSubschemaKeywords {
		if sub, ok := def.Get(kw); ok {
			n.buildChild(kw, sub)
		}
	}

	for _, kw := range mapSubschemaKeywords {
		sub, ok := def.Get(kw)
		if !ok || sub.Kind() != value.KindObject {
			continue
		}
		for _, name := range sub.Keys() {
			child, _ := sub.Get(name)
			n.buildChild(kw+"/"+name, child)
		}
	}

	for _, kw := range arraySubschemaKeywords {
		sub, ok := def.Get(kw)
		if !ok {
			continue
		}
		arr, ok := sub.AsArray()
		if !ok {
			continue
		}
		for i, elem := range arr {
			n.buildChild(kw+"/"+strconv.Itoa(i), elem)
		}
	}

	populateItems(n, def)
	populateAdditionalProperties(n, def)
	populateDependencies(n, def)
}

// populateItems handles "items" in both its list-validation (single schema)
// and tuple-validation (array of schemas) forms (spec §4.2, §4.4).
func populateItems(n *Node, def value.Value) {
	items, ok := def.Get("items")
	if !ok {
		return
	}
	if arr, ok := items.AsArray(); ok {
		n.ItemSchemas = make([]*Node, len(arr))
		for i, elem := range arr {
			child := n.buildChild("items/"+strconv.Itoa(i), elem)
			n.ItemSchemas[i] = child
		}
		return
	}
	n.buildChild("items", items)
}

// additionalProperties can be a boolean or a schema; only the schema form
// needs a child node, the boolean form is read directly by the compiler.
func populateAdditionalProperties(n *Node, def value.Value) {
	ap, ok := def.Get("additionalProperties")
	if !ok {
		return
	}
	if _, isBool := ap.AsBool(); isBool {
		return
	}
	n.buildChild("additionalProperties", ap)
}

// populateDependencies splits "dependencies" entries into the
// property-dependency form (array of names) — left in Definition — and the
// schema-dependency form, which needs a child node (spec §4.5).
func populateDependencies(n *Node, def value.Value) {
	deps, ok := def.Get("dependencies")
	if !ok || deps.Kind() != value.KindObject {
		return
	}
	for _, name := range deps.Keys() {
		entry, _ := deps.Get(name)
		if _, isArray := entry.AsArray(); isArray {
			continue
		}
		n.buildChild("dependencies/"+name, entry)
	}
}

func (n *Node) buildChild(key string, def value.Value) *Node {
	child := n.NewChild(key, def, append(append([]string(nil), n.Path...), key))
	populate(child, def)
	return child
}

func stringKeyword(def value.Value, key string) (string, bool) {
	v, ok := def.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}
