// Package schematree implements the recursive, reference-bearing schema
// tree of spec §3–§4.2: a node per (sub)schema, with children indexed by
// composite keyword keys, lazily and idempotently compiled by the rule
// compiler. Grounded on the teacher's split between a raw parsed structure
// and a separately-compiled runtime (internal/parser + internal/runtimebuild),
// adapted from XSD particles/types to JSON-Schema keywords.
package schematree

import (
	"sync"

	"github.com/jacoelho/jsonschema/errors"
	"github.com/jacoelho/jsonschema/internal/value"
)

// Kind classifies a schema node by the keywords it carries (spec §4.2).
type Kind uint8

const (
	KindScalar Kind = iota
	KindObject
	KindArray
	KindLogical
)

// Compiled holds a node's late-bound compile result, set exactly once
// (spec §3 "compiled" invariant). The payload type is `any` here to avoid
// an import cycle with internal/rules; the compiler stores a *rules.Group.
type Compiled struct {
	mu      sync.Mutex
	done    bool
	Group   any
	Errors  []errors.CompileError
}

// Node is one node of the schema tree. The root node exclusively owns all
// descendant nodes; a non-root node's Root field is a non-owning
// back-reference used only for $ref lookups (spec §3 "Ownership").
type Node struct {
	Definition value.Value
	Boolean    *bool // non-nil for a boolean schema (true/false), spec §4.2
	Kind       Kind
	Path       []string
	Root       *Node
	Children   map[string]*Node
	// ItemSchemas holds the ordered tuple-form "items" children, indexed
	// the same as Children["items/<i>"] for convenient sequential access.
	ItemSchemas []*Node

	ID        string
	SchemaURI string

	// BaseURI is the nearest enclosing "$id" (this node's own ID if set,
	// otherwise inherited from its parent), establishing the base a
	// sibling "$ref" resolves relative to (spec §9 supplemental feature:
	// Draft-7 "$id" scoping).
	BaseURI string

	compiled Compiled
}

// CompiledState exposes the node's compile-guard to the compiler package.
func (n *Node) CompiledState() *Compiled { return &n.compiled }

// Lock guards {Group, Errors, done}; compilation is idempotent: a second
// caller observes the completed state and skips recompilation (spec §5).
func (c *Compiled) Lock()   { c.mu.Lock() }
func (c *Compiled) Unlock() { c.mu.Unlock() }

// Done reports whether compilation has completed.
func (c *Compiled) Done() bool { return c.done }

// Finish records the compile result and marks Done, caller must hold Lock.
func (c *Compiled) Finish(group any, errs []errors.CompileError) {
	c.Group = group
	c.Errors = errs
	c.done = true
}

// NewChild allocates a child node under key, owned by n's root.
func (n *Node) NewChild(key string, def value.Value, path []string) *Node {
	child := &Node{
		Definition: def,
		Path:       path,
		Root:       n.root(),
		BaseURI:    n.BaseURI,
	}
	child.Kind = InferKind(def)
	if n.Children == nil {
		n.Children = map[string]*Node{}
	}
	n.Children[key] = child
	return child
}

func (n *Node) root() *Node {
	if n.Root != nil {
		return n.Root
	}
	return n
}

// ChildAt navigates JSON-Pointer segments from n, for Schema.GetAtPath and
// same-document $ref resolution (spec §4.7, §6). Children are indexed by
// composite keys spanning one or two pointer segments (e.g.
// "properties/name", "not"), so each hop first tries the two-segment
// combination before falling back to a single segment.
func (n *Node) ChildAt(segments []string) *Node {
	cur := n
	i := 0
	for i < len(segments) {
		if i+1 < len(segments) {
			if child, ok := cur.Children[segments[i]+"/"+segments[i+1]]; ok {
				cur = child
				i += 2
				continue
			}
		}
		child, ok := cur.Children[segments[i]]
		if !ok {
			return nil
		}
		cur = child
		i++
	}
	return cur
}

// InferKind detects a node's Kind from explicit "type" first, then from
// keyword presence (spec §4.2).
func InferKind(def value.Value) Kind {
	if def.Kind() != value.KindObject {
		return KindScalar
	}
	if t, ok := def.Get("type"); ok {
		if s, ok := t.AsString(); ok {
			return kindForTypeToken(s)
		}
		if arr, ok := t.AsArray(); ok && len(arr) > 0 {
			if s, ok := arr[0].AsString(); ok {
				return kindForTypeToken(s)
			}
		}
	}
	for _, kw := range []string{"items", "minItems", "maxItems", "uniqueItems", "additionalItems", "contains"} {
		if def.Has(kw) {
			return KindArray
		}
	}
	for _, kw := range []string{"properties", "required", "minProperties", "maxProperties", "patternProperties", "additionalProperties", "propertyNames", "dependencies"} {
		if def.Has(kw) {
			return KindObject
		}
	}
	for _, kw := range []string{"allOf", "anyOf", "oneOf", "not", "if", "then", "else"} {
		if def.Has(kw) {
			return KindLogical
		}
	}
	return KindScalar
}

func kindForTypeToken(token string) Kind {
	switch token {
	case "array":
		return KindArray
	case "object":
		return KindObject
	default:
		return KindScalar
	}
}
