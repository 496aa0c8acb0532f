// Package ref implements the "$ref" indirection rule and its resolver
// (spec §4.7): a URI-addressed lookup against either the owning document's
// own tree or the process-wide registry, late-bound and resolved at most
// once. Grounded on the teacher's split between a public Resolver surface
// and an internal resolution algorithm (resolver.go, internal/loader).
package ref

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/jacoelho/jsonschema/errors"
	"github.com/jacoelho/jsonschema/internal/jsonpointer"
	"github.com/jacoelho/jsonschema/internal/rules"
	"github.com/jacoelho/jsonschema/internal/schematree"
	"github.com/jacoelho/jsonschema/internal/value"
)

// CompileFunc lazily compiles a node into a rule group, supplied by the
// compiler package to avoid an import cycle (ref must not import compiler).
type CompileFunc func(*schematree.Node) (*rules.Group, []errors.CompileError)

// LookupFunc resolves an external "$id" to its registered root node.
type LookupFunc func(id string) (*schematree.Node, bool)

// Rule is the compiled form of "$ref" (spec §4.7). Resolution happens at
// most once; the outcome (target or failure) is cached on the Rule itself.
type Rule struct {
	URI     string
	BaseURI string
	Root    *schematree.Node
	Compile CompileFunc
	Lookup  LookupFunc

	mu         sync.Mutex
	resolved   bool
	target     *schematree.Node
	resolveErr error
}

// New constructs a Ref rule for uri, resolved lazily against root. baseURI is
// the nearest enclosing "$id" in scope at the point the "$ref" appears (spec
// §9 supplemental feature); pass "" when no "$id" is in scope.
func New(uri, baseURI string, root *schematree.Node, compile CompileFunc, lookup LookupFunc) *Rule {
	return &Rule{URI: uri, BaseURI: baseURI, Root: root, Compile: compile, Lookup: lookup}
}

// Evaluate implements rules.Rule.
func (r *Rule) Evaluate(v value.Value, ctx *rules.Ctx) bool {
	target, err := r.resolve()
	if err != nil {
		ctx.AddError("ref", v, "could not resolve $ref %q: %v", r.URI, err)
		return false
	}

	if ctx.RefDepth() >= rules.MaxValidationDepth {
		return true
	}
	exit := ctx.EnterRef()
	defer exit()

	group, errs := r.Compile(target)
	if len(errs) > 0 {
		ctx.AddError("ref", v, "schema referenced by %q failed to compile", r.URI)
		return false
	}

	child := ctx.Fork()
	popSeg := child.EnterSchemaSegment(fmt.Sprintf("$ref:%s", r.URI))
	ok := group.Evaluate(v, child)
	popSeg()
	ctx.Merge(child)
	rules.Release(child)
	return ok
}

func (r *Rule) resolve() (*schematree.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return r.target, r.resolveErr
	}
	r.resolved = true
	r.target, r.resolveErr = resolve(r.Root, r.URI, r.BaseURI, r.Lookup)
	return r.target, r.resolveErr
}

// resolve implements the URI grammar of spec §4.7, with "$id" scoping (spec
// §9 supplemental feature): a non-fragment uri is first tried rebased
// against baseURI (the nearest enclosing "$id"), falling back to looking it
// up verbatim when no "$id" is in scope or the rebased form isn't
// registered either.
func resolve(root *schematree.Node, uri, baseURI string, lookup LookupFunc) (*schematree.Node, error) {
	switch {
	case uri == "#":
		return root, nil
	case strings.HasPrefix(uri, "#/"):
		ptr := jsonpointer.Parse(uri)
		target := root.ChildAt(ptr.Segments())
		if target == nil {
			return nil, fmt.Errorf("no node at %s", uri)
		}
		return target, nil
	case strings.HasPrefix(uri, "#"):
		// Legacy plain-name anchors are not supported (spec §4.7, §9 Open
		// Questions): targets are always JSON Pointers in this implementation.
		return nil, fmt.Errorf("anchor-style reference %q is unsupported", uri)
	default:
		id, pointer := splitFragment(uri)
		if lookup == nil {
			return nil, fmt.Errorf("no registry available to resolve %q", uri)
		}
		var target *schematree.Node
		ok := false
		if baseURI != "" {
			if rebased, rebaseOK := rebase(baseURI, id); rebaseOK {
				target, ok = lookup(rebased)
			}
		}
		if !ok {
			target, ok = lookup(id)
		}
		if !ok {
			return nil, fmt.Errorf("no schema registered with id %q", id)
		}
		if pointer == "" || pointer == "#" {
			return target, nil
		}
		if !strings.HasPrefix(pointer, "#/") {
			return nil, fmt.Errorf("anchor-style reference %q is unsupported", uri)
		}
		ptr := jsonpointer.Parse(pointer)
		sub := target.ChildAt(ptr.Segments())
		if sub == nil {
			return nil, fmt.Errorf("no node at %s within %q", pointer, id)
		}
		return sub, nil
	}
}

// rebase resolves ref as a URI reference against base, per RFC 3986 (the
// Draft-7 "$id" scoping rule: a sibling "$ref" that is itself a relative or
// absolute URI resolves against the nearest enclosing "$id", not the
// document root).
func rebase(base, ref string) (string, bool) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	return baseURL.ResolveReference(refURL).String(), true
}

func splitFragment(uri string) (id, fragment string) {
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		return uri[:i], uri[i:]
	}
	return uri, ""
}
