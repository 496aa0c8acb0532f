// Package compiler implements the schema-tree → rule-group pass of
// spec §4.3: a process-wide hash-keyed cache, a singleflight-backed
// concurrent-compile collapse, and an explicit same-call-tree cycle guard.
// Grounded on the teacher's split between internal/parser (raw structure)
// and internal/runtimebuild (compiled runtime), generalized from XSD
// particles to JSON-Schema keywords.
package compiler

import (
	"regexp"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jacoelho/jsonschema/errors"
	"github.com/jacoelho/jsonschema/internal/ref"
	"github.com/jacoelho/jsonschema/internal/rules"
	"github.com/jacoelho/jsonschema/internal/schematree"
	"github.com/jacoelho/jsonschema/internal/value"
)

var (
	cache sync.Map // hash string -> *rules.Group
	sf    singleflight.Group

	lookupMu sync.RWMutex
	lookup   ref.LookupFunc
)

// SetLookup installs the registry lookup used to resolve external "$ref"
// targets. Wired once by the root package at registry construction time.
func SetLookup(fn ref.LookupFunc) {
	lookupMu.Lock()
	lookup = fn
	lookupMu.Unlock()
}

func currentLookup(id string) (*schematree.Node, bool) {
	lookupMu.RLock()
	fn := lookup
	lookupMu.RUnlock()
	if fn == nil {
		return nil, false
	}
	return fn(id)
}

// Compile turns node into an executable rule group, memoizing on both the
// node's own compile guard and the process-wide content-hash cache (spec
// §4.3, §5).
func Compile(node *schematree.Node) (*rules.Group, []errors.CompileError) {
	return compileNode(node, map[string]bool{})
}

type sfResult struct {
	group *rules.Group
	errs  []errors.CompileError
}

func compileNode(node *schematree.Node, visiting map[string]bool) (*rules.Group, []errors.CompileError) {
	cs := node.CompiledState()
	cs.Lock()
	if cs.Done() {
		g, _ := cs.Group.(*rules.Group)
		errs := cs.Errors
		cs.Unlock()
		return g, errs
	}
	cs.Unlock()

	if node.Boolean != nil {
		group := booleanGroup(*node.Boolean)
		cs.Lock()
		cs.Finish(group, nil)
		cs.Unlock()
		return group, nil
	}

	key := value.HashKey(node.Definition)

	if cached, ok := cache.Load(key); ok {
		group := cached.(*rules.Group)
		cs.Lock()
		cs.Finish(group, nil)
		cs.Unlock()
		return group, nil
	}

	if visiting[key] {
		// Same-call-tree recursion: break the cycle with an empty group
		// without marking this node done — the outer frame that is
		// actually compiling this definition will finish and cache it.
		return &rules.Group{}, nil
	}
	visiting[key] = true
	defer delete(visiting, key)

	v, err, _ := sf.Do(key, func() (any, error) {
		group, errs := buildGroup(node, visiting)
		return sfResult{group: group, errs: errs}, nil
	})
	_ = err // buildGroup never returns a Go error, only []errors.CompileError
	res := v.(sfResult)

	if len(res.errs) == 0 {
		cache.Store(key, res.group)
	}
	cs.Lock()
	cs.Finish(res.group, res.errs)
	cs.Unlock()
	return res.group, res.errs
}

func booleanGroup(accept bool) *rules.Group {
	if accept {
		return &rules.Group{}
	}
	return &rules.Group{Pairs: []rules.Pair{{
		Rule:          alwaysFail{},
		SchemaSegment: "false",
	}}}
}

// alwaysFail rejects every value with exactly one error keyed "false": the
// compiled form of the boolean schema "false" (spec §8 "Boolean schemas"
// property), and also what "additionalItems: false" / "additionalProperties:
// false" compile to — the original treats both the same way, building a
// FalseRule for each (rule_factory.cpp, rule/false_rule.cpp).
type alwaysFail struct{}

func (alwaysFail) Evaluate(v value.Value, ctx *rules.Ctx) bool {
	ctx.AddError("false", v, "value rejected by a \"false\" schema")
	return false
}

func buildGroup(node *schematree.Node, visiting map[string]bool) (*rules.Group, []errors.CompileError) {
	def := node.Definition
	var errs []errors.CompileError
	fail := func(path string, format string, args ...any) {
		errs = append(errs, errors.NewCompileError([]string{path}, format, args...))
	}

	if refVal, ok := def.Get("$ref"); ok {
		uri, ok := refVal.AsString()
		if !ok {
			fail("$ref", "\"$ref\" must be a string")
			return &rules.Group{}, errs
		}
		r := ref.New(uri, node.BaseURI, node.Root, compileForRef, currentLookup)
		return &rules.Group{Pairs: []rules.Pair{{Rule: r, SchemaSegment: "$ref"}}}, nil
	}

	var pairs []rules.Pair

	pairs = append(pairs, compileType(def, &errs)...)
	pairs = append(pairs, compileValueKeywords(def)...)
	pairs = append(pairs, compileStringKeywords(def, &errs)...)
	pairs = append(pairs, compileNumericKeywords(def, &errs)...)
	pairs = append(pairs, compileArrayKeywords(node, def, &errs, visiting)...)
	pairs = append(pairs, compileObjectKeywords(node, def, &errs, visiting)...)
	pairs = append(pairs, compileLogicalKeywords(node, def, &errs, visiting)...)

	return &rules.Group{Pairs: pairs}, errs
}

// compileForRef is handed to every ref.Rule as its lazy target-compiler;
// it starts a fresh visiting set since a $ref target is reached via a
// fresh evaluation-time call, not a schema-tree-construction-time one.
func compileForRef(target *schematree.Node) (*rules.Group, []errors.CompileError) {
	return compileNode(target, map[string]bool{})
}

func compileType(def value.Value, errs *[]errors.CompileError) []rules.Pair {
	t, ok := def.Get("type")
	if !ok {
		return nil
	}
	var allowed []string
	switch {
	case t.Kind() == value.KindString:
		s, _ := t.AsString()
		allowed = []string{s}
	case t.Kind() == value.KindArray:
		arr, _ := t.AsArray()
		for _, e := range arr {
			if s, ok := e.AsString(); ok {
				allowed = append(allowed, s)
			} else {
				*errs = append(*errs, errors.NewCompileError([]string{"type"}, "\"type\" array elements must be strings"))
			}
		}
	default:
		*errs = append(*errs, errors.NewCompileError([]string{"type"}, "\"type\" must be a string or array of strings"))
		return nil
	}
	return []rules.Pair{{Rule: rules.TypeRule{Allowed: allowed}, SchemaSegment: "type"}}
}

func compileValueKeywords(def value.Value) []rules.Pair {
	var pairs []rules.Pair
	if c, ok := def.Get("const"); ok {
		pairs = append(pairs, rules.Pair{Rule: rules.ConstRule{Value: c}, SchemaSegment: "const"})
	}
	if e, ok := def.Get("enum"); ok {
		if arr, ok := e.AsArray(); ok {
			pairs = append(pairs, rules.Pair{Rule: rules.EnumRule{Values: arr}, SchemaSegment: "enum"})
		}
	}
	return pairs
}

func compileStringKeywords(def value.Value, errs *[]errors.CompileError) []rules.Pair {
	var pairs []rules.Pair
	if n, ok := nonNegativeInt(def, "minLength", errs); ok {
		pairs = append(pairs, rules.Pair{Rule: rules.MinLengthRule{Min: n}, SchemaSegment: "minLength"})
	}
	if n, ok := nonNegativeInt(def, "maxLength", errs); ok {
		pairs = append(pairs, rules.Pair{Rule: rules.MaxLengthRule{Max: n}, SchemaSegment: "maxLength"})
	}
	if p, ok := def.Get("pattern"); ok {
		s, ok := p.AsString()
		if !ok {
			*errs = append(*errs, errors.NewCompileError([]string{"pattern"}, "\"pattern\" must be a string"))
		} else {
			re, compileErr := regexp.Compile(s)
			if compileErr != nil {
				re = nil
			}
			pairs = append(pairs, rules.Pair{Rule: rules.PatternRule{Regexp: re, Source: s}, SchemaSegment: "pattern"})
		}
	}
	if f, ok := def.Get("format"); ok {
		if s, ok := f.AsString(); ok {
			pairs = append(pairs, rules.Pair{Rule: rules.FormatRule{Token: s}, SchemaSegment: "format"})
		} else {
			*errs = append(*errs, errors.NewCompileError([]string{"format"}, "\"format\" must be a string"))
		}
	}
	if ce, ok := def.Get("contentEncoding"); ok {
		if s, ok := ce.AsString(); ok {
			pairs = append(pairs, rules.Pair{Rule: rules.ContentEncodingRule{Encoding: s}, SchemaSegment: "contentEncoding"})
		} else {
			*errs = append(*errs, errors.NewCompileError([]string{"contentEncoding"}, "\"contentEncoding\" must be a string"))
		}
	}
	if cmt, ok := def.Get("contentMediaType"); ok {
		if s, ok := cmt.AsString(); ok {
			pairs = append(pairs, rules.Pair{Rule: rules.ContentMediaTypeRule{MediaType: s}, SchemaSegment: "contentMediaType"})
		} else {
			*errs = append(*errs, errors.NewCompileError([]string{"contentMediaType"}, "\"contentMediaType\" must be a string"))
		}
	}
	return pairs
}

func compileNumericKeywords(def value.Value, errs *[]errors.CompileError) []rules.Pair {
	var pairs []rules.Pair
	minV, hasMin := numericKeyword(def, "minimum", errs)
	maxV, hasMax := numericKeyword(def, "maximum", errs)
	exMinV, hasExMin := numericKeyword(def, "exclusiveMinimum", errs)
	exMaxV, hasExMax := numericKeyword(def, "exclusiveMaximum", errs)

	if hasMin {
		pairs = append(pairs, rules.Pair{Rule: rules.MinimumRule{Min: minV}, SchemaSegment: "minimum"})
	}
	if hasExMin {
		pairs = append(pairs, rules.Pair{Rule: rules.MinimumRule{Min: exMinV, Exclusive: true}, SchemaSegment: "exclusiveMinimum"})
	}
	if hasMax {
		pairs = append(pairs, rules.Pair{Rule: rules.MaximumRule{Max: maxV}, SchemaSegment: "maximum"})
	}
	if hasExMax {
		pairs = append(pairs, rules.Pair{Rule: rules.MaximumRule{Max: exMaxV, Exclusive: true}, SchemaSegment: "exclusiveMaximum"})
	}
	if m, ok := numericKeyword(def, "multipleOf", errs); ok {
		pairs = append(pairs, rules.Pair{Rule: rules.MultipleOfRule{Of: m}, SchemaSegment: "multipleOf"})
	}
	return pairs
}

func compileArrayKeywords(node *schematree.Node, def value.Value, errs *[]errors.CompileError, visiting map[string]bool) []rules.Pair {
	var pairs []rules.Pair
	if n, ok := nonNegativeInt(def, "minItems", errs); ok {
		pairs = append(pairs, rules.Pair{Rule: rules.MinItemsRule{Min: n}, SchemaSegment: "minItems"})
	}
	if n, ok := nonNegativeInt(def, "maxItems", errs); ok {
		pairs = append(pairs, rules.Pair{Rule: rules.MaxItemsRule{Max: n}, SchemaSegment: "maxItems"})
	}
	if u, ok := def.Get("uniqueItems"); ok {
		if b, ok := u.AsBool(); ok && b {
			pairs = append(pairs, rules.Pair{Rule: rules.UniqueItemsRule{}, SchemaSegment: "uniqueItems"})
		}
	}

	if len(node.ItemSchemas) > 0 {
		for i, child := range node.ItemSchemas {
			childGroup, childErrs := compileNode(child, visiting)
			appendChildErrors(errs, "items/"+strconv.Itoa(i), childErrs)
			pairs = append(pairs, rules.Pair{
				Selector:      rules.ArrayItemSelector{Index: i},
				Rule:          childGroup,
				SchemaSegment: "items/" + strconv.Itoa(i),
			})
		}
		if ap, ok := def.Get("additionalItems"); ok {
			if b, isBool := ap.AsBool(); isBool {
				if !b {
					pairs = append(pairs, rules.Pair{
						Selector:      rules.AdditionalItemsSelector{From: len(node.ItemSchemas)},
						Rule:          alwaysFail{},
						SchemaSegment: "additionalItems",
					})
				}
			} else if child, ok := node.Children["additionalItems"]; ok {
				childGroup, childErrs := compileNode(child, visiting)
				appendChildErrors(errs, "additionalItems", childErrs)
				pairs = append(pairs, rules.Pair{
					Selector:      rules.AdditionalItemsSelector{From: len(node.ItemSchemas)},
					Rule:          childGroup,
					SchemaSegment: "additionalItems",
				})
			}
		}
	} else if child, ok := node.Children["items"]; ok {
		childGroup, childErrs := compileNode(child, visiting)
		appendChildErrors(errs, "items", childErrs)
		pairs = append(pairs, rules.Pair{
			Selector:      rules.ArrayItemsSelector{},
			Rule:          childGroup,
			SchemaSegment: "items",
		})
	}

	if child, ok := node.Children["contains"]; ok {
		childGroup, childErrs := compileNode(child, visiting)
		appendChildErrors(errs, "contains", childErrs)
		pairs = append(pairs, rules.Pair{Rule: rules.ContainsRule{Branch: childGroup}, SchemaSegment: "contains"})
	}
	return pairs
}

func compileObjectKeywords(node *schematree.Node, def value.Value, errs *[]errors.CompileError, visiting map[string]bool) []rules.Pair {
	var pairs []rules.Pair
	if n, ok := nonNegativeInt(def, "minProperties", errs); ok {
		pairs = append(pairs, rules.Pair{Rule: rules.MinPropertiesRule{Min: n}, SchemaSegment: "minProperties"})
	}
	if n, ok := nonNegativeInt(def, "maxProperties", errs); ok {
		pairs = append(pairs, rules.Pair{Rule: rules.MaxPropertiesRule{Max: n}, SchemaSegment: "maxProperties"})
	}

	if req, ok := def.Get("required"); ok {
		if arr, ok := req.AsArray(); ok {
			var names []string
			for _, n := range arr {
				name, ok := n.AsString()
				if !ok {
					*errs = append(*errs, errors.NewCompileError([]string{"required"}, "\"required\" entries must be strings"))
					continue
				}
				names = append(names, name)
			}
			if len(names) > 0 {
				pairs = append(pairs, rules.Pair{
					Rule:          rules.RequiredPropertiesRule{Names: names},
					SchemaSegment: "required",
				})
			}
		} else {
			*errs = append(*errs, errors.NewCompileError([]string{"required"}, "\"required\" must be an array of strings"))
		}
	}

	var propertyNames []string
	if props, ok := def.Get("properties"); ok && props.Kind() == value.KindObject {
		for _, name := range props.Keys() {
			propertyNames = append(propertyNames, name)
			child := node.Children["properties/"+name]
			if child == nil {
				continue
			}
			childGroup, childErrs := compileNode(child, visiting)
			appendChildErrors(errs, "properties/"+name, childErrs)
			pairs = append(pairs, rules.Pair{
				Selector:      rules.PropertySelector{Name: name},
				Rule:          childGroup,
				SchemaSegment: "properties/" + name,
			})
		}
	}

	if child, ok := node.Children["propertyNames"]; ok {
		childGroup, childErrs := compileNode(child, visiting)
		appendChildErrors(errs, "propertyNames", childErrs)
		pairs = append(pairs, rules.Pair{
			Selector:      rules.ObjectKeysSelector{},
			Rule:          childGroup,
			SchemaSegment: "propertyNames",
		})
	}

	var patterns []*regexp.Regexp
	if pp, ok := def.Get("patternProperties"); ok && pp.Kind() == value.KindObject {
		for _, pattern := range pp.SortedKeys() {
			re, compileErr := regexp.Compile(pattern)
			if compileErr != nil {
				*errs = append(*errs, errors.NewCompileError([]string{"patternProperties/" + pattern}, "invalid regular expression: %v", compileErr))
				continue
			}
			patterns = append(patterns, re)
			child := node.Children["patternProperties/"+pattern]
			if child == nil {
				continue
			}
			childGroup, childErrs := compileNode(child, visiting)
			appendChildErrors(errs, "patternProperties/"+pattern, childErrs)
			pairs = append(pairs, rules.Pair{
				Selector:      rules.PatternPropertiesSelector{Regexp: re},
				Rule:          childGroup,
				SchemaSegment: "patternProperties/" + pattern,
			})
		}
	}

	if ap, ok := def.Get("additionalProperties"); ok {
		known := make(map[string]bool, len(propertyNames))
		for _, n := range propertyNames {
			known[n] = true
		}
		if b, isBool := ap.AsBool(); isBool {
			if !b {
				pairs = append(pairs, rules.Pair{
					Selector:      rules.AdditionalPropertiesSelector{Known: known, Patterns: patterns},
					Rule:          alwaysFail{},
					SchemaSegment: "additionalProperties",
				})
			}
		} else if child, ok := node.Children["additionalProperties"]; ok {
			childGroup, childErrs := compileNode(child, visiting)
			appendChildErrors(errs, "additionalProperties", childErrs)
			pairs = append(pairs, rules.Pair{
				Selector:      rules.AdditionalPropertiesSelector{Known: known, Patterns: patterns},
				Rule:          childGroup,
				SchemaSegment: "additionalProperties",
			})
		}
	}

	if deps, ok := def.Get("dependencies"); ok && deps.Kind() == value.KindObject {
		for _, trigger := range deps.SortedKeys() {
			entry, _ := deps.Get(trigger)
			if arr, ok := entry.AsArray(); ok {
				var names []string
				for _, n := range arr {
					if s, ok := n.AsString(); ok {
						names = append(names, s)
					}
				}
				pairs = append(pairs, rules.Pair{
					Rule:          rules.PropertyDependencyRule{Trigger: trigger, Requires: names},
					SchemaSegment: "dependencies/" + trigger,
				})
				continue
			}
			child := node.Children["dependencies/"+trigger]
			if child == nil {
				continue
			}
			childGroup, childErrs := compileNode(child, visiting)
			appendChildErrors(errs, "dependencies/"+trigger, childErrs)
			pairs = append(pairs, rules.Pair{
				Rule:          rules.SchemaDependencyRule{Trigger: trigger, Branch: childGroup},
				SchemaSegment: "dependencies/" + trigger,
			})
		}
	}

	return pairs
}

func compileLogicalKeywords(node *schematree.Node, def value.Value, errs *[]errors.CompileError, visiting map[string]bool) []rules.Pair {
	var pairs []rules.Pair

	compileBranchArray := func(keyword string) []rules.Rule {
		arr, ok := def.Get(keyword)
		if !ok {
			return nil
		}
		items, ok := arr.AsArray()
		if !ok {
			*errs = append(*errs, errors.NewCompileError([]string{keyword}, "%q must be an array of schemas", keyword))
			return nil
		}
		branches := make([]rules.Rule, 0, len(items))
		for i := range items {
			child := node.Children[keyword+"/"+strconv.Itoa(i)]
			if child == nil {
				continue
			}
			childGroup, childErrs := compileNode(child, visiting)
			appendChildErrors(errs, keyword+"/"+strconv.Itoa(i), childErrs)
			branches = append(branches, childGroup)
		}
		return branches
	}

	if branches := compileBranchArray("allOf"); branches != nil {
		pairs = append(pairs, rules.Pair{Rule: rules.AllOfRule{Branches: branches}, SchemaSegment: "allOf"})
	}
	if branches := compileBranchArray("anyOf"); branches != nil {
		pairs = append(pairs, rules.Pair{Rule: rules.AnyOfRule{Branches: branches}, SchemaSegment: "anyOf"})
	}
	if branches := compileBranchArray("oneOf"); branches != nil {
		pairs = append(pairs, rules.Pair{Rule: rules.OneOfRule{Branches: branches}, SchemaSegment: "oneOf"})
	}

	if child, ok := node.Children["not"]; ok {
		childGroup, childErrs := compileNode(child, visiting)
		appendChildErrors(errs, "not", childErrs)
		pairs = append(pairs, rules.Pair{Rule: rules.NotRule{Branch: childGroup}, SchemaSegment: "not"})
	}

	// "then"/"else" without "if" are inert (Draft-7 §6.6.1/6.6.2); only
	// compile the trio when "if" is actually present.
	if child, ok := node.Children["if"]; ok {
		cond := rules.ConditionalRule{}
		g, childErrs := compileNode(child, visiting)
		appendChildErrors(errs, "if", childErrs)
		cond.If = g
		if child, ok := node.Children["then"]; ok {
			g, childErrs := compileNode(child, visiting)
			appendChildErrors(errs, "then", childErrs)
			cond.Then = g
		}
		if child, ok := node.Children["else"]; ok {
			g, childErrs := compileNode(child, visiting)
			appendChildErrors(errs, "else", childErrs)
			cond.Else = g
		}
		pairs = append(pairs, rules.Pair{Rule: cond, SchemaSegment: "if"})
	}

	return pairs
}

func appendChildErrors(errs *[]errors.CompileError, path string, childErrs []errors.CompileError) {
	for _, e := range childErrs {
		*errs = append(*errs, errors.NewCompileError(append([]string{path}, e.SchemaPath...), "%s", e.Message))
	}
}

// nonNegativeInt reads an integer-valued keyword, tolerating an integral
// float (spec §4.3 step 5's lenient keyword-value coercion).
func nonNegativeInt(def value.Value, keyword string, errs *[]errors.CompileError) (int, bool) {
	v, ok := def.Get(keyword)
	if !ok {
		return 0, false
	}
	f, ok := v.AsFloat64()
	if !ok || f != float64(int64(f)) || f < 0 {
		*errs = append(*errs, errors.NewCompileError([]string{keyword}, "%q must be a non-negative integer", keyword))
		return 0, false
	}
	return int(f), true
}

func numericKeyword(def value.Value, keyword string, errs *[]errors.CompileError) (float64, bool) {
	v, ok := def.Get(keyword)
	if !ok {
		return 0, false
	}
	f, ok := v.AsFloat64()
	if !ok {
		*errs = append(*errs, errors.NewCompileError([]string{keyword}, "%q must be a number", keyword))
		return 0, false
	}
	return f, true
}
