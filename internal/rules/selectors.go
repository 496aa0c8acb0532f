package rules

import (
	"regexp"
	"strconv"

	"github.com/jacoelho/jsonschema/internal/value"
)

// ValueSelector is the identity selector: one target, the whole value
// unchanged (spec §3 "Value" variant).
type ValueSelector struct{}

// Select returns v unchanged, with no path segment.
func (ValueSelector) Select(v value.Value) []Target {
	return []Target{{Value: v}}
}

// PropertySelector yields the named object member. A missing key yields
// no target, so a Rule paired with PropertySelector trivially passes for
// absent properties (spec §4.4's "inapplicable type" rule extended to
// "absent property").
type PropertySelector struct {
	Name string
}

// Select implements Selector.
func (s PropertySelector) Select(v value.Value) []Target {
	if v.Kind() != value.KindObject {
		return nil
	}
	child, ok := v.Get(s.Name)
	if !ok {
		return nil
	}
	return []Target{{Value: child, Segment: s.Name}}
}

// ArrayItemSelector yields the element at a fixed tuple position.
type ArrayItemSelector struct {
	Index int
}

// Select implements Selector.
func (s ArrayItemSelector) Select(v value.Value) []Target {
	if v.Kind() != value.KindArray {
		return nil
	}
	n := value.ArrayLen(v)
	if s.Index < 0 || s.Index >= n {
		return nil
	}
	return []Target{{Value: value.ArrayGet(v, s.Index), Segment: strconv.Itoa(s.Index)}}
}

// ArrayItemsSelector yields every array element, used for a single "items" schema.
type ArrayItemsSelector struct{}

// Select implements Selector.
func (ArrayItemsSelector) Select(v value.Value) []Target {
	arr, ok := v.AsArray()
	if !ok {
		return nil
	}
	targets := make([]Target, len(arr))
	for i, e := range arr {
		targets[i] = Target{Value: e, Segment: strconv.Itoa(i)}
	}
	return targets
}

// AdditionalItemsSelector yields elements at indices >= From, used for
// "additionalItems" trailing a tuple "items" schema.
type AdditionalItemsSelector struct {
	From int
}

// Select implements Selector.
func (s AdditionalItemsSelector) Select(v value.Value) []Target {
	arr, ok := v.AsArray()
	if !ok {
		return nil
	}
	var targets []Target
	for i := s.From; i < len(arr); i++ {
		targets = append(targets, Target{Value: arr[i], Segment: strconv.Itoa(i)})
	}
	return targets
}

// ObjectKeysSelector yields one target per object key, the key's own
// string as the value ("propertyNames"), per spec §4.6.
type ObjectKeysSelector struct{}

// Select implements Selector.
func (ObjectKeysSelector) Select(v value.Value) []Target {
	if v.Kind() != value.KindObject {
		return nil
	}
	keys := v.Keys()
	targets := make([]Target, len(keys))
	for i, k := range keys {
		targets[i] = Target{Value: value.String(k), Segment: "propertyName:" + k}
	}
	return targets
}

// PatternPropertiesSelector yields (value, key) for every key matching Regexp.
type PatternPropertiesSelector struct {
	Regexp *regexp.Regexp
}

// Select implements Selector.
func (s PatternPropertiesSelector) Select(v value.Value) []Target {
	if v.Kind() != value.KindObject || s.Regexp == nil {
		return nil
	}
	var targets []Target
	for _, k := range v.Keys() {
		if s.Regexp.MatchString(k) {
			child, _ := v.Get(k)
			targets = append(targets, Target{Value: child, Segment: k})
		}
	}
	return targets
}

// AdditionalPropertiesSelector yields properties whose key is neither in
// Known nor matches any entry of Patterns (spec §4.6).
type AdditionalPropertiesSelector struct {
	Known    map[string]bool
	Patterns []*regexp.Regexp
}

// Select implements Selector.
func (s AdditionalPropertiesSelector) Select(v value.Value) []Target {
	if v.Kind() != value.KindObject {
		return nil
	}
	var targets []Target
	for _, k := range v.Keys() {
		if s.Known[k] {
			continue
		}
		if s.matchesPattern(k) {
			continue
		}
		child, _ := v.Get(k)
		targets = append(targets, Target{Value: child, Segment: k})
	}
	return targets
}

func (s AdditionalPropertiesSelector) matchesPattern(key string) bool {
	for _, re := range s.Patterns {
		if re != nil && re.MatchString(key) {
			return true
		}
	}
	return false
}
