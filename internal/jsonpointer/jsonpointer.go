// Package jsonpointer implements JSON-Pointer-style paths (spec §3): an
// ordered sequence of string segments rendered as "/a/b/0", with "~" and "/"
// escaped as "~0"/"~1".
package jsonpointer

import "strings"

// Path is an ordered sequence of path segments from a document's root.
type Path []string

// Append returns a new Path with segment appended. The receiver is never
// mutated, so a Path can be shared across sibling selector targets.
func (p Path) Append(segment string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = segment
	return out
}

// String renders p as a JSON Pointer.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		b.WriteString(Escape(seg))
	}
	return b.String()
}

// Segments returns a defensive copy of the raw, unescaped segments.
func (p Path) Segments() []string {
	out := make([]string, len(p))
	copy(out, p)
	return out
}

// Escape escapes "~" and "/" per RFC 6901.
func Escape(segment string) string {
	if !strings.ContainsAny(segment, "~/") {
		return segment
	}
	segment = strings.ReplaceAll(segment, "~", "~0")
	segment = strings.ReplaceAll(segment, "/", "~1")
	return segment
}

// Unescape reverses Escape.
func Unescape(segment string) string {
	if !strings.Contains(segment, "~") {
		return segment
	}
	segment = strings.ReplaceAll(segment, "~1", "/")
	segment = strings.ReplaceAll(segment, "~0", "~")
	return segment
}

// Parse splits a JSON Pointer string (with or without a leading "#") into
// its unescaped segments.
func Parse(pointer string) Path {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" {
		return nil
	}
	raw := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	segments := make(Path, len(raw))
	for i, seg := range raw {
		segments[i] = Unescape(seg)
	}
	return segments
}
