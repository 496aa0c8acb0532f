// Package registry implements the process-wide "$id" → schema root mapping
// (spec §4, §5), a single concurrent map guarded by one mutex, grounded on
// the teacher's concurrent schema-set registry (schemaset_types.go).
package registry

import (
	"sync"

	"github.com/jacoelho/jsonschema/internal/schematree"
)

// Registry is a concurrent id → root node map. The zero value is usable.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*schematree.Node
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: map[string]*schematree.Node{}}
}

// Register inserts root under id, overwriting any existing entry.
func (r *Registry) Register(id string, root *schematree.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = map[string]*schematree.Node{}
	}
	r.entries[id] = root
}

// Unregister removes id, reporting whether it was present.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// Lookup returns the root registered under id.
func (r *Registry) Lookup(id string) (*schematree.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.entries[id]
	return n, ok
}

// IsRegistered reports whether id has an entry.
func (r *Registry) IsRegistered(id string) bool {
	_, ok := r.Lookup(id)
	return ok
}
