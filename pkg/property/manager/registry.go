package manager

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"vigil-hq/vigil/pkg/vpl/ast"
)

// Registry is a thread-safe, in-memory store for registered properties.
// Updates replace the whole set atomically, so readers always see a
// consistent snapshot of one load.
type Registry struct {
	mu         sync.RWMutex
	properties map[string]*ast.Property
	order      []string
	version    string
	loadTime   time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{properties: map[string]*ast.Property{}}
}

// ReplaceAll atomically swaps the registered set for the given one.
// Identifiers keep the order in which they are passed.
func (r *Registry) ReplaceAll(ids []string, properties []*ast.Property) {
	next := make(map[string]*ast.Property, len(properties))
	order := make([]string, 0, len(properties))
	for i, property := range properties {
		if _, dup := next[ids[i]]; !dup {
			order = append(order, ids[i])
		}
		next[ids[i]] = property
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.properties = next
	r.order = order
	r.version = fingerprint(next)
	r.loadTime = time.Now()
}

// Get retrieves a property by identifier.
func (r *Registry) Get(id string) (*ast.Property, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	property, ok := r.properties[id]
	return property, ok
}

// All returns a snapshot of the registered properties in registration
// order. The slice is the caller's to keep.
func (r *Registry) All() []*ast.Property {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ast.Property, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.properties[id])
	}
	return out
}

// Len returns the number of registered properties.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.properties)
}

// Version returns the fingerprint of the current set.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadTime returns when the current set was registered.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}

// fingerprint hashes the identifiers and rendered forms of a property
// set, independent of registration order.
func fingerprint(properties map[string]*ast.Property) string {
	ids := make([]string, 0, len(properties))
	for id := range properties {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
		h.Write([]byte(properties[id].String()))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
