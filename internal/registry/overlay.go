package registry

import "github.com/ministryofjustice/hmpps-form-engine/internal/ast"

// Overlay composes a request-local pending Registry in front of a shared
// main Registry. Lookups prefer pending; Register always targets pending
// and is rejected if either layer already holds the identity; FlushIntoMain
// moves pending into main and resets pending to empty. The same shape is
// used uniformly for node, metadata, and handler registries (spec §3,
// "overlay registry").
type Overlay[V any] struct {
	main    *Registry[V]
	pending *Registry[V]
}

// NewOverlay wraps main with a fresh, empty pending layer.
func NewOverlay[V any](main *Registry[V]) *Overlay[V] {
	return &Overlay[V]{main: main, pending: NewRegistry[V]()}
}

// Main exposes the wrapped main registry, e.g. to clone it before wrapping
// a fresh overlay for the next request.
func (o *Overlay[V]) Main() *Registry[V] { return o.main }

// Register adds v under id to the pending layer. Fails if id is already
// present in either layer — a runtime node must never shadow a
// compile-time one, and re-registering the same runtime node is always a
// bug in the caller.
func (o *Overlay[V]) Register(id ast.Identity, v V) error {
	if o.main.Has(id) || o.pending.Has(id) {
		return &DuplicateError{ID: id}
	}
	return o.pending.Register(id, v)
}

// Get checks pending first, then main.
func (o *Overlay[V]) Get(id ast.Identity) (V, bool) {
	if v, ok := o.pending.Get(id); ok {
		return v, true
	}
	return o.main.Get(id)
}

// Has reports whether id is present in either layer.
func (o *Overlay[V]) Has(id ast.Identity) bool {
	return o.pending.Has(id) || o.main.Has(id)
}

// GetAll merges main and pending, pending taking precedence (it never
// will, in practice, since identities never collide — but this keeps the
// merge rule explicit).
func (o *Overlay[V]) GetAll() map[ast.Identity]V {
	out := o.main.GetAll()
	for k, v := range o.pending.GetAll() {
		out[k] = v
	}
	return out
}

// GetIds returns every identity across both layers.
func (o *Overlay[V]) GetIds() []ast.Identity {
	merged := o.GetAll()
	ids := make([]ast.Identity, 0, len(merged))
	for k := range merged {
		ids = append(ids, k)
	}
	return ids
}

// Size returns the combined entry count.
func (o *Overlay[V]) Size() int {
	return o.main.Size() + o.pending.Size()
}

// FlushIntoMain moves every pending entry into main and clears pending.
// Until this is called, registering in o never affects o.Main() (spec §8,
// "overlay non-mutation").
func (o *Overlay[V]) FlushIntoMain() {
	for id, v := range o.pending.items {
		o.main.items[id] = v
	}
	o.pending = NewRegistry[V]()
}

// Clone is intentionally unimplemented: overlays are request-local and
// cloning one would either leak pending state across requests or silently
// deep-copy values nobody asked for. See NotCloneableError.
func (o *Overlay[V]) Clone() (*Overlay[V], error) {
	return nil, &NotCloneableError{Kind: "generic"}
}
