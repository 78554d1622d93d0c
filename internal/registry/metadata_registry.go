package registry

import "github.com/ministryofjustice/hmpps-form-engine/internal/ast"

// Attr names the canonical metadata attributes tracked per node (spec §3).
type Attr string

const (
	AttachedToParentNode     Attr = "attachedToParentNode"
	AttachedToParentProperty Attr = "attachedToParentProperty"
	IsDescendantOfStep       Attr = "isDescendantOfStep"
	IsAncestorOfStep         Attr = "isAncestorOfStep"
	IsCurrentStep            Attr = "isCurrentStep"
	IsAsync                  Attr = "isAsync"
)

// Attrs is the per-node bag of metadata attributes.
type Attrs map[Attr]any

// MetadataRegistry keys an Attrs bag by node identity and adds
// FindNodesWhere, a linear scan for "every node whose attribute attr equals
// value" (used by step-descendant queries and the isAsync reverse pass).
type MetadataRegistry struct {
	*Registry[Attrs]
}

// NewMetadataRegistry creates an empty metadata registry.
func NewMetadataRegistry() *MetadataRegistry {
	return &MetadataRegistry{Registry: NewRegistry[Attrs]()}
}

// Clone returns a shallow copy.
func (r *MetadataRegistry) Clone() *MetadataRegistry {
	return &MetadataRegistry{Registry: r.Registry.Clone()}
}

// Set merges a single attribute into id's bag, registering a fresh bag if
// none exists yet. Unlike Register, Set is idempotent by design: metadata
// is refined across several compiler passes (parent chain, then
// step-descendant flags, then isAsync), each touching a different subset
// of attributes on the same node.
func (r *MetadataRegistry) Set(id ast.Identity, attr Attr, value any) {
	bag, ok := r.Get(id)
	if !ok {
		bag = Attrs{}
		r.Registry.items[id] = bag
	}
	bag[attr] = value
}

func findNodesWhere(all map[ast.Identity]Attrs, attr Attr, value any) []ast.Identity {
	var out []ast.Identity
	for id, bag := range all {
		if v, ok := bag[attr]; ok && v == value {
			out = append(out, id)
		}
	}
	return out
}

// FindNodesWhere returns every identity whose bag has attr == value.
func (r *MetadataRegistry) FindNodesWhere(attr Attr, value any) []ast.Identity {
	return findNodesWhere(r.GetAll(), attr, value)
}

// MetadataOverlay is the overlay-registry counterpart of MetadataRegistry.
type MetadataOverlay struct {
	*Overlay[Attrs]
}

// NewMetadataOverlay wraps a MetadataRegistry's registry in a fresh
// overlay.
func NewMetadataOverlay(main *MetadataRegistry) *MetadataOverlay {
	return &MetadataOverlay{Overlay: NewOverlay(main.Registry)}
}

// Set merges a single attribute into id's pending bag (creating one, and a
// copy of the main bag if present, the first time id is touched under this
// overlay — so the flush-in-progress main bag is never mutated directly).
func (o *MetadataOverlay) Set(id ast.Identity, attr Attr, value any) {
	bag, ok := o.pending.Get(id)
	if !ok {
		bag = Attrs{}
		if existing, ok := o.main.Get(id); ok {
			for k, v := range existing {
				bag[k] = v
			}
		}
		o.pending.items[id] = bag
	}
	bag[attr] = value
}

// FindNodesWhere scans both overlay layers.
func (o *MetadataOverlay) FindNodesWhere(attr Attr, value any) []ast.Identity {
	return findNodesWhere(o.GetAll(), attr, value)
}
