package registry

import "github.com/ministryofjustice/hmpps-form-engine/internal/ast"

// NodeRegistry keys every AST and pseudo node by identity and adds the two
// linear-scan finders the compiler and wirers need: by structural/
// expression/predicate/transition Type, and by pseudo Kind.
type NodeRegistry struct {
	*Registry[ast.AnyNode]
}

// NewNodeRegistry creates an empty node registry.
func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{Registry: NewRegistry[ast.AnyNode]()}
}

// Clone returns a shallow copy.
func (r *NodeRegistry) Clone() *NodeRegistry {
	return &NodeRegistry{Registry: r.Registry.Clone()}
}

// FindByType returns every *ast.Node of the given Type (spec §4.3 wirers
// use this to find "all nodes of its family").
func FindByType(all map[ast.Identity]ast.AnyNode, kind ast.Type) []*ast.Node {
	var out []*ast.Node
	for _, any := range all {
		if n, ok := any.(*ast.Node); ok && n.Kind() == kind {
			out = append(out, n)
		}
	}
	return out
}

// FindByType scans the registry for every *ast.Node of the given Type.
func (r *NodeRegistry) FindByType(kind ast.Type) []*ast.Node {
	return FindByType(r.GetAll(), kind)
}

// FindByPseudoType scans the registry for every *ast.Pseudo of the given
// PseudoKind.
func (r *NodeRegistry) FindByPseudoType(kind ast.PseudoKind) []*ast.Pseudo {
	var out []*ast.Pseudo
	for _, any := range r.GetAll() {
		if p, ok := any.(*ast.Pseudo); ok && p.Kind() == kind {
			out = append(out, p)
		}
	}
	return out
}

// NodeOverlay is the overlay-registry counterpart of NodeRegistry.
type NodeOverlay struct {
	*Overlay[ast.AnyNode]
}

// NewNodeOverlay wraps a NodeRegistry's registry in a fresh overlay.
func NewNodeOverlay(main *NodeRegistry) *NodeOverlay {
	return &NodeOverlay{Overlay: NewOverlay(main.Registry)}
}

// FindByType scans both overlay layers for every *ast.Node of the given
// Type.
func (o *NodeOverlay) FindByType(kind ast.Type) []*ast.Node {
	return FindByType(o.GetAll(), kind)
}

// FindByPseudoType scans both overlay layers for every *ast.Pseudo of the
// given PseudoKind.
func (o *NodeOverlay) FindByPseudoType(kind ast.PseudoKind) []*ast.Pseudo {
	var out []*ast.Pseudo
	for _, any := range o.GetAll() {
		if p, ok := any.(*ast.Pseudo); ok && p.Kind() == kind {
			out = append(out, p)
		}
	}
	return out
}
