// Package wiring implements the compiler's dependency-graph pass (spec
// §4.3): one wirer per node family, each walking its nodes' properties and
// emitting a graph edge for every property value that is itself an AST
// node — directly, as an array element, or nested inside a plain
// sub-object (the composite-transition case: onAlways.effects,
// onValid.next, onInvalid.effects).
package wiring

import (
	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
)

// Graph is the minimal surface Wirer needs from a dependency graph —
// satisfied by both *registry.Graph (compile time) and
// *registry.GraphOverlay (per-request scoped re-wiring).
type Graph interface {
	AddEdge(from, to ast.Identity, property string, index int)
}

// Nodes is the minimal node-lookup surface Wirer needs — satisfied by
// both *registry.NodeRegistry and *registry.NodeOverlay.
type Nodes interface {
	Get(id ast.Identity) (ast.AnyNode, bool)
	GetAll() map[ast.Identity]ast.AnyNode
	FindByType(kind ast.Type) []*ast.Node
}

// Metadata is the minimal attribute-lookup surface Wirer needs —
// satisfied by both *registry.MetadataRegistry and
// *registry.MetadataOverlay. Wiring runs after the compiler's
// parent/property and step-descendant passes (spec §4.1 steps 2-3), so it
// reads ancestry from there instead of re-deriving it.
type Metadata interface {
	Get(id ast.Identity) (registry.Attrs, bool)
}

// Wirer runs the wiring pass over a node registry and graph pair. A fresh
// Wirer is cheap; it holds no state beyond its collaborators.
type Wirer struct {
	nodes Nodes
	meta  Metadata
	graph Graph
}

// New creates a Wirer over nodes, metadata, and graph.
func New(nodes Nodes, meta Metadata, graph Graph) *Wirer {
	return &Wirer{nodes: nodes, meta: meta, graph: graph}
}

// WireAll wires every family across the whole registry — the compile-time
// pass (spec §4.1 step 7).
func (w *Wirer) WireAll() {
	for _, kind := range []ast.Type{ast.Journey, ast.Step, ast.Block, ast.Expression, ast.Predicate, ast.Transition} {
		for _, n := range w.nodes.FindByType(kind) {
			w.wireNode(n)
		}
	}
	w.wireSubmitValidations()
}

// WireNodes re-wires exactly the given identities — scoped re-wiring for
// runtime nodes added during evaluation (spec §4.3, "exposes wireNodes(ids)
// for scoped re-wiring"), e.g. a per-item ITERATE clone.
func (w *Wirer) WireNodes(ids []ast.Identity) {
	for _, id := range ids {
		any, ok := w.nodes.Get(id)
		if !ok {
			continue
		}
		n, ok := any.(*ast.Node)
		if !ok {
			continue
		}
		w.wireNode(n)
	}
}

// wireNode emits value -> n edges for every AST-node-valued property of n.
// ast.Children already knows how to find every such value (direct,
// array-element, or nested in a sub-object) — the same
// traversal the compiler's registration pass uses — so wiring only needs
// to turn each edge it reports into a graph edge.
func (w *Wirer) wireNode(n *ast.Node) {
	for _, edge := range ast.Children(n) {
		w.graph.AddEdge(edge.Child.ID(), n.ID(), edge.Ref.Property, edge.Ref.Index)
	}
}

// wireSubmitValidations implements the SUBMIT validate=true rule (spec
// §4.3): every VALIDATION expression that is a descendant of the
// transition's parent STEP depends-before the transition itself, labeled
// property=validations, regardless of whether VALIDATION is reachable
// through an ordinary property edge.
func (w *Wirer) wireSubmitValidations() {
	validations := w.nodes.FindByType(ast.Expression)
	for _, submit := range w.nodes.FindByType(ast.Transition) {
		if submit.SubKind() != ast.Submit {
			continue
		}
		validate, _ := submit.Properties().Bool("validate")
		if !validate {
			continue
		}
		step, ok := w.enclosingStep(submit.ID())
		if !ok {
			continue
		}
		for _, v := range validations {
			if v.SubKind() != ast.Validation {
				continue
			}
			if !w.isDescendantOfNode(v.ID(), step) {
				continue
			}
			w.graph.AddEdge(v.ID(), submit.ID(), "validations", -1)
		}
	}
}

// enclosingStep walks id's attachedToParentNode chain (set by the
// compiler's step 2 pass) up to the nearest STEP ancestor.
func (w *Wirer) enclosingStep(id ast.Identity) (ast.Identity, bool) {
	parent, ok := w.parentOf(id)
	for ok {
		if n, isNode := w.asNode(parent); isNode && n.Kind() == ast.Step {
			return parent, true
		}
		parent, ok = w.parentOf(parent)
	}
	return "", false
}

// isDescendantOfNode reports whether ancestor appears anywhere in id's
// attachedToParentNode chain.
func (w *Wirer) isDescendantOfNode(id, ancestor ast.Identity) bool {
	parent, ok := w.parentOf(id)
	for ok {
		if parent == ancestor {
			return true
		}
		parent, ok = w.parentOf(parent)
	}
	return false
}

func (w *Wirer) parentOf(id ast.Identity) (ast.Identity, bool) {
	bag, ok := w.meta.Get(id)
	if !ok {
		return "", false
	}
	v, ok := bag[registry.AttachedToParentNode]
	if !ok {
		return "", false
	}
	parent, ok := v.(ast.Identity)
	return parent, ok
}

func (w *Wirer) asNode(id ast.Identity) (*ast.Node, bool) {
	any, ok := w.nodes.Get(id)
	if !ok {
		return nil, false
	}
	n, ok := any.(*ast.Node)
	return n, ok
}

var _ Graph = (*registry.Graph)(nil)
var _ Graph = (*registry.GraphOverlay)(nil)
var _ Nodes = (*registry.NodeRegistry)(nil)
var _ Nodes = (*registry.NodeOverlay)(nil)
var _ Metadata = (*registry.MetadataRegistry)(nil)
var _ Metadata = (*registry.MetadataOverlay)(nil)
