package registry

import "github.com/ministryofjustice/hmpps-form-engine/internal/ast"

// EdgeKind tags the purpose of a dependency edge. DATA_FLOW is the only
// kind spec §3 defines; it is still named (rather than left implicit) so a
// future edge kind (e.g. control-flow ordering) has somewhere to attach
// without changing Edge's shape.
type EdgeKind string

// DataFlow is the only edge kind the engine currently emits: "value flows
// from producer to the consumer's property".
const DataFlow EdgeKind = "DATA_FLOW"

// Edge is one directed dependency: value flows From -> To, attached at the
// consumer's Property (and Index, for array-valued properties; -1
// otherwise).
type Edge struct {
	From     ast.Identity
	To       ast.Identity
	Kind     EdgeKind
	Property string
	Index    int
}

type edgeKey struct {
	from, to, property string
	index              int
}

func (e Edge) key() edgeKey {
	return edgeKey{from: string(e.From), to: string(e.To), property: e.Property, index: e.Index}
}

// Graph is a directed multi-edge graph over node identities. It is
// read-only during evaluation; only compilation (and, per request, overlay
// wiring) appends edges.
type Graph struct {
	edges map[edgeKey]Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{edges: make(map[edgeKey]Edge)}
}

// AddEdge records that to depends on from through property (and, for an
// array element, index — pass -1 when not applicable). Adding the same
// edge twice is a no-op (spec §4.3, "edge emission is idempotent in
// effect").
func (g *Graph) AddEdge(from, to ast.Identity, property string, index int) {
	e := Edge{From: from, To: to, Kind: DataFlow, Property: property, Index: index}
	g.edges[e.key()] = e
}

// EdgesTo returns every edge whose To matches id: id's dependencies.
func (g *Graph) EdgesTo(id ast.Identity) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesFrom returns every edge whose From matches id: id's dependents.
func (g *Graph) EdgesFrom(id ast.Identity) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// All returns every edge in the graph.
func (g *Graph) All() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	return out
}

// Clone returns a shallow copy.
func (g *Graph) Clone() *Graph {
	out := NewGraph()
	for k, v := range g.edges {
		out.edges[k] = v
	}
	return out
}

// GraphOverlay composes a pending Graph in front of a shared main Graph.
// AddEdge always appends to pending (never modifying main), matching the
// "overlay wiring only appends edges" rule from spec §5.
type GraphOverlay struct {
	main    *Graph
	pending *Graph
}

// NewGraphOverlay wraps main with a fresh, empty pending layer.
func NewGraphOverlay(main *Graph) *GraphOverlay {
	return &GraphOverlay{main: main, pending: NewGraph()}
}

// Main exposes the wrapped main graph.
func (o *GraphOverlay) Main() *Graph { return o.main }

// AddEdge appends to the pending layer.
func (o *GraphOverlay) AddEdge(from, to ast.Identity, property string, index int) {
	o.pending.AddEdge(from, to, property, index)
}

// EdgesTo merges both layers.
func (o *GraphOverlay) EdgesTo(id ast.Identity) []Edge {
	return append(o.main.EdgesTo(id), o.pending.EdgesTo(id)...)
}

// EdgesFrom merges both layers.
func (o *GraphOverlay) EdgesFrom(id ast.Identity) []Edge {
	return append(o.main.EdgesFrom(id), o.pending.EdgesFrom(id)...)
}

// All merges both layers.
func (o *GraphOverlay) All() []Edge {
	return append(o.main.All(), o.pending.All()...)
}

// FlushIntoMain moves every pending edge into main and clears pending.
func (o *GraphOverlay) FlushIntoMain() {
	for k, e := range o.pending.edges {
		o.main.edges[k] = e
	}
	o.pending = NewGraph()
}
