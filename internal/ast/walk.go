package ast

import "sort"

// PropertyRef identifies one place a child node is attached: the owning
// property name, and — for array elements — its index.
type PropertyRef struct {
	Property string
	Index    int // -1 when the value is not inside an array
}

// ChildEdge pairs a child AnyNode with the property (and optional index) of
// its parent that holds it.
type ChildEdge struct {
	Child AnyNode
	Ref   PropertyRef
}

// Children enumerates every AST-node-valued property of n, in a
// deterministic order (property names sorted, array elements in document
// order). A plain-object property (a composite transition's onAlways/
// onValid/onInvalid) is descended into recursively, with the child's
// property recorded as "<outer>.<inner>" (further dot-joined segments for
// deeper objects); objects inside arrays are not searched. This is the
// single place that knows how to find "every property whose value is an
// AST node, directly, as an array element, or inside a sub-object"
// (spec §3/§4.2), used by the
// metadata pass, the pseudo-node pass, and every wirer.
func Children(n *Node) []ChildEdge {
	return propertyChildren(n.properties)
}

func propertyChildren(props map[string]any) []ChildEdge {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []ChildEdge
	for _, name := range names {
		out = append(out, namedChildren(name, props[name])...)
	}
	return out
}

func namedChildren(name string, v any) []ChildEdge {
	var out []ChildEdge
	switch val := v.(type) {
	case *Node:
		out = append(out, ChildEdge{Child: val, Ref: PropertyRef{Property: name, Index: -1}})
	case *Pseudo:
		out = append(out, ChildEdge{Child: val, Ref: PropertyRef{Property: name, Index: -1}})
	case []any:
		for i, e := range val {
			switch ev := e.(type) {
			case *Node:
				out = append(out, ChildEdge{Child: ev, Ref: PropertyRef{Property: name, Index: i}})
			case *Pseudo:
				out = append(out, ChildEdge{Child: ev, Ref: PropertyRef{Property: name, Index: i}})
			}
		}
	case map[string]any:
		for _, sub := range propertyChildren(val) {
			out = append(out, ChildEdge{Child: sub.Child, Ref: PropertyRef{Property: name + "." + sub.Ref.Property, Index: sub.Ref.Index}})
		}
	}
	return out
}

// Walk visits n and every descendant Node reachable through Children,
// depth-first, pre-order. Pseudo leaves are not descended into (they have
// no properties of their own).
func Walk(n *Node, visit func(*Node)) {
	visit(n)
	for _, edge := range Children(n) {
		if child, ok := edge.Child.(*Node); ok {
			Walk(child, visit)
		}
	}
}
