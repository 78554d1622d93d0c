package ast

// Properties is the open, per-node property bag described in spec §3: a
// mapping from property name to a primitive, a plain object
// (map[string]any), an array ([]any), or another Node/Pseudo. It is the
// statically-typed target's answer to the source's reflective property
// bags (spec §9): instead of dynamic-dispatch getters, callers use the
// typed accessors below and handlers fail closed (ok=false) on shape
// mismatches rather than panicking.
type Properties map[string]any

// Raw returns the property's value verbatim and whether it was present.
func (p Properties) Raw(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// Node returns the property as a *Node, when present and of that shape.
func (p Properties) Node(name string) (*Node, bool) {
	v, ok := p[name]
	if !ok {
		return nil, false
	}
	n, ok := v.(*Node)
	return n, ok
}

// Pseudo returns the property as a *Pseudo, when present and of that shape.
func (p Properties) Pseudo(name string) (*Pseudo, bool) {
	v, ok := p[name]
	if !ok {
		return nil, false
	}
	n, ok := v.(*Pseudo)
	return n, ok
}

// AnyNode returns the property as an AnyNode (Node or Pseudo), when present.
func (p Properties) AnyNode(name string) (AnyNode, bool) {
	v, ok := p[name]
	if !ok {
		return nil, false
	}
	n, ok := v.(AnyNode)
	return n, ok
}

// Nodes returns the property as an ordered sequence of *Node, when present
// and every element is a node. Order is preserved — callers rely on this
// for blocks/steps/children/onAccess/etc (spec §8, "order preservation").
func (p Properties) Nodes(name string) ([]*Node, bool) {
	v, ok := p[name]
	if !ok {
		return nil, false
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]*Node, 0, len(raw))
	for _, e := range raw {
		n, ok := e.(*Node)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// Array returns the property as a raw array, when present.
func (p Properties) Array(name string) ([]any, bool) {
	v, ok := p[name]
	if !ok {
		return nil, false
	}
	a, ok := v.([]any)
	return a, ok
}

// Object returns the property as a plain object, when present.
func (p Properties) Object(name string) (map[string]any, bool) {
	v, ok := p[name]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// String returns the property as a string, when present.
func (p Properties) String(name string) (string, bool) {
	v, ok := p[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the property as a bool, when present.
func (p Properties) Bool(name string) (bool, bool) {
	v, ok := p[name]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// AnyNode is implemented by both Node and Pseudo so graph/wiring code can
// treat either as an edge endpoint without a type switch at every call
// site.
type AnyNode interface {
	ID() Identity
}
