package ast

// CloneForRuntime deep-copies n, allocating a fresh identity for n and
// every descendant *Node via alloc (a RuntimeAST allocator). Embedded
// *Pseudo values are left untouched — they're shared, compile-time-
// registered lookups (DATA/ANSWER/etc.) that every clone can keep
// referencing safely.
//
// This is how ITERATE expands a per-item template/predicate into
// distinct runtime subtrees (spec §4.5, "iterator handlers use these
// hooks to expand templates into concrete runtime sub-trees for each
// element"): without fresh identities, every item's clone would share one
// cache entry and one answer-pseudo lookup, so item 1's field would
// shadow item 0's.
func CloneForRuntime(n *Node, alloc *Allocator) *Node {
	props := make(Properties, len(n.properties))
	for k, v := range n.properties {
		switch t := v.(type) {
		case *Node:
			props[k] = CloneForRuntime(t, alloc)
		case []any:
			arr := make([]any, len(t))
			for i, e := range t {
				if en, ok := e.(*Node); ok {
					arr[i] = CloneForRuntime(en, alloc)
				} else {
					arr[i] = e
				}
			}
			props[k] = arr
		default:
			props[k] = v
		}
	}
	return NewNode(alloc.Next(), n.kind, n.subKind, n.variant, props)
}
