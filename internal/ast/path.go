package ast

// Namespace tags the first element of a reference path (spec §3). A
// REFERENCE node carries its namespace and path as plain properties
// ("namespace" a string, "path" an array); handlers read them directly
// through Properties rather than through a parsed Path type, so this file
// holds only the namespace vocabulary both the compiler's pseudo-node
// pass and the REFERENCE handler switch on.
type Namespace string

const (
	NamespacePost    Namespace = "post"
	NamespaceQuery   Namespace = "query"
	NamespaceParams  Namespace = "params"
	NamespaceData    Namespace = "data"
	NamespaceAnswers Namespace = "answers"
	NamespaceScope   Namespace = "@scope"
	NamespaceSelf    Namespace = "@self"

	// NamespaceValue resolves the Value carried by the nearest pipeline or
	// predicate scope frame (spec §4.4: a Pipeline transformer's argument
	// list "may contain references to @value"; Test's condition references
	// its subject the same way). Not named in spec §3's namespace list
	// because the source expresses it as an implicit scope lookup rather
	// than a reference namespace; made explicit here since a statically
	// dispatched reference handler needs a concrete tag to switch on.
	NamespaceValue Namespace = "@value"
)

// HasPseudo reports whether n is one of the namespaces that resolve through a compile-time
// pseudo node rather than directly through scope/metadata (spec §4.1 step
// 4: "scan REFERENCE nodes... create a pseudo node" — only these five).
func (n Namespace) HasPseudo() bool {
	switch n {
	case NamespacePost, NamespaceQuery, NamespaceParams, NamespaceData, NamespaceAnswers:
		return true
	default:
		return false
	}
}
