package registry

import (
	"fmt"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
)

// DuplicateError is returned by Register when an identity is already
// present — in a plain Registry that means a genuine duplicate
// registration (compile error); in an Overlay it also fires when main
// already holds the identity, since a runtime node must never shadow a
// compile-time one.
type DuplicateError struct {
	ID ast.Identity
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("registry: duplicate registration for %s", e.ID)
}

// NotCloneableError is returned by Overlay.Clone: overlays compose a
// pending layer that is request-local by construction, so cloning one
// would either silently share pending mutations across requests or
// require a deep copy nobody asked for. Clone the main registry instead
// and wrap a fresh Overlay around it.
type NotCloneableError struct {
	Kind string
}

func (e *NotCloneableError) Error() string {
	return fmt.Sprintf("registry: %s overlay is not cloneable; clone .Main() and wrap a new overlay", e.Kind)
}
