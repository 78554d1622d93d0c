package evaluator

import (
	"context"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
)

// SyncInvoker lets a handler evaluate a dependency node through the sync
// fast path.
type SyncInvoker func(ctx *Context, id ast.Identity) (ThunkResult, error)

// AsyncInvoker lets a handler evaluate a dependency node through the async
// path, suspending the caller if the dependency is (or becomes) async.
type AsyncInvoker func(goCtx context.Context, ctx *Context, id ast.Identity) (ThunkResult, error)

// SyncHandler is implemented by handlers with a synchronous evaluation
// path: pure pseudo-node lookups, scope references, logic combinators over
// already-sync operands, and any hybrid handler whose computed isAsync is
// false for a given node.
type SyncHandler interface {
	EvaluateSync(ctx *Context, invoke SyncInvoker, node ast.AnyNode) (ThunkResult, error)
}

// AsyncHandler is implemented by handlers that may suspend: anything whose
// evaluation can depend on an async dependency, or that itself performs
// I/O (an EFFECT calling an external service).
type AsyncHandler interface {
	Evaluate(goCtx context.Context, ctx *Context, invoke AsyncInvoker, hooks *Hooks, node ast.AnyNode) (ThunkResult, error)
}

// AsyncClassifier is implemented by hybrid handlers (spec §4.4): handlers
// that support both EvaluateSync and Evaluate and need to publish, once at
// compile time, whether a specific node instance behaves synchronously.
// ComputeIsAsync receives the already-computed isAsync flags of the node's
// direct dependencies, in dependency order.
type AsyncClassifier interface {
	ComputeIsAsync(deps []bool) bool
}
