// Package evaluator implements the lazy, memoized dispatch core (spec
// §4.5): ThunkResult and the per-request Cache with version counters, the
// tagged ScopeStack, the per-request Context, the Handler capability
// interfaces, the runtime-overlay Hooks iterator handlers use to grow the
// program during a request, and the Evaluator itself — invoke/invokeSync/
// evaluate, in-flight deduplication, and the mid-evaluation-invalidation
// retry loop.
//
// Evaluator never imports the handlers or wiring packages: registering a
// runtime node requires instantiating a handler for its kind and re-wiring
// its dependency edges, both of which are higher-level concerns. Evaluator
// takes those as injected callbacks (RuntimeSupport), the same
// callback-capturing-context trick the teacher's runtime package uses to
// let LazyThunk and ReferenceValue live below the interpreter package that
// would otherwise own them (internal/interp/runtime/lazy_eval.go in the
// teacher).
package evaluator
