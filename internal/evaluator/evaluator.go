package evaluator

import (
	"context"
	"fmt"
	"sync"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/config"
	"github.com/ministryofjustice/hmpps-form-engine/internal/logging"
	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
)

// InstanceDependencies is everything WithRuntimeOverlay needs beyond the
// compiled Artefact: the request's raw values, seed data, and the engine's
// external collaborators (spec §6, "FormInstanceDependencies").
type InstanceDependencies struct {
	Request     RequestData
	InitialData map[string]any
	Logger      logging.Logger
	Config      config.RuntimeConfig
	Functions   FunctionLookup
	Support     *RuntimeSupport
}

// Evaluator is the per-request lazy, memoized dispatcher (spec §4.5). One
// Evaluator is created per request by WithRuntimeOverlay and discarded at
// request end along with its Context's overlays, cache, and scope.
type Evaluator struct {
	maxRetries int
	hooks      *Hooks

	mu       sync.Mutex
	inflight map[ast.Identity]*inflightCall
}

type inflightCall struct {
	done   chan struct{}
	result ThunkResult
}

// WithRuntimeOverlay wraps artefact's main registries in fresh overlays,
// builds a Context and Evaluator for one request, and — if configurator is
// non-nil — invokes it to pre-register runtime nodes before the pseudo-node
// index is built. This is the engine's static factory from spec §4.5.
func WithRuntimeOverlay(artefact *Artefact, deps InstanceDependencies, configurator func(*Evaluator, *Context) error) (*Evaluator, *Context, error) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Noop{}
	}
	cfg := deps.Config
	if cfg.MaxRetries == 0 {
		cfg = config.Default()
	}

	data := make(map[string]any, len(deps.InitialData))
	for k, v := range deps.InitialData {
		data[k] = v
	}

	ctx := &Context{
		Request:  deps.Request,
		Global:   &GlobalState{Answers: make(map[string]*AnswerState), Data: data},
		Scope:    NewScopeStack(),
		Nodes:    registry.NewNodeOverlay(artefact.Nodes),
		Metadata: registry.NewMetadataOverlay(artefact.Metadata),
		Handlers: registry.NewOverlay(artefact.Handlers),
		Graph:    registry.NewGraphOverlay(artefact.Graph),
		Cache:    NewCache(),
		Logger:   logger,
		Config:   cfg,
		Functions: deps.Functions,
	}

	e := &Evaluator{
		maxRetries: cfg.MaxRetries,
		hooks:      NewHooks(deps.Support),
		inflight:   make(map[ast.Identity]*inflightCall),
	}

	if configurator != nil {
		if err := configurator(e, ctx); err != nil {
			return nil, nil, err
		}
	}

	indexPseudoIDs(ctx)

	return e, ctx, nil
}

func indexPseudoIDs(ctx *Context) {
	answers := map[string]ast.Identity{}
	data := map[string]ast.Identity{}
	for _, any := range ctx.Nodes.GetAll() {
		p, ok := any.(*ast.Pseudo)
		if !ok {
			continue
		}
		switch p.Kind() {
		case ast.AnswerLocal, ast.AnswerRemote:
			answers[p.Key()] = p.ID()
		case ast.Data:
			data[p.Key()] = p.ID()
		}
	}
	ctx.IndexPseudoIDs(answers, data)
}

// Hooks returns the Hooks instance bound to this evaluator's runtime
// identity allocators, for handlers that need to expand runtime subtrees.
func (e *Evaluator) Hooks() *Hooks { return e.hooks }

// CreateContext is the standalone form of context construction (spec
// §4.5), used when a caller already has an Evaluator (e.g. re-entering the
// lifecycle controller's later stages with the same evaluator but fresh
// request data is NOT supported — a new request always gets a new
// Evaluator via WithRuntimeOverlay; CreateContext exists for tests that
// want a bare Context without a compiled Artefact).
func CreateContext(request RequestData, initialData map[string]any, logger logging.Logger, cfg config.RuntimeConfig) *Context {
	if logger == nil {
		logger = logging.Noop{}
	}
	data := make(map[string]any, len(initialData))
	for k, v := range initialData {
		data[k] = v
	}
	return &Context{
		Request: request,
		Global:  &GlobalState{Answers: make(map[string]*AnswerState), Data: data},
		Scope:   NewScopeStack(),
		Cache:   NewCache(),
		Logger:  logger,
		Config:  cfg,
	}
}

// Invoke is the async invocation algorithm (spec §4.5): cache check,
// isolated scope derivation, handler lookup, sync fast path, or in-flight
// deduplication plus the version-counter retry loop for an async handler.
func (e *Evaluator) Invoke(goCtx context.Context, ctx *Context, id ast.Identity) (ThunkResult, error) {
	if r, ok := ctx.Cache.Get(id); ok {
		return r.WithMetadata("cached", true), nil
	}

	callCtx := ctx.WithIsolatedScope()

	handler, ok := ctx.Handlers.Get(id)
	if !ok {
		res := Error(NewThunkError(HandlerRegistryKind, fmt.Sprintf("no handler registered for %s", id), nil), nil)
		ctx.Cache.Set(id, res)
		return res, nil
	}

	node, _ := ctx.Nodes.Get(id)

	if !e.isAsyncNode(ctx, id, handler) {
		sh, ok := handler.(SyncHandler)
		if !ok {
			res := Error(NewThunkError(TypeMismatchKind, fmt.Sprintf("node %s is classified sync but its handler has no EvaluateSync", id), nil), nil)
			ctx.Cache.Set(id, res)
			return res, nil
		}
		res, _ := e.runSync(callCtx, sh, node, id)
		ctx.Cache.Set(id, res)
		return res, nil
	}

	ah, ok := handler.(AsyncHandler)
	if !ok {
		res := Error(NewThunkError(TypeMismatchKind, fmt.Sprintf("node %s is classified async but its handler has no Evaluate", id), nil), nil)
		ctx.Cache.Set(id, res)
		return res, nil
	}

	return e.invokeAsync(goCtx, ctx, callCtx, ah, node, id)
}

// isAsyncNode reports whether id should be dispatched through the async
// path: the compiler's reverse-topological pass (spec §4.1 step 6) records
// this per node in metadata for hybrid handlers; a node with no recorded
// flag falls back to the handler's capability (sync-only or async-only
// handlers don't need a published flag).
func (e *Evaluator) isAsyncNode(ctx *Context, id ast.Identity, handler any) bool {
	if attrs, ok := ctx.Metadata.Get(id); ok {
		if v, ok := attrs[registry.IsAsync]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	_, hasAsync := handler.(AsyncHandler)
	_, hasSync := handler.(SyncHandler)
	if hasSync && !hasAsync {
		return false
	}
	return hasAsync
}

func (e *Evaluator) runSync(ctx *Context, sh SyncHandler, node ast.AnyNode, id ast.Identity) (ThunkResult, error) {
	res, err := sh.EvaluateSync(ctx, e.InvokeSync, node)
	if err != nil {
		res = Error(NewThunkError(EvaluationFailedKind, fmt.Sprintf("handler for %s", id), err), nil)
	}
	return res, nil
}

func (e *Evaluator) invokeAsync(goCtx context.Context, ctx, callCtx *Context, ah AsyncHandler, node ast.AnyNode, id ast.Identity) (ThunkResult, error) {
	e.mu.Lock()
	if call, inFlight := e.inflight[id]; inFlight {
		e.mu.Unlock()
		<-call.done
		return call.result, nil
	}
	call := &inflightCall{done: make(chan struct{})}
	e.inflight[id] = call
	e.mu.Unlock()

	result := e.retryLoop(goCtx, ctx, callCtx, ah, node, id)

	ctx.Cache.Set(id, result)

	e.mu.Lock()
	delete(e.inflight, id)
	e.mu.Unlock()
	call.result = result
	close(call.done)

	return result, nil
}

// retryLoop runs the async handler, capturing id's cache version before
// each attempt and comparing after: a change means something invalidated
// id mid-evaluation (typically an iterator registering runtime nodes an
// ancestor depends on) and the attempt must be redone, up to maxRetries
// times (spec §4.5 step 6, §5, §8 "retry bound").
func (e *Evaluator) retryLoop(goCtx context.Context, ctx, callCtx *Context, ah AsyncHandler, node ast.AnyNode, id ast.Identity) ThunkResult {
	maxRetries := e.maxRetries
	if maxRetries <= 0 {
		maxRetries = 10
	}

	var last ThunkResult
	for attempt := 1; attempt <= maxRetries; attempt++ {
		before := ctx.Cache.Version(id)
		res, err := ah.Evaluate(goCtx, callCtx, e.Invoke, e.hooks, node)
		if err != nil {
			res = Error(NewThunkError(EvaluationFailedKind, fmt.Sprintf("handler for %s", id), err), nil)
		}
		after := ctx.Cache.Version(id)
		if after == before {
			return res
		}
		last = res
		ctx.Logger.Debugw("evaluator: mid-evaluation invalidation, retrying", "node", string(id), "attempt", attempt)
	}
	return Error(NewThunkErrorWithSub(EvaluationFailedKind, MaxRetriesExceeded,
		fmt.Sprintf("node %s did not stabilize within %d attempts", id, maxRetries), nil), last.Metadata)
}

// InvokeSync is the sync fast path (spec §4.5): no in-flight tracking, no
// retry, and it fails — with a TYPE_MISMATCH ThunkResult rather than a Go
// panic, since the source's "throws" is a boundary-crossing mechanism we
// translate into an explicit result (spec §9) — when the handler has no
// synchronous evaluation path.
func (e *Evaluator) InvokeSync(ctx *Context, id ast.Identity) (ThunkResult, error) {
	if r, ok := ctx.Cache.Get(id); ok {
		return r.WithMetadata("cached", true), nil
	}

	callCtx := ctx.WithIsolatedScope()

	handler, ok := ctx.Handlers.Get(id)
	if !ok {
		res := Error(NewThunkError(HandlerRegistryKind, fmt.Sprintf("no handler registered for %s", id), nil), nil)
		ctx.Cache.Set(id, res)
		return res, nil
	}

	sh, ok := handler.(SyncHandler)
	if !ok {
		res := Error(NewThunkError(TypeMismatchKind, fmt.Sprintf("node %s has no synchronous evaluation path", id), nil), nil)
		ctx.Cache.Set(id, res)
		return res, nil
	}

	node, _ := ctx.Nodes.Get(id)
	res, _ := e.runSync(callCtx, sh, node, id)
	ctx.Cache.Set(id, res)
	return res, nil
}

// Evaluate locates the program's single JOURNEY node and invokes it (spec
// §4.5).
func (e *Evaluator) Evaluate(goCtx context.Context, ctx *Context) (ThunkResult, error) {
	journeys := ctx.Nodes.FindByType(ast.Journey)
	if len(journeys) != 1 {
		return ThunkResult{}, fmt.Errorf("evaluate: expected exactly one JOURNEY node, found %d", len(journeys))
	}
	return e.Invoke(goCtx, ctx, journeys[0].ID())
}
