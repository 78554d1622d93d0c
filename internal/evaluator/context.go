package evaluator

import (
	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/config"
	"github.com/ministryofjustice/hmpps-form-engine/internal/logging"
	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
)

// RequestValues is a string-or-strings request parameter bag (spec §6,
// "post, query, params are mappings from string to string or
// array-of-string"). A single value is stored as a one-element slice;
// First returns the scalar form callers usually want.
type RequestValues map[string][]string

// First returns the first value for key, and whether key was present.
func (v RequestValues) First(key string) (string, bool) {
	vals, ok := v[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// RequestData is the framework-adapter-shaped input to CreateContext (spec
// §4.5).
type RequestData struct {
	Post    RequestValues
	Query   RequestValues
	Params  RequestValues
	Session map[string]any
	State   map[string]any
}

// AnswerState is one field's resolved-answer slot: the current value plus
// the ordered list of raw mutations applied to it via the EFFECT
// setAnswer hook, oldest first. Mutations is kept for diagnostics; Current
// is always the authoritative value handlers read.
type AnswerState struct {
	Current   any
	Mutations []any
}

// GlobalState is the context's mutable per-request data: the answer
// namespace and the data namespace, both shallow-merged and overwritten as
// the lifecycle controller runs (spec §4.6) and as EFFECT functions call
// their hooks.
type GlobalState struct {
	Answers map[string]*AnswerState
	Data    map[string]any
}

// FunctionLookup is the minimal shape the evaluator needs from the
// external function registry (spec §6) to dispatch FUNCTION expressions.
// The concrete registry lives in package functions; this interface exists
// purely to avoid evaluator importing it.
type FunctionLookup interface {
	Lookup(name string) (Function, bool)
}

// Function is one named CONDITION/TRANSFORMER/EFFECT entry.
type Function struct {
	Name string
	Type string // ast.Condition | ast.Transformer | ast.Effect
	Call func(fc *FunctionContext, args []any) (any, error)
}

// FunctionContext is what an EFFECT function receives alongside its
// evaluated arguments (spec §4.4): hooks to mutate global state (which
// invalidate dependent caches), read-only access to the request, a logger,
// and a slot for external service handles the caller wired in.
type FunctionContext struct {
	Ctx      *Context
	Services map[string]any
}

// SetAnswer records a new current value for fieldCode and invalidates the
// corresponding ANSWER_LOCAL pseudo node so dependents recompute.
func (fc *FunctionContext) SetAnswer(fieldCode string, value any) {
	state, ok := fc.Ctx.Global.Answers[fieldCode]
	if !ok {
		state = &AnswerState{}
		fc.Ctx.Global.Answers[fieldCode] = state
	}
	state.Current = value
	state.Mutations = append(state.Mutations, value)
	if id, ok := fc.Ctx.answerPseudoIDs[fieldCode]; ok {
		fc.Ctx.Cache.Delete(id)
	}
}

// SetData sets the data namespace's top-level key to value, replacing any
// previous value there, and invalidates the corresponding DATA pseudo node.
func (fc *FunctionContext) SetData(key string, value any) {
	fc.Ctx.Global.Data[key] = value
	if id, ok := fc.Ctx.dataPseudoIDs[key]; ok {
		fc.Ctx.Cache.Delete(id)
	}
}

// GetPost, GetQuery, GetParams expose read-only request access to effects.
func (fc *FunctionContext) GetPost(key string) (string, bool)   { return fc.Ctx.Request.Post.First(key) }
func (fc *FunctionContext) GetQuery(key string) (string, bool)  { return fc.Ctx.Request.Query.First(key) }
func (fc *FunctionContext) GetParams(key string) (string, bool) { return fc.Ctx.Request.Params.First(key) }

// Context is the per-request evaluation context (spec §4.5): request
// values, mutable global state, the scope stack, the overlay registries,
// the cache, and the collaborators (logger, config, function lookup).
type Context struct {
	Request RequestData
	Global  *GlobalState
	Scope   *ScopeStack

	Nodes    *registry.NodeOverlay
	Metadata *registry.MetadataOverlay
	Handlers *registry.Overlay[any]
	Graph    *registry.GraphOverlay

	Cache *Cache

	Logger    logging.Logger
	Config    config.RuntimeConfig
	Functions FunctionLookup

	// answerPseudoIDs/dataPseudoIDs let SetAnswer/SetData find the pseudo
	// node to invalidate without a registry scan on every effect call.
	answerPseudoIDs map[string]ast.Identity
	dataPseudoIDs   map[string]ast.Identity
}

// IndexPseudoIDs records the identity lookup tables SetAnswer/SetData use.
// Called once per context by the evaluator after it has scanned the
// compiled pseudo nodes.
func (c *Context) IndexPseudoIDs(answers, data map[string]ast.Identity) {
	c.answerPseudoIDs = answers
	c.dataPseudoIDs = data
}

// WithIsolatedScope returns a shallow copy of c with an independently
// derived scope stack, so concurrent invoke calls sharing this context
// never observe each other's frame pushes/pops (spec §4.5, step 2).
func (c *Context) WithIsolatedScope() *Context {
	cp := *c
	cp.Scope = c.Scope.Derive()
	return &cp
}
