package formengine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/compiler"
	"github.com/ministryofjustice/hmpps-form-engine/internal/config"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
	"github.com/ministryofjustice/hmpps-form-engine/internal/functions"
	"github.com/ministryofjustice/hmpps-form-engine/internal/lifecycle"
	"github.com/ministryofjustice/hmpps-form-engine/internal/logging"
	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
)

// StepID re-exports ast.Identity so callers never need to import the
// internal ast package just to hold a step handle.
type StepID = ast.Identity

// Program is a compiled journey: one shared artefact plus the identities of
// its journey root and every step it contains (spec §4.1's CompiledForm,
// one level up — a Program is compiled once and serves every step of every
// request for the journey's lifetime).
type Program struct {
	compiled *compiler.Program
}

// Compile parses and compiles a journey document (spec §4.1). The returned
// Program is immutable and safe for concurrent use by multiple in-flight
// requests — each request gets its own runtime overlay via Engine.Run.
func Compile(raw json.RawMessage) (*Program, error) {
	p, err := compiler.Compile(raw)
	if err != nil {
		return nil, err
	}
	return &Program{compiled: p}, nil
}

// JourneyID returns the compiled journey's root identity.
func (p *Program) JourneyID() StepID { return p.compiled.JourneyID }

// Graph exposes the compiled dependency graph, for tooling (e.g. the CLI's
// graph command) that needs to inspect DATA_FLOW edges without running a
// request.
func (p *Program) Graph() *registry.Graph { return p.compiled.Artefact.Graph }

// Nodes exposes the compiled node registry, for tooling that needs to walk
// every node's kind/identity without running a request.
func (p *Program) Nodes() *registry.NodeRegistry { return p.compiled.Artefact.Nodes }

// StepIDs returns the identities of every STEP node the journey contains,
// in the deterministic pre-order of ast.Walk over the journey tree.
func (p *Program) StepIDs() []StepID {
	out := make([]StepID, len(p.compiled.StepIDs))
	copy(out, p.compiled.StepIDs)
	return out
}

// Options configures an Engine. A zero-value Options is valid: it falls
// back to the built-in function registry, a no-op logger, and default
// runtime tunables, mirroring evaluator.WithRuntimeOverlay's own
// zero-value handling (spec §6's FormInstanceDependencies is meant to be
// filled in as much or as little as the embedder cares to).
type Options struct {
	// Functions is the external function registry FUNCTION expressions
	// dispatch into. Nil uses functions.NewWithBuiltins().
	Functions evaluator.FunctionLookup

	// Logger receives structured evaluation diagnostics (Compile does not
	// log). Nil uses logging.Noop.
	Logger logging.Logger

	// Config holds the engine's runtime tunables (retry bound, scope depth,
	// strict references, locale default). A Config whose MaxRetries is zero
	// is replaced as a whole with config.Default().
	Config config.RuntimeConfig

	// Support carries the host application's hooks for runtime node
	// expansion (iterators, dynamic transitions); see evaluator.RuntimeSupport.
	Support *evaluator.RuntimeSupport
}

func (o Options) withDefaults() Options {
	if o.Functions == nil {
		o.Functions = functions.NewWithBuiltins()
	}
	if o.Logger == nil {
		o.Logger = logging.Noop{}
	}
	if o.Config.MaxRetries == 0 {
		o.Config = config.Default()
	}
	return o
}

// Engine binds a compiled Program to one set of Options, ready to serve
// requests for any of the Program's steps. One Engine is typically built
// per process and reused across every incoming request; Run builds a fresh
// per-request Evaluator and Context each call (spec §4.5's "one Evaluator
// per request").
type Engine struct {
	program *Program
	opts    Options
}

// New binds program to opts, applying defaults for any zero-valued field.
func New(program *Program, opts Options) *Engine {
	return &Engine{program: program, opts: opts.withDefaults()}
}

// RequestInput is the framework-adapter-shaped input to Run, re-exporting
// evaluator.RequestData so callers outside internal/ don't need that import
// either.
type RequestInput = evaluator.RequestData

// Run executes the full request lifecycle (spec §4.6) for stepID: access
// checks up the ancestor chain, iterator expansion, answer pre-resolution,
// and — when isPost is true — action and submission, before building a
// render context. The returned lifecycle.Result is exactly one of a render
// context, a redirect target, or an HTTP-shaped error, ready for the
// caller's own framework adapter to translate into a response.
func (e *Engine) Run(goCtx context.Context, stepID StepID, req RequestInput, initialData map[string]any, isPost bool) (lifecycle.Result, error) {
	deps := evaluator.InstanceDependencies{
		Request:     req,
		InitialData: initialData,
		Logger:      e.opts.Logger,
		Config:      e.opts.Config,
		Functions:   e.opts.Functions,
		Support:     e.opts.Support,
	}

	ev, ctx, err := evaluator.WithRuntimeOverlay(e.program.compiled.Artefact, deps, nil)
	if err != nil {
		return lifecycle.Result{}, fmt.Errorf("formengine: building runtime overlay: %w", err)
	}

	return lifecycle.New(ev).Run(goCtx, ctx, stepID, isPost)
}
