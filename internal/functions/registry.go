package functions

import (
	"fmt"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// Registry is a name-keyed table of CONDITION/TRANSFORMER/EFFECT entries,
// satisfying evaluator.FunctionLookup. It is built once at startup (spec
// §6: "caller registers built-ins plus journey-specific functions before
// compiling") and never mutated per request.
type Registry struct {
	entries map[string]evaluator.Function
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]evaluator.Function)}
}

// NewWithBuiltins creates a registry pre-loaded with every built-in this
// package ships (spec §4.9).
func NewWithBuiltins() *Registry {
	r := New()
	registerTextBuiltins(r)
	registerCasingBuiltins(r)
	registerJSONBuiltins(r)
	registerEffectBuiltins(r)
	registerSortBuiltins(r)
	return r
}

// Register adds fn under its own Name, overwriting any existing entry of
// that name — journey-specific registrations are expected to shadow
// built-ins with the same name.
func (r *Registry) Register(fn evaluator.Function) {
	r.entries[fn.Name] = fn
}

// registerCondition, registerTransformer, and registerEffect are
// convenience constructors built-in files use so each one reads as a
// one-line declaration rather than a literal struct.
func (r *Registry) registerCondition(name string, call func(fc *evaluator.FunctionContext, args []any) (any, error)) {
	r.Register(evaluator.Function{Name: name, Type: ast.Condition, Call: call})
}

func (r *Registry) registerTransformer(name string, call func(fc *evaluator.FunctionContext, args []any) (any, error)) {
	r.Register(evaluator.Function{Name: name, Type: ast.Transformer, Call: call})
}

func (r *Registry) registerEffect(name string, call func(fc *evaluator.FunctionContext, args []any) (any, error)) {
	r.Register(evaluator.Function{Name: name, Type: ast.Effect, Call: call})
}

// Lookup implements evaluator.FunctionLookup.
func (r *Registry) Lookup(name string) (evaluator.Function, bool) {
	fn, ok := r.entries[name]
	return fn, ok
}

// argString coerces argument i to a string, erroring with the calling
// function's name on shape mismatch — every built-in uses this instead of a
// silent zero-value fallback so a misconfigured journey fails at evaluation
// time with a readable message rather than producing a wrong answer.
func argString(fnName string, args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%s: expected at least %d argument(s), got %d", fnName, i+1, len(args))
	}
	s, ok := toString(args[i])
	if !ok {
		return "", fmt.Errorf("%s: argument %d must be a string, got %T", fnName, i, args[i])
	}
	return s, nil
}

func toString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case evaluator.Undefined:
		return "", false
	case nil:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}

var _ evaluator.FunctionLookup = (*Registry)(nil)
