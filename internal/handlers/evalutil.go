package handlers

import (
	"context"
	"fmt"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// truthy is the engine's single notion of "is this value true-like" (spec
// §4.4 combinators, §4.4 conditionals): Undefined, nil, false, "", 0, and
// empty arrays/objects are falsy; everything else is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case evaluator.Undefined:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// resolveSubstituting evaluates v (a property value that may be an AST
// node, an array, a plain object, or a primitive), recursing into arrays
// and objects, and substitutes Undefined for any sub-evaluation that
// produced an error rather than propagating (spec §7, "structural
// handlers and Format substitute undefined for failed sub-evaluations").
func resolveSubstituting(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, v any) (any, error) {
	switch t := v.(type) {
	case ast.AnyNode:
		res, err := invoke(goCtx, ctx, t.ID())
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return evaluator.Undefined{}, nil
		}
		val, _ := res.Get()
		return val, nil
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			rv, err := resolveSubstituting(goCtx, ctx, invoke, e)
			if err != nil {
				return nil, err
			}
			out = append(out, rv)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			rv, err := resolveSubstituting(goCtx, ctx, invoke, e)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	default:
		return v, nil
	}
}

// resolveSubstitutingSync is resolveSubstituting's sync-fast-path twin,
// used by hybrid handlers whose computed isAsync is false.
func resolveSubstitutingSync(ctx *evaluator.Context, invoke evaluator.SyncInvoker, v any) (any, error) {
	switch t := v.(type) {
	case ast.AnyNode:
		res, err := invoke(ctx, t.ID())
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return evaluator.Undefined{}, nil
		}
		val, _ := res.Get()
		return val, nil
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			rv, err := resolveSubstitutingSync(ctx, invoke, e)
			if err != nil {
				return nil, err
			}
			out = append(out, rv)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			rv, err := resolveSubstitutingSync(ctx, invoke, e)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	default:
		return v, nil
	}
}

// resolveOrError evaluates a single AST-node-valued property, propagating
// its ThunkError rather than substituting Undefined — used where spec §4.4
// calls for a short-circuit (Pipeline transformer failure, Test's subject/
// condition).
func resolveOrError(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, v any) (any, *evaluator.ThunkError, error) {
	node, ok := v.(ast.AnyNode)
	if !ok {
		return v, nil, nil
	}
	res, err := invoke(goCtx, ctx, node.ID())
	if err != nil {
		return nil, nil, err
	}
	if res.IsError() {
		return nil, res.Err(), nil
	}
	val, _ := res.Get()
	return val, nil, nil
}

// asString coerces v to a string the way Format/path navigation need:
// strings pass through, numbers are formatted, everything else (including
// Undefined) yields ("", false).
func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return fmt.Sprintf("%g", t), true
	case int:
		return fmt.Sprintf("%d", t), true
	default:
		return "", false
	}
}
