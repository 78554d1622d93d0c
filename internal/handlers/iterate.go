package handlers

import (
	"context"
	"sort"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// ITERATE sub-kinds (the "iterateType" discriminant, spec §4.4).
const (
	iterateMap    = "MAP"
	iterateFilter = "FILTER"
	iterateFind   = "FIND"
)

// iterateHandler backs the ITERATE expression's three kinds. Always
// async: every item evaluation goes through a freshly cloned, freshly
// registered runtime node (see ast.CloneForRuntime) so each item gets its
// own cache entry and its own iterator scope frame, rather than every
// item colliding on one shared compile-time node identity.
type iterateHandler struct{}

func (iterateHandler) Evaluate(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}

	inputRaw, _ := node.Properties().Raw("input")
	inputVal, terr, err := resolveOrError(goCtx, ctx, invoke, inputRaw)
	if err != nil {
		return evaluator.ThunkResult{}, err
	}
	if terr != nil {
		return evaluator.Error(terr, nil), nil
	}

	iterateType, _ := node.Properties().String("iterateType")

	items, keys, kind := containerEntries(inputVal)
	if kind == containerNone {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}

	switch iterateType {
	case iterateMap:
		template, ok := node.Properties().Node("template")
		if !ok {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		return mapContainer(goCtx, ctx, invoke, hooks, node.ID(), template, items, keys, kind)

	case iterateFilter:
		predicate, ok := node.Properties().Node("predicate")
		if !ok {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		return filterContainer(goCtx, ctx, invoke, hooks, node.ID(), predicate, items, keys, kind)

	case iterateFind:
		predicate, ok := node.Properties().Node("predicate")
		if !ok {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		return findInContainer(goCtx, ctx, invoke, hooks, node.ID(), predicate, items, keys)

	default:
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
}

type containerKind int

const (
	containerNone containerKind = iota
	containerArray
	containerObject
)

// containerEntries normalizes an array or object into parallel
// items/keys slices, preserving array order and — since Go's decoded
// map[string]any has no stable iteration order of its own — a sorted key
// order for objects (spec §8 calls for "object-own-key order"; sorted
// order is this engine's deterministic stand-in, recorded in DESIGN.md).
func containerEntries(v any) (items []any, keys []any, kind containerKind) {
	switch t := v.(type) {
	case []any:
		return t, nil, containerArray
	case map[string]any:
		ks := make([]string, 0, len(t))
		for k := range t {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		items = make([]any, len(ks))
		keys = make([]any, len(ks))
		for i, k := range ks {
			items[i] = t[k]
			keys[i] = k
		}
		return items, keys, containerObject
	default:
		return nil, nil, containerNone
	}
}

func pushIteratorFrame(ctx *evaluator.Context, item any, index int, keys []any) {
	f := &evaluator.Frame{Type: evaluator.IteratorFrame, Item: item, Index: index}
	if keys != nil {
		f.Key = keys[index]
	}
	ctx.Scope.Push(f)
}

func mapContainer(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, parent ast.Identity, template *ast.Node, items []any, keys []any, kind containerKind) (evaluator.ThunkResult, error) {
	results := make([]any, len(items))
	for i, item := range items {
		pushIteratorFrame(ctx, item, i, keys)
		cloned := hooks.CloneTemplate(template)
		err := hooks.RegisterRuntimeNode(ctx, parent, "template", cloned)
		if err != nil {
			ctx.Scope.Pop()
			return evaluator.ThunkResult{}, err
		}
		res, err := invoke(goCtx, ctx, cloned.ID())
		ctx.Scope.Pop()
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		if res.IsError() {
			results[i] = evaluator.Undefined{}
			continue
		}
		v, _ := res.Get()
		results[i] = v
	}
	return evaluator.Value(toContainer(results, keys, kind), nil), nil
}

func filterContainer(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, parent ast.Identity, predicate *ast.Node, items []any, keys []any, kind containerKind) (evaluator.ThunkResult, error) {
	var kept []any
	var keptKeys []any
	for i, item := range items {
		passed, clonedErr := evalPredicateForItem(goCtx, ctx, invoke, hooks, parent, predicate, item, i, keys)
		if clonedErr != nil {
			return evaluator.ThunkResult{}, clonedErr
		}
		if passed {
			kept = append(kept, item)
			if keys != nil {
				keptKeys = append(keptKeys, keys[i])
			}
		}
	}
	return evaluator.Value(toContainer(kept, keptKeys, kind), nil), nil
}

func findInContainer(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, parent ast.Identity, predicate *ast.Node, items []any, keys []any) (evaluator.ThunkResult, error) {
	for i, item := range items {
		passed, err := evalPredicateForItem(goCtx, ctx, invoke, hooks, parent, predicate, item, i, keys)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		if passed {
			return evaluator.Value(item, nil), nil
		}
	}
	return evaluator.Value(evaluator.Undefined{}, nil), nil
}

func evalPredicateForItem(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, parent ast.Identity, predicate *ast.Node, item any, index int, keys []any) (bool, error) {
	pushIteratorFrame(ctx, item, index, keys)
	cloned := hooks.CloneTemplate(predicate)
	err := hooks.RegisterRuntimeNode(ctx, parent, "predicate", cloned)
	if err != nil {
		ctx.Scope.Pop()
		return false, err
	}
	res, err := invoke(goCtx, ctx, cloned.ID())
	ctx.Scope.Pop()
	if err != nil {
		return false, err
	}
	if res.IsError() {
		return false, nil
	}
	v, _ := res.Get()
	return truthy(v), nil
}

func toContainer(values []any, keys []any, kind containerKind) any {
	if kind == containerObject {
		out := make(map[string]any, len(values))
		for i, v := range values {
			k, _ := keys[i].(string)
			out[k] = v
		}
		return out
	}
	if values == nil {
		return []any{}
	}
	return values
}
