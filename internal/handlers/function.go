package handlers

import (
	"context"
	"fmt"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// functionHandler backs FUNCTION expressions (spec §4.4): dispatch to a
// named entry in the external function registry, evaluating "arguments"
// in order first. Always async: EFFECT functions may perform I/O, and
// CONDITION/TRANSFORMER functions are cheap enough that routing them
// through the async path costs nothing observable.
type functionHandler struct{}

func (functionHandler) Evaluate(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	name, _ := node.Properties().String("name")

	if ctx.Functions == nil {
		return evaluator.Error(evaluator.NewThunkError(evaluator.HandlerRegistryKind, fmt.Sprintf("no function registry configured, looking up %q", name), nil), nil), nil
	}
	fn, ok := ctx.Functions.Lookup(name)
	if !ok {
		return evaluator.Error(evaluator.NewThunkError(evaluator.HandlerRegistryKind, fmt.Sprintf("no function registered as %q", name), nil), nil), nil
	}

	argsRaw, _ := node.Properties().Array("arguments")
	args := make([]any, len(argsRaw))
	for i, a := range argsRaw {
		v, err := resolveSubstituting(goCtx, ctx, invoke, a)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		args[i] = v
	}

	fc := &evaluator.FunctionContext{Ctx: ctx}
	result, err := fn.Call(fc, args)
	if err != nil {
		return evaluator.Error(evaluator.NewThunkErrorWithSub(evaluator.EvaluationFailedKind, evaluator.EffectFailure, fmt.Sprintf("function %q", name), err), nil), nil
	}
	return evaluator.Value(result, nil), nil
}
