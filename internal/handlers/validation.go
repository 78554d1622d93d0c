package handlers

import (
	"context"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// validationHandler backs the VALIDATION expression (spec §4.4, "FIELD
// block... evaluates validate array (each element is a VALIDATION
// expression that returns {passed, message, details?})"). The value being
// validated is the enclosing FIELD's own current answer, found the same
// way @self references find it (nearestFieldCode) rather than being
// passed explicitly, since spec §3 doesn't give VALIDATION a "subject"
// property of its own.
type validationHandler struct{}

func (validationHandler) Evaluate(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}

	var subject any = evaluator.Undefined{}
	if code, ok := nearestFieldCode(ctx, node.ID()); ok {
		if state, ok := ctx.Global.Answers[code]; ok {
			subject = state.Current
		}
	}

	passed := true
	if condRaw, ok := node.Properties().Raw("condition"); ok {
		if condNode, ok := condRaw.(ast.AnyNode); ok {
			ctx.Scope.Push(&evaluator.Frame{Type: evaluator.PredicateFrame, Value: subject})
			res, err := invoke(goCtx, ctx, condNode.ID())
			ctx.Scope.Pop()
			if err != nil {
				return evaluator.ThunkResult{}, err
			}
			if res.IsError() {
				passed = false
			} else {
				v, _ := res.Get()
				passed = truthy(v)
			}
		}
	}

	messageRaw, _ := node.Properties().Raw("message")
	messageVal, err := resolveSubstituting(goCtx, ctx, invoke, messageRaw)
	if err != nil {
		return evaluator.ThunkResult{}, err
	}

	out := map[string]any{"passed": passed, "message": messageVal}
	if detailsRaw, ok := node.Properties().Raw("details"); ok {
		detailsVal, err := resolveSubstituting(goCtx, ctx, invoke, detailsRaw)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		out["details"] = detailsVal
	}
	return evaluator.Value(out, nil), nil
}
