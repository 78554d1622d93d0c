package handlers

import (
	"context"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// conditionalHandler backs the CONDITIONAL expression (spec §4.4):
// evaluate "predicate", invoke "thenValue" if truthy else "elseValue";
// absent elseValue yields Undefined. Hybrid — sync when predicate and the
// taken branch are both sync.
type conditionalHandler struct{}

func (conditionalHandler) ComputeIsAsync(deps []bool) bool {
	for _, d := range deps {
		if d {
			return true
		}
	}
	return false
}

func (conditionalHandler) EvaluateSync(ctx *evaluator.Context, invoke evaluator.SyncInvoker, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	predRaw, _ := node.Properties().Raw("predicate")
	predVal, err := resolveSubstitutingSync(ctx, invoke, predRaw)
	if err != nil {
		return evaluator.ThunkResult{}, err
	}
	branch := "thenValue"
	if !truthy(predVal) {
		branch = "elseValue"
	}
	branchRaw, hasBranch := node.Properties().Raw(branch)
	if !hasBranch {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	v, err := resolveSubstitutingSync(ctx, invoke, branchRaw)
	if err != nil {
		return evaluator.ThunkResult{}, err
	}
	return evaluator.Value(v, nil), nil
}

func (conditionalHandler) Evaluate(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	predRaw, _ := node.Properties().Raw("predicate")
	predVal, err := resolveSubstituting(goCtx, ctx, invoke, predRaw)
	if err != nil {
		return evaluator.ThunkResult{}, err
	}
	branch := "thenValue"
	if !truthy(predVal) {
		branch = "elseValue"
	}
	branchRaw, hasBranch := node.Properties().Raw(branch)
	if !hasBranch {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	v, err := resolveSubstituting(goCtx, ctx, invoke, branchRaw)
	if err != nil {
		return evaluator.ThunkResult{}, err
	}
	return evaluator.Value(v, nil), nil
}
