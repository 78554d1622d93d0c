package handlers

import (
	"context"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// pipelineHandler backs the PIPELINE expression (spec §4.4): evaluate
// input, then fold each transformer in order, pushing a pipeline frame
// carrying the running value so a transformer's arguments can reference
// it via the @value namespace. Always async — a pipeline commonly ends in
// a TRANSFORMER that calls out, and nothing is lost by not special-casing
// the all-pure-transformers case.
type pipelineHandler struct{}

func (pipelineHandler) Evaluate(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}

	inputRaw, _ := node.Properties().Raw("input")
	current, terr, err := resolveOrError(goCtx, ctx, invoke, inputRaw)
	if err != nil {
		return evaluator.ThunkResult{}, err
	}
	if terr != nil {
		return evaluator.Error(terr, nil), nil
	}

	transformers, _ := node.Properties().Nodes("transformers")
	for _, t := range transformers {
		ctx.Scope.Push(&evaluator.Frame{Type: evaluator.PipelineFrame, Value: current})
		res, err := invoke(goCtx, ctx, t.ID())
		ctx.Scope.Pop()
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		if res.IsError() {
			return res, nil
		}
		current, _ = res.Get()
	}

	return evaluator.Value(current, nil), nil
}
