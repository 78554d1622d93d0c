package handlers

import (
	"context"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// structuralHandler backs JOURNEY, STEP, and BLOCK (spec §4.4): produce a
// shallow shape {id, type, variant?, blockType?, properties} where every
// AST-node-valued property (directly or inside an array/object) has been
// invoked and substituted, failed sub-evaluations becoming Undefined
// rather than aborting the whole shape. FIELD blocks additionally
// synthesize "value" from the enclosing answer plus the formatters
// pipeline (spec §4.4) — value is not itself a source property (spec §3
// lists FIELD's contract without one), so it's added after the generic
// substitution pass rather than flowing through it.
type structuralHandler struct{}

func (structuralHandler) Evaluate(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}

	source := map[string]any(node.Properties())
	isField := node.Kind() == ast.Block && node.SubKind() == ast.Field
	if isField {
		// "formatters" is plumbing for fieldValue's own pipeline-framed
		// invocation below; running it through the generic pass first
		// would invoke each formatter with no @value frame and cache a
		// stale result fieldValue could never then recompute.
		trimmed := make(map[string]any, len(source))
		for k, v := range source {
			if k == "formatters" {
				continue
			}
			trimmed[k] = v
		}
		source = trimmed
	}

	evaluated, err := resolveSubstituting(goCtx, ctx, invoke, source)
	if err != nil {
		return evaluator.ThunkResult{}, err
	}
	propsMap, _ := evaluated.(map[string]any)
	if propsMap == nil {
		propsMap = map[string]any{}
	}

	if isField {
		value, err := fieldValue(goCtx, ctx, invoke, node)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		propsMap["value"] = value
	}

	shape := map[string]any{
		"id":   string(node.ID()),
		"type": string(node.Kind()),
	}
	if node.Variant() != "" {
		shape["variant"] = node.Variant()
	}
	if node.Kind() == ast.Block {
		shape["blockType"] = node.SubKind()
	}
	shape["properties"] = propsMap

	return evaluator.Value(shape, nil), nil
}

// fieldValue resolves a FIELD block's current answer and folds the
// formatters pipeline over it. A formatter failure preserves the
// pre-failure value rather than propagating (spec §9's open question on
// formatter failure, resolved in DESIGN.md as "raw value preserved").
func fieldValue(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, node *ast.Node) (any, error) {
	code, _ := node.Properties().String("code")
	var current any = evaluator.Undefined{}
	if state, ok := ctx.Global.Answers[code]; ok {
		current = state.Current
	}

	formatters, hasFormatters := node.Properties().Nodes("formatters")
	if !hasFormatters {
		return current, nil
	}
	for _, t := range formatters {
		ctx.Scope.Push(&evaluator.Frame{Type: evaluator.PipelineFrame, Value: current})
		res, err := invoke(goCtx, ctx, t.ID())
		ctx.Scope.Pop()
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			break
		}
		current, _ = res.Get()
	}
	return current, nil
}
