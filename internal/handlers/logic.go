package handlers

import (
	"context"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// predicateHandler backs every PREDICATE sub-kind (spec §4.4): AND, OR,
// XOR, NOT, TEST. It is hybrid — sync when every operand it depends on is
// sync, async otherwise — since combinators are the main conduit through
// which an async leaf (a FUNCTION CONDITION calling out, say) makes an
// enclosing predicate async.
type predicateHandler struct{}

func (predicateHandler) ComputeIsAsync(deps []bool) bool {
	for _, d := range deps {
		if d {
			return true
		}
	}
	return false
}

func (predicateHandler) EvaluateSync(ctx *evaluator.Context, invoke evaluator.SyncInvoker, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(false, nil), nil
	}
	resolve := func(v any) (any, error) { return resolveSubstitutingSync(ctx, invoke, v) }
	return evaluatePredicate(ctx, node, resolve, func(subject any, cond *ast.Node) (any, error) {
		return evaluateConditionSync(ctx, invoke, subject, cond)
	})
}

func (predicateHandler) Evaluate(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(false, nil), nil
	}
	resolve := func(v any) (any, error) { return resolveSubstituting(goCtx, ctx, invoke, v) }
	return evaluatePredicate(ctx, node, resolve, func(subject any, cond *ast.Node) (any, error) {
		return evaluateConditionAsync(goCtx, ctx, invoke, subject, cond)
	})
}

// evaluatePredicate holds the sub-kind dispatch shared by the sync and
// async paths; only how an operand/condition gets resolved differs.
func evaluatePredicate(ctx *evaluator.Context, node *ast.Node, resolve func(any) (any, error), evalCondition func(subject any, cond *ast.Node) (any, error)) (evaluator.ThunkResult, error) {
	switch node.SubKind() {
	case ast.And:
		operands, _ := node.Properties().Array("operands")
		for _, op := range operands {
			v, err := resolve(op)
			if err != nil {
				return evaluator.ThunkResult{}, err
			}
			if !truthy(v) {
				return evaluator.Value(false, nil), nil
			}
		}
		return evaluator.Value(true, nil), nil // vacuous AND (spec §8 boundary behavior)

	case ast.Or:
		operands, _ := node.Properties().Array("operands")
		for _, op := range operands {
			v, err := resolve(op)
			if err != nil {
				return evaluator.ThunkResult{}, err
			}
			if truthy(v) {
				return evaluator.Value(true, nil), nil
			}
		}
		return evaluator.Value(false, nil), nil // vacuous OR

	case ast.Xor:
		operands, _ := node.Properties().Array("operands")
		truthCount := 0
		for _, op := range operands {
			v, err := resolve(op)
			if err != nil {
				return evaluator.ThunkResult{}, err
			}
			if truthy(v) {
				truthCount++
			}
		}
		return evaluator.Value(truthCount == 1, nil), nil

	case ast.Not:
		operand, _ := node.Properties().Raw("operand")
		v, err := resolve(operand)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		return evaluator.Value(!truthy(v), nil), nil

	case ast.Test:
		subjectRaw, _ := node.Properties().Raw("subject")
		subject, err := resolve(subjectRaw)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		cond, _ := node.Properties().Node("condition")
		negate, _ := node.Properties().Bool("negate")

		result, err := evalCondition(subject, cond)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		passed := truthy(result)
		if negate {
			passed = !passed
		}
		return evaluator.Value(passed, nil), nil

	default:
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
}

func evaluateConditionSync(ctx *evaluator.Context, invoke evaluator.SyncInvoker, subject any, cond *ast.Node) (any, error) {
	if cond == nil {
		return false, nil
	}
	ctx.Scope.Push(&evaluator.Frame{Type: evaluator.PredicateFrame, Value: subject})
	defer ctx.Scope.Pop()
	res, err := invoke(ctx, cond.ID())
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return false, nil
	}
	v, _ := res.Get()
	return v, nil
}

func evaluateConditionAsync(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, subject any, cond *ast.Node) (any, error) {
	if cond == nil {
		return false, nil
	}
	ctx.Scope.Push(&evaluator.Frame{Type: evaluator.PredicateFrame, Value: subject})
	defer ctx.Scope.Pop()
	res, err := invoke(goCtx, ctx, cond.ID())
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return false, nil
	}
	v, _ := res.Get()
	return v, nil
}
