package handlers

import (
	"context"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// transitionHandler backs ACCESS, ACTION, and SUBMIT (spec §4.4): each
// gates on a common "when" predicate, runs its effects during evaluation
// (not deferred), and produces a discriminated outcome structure rather
// than raising. Always async — transitions exist specifically to run
// EFFECT functions and those may call out.
type transitionHandler struct{}

func (transitionHandler) Evaluate(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}

	executed, err := evalWhen(goCtx, ctx, invoke, node)
	if err != nil {
		return evaluator.ThunkResult{}, err
	}

	switch node.SubKind() {
	case ast.Submit:
		return evaluateSubmit(goCtx, ctx, invoke, node, executed)
	default:
		return evaluateAccessOrAction(goCtx, ctx, invoke, node, executed)
	}
}

func evalWhen(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, node *ast.Node) (bool, error) {
	whenNode, ok := node.Properties().Node("when")
	if !ok {
		return true, nil
	}
	res, err := invoke(goCtx, ctx, whenNode.ID())
	if err != nil {
		return false, err
	}
	if res.IsError() {
		return false, nil
	}
	v, _ := res.Get()
	return truthy(v), nil
}

// evaluateAccessOrAction backs ACCESS and ACTION (spec §4.4): run
// "effects" in order, then surface outcome/redirect/status/message —
// literal properties the author sets directly on the transition, unlike
// SUBMIT's onValid/onInvalid branching.
func evaluateAccessOrAction(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, node *ast.Node, executed bool) (evaluator.ThunkResult, error) {
	if !executed {
		return evaluator.Value(map[string]any{"executed": false, "outcome": "continue"}, nil), nil
	}

	if effects, ok := node.Properties().Nodes("effects"); ok {
		if err := runEffects(goCtx, ctx, invoke, effects, node.ID()); err != nil {
			return evaluator.ThunkResult{}, err
		}
	}

	outcome, hasOutcome := node.Properties().String("outcome")
	if !hasOutcome {
		outcome = "continue"
	}

	out := map[string]any{"executed": true, "outcome": outcome}
	if redirectRaw, ok := node.Properties().Raw("redirect"); ok {
		v, err := resolveSubstituting(goCtx, ctx, invoke, redirectRaw)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		out["redirect"] = v
	}
	if statusRaw, ok := node.Properties().Raw("status"); ok {
		v, err := resolveSubstituting(goCtx, ctx, invoke, statusRaw)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		out["status"] = v
	}
	if messageRaw, ok := node.Properties().Raw("message"); ok {
		v, err := resolveSubstituting(goCtx, ctx, invoke, messageRaw)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		out["message"] = v
	}
	return evaluator.Value(out, nil), nil
}

// evaluateSubmit backs SUBMIT (spec §4.4): when "validate" is set, gates
// on every VALIDATION node wired to this transition via the "validations"
// dependency edge (spec §4.3); runs onAlways, then onValid or onInvalid
// depending on the gate, resolving "next" in the taken branch into a
// redirect.
func evaluateSubmit(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, node *ast.Node, executed bool) (evaluator.ThunkResult, error) {
	if !executed {
		return evaluator.Value(map[string]any{"executed": false, "validated": false, "outcome": "continue"}, nil), nil
	}

	shouldValidate, _ := node.Properties().Bool("validate")
	anyFailed := false
	if shouldValidate {
		for _, edge := range ctx.Graph.EdgesTo(node.ID()) {
			if edge.Property != "validations" {
				continue
			}
			res, err := invoke(goCtx, ctx, edge.From)
			if err != nil {
				return evaluator.ThunkResult{}, err
			}
			if res.IsError() {
				anyFailed = true
				continue
			}
			v, _ := res.Get()
			if m, ok := v.(map[string]any); ok {
				if passed, _ := m["passed"].(bool); !passed {
					anyFailed = true
				}
			}
		}
	}
	validated := shouldValidate && anyFailed

	if always, ok := node.Properties().Object("onAlways"); ok {
		if err := runBranchEffects(goCtx, ctx, invoke, always); err != nil {
			return evaluator.ThunkResult{}, err
		}
	}

	branchName := "onValid"
	if anyFailed {
		branchName = "onInvalid"
	}
	branch, hasBranch := node.Properties().Object(branchName)
	var nextVal any
	hasNext := false
	if hasBranch {
		if err := runBranchEffects(goCtx, ctx, invoke, branch); err != nil {
			return evaluator.ThunkResult{}, err
		}
		if nextNode, ok := branch["next"].(*ast.Node); ok {
			res, err := invoke(goCtx, ctx, nextNode.ID())
			if err != nil {
				return evaluator.ThunkResult{}, err
			}
			if !res.IsError() {
				nextVal, _ = res.Get()
				hasNext = true
			}
		}
	}

	out := map[string]any{"executed": true, "validated": validated}
	if hasNext {
		out["outcome"] = "redirect"
		out["redirect"] = nextVal
	} else {
		outcome, hasOutcome := node.Properties().String("outcome")
		if !hasOutcome {
			outcome = "continue"
		}
		out["outcome"] = outcome
		if statusRaw, ok := node.Properties().Raw("status"); ok {
			v, err := resolveSubstituting(goCtx, ctx, invoke, statusRaw)
			if err != nil {
				return evaluator.ThunkResult{}, err
			}
			out["status"] = v
		}
		if messageRaw, ok := node.Properties().Raw("message"); ok {
			v, err := resolveSubstituting(goCtx, ctx, invoke, messageRaw)
			if err != nil {
				return evaluator.ThunkResult{}, err
			}
			out["message"] = v
		}
	}
	return evaluator.Value(out, nil), nil
}

func runBranchEffects(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, branch map[string]any) error {
	raw, ok := branch["effects"]
	if !ok {
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	var effects []*ast.Node
	for _, e := range arr {
		if n, ok := e.(*ast.Node); ok {
			effects = append(effects, n)
		}
	}
	return runEffects(goCtx, ctx, invoke, effects, "")
}

func runEffects(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, effects []*ast.Node, source ast.Identity) error {
	for _, eff := range effects {
		res, err := invoke(goCtx, ctx, eff.ID())
		if err != nil {
			return err
		}
		if res.IsError() {
			ctx.Logger.Warnw("transition effect failed", "node", string(eff.ID()), "source", string(source))
		}
	}
	return nil
}

// nextHandler backs the NEXT expression (spec §3, §4.3): the redirect
// target nested under a SUBMIT branch's "next" property. It has no
// behaviour beyond generic substitution over "to" — kept as its own node
// kind (rather than folding into FORMAT) so wiring can recognise and
// require it specifically under onValid/onInvalid.
type nextHandler struct{}

func (nextHandler) Evaluate(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	toRaw, _ := node.Properties().Raw("to")
	v, err := resolveSubstituting(goCtx, ctx, invoke, toRaw)
	if err != nil {
		return evaluator.ThunkResult{}, err
	}
	return evaluator.Value(v, nil), nil
}
