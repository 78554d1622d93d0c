package handlers

import (
	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// postHandler, queryHandler, paramsHandler resolve a POST/QUERY/PARAMS
// pseudo node straight out of the request's value maps (spec §4.4,
// "resolve the base value via the corresponding pseudo node"). All three
// are pure-sync: they seed the isAsync reverse-topological pass (spec
// §4.1 step 6).
type postHandler struct{}
type queryHandler struct{}
type paramsHandler struct{}

func (postHandler) EvaluateSync(ctx *evaluator.Context, _ evaluator.SyncInvoker, node ast.AnyNode) (evaluator.ThunkResult, error) {
	return requestValueResult(ctx.Request.Post, node), nil
}

func (queryHandler) EvaluateSync(ctx *evaluator.Context, _ evaluator.SyncInvoker, node ast.AnyNode) (evaluator.ThunkResult, error) {
	return requestValueResult(ctx.Request.Query, node), nil
}

func (paramsHandler) EvaluateSync(ctx *evaluator.Context, _ evaluator.SyncInvoker, node ast.AnyNode) (evaluator.ThunkResult, error) {
	return requestValueResult(ctx.Request.Params, node), nil
}

func requestValueResult(values evaluator.RequestValues, node ast.AnyNode) evaluator.ThunkResult {
	p, ok := node.(*ast.Pseudo)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil)
	}
	if v, present := values.First(p.Key()); present {
		return evaluator.Value(v, nil)
	}
	return evaluator.Value(evaluator.Undefined{}, nil)
}

// dataHandler resolves a DATA pseudo node from the request's data
// namespace (spec §3, "DATA by top-level property").
type dataHandler struct{}

func (dataHandler) EvaluateSync(ctx *evaluator.Context, _ evaluator.SyncInvoker, node ast.AnyNode) (evaluator.ThunkResult, error) {
	p, ok := node.(*ast.Pseudo)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	if v, ok := ctx.Global.Data[p.Key()]; ok {
		return evaluator.Value(v, nil), nil
	}
	return evaluator.Value(evaluator.Undefined{}, nil), nil
}

// answerHandler resolves ANSWER_LOCAL and ANSWER_REMOTE pseudo nodes,
// both keyed by field code, from the answer namespace (spec §3). The
// source distinguishes local-step answers from cross-step "remote"
// answers at the framework-adapter layer (how a remote field's value
// reaches global.answers); once it's there, resolution is identical, so
// one handler backs both pseudo kinds.
type answerHandler struct{}

func (answerHandler) EvaluateSync(ctx *evaluator.Context, _ evaluator.SyncInvoker, node ast.AnyNode) (evaluator.ThunkResult, error) {
	p, ok := node.(*ast.Pseudo)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	if state, ok := ctx.Global.Answers[p.Key()]; ok {
		return evaluator.Value(state.Current, nil), nil
	}
	return evaluator.Value(evaluator.Undefined{}, nil), nil
}
