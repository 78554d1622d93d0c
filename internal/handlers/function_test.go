package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

type stubFunctionLookup map[string]evaluator.Function

func (s stubFunctionLookup) Lookup(name string) (evaluator.Function, bool) {
	fn, ok := s[name]
	return fn, ok
}

func TestFunctionHandlerCallsRegisteredFunctionWithResolvedArguments(t *testing.T) {
	lookup := stubFunctionLookup{
		"add": evaluator.Function{
			Name: "add",
			Type: ast.Transformer,
			Call: func(fc *evaluator.FunctionContext, args []any) (any, error) {
				return len(args), nil
			},
		},
	}
	n := ast.NewNode(newAlloc().Next(), ast.Expression, ast.Function, "", ast.Properties{
		"name":      "add",
		"arguments": []any{1, 2, 3},
	})
	deps := evaluator.InstanceDependencies{Functions: lookup}
	_, ctx := newTestEvaluator(t, deps)

	res, err := functionHandler{}.Evaluate(context.Background(), ctx, noopAsyncInvoke, nil, n)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if v, _ := res.Get(); v != 3 {
		t.Errorf("Evaluate() = %v, want 3", v)
	}
}

func TestFunctionHandlerMissingRegistryYieldsHandlerRegistryError(t *testing.T) {
	n := ast.NewNode(newAlloc().Next(), ast.Expression, ast.Function, "", ast.Properties{"name": "add"})
	_, ctx := newTestEvaluator(t, evaluator.InstanceDependencies{})

	res, err := functionHandler{}.Evaluate(context.Background(), ctx, noopAsyncInvoke, nil, n)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if !res.IsError() || res.Err().Kind != evaluator.HandlerRegistryKind {
		t.Fatalf("expected a HANDLER_REGISTRY error, got %+v", res)
	}
}

func TestFunctionHandlerUnknownNameYieldsHandlerRegistryError(t *testing.T) {
	n := ast.NewNode(newAlloc().Next(), ast.Expression, ast.Function, "", ast.Properties{"name": "missing"})
	deps := evaluator.InstanceDependencies{Functions: stubFunctionLookup{}}
	_, ctx := newTestEvaluator(t, deps)

	res, err := functionHandler{}.Evaluate(context.Background(), ctx, noopAsyncInvoke, nil, n)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if !res.IsError() || res.Err().Kind != evaluator.HandlerRegistryKind {
		t.Fatalf("expected a HANDLER_REGISTRY error, got %+v", res)
	}
}

func TestFunctionHandlerCallErrorYieldsEffectFailure(t *testing.T) {
	lookup := stubFunctionLookup{
		"boom": evaluator.Function{
			Name: "boom",
			Type: ast.Effect,
			Call: func(fc *evaluator.FunctionContext, args []any) (any, error) {
				return nil, errors.New("downstream failure")
			},
		},
	}
	n := ast.NewNode(newAlloc().Next(), ast.Expression, ast.Function, "", ast.Properties{"name": "boom"})
	deps := evaluator.InstanceDependencies{Functions: lookup}
	_, ctx := newTestEvaluator(t, deps)

	res, err := functionHandler{}.Evaluate(context.Background(), ctx, noopAsyncInvoke, nil, n)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if !res.IsError() || res.Err().Sub != evaluator.EffectFailure {
		t.Fatalf("expected an EffectFailure sub-kind, got %+v", res)
	}
}

func noopAsyncInvoke(goCtx context.Context, ctx *evaluator.Context, id ast.Identity) (evaluator.ThunkResult, error) {
	return evaluator.Value(nil, nil), nil
}
