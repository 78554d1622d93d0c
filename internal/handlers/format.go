package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// formatHandler backs the FORMAT expression (spec §4.4): interpolate
// %1..%N placeholders in "template" with invoked values from "arguments";
// %% escapes to a literal percent; out-of-range placeholders become empty
// string. Hybrid — sync when every argument is sync.
type formatHandler struct{}

func (formatHandler) ComputeIsAsync(deps []bool) bool {
	for _, d := range deps {
		if d {
			return true
		}
	}
	return false
}

func (formatHandler) EvaluateSync(ctx *evaluator.Context, invoke evaluator.SyncInvoker, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	template, _ := node.Properties().String("template")
	argsRaw, _ := node.Properties().Array("arguments")
	args := make([]any, len(argsRaw))
	for i, a := range argsRaw {
		v, err := resolveSubstitutingSync(ctx, invoke, a)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		args[i] = v
	}
	return evaluator.Value(interpolate(template, args), nil), nil
}

func (formatHandler) Evaluate(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	template, _ := node.Properties().String("template")
	argsRaw, _ := node.Properties().Array("arguments")
	args := make([]any, len(argsRaw))
	for i, a := range argsRaw {
		v, err := resolveSubstituting(goCtx, ctx, invoke, a)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		args[i] = v
	}
	return evaluator.Value(interpolate(template, args), nil), nil
}

func interpolate(template string, args []any) string {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' || i == len(template)-1 {
			b.WriteByte(c)
			continue
		}
		next := template[i+1]
		if next == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		j := i + 1
		for j < len(template) && template[j] >= '0' && template[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte(c)
			continue
		}
		n, _ := strconv.Atoi(template[i+1 : j])
		if n >= 1 && n <= len(args) {
			s, _ := asString(args[n-1])
			b.WriteString(s)
		}
		i = j - 1
	}
	return b.String()
}
