package handlers

import (
	"errors"
	"testing"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/config"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// newTestEvaluator builds a full Evaluator/Context pair over an artefact
// populated with nodes, each wired to the handler HandlerFor would assign
// it — the same construction the compiler performs, minus the wiring pass
// (tests build graph edges directly where a handler needs one).
func newTestEvaluator(t *testing.T, deps evaluator.InstanceDependencies, nodes ...ast.AnyNode) (*evaluator.Evaluator, *evaluator.Context) {
	t.Helper()
	artefact := evaluator.NewArtefact()
	for _, n := range nodes {
		if err := artefact.Nodes.Register(n.ID(), n); err != nil {
			t.Fatalf("registering node %s: %v", n.ID(), err)
		}
		h, ok := HandlerFor(n)
		if !ok {
			t.Fatalf("no handler for node %s", n.ID())
		}
		if err := artefact.Handlers.Register(n.ID(), h); err != nil {
			t.Fatalf("registering handler for %s: %v", n.ID(), err)
		}
	}
	if deps.Config.MaxRetries == 0 {
		deps.Config = config.Default()
	}
	if deps.Support == nil {
		deps.Support = &evaluator.RuntimeSupport{
			HandlerFor: func(node ast.AnyNode) (any, error) {
				h, ok := HandlerFor(node)
				if !ok {
					return nil, errors.New("no handler")
				}
				return h, nil
			},
		}
	}
	ev, ctx, err := evaluator.WithRuntimeOverlay(artefact, deps, nil)
	if err != nil {
		t.Fatalf("WithRuntimeOverlay() error: %v", err)
	}
	return ev, ctx
}

func node(alloc *ast.Allocator, kind ast.Type, subKind, variant string, props ast.Properties) *ast.Node {
	return ast.NewNode(alloc.Next(), kind, subKind, variant, props)
}

func newAlloc() *ast.Allocator {
	return ast.NewAllocator(ast.CompileAST)
}
