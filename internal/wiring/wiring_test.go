package wiring

import (
	"testing"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
)

func setup(t *testing.T) (*registry.NodeRegistry, *registry.MetadataRegistry, *registry.Graph, *ast.Allocator) {
	t.Helper()
	return registry.NewNodeRegistry(), registry.NewMetadataRegistry(), registry.NewGraph(), ast.NewAllocator(ast.CompileAST)
}

func register(t *testing.T, nodes *registry.NodeRegistry, ns ...ast.AnyNode) {
	t.Helper()
	for _, n := range ns {
		if err := nodes.Register(n.ID(), n); err != nil {
			t.Fatalf("Register(%s): %v", n.ID(), err)
		}
	}
}

func hasEdge(g *registry.Graph, from, to ast.Identity, property string, index int) bool {
	for _, e := range g.EdgesTo(to) {
		if e.From == from && e.Property == property && e.Index == index {
			return true
		}
	}
	return false
}

func TestWireNodeEmitsEdgeForDirectProperty(t *testing.T) {
	nodes, meta, graph, alloc := setup(t)
	value := ast.NewNode(alloc.Next(), ast.Expression, ast.Function, "", ast.Properties{})
	field := ast.NewNode(alloc.Next(), ast.Block, ast.Field, "", ast.Properties{"value": value})
	register(t, nodes, value, field)

	w := New(nodes, meta, graph)
	w.WireAll()

	if !hasEdge(graph, value.ID(), field.ID(), "value", -1) {
		t.Errorf("expected edge %s -> %s on property value", value.ID(), field.ID())
	}
}

func TestWireNodeEmitsEdgesForArrayElementProperties(t *testing.T) {
	nodes, meta, graph, alloc := setup(t)
	a := ast.NewNode(alloc.Next(), ast.Expression, ast.Function, "", ast.Properties{})
	b := ast.NewNode(alloc.Next(), ast.Expression, ast.Function, "", ast.Properties{})
	block := ast.NewNode(alloc.Next(), ast.Block, ast.Basic, "", ast.Properties{
		"items": []any{a, b},
	})
	register(t, nodes, a, b, block)

	w := New(nodes, meta, graph)
	w.WireAll()

	if !hasEdge(graph, a.ID(), block.ID(), "items", 0) {
		t.Errorf("expected edge %s -> %s on items[0]", a.ID(), block.ID())
	}
	if !hasEdge(graph, b.ID(), block.ID(), "items", 1) {
		t.Errorf("expected edge %s -> %s on items[1]", b.ID(), block.ID())
	}
}

func TestWireNodeEmitsEdgeForNestedSubObjectProperty(t *testing.T) {
	nodes, meta, graph, alloc := setup(t)
	next := ast.NewNode(alloc.Next(), ast.Expression, ast.Next, "", ast.Properties{"to": "/done"})
	effect := ast.NewNode(alloc.Next(), ast.Expression, ast.Function, "", ast.Properties{"name": "markDone"})
	transition := ast.NewNode(alloc.Next(), ast.Transition, ast.Submit, "", ast.Properties{
		"onValid":  map[string]any{"next": next, "effects": []any{effect}},
		"validate": false,
	})
	register(t, nodes, next, effect, transition)

	w := New(nodes, meta, graph)
	w.WireAll()

	if !hasEdge(graph, next.ID(), transition.ID(), "onValid.next", -1) {
		t.Errorf("expected edge %s -> %s on onValid.next", next.ID(), transition.ID())
	}
	if !hasEdge(graph, effect.ID(), transition.ID(), "onValid.effects", 0) {
		t.Errorf("expected edge %s -> %s on onValid.effects[0]", effect.ID(), transition.ID())
	}
}

func TestWireAllWiresEveryFamily(t *testing.T) {
	nodes, meta, graph, alloc := setup(t)
	operand := ast.NewNode(alloc.Next(), ast.Expression, ast.Function, "", ast.Properties{})
	pred := ast.NewNode(alloc.Next(), ast.Predicate, ast.Not, "", ast.Properties{"operand": operand})
	step := ast.NewNode(alloc.Next(), ast.Step, "", "", ast.Properties{"body": pred})
	journey := ast.NewNode(alloc.Next(), ast.Journey, "", "", ast.Properties{"steps": []any{step}})
	register(t, nodes, operand, pred, step, journey)

	w := New(nodes, meta, graph)
	w.WireAll()

	if !hasEdge(graph, operand.ID(), pred.ID(), "operand", -1) {
		t.Errorf("expected PREDICATE wiring for operand")
	}
	if !hasEdge(graph, pred.ID(), step.ID(), "body", -1) {
		t.Errorf("expected STEP wiring for body")
	}
	if !hasEdge(graph, step.ID(), journey.ID(), "steps", 0) {
		t.Errorf("expected JOURNEY wiring for steps[0]")
	}
}

func TestWireNodesRewiresOnlyGivenIdentities(t *testing.T) {
	nodes, meta, graph, alloc := setup(t)
	a := ast.NewNode(alloc.Next(), ast.Expression, ast.Function, "", ast.Properties{})
	wired := ast.NewNode(alloc.Next(), ast.Block, ast.Basic, "", ast.Properties{"value": a})
	b := ast.NewNode(alloc.Next(), ast.Expression, ast.Function, "", ast.Properties{})
	unwired := ast.NewNode(alloc.Next(), ast.Block, ast.Basic, "", ast.Properties{"value": b})
	register(t, nodes, a, wired, b, unwired)

	w := New(nodes, meta, graph)
	w.WireNodes([]ast.Identity{wired.ID()})

	if !hasEdge(graph, a.ID(), wired.ID(), "value", -1) {
		t.Errorf("expected the explicitly requested node to be wired")
	}
	if hasEdge(graph, b.ID(), unwired.ID(), "value", -1) {
		t.Errorf("did not expect the unrequested node to be wired")
	}
}

// buildStepWithSubmit wires up a STEP containing one SUBMIT transition and
// zero or more VALIDATION expressions as descendants, returning the
// registry/graph plus the submit and validation node identities so tests can
// assert on edges without re-deriving them.
func buildStepWithSubmit(t *testing.T, validate bool, validationCount int) (*registry.NodeRegistry, *registry.MetadataRegistry, *registry.Graph, *ast.Node, []*ast.Node) {
	t.Helper()
	nodes, meta, graph, alloc := setup(t)

	step := ast.NewNode(alloc.Next(), ast.Step, "", "", ast.Properties{})
	register(t, nodes, step)

	var validations []*ast.Node
	for i := 0; i < validationCount; i++ {
		v := ast.NewNode(alloc.Next(), ast.Expression, ast.Validation, "", ast.Properties{})
		register(t, nodes, v)
		meta.Set(v.ID(), registry.AttachedToParentNode, step.ID())
		validations = append(validations, v)
	}

	submit := ast.NewNode(alloc.Next(), ast.Transition, ast.Submit, "", ast.Properties{"validate": validate})
	register(t, nodes, submit)
	meta.Set(submit.ID(), registry.AttachedToParentNode, step.ID())

	return nodes, meta, graph, submit, validations
}

func TestWireSubmitValidationsWiresEveryDescendantValidationRegardlessOfReachability(t *testing.T) {
	nodes, meta, graph, submit, validations := buildStepWithSubmit(t, true, 2)

	w := New(nodes, meta, graph)
	w.WireAll()

	for _, v := range validations {
		found := false
		for _, e := range graph.EdgesTo(submit.ID()) {
			if e.From == v.ID() && e.Property == "validations" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected validations edge from %s to %s", v.ID(), submit.ID())
		}
	}
}

func TestWireSubmitValidationsSkippedWhenValidateFalse(t *testing.T) {
	nodes, meta, graph, submit, validations := buildStepWithSubmit(t, false, 1)

	w := New(nodes, meta, graph)
	w.WireAll()

	for _, e := range graph.EdgesTo(submit.ID()) {
		if e.Property == "validations" {
			t.Errorf("did not expect a validations edge when validate=false, found from %s", e.From)
		}
	}
	_ = validations
}

func TestWireSubmitValidationsOnlyWiresValidationsUnderEnclosingStep(t *testing.T) {
	nodes, meta, graph, alloc := setup(t)

	stepA := ast.NewNode(alloc.Next(), ast.Step, "", "", ast.Properties{})
	stepB := ast.NewNode(alloc.Next(), ast.Step, "", "", ast.Properties{})
	register(t, nodes, stepA, stepB)

	ownValidation := ast.NewNode(alloc.Next(), ast.Expression, ast.Validation, "", ast.Properties{})
	foreignValidation := ast.NewNode(alloc.Next(), ast.Expression, ast.Validation, "", ast.Properties{})
	register(t, nodes, ownValidation, foreignValidation)
	meta.Set(ownValidation.ID(), registry.AttachedToParentNode, stepA.ID())
	meta.Set(foreignValidation.ID(), registry.AttachedToParentNode, stepB.ID())

	submit := ast.NewNode(alloc.Next(), ast.Transition, ast.Submit, "", ast.Properties{"validate": true})
	register(t, nodes, submit)
	meta.Set(submit.ID(), registry.AttachedToParentNode, stepA.ID())

	w := New(nodes, meta, graph)
	w.WireAll()

	sawOwn, sawForeign := false, false
	for _, e := range graph.EdgesTo(submit.ID()) {
		if e.Property != "validations" {
			continue
		}
		if e.From == ownValidation.ID() {
			sawOwn = true
		}
		if e.From == foreignValidation.ID() {
			sawForeign = true
		}
	}
	if !sawOwn {
		t.Errorf("expected the validation under the enclosing step to be wired")
	}
	if sawForeign {
		t.Errorf("did not expect the validation under a sibling step to be wired")
	}
}
