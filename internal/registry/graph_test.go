package registry

import (
	"testing"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
)

func TestGraphAddEdgeIsIdempotent(t *testing.T) {
	g := NewGraph()
	from, to := ast.Identity("compile:1"), ast.Identity("compile:2")

	g.AddEdge(from, to, "value", -1)
	g.AddEdge(from, to, "value", -1)

	if len(g.All()) != 1 {
		t.Fatalf("expected a duplicate AddEdge to be a no-op, got %d edges", len(g.All()))
	}
}

func TestGraphEdgesToAndFrom(t *testing.T) {
	g := NewGraph()
	a, b, c := ast.Identity("compile:1"), ast.Identity("compile:2"), ast.Identity("compile:3")

	g.AddEdge(a, b, "value", -1)
	g.AddEdge(a, c, "value", -1)
	g.AddEdge(b, c, "items", 0)

	if got := g.EdgesFrom(a); len(got) != 2 {
		t.Fatalf("expected 2 edges from %s, got %d", a, len(got))
	}
	if got := g.EdgesTo(c); len(got) != 2 {
		t.Fatalf("expected 2 edges to %s, got %d", c, len(got))
	}
	if got := g.EdgesTo(b); len(got) != 1 || got[0].From != a {
		t.Fatalf("expected 1 edge to %s from %s, got %+v", b, a, got)
	}
}

func TestGraphCloneIsIndependent(t *testing.T) {
	g := NewGraph()
	a, b := ast.Identity("compile:1"), ast.Identity("compile:2")
	g.AddEdge(a, b, "value", -1)

	clone := g.Clone()
	clone.AddEdge(b, a, "reverse", -1)

	if len(g.All()) != 1 {
		t.Errorf("expected mutating the clone to not affect the original graph")
	}
	if len(clone.All()) != 2 {
		t.Errorf("expected the clone to hold both edges, got %d", len(clone.All()))
	}
}

func TestGraphOverlayAddEdgeOnlyTouchesPending(t *testing.T) {
	main := NewGraph()
	a, b := ast.Identity("compile:1"), ast.Identity("compile:2")
	main.AddEdge(a, b, "value", -1)

	overlay := NewGraphOverlay(main)
	c := ast.Identity("runtime:1")
	overlay.AddEdge(b, c, "value", -1)

	if len(main.All()) != 1 {
		t.Fatalf("expected main to be untouched before FlushIntoMain, got %d edges", len(main.All()))
	}
	if len(overlay.All()) != 2 {
		t.Fatalf("expected overlay.All() to merge both layers, got %d edges", len(overlay.All()))
	}

	overlay.FlushIntoMain()
	if len(main.All()) != 2 {
		t.Fatalf("expected FlushIntoMain to move the pending edge into main, got %d edges", len(main.All()))
	}
}

func TestGraphOverlayEdgesToAndFromMergeLayers(t *testing.T) {
	main := NewGraph()
	a, b, c := ast.Identity("compile:1"), ast.Identity("compile:2"), ast.Identity("compile:3")
	main.AddEdge(a, b, "value", -1)

	overlay := NewGraphOverlay(main)
	overlay.AddEdge(a, c, "value", -1)

	if got := overlay.EdgesFrom(a); len(got) != 2 {
		t.Fatalf("expected 2 merged edges from %s, got %d", a, len(got))
	}
	if got := overlay.EdgesTo(b); len(got) != 1 {
		t.Fatalf("expected 1 edge to %s, got %d", b, len(got))
	}
}
