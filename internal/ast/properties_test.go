package ast

import "testing"

func TestPropertiesTypedAccessors(t *testing.T) {
	alloc := NewAllocator(CompileAST)
	child := NewNode(alloc.Next(), Step, "", "", Properties{})
	pseudo := NewPseudo(NewAllocator(CompilePseudo).Next(), Data, "applicant")

	props := Properties{
		"title":   "Apply",
		"active":  true,
		"step":    child,
		"lookup":  pseudo,
		"steps":   []any{child},
		"meta":    map[string]any{"hidden": true},
		"numbers": []any{1.0, 2.0},
	}

	if s, ok := props.String("title"); !ok || s != "Apply" {
		t.Errorf("String(title) = %q, %v", s, ok)
	}
	if _, ok := props.String("active"); ok {
		t.Errorf("expected String(active) to fail on a bool value")
	}
	if b, ok := props.Bool("active"); !ok || !b {
		t.Errorf("Bool(active) = %v, %v", b, ok)
	}
	if n, ok := props.Node("step"); !ok || n != child {
		t.Errorf("Node(step) = %v, %v", n, ok)
	}
	if p, ok := props.Pseudo("lookup"); !ok || p != pseudo {
		t.Errorf("Pseudo(lookup) = %v, %v", p, ok)
	}
	if nodes, ok := props.Nodes("steps"); !ok || len(nodes) != 1 || nodes[0] != child {
		t.Errorf("Nodes(steps) = %v, %v", nodes, ok)
	}
	if _, ok := props.Nodes("numbers"); ok {
		t.Errorf("expected Nodes(numbers) to fail since elements aren't nodes")
	}
	if arr, ok := props.Array("numbers"); !ok || len(arr) != 2 {
		t.Errorf("Array(numbers) = %v, %v", arr, ok)
	}
	if obj, ok := props.Object("meta"); !ok || obj["hidden"] != true {
		t.Errorf("Object(meta) = %v, %v", obj, ok)
	}
	if _, ok := props.String("missing"); ok {
		t.Errorf("expected String(missing) to fail")
	}
}

func TestPropertiesAnyNode(t *testing.T) {
	alloc := NewAllocator(CompileAST)
	child := NewNode(alloc.Next(), Block, Basic, "", Properties{})
	props := Properties{"block": child}

	any1, ok := props.AnyNode("block")
	if !ok || any1.ID() != child.ID() {
		t.Errorf("AnyNode(block) = %v, %v", any1, ok)
	}
}
