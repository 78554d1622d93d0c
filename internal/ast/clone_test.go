package ast

import "testing"

func TestCloneForRuntimeAllocatesFreshIdentities(t *testing.T) {
	compileAlloc := NewAllocator(CompileAST)
	pseudoAlloc := NewAllocator(CompilePseudo)

	fieldPseudo := NewPseudo(pseudoAlloc.Next(), AnswerLocal, "fullName")
	child := NewNode(compileAlloc.Next(), Block, Field, "", Properties{
		"code":   "fullName",
		"source": fieldPseudo,
	})
	root := NewNode(compileAlloc.Next(), Step, "", "", Properties{
		"blocks": []any{child},
	})

	runtimeAlloc := NewAllocator(RuntimeAST)
	clone := CloneForRuntime(root, runtimeAlloc)

	if clone.ID() == root.ID() {
		t.Fatalf("expected a fresh identity for the cloned root")
	}
	if !clone.ID().IsRuntime() {
		t.Errorf("expected clone's identity to be runtime-tagged, got %s", clone.ID())
	}

	blocks, ok := clone.Properties().Nodes("blocks")
	if !ok || len(blocks) != 1 {
		t.Fatalf("expected 1 cloned block, got %v (ok=%v)", blocks, ok)
	}
	if blocks[0].ID() == child.ID() {
		t.Errorf("expected the nested block to get a fresh identity too")
	}

	clonedPseudo, ok := blocks[0].Properties().Pseudo("source")
	if !ok || clonedPseudo != fieldPseudo {
		t.Errorf("expected the embedded pseudo to be shared, not cloned: got %v (ok=%v)", clonedPseudo, ok)
	}
}
