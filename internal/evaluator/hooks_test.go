package evaluator

import (
	"testing"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
)

func newSupportWithHandler(handler any) *RuntimeSupport {
	return &RuntimeSupport{
		HandlerFor: func(node ast.AnyNode) (any, error) { return handler, nil },
		WireScoped: func(ctx *Context, ids []ast.Identity) error { return nil },
	}
}

func TestHooksCreateNodeDecodesJSON(t *testing.T) {
	hooks := NewHooks(newSupportWithHandler(&stubSyncHandler{}))
	node, err := hooks.CreateNode([]byte(`{"type": "BLOCK", "blockType": "BASIC", "properties": {}}`))
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}
	if node.Kind() != ast.Block || node.SubKind() != ast.Basic {
		t.Fatalf("expected BLOCK/BASIC, got %s/%s", node.Kind(), node.SubKind())
	}
	if !node.ID().IsRuntime() {
		t.Errorf("expected CreateNode to allocate a runtime identity, got %s", node.ID())
	}
}

func TestHooksCloneTemplateAllocatesFreshRuntimeIdentity(t *testing.T) {
	hooks := NewHooks(newSupportWithHandler(&stubSyncHandler{}))
	compileAlloc := ast.NewAllocator(ast.CompileAST)
	template := ast.NewNode(compileAlloc.Next(), ast.Block, ast.Field, "", ast.Properties{"code": "name"})

	clone := hooks.CloneTemplate(template)
	if clone.ID() == template.ID() {
		t.Errorf("expected CloneTemplate to allocate a fresh identity")
	}
	if !clone.ID().IsRuntime() {
		t.Errorf("expected a runtime-tagged identity, got %s", clone.ID())
	}
}

func TestHooksRegisterRuntimeNodeRegistersSubtreeAndMetadata(t *testing.T) {
	handler := &stubSyncHandler{value: "field value"}
	hooks := NewHooks(newSupportWithHandler(handler))

	compileAlloc := ast.NewAllocator(ast.CompileAST)
	parentID := compileAlloc.Next()
	child := ast.NewNode(hooks.astAlloc.Next(), ast.Block, ast.Basic, "", ast.Properties{})
	root := ast.NewNode(hooks.astAlloc.Next(), ast.Block, ast.Collection, "", ast.Properties{
		"items": []any{child},
	})

	artefact := NewArtefact()
	artefact.Metadata.Set(parentID, registry.IsDescendantOfStep, "step:1")
	_, ctx := newTestEvaluatorContext(t, artefact)

	if err := hooks.RegisterRuntimeNode(ctx, parentID, "items", root); err != nil {
		t.Fatalf("RegisterRuntimeNode() error: %v", err)
	}

	if !ctx.Nodes.Has(root.ID()) || !ctx.Nodes.Has(child.ID()) {
		t.Fatalf("expected both root and child to be registered")
	}
	if !ctx.Handlers.Has(root.ID()) || !ctx.Handlers.Has(child.ID()) {
		t.Fatalf("expected both root and child to have handlers registered")
	}

	attrs, ok := ctx.Metadata.Get(root.ID())
	if !ok {
		t.Fatalf("expected metadata for the runtime root")
	}
	if attrs[registry.AttachedToParentNode] != parentID {
		t.Errorf("AttachedToParentNode = %v, want %v", attrs[registry.AttachedToParentNode], parentID)
	}
	if attrs[registry.AttachedToParentProperty] != "items" {
		t.Errorf("AttachedToParentProperty = %v, want items", attrs[registry.AttachedToParentProperty])
	}
	if attrs[registry.IsDescendantOfStep] != "step:1" {
		t.Errorf("expected isDescendantOfStep to be inherited from the parent, got %v", attrs[registry.IsDescendantOfStep])
	}
}

func TestHooksCreateAndRegisterPseudoNode(t *testing.T) {
	handler := &stubSyncHandler{value: "pseudo value"}
	hooks := NewHooks(newSupportWithHandler(handler))

	artefact := NewArtefact()
	_, ctx := newTestEvaluatorContext(t, artefact)

	p := hooks.CreatePseudoNode(ast.Data, "applicant")
	if !p.ID().IsRuntime() {
		t.Errorf("expected a runtime-tagged pseudo identity, got %s", p.ID())
	}

	if err := hooks.RegisterPseudoNode(ctx, p); err != nil {
		t.Fatalf("RegisterPseudoNode() error: %v", err)
	}
	if !ctx.Nodes.Has(p.ID()) || !ctx.Handlers.Has(p.ID()) {
		t.Fatalf("expected the pseudo node and its handler to be registered")
	}
}

func TestNewHooksWithNilSupportStillAllocatesIdentities(t *testing.T) {
	hooks := NewHooks(nil)
	p := hooks.CreatePseudoNode(ast.Query, "page")
	if p.Kind() != ast.Query {
		t.Errorf("expected a QUERY pseudo, got %s", p.Kind())
	}
}
