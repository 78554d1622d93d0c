package evaluator

import (
	"encoding/json"
	"fmt"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
)

// RuntimeSupport is the pair of callbacks the evaluator needs to grow the
// program at runtime without importing the packages that know how
// (handlers, for instantiating one; wiring, for re-wiring a subtree). This
// is the same capture-context-in-a-closure technique the teacher's
// runtime package uses for LazyThunk/ReferenceValue
// (internal/interp/runtime/lazy_eval.go) to stay free of a dependency on
// the interpreter package that would otherwise own them.
type RuntimeSupport struct {
	// HandlerFor instantiates the handler bound to node's kind, the same
	// construction the compiler's handler-registration pass performs for
	// compile-time nodes (spec §4.1 step 5).
	HandlerFor func(node ast.AnyNode) (any, error)

	// WireScoped emits dependency-graph edges for ids and their
	// descendants into ctx.Graph (spec §4.3, "wireNodes(ids) for scoped
	// re-wiring of runtime nodes").
	WireScoped func(ctx *Context, ids []ast.Identity) error
}

// Hooks is the runtime-overlay surface passed to handlers (spec §4.5).
// Iterator handlers use CreateNode+RegisterRuntimeNode to expand a
// per-item template into a concrete runtime subtree; any handler may use
// CreatePseudoNode+RegisterPseudoNode the same way the compiler generates
// pseudo nodes for a previously-unseen (namespace, key) reference.
type Hooks struct {
	support     *RuntimeSupport
	astAlloc    *ast.Allocator
	pseudoAlloc *ast.Allocator
}

// NewHooks builds a Hooks bound to one request's runtime identity
// allocators.
func NewHooks(support *RuntimeSupport) *Hooks {
	return &Hooks{
		support:     support,
		astAlloc:    ast.NewAllocator(ast.RuntimeAST),
		pseudoAlloc: ast.NewAllocator(ast.RuntimePseudo),
	}
}

// CreateNode parses raw JSON into a node tree, allocating RuntimeAST
// identities.
func (h *Hooks) CreateNode(raw json.RawMessage) (*ast.Node, error) {
	return ast.Decode(raw, h.astAlloc)
}

// CloneTemplate deep-clones template with fresh RuntimeAST identities,
// for ITERATE to instantiate a per-item subtree (spec §4.5).
func (h *Hooks) CloneTemplate(template *ast.Node) *ast.Node {
	return ast.CloneForRuntime(template, h.astAlloc)
}

// CreatePseudoNode allocates a RuntimePseudo node for (kind, key). Callers
// should check ctx.Nodes.FindByPseudoType first to avoid allocating a
// duplicate for a (kind, key) pair already registered.
func (h *Hooks) CreatePseudoNode(kind ast.PseudoKind, key string) *ast.Pseudo {
	return ast.NewPseudo(h.pseudoAlloc.Next(), kind, key)
}

// RegisterRuntimeNode registers node and every descendant it already
// contains (an iterator template is fully substituted before this is
// called) into ctx's overlays, instantiates each one's handler, records
// parent/property metadata (inheriting isDescendantOfStep from parent, so
// a field born inside an iterator under a step is itself
// isDescendantOfStep), and re-wires the new subtree.
func (h *Hooks) RegisterRuntimeNode(ctx *Context, parent ast.Identity, property string, node *ast.Node) error {
	ids, err := h.registerSubtree(ctx, node, parent, property)
	if err != nil {
		return err
	}
	if h.support.WireScoped == nil {
		return nil
	}
	return h.support.WireScoped(ctx, ids)
}

// RegisterPseudoNode registers a pseudo node created via CreatePseudoNode.
func (h *Hooks) RegisterPseudoNode(ctx *Context, p *ast.Pseudo) error {
	handler, err := h.support.HandlerFor(p)
	if err != nil {
		return err
	}
	if err := ctx.Nodes.Register(p.ID(), p); err != nil {
		return err
	}
	return ctx.Handlers.Register(p.ID(), handler)
}

func (h *Hooks) registerSubtree(ctx *Context, node *ast.Node, parent ast.Identity, property string) ([]ast.Identity, error) {
	handler, err := h.support.HandlerFor(node)
	if err != nil {
		return nil, fmt.Errorf("runtime node %s: %w", node.ID(), err)
	}
	if err := ctx.Nodes.Register(node.ID(), node); err != nil {
		return nil, err
	}
	if err := ctx.Handlers.Register(node.ID(), handler); err != nil {
		return nil, err
	}

	ctx.Metadata.Set(node.ID(), registry.AttachedToParentNode, parent)
	ctx.Metadata.Set(node.ID(), registry.AttachedToParentProperty, property)
	if parentAttrs, ok := ctx.Metadata.Get(parent); ok {
		if v, ok := parentAttrs[registry.IsDescendantOfStep]; ok {
			ctx.Metadata.Set(node.ID(), registry.IsDescendantOfStep, v)
		}
	}

	ids := []ast.Identity{node.ID()}
	for _, edge := range ast.Children(node) {
		child, ok := edge.Child.(*ast.Node)
		if !ok {
			// Pseudo children shouldn't appear inside a freshly decoded
			// template; register defensively if they do.
			if p, ok := edge.Child.(*ast.Pseudo); ok {
				if err := h.RegisterPseudoNode(ctx, p); err != nil {
					return nil, err
				}
				ids = append(ids, p.ID())
			}
			continue
		}
		childIDs, err := h.registerSubtree(ctx, child, node.ID(), edge.Ref.Property)
		if err != nil {
			return nil, err
		}
		ids = append(ids, childIDs...)
	}
	return ids, nil
}
