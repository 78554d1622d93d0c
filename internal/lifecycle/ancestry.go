package lifecycle

import (
	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
)

// parentOf reads id's attachedToParentNode attribute, the same chain the
// compiler's metadata pass and the wiring pass both walk.
func parentOf(ctx *evaluator.Context, id ast.Identity) (ast.Identity, bool) {
	bag, ok := ctx.Metadata.Get(id)
	if !ok {
		return "", false
	}
	v, ok := bag[registry.AttachedToParentNode]
	if !ok {
		return "", false
	}
	parent, ok := v.(ast.Identity)
	return parent, ok
}

func asNode(ctx *evaluator.Context, id ast.Identity) (*ast.Node, bool) {
	any, ok := ctx.Nodes.Get(id)
	if !ok {
		return nil, false
	}
	n, ok := any.(*ast.Node)
	return n, ok
}

// enclosingStep walks id's parent chain up to the nearest STEP ancestor.
func enclosingStep(ctx *evaluator.Context, id ast.Identity) (ast.Identity, bool) {
	parent, ok := parentOf(ctx, id)
	for ok {
		if n, isNode := asNode(ctx, parent); isNode && n.Kind() == ast.Step {
			return parent, true
		}
		parent, ok = parentOf(ctx, parent)
	}
	return "", false
}

// isDescendantOfNode reports whether ancestor appears anywhere in id's
// parent chain.
func isDescendantOfNode(ctx *evaluator.Context, id, ancestor ast.Identity) bool {
	parent, ok := parentOf(ctx, id)
	for ok {
		if parent == ancestor {
			return true
		}
		parent, ok = parentOf(ctx, parent)
	}
	return false
}

// lifecycleAncestors returns stepID's ancestor chain, outer journey first
// and stepID itself last, filtered to JOURNEY/STEP nodes (spec §4.6 step
// 2). stepID must itself be a STEP.
func lifecycleAncestors(ctx *evaluator.Context, stepID ast.Identity) []*ast.Node {
	var chain []*ast.Node
	current := stepID
	for {
		n, ok := asNode(ctx, current)
		if !ok {
			break
		}
		if n.Kind() == ast.Step || n.Kind() == ast.Journey {
			chain = append(chain, n)
		}
		parent, ok := parentOf(ctx, current)
		if !ok {
			break
		}
		current = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// topmostUnderStep walks up from id to the highest ancestor whose own
// parent is step — the node iterator expansion should invoke so the
// cascading evaluation reaches id (spec §4.6 step 4).
func topmostUnderStep(ctx *evaluator.Context, id, step ast.Identity) ast.Identity {
	current := id
	for {
		parent, ok := parentOf(ctx, current)
		if !ok || parent == step {
			return current
		}
		current = parent
	}
}

// nodesProp returns node's named property as an ordered node list, or nil
// if absent or not that shape.
func nodesProp(node *ast.Node, property string) []*ast.Node {
	ns, _ := node.Properties().Nodes(property)
	return ns
}
