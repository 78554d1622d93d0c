package compiler

import (
	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
)

// registerTree implements spec §4.1 steps 1-2: register n (and every
// descendant) into the node registry, and for every AST-node-valued
// property record attachedToParentNode/attachedToParentProperty on the
// child. parentID/parentProperty are empty for the root.
func (c *compiler) registerTree(n *ast.Node, parentID ast.Identity, parentProperty string) {
	if err := c.artefact.Nodes.Register(n.ID(), n); err != nil {
		c.errs.Addf(string(n.ID()), "%s", err)
		return
	}
	if parentID != "" {
		c.artefact.Metadata.Set(n.ID(), registry.AttachedToParentNode, parentID)
		c.artefact.Metadata.Set(n.ID(), registry.AttachedToParentProperty, parentProperty)
	}
	for _, edge := range ast.Children(n) {
		switch child := edge.Child.(type) {
		case *ast.Node:
			c.registerTree(child, n.ID(), edge.Ref.Property)
		case *ast.Pseudo:
			// Not produced by Decode (pseudo nodes are compiler-generated,
			// spec §4.1 step 4), handled defensively for symmetry with
			// evaluator.Hooks.registerSubtree.
			if err := c.artefact.Nodes.Register(child.ID(), child); err != nil {
				c.errs.Addf(string(child.ID()), "%s", err)
			}
		}
	}
}

// markStepDescendants implements spec §4.1 step 3: walk down from every
// STEP marking isDescendantOfStep=true on all descendants, and walk up
// each STEP's ancestor chain marking isAncestorOfStep=true.
func (c *compiler) markStepDescendants() {
	for _, step := range c.artefact.Nodes.FindByType(ast.Step) {
		for _, edge := range ast.Children(step) {
			if child, ok := edge.Child.(*ast.Node); ok {
				c.markDescendant(child)
			}
		}

		parent, ok := c.parentOf(step.ID())
		for ok {
			c.artefact.Metadata.Set(parent, registry.IsAncestorOfStep, true)
			parent, ok = c.parentOf(parent)
		}
	}
}

func (c *compiler) markDescendant(n *ast.Node) {
	c.artefact.Metadata.Set(n.ID(), registry.IsDescendantOfStep, true)
	for _, edge := range ast.Children(n) {
		if child, ok := edge.Child.(*ast.Node); ok {
			c.markDescendant(child)
		}
	}
}

func (c *compiler) parentOf(id ast.Identity) (ast.Identity, bool) {
	bag, ok := c.artefact.Metadata.Get(id)
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
